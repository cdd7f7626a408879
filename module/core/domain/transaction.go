package domain

import "time"

type ShippingDetails struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type AttendanceSummary struct {
	Location     string     `json:"location"`
	CheckinTime  time.Time  `json:"checkin_time"`
	CheckoutTime *time.Time `json:"checkout_time"`
}

type Transaction struct {
	ID              string             `json:"id"`
	AttendanceID    string             `json:"attendance_id"`
	UserID          string             `json:"user_id"`
	Items           []string           `json:"items"`
	Quantities      []int              `json:"quantities"`
	Prices          []float64          `json:"prices"`
	ShippingDetails ShippingDetails    `json:"shipping_details"`
	TotalAmount     float64            `json:"total_amount"`
	IsTest          bool               `json:"is_test"`
	TransactionDate time.Time          `json:"transaction_date"`
	CreatedAt       time.Time          `json:"created_at"`
	Attendance      *AttendanceSummary `json:"attendance,omitempty"`
}

func (t *Transaction) Validate() error {
	if len(t.Items) != len(t.Quantities) || len(t.Items) != len(t.Prices) {
		return ErrMismatchedLength
	}
	return nil
}

// Total sums price*quantity over the line items.
func (t *Transaction) Total() float64 {
	var total float64
	for i, price := range t.Prices {
		total += price * float64(t.Quantities[i])
	}
	return total
}
