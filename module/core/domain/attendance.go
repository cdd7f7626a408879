package domain

import "time"

type AttendanceRecord struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Location     string     `json:"location"`
	CheckinTime  time.Time  `json:"checkin_time"`
	CheckoutTime *time.Time `json:"checkout_time"`
	IsTest       bool       `json:"is_test"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (r *AttendanceRecord) Open() bool {
	return r.CheckoutTime == nil
}

type TrackingRow struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Lat       float64           `json:"lat"`
	Lng       float64           `json:"lng"`
	Timestamp time.Time         `json:"timestamp"`
	EventType PresenceEventKind `json:"event_type"`
	CreatedAt time.Time         `json:"created_at"`
}

// HistoryQuery selects rows with Start <= timestamp < End.
type HistoryQuery struct {
	UserID string
	Start  time.Time
	End    time.Time
}

type AttendanceStatus struct {
	IsCheckedIn    bool       `json:"isCheckedIn"`
	LatestCheckin  *time.Time `json:"latestCheckin"`
	LatestCheckout *time.Time `json:"latestCheckout"`
}

type HistorySummary struct {
	Rows         []TrackingRow `json:"data"`
	Total        time.Duration `json:"total"`
	TotalMinutes int64         `json:"totalMinutes"`
	Formatted    string        `json:"totalTimeInside"`
}
