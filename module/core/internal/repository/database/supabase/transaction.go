package supabase

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
	"github.com/nandanugg/geofence-attendance/module/core/internal/repository/database"
)

var _ database.TransactionRepository = (*TransactionRepo)(nil)

const (
	transactionTable  = "transactions"
	transactionSelect = "*,attendance:attendance_id(location,checkin_time,checkout_time)"
)

type transactionInsert struct {
	ID              string                 `json:"id"`
	AttendanceID    string                 `json:"attendance_id"`
	UserID          string                 `json:"user_id"`
	Items           []string               `json:"items"`
	Quantities      []int                  `json:"quantities"`
	Prices          []float64              `json:"prices"`
	ShippingDetails domain.ShippingDetails `json:"shipping_details"`
	TotalAmount     float64                `json:"total_amount"`
	IsTest          bool                   `json:"is_test"`
	TransactionDate time.Time              `json:"transaction_date"`
}

type TransactionRepo struct {
	client *Client
}

func NewTransactionRepo(client *Client) *TransactionRepo {
	return &TransactionRepo{client: client}
}

func (r *TransactionRepo) Insert(ctx context.Context, tx *domain.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	var out []domain.Transaction
	err := r.client.insert(ctx, transactionTable, []transactionInsert{{
		ID:              tx.ID,
		AttendanceID:    tx.AttendanceID,
		UserID:          tx.UserID,
		Items:           tx.Items,
		Quantities:      tx.Quantities,
		Prices:          tx.Prices,
		ShippingDetails: tx.ShippingDetails,
		TotalAmount:     tx.TotalAmount,
		IsTest:          tx.IsTest,
		TransactionDate: tx.TransactionDate,
	}}, &out)
	if err != nil {
		return err
	}
	if len(out) > 0 {
		tx.CreatedAt = out[0].CreatedAt
	}
	return nil
}

func (r *TransactionRepo) List(ctx context.Context, includeRegular bool) ([]domain.Transaction, error) {
	q := url.Values{
		"select": {transactionSelect},
		"order":  {"transaction_date.desc"},
	}
	if !includeRegular {
		q.Set("is_test", "eq.true")
	}
	var out []domain.Transaction
	if err := r.client.selectRows(ctx, transactionTable, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}
