package postgres

import (
	"context"
	"database/sql"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
	"github.com/nandanugg/geofence-attendance/module/core/internal/repository/database"
)

var _ database.TransactionRepository = (*TransactionRepo)(nil)

type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

func (r *TransactionRepo) Insert(ctx context.Context, tx *domain.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	items, err := json.Marshal(tx.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	quantities, err := json.Marshal(tx.Quantities)
	if err != nil {
		return fmt.Errorf("marshal quantities: %w", err)
	}
	prices, err := json.Marshal(tx.Prices)
	if err != nil {
		return fmt.Errorf("marshal prices: %w", err)
	}
	shipping, err := json.Marshal(tx.ShippingDetails)
	if err != nil {
		return fmt.Errorf("marshal shipping_details: %w", err)
	}

	row := r.db.QueryRowContext(ctx,
		`INSERT INTO transactions (id, attendance_id, user_id, items, quantities, prices, shipping_details, total_amount, is_test, transaction_date) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING created_at`,
		tx.ID, tx.AttendanceID, tx.UserID, items, quantities, prices, shipping, tx.TotalAmount, tx.IsTest, tx.TransactionDate,
	)
	if err := row.Scan(&tx.CreatedAt); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepo) List(ctx context.Context, includeRegular bool) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.attendance_id, t.user_id, t.items, t.quantities, t.prices, t.shipping_details, t.total_amount, t.is_test, t.transaction_date, t.created_at, a.location, a.checkin_time, a.checkout_time
		FROM transactions t LEFT JOIN attendance a ON a.id = t.attendance_id
		WHERE $1 OR t.is_test
		ORDER BY t.transaction_date DESC`,
		includeRegular,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Transaction
	for rows.Next() {
		var (
			tx                                  domain.Transaction
			items, quantities, prices, shipping []byte
			location                            sql.NullString
			checkin, checkout                   sql.NullTime
		)
		if err := rows.Scan(&tx.ID, &tx.AttendanceID, &tx.UserID, &items, &quantities, &prices, &shipping,
			&tx.TotalAmount, &tx.IsTest, &tx.TransactionDate, &tx.CreatedAt, &location, &checkin, &checkout); err != nil {
			return nil, err
		}
		if err := decodeJSONColumns(&tx, items, quantities, prices, shipping); err != nil {
			return nil, err
		}
		if location.Valid {
			tx.Attendance = &domain.AttendanceSummary{Location: location.String, CheckinTime: checkin.Time}
			if checkout.Valid {
				t := checkout.Time
				tx.Attendance.CheckoutTime = &t
			}
		}
		results = append(results, tx)
	}
	return results, rows.Err()
}

func decodeJSONColumns(tx *domain.Transaction, items, quantities, prices, shipping []byte) error {
	cols := []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"items", items, &tx.Items},
		{"quantities", quantities, &tx.Quantities},
		{"prices", prices, &tx.Prices},
		{"shipping_details", shipping, &tx.ShippingDetails},
	}
	for _, c := range cols {
		if len(c.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(c.raw, c.dst); err != nil {
			return fmt.Errorf("decode %s: %w", c.name, err)
		}
	}
	return nil
}
