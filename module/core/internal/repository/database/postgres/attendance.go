package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
	"github.com/nandanugg/geofence-attendance/module/core/internal/repository/database"
)

var _ database.AttendanceRepository = (*AttendanceRepo)(nil)

const attendanceColumns = `id, user_id, location, checkin_time, checkout_time, is_test, created_at`

type AttendanceRepo struct {
	db *sql.DB
}

func NewAttendanceRepo(db *sql.DB) *AttendanceRepo {
	return &AttendanceRepo{db: db}
}

func (r *AttendanceRepo) Insert(ctx context.Context, rec *domain.AttendanceRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO attendance (id, user_id, location, checkin_time, is_test) VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		rec.ID, rec.UserID, rec.Location, rec.CheckinTime, rec.IsTest,
	)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

func (r *AttendanceRepo) CloseCheckout(ctx context.Context, id string, checkout time.Time, isTest bool) (*domain.AttendanceRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE attendance SET checkout_time = $1, is_test = $2 WHERE id = $3 RETURNING `+attendanceColumns,
		checkout, isTest, id,
	)
	return scanAttendance(row)
}

func (r *AttendanceRepo) GetOpen(ctx context.Context, userID string) (*domain.AttendanceRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance WHERE user_id = $1 AND checkout_time IS NULL ORDER BY checkin_time DESC LIMIT 1`,
		userID,
	)
	return scanAttendance(row)
}

func (r *AttendanceRepo) GetLatestCheckin(ctx context.Context, userID string) (*domain.AttendanceRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance WHERE user_id = $1 ORDER BY checkin_time DESC LIMIT 1`,
		userID,
	)
	return scanAttendance(row)
}

func (r *AttendanceRepo) GetLatestCheckout(ctx context.Context, userID string) (*domain.AttendanceRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance WHERE user_id = $1 AND checkout_time IS NOT NULL ORDER BY checkout_time DESC LIMIT 1`,
		userID,
	)
	return scanAttendance(row)
}

func scanAttendance(row *sql.Row) (*domain.AttendanceRecord, error) {
	var (
		rec      domain.AttendanceRecord
		checkout sql.NullTime
	)
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Location, &rec.CheckinTime, &checkout, &rec.IsTest, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if checkout.Valid {
		t := checkout.Time
		rec.CheckoutTime = &t
	}
	return &rec, nil
}
