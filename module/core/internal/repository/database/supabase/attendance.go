package supabase

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
	"github.com/nandanugg/geofence-attendance/module/core/internal/repository/database"
)

var _ database.AttendanceRepository = (*AttendanceRepo)(nil)

const attendanceTable = "attendance"

type attendanceInsert struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Location    string    `json:"location"`
	CheckinTime time.Time `json:"checkin_time"`
	IsTest      bool      `json:"is_test"`
}

type attendanceCheckout struct {
	CheckoutTime time.Time `json:"checkout_time"`
	IsTest       bool      `json:"is_test"`
}

type AttendanceRepo struct {
	client *Client
}

func NewAttendanceRepo(client *Client) *AttendanceRepo {
	return &AttendanceRepo{client: client}
}

func (r *AttendanceRepo) Insert(ctx context.Context, rec *domain.AttendanceRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	var out []domain.AttendanceRecord
	err := r.client.insert(ctx, attendanceTable, []attendanceInsert{{
		ID:          rec.ID,
		UserID:      rec.UserID,
		Location:    rec.Location,
		CheckinTime: rec.CheckinTime,
		IsTest:      rec.IsTest,
	}}, &out)
	if err != nil {
		return err
	}
	if len(out) > 0 {
		rec.CreatedAt = out[0].CreatedAt
	}
	return nil
}

func (r *AttendanceRepo) CloseCheckout(ctx context.Context, id string, checkout time.Time, isTest bool) (*domain.AttendanceRecord, error) {
	var out []domain.AttendanceRecord
	filter := url.Values{"id": {eq(id)}}
	if err := r.client.update(ctx, attendanceTable, filter, attendanceCheckout{CheckoutTime: checkout, IsTest: isTest}, &out); err != nil {
		return nil, err
	}
	return first(out)
}

func (r *AttendanceRepo) GetOpen(ctx context.Context, userID string) (*domain.AttendanceRecord, error) {
	return r.latest(ctx, url.Values{
		"user_id":       {eq(userID)},
		"checkout_time": {"is.null"},
		"order":         {"checkin_time.desc"},
	})
}

func (r *AttendanceRepo) GetLatestCheckin(ctx context.Context, userID string) (*domain.AttendanceRecord, error) {
	return r.latest(ctx, url.Values{
		"user_id": {eq(userID)},
		"order":   {"checkin_time.desc"},
	})
}

func (r *AttendanceRepo) GetLatestCheckout(ctx context.Context, userID string) (*domain.AttendanceRecord, error) {
	return r.latest(ctx, url.Values{
		"user_id":       {eq(userID)},
		"checkout_time": {"not.is.null"},
		"order":         {"checkout_time.desc"},
	})
}

func (r *AttendanceRepo) latest(ctx context.Context, query url.Values) (*domain.AttendanceRecord, error) {
	query.Set("select", "*")
	query.Set("limit", "1")
	var out []domain.AttendanceRecord
	if err := r.client.selectRows(ctx, attendanceTable, query, &out); err != nil {
		return nil, err
	}
	return first(out)
}

func first(recs []domain.AttendanceRecord) (*domain.AttendanceRecord, error) {
	if len(recs) == 0 {
		return nil, domain.ErrNotFound
	}
	return &recs[0], nil
}
