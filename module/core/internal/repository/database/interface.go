package database

import (
	"context"
	"time"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
)

// AttendanceRepository reads and mutates the attendance table. Lookups
// that find nothing return domain.ErrNotFound.
type AttendanceRepository interface {
	Insert(ctx context.Context, rec *domain.AttendanceRecord) error
	CloseCheckout(ctx context.Context, id string, checkout time.Time, isTest bool) (*domain.AttendanceRecord, error)
	GetOpen(ctx context.Context, userID string) (*domain.AttendanceRecord, error)
	GetLatestCheckin(ctx context.Context, userID string) (*domain.AttendanceRecord, error)
	GetLatestCheckout(ctx context.Context, userID string) (*domain.AttendanceRecord, error)
}

type TrackingRepository interface {
	Insert(ctx context.Context, row *domain.TrackingRow) error
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.TrackingRow, error)
}

type TransactionRepository interface {
	Insert(ctx context.Context, tx *domain.Transaction) error
	List(ctx context.Context, includeRegular bool) ([]domain.Transaction, error)
}

type Store struct {
	Attendance   AttendanceRepository
	Tracking     TrackingRepository
	Transactions TransactionRepository
}
