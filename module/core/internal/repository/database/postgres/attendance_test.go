package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
)

var attendanceCols = []string{"id", "user_id", "location", "checkin_time", "checkout_time", "is_test", "created_at"}

func TestAttendanceInsert_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	ts := time.Unix(1715003456, 0)
	mock.ExpectQuery(`INSERT INTO attendance`).
		WithArgs(sqlmock.AnyArg(), "alice@example.com", "default", ts, false).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(ts))

	repo := NewAttendanceRepo(db)
	rec := &domain.AttendanceRecord{UserID: "alice@example.com", Location: "default", CheckinTime: ts}
	if err := repo.Insert(context.Background(), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID == "" {
		t.Error("expected generated id")
	}
	if !rec.CreatedAt.Equal(ts) {
		t.Errorf("expected created_at %v, got %v", ts, rec.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAttendanceInsert_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`INSERT INTO attendance`).WillReturnError(sqlmock.ErrCancelled)

	repo := NewAttendanceRepo(db)
	err = repo.Insert(context.Background(), &domain.AttendanceRecord{ID: "a1", UserID: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGetOpen_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	ts := time.Unix(1715003456, 0)
	rows := sqlmock.NewRows(attendanceCols).AddRow("a1", "alice@example.com", "default", ts, nil, false, ts)
	mock.ExpectQuery(`SELECT .* FROM attendance WHERE user_id = \$1 AND checkout_time IS NULL ORDER BY checkin_time DESC LIMIT 1`).
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	repo := NewAttendanceRepo(db)
	rec, err := repo.GetOpen(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != "a1" {
		t.Errorf("expected a1, got %s", rec.ID)
	}
	if !rec.Open() {
		t.Error("expected open record")
	}
}

func TestGetOpen_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`SELECT .* FROM attendance`).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows(attendanceCols))

	repo := NewAttendanceRepo(db)
	_, err = repo.GetOpen(context.Background(), "nobody")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCloseCheckout_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	in := time.Unix(1715000000, 0)
	out := time.Unix(1715003600, 0)
	mock.ExpectQuery(`UPDATE attendance SET checkout_time = \$1, is_test = \$2 WHERE id = \$3`).
		WithArgs(out, true, "a1").
		WillReturnRows(sqlmock.NewRows(attendanceCols).AddRow("a1", "alice@example.com", "default", in, out, true, in))

	repo := NewAttendanceRepo(db)
	rec, err := repo.CloseCheckout(context.Background(), "a1", out, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.CheckoutTime == nil || !rec.CheckoutTime.Equal(out) {
		t.Errorf("expected checkout %v, got %v", out, rec.CheckoutTime)
	}
	if !rec.IsTest {
		t.Error("expected is_test")
	}
}

func TestGetLatestCheckout_FiltersClosed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	in := time.Unix(1715000000, 0)
	out := time.Unix(1715003600, 0)
	mock.ExpectQuery(`checkout_time IS NOT NULL ORDER BY checkout_time DESC LIMIT 1`).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(attendanceCols).AddRow("a1", "alice@example.com", "default", in, out, false, in))

	repo := NewAttendanceRepo(db)
	rec, err := repo.GetLatestCheckout(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.CheckoutTime == nil {
		t.Fatal("expected checkout time")
	}
}

func TestGetLatestCheckin_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`SELECT .* FROM attendance WHERE user_id = \$1 ORDER BY checkin_time DESC LIMIT 1`).
		WithArgs("alice@example.com").
		WillReturnError(sqlmock.ErrCancelled)

	repo := NewAttendanceRepo(db)
	_, err = repo.GetLatestCheckin(context.Background(), "alice@example.com")
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected query error, got %v", err)
	}
}
