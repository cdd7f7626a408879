package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
	"github.com/nandanugg/geofence-attendance/module/core/geofence"
	"github.com/nandanugg/geofence-attendance/module/core/internal/repository/cache"
	"github.com/nandanugg/geofence-attendance/module/core/internal/repository/database"
)

const dateLayout = "2006-01-02"

type AttendanceService struct {
	attendance database.AttendanceRepository
	tracking   database.TrackingRepository
	cache      cache.Cache
	loc        *time.Location
	logger     zerolog.Logger
	now        func() time.Time
}

func NewAttendanceService(
	attendance database.AttendanceRepository,
	tracking database.TrackingRepository,
	c cache.Cache,
	loc *time.Location,
	logger zerolog.Logger,
) *AttendanceService {
	if c == nil {
		c = cache.Noop{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceService{
		attendance: attendance,
		tracking:   tracking,
		cache:      c,
		loc:        loc,
		logger:     logger.With().Str("component", "attendance").Logger(),
		now:        time.Now,
	}
}

func (s *AttendanceService) CheckIn(ctx context.Context, userID, location string, checkinTime time.Time, isTest bool) (*domain.AttendanceRecord, error) {
	rec := &domain.AttendanceRecord{
		UserID:      userID,
		Location:    location,
		CheckinTime: checkinTime,
		IsTest:      isTest,
	}
	if err := s.attendance.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("check in: %w", err)
	}
	return rec, nil
}

// CheckOut closes the user's most recent open check-in.
func (s *AttendanceService) CheckOut(ctx context.Context, userID string, checkoutTime time.Time, isTest bool) (*domain.AttendanceRecord, error) {
	open, err := s.attendance.GetOpen(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoActiveCheckIn
	}
	if err != nil {
		return nil, fmt.Errorf("find open check-in: %w", err)
	}

	rec, err := s.attendance.CloseCheckout(ctx, open.ID, checkoutTime, isTest)
	if err != nil {
		return nil, fmt.Errorf("check out: %w", err)
	}
	return rec, nil
}

// LatestCheckin returns nil without error when the user never checked in.
func (s *AttendanceService) LatestCheckin(ctx context.Context, userID string) (*time.Time, error) {
	rec, err := s.attendance.GetLatestCheckin(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := rec.CheckinTime
	return &t, nil
}

func (s *AttendanceService) LatestCheckout(ctx context.Context, userID string) (*time.Time, error) {
	rec, err := s.attendance.GetLatestCheckout(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && rec.CheckoutTime == nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := *rec.CheckoutTime
	return &t, nil
}

func (s *AttendanceService) Status(ctx context.Context, userID string) (*domain.AttendanceStatus, error) {
	checkin, err := s.LatestCheckin(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("latest check-in: %w", err)
	}
	checkout, err := s.LatestCheckout(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("latest check-out: %w", err)
	}

	return &domain.AttendanceStatus{
		IsCheckedIn:    checkin != nil && (checkout == nil || checkin.After(*checkout)),
		LatestCheckin:  checkin,
		LatestCheckout: checkout,
	}, nil
}

func (s *AttendanceService) Track(ctx context.Context, row *domain.TrackingRow) error {
	if !row.EventType.Valid() {
		return domain.ErrInvalidEvent
	}
	if p := (domain.GeoPoint{Lat: row.Lat, Lon: row.Lng}); !p.Valid() {
		return domain.ErrInvalidPosition
	}
	if row.Timestamp.IsZero() {
		row.Timestamp = s.now()
	}
	if err := s.tracking.Insert(ctx, row); err != nil {
		return err
	}
	s.cache.Del(historyKey(row.UserID, dayStart(row.Timestamp, s.loc)))
	return nil
}

// History reduces one calendar day of tracking rows into time spent
// inside. An empty date means today in the configured timezone.
func (s *AttendanceService) History(ctx context.Context, userID, date string) (*domain.HistorySummary, error) {
	now := s.now().In(s.loc)

	day := dayStart(now, s.loc)
	if date != "" {
		parsed, err := time.ParseInLocation(dateLayout, date, s.loc)
		if err != nil {
			return nil, domain.ErrInvalidDate
		}
		day = parsed
	}
	end := day.AddDate(0, 0, 1)
	past := !now.Before(end)

	key := historyKey(userID, day)
	if past {
		if raw, ok := s.cache.Get(key); ok {
			var cached domain.HistorySummary
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	rows, err := s.tracking.GetHistory(ctx, &domain.HistoryQuery{UserID: userID, Start: day, End: end})
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Timestamp.Before(rows[j].Timestamp) })

	asOf := now
	if past {
		asOf = end
	}
	total := geofence.TotalDwell(geofence.EntriesFromTracking(rows), asOf)

	summary := &domain.HistorySummary{
		Rows:         rows,
		Total:        total,
		TotalMinutes: int64(total / time.Minute),
		Formatted:    FormatDuration(total),
	}
	if summary.Rows == nil {
		summary.Rows = []domain.TrackingRow{}
	}

	if past {
		if raw, err := json.Marshal(summary); err == nil {
			s.cache.Set(key, raw)
		} else {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache history")
		}
	}
	return summary, nil
}

// historyKey names the cached summary of one user's day. Every write of a
// tracking row must evict the key of the row's day.
func historyKey(userID string, day time.Time) string {
	return fmt.Sprintf("history:%s:%s", userID, day.Format(dateLayout))
}

// FormatDuration renders d as "Xh Ym", truncated to whole minutes.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int64(d / time.Minute)
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
