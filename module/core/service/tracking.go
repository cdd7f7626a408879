package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
	"github.com/nandanugg/geofence-attendance/module/core/geofence"
	"github.com/nandanugg/geofence-attendance/module/core/internal/repository/cache"
	"github.com/nandanugg/geofence-attendance/module/core/internal/repository/database"
	"github.com/nandanugg/geofence-attendance/module/core/internal/repository/publisher"
)

type TrackingConfig struct {
	Fences   []domain.Geofence
	Policy   geofence.Policy
	Location *time.Location
	// HistoryCache is the cache AttendanceService.History reads; rows
	// written here evict their day from it.
	HistoryCache cache.Cache
}

// trackedSession pairs a session with the lock that orders its writes.
// mu is held from feeding a sample until its event is persisted, so the
// store sees events in the order the session emitted them.
type trackedSession struct {
	mu      sync.Mutex
	session *geofence.Session
	day     time.Time
}

// TrackingService hosts one live geofence session per user and writes the
// presence events they emit. Write failures are logged and counted, never
// returned: the in-memory session stays authoritative.
type TrackingService struct {
	attendance   database.AttendanceRepository
	tracking     database.TrackingRepository
	publisher    publisher.PresencePublisher
	fences       []domain.Geofence
	policy       geofence.Policy
	loc          *time.Location
	historyCache cache.Cache
	logger       zerolog.Logger
	metrics      Metrics
	now          func() time.Time

	mu       sync.Mutex
	sessions map[string]*trackedSession
}

func NewTrackingService(
	attendance database.AttendanceRepository,
	tracking database.TrackingRepository,
	pub publisher.PresencePublisher,
	cfg TrackingConfig,
	logger zerolog.Logger,
	metrics Metrics,
) *TrackingService {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	historyCache := cfg.HistoryCache
	if historyCache == nil {
		historyCache = cache.Noop{}
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &TrackingService{
		attendance:   attendance,
		tracking:     tracking,
		publisher:    pub,
		fences:       append([]domain.Geofence(nil), cfg.Fences...),
		policy:       cfg.Policy,
		loc:          loc,
		historyCache: historyCache,
		logger:       logger.With().Str("component", "tracking").Logger(),
		metrics:      metrics,
		now:          time.Now,
		sessions:     make(map[string]*trackedSession),
	}
}

func (s *TrackingService) Fences() []domain.Geofence {
	return append([]domain.Geofence(nil), s.fences...)
}

func (s *TrackingService) FeedSample(ctx context.Context, userID string, sample domain.PositionSample) (*geofence.SampleResult, error) {
	if !sample.Coords.Valid() || sample.AccuracyMeters < 0 {
		return nil, domain.ErrInvalidPosition
	}

	ts := s.session(ctx, userID, sample.Timestamp)
	ts.mu.Lock()
	defer ts.mu.Unlock()

	s.rollDay(ts, sample.Timestamp)

	res, err := ts.session.FeedSample(sample)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Time("sample_at", sample.Timestamp).Msg("sample rejected")
		return nil, err
	}
	s.metrics.IncSamples()

	if res.Event == nil {
		return &res, nil
	}

	log := s.logger.With().Str("user_id", userID).Str("event", string(res.Event.Kind)).Str("geofence_id", res.Event.GeofenceID).Logger()
	if res.DwellErr != nil {
		log.Warn().Err(res.DwellErr).Msg("dwell protocol violation")
	}
	log.Info().Time("at", res.Event.At).Msg("presence transition")
	s.metrics.IncPresenceEvents(res.Event.Kind)
	s.persist(ctx, userID, *res.Event)
	return &res, nil
}

// FeedFailure marks the user's session degraded. Presence is left as is.
func (s *TrackingService) FeedFailure(ctx context.Context, userID, reason string, at time.Time) geofence.Snapshot {
	ts := s.session(ctx, userID, at)
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.session.FeedFailure(reason, at)
	s.metrics.IncDegraded()
	s.logger.Warn().Str("user_id", userID).Str("reason", reason).Msg("location provider failure")

	if err := s.publisher.PublishDegraded(ctx, &domain.DegradedAlert{UserID: userID, Reason: reason, At: at}); err != nil {
		s.metrics.IncPersistFailures("publish_degraded")
		s.logger.Error().Err(err).Str("user_id", userID).Msg("publish degraded signal")
	}
	return ts.session.Snapshot(s.now())
}

func (s *TrackingService) Snapshot(userID string) (geofence.Snapshot, bool) {
	s.mu.Lock()
	ts, ok := s.sessions[userID]
	s.mu.Unlock()
	if !ok {
		return geofence.Snapshot{}, false
	}
	return ts.session.Snapshot(s.now()), true
}

// Stop discards the user's session. Nothing is written.
func (s *TrackingService) Stop(userID string) bool {
	s.mu.Lock()
	_, ok := s.sessions[userID]
	delete(s.sessions, userID)
	n := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SetActiveSessions(n)
	return ok
}

func (s *TrackingService) session(ctx context.Context, userID string, at time.Time) *trackedSession {
	s.mu.Lock()
	ts, ok := s.sessions[userID]
	s.mu.Unlock()
	if ok {
		return ts
	}

	fresh := &trackedSession{
		session: geofence.NewSession(userID, s.fences, s.policy),
		day:     dayStart(at, s.loc),
	}
	s.rehydrate(ctx, userID, fresh)

	s.mu.Lock()
	if existing, ok := s.sessions[userID]; ok {
		ts = existing
	} else {
		s.sessions[userID] = fresh
		ts = fresh
	}
	n := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SetActiveSessions(n)
	return ts
}

// rehydrate resumes from the most recent open attendance record so a
// restart does not produce a second check-in.
func (s *TrackingService) rehydrate(ctx context.Context, userID string, ts *trackedSession) {
	rec, err := s.attendance.GetOpen(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("rehydrate session, starting outside")
		return
	}

	fenceID := s.fenceIDFor(rec.Location)
	ts.session.Resume(fenceID, rec.CheckinTime)
	if rec.CheckinTime.Before(ts.day) {
		ts.session.StartDay(ts.day)
	}
	s.logger.Info().Str("user_id", userID).Str("attendance_id", rec.ID).Str("geofence_id", fenceID).Msg("resumed open check-in")
}

// fenceIDFor maps a stored attendance location onto a configured fence.
// Records written by this service hold the fence ID; manual check-ins may
// hold the fence name or free text, which maps to no fence.
func (s *TrackingService) fenceIDFor(location string) string {
	for _, f := range s.fences {
		if f.ID == location {
			return f.ID
		}
	}
	for _, f := range s.fences {
		if f.Name != "" && strings.EqualFold(f.Name, location) {
			return f.ID
		}
	}
	return ""
}

// rollDay must be called with ts.mu held.
func (s *TrackingService) rollDay(ts *trackedSession, at time.Time) {
	if d := dayStart(at, s.loc); d.After(ts.day) {
		ts.session.StartDay(d)
		ts.day = d
	}
}

func (s *TrackingService) persist(ctx context.Context, userID string, ev domain.PresenceEvent) {
	log := s.logger.With().Str("user_id", userID).Str("event", string(ev.Kind)).Logger()

	switch ev.Kind {
	case domain.CheckIn:
		rec := &domain.AttendanceRecord{UserID: userID, Location: ev.GeofenceID, CheckinTime: ev.At}
		if err := s.attendance.Insert(ctx, rec); err != nil {
			s.metrics.IncPersistFailures("attendance_insert")
			log.Error().Err(err).Msg("record check-in")
		}
	case domain.CheckOut:
		if err := s.closeOpen(ctx, userID, ev.At); err != nil {
			s.metrics.IncPersistFailures("attendance_close")
			log.Error().Err(err).Msg("record check-out")
		}
	}

	row := &domain.TrackingRow{
		UserID:    userID,
		Lat:       ev.Position.Lat,
		Lng:       ev.Position.Lon,
		Timestamp: ev.At,
		EventType: ev.Kind,
	}
	if err := s.tracking.Insert(ctx, row); err != nil {
		s.metrics.IncPersistFailures("tracking_insert")
		log.Error().Err(err).Msg("record tracking row")
	} else {
		s.historyCache.Del(historyKey(userID, dayStart(ev.At, s.loc)))
	}

	if err := s.publisher.PublishPresence(ctx, &domain.PresenceAlert{UserID: userID, Event: ev}); err != nil {
		s.metrics.IncPersistFailures("publish_presence")
		log.Error().Err(err).Msg("publish presence event")
	}
}

func (s *TrackingService) closeOpen(ctx context.Context, userID string, at time.Time) error {
	open, err := s.attendance.GetOpen(ctx, userID)
	if err != nil {
		return err
	}
	_, err = s.attendance.CloseCheckout(ctx, open.ID, at, open.IsTest)
	return err
}

func dayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
