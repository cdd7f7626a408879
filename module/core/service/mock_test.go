package service

import (
	"context"
	"sync"
	"time"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
)

type mockAttendanceRepo struct {
	insertFn            func(ctx context.Context, rec *domain.AttendanceRecord) error
	closeCheckoutFn     func(ctx context.Context, id string, checkout time.Time, isTest bool) (*domain.AttendanceRecord, error)
	getOpenFn           func(ctx context.Context, userID string) (*domain.AttendanceRecord, error)
	getLatestCheckinFn  func(ctx context.Context, userID string) (*domain.AttendanceRecord, error)
	getLatestCheckoutFn func(ctx context.Context, userID string) (*domain.AttendanceRecord, error)
}

func (m *mockAttendanceRepo) Insert(ctx context.Context, rec *domain.AttendanceRecord) error {
	return m.insertFn(ctx, rec)
}

func (m *mockAttendanceRepo) CloseCheckout(ctx context.Context, id string, checkout time.Time, isTest bool) (*domain.AttendanceRecord, error) {
	return m.closeCheckoutFn(ctx, id, checkout, isTest)
}

func (m *mockAttendanceRepo) GetOpen(ctx context.Context, userID string) (*domain.AttendanceRecord, error) {
	return m.getOpenFn(ctx, userID)
}

func (m *mockAttendanceRepo) GetLatestCheckin(ctx context.Context, userID string) (*domain.AttendanceRecord, error) {
	return m.getLatestCheckinFn(ctx, userID)
}

func (m *mockAttendanceRepo) GetLatestCheckout(ctx context.Context, userID string) (*domain.AttendanceRecord, error) {
	return m.getLatestCheckoutFn(ctx, userID)
}

type mockTrackingRepo struct {
	insertFn     func(ctx context.Context, row *domain.TrackingRow) error
	getHistoryFn func(ctx context.Context, query *domain.HistoryQuery) ([]domain.TrackingRow, error)
}

func (m *mockTrackingRepo) Insert(ctx context.Context, row *domain.TrackingRow) error {
	return m.insertFn(ctx, row)
}

func (m *mockTrackingRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.TrackingRow, error) {
	return m.getHistoryFn(ctx, query)
}

type mockTransactionRepo struct {
	insertFn func(ctx context.Context, tx *domain.Transaction) error
	listFn   func(ctx context.Context, includeRegular bool) ([]domain.Transaction, error)
}

func (m *mockTransactionRepo) Insert(ctx context.Context, tx *domain.Transaction) error {
	return m.insertFn(ctx, tx)
}

func (m *mockTransactionRepo) List(ctx context.Context, includeRegular bool) ([]domain.Transaction, error) {
	return m.listFn(ctx, includeRegular)
}

type mockPublisher struct {
	mu       sync.Mutex
	presence []*domain.PresenceAlert
	degraded []*domain.DegradedAlert
	err      error
}

func (m *mockPublisher) PublishPresence(_ context.Context, alert *domain.PresenceAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presence = append(m.presence, alert)
	return m.err
}

func (m *mockPublisher) PublishDegraded(_ context.Context, alert *domain.DegradedAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.degraded = append(m.degraded, alert)
	return m.err
}

type countingMetrics struct {
	NoopMetrics
	mu       sync.Mutex
	samples  int
	events   map[domain.PresenceEventKind]int
	failures map[string]int
	degraded int
	active   int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		events:   make(map[domain.PresenceEventKind]int),
		failures: make(map[string]int),
	}
}

func (m *countingMetrics) IncSamples() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples++
}

func (m *countingMetrics) IncPresenceEvents(kind domain.PresenceEventKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[kind]++
}

func (m *countingMetrics) IncDegraded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.degraded++
}

func (m *countingMetrics) IncPersistFailures(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op]++
}

func (m *countingMetrics) SetActiveSessions(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = n
}

type memCache map[string][]byte

func (c memCache) Get(key string) ([]byte, bool) {
	v, ok := c[key]
	return v, ok
}

func (c memCache) Set(key string, value []byte) {
	c[key] = value
}

func (c memCache) Del(key string) {
	delete(c, key)
}
