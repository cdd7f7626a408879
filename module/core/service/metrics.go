package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
)

type Metrics interface {
	IncSamples()
	IncPresenceEvents(kind domain.PresenceEventKind)
	IncDegraded()
	IncPersistFailures(op string)
	SetActiveSessions(n int)
}

type PrometheusMetrics struct {
	samples         prometheus.Counter
	presenceEvents  *prometheus.CounterVec
	degraded        prometheus.Counter
	persistFailures *prometheus.CounterVec
	activeSessions  prometheus.Gauge
}

// NewPrometheusMetrics registers the tracking collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "attendance_position_samples_total",
			Help: "Total number of position samples processed",
		}),
		presenceEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_presence_events_total",
			Help: "Total number of presence events emitted",
		}, []string{"kind"}),
		degraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "attendance_tracking_degraded_total",
			Help: "Total number of location provider failures",
		}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_persist_failures_total",
			Help: "Total number of failed presence writes",
		}, []string{"op"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "attendance_active_sessions",
			Help: "Current number of live tracking sessions",
		}),
	}
	reg.MustRegister(m.samples, m.presenceEvents, m.degraded, m.persistFailures, m.activeSessions)
	return m
}

func (m *PrometheusMetrics) IncSamples() {
	m.samples.Inc()
}

func (m *PrometheusMetrics) IncPresenceEvents(kind domain.PresenceEventKind) {
	m.presenceEvents.WithLabelValues(string(kind)).Inc()
}

func (m *PrometheusMetrics) IncDegraded() {
	m.degraded.Inc()
}

func (m *PrometheusMetrics) IncPersistFailures(op string) {
	m.persistFailures.WithLabelValues(op).Inc()
}

func (m *PrometheusMetrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// NoopMetrics is used when metrics are disabled.
type NoopMetrics struct{}

func (NoopMetrics) IncSamples()                                  {}
func (NoopMetrics) IncPresenceEvents(_ domain.PresenceEventKind) {}
func (NoopMetrics) IncDegraded()                                 {}
func (NoopMetrics) IncPersistFailures(_ string)                  {}
func (NoopMetrics) SetActiveSessions(_ int)                      {}
