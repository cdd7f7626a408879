package geofence

import (
	"sync"
	"time"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
)

type SampleResult struct {
	Evaluation Evaluation            `json:"evaluation"`
	Event      *domain.PresenceEvent `json:"event,omitempty"`
	// DwellErr is a protocol violation reported by the accumulator. The
	// event was still emitted.
	DwellErr error `json:"-"`
}

type Snapshot struct {
	UserID         string               `json:"user_id"`
	State          domain.PresenceState `json:"state"`
	Dwell          DwellSnapshot        `json:"dwell"`
	Total          time.Duration        `json:"total"`
	Degraded       bool                 `json:"degraded"`
	DegradedReason string               `json:"degraded_reason,omitempty"`
	DegradedAt     *time.Time           `json:"degraded_at,omitempty"`
}

// Session is one live tracking context for a user. Samples and failures
// are serialised; presence events are the only path from the state
// machine into the accumulator.
type Session struct {
	mu             sync.Mutex
	userID         string
	machine        *StateMachine
	dwell          *Accumulator
	degraded       bool
	degradedReason string
	degradedAt     time.Time
}

func NewSession(userID string, fences []domain.Geofence, policy Policy) *Session {
	return &Session{
		userID:  userID,
		machine: NewStateMachine(fences, policy),
		dwell:   NewAccumulator(),
	}
}

func (s *Session) UserID() string {
	return s.userID
}

// Resume rehydrates the session from a still-open check-in. The open dwell
// session starts at openSince.
func (s *Session) Resume(fenceID string, openSince time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.machine.Restore(domain.PresenceState{
		Inside:           true,
		ActiveGeofenceID: fenceID,
		LastSampleAt:     openSince,
	})
	s.dwell = NewAccumulator()
	_ = s.dwell.Apply(domain.PresenceEvent{Kind: domain.CheckIn, GeofenceID: fenceID, At: openSince})
}

func (s *Session) FeedSample(sample domain.PositionSample) (SampleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, event, err := s.machine.Feed(sample)
	if err != nil {
		return SampleResult{}, err
	}
	s.degraded = false
	s.degradedReason = ""

	res := SampleResult{Evaluation: ev, Event: event}
	if event != nil {
		res.DwellErr = s.dwell.Apply(*event)
	}
	return res, nil
}

// FeedFailure records a location-provider failure. Presence state is
// frozen, not reset, until samples resume.
func (s *Session) FeedFailure(reason string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.degraded = true
	s.degradedReason = reason
	s.degradedAt = at
}

// StartDay begins a fresh accumulator at dayStart. A session open across
// the boundary is reopened at dayStart.
func (s *Session) StartDay(dayStart time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dwell = NewAccumulator()
	if st := s.machine.State(); st.Inside {
		_ = s.dwell.Apply(domain.PresenceEvent{Kind: domain.CheckIn, GeofenceID: st.ActiveGeofenceID, At: dayStart})
	}
}

func (s *Session) Snapshot(now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		UserID:         s.userID,
		State:          s.machine.State(),
		Dwell:          s.dwell.Snapshot(),
		Total:          s.dwell.CurrentTotal(now),
		Degraded:       s.degraded,
		DegradedReason: s.degradedReason,
	}
	if s.degraded {
		at := s.degradedAt
		snap.DegradedAt = &at
	}
	return snap
}
