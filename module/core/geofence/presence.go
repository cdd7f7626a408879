package geofence

import (
	"errors"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
)

var ErrOutOfOrderSample = errors.New("sample is older than the last processed sample")

// StateMachine tracks Outside/Inside transitions for one tracking session.
// It is not safe for concurrent use.
type StateMachine struct {
	fences    []domain.Geofence
	policy    Policy
	state     domain.PresenceState
	hasSample bool
}

// NewStateMachine snapshots fences; later changes to the caller's slice
// are not observed. A nil policy means FirstMatch.
func NewStateMachine(fences []domain.Geofence, policy Policy) *StateMachine {
	if policy == nil {
		policy = FirstMatch
	}
	return &StateMachine{
		fences: append([]domain.Geofence(nil), fences...),
		policy: policy,
	}
}

func (m *StateMachine) State() domain.PresenceState {
	return m.state
}

func (m *StateMachine) Fences() []domain.Geofence {
	return append([]domain.Geofence(nil), m.fences...)
}

// Restore replaces the current state, e.g. from a stored open attendance
// record. The restored state counts as a prior sample.
func (m *StateMachine) Restore(state domain.PresenceState) {
	m.state = state
	if !state.Inside {
		m.state.ActiveGeofenceID = ""
	}
	m.hasSample = true
}

// Feed evaluates one sample and returns the event it caused, if any.
func (m *StateMachine) Feed(sample domain.PositionSample) (Evaluation, *domain.PresenceEvent, error) {
	if m.hasSample && sample.Timestamp.Before(m.state.LastSampleAt) {
		return Evaluation{}, nil, ErrOutOfOrderSample
	}

	ev := Evaluate(sample.Coords, m.fences)
	var event *domain.PresenceEvent

	switch {
	case !m.state.Inside && ev.IsInside():
		primary := m.policy(ev.Inside)
		m.state.Inside = true
		m.state.ActiveGeofenceID = primary.Fence.ID
		event = &domain.PresenceEvent{
			Kind:       domain.CheckIn,
			GeofenceID: primary.Fence.ID,
			At:         sample.Timestamp,
			Position:   sample.Coords,
		}
	case m.state.Inside && !ev.IsInside():
		event = &domain.PresenceEvent{
			Kind:       domain.CheckOut,
			GeofenceID: m.state.ActiveGeofenceID,
			At:         sample.Timestamp,
			Position:   sample.Coords,
		}
		m.state.Inside = false
		m.state.ActiveGeofenceID = ""
	}

	m.state.LastSampleAt = sample.Timestamp
	m.hasSample = true
	return ev, event, nil
}
