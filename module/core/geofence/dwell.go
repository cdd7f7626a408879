package geofence

import (
	"errors"
	"time"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
)

var (
	ErrSessionAlreadyOpen = errors.New("check-in while a session is already open")
	ErrNoOpenSession      = errors.New("check-out without an open session")
)

type DwellSnapshot struct {
	Accumulated time.Duration `json:"accumulated"`
	OpenSince   *time.Time    `json:"open_since,omitempty"`
}

// Accumulator sums time spent inside from CheckIn/CheckOut events applied
// in emission order. It knows nothing about calendar days.
type Accumulator struct {
	accumulated time.Duration
	openSince   *time.Time
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Apply folds one event into the total. Protocol violations leave the
// state untouched and are reported as ErrSessionAlreadyOpen or
// ErrNoOpenSession; callers should log them, not fail.
func (a *Accumulator) Apply(event domain.PresenceEvent) error {
	switch event.Kind {
	case domain.CheckIn:
		if a.openSince != nil {
			return ErrSessionAlreadyOpen
		}
		at := event.At
		a.openSince = &at
	case domain.CheckOut:
		if a.openSince == nil {
			return ErrNoOpenSession
		}
		a.accumulated += nonNegative(event.At.Sub(*a.openSince))
		a.openSince = nil
	}
	return nil
}

// CurrentTotal is the closed total plus the open session up to now.
func (a *Accumulator) CurrentTotal(now time.Time) time.Duration {
	total := a.accumulated
	if a.openSince != nil {
		total += now.Sub(*a.openSince)
	}
	return nonNegative(total)
}

func (a *Accumulator) Snapshot() DwellSnapshot {
	snap := DwellSnapshot{Accumulated: a.accumulated}
	if a.openSince != nil {
		since := *a.openSince
		snap.OpenSince = &since
	}
	return snap
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
