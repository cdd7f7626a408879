package domain

import "time"

type PresenceEventKind string

const (
	CheckIn  PresenceEventKind = "check-in"
	CheckOut PresenceEventKind = "check-out"
)

func (k PresenceEventKind) Valid() bool {
	return k == CheckIn || k == CheckOut
}

// PresenceEvent is a verified boundary crossing. GeofenceID is empty when
// the crossing is not attributed to a fence.
type PresenceEvent struct {
	Kind       PresenceEventKind `json:"kind"`
	GeofenceID string            `json:"geofence_id,omitempty"`
	At         time.Time         `json:"at"`
	Position   GeoPoint          `json:"position"`
}

type PresenceState struct {
	Inside           bool      `json:"inside"`
	ActiveGeofenceID string    `json:"active_geofence_id,omitempty"`
	LastSampleAt     time.Time `json:"last_sample_at"`
}

type PresenceAlert struct {
	UserID string        `json:"user_id"`
	Event  PresenceEvent `json:"event"`
}

type DegradedAlert struct {
	UserID string    `json:"user_id"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}
