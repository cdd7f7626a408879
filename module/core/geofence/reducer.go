package geofence

import (
	"time"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
)

type LogEntry struct {
	Kind domain.PresenceEventKind
	At   time.Time
}

// TotalDwell replays a stored event log. Entries must already be sorted by
// At; unsorted input gives an undefined result. A session still open at the
// end of the log is counted up to asOf.
func TotalDwell(entries []LogEntry, asOf time.Time) time.Duration {
	var (
		total       time.Duration
		lastCheckIn *time.Time
	)
	for _, e := range entries {
		switch e.Kind {
		case domain.CheckIn:
			// a repeated check-in restarts the open session
			at := e.At
			lastCheckIn = &at
		case domain.CheckOut:
			if lastCheckIn != nil {
				total += nonNegative(e.At.Sub(*lastCheckIn))
				lastCheckIn = nil
			}
		}
	}
	if lastCheckIn != nil {
		total += asOf.Sub(*lastCheckIn)
	}
	return nonNegative(total)
}

func EntriesFromTracking(rows []domain.TrackingRow) []LogEntry {
	entries := make([]LogEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, LogEntry{Kind: r.EventType, At: r.Timestamp})
	}
	return entries
}
