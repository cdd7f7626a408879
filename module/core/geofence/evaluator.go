package geofence

import "github.com/nandanugg/geofence-attendance/module/core/domain"

type FenceDistance struct {
	Fence          domain.Geofence `json:"fence"`
	DistanceMeters float64         `json:"distance_meters"`
}

type Evaluation struct {
	// Inside holds every fence containing the position, in input order.
	Inside  []FenceDistance `json:"inside"`
	Nearest *FenceDistance  `json:"nearest,omitempty"`
}

func (e Evaluation) IsInside() bool {
	return len(e.Inside) > 0
}

// Evaluate measures position against every fence. The boundary is
// inclusive and Nearest ignores membership; ties keep the earliest fence.
func Evaluate(position domain.GeoPoint, fences []domain.Geofence) Evaluation {
	var ev Evaluation
	for _, f := range fences {
		fd := FenceDistance{Fence: f, DistanceMeters: DistanceMeters(position, f.Center)}
		if fd.DistanceMeters <= f.RadiusMeters {
			ev.Inside = append(ev.Inside, fd)
		}
		if ev.Nearest == nil || fd.DistanceMeters < ev.Nearest.DistanceMeters {
			nearest := fd
			ev.Nearest = &nearest
		}
	}
	return ev
}
