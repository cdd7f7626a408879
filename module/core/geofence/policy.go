package geofence

import "fmt"

// Policy picks the primary fence among the fences containing a position.
// It is only called with a non-empty slice.
type Policy func(inside []FenceDistance) FenceDistance

const (
	PolicyFirstMatch     = "first_match"
	PolicyNearest        = "nearest"
	PolicySmallestRadius = "smallest_radius"
)

func FirstMatch(inside []FenceDistance) FenceDistance {
	return inside[0]
}

func Nearest(inside []FenceDistance) FenceDistance {
	best := inside[0]
	for _, fd := range inside[1:] {
		if fd.DistanceMeters < best.DistanceMeters {
			best = fd
		}
	}
	return best
}

func SmallestRadius(inside []FenceDistance) FenceDistance {
	best := inside[0]
	for _, fd := range inside[1:] {
		if fd.Fence.RadiusMeters < best.Fence.RadiusMeters {
			best = fd
		}
	}
	return best
}

func PolicyByName(name string) (Policy, error) {
	switch name {
	case PolicyFirstMatch, "":
		return FirstMatch, nil
	case PolicyNearest:
		return Nearest, nil
	case PolicySmallestRadius:
		return SmallestRadius, nil
	default:
		return nil, fmt.Errorf("unknown fence policy %q", name)
	}
}
