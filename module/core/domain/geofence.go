package domain

import (
	"time"

	"github.com/golang/geo/s2"
)

type GeoPoint struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Valid reports whether the point lies within [-90,90] x [-180,180].
func (p GeoPoint) Valid() bool {
	return s2.LatLngFromDegrees(p.Lat, p.Lon).IsValid()
}

type Geofence struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Center       GeoPoint `json:"center"`
	RadiusMeters float64  `json:"radius"`
}

type PositionSample struct {
	Coords         GeoPoint  `json:"coords"`
	AccuracyMeters float64   `json:"accuracy"`
	Timestamp      time.Time `json:"timestamp"`
}
