package config

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
)

const (
	defaultGeofenceID     = "default"
	defaultGeofenceName   = "Primary Monitoring Zone"
	defaultGeofenceLat    = 12.838857357767454
	defaultGeofenceLng    = 80.13777204197375
	defaultGeofenceRadius = 200
)

// DefaultGeofence is the fence used when neither GEOFENCES_JSON nor the
// GEOFENCE_* variables are set.
func DefaultGeofence() domain.Geofence {
	return domain.Geofence{
		ID:           defaultGeofenceID,
		Name:         defaultGeofenceName,
		Center:       domain.GeoPoint{Lat: defaultGeofenceLat, Lon: defaultGeofenceLng},
		RadiusMeters: defaultGeofenceRadius,
	}
}

// loadGeofences prefers GEOFENCES_JSON, a JSON array of fences, over the
// single fence described by GEOFENCE_*.
func loadGeofences() ([]domain.Geofence, error) {
	var fences []domain.Geofence
	if raw := os.Getenv("GEOFENCES_JSON"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &fences); err != nil {
			return nil, fmt.Errorf("GEOFENCES_JSON: %w", err)
		}
	} else {
		def := DefaultGeofence()
		fences = []domain.Geofence{{
			ID:   getEnv("GEOFENCE_ID", def.ID),
			Name: getEnv("GEOFENCE_NAME", def.Name),
			Center: domain.GeoPoint{
				Lat: getEnvFloat("GEOFENCE_LAT", def.Center.Lat),
				Lon: getEnvFloat("GEOFENCE_LNG", def.Center.Lon),
			},
			RadiusMeters: getEnvFloat("GEOFENCE_RADIUS", def.RadiusMeters),
		}}
	}

	if err := validateGeofences(fences); err != nil {
		return nil, err
	}
	return fences, nil
}

func validateGeofences(fences []domain.Geofence) error {
	if len(fences) == 0 {
		return fmt.Errorf("geofences: at least one fence is required")
	}
	seen := make(map[string]bool, len(fences))
	for i, f := range fences {
		if f.ID == "" {
			return fmt.Errorf("geofences[%d]: id required", i)
		}
		if seen[f.ID] {
			return fmt.Errorf("geofences[%d]: duplicate id %q", i, f.ID)
		}
		seen[f.ID] = true
		if !f.Center.Valid() {
			return fmt.Errorf("geofences[%d]: center out of range", i)
		}
		if f.RadiusMeters <= 0 {
			return fmt.Errorf("geofences[%d]: radius must be positive", i)
		}
	}
	return nil
}
