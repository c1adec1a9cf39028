package domain

import (
	"fmt"
	"math"
	"time"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ValidateCoordinate rejects positions outside the WGS84 degree ranges.
// Distances computed from such values are meaningless, so they are stopped
// where positions and places enter the service.
func ValidateCoordinate(c Coordinate) error {
	if !isFinite(c.Lat) || !isFinite(c.Lng) {
		return fmt.Errorf("%w: non-finite value %v,%v", ErrInvalidCoordinate, c.Lat, c.Lng)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90, got %v", ErrInvalidCoordinate, c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180, got %v", ErrInvalidCoordinate, c.Lng)
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

type PositionUpdate struct {
	// Position is nil while the source has no fix yet.
	Position   *Coordinate
	Err        error
	ReceivedAt time.Time
}
