package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestValidateCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		c       Coordinate
		wantErr bool
	}{
		{"origin", Coordinate{Lat: 0, Lng: 0}, false},
		{"seoul", Coordinate{Lat: 37.5665, Lng: 126.9780}, false},
		{"poles and antimeridian", Coordinate{Lat: -90, Lng: 180}, false},
		{"lat too low", Coordinate{Lat: -90.0001, Lng: 0}, true},
		{"lat too high", Coordinate{Lat: 91, Lng: 0}, true},
		{"lng too low", Coordinate{Lat: 0, Lng: -181}, true},
		{"lng too high", Coordinate{Lat: 0, Lng: 180.5}, true},
		{"nan lat", Coordinate{Lat: math.NaN(), Lng: 127}, true},
		{"nan lng", Coordinate{Lat: 37, Lng: math.NaN()}, true},
		{"inf lat", Coordinate{Lat: math.Inf(1), Lng: 0}, true},
		{"negative inf lng", Coordinate{Lat: 0, Lng: math.Inf(-1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinate(tt.c)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateCoordinate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCoordinate) {
				t.Errorf("expected ErrInvalidCoordinate, got %v", err)
			}
		})
	}
}

func TestValidatePlace(t *testing.T) {
	if err := ValidatePlace(&Place{Name: "  ", Position: Coordinate{Lat: 1, Lng: 1}}); !errors.Is(err, ErrInvalidPlace) {
		t.Errorf("expected ErrInvalidPlace for blank name, got %v", err)
	}
	if err := ValidatePlace(&Place{Name: "cafe", Position: Coordinate{Lat: 100}}); !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
	if err := ValidatePlace(&Place{Name: "cafe", Position: Coordinate{Lat: 37, Lng: 127}}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewProximityNotification(t *testing.T) {
	ev := ProximityEvent{
		Place:          Place{ID: "p1", Name: "Blue Bottle"},
		DistanceMeters: 79.96,
	}
	n := NewProximityNotification(ev, time.Unix(1715003456, 0))

	if n.Title != "Near your saved place Blue Bottle!" {
		t.Errorf("unexpected title %q", n.Title)
	}
	if n.Body != "80.0m away" {
		t.Errorf("unexpected body %q", n.Body)
	}
	if n.PlaceID != "p1" || n.Timestamp != 1715003456 {
		t.Errorf("unexpected metadata: %+v", n)
	}
}

func TestAlertPolicyValid(t *testing.T) {
	if !PolicySession.Valid() || !PolicyRearm.Valid() {
		t.Fatal("expected built-in policies to be valid")
	}
	if AlertPolicy("sometimes").Valid() {
		t.Fatal("expected unknown policy to be invalid")
	}
}
