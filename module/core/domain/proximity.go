package domain

import (
	"fmt"
	"time"
)

// AlertPolicy decides when an already alerted place may alert again.
type AlertPolicy string

const (
	// PolicySession alerts each place at most once until the session is reset.
	PolicySession AlertPolicy = "session"
	// PolicyRearm forgets a place once the position is seen outside its radius,
	// so leaving and coming back alerts again.
	PolicyRearm AlertPolicy = "rearm"
)

func (p AlertPolicy) Valid() bool {
	return p == PolicySession || p == PolicyRearm
}

// SessionStats is a point-in-time view of a proximity session.
type SessionStats struct {
	Places       int         `json:"places"`
	Alerted      int         `json:"alerted"`
	RadiusMeters float64     `json:"radius_meters"`
	Policy       AlertPolicy `json:"policy"`
}

type ProximityEvent struct {
	Place          Place   `json:"place"`
	DistanceMeters float64 `json:"distance_meters"`
}

type Notification struct {
	Title          string  `json:"title"`
	Body           string  `json:"body"`
	PlaceID        string  `json:"place_id"`
	DistanceMeters float64 `json:"distance_meters"`
	Timestamp      int64   `json:"timestamp"`
}

func NewProximityNotification(ev ProximityEvent, now time.Time) *Notification {
	return &Notification{
		Title:          fmt.Sprintf("Near your saved place %s!", ev.Place.Name),
		Body:           fmt.Sprintf("%.1fm away", ev.DistanceMeters),
		PlaceID:        ev.Place.ID,
		DistanceMeters: ev.DistanceMeters,
		Timestamp:      now.Unix(),
	}
}
