package domain

import (
	"time"

	"github.com/google/uuid"
)

// StopKind classifies a recorded stop ("parada") on a trip.
type StopKind string

const (
	StopStart    StopKind = "start"
	StopArrival  StopKind = "arrival"
	StopRest     StopKind = "rest"
	StopFuel     StopKind = "fuel"
	StopIncident StopKind = "incident"
)

// Valid reports whether k is a known stop kind.
func (k StopKind) Valid() bool {
	switch k {
	case StopStart, StopArrival, StopRest, StopFuel, StopIncident:
		return true
	}
	return false
}

// Stop is an event recorded while a trip is tracked: the start, each
// arrival at a destination, and intermediate rests, refuels or incidents.
type Stop struct {
	ID         uuid.UUID
	TripID     uuid.UUID
	Kind       StopKind
	Location   string
	RecordedAt time.Time
	Notes      string
	CreatedAt  time.Time
}
