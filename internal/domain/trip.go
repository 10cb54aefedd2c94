// Package domain contains the core data types for the Ruta Control backend.
// It depends only on uuid and is imported by every other internal package
// (eligibility, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TripState is the lifecycle state of a persisted trip.
// Transitions: programmed → in_progress → finalized. Finalized is terminal.
type TripState string

const (
	TripProgrammed TripState = "programmed"
	TripInProgress TripState = "in_progress"
	TripFinalized  TripState = "finalized"
)

// Valid reports whether s is a known trip state.
func (s TripState) Valid() bool {
	switch s {
	case TripProgrammed, TripInProgress, TripFinalized:
		return true
	}
	return false
}

// Destination is one ordered leg end-point of a trip.
// Order is 1-based and contiguous once the trip is persisted.
type Destination struct {
	Order    int
	Location string
	Notes    string
}

// TripCandidate is the unsaved state of a trip being created or edited.
// ID is uuid.Nil for a new trip.
type TripCandidate struct {
	ID            uuid.UUID
	DriverID      uuid.UUID
	TractorID     uuid.UUID
	TrailerID     uuid.UUID
	ServiceID     uuid.UUID
	DepartureDate *time.Time
	Origin        string
	Destinations  []Destination
	Notes         string
}

// Trip is a persisted trip with its destinations.
type Trip struct {
	ID            uuid.UUID
	DriverID      uuid.UUID
	TractorID     uuid.UUID
	TrailerID     uuid.UUID
	ServiceID     uuid.UUID
	DepartureDate time.Time
	Origin        string
	Destinations  []Destination
	State         TripState
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Candidate hydrates an editable candidate from a persisted trip.
func (t Trip) Candidate() TripCandidate {
	dep := t.DepartureDate
	dests := make([]Destination, len(t.Destinations))
	copy(dests, t.Destinations)
	return TripCandidate{
		ID:            t.ID,
		DriverID:      t.DriverID,
		TractorID:     t.TractorID,
		TrailerID:     t.TrailerID,
		ServiceID:     t.ServiceID,
		DepartureDate: &dep,
		Origin:        t.Origin,
		Destinations:  dests,
		Notes:         t.Notes,
	}
}

// TripFilter narrows a trip listing. Zero values mean "no filter".
type TripFilter struct {
	State TripState
}
