package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ResourceKind identifies which kind of fleet resource a record is.
type ResourceKind string

const (
	KindDriver  ResourceKind = "driver"
	KindTractor ResourceKind = "tractor"
	KindTrailer ResourceKind = "trailer"
)

// Label is the upper-case prefix used in eligibility messages ("DRIVER").
func (k ResourceKind) Label() string {
	return strings.ToUpper(string(k))
}

// PhysicalState is the operational status of a resource, independent of its
// paperwork. The states are mutually exclusive.
type PhysicalState string

const (
	StateAvailable    PhysicalState = "available"
	StateInTrip       PhysicalState = "in_trip"
	StateInRepair     PhysicalState = "in_repair"
	StateOutOfService PhysicalState = "out_of_service"
)

// Valid reports whether s is one of the known physical states.
func (s PhysicalState) Valid() bool {
	switch s {
	case StateAvailable, StateInTrip, StateInRepair, StateOutOfService:
		return true
	}
	return false
}

// Reason is the human-readable blocking reason for a non-available state.
func (s PhysicalState) Reason() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// DocumentKind names a category of compliance paperwork, e.g. "rto".
type DocumentKind string

// Documents maps a document kind to its expiry date. A missing key means the
// expiry is not tracked for that kind.
type Documents map[DocumentKind]time.Time

// Expiry returns the expiry date for kind, or nil when none is recorded.
func (d Documents) Expiry(kind DocumentKind) *time.Time {
	t, ok := d[kind]
	if !ok {
		return nil
	}
	return &t
}

// Resource holds the fields shared by drivers, tractors and trailers that the
// eligibility rules read.
type Resource struct {
	ID          uuid.UUID
	Kind        ResourceKind
	State       PhysicalState
	ServiceType string // empty when the resource is not tied to a service
	Documents   Documents
}

// MatchesService reports whether the resource's service type equals name,
// ignoring case and surrounding whitespace. Resources with no service type
// never match.
func (r Resource) MatchesService(name string) bool {
	st := strings.TrimSpace(r.ServiceType)
	if st == "" {
		return false
	}
	return strings.EqualFold(st, strings.TrimSpace(name))
}

// Base returns the shared resource fields. Driver, Tractor and Trailer
// inherit it through embedding.
func (r Resource) Base() Resource { return r }
