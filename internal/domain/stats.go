package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExpiringDocument is one dashboard entry: a resource document that is
// already expired or will expire within the listing threshold.
type ExpiringDocument struct {
	ResourceKind  ResourceKind
	ResourceID    uuid.UUID
	ResourceName  string // driver name or plate
	Document      DocumentKind
	DocumentLabel string
	ExpiresOn     time.Time
	DaysLeft      int
	Expired       bool
}

// Stats is the statistics dashboard payload.
type Stats struct {
	TripsByState     map[TripState]int
	ResourcesByState map[ResourceKind]map[PhysicalState]int
	Expiring         []ExpiringDocument
}
