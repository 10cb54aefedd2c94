package domain

import "time"

// Trailer is a semirremolque. Its required paperwork depends on the service
// it is used for (e.g. hose and valve certificates for liquefied gas).
type Trailer struct {
	Resource
	Plate      string
	Type       string
	CapacityM3 float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PlateCheck is the answer to "is this plate already registered".
// Info describes the existing record when Exists is true.
type PlateCheck struct {
	Exists bool
	Info   string
}
