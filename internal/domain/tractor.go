package domain

import "time"

// Tractor is the powered unit that pulls a trailer.
type Tractor struct {
	Resource
	Plate     string
	Brand     string
	Model     string
	Year      int
	CreatedAt time.Time
	UpdatedAt time.Time
}
