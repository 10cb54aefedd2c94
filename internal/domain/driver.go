package domain

import "time"

// Driver is a chofer: a person licensed to drive a tractor.
type Driver struct {
	Resource
	FirstName     string
	LastName      string
	NationalID    string // DNI, unique
	Phone         string
	LicenseNumber string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FullName returns "First Last" with no trailing space when one part is empty.
func (d Driver) FullName() string {
	switch {
	case d.FirstName == "":
		return d.LastName
	case d.LastName == "":
		return d.FirstName
	}
	return d.FirstName + " " + d.LastName
}
