package eligibility

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/rutacontrol/backend/internal/domain"
)

// SubmissionKind classifies why a trip submission was rejected.
type SubmissionKind string

const (
	// Immutable: the trip is finalized and can no longer change.
	Immutable SubmissionKind = "immutable"
	// InvalidField: a required field is missing or empty. Field names it.
	InvalidField SubmissionKind = "invalid_field"
	// DocumentationExpired: at least one document will be expired on the
	// departure date. Errors lists every violation.
	DocumentationExpired SubmissionKind = "documentation_expired"
)

// SubmissionError is returned by Guard.Submit for rejections decided by the
// guard itself. Persistence failures are returned unchanged instead.
type SubmissionError struct {
	Kind   SubmissionKind
	Field  string
	Errors []string
}

func (e *SubmissionError) Error() string {
	switch e.Kind {
	case Immutable:
		return "trip is finalized and cannot be modified"
	case InvalidField:
		return fmt.Sprintf("invalid field: %s", e.Field)
	case DocumentationExpired:
		return "documentation expired: " + strings.Join(e.Errors, "; ")
	}
	return string(e.Kind)
}

// Is lets callers match with errors.Is(err, domain.ErrConflict) for
// Immutable and domain.ErrValidation for the other kinds.
func (e *SubmissionError) Is(target error) bool {
	if e.Kind == Immutable {
		return target == domain.ErrConflict
	}
	return target == domain.ErrValidation
}

// TripWriter persists a trip. Update must not change the trip's state.
type TripWriter interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)
}

// Guard is the single entry point that lets a trip candidate reach persistence.
type Guard struct {
	trips TripWriter
}

// NewGuard returns a Guard that writes accepted trips to w.
func NewGuard(w TripWriter) *Guard {
	return &Guard{trips: w}
}

// Submit validates the candidate and, if every check passes, creates it (ID
// is uuid.Nil) or updates it. Checks run in order and stop at the first
// failure: finalized trip, structural fields, documentation errors in report.
// Warnings in report never block. existing is the persisted state of the
// trip being edited, nil for a new trip.
func (g *Guard) Submit(ctx context.Context, c domain.TripCandidate, report Report, existing *domain.TripState) (domain.Trip, error) {
	if existing != nil && *existing == domain.TripFinalized {
		return domain.Trip{}, &SubmissionError{Kind: Immutable}
	}
	if err := ValidateCandidate(c); err != nil {
		return domain.Trip{}, err
	}
	if report.Blocking() {
		errs := make([]string, len(report.Errors))
		copy(errs, report.Errors)
		return domain.Trip{}, &SubmissionError{Kind: DocumentationExpired, Errors: errs}
	}

	trip := domain.Trip{
		ID:            c.ID,
		DriverID:      c.DriverID,
		TractorID:     c.TractorID,
		TrailerID:     c.TrailerID,
		ServiceID:     c.ServiceID,
		DepartureDate: *c.DepartureDate,
		Origin:        strings.TrimSpace(c.Origin),
		Destinations:  NormalizeDestinations(c.Destinations),
		Notes:         c.Notes,
	}
	if c.ID == uuid.Nil {
		trip.State = domain.TripProgrammed
		return g.trips.Create(ctx, trip)
	}
	return g.trips.Update(ctx, trip)
}

// ValidateCandidate checks the structural fields of a candidate and returns
// an InvalidField *SubmissionError for the first one that is missing.
func ValidateCandidate(c domain.TripCandidate) error {
	switch {
	case strings.TrimSpace(c.Origin) == "":
		return invalid("origin")
	case c.DepartureDate == nil || c.DepartureDate.IsZero():
		return invalid("departure_date")
	case c.DriverID == uuid.Nil:
		return invalid("driver_id")
	case c.TractorID == uuid.Nil:
		return invalid("tractor_id")
	case c.TrailerID == uuid.Nil:
		return invalid("trailer_id")
	case c.ServiceID == uuid.Nil:
		return invalid("service_id")
	case len(c.Destinations) == 0:
		return invalid("destinations")
	}
	for i, d := range c.Destinations {
		if strings.TrimSpace(d.Location) == "" {
			return invalid(fmt.Sprintf("destinations[%d].ubicacion", i))
		}
	}
	return nil
}

// NormalizeDestinations returns a copy of ds sorted by Order (stable) and
// renumbered 1..N with no gaps.
func NormalizeDestinations(ds []domain.Destination) []domain.Destination {
	out := make([]domain.Destination, len(ds))
	copy(out, ds)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	for i := range out {
		out[i].Order = i + 1
		out[i].Location = strings.TrimSpace(out[i].Location)
	}
	return out
}

func invalid(field string) *SubmissionError {
	return &SubmissionError{Kind: InvalidField, Field: field}
}
