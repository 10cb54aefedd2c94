// Package service contains the business logic for the Ruta Control API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/eligibility"
	"github.com/rutacontrol/backend/internal/metrics"
	"github.com/rutacontrol/backend/internal/repo"
)

// TripRepos groups the repos a TripService reads and writes.
type TripRepos struct {
	Trips    repo.TripRepo
	Drivers  repo.DriverRepo
	Tractors repo.TractorRepo
	Trailers repo.TrailerRepo
	Services repo.ServiceRepo
	// Stops is read when editing a trip in progress.
	Stops    repo.StopRepo
}

// TripService implements business logic for Trip operations. Every write
// goes through the eligibility guard.
type TripService struct {
	repos     TripRepos
	evaluator *eligibility.Evaluator
	guard     *eligibility.Guard
	metrics   *metrics.Metrics
}

// NewTripService constructs a TripService. m may be nil.
func NewTripService(r TripRepos, ev *eligibility.Evaluator, m *metrics.Metrics) *TripService {
	return &TripService{
		repos:     r,
		evaluator: ev,
		guard:     eligibility.NewGuard(r.Trips),
		metrics:   m,
	}
}

// Evaluate returns the eligibility report for a candidate without persisting
// anything. Unset resource ids are skipped; ids that do not resolve yield an
// InvalidField error naming the field.
func (s *TripService) Evaluate(ctx context.Context, c domain.TripCandidate) (eligibility.Report, error) {
	a, err := s.assemble(ctx, c)
	if err != nil {
		return eligibility.Report{}, err
	}
	rep := s.evaluator.Evaluate(c, a)
	s.metrics.Evaluation(evaluationOutcome(rep))
	return rep, nil
}

// Create submits a new trip. The candidate's ID is ignored.
func (s *TripService) Create(ctx context.Context, c domain.TripCandidate) (domain.Trip, error) {
	c.ID = uuid.Nil
	return s.submit(ctx, c, nil)
}

// Update submits changes to the trip with the given id. A finalized trip is
// rejected with an Immutable error before anything else is checked. A trip
// in progress keeps its driver, tractor and trailer, and must keep at least
// one destination not yet arrived at.
func (s *TripService) Update(ctx context.Context, id uuid.UUID, c domain.TripCandidate) (domain.Trip, error) {
	existing, err := s.repos.Trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	if existing.State == domain.TripInProgress {
		if err := s.checkInProgressEdit(ctx, existing, c); err != nil {
			return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
		}
	}
	c.ID = id
	state := existing.State
	return s.submit(ctx, c, &state)
}

// checkInProgressEdit rejects edits that would desync resource states or the
// arrival count from a trip already under way. Unset ids are left to the guard.
func (s *TripService) checkInProgressEdit(ctx context.Context, existing domain.Trip, c domain.TripCandidate) error {
	assigned := []struct {
		field     string
		was, want uuid.UUID
	}{
		{"driver_id", existing.DriverID, c.DriverID},
		{"tractor_id", existing.TractorID, c.TractorID},
		{"trailer_id", existing.TrailerID, c.TrailerID},
	}
	for _, a := range assigned {
		if a.want != uuid.Nil && a.want != a.was {
			return fmt.Errorf("%w: %s cannot change while the trip is in progress", domain.ErrConflict, a.field)
		}
	}

	counts, err := s.repos.Stops.CountByKind(ctx, existing.ID)
	if err != nil {
		return err
	}
	if arrived := counts[domain.StopArrival]; len(c.Destinations) <= arrived {
		return fmt.Errorf("%w: trip has %d arrival(s) recorded and needs at least %d destinations",
			domain.ErrConflict, arrived, arrived+1)
	}
	return nil
}

// GetByID returns a single trip with its destinations.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	result, err := s.repos.Trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of trips and the total matching the filter.
func (s *TripService) ListPaged(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	if f.State != "" && !f.State.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown trip state %q", domain.ErrValidation, f.State)
	}
	trips, total, err := s.repos.Trips.ListPaged(ctx, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListPaged: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// Delete removes a trip. Finalized trips are immutable and cannot be deleted.
// Deleting a trip in progress returns its resources to available.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	trip, err := s.repos.Trips.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if trip.State == domain.TripFinalized {
		return &eligibility.SubmissionError{Kind: eligibility.Immutable}
	}
	if err := s.repos.Trips.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrTripFinalized) {
			return &eligibility.SubmissionError{Kind: eligibility.Immutable}
		}
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if trip.State == domain.TripInProgress {
		if err := setResourceStates(ctx, s.repos, trip, domain.StateAvailable); err != nil {
			return fmt.Errorf("service.TripService.Delete: %w", err)
		}
	}
	slog.InfoContext(ctx, "trip deleted", "trip_id", id, "state", trip.State)
	return nil
}

func (s *TripService) submit(ctx context.Context, c domain.TripCandidate, existing *domain.TripState) (domain.Trip, error) {
	var rep eligibility.Report
	// The guard rejects finalized trips and structural gaps on its own, so the
	// resources are only loaded and evaluated for a candidate that passes both.
	finalized := existing != nil && *existing == domain.TripFinalized
	if !finalized && eligibility.ValidateCandidate(c) == nil {
		a, err := s.assemble(ctx, c)
		if err != nil {
			s.recordSubmission(ctx, c.ID, err)
			return domain.Trip{}, err
		}
		rep = s.evaluator.Evaluate(c, a)
		s.metrics.Evaluation(evaluationOutcome(rep))
		// Resources of a trip under way are in_trip by its own doing.
		if existing == nil || *existing == domain.TripProgrammed {
			rep.Errors = append(rep.Errors, unavailable(a)...)
		}
	}

	trip, err := s.guard.Submit(ctx, c, rep, existing)
	if errors.Is(err, domain.ErrTripFinalized) {
		err = &eligibility.SubmissionError{Kind: eligibility.Immutable}
	}
	if err != nil {
		s.recordSubmission(ctx, c.ID, err)
		var subErr *eligibility.SubmissionError
		if errors.As(err, &subErr) {
			return domain.Trip{}, err
		}
		return domain.Trip{}, fmt.Errorf("service.TripService.submit: %w", err)
	}
	s.recordSubmission(ctx, trip.ID, nil)
	for _, w := range rep.Warnings {
		slog.WarnContext(ctx, "trip accepted with warning", "trip_id", trip.ID, "warning", w)
	}
	return trip, nil
}

// assemble loads the records a candidate points at. Unset ids leave the
// corresponding zero value in the assignment.
func (s *TripService) assemble(ctx context.Context, c domain.TripCandidate) (eligibility.Assignment, error) {
	var (
		a   eligibility.Assignment
		err error
	)
	if c.ServiceID != uuid.Nil {
		if a.Service, err = s.repos.Services.GetByID(ctx, c.ServiceID); err != nil {
			return a, lookupError("service_id", err)
		}
	}
	if c.DriverID != uuid.Nil {
		if a.Driver, err = s.repos.Drivers.GetByID(ctx, c.DriverID); err != nil {
			return a, lookupError("driver_id", err)
		}
	}
	if c.TractorID != uuid.Nil {
		if a.Tractor, err = s.repos.Tractors.GetByID(ctx, c.TractorID); err != nil {
			return a, lookupError("tractor_id", err)
		}
	}
	if c.TrailerID != uuid.Nil {
		if a.Trailer, err = s.repos.Trailers.GetByID(ctx, c.TrailerID); err != nil {
			return a, lookupError("trailer_id", err)
		}
	}
	return a, nil
}

func (s *TripService) recordSubmission(ctx context.Context, tripID uuid.UUID, err error) {
	if err == nil {
		s.metrics.Submission("accepted")
		slog.InfoContext(ctx, "trip submission accepted", "trip_id", tripID)
		return
	}
	var subErr *eligibility.SubmissionError
	if errors.As(err, &subErr) {
		s.metrics.Submission(string(subErr.Kind))
		slog.WarnContext(ctx, "trip submission rejected",
			"trip_id", tripID, "kind", subErr.Kind, "field", subErr.Field, "errors", subErr.Errors)
		return
	}
	s.metrics.Submission("error")
}

// lookupError turns a missing referenced record into an InvalidField error.
// Other failures are wrapped and returned.
func lookupError(field string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return &eligibility.SubmissionError{Kind: eligibility.InvalidField, Field: field}
	}
	return fmt.Errorf("service.TripService: load %s: %w", field, err)
}

func evaluationOutcome(r eligibility.Report) string {
	switch {
	case r.Blocking():
		return "blocked"
	case len(r.Warnings) > 0:
		return "warnings"
	}
	return "clear"
}

// setResourceStates moves the driver, tractor and trailer of trip to state.
// unavailable lists the assigned resources whose physical state keeps them
// off a new trip.
func unavailable(a eligibility.Assignment) []string {
	var errs []string
	for _, r := range []struct {
		kind  domain.ResourceKind
		id    uuid.UUID
		state domain.PhysicalState
	}{
		{domain.KindDriver, a.Driver.ID, a.Driver.State},
		{domain.KindTractor, a.Tractor.ID, a.Tractor.State},
		{domain.KindTrailer, a.Trailer.ID, a.Trailer.State},
	} {
		if r.id != uuid.Nil && r.state != domain.StateAvailable {
			errs = append(errs, fmt.Sprintf("%s: not available (%s).", r.kind.Label(), r.state.Reason()))
		}
	}
	return errs
}

func setResourceStates(ctx context.Context, r TripRepos, trip domain.Trip, state domain.PhysicalState) error {
	if err := r.Drivers.SetState(ctx, trip.DriverID, state); err != nil {
		return err
	}
	if err := r.Tractors.SetState(ctx, trip.TractorID, state); err != nil {
		return err
	}
	return r.Trailers.SetState(ctx, trip.TrailerID, state)
}
