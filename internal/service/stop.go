package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/eligibility"
	"github.com/rutacontrol/backend/internal/metrics"
	"github.com/rutacontrol/backend/internal/repo"
)

// StopService records stops on a trip and drives the trip lifecycle from
// them: the start stop puts the trip in progress and the last arrival
// finalizes it.
type StopService struct {
	repos   TripRepos
	stops   repo.StopRepo
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewStopService constructs a StopService. m may be nil.
func NewStopService(r TripRepos, stops repo.StopRepo, m *metrics.Metrics) *StopService {
	return &StopService{repos: r, stops: stops, metrics: m, now: time.Now}
}

// Record validates a stop against the trip's lifecycle, persists it, and
// applies the resulting transition.
//   - Any stop on a finalized trip is rejected as Immutable.
//   - start is accepted once, on a programmed trip. The trip moves to
//     in_progress and its driver, tractor and trailer to in_trip.
//   - arrival requires a trip in progress. When arrivals reach the number of
//     destinations the trip is finalized and its resources become available.
//   - rest, fuel and incident only annotate the trip.
func (s *StopService) Record(ctx context.Context, stop domain.Stop) (domain.Stop, error) {
	if !stop.Kind.Valid() {
		return domain.Stop{}, fmt.Errorf("%w: unknown stop kind %q", domain.ErrValidation, stop.Kind)
	}
	stop.Location = strings.TrimSpace(stop.Location)
	if stop.RecordedAt.IsZero() {
		stop.RecordedAt = s.now().UTC()
	}

	trip, err := s.repos.Trips.GetByID(ctx, stop.TripID)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Record: %w", err)
	}
	if trip.State == domain.TripFinalized {
		return domain.Stop{}, &eligibility.SubmissionError{Kind: eligibility.Immutable}
	}

	counts, err := s.stops.CountByKind(ctx, trip.ID)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Record: %w", err)
	}
	switch stop.Kind {
	case domain.StopStart:
		if trip.State != domain.TripProgrammed || counts[domain.StopStart] > 0 {
			return domain.Stop{}, fmt.Errorf("%w: trip has already started", domain.ErrValidation)
		}
	case domain.StopArrival:
		if trip.State != domain.TripInProgress {
			return domain.Stop{}, fmt.Errorf("%w: trip has not started", domain.ErrValidation)
		}
	}

	result, err := s.stops.Create(ctx, stop)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Record: %w", err)
	}

	switch stop.Kind {
	case domain.StopStart:
		err = s.transition(ctx, trip, domain.TripInProgress, domain.StateInTrip)
	case domain.StopArrival:
		err = s.finalizeIfArrived(ctx, trip)
	}
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Record: %w", err)
	}
	return result, nil
}

// ListByTripID returns all stops for a trip ordered by recorded_at ascending.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *StopService) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Stop, error) {
	if _, err := s.repos.Trips.GetByID(ctx, tripID); err != nil {
		return nil, fmt.Errorf("service.StopService.ListByTripID: %w", err)
	}
	stops, err := s.stops.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.StopService.ListByTripID: %w", err)
	}
	if stops == nil {
		return []domain.Stop{}, nil
	}
	return stops, nil
}

// finalizeIfArrived recounts arrivals after the insert so that, of two
// arrivals recorded concurrently, the later one always sees both.
func (s *StopService) finalizeIfArrived(ctx context.Context, trip domain.Trip) error {
	counts, err := s.stops.CountByKind(ctx, trip.ID)
	if err != nil {
		return err
	}
	if counts[domain.StopArrival] < len(trip.Destinations) {
		return nil
	}
	return s.transition(ctx, trip, domain.TripFinalized, domain.StateAvailable)
}

func (s *StopService) transition(ctx context.Context, trip domain.Trip, to domain.TripState, resources domain.PhysicalState) error {
	if err := s.repos.Trips.SetState(ctx, trip.ID, to); err != nil {
		return err
	}
	if err := setResourceStates(ctx, s.repos, trip, resources); err != nil {
		return err
	}
	s.metrics.Transition(string(to))
	slog.InfoContext(ctx, "trip state changed", "trip_id", trip.ID, "from", trip.State, "to", to)
	return nil
}
