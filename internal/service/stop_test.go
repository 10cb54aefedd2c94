package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/eligibility"
	"github.com/rutacontrol/backend/internal/service"
)

// stopHarness records every state change the StopService makes.
type stopHarness struct {
	trip      domain.Trip
	counts    map[domain.StopKind]int
	tripState []domain.TripState
	resources map[uuid.UUID]domain.PhysicalState
	created   []domain.Stop

	// afterCreate runs after each insert, standing in for concurrent requests.
	afterCreate func()
}

func newStopHarness(state domain.TripState, destinations int) *stopHarness {
	h := &stopHarness{
		trip: domain.Trip{
			ID:        uuid.New(),
			State:     state,
			DriverID:  uuid.New(),
			TractorID: uuid.New(),
			TrailerID: uuid.New(),
		},
		counts:    map[domain.StopKind]int{},
		resources: map[uuid.UUID]domain.PhysicalState{},
	}
	for i := 1; i <= destinations; i++ {
		h.trip.Destinations = append(h.trip.Destinations, domain.Destination{Order: i, Location: "dest"})
	}
	return h
}

func (h *stopHarness) service() *service.StopService {
	setRes := func(_ context.Context, id uuid.UUID, st domain.PhysicalState) error {
		h.resources[id] = st
		return nil
	}
	repos := service.TripRepos{
		Trips: &mockTripRepo{
			getByID: func(_ context.Context, id uuid.UUID) (domain.Trip, error) {
				if id != h.trip.ID {
					return domain.Trip{}, domain.ErrNotFound
				}
				return h.trip, nil
			},
			setState: func(_ context.Context, _ uuid.UUID, st domain.TripState) error {
				h.tripState = append(h.tripState, st)
				h.trip.State = st
				return nil
			},
		},
		Drivers:  &mockDriverRepo{setState: setRes},
		Tractors: &mockTractorRepo{setState: setRes},
		Trailers: &mockTrailerRepo{setState: setRes},
	}
	stops := &mockStopRepo{
		create: func(_ context.Context, s domain.Stop) (domain.Stop, error) {
			s.ID = uuid.New()
			h.created = append(h.created, s)
			h.counts[s.Kind]++
			if h.afterCreate != nil {
				h.afterCreate()
			}
			return s, nil
		},
		countByKind: func(context.Context, uuid.UUID) (map[domain.StopKind]int, error) {
			out := map[domain.StopKind]int{}
			for k, v := range h.counts {
				out[k] = v
			}
			return out, nil
		},
		listByTripID: func(context.Context, uuid.UUID) ([]domain.Stop, error) { return nil, nil },
	}
	return service.NewStopService(repos, stops, nil)
}

func (h *stopHarness) stop(kind domain.StopKind) domain.Stop {
	return domain.Stop{TripID: h.trip.ID, Kind: kind, RecordedAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
}

func TestStopService_Start_MovesTripInProgress(t *testing.T) {
	h := newStopHarness(domain.TripProgrammed, 2)
	svc := h.service()

	_, err := svc.Record(context.Background(), h.stop(domain.StopStart))

	require.NoError(t, err)
	assert.Equal(t, []domain.TripState{domain.TripInProgress}, h.tripState)
	assert.Equal(t, domain.StateInTrip, h.resources[h.trip.DriverID])
	assert.Equal(t, domain.StateInTrip, h.resources[h.trip.TractorID])
	assert.Equal(t, domain.StateInTrip, h.resources[h.trip.TrailerID])
}

func TestStopService_SecondStartRejected(t *testing.T) {
	h := newStopHarness(domain.TripProgrammed, 2)
	svc := h.service()
	_, err := svc.Record(context.Background(), h.stop(domain.StopStart))
	require.NoError(t, err)

	_, err = svc.Record(context.Background(), h.stop(domain.StopStart))

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Len(t, h.created, 1)
}

func TestStopService_ArrivalBeforeStartRejected(t *testing.T) {
	h := newStopHarness(domain.TripProgrammed, 1)
	svc := h.service()

	_, err := svc.Record(context.Background(), h.stop(domain.StopArrival))

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, h.created)
}

func TestStopService_LastArrivalFinalizes(t *testing.T) {
	h := newStopHarness(domain.TripProgrammed, 2)
	svc := h.service()
	ctx := context.Background()

	for _, k := range []domain.StopKind{domain.StopStart, domain.StopFuel, domain.StopArrival} {
		_, err := svc.Record(ctx, h.stop(k))
		require.NoError(t, err)
	}
	assert.Equal(t, domain.TripInProgress, h.trip.State, "one of two destinations reached")

	_, err := svc.Record(ctx, h.stop(domain.StopArrival))

	require.NoError(t, err)
	assert.Equal(t, []domain.TripState{domain.TripInProgress, domain.TripFinalized}, h.tripState)
	assert.Equal(t, domain.StateAvailable, h.resources[h.trip.DriverID])
	assert.Equal(t, domain.StateAvailable, h.resources[h.trip.TrailerID])
}

func TestStopService_ConcurrentArrivalStillFinalizes(t *testing.T) {
	h := newStopHarness(domain.TripInProgress, 2)
	// The other destination's arrival lands between this request's checks
	// and its own recount.
	h.afterCreate = func() {
		h.afterCreate = nil
		h.counts[domain.StopArrival]++
	}
	svc := h.service()

	_, err := svc.Record(context.Background(), h.stop(domain.StopArrival))

	require.NoError(t, err)
	assert.Equal(t, []domain.TripState{domain.TripFinalized}, h.tripState)
	assert.Equal(t, domain.StateAvailable, h.resources[h.trip.TractorID])
}

func TestStopService_FinalizedTripIsImmutable(t *testing.T) {
	h := newStopHarness(domain.TripFinalized, 1)
	svc := h.service()

	_, err := svc.Record(context.Background(), h.stop(domain.StopIncident))

	var subErr *eligibility.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, eligibility.Immutable, subErr.Kind)
}

func TestStopService_UnknownKind(t *testing.T) {
	h := newStopHarness(domain.TripInProgress, 1)
	svc := h.service()

	_, err := svc.Record(context.Background(), h.stop("picnic"))

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStopService_DefaultsRecordedAt(t *testing.T) {
	h := newStopHarness(domain.TripInProgress, 3)
	svc := h.service()
	s := h.stop(domain.StopRest)
	s.RecordedAt = time.Time{}

	got, err := svc.Record(context.Background(), s)

	require.NoError(t, err)
	assert.False(t, got.RecordedAt.IsZero())
}

func TestStopService_ListByTripID(t *testing.T) {
	h := newStopHarness(domain.TripInProgress, 1)
	svc := h.service()

	got, err := svc.ListByTripID(context.Background(), h.trip.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)

	_, err = svc.ListByTripID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
