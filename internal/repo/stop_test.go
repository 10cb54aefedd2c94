package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rutacontrol/backend/internal/domain"
)

func stopFixture(tripID uuid.UUID, kind domain.StopKind, at time.Time) domain.Stop {
	return domain.Stop{
		TripID:     tripID,
		Kind:       kind,
		Location:   "Ruta 9 km 120",
		RecordedAt: at,
	}
}

func TestStopRepo_Create(t *testing.T) {
	r := newTestRepos(t)
	trip := mustCreateTrip(t, r)
	at := time.Date(2025, 6, 1, 6, 30, 0, 0, time.UTC)

	got, err := r.stops.Create(context.Background(), stopFixture(trip.ID, domain.StopStart, at))

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, trip.ID, got.TripID)
	assert.Equal(t, domain.StopStart, got.Kind)
	assert.True(t, got.RecordedAt.Equal(at))
}

func TestStopRepo_Create_UnknownTrip(t *testing.T) {
	r := newTestRepos(t)

	_, err := r.stops.Create(context.Background(), stopFixture(uuid.New(), domain.StopStart, time.Now()))

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestStopRepo_ListByTripID_OrderedByRecordedAt(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	trip := mustCreateTrip(t, r)
	base := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)

	_, err := r.stops.Create(ctx, stopFixture(trip.ID, domain.StopArrival, base.Add(5*time.Hour)))
	require.NoError(t, err)
	_, err = r.stops.Create(ctx, stopFixture(trip.ID, domain.StopStart, base))
	require.NoError(t, err)

	stops, err := r.stops.ListByTripID(ctx, trip.ID)

	require.NoError(t, err)
	require.Len(t, stops, 2)
	assert.Equal(t, domain.StopStart, stops[0].Kind)
	assert.Equal(t, domain.StopArrival, stops[1].Kind)
}

func TestStopRepo_ListByTripID_Empty(t *testing.T) {
	r := newTestRepos(t)
	trip := mustCreateTrip(t, r)

	stops, err := r.stops.ListByTripID(context.Background(), trip.ID)

	require.NoError(t, err)
	assert.NotNil(t, stops)
	assert.Empty(t, stops)
}

func TestStopRepo_CountByKind(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	trip := mustCreateTrip(t, r)
	now := time.Now().UTC()

	for _, k := range []domain.StopKind{domain.StopStart, domain.StopFuel, domain.StopArrival, domain.StopArrival} {
		_, err := r.stops.Create(ctx, stopFixture(trip.ID, k, now))
		require.NoError(t, err)
	}

	counts, err := r.stops.CountByKind(ctx, trip.ID)

	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.StopStart])
	assert.Equal(t, 2, counts[domain.StopArrival])
	assert.Equal(t, 0, counts[domain.StopIncident])
}
