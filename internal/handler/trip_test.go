package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/eligibility"
	"github.com/rutacontrol/backend/internal/handler"
)

func tripHandler(svc handler.TripServicer) http.Handler {
	return newHTTPHandler(handler.Deps{Trips: svc})
}

func tripFixture() domain.Trip {
	return domain.Trip{
		ID:            uuid.New(),
		DriverID:      uuid.New(),
		TractorID:     uuid.New(),
		TrailerID:     uuid.New(),
		ServiceID:     uuid.New(),
		DepartureDate: date(2024, 1, 10),
		Origin:        "Neuquén",
		Destinations: []domain.Destination{
			{Order: 1, Location: "Bahía Blanca"},
			{Order: 2, Location: "Rosario"},
		},
		State:     domain.TripProgrammed,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func tripPayload(tr domain.Trip) map[string]any {
	return map[string]any{
		"driver_id":      tr.DriverID.String(),
		"tractor_id":     tr.TractorID.String(),
		"trailer_id":     tr.TrailerID.String(),
		"service_id":     tr.ServiceID.String(),
		"departure_date": tr.DepartureDate.Format(time.DateOnly),
		"origin":         tr.Origin,
		"destinations": []map[string]any{
			{"order": 1, "ubicacion": "Bahía Blanca"},
			{"order": 2, "ubicacion": "Rosario"},
		},
	}
}

// ---- POST /trips -----------------------------------------------------------

func TestCreateTrip_201(t *testing.T) {
	fixture := tripFixture()
	var got domain.TripCandidate
	svc := &mockTripServicer{
		create: func(_ context.Context, c domain.TripCandidate) (domain.Trip, error) {
			got = c
			return fixture, nil
		},
	}
	payload := tripPayload(fixture)
	payload["id"] = uuid.New().String()

	rec := do(t, tripHandler(svc), http.MethodPost, "/trips", jsonBody(t, payload), domain.RoleDispatcher)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, uuid.Nil, got.ID, "create must ignore a client-supplied id")
	assert.Equal(t, fixture.DriverID, got.DriverID)
	assert.Equal(t, fixture.ServiceID, got.ServiceID)
	require.NotNil(t, got.DepartureDate)
	assert.True(t, got.DepartureDate.Equal(date(2024, 1, 10)))
	require.Len(t, got.Destinations, 2)
	assert.Equal(t, "Rosario", got.Destinations[1].Location)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID.String(), resp["id"])
	assert.Equal(t, "2024-01-10", resp["departure_date"])
	assert.Equal(t, "programmed", resp["state"])
	dests := resp["destinations"].([]any)
	assert.Equal(t, "Bahía Blanca", dests[0].(map[string]any)["ubicacion"])
}

func TestCreateTrip_EmptyResourceIDReachesGuard(t *testing.T) {
	var got domain.TripCandidate
	svc := &mockTripServicer{
		create: func(_ context.Context, c domain.TripCandidate) (domain.Trip, error) {
			got = c
			return domain.Trip{}, &eligibility.SubmissionError{Kind: eligibility.InvalidField, Field: "driver_id"}
		},
	}
	payload := tripPayload(tripFixture())
	payload["driver_id"] = ""

	rec := do(t, tripHandler(svc), http.MethodPost, "/trips", jsonBody(t, payload), domain.RoleDispatcher)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, uuid.Nil, got.DriverID)
	code, details := errorCode(t, rec)
	assert.Equal(t, "invalid_field", code)
	assert.Equal(t, []string{"driver_id"}, details)
}

func TestCreateTrip_422_DocumentationExpired(t *testing.T) {
	msgs := []string{
		"DRIVER: license will be EXPIRED on the departure date.",
		"TRACTOR: RTO will be EXPIRED on the departure date.",
	}
	svc := &mockTripServicer{
		create: func(_ context.Context, _ domain.TripCandidate) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w",
				&eligibility.SubmissionError{Kind: eligibility.DocumentationExpired, Errors: msgs})
		},
	}

	rec := do(t, tripHandler(svc), http.MethodPost, "/trips", jsonBody(t, tripPayload(tripFixture())), domain.RoleAdmin)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	code, details := errorCode(t, rec)
	assert.Equal(t, "documentation_expired", code)
	assert.Equal(t, msgs, details)
}

func TestCreateTrip_400_MalformedID(t *testing.T) {
	payload := tripPayload(tripFixture())
	payload["tractor_id"] = "not-a-uuid"

	rec := do(t, tripHandler(&mockTripServicer{}), http.MethodPost, "/trips", jsonBody(t, payload), domain.RoleAdmin)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTrip_400_MissingBody(t *testing.T) {
	rec := do(t, tripHandler(&mockTripServicer{}), http.MethodPost, "/trips", nil, domain.RoleAdmin)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTrip_403_Viewer(t *testing.T) {
	rec := do(t, tripHandler(&mockTripServicer{}), http.MethodPost, "/trips",
		jsonBody(t, tripPayload(tripFixture())), domain.RoleViewer)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateTrip_500_HidesInternalError(t *testing.T) {
	svc := &mockTripServicer{
		create: func(_ context.Context, _ domain.TripCandidate) (domain.Trip, error) {
			return domain.Trip{}, errors.New("connection reset by peer")
		},
	}

	rec := do(t, tripHandler(svc), http.MethodPost, "/trips", jsonBody(t, tripPayload(tripFixture())), domain.RoleAdmin)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

// ---- POST /trips/evaluate --------------------------------------------------

func TestEvaluateTrip_200(t *testing.T) {
	editing := uuid.New()
	var got domain.TripCandidate
	svc := &mockTripServicer{
		evaluate: func(_ context.Context, c domain.TripCandidate) (eligibility.Report, error) {
			got = c
			return eligibility.Report{Warnings: []string{"TRACTOR: RTO expires 5 day(s) after departure."}}, nil
		},
	}
	payload := tripPayload(tripFixture())
	payload["id"] = editing.String()

	rec := do(t, tripHandler(svc), http.MethodPost, "/trips/evaluate", jsonBody(t, payload), domain.RoleViewer)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, editing, got.ID)

	var resp struct {
		Errors   []string `json:"errors"`
		Warnings []string `json:"warnings"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotNil(t, resp.Errors, "errors must be an array, not null")
	assert.Empty(t, resp.Errors)
	assert.Equal(t, []string{"TRACTOR: RTO expires 5 day(s) after departure."}, resp.Warnings)
}

// ---- GET /trips ------------------------------------------------------------

func TestListTrips_200(t *testing.T) {
	var gotFilter domain.TripFilter
	var gotParams domain.PaginationParams
	svc := &mockTripServicer{
		listPaged: func(_ context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error) {
			gotFilter, gotParams = f, p
			return []domain.Trip{tripFixture(), tripFixture()}, 7, nil
		},
	}

	rec := do(t, tripHandler(svc), http.MethodGet, "/trips?page=2&limit=2&state=in_progress", nil, domain.RoleViewer)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TripInProgress, gotFilter.State)
	assert.Equal(t, domain.PaginationParams{Page: 2, Limit: 2}, gotParams)

	var resp struct {
		Data       []map[string]any `json:"data"`
		Pagination struct {
			Page  int   `json:"page"`
			Limit int   `json:"limit"`
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, int64(7), resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.Page)
}

func TestListTrips_200_Empty(t *testing.T) {
	svc := &mockTripServicer{
		listPaged: func(_ context.Context, _ domain.TripFilter, _ domain.PaginationParams) ([]domain.Trip, int64, error) {
			return []domain.Trip{}, 0, nil
		},
	}

	rec := do(t, tripHandler(svc), http.MethodGet, "/trips", nil, domain.RoleViewer)

	assert.Equal(t, http.StatusOK, rec.Code)
	// Must be a JSON array, not null.
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestListTrips_400_BadPage(t *testing.T) {
	rec := do(t, tripHandler(&mockTripServicer{}), http.MethodGet, "/trips?page=zero", nil, domain.RoleViewer)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTrips_422_UnknownState(t *testing.T) {
	svc := &mockTripServicer{
		listPaged: func(_ context.Context, _ domain.TripFilter, _ domain.PaginationParams) ([]domain.Trip, int64, error) {
			return nil, 0, fmt.Errorf("%w: unknown trip state %q", domain.ErrValidation, "paused")
		},
	}

	rec := do(t, tripHandler(svc), http.MethodGet, "/trips?state=paused", nil, domain.RoleViewer)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `unknown trip state`))
}

// ---- GET /trips/{id} -------------------------------------------------------

func TestGetTrip_200(t *testing.T) {
	fixture := tripFixture()
	svc := &mockTripServicer{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Trip, error) {
			assert.Equal(t, fixture.ID, id)
			return fixture, nil
		},
	}

	rec := do(t, tripHandler(svc), http.MethodGet, "/trips/"+fixture.ID.String(), nil, domain.RoleViewer)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetTrip_404(t *testing.T) {
	svc := &mockTripServicer{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", domain.ErrNotFound)
		},
	}

	rec := do(t, tripHandler(svc), http.MethodGet, "/trips/"+uuid.New().String(), nil, domain.RoleViewer)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	code, _ := errorCode(t, rec)
	assert.Equal(t, "not_found", code)
}

func TestGetTrip_400_BadID(t *testing.T) {
	rec := do(t, tripHandler(&mockTripServicer{}), http.MethodGet, "/trips/42", nil, domain.RoleViewer)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- PUT /trips/{id} -------------------------------------------------------

func TestUpdateTrip_200_UsesPathID(t *testing.T) {
	fixture := tripFixture()
	svc := &mockTripServicer{
		update: func(_ context.Context, id uuid.UUID, c domain.TripCandidate) (domain.Trip, error) {
			assert.Equal(t, fixture.ID, id)
			assert.Equal(t, fixture.ID, c.ID)
			return fixture, nil
		},
	}
	payload := tripPayload(fixture)
	payload["id"] = uuid.New().String()

	rec := do(t, tripHandler(svc), http.MethodPut, "/trips/"+fixture.ID.String(), jsonBody(t, payload), domain.RoleDispatcher)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateTrip_409_Finalized(t *testing.T) {
	svc := &mockTripServicer{
		update: func(_ context.Context, _ uuid.UUID, _ domain.TripCandidate) (domain.Trip, error) {
			return domain.Trip{}, &eligibility.SubmissionError{Kind: eligibility.Immutable}
		},
	}

	rec := do(t, tripHandler(svc), http.MethodPut, "/trips/"+uuid.New().String(),
		jsonBody(t, tripPayload(tripFixture())), domain.RoleDispatcher)

	assert.Equal(t, http.StatusConflict, rec.Code)
	code, _ := errorCode(t, rec)
	assert.Equal(t, "trip_finalized", code)
}

// ---- DELETE /trips/{id} ----------------------------------------------------

func TestDeleteTrip_204(t *testing.T) {
	svc := &mockTripServicer{
		delete: func(_ context.Context, _ uuid.UUID) error { return nil },
	}

	rec := do(t, tripHandler(svc), http.MethodDelete, "/trips/"+uuid.New().String(), nil, domain.RoleAdmin)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeleteTrip_403_Dispatcher(t *testing.T) {
	rec := do(t, tripHandler(&mockTripServicer{}), http.MethodDelete, "/trips/"+uuid.New().String(), nil, domain.RoleDispatcher)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteTrip_409_Finalized(t *testing.T) {
	svc := &mockTripServicer{
		delete: func(_ context.Context, _ uuid.UUID) error {
			return fmt.Errorf("service.TripService.Delete: %w", &eligibility.SubmissionError{Kind: eligibility.Immutable})
		},
	}

	rec := do(t, tripHandler(svc), http.MethodDelete, "/trips/"+uuid.New().String(), nil, domain.RoleAdmin)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
