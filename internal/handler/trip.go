package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/eligibility"
)

type destinationBody struct {
	Order    int    `json:"order"`
	Location string `json:"ubicacion"`
	Notes    string `json:"notes,omitempty"`
}

// tripRequest is the body of POST /trips, PUT /trips/{id} and
// POST /trips/evaluate. Resource ids are strings so an unselected resource
// ("") reaches the submission guard as a missing field instead of failing
// JSON decoding.
type tripRequest struct {
	ID            string              `json:"id"`
	DriverID      string              `json:"driver_id"`
	TractorID     string              `json:"tractor_id"`
	TrailerID     string              `json:"trailer_id"`
	ServiceID     string              `json:"service_id"`
	DepartureDate *openapi_types.Date `json:"departure_date"`
	Origin        string              `json:"origin"`
	Destinations  []destinationBody   `json:"destinations"`
	Notes         string              `json:"notes"`
}

type tripBody struct {
	ID            uuid.UUID          `json:"id"`
	DriverID      uuid.UUID          `json:"driver_id"`
	TractorID     uuid.UUID          `json:"tractor_id"`
	TrailerID     uuid.UUID          `json:"trailer_id"`
	ServiceID     uuid.UUID          `json:"service_id"`
	DepartureDate openapi_types.Date `json:"departure_date"`
	Origin        string             `json:"origin"`
	Destinations  []destinationBody  `json:"destinations"`
	State         domain.TripState   `json:"state"`
	Notes         string             `json:"notes,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

type reportBody struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

type paginationBody struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type tripListBody struct {
	Data       []tripBody     `json:"data"`
	Pagination paginationBody `json:"pagination"`
}

// EvaluateTrip handles POST /trips/evaluate. It reports document errors and
// warnings for a candidate without saving anything.
func (s *Server) EvaluateTrip(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeCandidate(w, r)
	if !ok {
		return
	}
	rep, err := s.trips.Evaluate(r.Context(), c)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reportToResponse(rep))
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeCandidate(w, r)
	if !ok {
		return
	}
	c.ID = uuid.Nil
	created, err := s.trips.Create(r.Context(), c)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= (defaults: page=1, limit=20, max=100) and ?state=.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	params := domain.NewPaginationParams(page, limit)
	filter := domain.TripFilter{State: domain.TripState(r.URL.Query().Get("state"))}

	trips, total, err := s.trips.ListPaged(r.Context(), filter, params)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	data := make([]tripBody, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, tripListBody{
		Data:       data,
		Pagination: paginationBody{Page: params.Page, Limit: params.Limit, Total: total, Pages: params.Pages(total)},
	})
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PUT /trips/{id}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, ok := decodeCandidate(w, r)
	if !ok {
		return
	}
	c.ID = id
	updated, err := s.trips.Update(r.Context(), id, c)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{id}. Finalized trips answer 409.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.trips.Delete(r.Context(), id); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// decodeCandidate reads a tripRequest into a domain.TripCandidate. The body's
// id only matters for evaluations; create and update overwrite it.
func decodeCandidate(w http.ResponseWriter, r *http.Request) (domain.TripCandidate, bool) {
	var body tripRequest
	if !decodeJSON(w, r, &body) {
		return domain.TripCandidate{}, false
	}

	ids := make([]uuid.UUID, 5)
	for i, f := range []struct{ name, raw string }{
		{"id", body.ID},
		{"driver_id", body.DriverID},
		{"tractor_id", body.TractorID},
		{"trailer_id", body.TrailerID},
		{"service_id", body.ServiceID},
	} {
		raw := strings.TrimSpace(f.raw)
		if raw == "" {
			continue
		}
		parsed, err := uuid.Parse(raw)
		if err != nil {
			badRequest(w, f.name+" must be a UUID")
			return domain.TripCandidate{}, false
		}
		ids[i] = parsed
	}

	c := domain.TripCandidate{
		ID:        ids[0],
		DriverID:  ids[1],
		TractorID: ids[2],
		TrailerID: ids[3],
		ServiceID: ids[4],
		Origin:    body.Origin,
		Notes:     body.Notes,
	}
	if body.DepartureDate != nil {
		d := body.DepartureDate.Time
		c.DepartureDate = &d
	}
	c.Destinations = make([]domain.Destination, len(body.Destinations))
	for i, d := range body.Destinations {
		c.Destinations[i] = domain.Destination{Order: d.Order, Location: d.Location, Notes: d.Notes}
	}
	return c, true
}

// tripToResponse converts a domain.Trip into its JSON shape.
func tripToResponse(t domain.Trip) tripBody {
	dests := make([]destinationBody, len(t.Destinations))
	for i, d := range t.Destinations {
		dests[i] = destinationBody{Order: d.Order, Location: d.Location, Notes: d.Notes}
	}
	return tripBody{
		ID:            t.ID,
		DriverID:      t.DriverID,
		TractorID:     t.TractorID,
		TrailerID:     t.TrailerID,
		ServiceID:     t.ServiceID,
		DepartureDate: openapi_types.Date{Time: t.DepartureDate},
		Origin:        t.Origin,
		Destinations:  dests,
		State:         t.State,
		Notes:         t.Notes,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func reportToResponse(rep eligibility.Report) reportBody {
	out := reportBody{Errors: rep.Errors, Warnings: rep.Warnings}
	if out.Errors == nil {
		out.Errors = []string{}
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	return out
}
