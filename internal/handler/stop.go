package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rutacontrol/backend/internal/domain"
)

type stopRequest struct {
	Kind       domain.StopKind `json:"kind"`
	Location   string          `json:"location"`
	RecordedAt *time.Time      `json:"recorded_at"`
	Notes      string          `json:"notes"`
}

type stopBody struct {
	ID         uuid.UUID       `json:"id"`
	TripID     uuid.UUID       `json:"trip_id"`
	Kind       domain.StopKind `json:"kind"`
	Location   string          `json:"location"`
	RecordedAt time.Time       `json:"recorded_at"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// RecordStop handles POST /trips/{id}/stops. Recording the start or the
// last arrival moves the trip to its next state.
func (s *Server) RecordStop(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathID(w, r)
	if !ok {
		return
	}
	var body stopRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	stop := domain.Stop{
		TripID:   tripID,
		Kind:     body.Kind,
		Location: body.Location,
		Notes:    body.Notes,
	}
	if body.RecordedAt != nil {
		stop.RecordedAt = *body.RecordedAt
	}

	created, err := s.stops.Record(r.Context(), stop)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stopToResponse(created))
}

// ListStops handles GET /trips/{id}/stops, oldest first.
func (s *Server) ListStops(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathID(w, r)
	if !ok {
		return
	}
	stops, err := s.stops.ListByTripID(r.Context(), tripID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	out := make([]stopBody, len(stops))
	for i, st := range stops {
		out[i] = stopToResponse(st)
	}
	writeJSON(w, http.StatusOK, out)
}

func stopToResponse(s domain.Stop) stopBody {
	return stopBody{
		ID:         s.ID,
		TripID:     s.TripID,
		Kind:       s.Kind,
		Location:   s.Location,
		RecordedAt: s.RecordedAt,
		Notes:      s.Notes,
		CreatedAt:  s.CreatedAt,
	}
}
