package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rutacontrol/backend/internal/domain"
)

type serviceBody struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type serviceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func serviceToResponse(s domain.Service) serviceBody {
	return serviceBody{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ListServices handles GET /services.
func (s *Server) ListServices(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalog.List(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	out := make([]serviceBody, len(list))
	for i, svc := range list {
		out[i] = serviceToResponse(svc)
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateService handles POST /services.
func (s *Server) CreateService(w http.ResponseWriter, r *http.Request) {
	var body serviceRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	created, err := s.catalog.Create(r.Context(), domain.Service{Name: body.Name, Description: body.Description})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, serviceToResponse(created))
}

// GetService handles GET /services/{id}.
func (s *Server) GetService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	svc, err := s.catalog.GetByID(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serviceToResponse(svc))
}

// UpdateService handles PUT /services/{id}.
func (s *Server) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body serviceRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	updated, err := s.catalog.Update(r.Context(), domain.Service{ID: id, Name: body.Name, Description: body.Description})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serviceToResponse(updated))
}

// DeleteService handles DELETE /services/{id}.
func (s *Server) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.catalog.Delete(r.Context(), id); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
