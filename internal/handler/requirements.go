package handler

import (
	"net/http"

	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/eligibility"
)

type requirementsBody struct {
	Labels    map[domain.DocumentKind]string                `json:"labels"`
	Resources map[domain.ResourceKind][]domain.DocumentKind `json:"resources"`
	Services  map[string][]domain.DocumentKind              `json:"services"`
}

func tableToResponse(t *eligibility.Table) requirementsBody {
	snap := t.Snapshot()
	return requirementsBody{Labels: snap.Labels, Resources: snap.Resources, Services: snap.Services}
}

// GetRequirements handles GET /requirements: the active document table.
func (s *Server) GetRequirements(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, tableToResponse(s.requirements.Current()))
}

// ReloadRequirements handles POST /admin/requirements/reload. A file that
// fails to parse answers 422 and leaves the previous table active.
func (s *Server) ReloadRequirements(w http.ResponseWriter, r *http.Request) {
	t, err := s.requirements.Reload(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tableToResponse(t))
}
