package handler

import (
	"net/http"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/rutacontrol/backend/internal/domain"
)

type expiringBody struct {
	ResourceKind  domain.ResourceKind `json:"resource_kind"`
	ResourceID    uuid.UUID           `json:"resource_id"`
	ResourceName  string              `json:"resource_name"`
	Document      domain.DocumentKind `json:"document"`
	DocumentLabel string              `json:"document_label"`
	ExpiresOn     openapi_types.Date  `json:"expires_on"`
	DaysLeft      int                 `json:"days_left"`
	Expired       bool                `json:"expired"`
}

type statsBody struct {
	TripsByState     map[domain.TripState]int                             `json:"trips_by_state"`
	ResourcesByState map[domain.ResourceKind]map[domain.PhysicalState]int `json:"resources_by_state"`
	Expiring         []expiringBody                                       `json:"expiring"`
}

// GetStats handles GET /stats.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.stats.Stats(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsBody{
		TripsByState:     st.TripsByState,
		ResourcesByState: st.ResourcesByState,
		Expiring:         expiringToResponse(st.Expiring),
	})
}

// ListExpiring handles GET /stats/expiring?days=N. Without days the
// dashboard threshold applies.
func (s *Server) ListExpiring(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	n := 0
	if days != nil {
		n = *days
	}
	docs, err := s.stats.Expiring(r.Context(), n)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expiringToResponse(docs))
}

func expiringToResponse(docs []domain.ExpiringDocument) []expiringBody {
	out := make([]expiringBody, len(docs))
	for i, d := range docs {
		out[i] = expiringBody{
			ResourceKind:  d.ResourceKind,
			ResourceID:    d.ResourceID,
			ResourceName:  d.ResourceName,
			Document:      d.Document,
			DocumentLabel: d.DocumentLabel,
			ExpiresOn:     openapi_types.Date{Time: d.ExpiresOn},
			DaysLeft:      d.DaysLeft,
			Expired:       d.Expired,
		}
	}
	return out
}
