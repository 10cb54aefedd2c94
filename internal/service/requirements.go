package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/eligibility"
	"github.com/rutacontrol/backend/internal/metrics"
)

// RequirementsService exposes the active document requirement table and
// reloads it from disk on demand.
type RequirementsService struct {
	registry *eligibility.Registry
	metrics  *metrics.Metrics
}

// NewRequirementsService constructs a RequirementsService. m may be nil.
func NewRequirementsService(r *eligibility.Registry, m *metrics.Metrics) *RequirementsService {
	return &RequirementsService{registry: r, metrics: m}
}

// Current returns the active table.
func (s *RequirementsService) Current() *eligibility.Table {
	return s.registry.Table()
}

// Reload re-reads the table file. On failure the previous table stays active
// and the parse error is reported as domain.ErrValidation.
func (s *RequirementsService) Reload(ctx context.Context) (*eligibility.Table, error) {
	if err := s.registry.Reload(); err != nil {
		s.metrics.Reload(false)
		slog.ErrorContext(ctx, "requirement table reload failed", "path", s.registry.Path(), "error", err)
		return nil, fmt.Errorf("service.RequirementsService.Reload: %w: %v", domain.ErrValidation, err)
	}
	s.metrics.Reload(true)
	t := s.registry.Table()
	slog.InfoContext(ctx, "requirement table reloaded", "path", s.registry.Path(), "services", len(t.ServiceNames()))
	return t, nil
}
