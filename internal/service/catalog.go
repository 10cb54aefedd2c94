package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/repo"
)

// CatalogService manages the service catalogue (gas licuado, combustible
// líquido, ...). Service names are what resources' service types match.
type CatalogService struct {
	repo repo.ServiceRepo
}

// NewCatalogService constructs a CatalogService backed by the provided repo.
func NewCatalogService(r repo.ServiceRepo) *CatalogService {
	return &CatalogService{repo: r}
}

// Create validates and persists a new service.
func (s *CatalogService) Create(ctx context.Context, svc domain.Service) (domain.Service, error) {
	if err := validateService(&svc); err != nil {
		return domain.Service{}, err
	}
	result, err := s.repo.Create(ctx, svc)
	if err != nil {
		return domain.Service{}, fmt.Errorf("service.CatalogService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single service by ID.
func (s *CatalogService) GetByID(ctx context.Context, id uuid.UUID) (domain.Service, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Service{}, fmt.Errorf("service.CatalogService.GetByID: %w", err)
	}
	return result, nil
}

// List returns every service ordered by name.
func (s *CatalogService) List(ctx context.Context) ([]domain.Service, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.CatalogService.List: %w", err)
	}
	if out == nil {
		return []domain.Service{}, nil
	}
	return out, nil
}

// Update validates and persists changes to a service.
func (s *CatalogService) Update(ctx context.Context, svc domain.Service) (domain.Service, error) {
	if err := validateService(&svc); err != nil {
		return domain.Service{}, err
	}
	result, err := s.repo.Update(ctx, svc)
	if err != nil {
		return domain.Service{}, fmt.Errorf("service.CatalogService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a service. Returns domain.ErrConflict while trips use it.
func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.CatalogService.Delete: %w", err)
	}
	return nil
}

func validateService(svc *domain.Service) error {
	svc.Name = strings.TrimSpace(svc.Name)
	if svc.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return nil
}
