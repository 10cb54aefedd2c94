package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/eligibility"
	"github.com/rutacontrol/backend/internal/repo"
)

// resourceDeps is shared by the three fleet resource services: the service
// catalogue to resolve availability filters, the requirement table to trim
// documents, and a clock for the default availability date.
type resourceDeps struct {
	services repo.ServiceRepo
	tables   eligibility.TableSource
	now      func() time.Time
}

// availabilityScope resolves the optional service filter and reference date
// of an availability query. A nil date means today.
func (d resourceDeps) availabilityScope(ctx context.Context, serviceID *uuid.UUID, date *time.Time) (*domain.Service, time.Time, error) {
	ref := d.now()
	if date != nil {
		ref = *date
	}
	if serviceID == nil {
		return nil, ref, nil
	}
	svc, err := d.services.GetByID(ctx, *serviceID)
	if err != nil {
		return nil, time.Time{}, err
	}
	return &svc, ref, nil
}

// prepareResource normalises the shared resource fields before a write.
// An empty state defaults to available; documents outside the requirement
// table for the resource's kind and service type are dropped.
func (d resourceDeps) prepareResource(r *domain.Resource, kind domain.ResourceKind) error {
	r.Kind = kind
	r.ServiceType = strings.TrimSpace(r.ServiceType)
	if r.State == "" {
		r.State = domain.StateAvailable
	}
	if !r.State.Valid() {
		return fmt.Errorf("%w: unknown state %q", domain.ErrValidation, r.State)
	}
	r.Documents = d.tables.Table().Retain(kind, r.ServiceType, r.Documents)
	return nil
}

func normalizePlate(p string) string {
	return strings.ToUpper(strings.TrimSpace(p))
}

// ---- drivers ---------------------------------------------------------------

// DriverService implements business logic for drivers.
type DriverService struct {
	resourceDeps
	repo repo.DriverRepo
}

// NewDriverService constructs a DriverService.
func NewDriverService(r repo.DriverRepo, services repo.ServiceRepo, tables eligibility.TableSource) *DriverService {
	return &DriverService{repo: r, resourceDeps: resourceDeps{services: services, tables: tables, now: time.Now}}
}

// Create validates and persists a new driver.
func (s *DriverService) Create(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	if err := s.prepare(&d); err != nil {
		return domain.Driver{}, err
	}
	result, err := s.repo.Create(ctx, d)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("service.DriverService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single driver by ID.
func (s *DriverService) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("service.DriverService.GetByID: %w", err)
	}
	return result, nil
}

// List returns drivers, optionally narrowed to one physical state.
func (s *DriverService) List(ctx context.Context, state domain.PhysicalState) ([]domain.Driver, error) {
	if state != "" && !state.Valid() {
		return nil, fmt.Errorf("%w: unknown state %q", domain.ErrValidation, state)
	}
	out, err := s.repo.List(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("service.DriverService.List: %w", err)
	}
	if out == nil {
		return []domain.Driver{}, nil
	}
	return out, nil
}

// Update validates and persists changes to an existing driver.
func (s *DriverService) Update(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	if err := s.prepare(&d); err != nil {
		return domain.Driver{}, err
	}
	result, err := s.repo.Update(ctx, d)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("service.DriverService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a driver. Returns domain.ErrConflict while trips reference it.
func (s *DriverService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.DriverService.Delete: %w", err)
	}
	return nil
}

// Availability partitions every driver into usable and blocked for a trip
// selector. Drivers are filtered by service type only when serviceID is set.
func (s *DriverService) Availability(ctx context.Context, serviceID *uuid.UUID, date *time.Time) (eligibility.Availability[domain.Driver], error) {
	svc, ref, err := s.availabilityScope(ctx, serviceID, date)
	if err != nil {
		return eligibility.Availability[domain.Driver]{}, fmt.Errorf("service.DriverService.Availability: %w", err)
	}
	all, err := s.repo.List(ctx, "")
	if err != nil {
		return eligibility.Availability[domain.Driver]{}, fmt.Errorf("service.DriverService.Availability: %w", err)
	}
	return eligibility.Partition(all, svc, ref, s.tables.Table()), nil
}

func (s *DriverService) prepare(d *domain.Driver) error {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.NationalID = strings.TrimSpace(d.NationalID)
	switch {
	case d.FirstName == "":
		return fmt.Errorf("%w: first_name is required", domain.ErrValidation)
	case d.LastName == "":
		return fmt.Errorf("%w: last_name is required", domain.ErrValidation)
	case d.NationalID == "":
		return fmt.Errorf("%w: national_id is required", domain.ErrValidation)
	}
	return s.prepareResource(&d.Resource, domain.KindDriver)
}

// ---- tractors --------------------------------------------------------------

// TractorService implements business logic for tractors.
type TractorService struct {
	resourceDeps
	repo repo.TractorRepo
}

// NewTractorService constructs a TractorService.
func NewTractorService(r repo.TractorRepo, services repo.ServiceRepo, tables eligibility.TableSource) *TractorService {
	return &TractorService{repo: r, resourceDeps: resourceDeps{services: services, tables: tables, now: time.Now}}
}

// Create validates and persists a new tractor.
func (s *TractorService) Create(ctx context.Context, t domain.Tractor) (domain.Tractor, error) {
	if err := s.prepare(&t); err != nil {
		return domain.Tractor{}, err
	}
	result, err := s.repo.Create(ctx, t)
	if err != nil {
		return domain.Tractor{}, fmt.Errorf("service.TractorService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single tractor by ID.
func (s *TractorService) GetByID(ctx context.Context, id uuid.UUID) (domain.Tractor, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Tractor{}, fmt.Errorf("service.TractorService.GetByID: %w", err)
	}
	return result, nil
}

// List returns tractors, optionally narrowed to one physical state.
func (s *TractorService) List(ctx context.Context, state domain.PhysicalState) ([]domain.Tractor, error) {
	if state != "" && !state.Valid() {
		return nil, fmt.Errorf("%w: unknown state %q", domain.ErrValidation, state)
	}
	out, err := s.repo.List(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("service.TractorService.List: %w", err)
	}
	if out == nil {
		return []domain.Tractor{}, nil
	}
	return out, nil
}

// Update validates and persists changes to an existing tractor.
func (s *TractorService) Update(ctx context.Context, t domain.Tractor) (domain.Tractor, error) {
	if err := s.prepare(&t); err != nil {
		return domain.Tractor{}, err
	}
	result, err := s.repo.Update(ctx, t)
	if err != nil {
		return domain.Tractor{}, fmt.Errorf("service.TractorService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a tractor. Returns domain.ErrConflict while trips reference it.
func (s *TractorService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TractorService.Delete: %w", err)
	}
	return nil
}

// Availability partitions every tractor into usable and blocked.
func (s *TractorService) Availability(ctx context.Context, serviceID *uuid.UUID, date *time.Time) (eligibility.Availability[domain.Tractor], error) {
	svc, ref, err := s.availabilityScope(ctx, serviceID, date)
	if err != nil {
		return eligibility.Availability[domain.Tractor]{}, fmt.Errorf("service.TractorService.Availability: %w", err)
	}
	all, err := s.repo.List(ctx, "")
	if err != nil {
		return eligibility.Availability[domain.Tractor]{}, fmt.Errorf("service.TractorService.Availability: %w", err)
	}
	return eligibility.Partition(all, svc, ref, s.tables.Table()), nil
}

// CheckPlate reports whether plate is already registered to a tractor other
// than excludeID.
func (s *TractorService) CheckPlate(ctx context.Context, plate string, excludeID uuid.UUID) (domain.PlateCheck, error) {
	plate = normalizePlate(plate)
	if plate == "" {
		return domain.PlateCheck{}, fmt.Errorf("%w: plate is required", domain.ErrValidation)
	}
	result, err := s.repo.PlateExists(ctx, plate, excludeID)
	if err != nil {
		return domain.PlateCheck{}, fmt.Errorf("service.TractorService.CheckPlate: %w", err)
	}
	return result, nil
}

func (s *TractorService) prepare(t *domain.Tractor) error {
	t.Plate = normalizePlate(t.Plate)
	if t.Plate == "" {
		return fmt.Errorf("%w: plate is required", domain.ErrValidation)
	}
	if t.Year < 0 {
		return fmt.Errorf("%w: year must not be negative", domain.ErrValidation)
	}
	return s.prepareResource(&t.Resource, domain.KindTractor)
}

// ---- trailers --------------------------------------------------------------

// TrailerService implements business logic for trailers.
type TrailerService struct {
	resourceDeps
	repo repo.TrailerRepo
}

// NewTrailerService constructs a TrailerService.
func NewTrailerService(r repo.TrailerRepo, services repo.ServiceRepo, tables eligibility.TableSource) *TrailerService {
	return &TrailerService{repo: r, resourceDeps: resourceDeps{services: services, tables: tables, now: time.Now}}
}

// Create validates and persists a new trailer.
func (s *TrailerService) Create(ctx context.Context, t domain.Trailer) (domain.Trailer, error) {
	if err := s.prepare(&t); err != nil {
		return domain.Trailer{}, err
	}
	result, err := s.repo.Create(ctx, t)
	if err != nil {
		return domain.Trailer{}, fmt.Errorf("service.TrailerService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single trailer by ID.
func (s *TrailerService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trailer, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Trailer{}, fmt.Errorf("service.TrailerService.GetByID: %w", err)
	}
	return result, nil
}

// List returns trailers, optionally narrowed to one physical state.
func (s *TrailerService) List(ctx context.Context, state domain.PhysicalState) ([]domain.Trailer, error) {
	if state != "" && !state.Valid() {
		return nil, fmt.Errorf("%w: unknown state %q", domain.ErrValidation, state)
	}
	out, err := s.repo.List(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("service.TrailerService.List: %w", err)
	}
	if out == nil {
		return []domain.Trailer{}, nil
	}
	return out, nil
}

// Update validates and persists changes to an existing trailer. Changing the
// service type drops document expiries the new service does not require.
func (s *TrailerService) Update(ctx context.Context, t domain.Trailer) (domain.Trailer, error) {
	if err := s.prepare(&t); err != nil {
		return domain.Trailer{}, err
	}
	result, err := s.repo.Update(ctx, t)
	if err != nil {
		return domain.Trailer{}, fmt.Errorf("service.TrailerService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a trailer. Returns domain.ErrConflict while trips reference it.
func (s *TrailerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TrailerService.Delete: %w", err)
	}
	return nil
}

// Availability partitions every trailer into usable and blocked.
func (s *TrailerService) Availability(ctx context.Context, serviceID *uuid.UUID, date *time.Time) (eligibility.Availability[domain.Trailer], error) {
	svc, ref, err := s.availabilityScope(ctx, serviceID, date)
	if err != nil {
		return eligibility.Availability[domain.Trailer]{}, fmt.Errorf("service.TrailerService.Availability: %w", err)
	}
	all, err := s.repo.List(ctx, "")
	if err != nil {
		return eligibility.Availability[domain.Trailer]{}, fmt.Errorf("service.TrailerService.Availability: %w", err)
	}
	return eligibility.Partition(all, svc, ref, s.tables.Table()), nil
}

// CheckPlate reports whether plate is already registered to a trailer other
// than excludeID.
func (s *TrailerService) CheckPlate(ctx context.Context, plate string, excludeID uuid.UUID) (domain.PlateCheck, error) {
	plate = normalizePlate(plate)
	if plate == "" {
		return domain.PlateCheck{}, fmt.Errorf("%w: plate is required", domain.ErrValidation)
	}
	result, err := s.repo.PlateExists(ctx, plate, excludeID)
	if err != nil {
		return domain.PlateCheck{}, fmt.Errorf("service.TrailerService.CheckPlate: %w", err)
	}
	return result, nil
}

func (s *TrailerService) prepare(t *domain.Trailer) error {
	t.Plate = normalizePlate(t.Plate)
	if t.Plate == "" {
		return fmt.Errorf("%w: plate is required", domain.ErrValidation)
	}
	if t.CapacityM3 < 0 {
		return fmt.Errorf("%w: capacity must not be negative", domain.ErrValidation)
	}
	return s.prepareResource(&t.Resource, domain.KindTrailer)
}
