package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/repo"
)

// Hand-written test doubles for the repo interfaces.
// Each method is a function field; set only the ones your test needs.

type mockTripRepo struct {
	create       func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listPaged    func(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error)
	update       func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	setState     func(ctx context.Context, id uuid.UUID, state domain.TripState) error
	countByState func(ctx context.Context) (map[domain.TripState]int, error)
	delete       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) ListPaged(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.update(ctx, trip)
}
func (m *mockTripRepo) SetState(ctx context.Context, id uuid.UUID, state domain.TripState) error {
	return m.setState(ctx, id, state)
}
func (m *mockTripRepo) CountByState(ctx context.Context) (map[domain.TripState]int, error) {
	return m.countByState(ctx)
}
func (m *mockTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

type mockDriverRepo struct {
	create   func(ctx context.Context, d domain.Driver) (domain.Driver, error)
	getByID  func(ctx context.Context, id uuid.UUID) (domain.Driver, error)
	list     func(ctx context.Context, state domain.PhysicalState) ([]domain.Driver, error)
	update   func(ctx context.Context, d domain.Driver) (domain.Driver, error)
	setState func(ctx context.Context, id uuid.UUID, state domain.PhysicalState) error
	delete   func(ctx context.Context, id uuid.UUID) error
}

func (m *mockDriverRepo) Create(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	return m.create(ctx, d)
}
func (m *mockDriverRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	return m.getByID(ctx, id)
}
func (m *mockDriverRepo) List(ctx context.Context, state domain.PhysicalState) ([]domain.Driver, error) {
	return m.list(ctx, state)
}
func (m *mockDriverRepo) Update(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	return m.update(ctx, d)
}
func (m *mockDriverRepo) SetState(ctx context.Context, id uuid.UUID, state domain.PhysicalState) error {
	return m.setState(ctx, id, state)
}
func (m *mockDriverRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

type mockTractorRepo struct {
	create      func(ctx context.Context, t domain.Tractor) (domain.Tractor, error)
	getByID     func(ctx context.Context, id uuid.UUID) (domain.Tractor, error)
	list        func(ctx context.Context, state domain.PhysicalState) ([]domain.Tractor, error)
	update      func(ctx context.Context, t domain.Tractor) (domain.Tractor, error)
	setState    func(ctx context.Context, id uuid.UUID, state domain.PhysicalState) error
	delete      func(ctx context.Context, id uuid.UUID) error
	plateExists func(ctx context.Context, plate string, excludeID uuid.UUID) (domain.PlateCheck, error)
}

func (m *mockTractorRepo) Create(ctx context.Context, t domain.Tractor) (domain.Tractor, error) {
	return m.create(ctx, t)
}
func (m *mockTractorRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tractor, error) {
	return m.getByID(ctx, id)
}
func (m *mockTractorRepo) List(ctx context.Context, state domain.PhysicalState) ([]domain.Tractor, error) {
	return m.list(ctx, state)
}
func (m *mockTractorRepo) Update(ctx context.Context, t domain.Tractor) (domain.Tractor, error) {
	return m.update(ctx, t)
}
func (m *mockTractorRepo) SetState(ctx context.Context, id uuid.UUID, state domain.PhysicalState) error {
	return m.setState(ctx, id, state)
}
func (m *mockTractorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockTractorRepo) PlateExists(ctx context.Context, plate string, excludeID uuid.UUID) (domain.PlateCheck, error) {
	return m.plateExists(ctx, plate, excludeID)
}

type mockTrailerRepo struct {
	create      func(ctx context.Context, t domain.Trailer) (domain.Trailer, error)
	getByID     func(ctx context.Context, id uuid.UUID) (domain.Trailer, error)
	list        func(ctx context.Context, state domain.PhysicalState) ([]domain.Trailer, error)
	update      func(ctx context.Context, t domain.Trailer) (domain.Trailer, error)
	setState    func(ctx context.Context, id uuid.UUID, state domain.PhysicalState) error
	delete      func(ctx context.Context, id uuid.UUID) error
	plateExists func(ctx context.Context, plate string, excludeID uuid.UUID) (domain.PlateCheck, error)
}

func (m *mockTrailerRepo) Create(ctx context.Context, t domain.Trailer) (domain.Trailer, error) {
	return m.create(ctx, t)
}
func (m *mockTrailerRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trailer, error) {
	return m.getByID(ctx, id)
}
func (m *mockTrailerRepo) List(ctx context.Context, state domain.PhysicalState) ([]domain.Trailer, error) {
	return m.list(ctx, state)
}
func (m *mockTrailerRepo) Update(ctx context.Context, t domain.Trailer) (domain.Trailer, error) {
	return m.update(ctx, t)
}
func (m *mockTrailerRepo) SetState(ctx context.Context, id uuid.UUID, state domain.PhysicalState) error {
	return m.setState(ctx, id, state)
}
func (m *mockTrailerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockTrailerRepo) PlateExists(ctx context.Context, plate string, excludeID uuid.UUID) (domain.PlateCheck, error) {
	return m.plateExists(ctx, plate, excludeID)
}

type mockServiceRepo struct {
	create  func(ctx context.Context, s domain.Service) (domain.Service, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Service, error)
	list    func(ctx context.Context) ([]domain.Service, error)
	update  func(ctx context.Context, s domain.Service) (domain.Service, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockServiceRepo) Create(ctx context.Context, s domain.Service) (domain.Service, error) {
	return m.create(ctx, s)
}
func (m *mockServiceRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Service, error) {
	return m.getByID(ctx, id)
}
func (m *mockServiceRepo) List(ctx context.Context) ([]domain.Service, error) {
	return m.list(ctx)
}
func (m *mockServiceRepo) Update(ctx context.Context, s domain.Service) (domain.Service, error) {
	return m.update(ctx, s)
}
func (m *mockServiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

type mockStopRepo struct {
	create       func(ctx context.Context, stop domain.Stop) (domain.Stop, error)
	listByTripID func(ctx context.Context, tripID uuid.UUID) ([]domain.Stop, error)
	countByKind  func(ctx context.Context, tripID uuid.UUID) (map[domain.StopKind]int, error)
}

func (m *mockStopRepo) Create(ctx context.Context, stop domain.Stop) (domain.Stop, error) {
	return m.create(ctx, stop)
}
func (m *mockStopRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Stop, error) {
	return m.listByTripID(ctx, tripID)
}
func (m *mockStopRepo) CountByKind(ctx context.Context, tripID uuid.UUID) (map[domain.StopKind]int, error) {
	return m.countByKind(ctx, tripID)
}

type mockUserRepo struct {
	create        func(ctx context.Context, u domain.User) (domain.User, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.User, error)
	getByUsername func(ctx context.Context, username string) (domain.User, error)
	list          func(ctx context.Context) ([]domain.User, error)
	count         func(ctx context.Context) (int64, error)
	delete        func(ctx context.Context, id uuid.UUID) error
}

func (m *mockUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	return m.create(ctx, u)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.getByID(ctx, id)
}
func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return m.getByUsername(ctx, username)
}
func (m *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	return m.list(ctx)
}
func (m *mockUserRepo) Count(ctx context.Context) (int64, error) {
	return m.count(ctx)
}
func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

type mockExportRepo struct {
	rows func(ctx context.Context) ([]domain.ExportRow, error)
}

func (m *mockExportRepo) Rows(ctx context.Context) ([]domain.ExportRow, error) {
	return m.rows(ctx)
}

// compile-time checks: the mocks must satisfy the repo interfaces.
var (
	_ repo.TripRepo    = (*mockTripRepo)(nil)
	_ repo.DriverRepo  = (*mockDriverRepo)(nil)
	_ repo.TractorRepo = (*mockTractorRepo)(nil)
	_ repo.TrailerRepo = (*mockTrailerRepo)(nil)
	_ repo.ServiceRepo = (*mockServiceRepo)(nil)
	_ repo.StopRepo    = (*mockStopRepo)(nil)
	_ repo.UserRepo    = (*mockUserRepo)(nil)
	_ repo.ExportRepo  = (*mockExportRepo)(nil)
)
