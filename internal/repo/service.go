package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rutacontrol/backend/internal/domain"
)

// ServiceRepo defines the persistence operations for the service catalogue.
type ServiceRepo interface {
	// Create inserts a service. Returns domain.ErrConflict when the name
	// (case-insensitive) already exists.
	Create(ctx context.Context, s domain.Service) (domain.Service, error)

	// GetByID returns domain.ErrNotFound if no service with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Service, error)

	// List returns all services ordered by name.
	List(ctx context.Context) ([]domain.Service, error)

	// Update overwrites name and description.
	Update(ctx context.Context, s domain.Service) (domain.Service, error)

	// Delete returns domain.ErrConflict while trips still reference the service.
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgServiceRepo struct {
	db db
}

// NewServiceRepo constructs a ServiceRepo backed by the provided db connection.
func NewServiceRepo(db db) ServiceRepo {
	return &pgServiceRepo{db: db}
}

const serviceColumns = `id, name, description, created_at, updated_at`

func (r *pgServiceRepo) Create(ctx context.Context, s domain.Service) (domain.Service, error) {
	const q = `
		INSERT INTO services (name, description)
		VALUES (@name, @description)
		RETURNING ` + serviceColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": s.Name, "description": s.Description})
	result, err := scanService(row)
	if err != nil {
		return domain.Service{}, fmt.Errorf("repo.ServiceRepo.Create: %w", mapWriteError(err))
	}
	return result, nil
}

func (r *pgServiceRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Service, error) {
	q := `SELECT ` + serviceColumns + ` FROM services WHERE id = @id`

	result, err := scanService(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Service{}, fmt.Errorf("repo.ServiceRepo.GetByID: %w", mapWriteError(err))
	}
	return result, nil
}

func (r *pgServiceRepo) List(ctx context.Context) ([]domain.Service, error) {
	q := `SELECT ` + serviceColumns + ` FROM services ORDER BY lower(name)`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ServiceRepo.List: %w", err)
	}
	defer rows.Close()

	out := []domain.Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ServiceRepo.List: scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ServiceRepo.List: rows: %w", err)
	}
	return out, nil
}

func (r *pgServiceRepo) Update(ctx context.Context, s domain.Service) (domain.Service, error) {
	const q = `
		UPDATE services
		SET name        = @name,
		    description = @description,
		    updated_at  = now()
		WHERE id = @id
		RETURNING ` + serviceColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": s.ID, "name": s.Name, "description": s.Description})
	result, err := scanService(row)
	if err != nil {
		return domain.Service{}, fmt.Errorf("repo.ServiceRepo.Update: %w", mapWriteError(err))
	}
	return result, nil
}

func (r *pgServiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ServiceRepo.Delete: %w", mapWriteError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ServiceRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanService(s scanner) (domain.Service, error) {
	var (
		svc domain.Service
		id  pgtype.UUID
	)
	if err := s.Scan(&id, &svc.Name, &svc.Description, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
		return domain.Service{}, err
	}
	svc.ID = uuid.UUID(id.Bytes)
	return svc, nil
}
