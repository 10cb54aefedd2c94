package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rutacontrol/backend/internal/domain"
)

// DriverRepo defines the persistence operations for drivers.
type DriverRepo interface {
	// Create inserts a driver. Returns domain.ErrConflict on a duplicate national id.
	Create(ctx context.Context, d domain.Driver) (domain.Driver, error)

	// GetByID returns domain.ErrNotFound if no driver with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error)

	// List returns drivers ordered by last name, first name. An empty state
	// returns every driver.
	List(ctx context.Context, state domain.PhysicalState) ([]domain.Driver, error)

	// Update overwrites every mutable field including state and documents.
	Update(ctx context.Context, d domain.Driver) (domain.Driver, error)

	// SetState changes only the physical state.
	SetState(ctx context.Context, id uuid.UUID, state domain.PhysicalState) error

	// Delete returns domain.ErrConflict while trips still reference the driver.
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgDriverRepo struct {
	db db
}

// NewDriverRepo constructs a DriverRepo backed by the provided db connection.
func NewDriverRepo(db db) DriverRepo {
	return &pgDriverRepo{db: db}
}

const driverColumns = `id, first_name, last_name, national_id, phone, license_number,
	state, service_type, documents, created_at, updated_at`

func (r *pgDriverRepo) Create(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	const q = `
		INSERT INTO drivers (first_name, last_name, national_id, phone, license_number, state, service_type, documents)
		VALUES (@first_name, @last_name, @national_id, @phone, @license_number, @state, @service_type, @documents)
		RETURNING ` + driverColumns

	args, err := driverArgs(d)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.Create: %w", err)
	}
	result, err := scanDriver(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.Create: %w", mapWriteError(err))
	}
	return result, nil
}

func (r *pgDriverRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	q := `SELECT ` + driverColumns + ` FROM drivers WHERE id = @id`

	result, err := scanDriver(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.GetByID: %w", mapWriteError(err))
	}
	return result, nil
}

func (r *pgDriverRepo) List(ctx context.Context, state domain.PhysicalState) ([]domain.Driver, error) {
	q := `SELECT ` + driverColumns + `
		FROM drivers
		WHERE (@state::text IS NULL OR state = @state::text)
		ORDER BY last_name, first_name`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"state": nullState(state)})
	if err != nil {
		return nil, fmt.Errorf("repo.DriverRepo.List: %w", err)
	}
	defer rows.Close()

	out := []domain.Driver{}
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.DriverRepo.List: scan: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.DriverRepo.List: rows: %w", err)
	}
	return out, nil
}

func (r *pgDriverRepo) Update(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	const q = `
		UPDATE drivers
		SET first_name     = @first_name,
		    last_name      = @last_name,
		    national_id    = @national_id,
		    phone          = @phone,
		    license_number = @license_number,
		    state          = @state,
		    service_type   = @service_type,
		    documents      = @documents,
		    updated_at     = now()
		WHERE id = @id
		RETURNING ` + driverColumns

	args, err := driverArgs(d)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.Update: %w", err)
	}
	args["id"] = d.ID
	result, err := scanDriver(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.Update: %w", mapWriteError(err))
	}
	return result, nil
}

func (r *pgDriverRepo) SetState(ctx context.Context, id uuid.UUID, state domain.PhysicalState) error {
	const q = `UPDATE drivers SET state = @state, updated_at = now() WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "state": string(state)})
	if err != nil {
		return fmt.Errorf("repo.DriverRepo.SetState: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.DriverRepo.SetState: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgDriverRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM drivers WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.DriverRepo.Delete: %w", mapWriteError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.DriverRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func driverArgs(d domain.Driver) (pgx.NamedArgs, error) {
	docs, err := encodeDocuments(d.Documents)
	if err != nil {
		return nil, err
	}
	return pgx.NamedArgs{
		"first_name":     d.FirstName,
		"last_name":      d.LastName,
		"national_id":    d.NationalID,
		"phone":          d.Phone,
		"license_number": d.LicenseNumber,
		"state":          string(d.State),
		"service_type":   d.ServiceType,
		"documents":      docs,
	}, nil
}

func scanDriver(s scanner) (domain.Driver, error) {
	var (
		d     domain.Driver
		id    pgtype.UUID
		state string
		docs  []byte
	)
	err := s.Scan(&id, &d.FirstName, &d.LastName, &d.NationalID, &d.Phone, &d.LicenseNumber,
		&state, &d.ServiceType, &docs, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return domain.Driver{}, err
	}
	d.ID = uuid.UUID(id.Bytes)
	d.Kind = domain.KindDriver
	d.State = domain.PhysicalState(state)
	if d.Documents, err = decodeDocuments(docs); err != nil {
		return domain.Driver{}, err
	}
	return d, nil
}
