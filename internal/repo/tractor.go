package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rutacontrol/backend/internal/domain"
)

// TractorRepo defines the persistence operations for tractors.
type TractorRepo interface {
	// Create inserts a tractor. Returns domain.ErrConflict on a duplicate plate.
	Create(ctx context.Context, t domain.Tractor) (domain.Tractor, error)

	// GetByID returns domain.ErrNotFound if no tractor with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tractor, error)

	// List returns tractors ordered by plate. An empty state returns all.
	List(ctx context.Context, state domain.PhysicalState) ([]domain.Tractor, error)

	// Update overwrites every mutable field including state and documents.
	Update(ctx context.Context, t domain.Tractor) (domain.Tractor, error)

	// SetState changes only the physical state.
	SetState(ctx context.Context, id uuid.UUID, state domain.PhysicalState) error

	// Delete returns domain.ErrConflict while trips still reference the tractor.
	Delete(ctx context.Context, id uuid.UUID) error

	// PlateExists looks a plate up case-insensitively, ignoring excludeID
	// (pass uuid.Nil to exclude nothing).
	PlateExists(ctx context.Context, plate string, excludeID uuid.UUID) (domain.PlateCheck, error)
}

type pgTractorRepo struct {
	db db
}

// NewTractorRepo constructs a TractorRepo backed by the provided db connection.
func NewTractorRepo(db db) TractorRepo {
	return &pgTractorRepo{db: db}
}

const tractorColumns = `id, plate, brand, model, year, state, service_type, documents, created_at, updated_at`

func (r *pgTractorRepo) Create(ctx context.Context, t domain.Tractor) (domain.Tractor, error) {
	const q = `
		INSERT INTO tractors (plate, brand, model, year, state, service_type, documents)
		VALUES (@plate, @brand, @model, @year, @state, @service_type, @documents)
		RETURNING ` + tractorColumns

	args, err := tractorArgs(t)
	if err != nil {
		return domain.Tractor{}, fmt.Errorf("repo.TractorRepo.Create: %w", err)
	}
	result, err := scanTractor(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Tractor{}, fmt.Errorf("repo.TractorRepo.Create: %w", mapWriteError(err))
	}
	return result, nil
}

func (r *pgTractorRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tractor, error) {
	q := `SELECT ` + tractorColumns + ` FROM tractors WHERE id = @id`

	result, err := scanTractor(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Tractor{}, fmt.Errorf("repo.TractorRepo.GetByID: %w", mapWriteError(err))
	}
	return result, nil
}

func (r *pgTractorRepo) List(ctx context.Context, state domain.PhysicalState) ([]domain.Tractor, error) {
	q := `SELECT ` + tractorColumns + `
		FROM tractors
		WHERE (@state::text IS NULL OR state = @state::text)
		ORDER BY plate`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"state": nullState(state)})
	if err != nil {
		return nil, fmt.Errorf("repo.TractorRepo.List: %w", err)
	}
	defer rows.Close()

	out := []domain.Tractor{}
	for rows.Next() {
		t, err := scanTractor(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TractorRepo.List: scan: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TractorRepo.List: rows: %w", err)
	}
	return out, nil
}

func (r *pgTractorRepo) Update(ctx context.Context, t domain.Tractor) (domain.Tractor, error) {
	const q = `
		UPDATE tractors
		SET plate        = @plate,
		    brand        = @brand,
		    model        = @model,
		    year         = @year,
		    state        = @state,
		    service_type = @service_type,
		    documents    = @documents,
		    updated_at   = now()
		WHERE id = @id
		RETURNING ` + tractorColumns

	args, err := tractorArgs(t)
	if err != nil {
		return domain.Tractor{}, fmt.Errorf("repo.TractorRepo.Update: %w", err)
	}
	args["id"] = t.ID
	result, err := scanTractor(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Tractor{}, fmt.Errorf("repo.TractorRepo.Update: %w", mapWriteError(err))
	}
	return result, nil
}

func (r *pgTractorRepo) SetState(ctx context.Context, id uuid.UUID, state domain.PhysicalState) error {
	const q = `UPDATE tractors SET state = @state, updated_at = now() WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "state": string(state)})
	if err != nil {
		return fmt.Errorf("repo.TractorRepo.SetState: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TractorRepo.SetState: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTractorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tractors WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TractorRepo.Delete: %w", mapWriteError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TractorRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTractorRepo) PlateExists(ctx context.Context, plate string, excludeID uuid.UUID) (domain.PlateCheck, error) {
	const q = `
		SELECT brand, model, year
		FROM tractors
		WHERE upper(plate) = upper(@plate) AND id <> @exclude
		LIMIT 1`

	var (
		brand, model string
		year         int
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"plate": plate, "exclude": excludeID}).Scan(&brand, &model, &year)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PlateCheck{}, nil
		}
		return domain.PlateCheck{}, fmt.Errorf("repo.TractorRepo.PlateExists: %w", err)
	}
	return domain.PlateCheck{Exists: true, Info: fmt.Sprintf("tractor %s %s (%d)", brand, model, year)}, nil
}

func tractorArgs(t domain.Tractor) (pgx.NamedArgs, error) {
	docs, err := encodeDocuments(t.Documents)
	if err != nil {
		return nil, err
	}
	return pgx.NamedArgs{
		"plate":        t.Plate,
		"brand":        t.Brand,
		"model":        t.Model,
		"year":         t.Year,
		"state":        string(t.State),
		"service_type": t.ServiceType,
		"documents":    docs,
	}, nil
}

func scanTractor(s scanner) (domain.Tractor, error) {
	var (
		t     domain.Tractor
		id    pgtype.UUID
		state string
		docs  []byte
	)
	err := s.Scan(&id, &t.Plate, &t.Brand, &t.Model, &t.Year, &state, &t.ServiceType, &docs, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Tractor{}, err
	}
	t.ID = uuid.UUID(id.Bytes)
	t.Kind = domain.KindTractor
	t.State = domain.PhysicalState(state)
	if t.Documents, err = decodeDocuments(docs); err != nil {
		return domain.Tractor{}, err
	}
	return t, nil
}
