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

// TrailerRepo defines the persistence operations for trailers (cisternas).
type TrailerRepo interface {
	// Create inserts a trailer. Returns domain.ErrConflict on a duplicate plate.
	Create(ctx context.Context, t domain.Trailer) (domain.Trailer, error)

	// GetByID returns domain.ErrNotFound if no trailer with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trailer, error)

	// List returns trailers ordered by plate. An empty state returns all.
	List(ctx context.Context, state domain.PhysicalState) ([]domain.Trailer, error)

	// Update overwrites every mutable field including state and documents.
	Update(ctx context.Context, t domain.Trailer) (domain.Trailer, error)

	// SetState changes only the physical state.
	SetState(ctx context.Context, id uuid.UUID, state domain.PhysicalState) error

	// Delete returns domain.ErrConflict while trips still reference the trailer.
	Delete(ctx context.Context, id uuid.UUID) error

	// PlateExists looks a plate up case-insensitively, ignoring excludeID.
	PlateExists(ctx context.Context, plate string, excludeID uuid.UUID) (domain.PlateCheck, error)
}

type pgTrailerRepo struct {
	db db
}

// NewTrailerRepo constructs a TrailerRepo backed by the provided db connection.
func NewTrailerRepo(db db) TrailerRepo {
	return &pgTrailerRepo{db: db}
}

const trailerColumns = `id, plate, type, capacity_m3::float8, state, service_type, documents, created_at, updated_at`

func (r *pgTrailerRepo) Create(ctx context.Context, t domain.Trailer) (domain.Trailer, error) {
	const q = `
		INSERT INTO trailers (plate, type, capacity_m3, state, service_type, documents)
		VALUES (@plate, @type, @capacity_m3, @state, @service_type, @documents)
		RETURNING ` + trailerColumns

	args, err := trailerArgs(t)
	if err != nil {
		return domain.Trailer{}, fmt.Errorf("repo.TrailerRepo.Create: %w", err)
	}
	result, err := scanTrailer(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trailer{}, fmt.Errorf("repo.TrailerRepo.Create: %w", mapWriteError(err))
	}
	return result, nil
}

func (r *pgTrailerRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trailer, error) {
	q := `SELECT ` + trailerColumns + ` FROM trailers WHERE id = @id`

	result, err := scanTrailer(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trailer{}, fmt.Errorf("repo.TrailerRepo.GetByID: %w", mapWriteError(err))
	}
	return result, nil
}

func (r *pgTrailerRepo) List(ctx context.Context, state domain.PhysicalState) ([]domain.Trailer, error) {
	q := `SELECT ` + trailerColumns + `
		FROM trailers
		WHERE (@state::text IS NULL OR state = @state::text)
		ORDER BY plate`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"state": nullState(state)})
	if err != nil {
		return nil, fmt.Errorf("repo.TrailerRepo.List: %w", err)
	}
	defer rows.Close()

	out := []domain.Trailer{}
	for rows.Next() {
		t, err := scanTrailer(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TrailerRepo.List: scan: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TrailerRepo.List: rows: %w", err)
	}
	return out, nil
}

func (r *pgTrailerRepo) Update(ctx context.Context, t domain.Trailer) (domain.Trailer, error) {
	const q = `
		UPDATE trailers
		SET plate        = @plate,
		    type         = @type,
		    capacity_m3  = @capacity_m3,
		    state        = @state,
		    service_type = @service_type,
		    documents    = @documents,
		    updated_at   = now()
		WHERE id = @id
		RETURNING ` + trailerColumns

	args, err := trailerArgs(t)
	if err != nil {
		return domain.Trailer{}, fmt.Errorf("repo.TrailerRepo.Update: %w", err)
	}
	args["id"] = t.ID
	result, err := scanTrailer(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trailer{}, fmt.Errorf("repo.TrailerRepo.Update: %w", mapWriteError(err))
	}
	return result, nil
}

func (r *pgTrailerRepo) SetState(ctx context.Context, id uuid.UUID, state domain.PhysicalState) error {
	const q = `UPDATE trailers SET state = @state, updated_at = now() WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "state": string(state)})
	if err != nil {
		return fmt.Errorf("repo.TrailerRepo.SetState: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TrailerRepo.SetState: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTrailerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM trailers WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TrailerRepo.Delete: %w", mapWriteError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TrailerRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTrailerRepo) PlateExists(ctx context.Context, plate string, excludeID uuid.UUID) (domain.PlateCheck, error) {
	const q = `
		SELECT type, capacity_m3::float8
		FROM trailers
		WHERE upper(plate) = upper(@plate) AND id <> @exclude
		LIMIT 1`

	var (
		typ      string
		capacity float64
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"plate": plate, "exclude": excludeID}).Scan(&typ, &capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PlateCheck{}, nil
		}
		return domain.PlateCheck{}, fmt.Errorf("repo.TrailerRepo.PlateExists: %w", err)
	}
	return domain.PlateCheck{Exists: true, Info: fmt.Sprintf("trailer %s %.2f m3", typ, capacity)}, nil
}

func trailerArgs(t domain.Trailer) (pgx.NamedArgs, error) {
	docs, err := encodeDocuments(t.Documents)
	if err != nil {
		return nil, err
	}
	return pgx.NamedArgs{
		"plate":        t.Plate,
		"type":         t.Type,
		"capacity_m3":  t.CapacityM3,
		"state":        string(t.State),
		"service_type": t.ServiceType,
		"documents":    docs,
	}, nil
}

func scanTrailer(s scanner) (domain.Trailer, error) {
	var (
		t     domain.Trailer
		id    pgtype.UUID
		state string
		docs  []byte
	)
	err := s.Scan(&id, &t.Plate, &t.Type, &t.CapacityM3, &state, &t.ServiceType, &docs, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Trailer{}, err
	}
	t.ID = uuid.UUID(id.Bytes)
	t.Kind = domain.KindTrailer
	t.State = domain.PhysicalState(state)
	if t.Documents, err = decodeDocuments(docs); err != nil {
		return domain.Trailer{}, err
	}
	return t, nil
}
