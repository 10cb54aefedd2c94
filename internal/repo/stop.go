package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rutacontrol/backend/internal/domain"
)

// StopRepo defines the persistence operations for Stops.
// Stops are append-only: once recorded they are never edited.
type StopRepo interface {
	// Create inserts a new stop and returns the persisted record.
	// Returns domain.ErrConflict if the trip does not exist.
	Create(ctx context.Context, stop domain.Stop) (domain.Stop, error)

	// ListByTripID returns all stops for a trip ordered by recorded_at ascending.
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Stop, error)

	// CountByKind returns how many stops of each kind a trip has.
	CountByKind(ctx context.Context, tripID uuid.UUID) (map[domain.StopKind]int, error)
}

// pgStopRepo is the Postgres implementation of StopRepo.
type pgStopRepo struct {
	db db
}

// NewStopRepo constructs a StopRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewStopRepo(db db) StopRepo {
	return &pgStopRepo{db: db}
}

const stopColumns = `id, trip_id, kind, location, recorded_at, notes, created_at`

func (r *pgStopRepo) Create(ctx context.Context, stop domain.Stop) (domain.Stop, error) {
	const q = `
		INSERT INTO stops (trip_id, kind, location, recorded_at, notes)
		VALUES (@trip_id, @kind, @location, @recorded_at, @notes)
		RETURNING ` + stopColumns

	args := pgx.NamedArgs{
		"trip_id":     stop.TripID,
		"kind":        string(stop.Kind),
		"location":    stop.Location,
		"recorded_at": stop.RecordedAt,
		"notes":       stop.Notes,
	}
	result, err := scanStop(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Stop{}, fmt.Errorf("repo.StopRepo.Create: %w", mapWriteError(err))
	}
	return result, nil
}

func (r *pgStopRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Stop, error) {
	q := `SELECT ` + stopColumns + `
		FROM stops
		WHERE trip_id = @trip_id
		ORDER BY recorded_at, created_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	stops := []domain.Stop{}
	for rows.Next() {
		s, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.StopRepo.ListByTripID: scan: %w", err)
		}
		stops = append(stops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByTripID: rows: %w", err)
	}
	return stops, nil
}

func (r *pgStopRepo) CountByKind(ctx context.Context, tripID uuid.UUID) (map[domain.StopKind]int, error) {
	const q = `SELECT kind, count(*) FROM stops WHERE trip_id = @trip_id GROUP BY kind`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.StopRepo.CountByKind: %w", err)
	}
	defer rows.Close()

	out := map[domain.StopKind]int{}
	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("repo.StopRepo.CountByKind: scan: %w", err)
		}
		out[domain.StopKind(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.StopRepo.CountByKind: rows: %w", err)
	}
	return out, nil
}

func scanStop(s scanner) (domain.Stop, error) {
	var (
		st     domain.Stop
		id     pgtype.UUID
		tripID pgtype.UUID
		kind   string
	)
	if err := s.Scan(&id, &tripID, &kind, &st.Location, &st.RecordedAt, &st.Notes, &st.CreatedAt); err != nil {
		return domain.Stop{}, err
	}
	st.ID = uuid.UUID(id.Bytes)
	st.TripID = uuid.UUID(tripID.Bytes)
	st.Kind = domain.StopKind(kind)
	return st, nil
}
