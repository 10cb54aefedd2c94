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

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// Create inserts a new trip with its destinations in one transaction and
	// returns the persisted record.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip with its destinations ordered by position.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListPaged returns one page of trips ordered by departure date descending
	// and the total number of trips matching the filter.
	ListPaged(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// Update overwrites the mutable fields of a trip and replaces its
	// destinations. The state is left untouched.
	// Returns domain.ErrNotFound if no trip with that ID exists and
	// domain.ErrTripFinalized if it is finalized.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// SetState moves a trip to a new lifecycle state.
	SetState(ctx context.Context, id uuid.UUID, state domain.TripState) error

	// CountByState returns the number of trips per lifecycle state. States
	// with no trips are absent from the map.
	CountByState(ctx context.Context) (map[domain.TripState]int, error)

	// Delete removes a trip by ID along with its destinations and stops.
	// Returns domain.ErrNotFound if it does not exist and
	// domain.ErrTripFinalized if it is finalized.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, driver_id, tractor_id, trailer_id, service_id, departure_date,
	origin, state, notes, created_at, updated_at`

func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (driver_id, tractor_id, trailer_id, service_id, departure_date, origin, state, notes)
		VALUES (@driver_id, @tractor_id, @trailer_id, @service_id, @departure_date, @origin, @state, @notes)
		RETURNING ` + tripColumns

	state := trip.State
	if state == "" {
		state = domain.TripProgrammed
	}
	args := tripArgs(trip)
	args["state"] = string(state)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result, err := scanTrip(tx.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", mapWriteError(err))
	}
	if result.Destinations, err = insertDestinations(ctx, tx, result.ID, trip.Destinations); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: commit: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", mapWriteError(err))
	}
	dests, err := listDestinations(ctx, r.db, []uuid.UUID{id})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	result.Destinations = dests[id]
	if result.Destinations == nil {
		result.Destinations = []domain.Destination{}
	}
	return result, nil
}

func (r *pgTripRepo) ListPaged(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	q := `SELECT ` + tripColumns + `, count(*) OVER () AS total
		FROM trips
		WHERE (@state::text IS NULL OR state = @state::text)
		ORDER BY departure_date DESC, created_at DESC
		LIMIT @limit OFFSET @offset`

	var state any
	if f.State != "" {
		state = string(f.State)
	}
	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"state": state, "limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	var (
		trips = []domain.Trip{}
		ids   []uuid.UUID
		total int64
	)
	for rows.Next() {
		t, err := scanTripWithTotal(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: scan: %w", err)
		}
		trips = append(trips, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: rows: %w", err)
	}
	rows.Close()

	if len(trips) == 0 {
		// The window count is unavailable on an empty page; fall back to a plain count.
		if err := r.db.QueryRow(ctx,
			`SELECT count(*) FROM trips WHERE (@state::text IS NULL OR state = @state::text)`,
			pgx.NamedArgs{"state": state}).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: count: %w", err)
		}
		return trips, total, nil
	}

	dests, err := listDestinations(ctx, r.db, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: %w", err)
	}
	for i := range trips {
		trips[i].Destinations = dests[trips[i].ID]
		if trips[i].Destinations == nil {
			trips[i].Destinations = []domain.Destination{}
		}
	}
	return trips, total, nil
}

func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET driver_id      = @driver_id,
		    tractor_id     = @tractor_id,
		    trailer_id     = @trailer_id,
		    service_id     = @service_id,
		    departure_date = @departure_date,
		    origin         = @origin,
		    notes          = @notes,
		    updated_at     = now()
		WHERE id = @id AND state <> 'finalized'
		RETURNING ` + tripColumns

	args := tripArgs(trip)
	args["id"] = trip.ID

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result, err := scanTrip(tx.QueryRow(ctx, q, args))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", missingTripError(ctx, tx, trip.ID))
	}
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", mapWriteError(err))
	}
	if _, err := tx.Exec(ctx, `DELETE FROM trip_destinations WHERE trip_id = @id`, pgx.NamedArgs{"id": trip.ID}); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: clear destinations: %w", err)
	}
	if result.Destinations, err = insertDestinations(ctx, tx, result.ID, trip.Destinations); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: commit: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) SetState(ctx context.Context, id uuid.UUID, state domain.TripState) error {
	const q = `UPDATE trips SET state = @state, updated_at = now() WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "state": string(state)})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.SetState: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.SetState: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTripRepo) CountByState(ctx context.Context) (map[domain.TripState]int, error) {
	rows, err := r.db.Query(ctx, `SELECT state, count(*) FROM trips GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.CountByState: %w", err)
	}
	defer rows.Close()

	out := map[domain.TripState]int{}
	for rows.Next() {
		var (
			state string
			n     int
		)
		if err := rows.Scan(&state, &n); err != nil {
			return nil, fmt.Errorf("repo.TripRepo.CountByState: scan: %w", err)
		}
		out[domain.TripState(state)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.CountByState: rows: %w", err)
	}
	return out, nil
}

func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id AND state <> 'finalized'`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", missingTripError(ctx, r.db, id))
	}
	return nil
}

// missingTripError explains why a guarded write matched no row: the trip is
// finalized, it does not exist, or the lookup itself failed.
func missingTripError(ctx context.Context, q db, id uuid.UUID) error {
	var state string
	err := q.QueryRow(ctx, `SELECT state FROM trips WHERE id = @id`, pgx.NamedArgs{"id": id}).Scan(&state)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.ErrNotFound
	case err != nil:
		return err
	case domain.TripState(state) == domain.TripFinalized:
		return domain.ErrTripFinalized
	}
	return domain.ErrNotFound
}

func tripArgs(t domain.Trip) pgx.NamedArgs {
	return pgx.NamedArgs{
		"driver_id":      t.DriverID,
		"tractor_id":     t.TractorID,
		"trailer_id":     t.TrailerID,
		"service_id":     t.ServiceID,
		"departure_date": t.DepartureDate.Format(dateLayout),
		"origin":         t.Origin,
		"notes":          t.Notes,
	}
}

// insertDestinations writes dests in slice order and returns them as stored.
func insertDestinations(ctx context.Context, tx pgx.Tx, tripID uuid.UUID, dests []domain.Destination) ([]domain.Destination, error) {
	const q = `
		INSERT INTO trip_destinations (trip_id, position, location, notes)
		VALUES (@trip_id, @position, @location, @notes)`

	out := make([]domain.Destination, 0, len(dests))
	for _, d := range dests {
		_, err := tx.Exec(ctx, q, pgx.NamedArgs{
			"trip_id":  tripID,
			"position": d.Order,
			"location": d.Location,
			"notes":    d.Notes,
		})
		if err != nil {
			return nil, fmt.Errorf("insert destination %d: %w", d.Order, mapWriteError(err))
		}
		out = append(out, d)
	}
	return out, nil
}

// listDestinations loads the destinations of every trip in ids, grouped by trip.
func listDestinations(ctx context.Context, conn db, ids []uuid.UUID) (map[uuid.UUID][]domain.Destination, error) {
	const q = `
		SELECT trip_id, position, location, notes
		FROM trip_destinations
		WHERE trip_id = ANY(@ids::uuid[])
		ORDER BY trip_id, position`

	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	rows, err := conn.Query(ctx, q, pgx.NamedArgs{"ids": raw})
	if err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]domain.Destination, len(ids))
	for rows.Next() {
		var (
			tripID pgtype.UUID
			d      domain.Destination
		)
		if err := rows.Scan(&tripID, &d.Order, &d.Location, &d.Notes); err != nil {
			return nil, fmt.Errorf("list destinations: scan: %w", err)
		}
		key := uuid.UUID(tripID.Bytes)
		out[key] = append(out[key], d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list destinations: rows: %w", err)
	}
	return out, nil
}

// scanTrip maps a single database row into a domain.Trip without destinations.
func scanTrip(s scanner) (domain.Trip, error) {
	return scanTripInto(s)
}

func scanTripWithTotal(s scanner, total *int64) (domain.Trip, error) {
	return scanTripInto(s, total)
}

func scanTripInto(s scanner, extra ...any) (domain.Trip, error) {
	var (
		t                                         domain.Trip
		id, driverID, tractorID, trailerID, svcID pgtype.UUID
		departure                                 pgtype.Date
		state                                     string
	)
	dest := []any{&id, &driverID, &tractorID, &trailerID, &svcID, &departure,
		&t.Origin, &state, &t.Notes, &t.CreatedAt, &t.UpdatedAt}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.DriverID = uuid.UUID(driverID.Bytes)
	t.TractorID = uuid.UUID(tractorID.Bytes)
	t.TrailerID = uuid.UUID(trailerID.Bytes)
	t.ServiceID = uuid.UUID(svcID.Bytes)
	t.DepartureDate = departure.Time
	t.State = domain.TripState(state)
	return t, nil
}
