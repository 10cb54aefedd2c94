package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rutacontrol/backend/internal/domain"
)

// ExportRepo reads the flat trip report.
type ExportRepo interface {
	// Rows returns one row per trip destination ordered by departure date
	// descending, then trip, then destination position.
	Rows(ctx context.Context) ([]domain.ExportRow, error)
}

type pgExportRepo struct {
	db db
}

// NewExportRepo constructs an ExportRepo backed by the provided db connection.
func NewExportRepo(db db) ExportRepo {
	return &pgExportRepo{db: db}
}

// A destination counts as arrived once the trip has at least as many arrival
// stops as the destination's position.
func (r *pgExportRepo) Rows(ctx context.Context) ([]domain.ExportRow, error) {
	const q = `
		SELECT t.id, t.state, t.departure_date, t.origin, s.name,
		       trim(d.first_name || ' ' || d.last_name), tr.plate, tl.plate,
		       td.position, td.location,
		       td.position <= (
		           SELECT count(*) FROM stops st
		           WHERE st.trip_id = t.id AND st.kind = 'arrival'
		       ) AS arrived
		FROM trips t
		JOIN services s           ON s.id = t.service_id
		JOIN drivers d            ON d.id = t.driver_id
		JOIN tractors tr          ON tr.id = t.tractor_id
		JOIN trailers tl          ON tl.id = t.trailer_id
		JOIN trip_destinations td ON td.trip_id = t.id
		ORDER BY t.departure_date DESC, t.id, td.position`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ExportRepo.Rows: %w", err)
	}
	defer rows.Close()

	out := []domain.ExportRow{}
	for rows.Next() {
		var (
			row       domain.ExportRow
			id        pgtype.UUID
			departure pgtype.Date
		)
		err := rows.Scan(&id, &row.State, &departure, &row.Origin, &row.Service,
			&row.Driver, &row.TractorPlate, &row.TrailerPlate,
			&row.DestinationOrder, &row.DestinationLocation, &row.Arrived)
		if err != nil {
			return nil, fmt.Errorf("repo.ExportRepo.Rows: scan: %w", err)
		}
		row.TripID = uuidString(id)
		row.DepartureDate = departure.Time.Format(dateLayout)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ExportRepo.Rows: rows: %w", err)
	}
	return out, nil
}
