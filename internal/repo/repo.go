// Package repo contains all database access logic for the Ruta Control API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rutacontrol/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
// Begin on a pgx.Tx opens a savepoint, so repos can nest their own transactions.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const dateLayout = "2006-01-02"

// Postgres SQLSTATE codes mapped to domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapWriteError turns constraint violations into domain.ErrConflict and
// pgx.ErrNoRows into domain.ErrNotFound. Other errors pass through.
func mapWriteError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: duplicate value (%s)", domain.ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: record is referenced by another record (%s)", domain.ErrConflict, pgErr.ConstraintName)
		}
	}
	return err
}

// encodeDocuments serialises expiries as {"kind": "YYYY-MM-DD"} for a JSONB column.
func encodeDocuments(d domain.Documents) ([]byte, error) {
	raw := make(map[string]string, len(d))
	for k, t := range d {
		raw[string(k)] = t.Format(dateLayout)
	}
	return json.Marshal(raw)
}

// decodeDocuments is the inverse of encodeDocuments. Empty or null input
// yields an empty map.
func decodeDocuments(b []byte) (domain.Documents, error) {
	out := domain.Documents{}
	if len(b) == 0 {
		return out, nil
	}
	var raw map[string]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	for k, v := range raw {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, fmt.Errorf("decode documents: %s: %w", k, err)
		}
		out[domain.DocumentKind(k)] = t
	}
	return out, nil
}

// nullState returns nil for an empty filter so "@state::text IS NULL" matches all rows.
func nullState(s domain.PhysicalState) any {
	if s == "" {
		return nil
	}
	return string(s)
}

func uuidString(id pgtype.UUID) string {
	return uuid.UUID(id.Bytes).String()
}
