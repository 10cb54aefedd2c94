// Package cli implements the rutactl commands.
package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql

	"github.com/rutacontrol/backend/internal/config"
	"github.com/rutacontrol/backend/internal/repo"
	"github.com/rutacontrol/backend/internal/service"
)

// openSQLDB opens DATABASE_URL through database/sql, for goose.
func openSQLDB(ctx context.Context) (*sql.DB, error) {
	dsn, err := config.LoadDatabaseURL()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// openPool opens DATABASE_URL as a pgx pool for the repos.
func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	dsn, err := config.LoadDatabaseURL()
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// fleetRepos builds the repos the stats service reads.
func fleetRepos(pool *pgxpool.Pool) service.TripRepos {
	return service.TripRepos{
		Trips:    repo.NewTripRepo(pool),
		Drivers:  repo.NewDriverRepo(pool),
		Tractors: repo.NewTractorRepo(pool),
		Trailers: repo.NewTrailerRepo(pool),
		Services: repo.NewServiceRepo(pool),
		Stops:    repo.NewStopRepo(pool),
	}
}
