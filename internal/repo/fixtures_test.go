package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/repo"
	"github.com/rutacontrol/backend/testutil"
)

// repos bundles every repo over one rolled-back transaction.
type repos struct {
	services repo.ServiceRepo
	drivers  repo.DriverRepo
	tractors repo.TractorRepo
	trailers repo.TrailerRepo
	trips    repo.TripRepo
	stops    repo.StopRepo
	users    repo.UserRepo
	export   repo.ExportRepo
}

// newTestRepos opens a transaction against the test database and returns
// repos backed by it. The transaction is rolled back when the test finishes.
func newTestRepos(t *testing.T) repos {
	t.Helper()
	return reposOver(testutil.NewTx(t))
}

func reposOver(tx pgx.Tx) repos {
	return repos{
		services: repo.NewServiceRepo(tx),
		drivers:  repo.NewDriverRepo(tx),
		tractors: repo.NewTractorRepo(tx),
		trailers: repo.NewTrailerRepo(tx),
		trips:    repo.NewTripRepo(tx),
		stops:    repo.NewStopRepo(tx),
		users:    repo.NewUserRepo(tx),
		export:   repo.NewExportRepo(tx),
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustCreateService(t *testing.T, r repos, name string) domain.Service {
	t.Helper()
	s, err := r.services.Create(context.Background(), domain.Service{Name: name})
	require.NoError(t, err, "create service")
	return s
}

func mustCreateDriver(t *testing.T, r repos) domain.Driver {
	t.Helper()
	d, err := r.drivers.Create(context.Background(), domain.Driver{
		Resource: domain.Resource{
			State:     domain.StateAvailable,
			Documents: domain.Documents{"licencia": date(2026, 12, 31)},
		},
		FirstName:  "Juan",
		LastName:   "Pérez",
		NationalID: uuid.NewString()[:8],
	})
	require.NoError(t, err, "create driver")
	return d
}

func mustCreateTractor(t *testing.T, r repos) domain.Tractor {
	t.Helper()
	tr, err := r.tractors.Create(context.Background(), domain.Tractor{
		Resource: domain.Resource{State: domain.StateAvailable},
		Plate:    "AB" + uuid.NewString()[:6],
		Brand:    "Scania",
		Model:    "R450",
		Year:     2020,
	})
	require.NoError(t, err, "create tractor")
	return tr
}

func mustCreateTrailer(t *testing.T, r repos, serviceType string) domain.Trailer {
	t.Helper()
	tl, err := r.trailers.Create(context.Background(), domain.Trailer{
		Resource:   domain.Resource{State: domain.StateAvailable, ServiceType: serviceType},
		Plate:      "CS" + uuid.NewString()[:6],
		Type:       "cisterna",
		CapacityM3: 30.5,
	})
	require.NoError(t, err, "create trailer")
	return tl
}

// mustCreateTrip inserts a programmed trip with two destinations together
// with every resource it references.
func mustCreateTrip(t *testing.T, r repos) domain.Trip {
	t.Helper()
	svc := mustCreateService(t, r, "gas licuado "+uuid.NewString()[:4])
	trip, err := r.trips.Create(context.Background(), domain.Trip{
		DriverID:      mustCreateDriver(t, r).ID,
		TractorID:     mustCreateTractor(t, r).ID,
		TrailerID:     mustCreateTrailer(t, r, svc.Name).ID,
		ServiceID:     svc.ID,
		DepartureDate: date(2025, 6, 1),
		Origin:        "Campana",
		Destinations: []domain.Destination{
			{Order: 1, Location: "Rosario"},
			{Order: 2, Location: "Córdoba", Notes: "descarga nocturna"},
		},
	})
	require.NoError(t, err, "create trip")
	return trip
}
