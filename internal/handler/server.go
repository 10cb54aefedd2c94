// Package handler implements the HTTP handlers for the Ruta Control API.
// All handlers are methods on Server (or on the generic resource handler it
// builds), split into domain-specific files that share the same
// dependencies. Routes() assembles them into a chi router.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rutacontrol/backend/internal/auth"
	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/eligibility"
	"github.com/rutacontrol/backend/internal/middleware"
	"github.com/rutacontrol/backend/internal/service"
)

// ResourceServicer defines the operations shared by the driver, tractor and
// trailer services. Defining the interface here (in the consumer package)
// lets handler tests inject a mock without touching the service layer.
type ResourceServicer[R eligibility.Assignable] interface {
	Create(ctx context.Context, r R) (R, error)
	GetByID(ctx context.Context, id uuid.UUID) (R, error)
	List(ctx context.Context, state domain.PhysicalState) ([]R, error)
	Update(ctx context.Context, r R) (R, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Availability(ctx context.Context, serviceID *uuid.UUID, date *time.Time) (eligibility.Availability[R], error)
}

// PlateChecker answers whether a plate is already registered.
type PlateChecker interface {
	CheckPlate(ctx context.Context, plate string, excludeID uuid.UUID) (domain.PlateCheck, error)
}

// DriverServicer is the driver service as seen by the handlers.
type DriverServicer interface {
	ResourceServicer[domain.Driver]
}

// TractorServicer is the tractor service as seen by the handlers.
type TractorServicer interface {
	ResourceServicer[domain.Tractor]
	PlateChecker
}

// TrailerServicer is the trailer service as seen by the handlers.
type TrailerServicer interface {
	ResourceServicer[domain.Trailer]
	PlateChecker
}

// CatalogServicer manages the service catalogue.
type CatalogServicer interface {
	Create(ctx context.Context, svc domain.Service) (domain.Service, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Service, error)
	List(ctx context.Context) ([]domain.Service, error)
	Update(ctx context.Context, svc domain.Service) (domain.Service, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TripServicer defines the trip operations, including the eligibility
// check that runs without persisting anything.
type TripServicer interface {
	Evaluate(ctx context.Context, c domain.TripCandidate) (eligibility.Report, error)
	Create(ctx context.Context, c domain.TripCandidate) (domain.Trip, error)
	Update(ctx context.Context, id uuid.UUID, c domain.TripCandidate) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	ListPaged(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// StopServicer records and lists trip stops.
type StopServicer interface {
	Record(ctx context.Context, stop domain.Stop) (domain.Stop, error)
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Stop, error)
}

// UserServicer manages operators and issues access tokens.
type UserServicer interface {
	Create(ctx context.Context, in service.NewUser) (domain.User, error)
	Login(ctx context.Context, username, password string) (string, domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, actor, id uuid.UUID) error
}

// StatsServicer builds the dashboard.
type StatsServicer interface {
	Stats(ctx context.Context) (domain.Stats, error)
	Expiring(ctx context.Context, days int) ([]domain.ExpiringDocument, error)
}

// ExportServicer returns the flat trip report.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// RequirementsServicer exposes and reloads the document requirement table.
type RequirementsServicer interface {
	Current() *eligibility.Table
	Reload(ctx context.Context) (*eligibility.Table, error)
}

// Deps lists everything the handlers need. Nil services leave their routes
// mounted but unusable; tests set only what they exercise.
type Deps struct {
	Drivers      DriverServicer
	Tractors     TractorServicer
	Trailers     TrailerServicer
	Catalog      CatalogServicer
	Trips        TripServicer
	Stops        StopServicer
	Users        UserServicer
	Stats        StatsServicer
	Export       ExportServicer
	Requirements RequirementsServicer

	// Tokens verifies bearer tokens on every route except login and health.
	Tokens middleware.TokenParser
	// PlateLimit throttles the plate lookup endpoints. Nil disables it.
	PlateLimit func(http.Handler) http.Handler
}

// Server holds the handler dependencies.
// Methods are in domain-specific files but all operate on this struct.
type Server struct {
	drivers      DriverServicer
	tractors     TractorServicer
	trailers     TrailerServicer
	catalog      CatalogServicer
	trips        TripServicer
	stops        StopServicer
	users        UserServicer
	stats        StatsServicer
	export       ExportServicer
	requirements RequirementsServicer
	tokens       middleware.TokenParser
	plateLimit   func(http.Handler) http.Handler
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	limit := d.PlateLimit
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}
	return &Server{
		drivers:      d.Drivers,
		tractors:     d.Tractors,
		trailers:     d.Trailers,
		catalog:      d.Catalog,
		trips:        d.Trips,
		stops:        d.Stops,
		users:        d.Users,
		stats:        d.Stats,
		export:       d.Export,
		requirements: d.Requirements,
		tokens:       d.Tokens,
		plateLimit:   limit,
	}
}

// Routes returns the API router. Global middleware (request id, logging,
// metrics, CORS, body limit) is applied by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
	})

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Post("/auth/login", s.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(s.tokens))

		r.Get("/auth/me", s.GetMe)

		r.Route("/drivers", func(r chi.Router) {
			driverHandler(s.drivers).mount(r, nil, nil)
		})
		r.Route("/tractors", func(r chi.Router) {
			tractorHandler(s.tractors).mount(r, s.tractors, s.plateLimit)
		})
		r.Route("/trailers", func(r chi.Router) {
			trailerHandler(s.trailers).mount(r, s.trailers, s.plateLimit)
		})

		r.Route("/services", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.ResourcesRead)).Get("/", s.ListServices)
			r.With(middleware.RequirePermission(auth.ResourcesWrite)).Post("/", s.CreateService)
			r.With(middleware.RequirePermission(auth.ResourcesRead)).Get("/{id}", s.GetService)
			r.With(middleware.RequirePermission(auth.ResourcesWrite)).Put("/{id}", s.UpdateService)
			r.With(middleware.RequirePermission(auth.ResourcesWrite)).Delete("/{id}", s.DeleteService)
		})

		r.Route("/trips", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.TripsRead)).Get("/", s.ListTrips)
			r.With(middleware.RequirePermission(auth.TripsWrite)).Post("/", s.CreateTrip)
			r.With(middleware.RequirePermission(auth.TripsRead)).Post("/evaluate", s.EvaluateTrip)
			r.With(middleware.RequirePermission(auth.TripsRead)).Get("/{id}", s.GetTrip)
			r.With(middleware.RequirePermission(auth.TripsWrite)).Put("/{id}", s.UpdateTrip)
			r.With(middleware.RequirePermission(auth.TripsDelete)).Delete("/{id}", s.DeleteTrip)
			r.With(middleware.RequirePermission(auth.TripsRead)).Get("/{id}/stops", s.ListStops)
			r.With(middleware.RequirePermission(auth.StopsWrite)).Post("/{id}/stops", s.RecordStop)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequirePermission(auth.UsersManage))
			r.Get("/", s.ListUsers)
			r.Post("/", s.CreateUser)
			r.Get("/{id}", s.GetUser)
			r.Delete("/{id}", s.DeleteUser)
		})

		r.With(middleware.RequirePermission(auth.StatsRead)).Get("/stats", s.GetStats)
		r.With(middleware.RequirePermission(auth.StatsRead)).Get("/stats/expiring", s.ListExpiring)
		r.With(middleware.RequirePermission(auth.TripsRead)).Get("/export", s.GetExport)

		r.With(middleware.RequirePermission(auth.ResourcesRead)).Get("/requirements", s.GetRequirements)
		r.With(middleware.RequirePermission(auth.UsersManage)).Post("/admin/requirements/reload", s.ReloadRequirements)
	})

	return r
}
