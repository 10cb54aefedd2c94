package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rutacontrol/backend/internal/auth"
	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/eligibility"
	"github.com/rutacontrol/backend/internal/handler"
	"github.com/rutacontrol/backend/internal/service"
)

// ---- resource mocks ---------------------------------------------------------

// mockResourceServicer is a test double for handler.ResourceServicer.
// Set only the method fields your test needs.
type mockResourceServicer[R eligibility.Assignable] struct {
	create       func(ctx context.Context, r R) (R, error)
	getByID      func(ctx context.Context, id uuid.UUID) (R, error)
	list         func(ctx context.Context, state domain.PhysicalState) ([]R, error)
	update       func(ctx context.Context, r R) (R, error)
	delete       func(ctx context.Context, id uuid.UUID) error
	availability func(ctx context.Context, serviceID *uuid.UUID, date *time.Time) (eligibility.Availability[R], error)
	checkPlate   func(ctx context.Context, plate string, excludeID uuid.UUID) (domain.PlateCheck, error)
}

func (m *mockResourceServicer[R]) Create(ctx context.Context, r R) (R, error) {
	return m.create(ctx, r)
}
func (m *mockResourceServicer[R]) GetByID(ctx context.Context, id uuid.UUID) (R, error) {
	return m.getByID(ctx, id)
}
func (m *mockResourceServicer[R]) List(ctx context.Context, state domain.PhysicalState) ([]R, error) {
	return m.list(ctx, state)
}
func (m *mockResourceServicer[R]) Update(ctx context.Context, r R) (R, error) {
	return m.update(ctx, r)
}
func (m *mockResourceServicer[R]) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockResourceServicer[R]) Availability(ctx context.Context, serviceID *uuid.UUID, date *time.Time) (eligibility.Availability[R], error) {
	return m.availability(ctx, serviceID, date)
}
func (m *mockResourceServicer[R]) CheckPlate(ctx context.Context, plate string, excludeID uuid.UUID) (domain.PlateCheck, error) {
	return m.checkPlate(ctx, plate, excludeID)
}

var (
	_ handler.DriverServicer  = (*mockResourceServicer[domain.Driver])(nil)
	_ handler.TractorServicer = (*mockResourceServicer[domain.Tractor])(nil)
	_ handler.TrailerServicer = (*mockResourceServicer[domain.Trailer])(nil)
)

// ---- catalog ----------------------------------------------------------------

type mockCatalogServicer struct {
	create  func(ctx context.Context, svc domain.Service) (domain.Service, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Service, error)
	list    func(ctx context.Context) ([]domain.Service, error)
	update  func(ctx context.Context, svc domain.Service) (domain.Service, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCatalogServicer) Create(ctx context.Context, s domain.Service) (domain.Service, error) {
	return m.create(ctx, s)
}
func (m *mockCatalogServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Service, error) {
	return m.getByID(ctx, id)
}
func (m *mockCatalogServicer) List(ctx context.Context) ([]domain.Service, error) {
	return m.list(ctx)
}
func (m *mockCatalogServicer) Update(ctx context.Context, s domain.Service) (domain.Service, error) {
	return m.update(ctx, s)
}
func (m *mockCatalogServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.CatalogServicer = (*mockCatalogServicer)(nil)

// ---- trips ------------------------------------------------------------------

type mockTripServicer struct {
	evaluate  func(ctx context.Context, c domain.TripCandidate) (eligibility.Report, error)
	create    func(ctx context.Context, c domain.TripCandidate) (domain.Trip, error)
	update    func(ctx context.Context, id uuid.UUID, c domain.TripCandidate) (domain.Trip, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listPaged func(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error)
	delete    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripServicer) Evaluate(ctx context.Context, c domain.TripCandidate) (eligibility.Report, error) {
	return m.evaluate(ctx, c)
}
func (m *mockTripServicer) Create(ctx context.Context, c domain.TripCandidate) (domain.Trip, error) {
	return m.create(ctx, c)
}
func (m *mockTripServicer) Update(ctx context.Context, id uuid.UUID, c domain.TripCandidate) (domain.Trip, error) {
	return m.update(ctx, id, c)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) ListPaged(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockTripServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.TripServicer = (*mockTripServicer)(nil)

// ---- stops ------------------------------------------------------------------

type mockStopServicer struct {
	record       func(ctx context.Context, stop domain.Stop) (domain.Stop, error)
	listByTripID func(ctx context.Context, tripID uuid.UUID) ([]domain.Stop, error)
}

func (m *mockStopServicer) Record(ctx context.Context, s domain.Stop) (domain.Stop, error) {
	return m.record(ctx, s)
}
func (m *mockStopServicer) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Stop, error) {
	return m.listByTripID(ctx, tripID)
}

var _ handler.StopServicer = (*mockStopServicer)(nil)

// ---- users ------------------------------------------------------------------

type mockUserServicer struct {
	create  func(ctx context.Context, in service.NewUser) (domain.User, error)
	login   func(ctx context.Context, username, password string) (string, domain.User, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.User, error)
	list    func(ctx context.Context) ([]domain.User, error)
	delete  func(ctx context.Context, actor, id uuid.UUID) error
}

func (m *mockUserServicer) Create(ctx context.Context, in service.NewUser) (domain.User, error) {
	return m.create(ctx, in)
}
func (m *mockUserServicer) Login(ctx context.Context, username, password string) (string, domain.User, error) {
	return m.login(ctx, username, password)
}
func (m *mockUserServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.getByID(ctx, id)
}
func (m *mockUserServicer) List(ctx context.Context) ([]domain.User, error) {
	return m.list(ctx)
}
func (m *mockUserServicer) Delete(ctx context.Context, actor, id uuid.UUID) error {
	return m.delete(ctx, actor, id)
}

var _ handler.UserServicer = (*mockUserServicer)(nil)

// ---- stats, export, requirements --------------------------------------------

type mockStatsServicer struct {
	stats    func(ctx context.Context) (domain.Stats, error)
	expiring func(ctx context.Context, days int) ([]domain.ExpiringDocument, error)
}

func (m *mockStatsServicer) Stats(ctx context.Context) (domain.Stats, error) {
	return m.stats(ctx)
}
func (m *mockStatsServicer) Expiring(ctx context.Context, days int) ([]domain.ExpiringDocument, error) {
	return m.expiring(ctx, days)
}

type mockExportServicer struct {
	export func(ctx context.Context) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context) ([]domain.ExportRow, error) {
	return m.export(ctx)
}

type mockRequirementsServicer struct {
	current func() *eligibility.Table
	reload  func(ctx context.Context) (*eligibility.Table, error)
}

func (m *mockRequirementsServicer) Current() *eligibility.Table { return m.current() }
func (m *mockRequirementsServicer) Reload(ctx context.Context) (*eligibility.Table, error) {
	return m.reload(ctx)
}

var (
	_ handler.StatsServicer        = (*mockStatsServicer)(nil)
	_ handler.ExportServicer       = (*mockExportServicer)(nil)
	_ handler.RequirementsServicer = (*mockRequirementsServicer)(nil)
)

// ---- helpers ----------------------------------------------------------------

var testIssuer = auth.NewIssuer("handler-test-secret", time.Hour)

// actorID is the user id carried by tokens from tokenFor.
var actorID = uuid.MustParse("00000000-0000-0000-0000-00000000a11c")

// newHTTPHandler wires a Server with the given mocks into the chi router.
// This mirrors how main.go wires it in production.
func newHTTPHandler(d handler.Deps) http.Handler {
	d.Tokens = testIssuer
	return handler.NewServer(d).Routes()
}

func tokenFor(t *testing.T, role int) string {
	t.Helper()
	tok, err := testIssuer.Issue(domain.User{ID: actorID, Username: "tester", RoleID: role})
	require.NoError(t, err)
	return tok
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

// do sends a request as a user with the given role. role 0 sends no token.
func do(t *testing.T, h http.Handler, method, path string, body io.Reader, role int) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != 0 {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, role))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// errorCode decodes the error envelope and returns its code.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) (string, []string) {
	t.Helper()
	var body struct {
		Error struct {
			Code    string   `json:"code"`
			Message string   `json:"message"`
			Details []string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error.Code, body.Error.Details
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
