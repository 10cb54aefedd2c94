package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rutacontrol/backend/internal/auth"
	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/middleware"
)

func tokenFor(t *testing.T, issuer *auth.Issuer, role int) string {
	t.Helper()
	tok, err := issuer.Issue(domain.User{ID: uuid.New(), Username: "ana", RoleID: role})
	require.NoError(t, err)
	return tok
}

func protected(issuer *auth.Issuer, perm auth.Permission) http.Handler {
	return middleware.Authenticate(issuer)(middleware.RequirePermission(perm)(okHandler))
}

func TestAuthenticate_MissingToken(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)

	rec := httptest.NewRecorder()
	protected(issuer, auth.TripsRead).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/trips", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"unauthorized"`)
}

func TestAuthenticate_BadToken(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	other := auth.NewIssuer("other-secret", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, other, domain.RoleAdmin))
	rec := httptest.NewRecorder()
	protected(issuer, auth.TripsRead).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequirePermission_Forbidden(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/trips", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, issuer, domain.RoleViewer))
	rec := httptest.NewRecorder()
	protected(issuer, auth.TripsWrite).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequirePermission_Allowed(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/trips", nil)
	req.Header.Set("Authorization", "bearer "+tokenFor(t, issuer, domain.RoleDispatcher))
	rec := httptest.NewRecorder()
	protected(issuer, auth.TripsWrite).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClaimsFromContext(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	var got auth.Claims
	h := middleware.Authenticate(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = middleware.ClaimsFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, issuer, domain.RoleAdmin))
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, domain.RoleAdmin, got.RoleID)
	assert.NotEqual(t, uuid.Nil, got.UserID)
}
