// Package middleware provides reusable HTTP middleware for the Ruta Control API.
package middleware

import (
	"net/http"
	"time"

	"github.com/rs/cors"
)

// corsPreflightCache is how long browsers may reuse a preflight answer.
const corsPreflightCache = 10 * time.Minute

// NewCORSHandler returns a middleware that applies CORS headers for the
// given origins (scheme + host, no trailing slash). A single "*" entry allows
// any origin. Browsers may send bearer tokens; X-Request-Id and
// Content-Disposition (CSV export file name) are readable by scripts.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "Content-Disposition"},
		MaxAge:         int(corsPreflightCache.Seconds()),
	})
	return c.Handler
}
