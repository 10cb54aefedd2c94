package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/eligibility"
)

// errorBody is the envelope for every non-2xx JSON response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string, details []string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message, Details: details}})
}

// respondErr maps a service error onto a status code and error envelope.
// Submission rejections carry the offending field or the full list of
// documentation errors in details. Anything unclassified is logged and
// reported as a 500 without leaking its text.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var sub *eligibility.SubmissionError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &sub):
		switch sub.Kind {
		case eligibility.Immutable:
			writeError(w, http.StatusConflict, "trip_finalized", sub.Error(), nil)
		case eligibility.InvalidField:
			writeError(w, http.StatusUnprocessableEntity, "invalid_field", sub.Error(), []string{sub.Field})
		default:
			writeError(w, http.StatusUnprocessableEntity, "documentation_expired",
				"documentation will be expired on the departure date", sub.Errors)
		}
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", nil)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", unwrapMessage(err, domain.ErrNotFound), nil)
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err, domain.ErrValidation), nil)
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", unwrapMessage(err, domain.ErrConflict), nil)
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", unwrapMessage(err, domain.ErrUnauthorized), nil)
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", unwrapMessage(err, domain.ErrForbidden), nil)
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}

// badRequest reports input rejected before reaching the service layer.
func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "bad_request", message, nil)
}

// unwrapMessage extracts the human-readable part that follows a wrapped sentinel.
// e.g. "service.TripService.Create: validation error: origin is required" → "origin is required"
func unwrapMessage(err error, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, prefix); i >= 0 && i+len(prefix) < len(msg) {
		return msg[i+len(prefix):]
	}
	return sentinel.Error()
}

// decodeJSON reads the request body into v. It writes the error response
// itself and returns false when the body is missing or malformed.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		badRequest(w, "request body is required")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondErr(w, r, err)
			return false
		}
		badRequest(w, "malformed JSON body: "+err.Error())
		return false
	}
	return true
}

// pathID parses the {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// queryID parses an optional UUID query parameter. Absent yields nil.
func queryID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errors.New(name + " must be a UUID")
	}
	return &id, nil
}

// queryInt parses an optional positive integer query parameter.
func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return nil, errors.New(name + " must be a positive integer")
	}
	return &n, nil
}
