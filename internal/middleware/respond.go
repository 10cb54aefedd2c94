package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError renders the API error envelope. It mirrors the handler
// package's format for rejections that happen before routing completes.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": message},
	})
}
