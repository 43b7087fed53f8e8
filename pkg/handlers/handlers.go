// Package handlers provides JSON response helpers shared by HTTP handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/verdict/pkg/formatting"
)

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes it as {"error": "..."} with the given status code.
// Server-side failures log at error level; client errors at warn.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("handler error", "error", err, "status", status)
	} else {
		logger.Warn("request rejected", "error", err, "status", status)
	}
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

// DecodeJSON decodes the request body into v and returns the status to
// answer with when it fails: 413 when the body exceeds the MaxBody limit,
// 400 otherwise.
func DecodeJSON(r *http.Request, v any) (int, error) {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return http.StatusOK, nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		limit := formatting.ByteSize(tooLarge.Limit)
		return http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %s", limit)
	}
	return http.StatusBadRequest, err
}
