package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kalambet/meishi/internal/generation"
	"github.com/kalambet/meishi/internal/profile"
	"github.com/kalambet/meishi/internal/publish"
)

var errUnauthorized = errors.New("invalid or missing bearer token")

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

// writeError maps a domain error to its status code and error type.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, errType := http.StatusInternalServerError, "api_error"
	switch {
	case errors.Is(err, errUnauthorized):
		code, errType = http.StatusUnauthorized, "authentication_error"
	case errors.Is(err, profile.ErrNotFound):
		code, errType = http.StatusNotFound, "not_found"
	case errors.Is(err, generation.ErrOnboardingIncomplete),
		errors.Is(err, profile.ErrInvalidInput),
		errors.Is(err, profile.ErrLinkLimit):
		code, errType = http.StatusBadRequest, "invalid_request_error"
	case errors.Is(err, generation.ErrGenerationFailed):
		code, errType = http.StatusBadGateway, "generation_error"
	case errors.Is(err, publish.ErrGuardViolation),
		errors.Is(err, profile.ErrAlreadyExists):
		code, errType = http.StatusConflict, "conflict"
	}
	if code >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", code, "error", err)
	}
	httpError(w, code, errType, "%s", err.Error())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encoding response", "error", err)
	}
}
