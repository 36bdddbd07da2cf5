package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/pravnik-mk/compliance-engine/internal/assessment"
	"github.com/pravnik-mk/compliance-engine/internal/catalog"
	"github.com/pravnik-mk/compliance-engine/internal/engine"
	"github.com/pravnik-mk/compliance-engine/internal/health"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// respondRaw wraps already encoded JSON in the success envelope without
// re-encoding it, so stored assessments reach the client byte for byte
func respondRaw(w http.ResponseWriter, status int, raw []byte) {
	var buf bytes.Buffer
	buf.Grow(len(raw) + 32)
	buf.WriteString(`{"success":true,"data":`)
	buf.Write(raw)
	buf.WriteString("}\n")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondErrorDetails(w, status, code, message, nil)
}

func respondErrorDetails(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondServiceError maps evaluation and retrieval errors to HTTP responses
func respondServiceError(w http.ResponseWriter, err error, action string) {
	var (
		notFound   *catalog.CatalogNotFoundError
		validation *engine.ValidationError
		sampleSize *engine.InvalidSampleSizeError
		permission *assessment.PermissionError
		persist    *assessment.PersistenceError
	)

	switch {
	case errors.As(err, &notFound):
		respondError(w, http.StatusNotFound, "catalog_not_found", notFound.Error())
	case errors.As(err, &validation):
		respondErrorDetails(w, http.StatusBadRequest, "validation_error", "answers failed validation", validation.Errors)
	case errors.As(err, &sampleSize):
		respondError(w, http.StatusBadRequest, "invalid_sample_size", sampleSize.Error())
	case errors.As(err, &permission):
		respondErrorDetails(w, http.StatusForbidden, "incomplete_company_profile",
			"company profile must be completed before an assessment",
			map[string][]string{"missing": permission.Missing})
	case errors.Is(err, assessment.ErrAssessmentNotFound):
		respondError(w, http.StatusNotFound, "not_found", "assessment not found")
	case errors.As(err, &persist):
		slog.Error("persistence failure", "action", action, "error", err)
		respondError(w, http.StatusServiceUnavailable, "persistence_error", "assessment storage is unavailable, try again later")
	default:
		slog.Error("request failed", "action", action, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to "+action)
	}
}

// queryInt parses a non-negative integer query parameter
func queryInt(r *http.Request, name string, def int) int {
	if raw := r.URL.Query().Get(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			return v
		}
	}
	return def
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	results := s.health.CheckAll(r.Context())

	checks := make(map[string]string, len(results))
	for name, err := range results {
		if err != nil {
			slog.Warn("readiness check failed", "dependency", name, "error", err)
			checks[name] = "unavailable"
			continue
		}
		checks[name] = "ok"
	}

	if !health.Healthy(results) {
		respondErrorDetails(w, http.StatusServiceUnavailable, "not_ready", "service not ready", checks)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"checks": checks,
	})
}
