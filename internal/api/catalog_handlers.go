package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pravnik-mk/compliance-engine/internal/assessment"
)

// Catalog handlers

func (s *Server) handleListCatalogs(w http.ResponseWriter, r *http.Request) {
	catalogs := s.catalogs.List()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"catalogs": catalogs,
		"total":    len(catalogs),
	})
}

func (s *Server) handleGetQuestions(w http.ResponseWriter, r *http.Request) {
	typ := chi.URLParam(r, "type")

	opts := assessment.QuestionOptions{
		Version: r.URL.Query().Get("version"),
	}
	if raw := r.URL.Query().Get("seed"); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", "seed must be a 64-bit integer")
			return
		}
		opts.Seed = &seed
	}

	set, err := s.assessments.Questions(r.Context(), typ, opts)
	if err != nil {
		respondServiceError(w, err, "load questions")
		return
	}

	respondJSON(w, http.StatusOK, set)
}
