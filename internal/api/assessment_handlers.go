package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pravnik-mk/compliance-engine/internal/assessment"
	"github.com/pravnik-mk/compliance-engine/internal/models"
)

const maxEvaluateBody = 1 << 20

// evaluateRequest is the body of POST /catalogs/{type}/assessments
type evaluateRequest struct {
	Version    string                `json:"version"`
	Company    models.CompanyContext `json:"company"`
	Answers    models.AnswerSet      `json:"answers"`
	SampleSeed *int64                `json:"sampleSeed"`
}

// Assessment handlers

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEvaluateBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "invalid_request", "request body too large")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid_request", "failed to read request body")
		return
	}

	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := s.evaluateSchema.Validate(doc); err != nil {
		respondErrorDetails(w, http.StatusBadRequest, "invalid_request", "request body does not match schema", schemaProblems(err))
		return
	}

	var req evaluateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	stored, err := s.assessments.Evaluate(r.Context(), assessment.EvaluateRequest{
		Type:       chi.URLParam(r, "type"),
		Version:    req.Version,
		Company:    req.Company,
		Answers:    req.Answers,
		SampleSeed: req.SampleSeed,
	})
	if err != nil {
		respondServiceError(w, err, "evaluate assessment")
		return
	}

	slog.Info("evaluation served",
		"assessment_id", stored.Assessment.ID,
		"company_id", stored.Assessment.CompanyID,
		"type", stored.Assessment.Type,
		"client", clientName(r.Context()),
	)

	w.Header().Set("Location", "/api/v1/assessments/"+stored.Assessment.ID)
	respondRaw(w, http.StatusCreated, stored.JSON)
}

func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "assessment id is required")
		return
	}

	stored, err := s.assessments.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "get assessment")
		return
	}

	respondRaw(w, http.StatusOK, stored.JSON)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := s.assessments.Report(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "build report")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleListCompanyAssessments(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyId")
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	summaries, err := s.assessments.List(r.Context(), companyID, limit, offset)
	if err != nil {
		respondServiceError(w, err, "list assessments")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"assessments": summaries,
		"total":       len(summaries),
	})
}
