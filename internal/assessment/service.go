// Package assessment runs the evaluation pipeline and owns the lifecycle of
// finalized assessments: evaluate, persist once, retrieve unchanged.
package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gowebpki/jcs"

	"github.com/pravnik-mk/compliance-engine/internal/cache"
	"github.com/pravnik-mk/compliance-engine/internal/catalog"
	"github.com/pravnik-mk/compliance-engine/internal/engine"
	"github.com/pravnik-mk/compliance-engine/internal/metrics"
	"github.com/pravnik-mk/compliance-engine/internal/models"
	"github.com/pravnik-mk/compliance-engine/internal/storage"
)

// industryAwareType is the only assessment type that records the company's industry
const industryAwareType = "marketing"

// Service defines the interface for assessment evaluation and retrieval
type Service interface {
	Questions(ctx context.Context, typ string, opts QuestionOptions) (*QuestionSet, error)
	Evaluate(ctx context.Context, req EvaluateRequest) (*Stored, error)
	Get(ctx context.Context, id string) (*Stored, error)
	Report(ctx context.Context, id string) (*Report, error)
	List(ctx context.Context, companyID string, limit, offset int) ([]models.AssessmentSummary, error)
}

// CatalogSource resolves catalogs by type and version
type CatalogSource interface {
	Get(typ, version string) (*models.Catalog, error)
}

// EvaluateRequest is one questionnaire submission
type EvaluateRequest struct {
	Type       string
	Version    string
	Company    models.CompanyContext
	Answers    models.AnswerSet
	SampleSeed *int64
}

// Stored is a finalized assessment together with its canonical JSON.
// JSON is the exact byte sequence persisted and returned to clients.
type Stored struct {
	Assessment *models.Assessment
	JSON       []byte
}

// Report is an assessment with its recommendations grouped by source category
type Report struct {
	Assessment json.RawMessage              `json:"assessment"`
	Groups     []engine.RecommendationGroup `json:"recommendationGroups"`
}

// Manager implements Service
type Manager struct {
	catalogs CatalogSource
	repo     storage.Repository
	cache    cache.AssessmentCache
	validate *validator.Validate
	now      func() time.Time
}

// NewManager creates a new assessment manager. A nil cache disables caching.
func NewManager(catalogs CatalogSource, repo storage.Repository, c cache.AssessmentCache) *Manager {
	if c == nil {
		c = cache.Nop{}
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return &Manager{
		catalogs: catalogs,
		repo:     repo,
		cache:    c,
		validate: v,
		now:      time.Now,
	}
}

// Evaluate validates, scores and grades a submission and persists the
// resulting assessment. On any error nothing is stored or cached.
func (m *Manager) Evaluate(ctx context.Context, req EvaluateRequest) (stored *Stored, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordEvaluation(req.Type, evaluationOutcome(err), time.Since(start))
	}()

	if err := m.checkCompany(req.Company); err != nil {
		return nil, err
	}

	c, err := m.catalogs.Get(req.Type, req.Version)
	if err != nil {
		return nil, err
	}

	questions := c.Questions
	var seed *int64
	if c.Sampled() {
		if req.SampleSeed == nil {
			return nil, &engine.ValidationError{Errors: []engine.FieldError{{
				QuestionID: "sampleSeed",
				Code:       engine.CodeMissing,
				Message:    "sampleSeed is required for sampled assessments",
			}}}
		}
		questions, _, err = engine.SelectSample(c, c.SampleSize, req.SampleSeed)
		if err != nil {
			return nil, err
		}
		s := *req.SampleSeed
		seed = &s
	}

	eval, err := engine.Evaluate(c, questions, req.Answers)
	if err != nil {
		return nil, err
	}

	a := &models.Assessment{
		ID:               uuid.New().String(),
		CompanyID:        req.Company.CompanyID,
		Type:             c.Type,
		CatalogVersion:   c.Version,
		Policy:           c.Policy,
		SampleSeed:       seed,
		CreatedAt:        m.now().UTC().Truncate(time.Millisecond),
		Answers:          answersFor(questions, req.Answers),
		Score:            eval.Scores.Score,
		MaxScore:         eval.Scores.MaxScore,
		Percentage:       eval.Scores.Percentage,
		Grade:            eval.Grade.Label,
		GradeKey:         eval.Grade.Key,
		GradeEmoji:       eval.Grade.Emoji,
		GradeDescription: eval.Grade.Description,
		CategoryScores:   eval.Scores.Categories,
		Violations:       eval.Violations,
		Recommendations:  eval.Recommendations,
	}
	if c.Type == industryAwareType {
		a.IndustryID = req.Company.IndustryID
		a.IndustryName = req.Company.IndustryName
	}

	payload, err := canonicalJSON(a)
	if err != nil {
		return nil, err
	}

	if err := m.repo.CreateAssessment(ctx, a, payload); err != nil {
		slog.Error("failed to store assessment", "id", a.ID, "type", a.Type, "error", err)
		return nil, &PersistenceError{Err: err}
	}

	if err := m.cache.Set(ctx, a.ID, payload); err != nil {
		slog.Warn("failed to cache assessment", "id", a.ID, "error", err)
	}

	metrics.RecordGrade(a.Type, a.GradeKey)
	slog.Info("assessment finalized",
		"id", a.ID,
		"company_id", a.CompanyID,
		"type", a.Type,
		"catalog_version", a.CatalogVersion,
		"percentage", a.Percentage,
		"grade", a.GradeKey,
		"violations", len(a.Violations),
	)

	return &Stored{Assessment: a, JSON: payload}, nil
}

// Get retrieves a finalized assessment exactly as it was stored
func (m *Manager) Get(ctx context.Context, id string) (*Stored, error) {
	payload, err := m.cache.Get(ctx, id)
	if err != nil {
		slog.Warn("assessment cache read failed", "id", id, "error", err)
		payload = nil
	}
	metrics.RecordCacheRequest(payload != nil)

	if payload == nil {
		payload, err = m.repo.GetAssessment(ctx, id)
		if err != nil {
			return nil, &PersistenceError{Err: err}
		}
		if payload == nil {
			return nil, ErrAssessmentNotFound
		}
		if err := m.cache.Set(ctx, id, payload); err != nil {
			slog.Warn("failed to cache assessment", "id", id, "error", err)
		}
	}

	var a models.Assessment
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, fmt.Errorf("failed to decode assessment %s: %w", id, err)
	}

	return &Stored{Assessment: &a, JSON: payload}, nil
}

// Report returns an assessment with its recommendations grouped by source category
func (m *Manager) Report(ctx context.Context, id string) (*Report, error) {
	stored, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	groups := engine.GroupRecommendations(stored.Assessment.Recommendations)
	if groups == nil {
		groups = []engine.RecommendationGroup{}
	}

	return &Report{
		Assessment: json.RawMessage(stored.JSON),
		Groups:     groups,
	}, nil
}

// List returns a company's assessment history, newest first
func (m *Manager) List(ctx context.Context, companyID string, limit, offset int) ([]models.AssessmentSummary, error) {
	summaries, err := m.repo.ListAssessments(ctx, companyID, limit, offset)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return summaries, nil
}

// checkCompany verifies the company profile fields required before evaluation
func (m *Manager) checkCompany(company models.CompanyContext) error {
	err := m.validate.Struct(company)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate company profile: %w", err)
	}

	missing := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		missing = append(missing, fe.Field())
	}
	return &PermissionError{Missing: missing}
}

// answersFor keeps the submitted answers that belong to the evaluated questions
func answersFor(questions []models.Question, answers models.AnswerSet) models.AnswerSet {
	kept := make(models.AnswerSet, len(questions))
	for _, q := range questions {
		if v, ok := answers[q.ID]; ok && v != "" {
			kept[q.ID] = v
		}
	}
	return kept
}

// canonicalJSON encodes an assessment as RFC 8785 canonical JSON
func canonicalJSON(a *models.Assessment) ([]byte, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to encode assessment: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize assessment: %w", err)
	}
	return canonical, nil
}

func evaluationOutcome(err error) string {
	var (
		validationErr *engine.ValidationError
		sampleErr     *engine.InvalidSampleSizeError
		permissionErr *PermissionError
		persistErr    *PersistenceError
	)
	switch {
	case err == nil:
		return metrics.OutcomeFinalized
	case errors.As(err, &validationErr), errors.As(err, &sampleErr):
		return metrics.OutcomeInvalid
	case errors.As(err, &permissionErr):
		return metrics.OutcomeForbidden
	case errors.Is(err, catalog.ErrCatalogNotFound):
		return metrics.OutcomeNotFound
	case errors.As(err, &persistErr):
		return metrics.OutcomePersistError
	}
	return "error"
}
