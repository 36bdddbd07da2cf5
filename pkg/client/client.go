// Package client is a Go SDK for the compliance-engine HTTP API
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pravnik-mk/compliance-engine/internal/models"
)

// Client is a Go SDK for compliance-engine API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new compliance-engine client
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is a failure reported by the API envelope
type APIError struct {
	StatusCode int             `json:"-"`
	Code       string          `json:"code"`
	Message    string          `json:"message"`
	Details    json.RawMessage `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s - %s", e.StatusCode, e.Code, e.Message)
}

// QuestionSet is a served questionnaire
type QuestionSet struct {
	Type       string             `json:"type"`
	Version    string             `json:"version"`
	Title      string             `json:"title"`
	Policy     models.Policy      `json:"policy"`
	Sampled    bool               `json:"sampled"`
	SampleSeed *int64             `json:"sampleSeed,omitempty"`
	Bands      []models.GradeBand `json:"bands"`
	Categories []models.Category  `json:"categories"`
	Questions  []models.Question  `json:"questions"`
}

// EvaluateRequest is the body of an evaluation
type EvaluateRequest struct {
	Version    string                `json:"version,omitempty"`
	Company    models.CompanyContext `json:"company"`
	Answers    models.AnswerSet      `json:"answers"`
	SampleSeed *int64                `json:"sampleSeed,omitempty"`
}

// RecommendationGroup is a report section of recommendations sharing a source category
type RecommendationGroup struct {
	Category           string                  `json:"category"`
	SourceCategoryName string                  `json:"sourceCategoryName"`
	Recommendations    []models.Recommendation `json:"recommendations"`
}

// Report is an assessment with its recommendations grouped by category
type Report struct {
	Assessment models.Assessment     `json:"assessment"`
	Groups     []RecommendationGroup `json:"recommendationGroups"`
}

// ListOptions pages a company's assessment history
type ListOptions struct {
	Limit  int
	Offset int
}

// ListCatalogs returns every served catalog version
func (c *Client) ListCatalogs(ctx context.Context) ([]models.CatalogSummary, error) {
	var data struct {
		Catalogs []models.CatalogSummary `json:"catalogs"`
		Total    int                     `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/catalogs", nil, &data); err != nil {
		return nil, err
	}
	return data.Catalogs, nil
}

// GetQuestions returns the questionnaire of an assessment type. Empty
// version selects the newest; seed is only used by sampled types.
func (c *Client) GetQuestions(ctx context.Context, typ, version string, seed *int64) (*QuestionSet, error) {
	q := url.Values{}
	if version != "" {
		q.Set("version", version)
	}
	if seed != nil {
		q.Set("seed", strconv.FormatInt(*seed, 10))
	}

	path := "/api/v1/catalogs/" + url.PathEscape(typ) + "/questions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var set QuestionSet
	if err := c.do(ctx, http.MethodGet, path, nil, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// Evaluate scores an answer set and returns the stored assessment
func (c *Client) Evaluate(ctx context.Context, typ string, req EvaluateRequest) (*models.Assessment, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var a models.Assessment
	path := "/api/v1/catalogs/" + url.PathEscape(typ) + "/assessments"
	if err := c.do(ctx, http.MethodPost, path, bytes.NewReader(body), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAssessment retrieves a stored assessment by ID
func (c *Client) GetAssessment(ctx context.Context, id string) (*models.Assessment, error) {
	var a models.Assessment
	if err := c.do(ctx, http.MethodGet, "/api/v1/assessments/"+url.PathEscape(id), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetReport retrieves an assessment with grouped recommendations
func (c *Client) GetReport(ctx context.Context, id string) (*Report, error) {
	var r Report
	if err := c.do(ctx, http.MethodGet, "/api/v1/assessments/"+url.PathEscape(id)+"/report", nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListCompanyAssessments returns a company's assessments, newest first
func (c *Client) ListCompanyAssessments(ctx context.Context, companyID string, opts ListOptions) ([]models.AssessmentSummary, error) {
	q := url.Values{}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}

	path := "/api/v1/companies/" + url.PathEscape(companyID) + "/assessments"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var data struct {
		Assessments []models.AssessmentSummary `json:"assessments"`
		Total       int                        `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	return data.Assessments, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// do performs an HTTP request and unwraps the response envelope into out
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *APIError       `json:"error"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("HTTP %d: failed to unmarshal response: %w", resp.StatusCode, err)
	}

	if !envelope.Success || resp.StatusCode >= 400 {
		apiErr := envelope.Error
		if apiErr == nil {
			apiErr = &APIError{Code: "unknown_error", Message: http.StatusText(resp.StatusCode)}
		}
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response data: %w", err)
	}
	return nil
}
