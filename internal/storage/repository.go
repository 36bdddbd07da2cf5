package storage

import (
	"context"

	"github.com/pravnik-mk/compliance-engine/internal/models"
)

// Repository defines the interface for assessment persistence.
// Assessments are append-only: there is no update or delete.
type Repository interface {
	// Assessments
	CreateAssessment(ctx context.Context, a *models.Assessment, payload []byte) error
	GetAssessment(ctx context.Context, id string) ([]byte, error)
	ListAssessments(ctx context.Context, companyID string, limit, offset int) ([]models.AssessmentSummary, error)

	// API Clients
	CreateClient(ctx context.Context, c *models.ApiClient) error
	GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error)
	UpdateClientLastUsed(ctx context.Context, apiKey string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// clampPage normalizes history paging arguments
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
