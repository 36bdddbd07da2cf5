package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pravnik-mk/compliance-engine/internal/models"
	"github.com/pravnik-mk/compliance-engine/internal/storage/migrations"
)

// SQLiteRepository implements Repository on an embedded SQLite database.
// Used for development, single-node deployments and tests.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database at path (":memory:" for a private
// in-memory database) and applies the embedded migrations
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if path != ":memory:" {
		path = filepath.Clean(path)
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite has a single writer; an in-memory database also lives in one connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applySQLiteMigrations(ctx, db, migrations.SQLite, "sqlite"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// NewSQLiteRepository wraps an already migrated database handle
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// Ping checks database connectivity
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database handle
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CreateAssessment stores a finalized assessment in a single INSERT
func (r *SQLiteRepository) CreateAssessment(ctx context.Context, a *models.Assessment, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO assessments (id, company_id, type, catalog_version, percentage, grade_key, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.CompanyID,
		a.Type,
		a.CatalogVersion,
		a.Percentage,
		a.GradeKey,
		toMillis(a.CreatedAt),
		payload,
	)
	if err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}
	return nil
}

// GetAssessment returns the stored canonical JSON of an assessment, or nil if absent
func (r *SQLiteRepository) GetAssessment(ctx context.Context, id string) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM assessments WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return payload, nil
}

// ListAssessments returns a company's assessment history, newest first
func (r *SQLiteRepository) ListAssessments(ctx context.Context, companyID string, limit, offset int) ([]models.AssessmentSummary, error) {
	limit, offset = clampPage(limit, offset)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, company_id, type, catalog_version, percentage, grade_key, created_at
		FROM assessments
		WHERE company_id = ?
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`,
		companyID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	result := make([]models.AssessmentSummary, 0)
	for rows.Next() {
		var s models.AssessmentSummary
		var createdAt int64
		if err := rows.Scan(
			&s.ID,
			&s.CompanyID,
			&s.Type,
			&s.CatalogVersion,
			&s.Percentage,
			&s.GradeKey,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		s.CreatedAt = fromMillis(createdAt)
		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assessments: %w", err)
	}
	return result, nil
}

// CreateClient registers an API client and sets its ID
func (r *SQLiteRepository) CreateClient(ctx context.Context, c *models.ApiClient) error {
	permissionsJSON, err := json.Marshal(c.Permissions)
	if err != nil {
		return fmt.Errorf("failed to marshal permissions: %w", err)
	}

	var metadata sql.NullString
	if c.Metadata != nil {
		raw, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		metadata = sql.NullString{String: string(raw), Valid: true}
	}

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO api_clients (name, api_key, is_active, created_at, permissions, metadata)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.Name,
		c.ApiKey,
		c.IsActive,
		toMillis(c.CreatedAt),
		string(permissionsJSON),
		metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to create api client: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read api client id: %w", err)
	}
	c.ID = int(id)
	return nil
}

// GetClientByApiKey retrieves an API client by its key
func (r *SQLiteRepository) GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error) {
	var client models.ApiClient
	var createdAt int64
	var lastUsedAt sql.NullInt64
	var permissionsJSON string
	var metadataJSON sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, api_key, is_active, created_at, last_used_at, permissions, metadata
		FROM api_clients
		WHERE api_key = ?`, apiKey,
	).Scan(
		&client.ID,
		&client.Name,
		&client.ApiKey,
		&client.IsActive,
		&createdAt,
		&lastUsedAt,
		&permissionsJSON,
		&metadataJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get api client: %w", err)
	}

	client.CreatedAt = fromMillis(createdAt)
	if lastUsedAt.Valid {
		t := fromMillis(lastUsedAt.Int64)
		client.LastUsedAt = &t
	}

	if err := decodeClientJSON(&client, []byte(permissionsJSON), []byte(metadataJSON.String)); err != nil {
		return nil, err
	}
	return &client, nil
}

// UpdateClientLastUsed updates the last_used_at timestamp for a client
func (r *SQLiteRepository) UpdateClientLastUsed(ctx context.Context, apiKey string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE api_clients SET last_used_at = ? WHERE api_key = ?`,
		toMillis(time.Now()), apiKey,
	)
	if err != nil {
		return fmt.Errorf("failed to update client last_used_at: %w", err)
	}
	return nil
}
