package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAssessmentPropagatesWriteFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLiteRepository(db)
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assessments")).
		WithArgs("a-1", "c-1", "general", "1.0.0", 63, "developing", created.UnixMilli(), []byte(`{}`)).
		WillReturnError(errors.New("disk I/O error"))

	err = repo.CreateAssessment(context.Background(), testAssessment("a-1", "c-1", created), []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAssessmentPropagatesReadFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLiteRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM assessments WHERE id = ?")).
		WithArgs("a-1").
		WillReturnError(errors.New("database is locked"))

	payload, err := repo.GetAssessment(context.Background(), "a-1")
	require.Error(t, err)
	assert.Nil(t, payload)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAssessmentNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLiteRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM assessments WHERE id = ?")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	payload, err := repo.GetAssessment(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, payload)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAssessmentsScanFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLiteRepository(db)

	rows := sqlmock.NewRows([]string{"id", "company_id", "type", "catalog_version", "percentage", "grade_key", "created_at"}).
		AddRow("a-1", "c-1", "general", "1.0.0", "not a number", "developing", int64(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, company_id")).
		WithArgs("c-1", 10, 0).
		WillReturnRows(rows)

	_, err = repo.ListAssessments(context.Background(), "c-1", 10, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to scan assessment")
	assert.NoError(t, mock.ExpectationsWereMet())
}
