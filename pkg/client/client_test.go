package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pravnik-mk/compliance-engine/internal/models"
)

func TestEvaluateSendsBodyAndDecodesAssessment(t *testing.T) {
	seed := int64(42)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/catalogs/quick/assessments", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req EvaluateRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "company-1", req.Company.CompanyID)
		assert.Equal(t, models.AnswerYes, req.Answers["q1"])
		require.NotNil(t, req.SampleSeed)
		assert.Equal(t, seed, *req.SampleSeed)

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"success":true,"data":{"id":"a-1","companyId":"company-1","type":"quick","percentage":75,"gradeKey":"good"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test")
	a, err := c.Evaluate(context.Background(), "quick", EvaluateRequest{
		Company:    models.CompanyContext{CompanyID: "company-1"},
		Answers:    models.AnswerSet{"q1": models.AnswerYes},
		SampleSeed: &seed,
	})
	require.NoError(t, err)
	assert.Equal(t, "a-1", a.ID)
	assert.Equal(t, 75, a.Percentage)
	assert.Equal(t, "good", a.GradeKey)
}

func TestErrorEnvelopeBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"success":false,"error":{"code":"incomplete_company_profile","message":"company profile must be completed","details":{"missing":["email"]}}}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "sk_test").Evaluate(context.Background(), "general", EvaluateRequest{})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "incomplete_company_profile", apiErr.Code)
	assert.JSONEq(t, `{"missing":["email"]}`, string(apiErr.Details))
}

func TestGetQuestionsEncodesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/catalogs/general/questions", r.URL.Path)
		assert.Equal(t, "^1", r.URL.Query().Get("version"))
		assert.Equal(t, "7", r.URL.Query().Get("seed"))
		_, _ = io.WriteString(w, `{"success":true,"data":{"type":"general","version":"1.0.0","sampled":false,"questions":[{"id":"q1"}]}}`)
	}))
	defer srv.Close()

	seed := int64(7)
	set, err := NewClient(srv.URL, "").GetQuestions(context.Background(), "general", "^1", &seed)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", set.Version)
	require.Len(t, set.Questions, 1)
	assert.Equal(t, "q1", set.Questions[0].ID)
}

func TestListCompanyAssessmentsPaging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/companies/company-1/assessments", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "20", r.URL.Query().Get("offset"))
		_, _ = io.WriteString(w, `{"success":true,"data":{"assessments":[{"id":"a-2"},{"id":"a-1"}],"total":2}}`)
	}))
	defer srv.Close()

	list, err := NewClient(srv.URL, "sk_test").ListCompanyAssessments(context.Background(), "company-1", ListOptions{Limit: 10, Offset: 20})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a-2", list[0].ID)
}

func TestNonEnvelopeResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "").Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}
