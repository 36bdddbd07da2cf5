package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pravnik-mk/compliance-engine/internal/models"
)

// FieldErrorCode classifies a problem with a single answer
type FieldErrorCode string

const (
	CodeMissing         FieldErrorCode = "missing"
	CodeInvalidValue    FieldErrorCode = "invalid_value"
	CodeUnknownQuestion FieldErrorCode = "unknown_question"
)

// FieldError describes one rejected or missing answer
type FieldError struct {
	QuestionID string         `json:"questionId"`
	Code       FieldErrorCode `json:"code"`
	Message    string         `json:"message"`
}

// ValidationResult lists every problem found in an answer set
type ValidationResult struct {
	Errors []FieldError `json:"errors"`
}

// Valid reports whether no problems were found
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Validate checks answers against the contracts of the given questions.
// It never fails; the caller applies a Policy to decide what is acceptable.
// Errors are ordered by question order, with unknown ids last (sorted).
func Validate(questions []models.Question, answers models.AnswerSet) ValidationResult {
	var result ValidationResult
	known := make(map[string]struct{}, len(questions))

	for i := range questions {
		q := &questions[i]
		known[q.ID] = struct{}{}

		v, ok := answers[q.ID]
		if !ok || v == "" {
			if !q.Optional {
				result.Errors = append(result.Errors, FieldError{
					QuestionID: q.ID,
					Code:       CodeMissing,
					Message:    "answer is required",
				})
			}
			continue
		}

		if !q.Accepts(v) {
			result.Errors = append(result.Errors, FieldError{
				QuestionID: q.ID,
				Code:       CodeInvalidValue,
				Message:    fmt.Sprintf("value %q is not one of: %s", v, joinValues(q.Domain())),
			})
		}
	}

	var unknown []string
	for id := range answers {
		if _, ok := known[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		result.Errors = append(result.Errors, FieldError{
			QuestionID: id,
			Code:       CodeUnknownQuestion,
			Message:    "question is not part of this assessment",
		})
	}

	return result
}

// Check applies a policy to a validation result. Strict rejects any error;
// lenient tolerates missing answers only, which then score zero credit.
func Check(policy models.Policy, result ValidationResult) error {
	var rejected []FieldError
	for _, fe := range result.Errors {
		if policy == models.PolicyLenient && fe.Code == CodeMissing {
			continue
		}
		rejected = append(rejected, fe)
	}
	if len(rejected) == 0 {
		return nil
	}
	return &ValidationError{Errors: rejected}
}

func joinValues(values []models.AnswerValue) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
