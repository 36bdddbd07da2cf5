// Package engine evaluates questionnaire answers against a rule catalog.
//
// Every function is a pure computation over its inputs: the catalog is
// read-only and no state is shared between evaluations.
package engine

import (
	"github.com/pravnik-mk/compliance-engine/internal/models"
)

// Evaluation is the complete outcome of scoring one answer set
type Evaluation struct {
	Scores          ScoreResult
	Grade           GradeResult
	Violations      []models.Violation
	Recommendations []models.Recommendation
}

// Evaluate runs validate -> score -> grade -> violations -> recommendations
// over questions (the full catalog or a sample of it). Validation failures
// not tolerated by the catalog's policy are returned as *ValidationError.
func Evaluate(catalog *models.Catalog, questions []models.Question, answers models.AnswerSet) (*Evaluation, error) {
	if err := Check(catalog.Policy, Validate(questions, answers)); err != nil {
		return nil, err
	}

	scores := Score(catalog, questions, answers)
	violations := ExtractViolations(catalog, questions, scores)

	return &Evaluation{
		Scores:          scores,
		Grade:           Grade(catalog.Bands, scores.Percentage),
		Violations:      violations,
		Recommendations: BuildRecommendations(catalog, violations),
	}, nil
}
