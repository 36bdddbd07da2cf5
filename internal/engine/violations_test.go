package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pravnik-mk/compliance-engine/internal/models"
)

func violationIDs(vs []models.Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.QuestionID
	}
	return out
}

func TestExtractViolations_Rules(t *testing.T) {
	c := newCatalog(models.PolicyStrict,
		// category a: 5 of 40 -> needs attention
		question("a-no", "a", models.SeverityLow, 10),
		question("a-part-low", "a", models.SeverityLow, 10),
		question("a-part-high", "a", models.SeverityHigh, 10),
		question("a-na", "a", models.SeverityHigh, 10),
		question("a-no-high", "a", models.SeverityHigh, 10),
		// category b: 45 of 50 -> compliant overall
		question("b-yes1", "b", models.SeverityMedium, 10),
		question("b-yes2", "b", models.SeverityMedium, 10),
		question("b-yes3", "b", models.SeverityMedium, 10),
		question("b-yes4", "b", models.SeverityMedium, 10),
		question("b-part-med", "b", models.SeverityMedium, 10),
	)
	answers := models.AnswerSet{
		"a-no":        models.AnswerNo,
		"a-part-low":  models.AnswerPartially,
		"a-part-high": models.AnswerPartially,
		"a-na":        models.AnswerNotApplicable,
		"a-no-high":   models.AnswerNo,
		"b-yes1":      models.AnswerYes,
		"b-yes2":      models.AnswerYes,
		"b-yes3":      models.AnswerYes,
		"b-yes4":      models.AnswerYes,
		"b-part-med":  models.AnswerPartially,
	}

	scores := Score(c, c.Questions, answers)
	require.Equal(t, 90, scores.Categories["b"].Percentage)

	got := ExtractViolations(c, c.Questions, scores)

	// high severity first within a category, then question order
	assert.Equal(t, []string{"a-part-high", "a-no-high", "a-no", "a-part-low"}, violationIDs(got))

	v := got[0]
	assert.Equal(t, "a", v.CategoryID)
	assert.Equal(t, "Category a", v.CategoryName)
	assert.Equal(t, "📋", v.CategoryIcon)
	assert.Equal(t, "Art. a-part-high", v.Article)
	assert.Equal(t, "Question a-part-high", v.Question)
	assert.Equal(t, models.SeverityHigh, v.Severity)
	assert.Contains(t, v.Finding, "partially")
}

func TestExtractViolations_PartialHighAlwaysReported(t *testing.T) {
	c := newCatalog(models.PolicyStrict,
		question("q1", "a", models.SeverityHigh, 2),
		question("q2", "a", models.SeverityLow, 100),
	)
	scores := Score(c, c.Questions, models.AnswerSet{"q1": models.AnswerPartially, "q2": models.AnswerYes})
	require.GreaterOrEqual(t, scores.Categories["a"].Percentage, DefaultAttentionThreshold)

	got := ExtractViolations(c, c.Questions, scores)
	assert.Equal(t, []string{"q1"}, violationIDs(got))
}

func TestExtractViolations_CustomThreshold(t *testing.T) {
	c := newCatalog(models.PolicyStrict,
		question("q1", "a", models.SeverityLow, 10),
		question("q2", "a", models.SeverityLow, 10),
	)
	c.AttentionThreshold = 70
	scores := Score(c, c.Questions, models.AnswerSet{"q1": models.AnswerPartially, "q2": models.AnswerYes})

	assert.Empty(t, ExtractViolations(c, c.Questions, scores), "75 percent is above a 70 percent threshold")
}

func TestExtractViolations_NoneIsEmptyNotNil(t *testing.T) {
	c := newCatalog(models.PolicyStrict,
		question("q1", "a", models.SeverityHigh, 10),
		question("q2", "a", models.SeverityLow, 10),
	)
	scores := Score(c, c.Questions, models.AnswerSet{"q1": models.AnswerYes, "q2": models.AnswerYes})

	got := ExtractViolations(c, c.Questions, scores)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExtractViolations_QuestionFindingText(t *testing.T) {
	q := question("q1", "a", models.SeverityMedium, 10)
	q.Finding = "No written employment contracts."
	c := newCatalog(models.PolicyStrict, q)

	got := ExtractViolations(c, c.Questions, Score(c, c.Questions, models.AnswerSet{"q1": models.AnswerNo}))
	require.Len(t, got, 1)
	assert.Equal(t, "No written employment contracts.", got[0].Finding)
}

func TestExtractViolations_ChoiceOutcomes(t *testing.T) {
	q := models.Question{
		ID:         "ch",
		CategoryID: "a",
		Type:       models.QuestionChoice,
		Severity:   models.SeverityMedium,
		Weight:     10,
		Options:    []models.Option{{Value: "full", Points: 10}, {Value: "some", Points: 3}, {Value: "none", Points: 0}},
	}
	c := newCatalog(models.PolicyStrict, q)

	for value, want := range map[models.AnswerValue]int{"full": 0, "some": 1, "none": 1} {
		scores := Score(c, c.Questions, models.AnswerSet{"ch": value})
		assert.Len(t, ExtractViolations(c, c.Questions, scores), want, "answer %s", value)
	}
}
