package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pravnik-mk/compliance-engine/internal/models"
)

func TestScoreQuestion(t *testing.T) {
	choice := models.Question{
		ID:       "c1",
		Type:     models.QuestionChoice,
		Severity: models.SeverityMedium,
		Weight:   10,
		Options: []models.Option{
			{Value: "always", Points: 10},
			{Value: "sometimes", Points: 4},
			{Value: "never", Points: 0},
			{Value: "no_staff", NotApplicable: true},
		},
	}

	highChoice := choice
	highChoice.Severity = models.SeverityHigh

	tests := []struct {
		name     string
		q        models.Question
		v        models.AnswerValue
		answered bool
		want     QuestionScore
	}{
		{"yes earns weight", question("q", "a", models.SeverityLow, 10), models.AnswerYes, true, QuestionScore{10, 10, OutcomeFull}},
		{"no earns nothing", question("q", "a", models.SeverityLow, 10), models.AnswerNo, true, QuestionScore{0, 10, OutcomeNone}},
		{"partially low earns half", question("q", "a", models.SeverityLow, 10), models.AnswerPartially, true, QuestionScore{5, 10, OutcomePartial}},
		{"partially medium rounds down", question("q", "a", models.SeverityMedium, 7), models.AnswerPartially, true, QuestionScore{3, 7, OutcomePartial}},
		{"partially high earns nothing", question("q", "a", models.SeverityHigh, 10), models.AnswerPartially, true, QuestionScore{0, 10, OutcomePartial}},
		{"not applicable excluded", question("q", "a", models.SeverityHigh, 10), models.AnswerNotApplicable, true, QuestionScore{0, 0, OutcomeExcluded}},
		{"missing counts weight", question("q", "a", models.SeverityHigh, 10), "", false, QuestionScore{0, 10, OutcomeMissing}},
		{"choice full", choice, "always", true, QuestionScore{10, 10, OutcomeFull}},
		{"choice partial", choice, "sometimes", true, QuestionScore{4, 10, OutcomePartial}},
		{"choice zero", choice, "never", true, QuestionScore{0, 10, OutcomeNone}},
		{"choice not applicable", choice, "no_staff", true, QuestionScore{0, 0, OutcomeExcluded}},
		{"choice unknown option", choice, "maybe", true, QuestionScore{0, 10, OutcomeMissing}},
		{"choice partial high earns nothing", highChoice, "sometimes", true, QuestionScore{0, 10, OutcomePartial}},
		{"choice full high earns weight", highChoice, "always", true, QuestionScore{10, 10, OutcomeFull}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreQuestion(&tt.q, tt.v, tt.answered)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreQuestion_YesNoRejectsPartially(t *testing.T) {
	q := question("q", "a", models.SeverityLow, 10)
	q.Type = models.QuestionYesNo

	got := ScoreQuestion(&q, models.AnswerPartially, true)
	assert.Equal(t, 0, got.Points)
	assert.Equal(t, 10, got.MaxScore)
}

func TestScore_SeverityGating(t *testing.T) {
	c := newCatalog(models.PolicyStrict, question("q1", "a", models.SeverityHigh, 10))

	res := Score(c, c.Questions, models.AnswerSet{"q1": models.AnswerPartially})

	assert.Equal(t, 0, res.Score)
	assert.Equal(t, 10, res.MaxScore)
	assert.Equal(t, 0, res.Percentage)
}

func TestScore_NotApplicableExclusion(t *testing.T) {
	c := newCatalog(models.PolicyStrict,
		question("q1", "a", models.SeverityMedium, 10),
		question("q2", "a", models.SeverityMedium, 6),
		question("q3", "b", models.SeverityLow, 4),
	)

	baseline := Score(c, c.Questions, allAnswered(c.Questions, models.AnswerNo))
	answers := allAnswered(c.Questions, models.AnswerNo)
	answers["q2"] = models.AnswerNotApplicable
	res := Score(c, c.Questions, answers)

	assert.Equal(t, baseline.MaxScore-6, res.MaxScore)
	assert.Equal(t, baseline.Score, res.Score)
}

func TestScore_Aggregation(t *testing.T) {
	c := newCatalog(models.PolicyStrict,
		question("q1", "a", models.SeverityMedium, 10),
		question("q2", "a", models.SeverityHigh, 10),
		question("q3", "b", models.SeverityLow, 5),
		question("q4", "b", models.SeverityLow, 8),
	)

	res := Score(c, c.Questions, models.AnswerSet{
		"q1": models.AnswerYes,
		"q2": models.AnswerPartially,
		"q3": models.AnswerPartially,
		"q4": models.AnswerNotApplicable,
	})

	require.Len(t, res.Categories, 2)
	assert.Equal(t, models.CategoryScore{Score: 10, MaxScore: 20, Percentage: 50, Level: models.SeverityLow}, res.Categories["a"])
	assert.Equal(t, models.CategoryScore{Score: 2, MaxScore: 5, Percentage: 40, Level: models.SeverityLow}, res.Categories["b"])

	sumScore, sumMax := 0, 0
	for _, cs := range res.Categories {
		sumScore += cs.Score
		sumMax += cs.MaxScore
	}
	assert.Equal(t, res.Score, sumScore)
	assert.Equal(t, res.MaxScore, sumMax)
	assert.Equal(t, 12, res.Score)
	assert.Equal(t, 25, res.MaxScore)
	assert.Equal(t, 48, res.Percentage)
}

func TestScore_AllNotApplicable(t *testing.T) {
	c := newCatalog(models.PolicyStrict, question("q1", "a", models.SeverityMedium, 10))

	res := Score(c, c.Questions, models.AnswerSet{"q1": models.AnswerNotApplicable})

	assert.Equal(t, 0, res.MaxScore)
	assert.Equal(t, 100, res.Percentage)
	assert.Equal(t, models.SeverityHigh, res.Categories["a"].Level)
}
