package engine

import (
	"fmt"

	"github.com/pravnik-mk/compliance-engine/internal/models"
)

func testBands() []models.GradeBand {
	return []models.GradeBand{
		{MinPercentage: 0, Key: "critical", Label: "Critical", Emoji: "🔴", Level: models.SeverityLow},
		{MinPercentage: 40, Key: "unstable", Label: "Unstable", Emoji: "🟠", Level: models.SeverityLow},
		{MinPercentage: 60, Key: "developing", Label: "Developing", Emoji: "🟡", Level: models.SeverityMedium},
		{MinPercentage: 85, Key: "mature", Label: "Mature", Emoji: "🟢", Level: models.SeverityHigh},
	}
}

// newCatalog builds an indexed catalog; categories are created in order of
// first appearance of their id among the questions.
func newCatalog(policy models.Policy, questions ...models.Question) *models.Catalog {
	c := &models.Catalog{
		Type:      "test",
		Version:   "1.0.0",
		Policy:    policy,
		Bands:     testBands(),
		Questions: questions,
	}

	index := make(map[string]int)
	for _, q := range questions {
		i, ok := index[q.CategoryID]
		if !ok {
			i = len(c.Categories)
			index[q.CategoryID] = i
			c.Categories = append(c.Categories, models.Category{
				ID:   q.CategoryID,
				Name: "Category " + q.CategoryID,
				Icon: "📋",
			})
		}
		c.Categories[i].QuestionIDs = append(c.Categories[i].QuestionIDs, q.ID)
	}

	c.BuildIndex()
	return c
}

func question(id, category string, severity models.Severity, weight int) models.Question {
	return models.Question{
		ID:             id,
		CategoryID:     category,
		Text:           "Question " + id,
		LegalReference: "Art. " + id,
		Type:           models.QuestionYesNoPartialNA,
		Severity:       severity,
		Weight:         weight,
	}
}

// sizedCatalog builds a catalog with the given number of questions per category
func sizedCatalog(sizes ...int) *models.Catalog {
	var qs []models.Question
	for c, n := range sizes {
		for i := 0; i < n; i++ {
			qs = append(qs, question(fmt.Sprintf("c%d-q%d", c, i), fmt.Sprintf("c%d", c), models.SeverityMedium, 10))
		}
	}
	return newCatalog(models.PolicyLenient, qs...)
}

func allAnswered(questions []models.Question, v models.AnswerValue) models.AnswerSet {
	answers := make(models.AnswerSet, len(questions))
	for _, q := range questions {
		answers[q.ID] = v
	}
	return answers
}
