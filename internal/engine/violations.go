package engine

import (
	"sort"

	"github.com/pravnik-mk/compliance-engine/internal/models"
)

// DefaultAttentionThreshold is the category percentage below which partial
// answers on medium and low severity questions are reported as violations.
const DefaultAttentionThreshold = 80

// ExtractViolations derives findings from answers that did not earn full credit.
//
// A question is a violation when it earned nothing, when it was partially
// met on a high severity question, or when it was partially met and its
// category scored below the catalog's attention threshold. Unanswered
// questions are not violations.
//
// Violations are grouped by category in catalog order; within a category
// high severity comes first, then question order.
func ExtractViolations(catalog *models.Catalog, questions []models.Question, scores ScoreResult) []models.Violation {
	threshold := catalog.AttentionThreshold
	if threshold <= 0 {
		threshold = DefaultAttentionThreshold
	}

	byCategory := make(map[string][]models.Violation)
	for i := range questions {
		q := &questions[i]
		qs, ok := scores.Questions[q.ID]
		if !ok {
			continue
		}

		switch qs.Outcome {
		case OutcomeNone:
		case OutcomePartial:
			if q.Severity != models.SeverityHigh && scores.Categories[q.CategoryID].Percentage >= threshold {
				continue
			}
		default:
			continue
		}

		byCategory[q.CategoryID] = append(byCategory[q.CategoryID], newViolation(catalog, q, qs.Outcome))
	}

	violations := make([]models.Violation, 0, len(questions))
	for _, cat := range catalog.Categories {
		found := byCategory[cat.ID]
		sort.SliceStable(found, func(i, j int) bool {
			return found[i].Severity.Rank() > found[j].Severity.Rank()
		})
		violations = append(violations, found...)
	}

	return violations
}

func newViolation(catalog *models.Catalog, q *models.Question, outcome Outcome) models.Violation {
	v := models.Violation{
		QuestionID: q.ID,
		CategoryID: q.CategoryID,
		Question:   q.Text,
		Article:    q.LegalReference,
		Finding:    finding(q, outcome),
		Severity:   q.Severity,
	}
	if cat, ok := catalog.Category(q.CategoryID); ok {
		v.CategoryName = cat.Name
		v.CategoryIcon = cat.Icon
	}
	return v
}

func finding(q *models.Question, outcome Outcome) string {
	if q.Finding != "" {
		if outcome == OutcomePartial {
			return q.Finding + " (only partially addressed)"
		}
		return q.Finding
	}

	switch {
	case outcome == OutcomePartial && q.LegalReference != "":
		return "The obligation under " + q.LegalReference + " is only partially met."
	case outcome == OutcomePartial:
		return "The obligation is only partially met."
	case q.LegalReference != "":
		return "The obligation under " + q.LegalReference + " is not met."
	default:
		return "The obligation is not met."
	}
}
