package engine

import (
	"sort"

	"github.com/pravnik-mk/compliance-engine/internal/models"
)

// BuildRecommendations maps violations to remediation actions.
//
// Each violation yields the question's own recommendation, or else the
// category's shared remediation text, so several violations may collapse
// into one action. Actions are deduplicated by (category, text) keeping the
// highest priority, then ordered by priority, category order and first
// occurrence. The same violations always produce the same list.
func BuildRecommendations(catalog *models.Catalog, violations []models.Violation) []models.Recommendation {
	recs := make([]models.Recommendation, 0, len(violations))
	seen := make(map[[2]string]int, len(violations))

	for _, v := range violations {
		text := recommendationText(catalog, v)
		key := [2]string{v.CategoryID, text}

		if i, ok := seen[key]; ok {
			if v.Severity.Rank() > recs[i].Priority.Rank() {
				recs[i].Priority = v.Severity
			}
			continue
		}

		seen[key] = len(recs)
		recs = append(recs, models.Recommendation{
			Category:           v.CategoryID,
			SourceCategoryName: v.CategoryName,
			Text:               text,
			Priority:           v.Severity,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		pi, pj := recs[i].Priority.Rank(), recs[j].Priority.Rank()
		if pi != pj {
			return pi > pj
		}
		return catalog.CategoryIndex(recs[i].Category) < catalog.CategoryIndex(recs[j].Category)
	})

	return recs
}

func recommendationText(catalog *models.Catalog, v models.Violation) string {
	if q, ok := catalog.Question(v.QuestionID); ok && q.Recommendation != "" {
		return q.Recommendation
	}
	if cat, ok := catalog.Category(v.CategoryID); ok && cat.Remediation != "" {
		return cat.Remediation
	}
	if v.Article != "" {
		return "Bring practice in line with " + v.Article + "."
	}
	return "Review and remediate: " + v.Question
}

// RecommendationGroup collects the recommendations of one source category
type RecommendationGroup struct {
	Category           string                  `json:"category"`
	SourceCategoryName string                  `json:"sourceCategoryName"`
	Recommendations    []models.Recommendation `json:"recommendations"`
}

// GroupRecommendations groups an ordered recommendation list by category.
// Groups appear in order of their first recommendation.
func GroupRecommendations(recs []models.Recommendation) []RecommendationGroup {
	groups := make([]RecommendationGroup, 0)
	index := make(map[string]int)

	for _, r := range recs {
		i, ok := index[r.Category]
		if !ok {
			i = len(groups)
			index[r.Category] = i
			groups = append(groups, RecommendationGroup{
				Category:           r.Category,
				SourceCategoryName: r.SourceCategoryName,
			})
		}
		groups[i].Recommendations = append(groups[i].Recommendations, r)
	}

	return groups
}
