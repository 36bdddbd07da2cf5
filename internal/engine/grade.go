package engine

import (
	"sort"

	"github.com/pravnik-mk/compliance-engine/internal/models"
)

// GradeResult is the band an overall or category percentage falls into
type GradeResult struct {
	Key         string          `json:"gradeKey"`
	Label       string          `json:"label"`
	Emoji       string          `json:"emoji"`
	Description string          `json:"description"`
	Level       models.Severity `json:"level"`
}

// Grade maps a percentage to a band. Bands are scanned from the highest
// lower bound down; the first band whose MinPercentage <= percentage wins.
// Catalog validation guarantees a band at 0, so percentages in [0, 100]
// always match.
func Grade(bands []models.GradeBand, percentage int) GradeResult {
	ordered := make([]models.GradeBand, len(bands))
	copy(ordered, bands)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].MinPercentage > ordered[j].MinPercentage
	})

	for _, b := range ordered {
		if b.MinPercentage <= percentage {
			return resultFromBand(b)
		}
	}

	if len(ordered) == 0 {
		return GradeResult{}
	}
	return resultFromBand(ordered[len(ordered)-1])
}

func resultFromBand(b models.GradeBand) GradeResult {
	return GradeResult{
		Key:         b.Key,
		Label:       b.Label,
		Emoji:       b.Emoji,
		Description: b.Description,
		Level:       b.Level,
	}
}

// Percentage returns round(100*score/maxScore), rounding halves up.
// An empty denominator (every question not applicable) counts as full compliance.
func Percentage(score, maxScore int) int {
	if maxScore <= 0 {
		return 100
	}
	return (200*score + maxScore) / (2 * maxScore)
}
