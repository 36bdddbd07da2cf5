package engine

import (
	"math/rand"
	"sort"

	"github.com/pravnik-mk/compliance-engine/internal/models"
	"github.com/pravnik-mk/compliance-engine/internal/random"
)

// SelectSample draws sampleSize questions so that every category contributes
// in proportion to its share of the catalog. Quotas use the largest remainder
// method so they add up to exactly sampleSize. The same seed always yields the
// same ordered selection; a nil seed draws a fresh one, which is returned so
// the caller can re-derive the sample later.
func SelectSample(catalog *models.Catalog, sampleSize int, seed *int64) ([]models.Question, int64, error) {
	total := len(catalog.Questions)
	if sampleSize <= 0 || sampleSize > total {
		return nil, 0, &InvalidSampleSizeError{Size: sampleSize, Total: total}
	}

	var s int64
	if seed != nil {
		s = *seed
	} else {
		fresh, err := random.NewSeed()
		if err != nil {
			return nil, 0, err
		}
		s = fresh
	}

	quotas := apportion(catalog, sampleSize)
	rng := rand.New(rand.NewSource(s))

	sample := make([]models.Question, 0, sampleSize)
	for i, cat := range catalog.Categories {
		n := len(cat.QuestionIDs)
		if quotas[i] == 0 || n == 0 {
			continue
		}

		picked := rng.Perm(n)[:quotas[i]]
		sort.Ints(picked)
		for _, idx := range picked {
			q, ok := catalog.Question(cat.QuestionIDs[idx])
			if !ok {
				continue
			}
			sample = append(sample, *q)
		}
	}

	return sample, s, nil
}

// apportion splits sampleSize across categories by the largest remainder method.
// Ties on the remainder go to the category declared first.
func apportion(catalog *models.Catalog, sampleSize int) []int {
	total := len(catalog.Questions)
	quotas := make([]int, len(catalog.Categories))
	remainders := make([]int, len(catalog.Categories))

	assigned := 0
	for i, cat := range catalog.Categories {
		share := sampleSize * len(cat.QuestionIDs)
		quotas[i] = share / total
		remainders[i] = share % total
		assigned += quotas[i]
	}

	order := make([]int, len(catalog.Categories))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})

	for _, i := range order {
		if assigned == sampleSize {
			break
		}
		if quotas[i] < len(catalog.Categories[i].QuestionIDs) {
			quotas[i]++
			assigned++
		}
	}

	return quotas
}
