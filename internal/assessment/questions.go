package assessment

import (
	"context"

	"github.com/pravnik-mk/compliance-engine/internal/engine"
	"github.com/pravnik-mk/compliance-engine/internal/models"
)

// QuestionOptions selects the catalog version and, for sampled types, the sample
type QuestionOptions struct {
	Version string
	Seed    *int64
}

// QuestionSet is the questionnaire served to a client. For sampled types
// it holds only the drawn questions, and SampleSeed must be echoed back on
// evaluation so the same sample is scored.
type QuestionSet struct {
	Type       string             `json:"type"`
	Version    string             `json:"version"`
	Title      string             `json:"title"`
	Policy     models.Policy      `json:"policy"`
	Sampled    bool               `json:"sampled"`
	SampleSeed *int64             `json:"sampleSeed,omitempty"`
	Bands      []models.GradeBand `json:"bands"`
	Categories []models.Category  `json:"categories"`
	Questions  []models.Question  `json:"questions"`
}

// Questions returns the questionnaire for an assessment type
func (m *Manager) Questions(ctx context.Context, typ string, opts QuestionOptions) (*QuestionSet, error) {
	c, err := m.catalogs.Get(typ, opts.Version)
	if err != nil {
		return nil, err
	}

	set := &QuestionSet{
		Type:       c.Type,
		Version:    c.Version,
		Title:      c.Title,
		Policy:     c.Policy,
		Bands:      c.Bands,
		Categories: c.Categories,
		Questions:  c.Questions,
	}
	if !c.Sampled() {
		return set, nil
	}

	questions, seed, err := engine.SelectSample(c, c.SampleSize, opts.Seed)
	if err != nil {
		return nil, err
	}

	set.Sampled = true
	set.SampleSeed = &seed
	set.Questions = questions
	set.Categories = sampledCategories(c.Categories, questions)
	return set, nil
}

// sampledCategories narrows each category to the sampled questions. The
// catalog's own categories are shared and must not be modified.
func sampledCategories(categories []models.Category, questions []models.Question) []models.Category {
	picked := make(map[string]bool, len(questions))
	for _, q := range questions {
		picked[q.ID] = true
	}

	result := make([]models.Category, 0, len(categories))
	for _, cat := range categories {
		ids := make([]string, 0, len(cat.QuestionIDs))
		for _, id := range cat.QuestionIDs {
			if picked[id] {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			continue
		}
		narrowed := cat
		narrowed.QuestionIDs = ids
		result = append(result, narrowed)
	}
	return result
}
