package catalog

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/pravnik-mk/compliance-engine/internal/models"
)

// Validate checks the load-time integrity of a catalog. Every problem is
// reported; a catalog with any problem must not be served.
func Validate(c *models.Catalog) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Type == "" {
		add("type is required")
	}
	if _, err := semver.NewVersion(c.Version); err != nil {
		add("version %q is not a semantic version", c.Version)
	}
	if !c.Policy.Valid() {
		add("unknown policy %q", c.Policy)
	}
	if c.AttentionThreshold < 0 || c.AttentionThreshold > 100 {
		add("attention_threshold %d outside 0..100", c.AttentionThreshold)
	}
	if len(c.Questions) == 0 {
		add("catalog has no questions")
	}
	if c.SampleSize < 0 || c.SampleSize > len(c.Questions) {
		add("sample_size %d outside 1..%d", c.SampleSize, len(c.Questions))
	}

	errs = append(errs, validateBands(c.Bands)...)

	categories := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.ID == "" {
			add("category with empty id")
			continue
		}
		if categories[cat.ID] {
			add("duplicate category %q", cat.ID)
		}
		categories[cat.ID] = true
		if cat.Name == "" {
			add("category %q: name is required", cat.ID)
		}
	}

	questions := make(map[string]*models.Question, len(c.Questions))
	for i := range c.Questions {
		q := &c.Questions[i]
		if q.ID == "" {
			add("question with empty id")
			continue
		}
		if _, dup := questions[q.ID]; dup {
			add("duplicate question %q", q.ID)
		}
		questions[q.ID] = q
		errs = append(errs, validateQuestion(q, categories)...)
	}

	// Every question belongs to exactly one category, and that category is the one it names.
	owner := make(map[string]string, len(c.Questions))
	for _, cat := range c.Categories {
		for _, qid := range cat.QuestionIDs {
			q, ok := questions[qid]
			if !ok {
				add("category %q references unknown question %q", cat.ID, qid)
				continue
			}
			if prev, seen := owner[qid]; seen {
				add("question %q listed in categories %q and %q", qid, prev, cat.ID)
				continue
			}
			owner[qid] = cat.ID
			if q.CategoryID != cat.ID {
				add("question %q names category %q but is listed in %q", qid, q.CategoryID, cat.ID)
			}
		}
	}
	for _, q := range c.Questions {
		if _, ok := owner[q.ID]; !ok && q.ID != "" {
			add("question %q is not listed in any category", q.ID)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog %s@%s is invalid: %w", c.Type, c.Version, errors.Join(errs...))
	}
	return nil
}

func validateQuestion(q *models.Question, categories map[string]bool) []error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("question %q: "+format, append([]any{q.ID}, args...)...))
	}

	if !categories[q.CategoryID] {
		add("unknown category %q", q.CategoryID)
	}
	if q.Text == "" {
		add("text is required")
	}
	if !q.Type.Valid() {
		add("unknown type %q", q.Type)
	}
	if !q.Severity.Valid() {
		add("unknown severity %q", q.Severity)
	}
	if q.Weight <= 0 {
		add("weight must be positive, got %d", q.Weight)
	}

	if q.Type != models.QuestionChoice {
		if len(q.Options) > 0 {
			add("options are only allowed on choice questions")
		}
		return errs
	}

	if len(q.Options) < 2 {
		add("choice questions need at least two options")
	}
	values := make(map[string]bool, len(q.Options))
	for _, opt := range q.Options {
		if opt.Value == "" {
			add("option with empty value")
			continue
		}
		if values[opt.Value] {
			add("duplicate option %q", opt.Value)
		}
		values[opt.Value] = true
		if opt.Points < 0 || opt.Points > q.Weight {
			add("option %q points %d outside 0..%d", opt.Value, opt.Points, q.Weight)
		}
	}
	return errs
}

func validateBands(bands []models.GradeBand) []error {
	if len(bands) == 0 {
		return []error{errors.New("at least one grade band is required")}
	}

	var errs []error
	keys := make(map[string]bool, len(bands))
	thresholds := make(map[int]bool, len(bands))
	hasFloor := false
	for _, b := range bands {
		if b.Key == "" {
			errs = append(errs, errors.New("grade band with empty key"))
		} else if keys[b.Key] {
			errs = append(errs, fmt.Errorf("duplicate grade band %q", b.Key))
		}
		keys[b.Key] = true

		if thresholds[b.MinPercentage] {
			errs = append(errs, fmt.Errorf("grade band %q: duplicate min_percentage %d", b.Key, b.MinPercentage))
		}
		thresholds[b.MinPercentage] = true

		if b.MinPercentage < 0 || b.MinPercentage > 100 {
			errs = append(errs, fmt.Errorf("grade band %q: min_percentage %d outside 0..100", b.Key, b.MinPercentage))
		}
		if b.MinPercentage == 0 {
			hasFloor = true
		}
		if !b.Level.Valid() {
			errs = append(errs, fmt.Errorf("grade band %q: unknown level %q", b.Key, b.Level))
		}
	}
	if !hasFloor {
		errs = append(errs, errors.New("a grade band with min_percentage 0 is required"))
	}
	return errs
}
