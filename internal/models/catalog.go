package models

// QuestionType is the answer-type contract of a question
type QuestionType string

const (
	QuestionYesNo          QuestionType = "yesNo"
	QuestionYesNoPartialNA QuestionType = "yesNoPartialNA"
	QuestionChoice         QuestionType = "choice"
)

// Valid reports whether t is a known question type
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionYesNo, QuestionYesNoPartialNA, QuestionChoice:
		return true
	}
	return false
}

// Severity is the criticality of a question (also used for category levels and priorities)
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Valid reports whether s is a known severity
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// Rank orders severities: high > medium > low. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// Option is one allowed value of a choice question. Points are owned by the catalog.
type Option struct {
	Value         string `json:"value" yaml:"value"`
	Label         string `json:"label" yaml:"label"`
	Points        int    `json:"points" yaml:"points"`
	NotApplicable bool   `json:"notApplicable,omitempty" yaml:"not_applicable"`
}

// Question is a single rule of a catalog
type Question struct {
	ID             string       `json:"id" yaml:"id"`
	CategoryID     string       `json:"categoryId" yaml:"category"`
	Text           string       `json:"text" yaml:"text"`
	LegalReference string       `json:"legalReference" yaml:"legal_reference"`
	Type           QuestionType `json:"type" yaml:"type"`
	Options        []Option     `json:"options,omitempty" yaml:"options"`
	Severity       Severity     `json:"severity" yaml:"severity"`
	Weight         int          `json:"weight" yaml:"weight"`
	Optional       bool         `json:"optional,omitempty" yaml:"optional"`

	// Report texts; not needed by the questionnaire UI
	Finding        string `json:"-" yaml:"finding"`
	Recommendation string `json:"-" yaml:"recommendation"`
}

// Option returns the option with the given value
func (q *Question) Option(value string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.Value == value {
			return opt, true
		}
	}
	return Option{}, false
}

// Category groups questions for scoring and report presentation
type Category struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Icon        string   `json:"icon" yaml:"icon"`
	QuestionIDs []string `json:"questionIds" yaml:"questions"`
	Remediation string   `json:"-" yaml:"remediation"`
}

// GradeBand maps a percentage range (lower bound inclusive) to a label
type GradeBand struct {
	MinPercentage int      `json:"minPercentage" yaml:"min_percentage"`
	Key           string   `json:"key" yaml:"key"`
	Label         string   `json:"label" yaml:"label"`
	Emoji         string   `json:"emoji" yaml:"emoji"`
	Description   string   `json:"description" yaml:"description"`
	Level         Severity `json:"level" yaml:"level"`
}

// Catalog is an immutable, versioned rule set for one assessment type.
// Shared read-only across requests once loaded.
type Catalog struct {
	Type               string      `json:"type"`
	Version            string      `json:"version"`
	Title              string      `json:"title"`
	Policy             Policy      `json:"policy"`
	SampleSize         int         `json:"sampleSize,omitempty"`
	AttentionThreshold int         `json:"-"`
	Bands              []GradeBand `json:"bands"`
	Categories         []Category  `json:"categories"`
	Questions          []Question  `json:"questions"`

	questionIndex map[string]int
	categoryIndex map[string]int
}

// Sampled reports whether the catalog is served as a quick-check sample
func (c *Catalog) Sampled() bool {
	return c.SampleSize > 0
}

// BuildIndex populates lookup tables. Must be called before the catalog is shared.
func (c *Catalog) BuildIndex() {
	c.questionIndex = make(map[string]int, len(c.Questions))
	for i := range c.Questions {
		c.questionIndex[c.Questions[i].ID] = i
	}
	c.categoryIndex = make(map[string]int, len(c.Categories))
	for i := range c.Categories {
		c.categoryIndex[c.Categories[i].ID] = i
	}
}

// Question looks up a question by ID
func (c *Catalog) Question(id string) (*Question, bool) {
	i, ok := c.questionIndex[id]
	if !ok {
		return nil, false
	}
	return &c.Questions[i], true
}

// Category looks up a category by ID
func (c *Catalog) Category(id string) (*Category, bool) {
	i, ok := c.categoryIndex[id]
	if !ok {
		return nil, false
	}
	return &c.Categories[i], true
}

// CategoryIndex returns the presentation position of a category, or -1
func (c *Catalog) CategoryIndex(id string) int {
	i, ok := c.categoryIndex[id]
	if !ok {
		return -1
	}
	return i
}

// CatalogSummary is the listing view of a catalog
type CatalogSummary struct {
	Type          string `json:"type"`
	Version       string `json:"version"`
	Title         string `json:"title"`
	Policy        Policy `json:"policy"`
	Sampled       bool   `json:"sampled"`
	QuestionCount int    `json:"questionCount"`
}

// Summary returns the listing view of the catalog
func (c *Catalog) Summary() CatalogSummary {
	return CatalogSummary{
		Type:          c.Type,
		Version:       c.Version,
		Title:         c.Title,
		Policy:        c.Policy,
		Sampled:       c.Sampled(),
		QuestionCount: len(c.Questions),
	}
}
