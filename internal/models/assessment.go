package models

import "time"

// CategoryScore is the aggregate of one category within an assessment
type CategoryScore struct {
	Score      int      `json:"score"`
	MaxScore   int      `json:"maxScore"`
	Percentage int      `json:"percentage"`
	Level      Severity `json:"level"`
}

// Violation is a non-compliant answer with its statutory citation
type Violation struct {
	QuestionID   string   `json:"questionId"`
	CategoryID   string   `json:"categoryId"`
	CategoryName string   `json:"categoryName"`
	CategoryIcon string   `json:"categoryIcon"`
	Question     string   `json:"question"`
	Article      string   `json:"article"`
	Finding      string   `json:"finding"`
	Severity     Severity `json:"severity"`
}

// Recommendation is a remediation action derived from violations
type Recommendation struct {
	Category           string   `json:"category"`
	SourceCategoryName string   `json:"sourceCategoryName"`
	Text               string   `json:"text"`
	Priority           Severity `json:"priority"`
}

// Assessment is the finalized, immutable result of one evaluation.
// A new submission always creates a new Assessment.
type Assessment struct {
	ID               string                   `json:"id"`
	CompanyID        string                   `json:"companyId"`
	IndustryID       string                   `json:"industryId,omitempty"`
	IndustryName     string                   `json:"industryName,omitempty"`
	Type             string                   `json:"type"`
	CatalogVersion   string                   `json:"catalogVersion"`
	Policy           Policy                   `json:"policy"`
	SampleSeed       *int64                   `json:"sampleSeed,omitempty"`
	CreatedAt        time.Time                `json:"createdAt"`
	Answers          AnswerSet                `json:"answers"`
	Score            int                      `json:"score"`
	MaxScore         int                      `json:"maxScore"`
	Percentage       int                      `json:"percentage"`
	Grade            string                   `json:"grade"`
	GradeKey         string                   `json:"gradeKey"`
	GradeEmoji       string                   `json:"gradeEmoji,omitempty"`
	GradeDescription string                   `json:"gradeDescription,omitempty"`
	CategoryScores   map[string]CategoryScore `json:"categoryScores"`
	Violations       []Violation              `json:"violations"`
	Recommendations  []Recommendation         `json:"recommendations"`
}

// AssessmentSummary is the history view of an assessment
type AssessmentSummary struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"companyId"`
	Type           string    `json:"type"`
	CatalogVersion string    `json:"catalogVersion"`
	Percentage     int       `json:"percentage"`
	GradeKey       string    `json:"gradeKey"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Summary returns the history view of the assessment
func (a *Assessment) Summary() AssessmentSummary {
	return AssessmentSummary{
		ID:             a.ID,
		CompanyID:      a.CompanyID,
		Type:           a.Type,
		CatalogVersion: a.CatalogVersion,
		Percentage:     a.Percentage,
		GradeKey:       a.GradeKey,
		CreatedAt:      a.CreatedAt,
	}
}
