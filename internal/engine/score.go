package engine

import (
	"github.com/pravnik-mk/compliance-engine/internal/models"
)

// Outcome classifies how much credit an answer earned
type Outcome string

const (
	OutcomeFull     Outcome = "full"
	OutcomePartial  Outcome = "partial"
	OutcomeNone     Outcome = "none"
	OutcomeExcluded Outcome = "excluded"
	OutcomeMissing  Outcome = "missing"
)

// QuestionScore is the contribution of one question
type QuestionScore struct {
	Points   int
	MaxScore int
	Outcome  Outcome
}

// ScoreResult holds per-question, per-category and overall aggregates
type ScoreResult struct {
	Score      int
	MaxScore   int
	Percentage int
	Categories map[string]models.CategoryScore
	Questions  map[string]QuestionScore
}

// Score converts answers into points for the given questions (the whole
// catalog or a sample of it) and aggregates them per category and overall.
// Category levels come from the catalog's own grade bands.
func Score(catalog *models.Catalog, questions []models.Question, answers models.AnswerSet) ScoreResult {
	result := ScoreResult{
		Categories: make(map[string]models.CategoryScore),
		Questions:  make(map[string]QuestionScore, len(questions)),
	}

	for i := range questions {
		q := &questions[i]
		v, answered := answers[q.ID]
		qs := ScoreQuestion(q, v, answered && v != "")
		result.Questions[q.ID] = qs

		cs := result.Categories[q.CategoryID]
		cs.Score += qs.Points
		cs.MaxScore += qs.MaxScore
		result.Categories[q.CategoryID] = cs

		result.Score += qs.Points
		result.MaxScore += qs.MaxScore
	}

	for id, cs := range result.Categories {
		cs.Percentage = Percentage(cs.Score, cs.MaxScore)
		cs.Level = Grade(catalog.Bands, cs.Percentage).Level
		result.Categories[id] = cs
	}
	result.Percentage = Percentage(result.Score, result.MaxScore)

	return result
}

// ScoreQuestion applies the scoring rules to a single answer:
//
//	yes            -> full weight
//	no             -> 0
//	partially      -> weight/2, or 0 when severity is high
//	not_applicable -> excluded from both score and max score
//	choice         -> the option's catalog points
//
// An unanswered or out-of-domain answer earns 0 with the weight still counted.
func ScoreQuestion(q *models.Question, v models.AnswerValue, answered bool) QuestionScore {
	if !answered {
		return QuestionScore{MaxScore: q.Weight, Outcome: OutcomeMissing}
	}

	if q.Type == models.QuestionChoice {
		opt, ok := q.Option(string(v))
		switch {
		case !ok:
			return QuestionScore{MaxScore: q.Weight, Outcome: OutcomeMissing}
		case opt.NotApplicable:
			return QuestionScore{Outcome: OutcomeExcluded}
		case opt.Points >= q.Weight:
			return QuestionScore{Points: q.Weight, MaxScore: q.Weight, Outcome: OutcomeFull}
		case opt.Points <= 0:
			return QuestionScore{MaxScore: q.Weight, Outcome: OutcomeNone}
		case q.Severity == models.SeverityHigh:
			// Same gate as a "partially" answer below.
			return QuestionScore{MaxScore: q.Weight, Outcome: OutcomePartial}
		default:
			return QuestionScore{Points: opt.Points, MaxScore: q.Weight, Outcome: OutcomePartial}
		}
	}

	switch v {
	case models.AnswerYes:
		return QuestionScore{Points: q.Weight, MaxScore: q.Weight, Outcome: OutcomeFull}
	case models.AnswerNo:
		return QuestionScore{MaxScore: q.Weight, Outcome: OutcomeNone}
	case models.AnswerPartially:
		if !q.Accepts(v) {
			return QuestionScore{MaxScore: q.Weight, Outcome: OutcomeMissing}
		}
		// Partial compliance with a high-severity obligation earns nothing.
		if q.Severity == models.SeverityHigh {
			return QuestionScore{MaxScore: q.Weight, Outcome: OutcomePartial}
		}
		return QuestionScore{Points: q.Weight / 2, MaxScore: q.Weight, Outcome: OutcomePartial}
	case models.AnswerNotApplicable:
		if !q.Accepts(v) {
			return QuestionScore{MaxScore: q.Weight, Outcome: OutcomeMissing}
		}
		return QuestionScore{Outcome: OutcomeExcluded}
	}

	return QuestionScore{MaxScore: q.Weight, Outcome: OutcomeMissing}
}
