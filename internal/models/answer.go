package models

// AnswerValue is a submitted answer. Binary questions accept the four
// constants below; choice questions accept one of their option values.
type AnswerValue string

const (
	AnswerYes           AnswerValue = "yes"
	AnswerNo            AnswerValue = "no"
	AnswerPartially     AnswerValue = "partially"
	AnswerNotApplicable AnswerValue = "not_applicable"
)

// AnswerSet maps question IDs to submitted values
type AnswerSet map[string]AnswerValue

// Domain returns the values a question accepts
func (q *Question) Domain() []AnswerValue {
	switch q.Type {
	case QuestionYesNo:
		return []AnswerValue{AnswerYes, AnswerNo}
	case QuestionYesNoPartialNA:
		return []AnswerValue{AnswerYes, AnswerNo, AnswerPartially, AnswerNotApplicable}
	case QuestionChoice:
		values := make([]AnswerValue, 0, len(q.Options))
		for _, opt := range q.Options {
			values = append(values, AnswerValue(opt.Value))
		}
		return values
	}
	return nil
}

// Accepts reports whether v belongs to the question's domain
func (q *Question) Accepts(v AnswerValue) bool {
	for _, allowed := range q.Domain() {
		if v == allowed {
			return true
		}
	}
	return false
}

// Policy decides which validation failures an evaluation tolerates
type Policy string

const (
	// PolicyStrict requires every required question answered with a valid value
	PolicyStrict Policy = "strict"
	// PolicyLenient tolerates missing answers, scored as zero credit
	PolicyLenient Policy = "lenient"
)

// Valid reports whether p is a known policy
func (p Policy) Valid() bool {
	return p == PolicyStrict || p == PolicyLenient
}
