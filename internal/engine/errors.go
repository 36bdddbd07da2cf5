package engine

import (
	"fmt"
	"strings"
)

// InvalidSampleSizeError is returned when a sample cannot be drawn from a catalog
type InvalidSampleSizeError struct {
	Size  int
	Total int
}

func (e *InvalidSampleSizeError) Error() string {
	return fmt.Sprintf("invalid sample size %d: catalog has %d questions", e.Size, e.Total)
}

// ValidationError carries the field errors an evaluation policy rejected
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	ids := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		ids = append(ids, fe.QuestionID)
	}
	return fmt.Sprintf("invalid answers for %d question(s): %s", len(e.Errors), strings.Join(ids, ", "))
}
