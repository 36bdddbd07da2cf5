package assessment

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAssessmentNotFound is returned when no assessment has the requested ID
var ErrAssessmentNotFound = errors.New("assessment not found")

// PermissionError is returned when the company profile is incomplete.
// Missing lists the JSON names of the absent or malformed fields.
type PermissionError struct {
	Missing []string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("company profile incomplete: %s", strings.Join(e.Missing, ", "))
}

// PersistenceError wraps a storage failure. Nothing was stored or returned.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
