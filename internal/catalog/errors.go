package catalog

import (
	"errors"
	"fmt"
)

// ErrCatalogNotFound is matched by every *CatalogNotFoundError
var ErrCatalogNotFound = errors.New("catalog not found")

// CatalogNotFoundError is returned for an unknown assessment type or version
type CatalogNotFoundError struct {
	Type    string
	Version string
}

func (e *CatalogNotFoundError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("catalog not found: %s@%s", e.Type, e.Version)
	}
	return fmt.Sprintf("catalog not found: %s", e.Type)
}

func (e *CatalogNotFoundError) Is(target error) bool {
	return target == ErrCatalogNotFound
}
