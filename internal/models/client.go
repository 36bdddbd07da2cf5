package models

import (
	"slices"
	"strings"
	"time"
)

// ApiClient is an upstream platform allowed to call the assessment API
type ApiClient struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	ApiKey      string            `json:"-"`
	IsActive    bool              `json:"is_active"`
	CreatedAt   time.Time         `json:"created_at"`
	LastUsedAt  *time.Time        `json:"last_used_at,omitempty"`
	Permissions []string          `json:"permissions"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// HasPermission reports whether an active client holds required. A grant of
// "assessments:*" covers every action on assessments; "*" covers everything.
func (c *ApiClient) HasPermission(required string) bool {
	if c == nil || !c.IsActive {
		return false
	}

	resource, _, _ := strings.Cut(required, ":")
	return slices.ContainsFunc(c.Permissions, func(grant string) bool {
		return grant == "*" || grant == required || grant == resource+":*"
	})
}
