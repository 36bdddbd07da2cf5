package api

import (
	"context"

	"github.com/pravnik-mk/compliance-engine/internal/models"
)

type contextKey struct{}

// ClientFromContext returns the authenticated upstream platform, or nil
func ClientFromContext(ctx context.Context) *models.ApiClient {
	client, _ := ctx.Value(contextKey{}).(*models.ApiClient)
	return client
}

// ContextWithClient stores the authenticated upstream platform
func ContextWithClient(ctx context.Context, client *models.ApiClient) context.Context {
	return context.WithValue(ctx, contextKey{}, client)
}

// clientName names the caller in audit logs
func clientName(ctx context.Context) string {
	if client := ClientFromContext(ctx); client != nil {
		return client.Name
	}
	return "anonymous"
}
