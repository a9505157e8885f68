package context

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	// QueryIDKey is the context key for the Druid query ID
	QueryIDKey contextKey = "query_id"
)

// WithQueryID adds a query ID to the context
func WithQueryID(ctx context.Context, queryID string) context.Context {
	return context.WithValue(ctx, QueryIDKey, queryID)
}

// GetQueryID retrieves the query ID from context
func GetQueryID(ctx context.Context) string {
	if id, ok := ctx.Value(QueryIDKey).(string); ok {
		return id
	}
	return ""
}

// GenerateQueryID generates a unique query ID. Druid accepts any string in
// the queryId context field; a UUID keeps it unique across brokers.
func GenerateQueryID() string {
	return uuid.NewString()
}
