package http

import "context"

type contextKey string

const (
	requestIDContextKey contextKey = "cherished/request-id"
	ownerIDContextKey   contextKey = "cherished/owner-id"
)

// RequestIDFromContext extracts the request identifier from the context when available.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if value, ok := ctx.Value(requestIDContextKey).(string); ok {
		return value
	}
	return ""
}

// OwnerIDFromContext returns the authenticated owner id, or "" when the
// request carried no valid bearer token.
func OwnerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if value, ok := ctx.Value(ownerIDContextKey).(string); ok {
		return value
	}
	return ""
}
