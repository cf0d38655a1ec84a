package ctxmanage

import (
	"context"

	"github.com/gin-gonic/gin"
)

type key string

// TraceIDKey is the request-context key under which the middleware stores the
// per-request trace id.
const TraceIDKey key = "traceId"

// WithTraceID returns a context carrying the given trace id.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceIdOfRequest extracts the trace id set by the logger middleware.
func GetTraceIdOfRequest(c *gin.Context) string {
	traceID, ok := c.Request.Context().Value(TraceIDKey).(string)
	if !ok {
		return "unknown"
	}
	return traceID
}
