package context

import (
	stdcontext "context"
	"strings"

	"github.com/smallbiznis/invoicedesk/pkg/telemetry/correlation"
)

type requestIDKey struct{}

// WithRequestID stores the inbound request identifier.
func WithRequestID(ctx stdcontext.Context, requestID string) stdcontext.Context {
	requestID = strings.TrimSpace(requestID)
	if ctx == nil {
		ctx = stdcontext.Background()
	}
	if requestID == "" {
		return ctx
	}
	return stdcontext.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx stdcontext.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// CorrelationIDFromContext returns the mutation correlation id, if any.
func CorrelationIDFromContext(ctx stdcontext.Context) string {
	return correlation.ExtractCorrelationID(ctx)
}
