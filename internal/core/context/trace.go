package context

import "context"

// RequestTrace identifies one API request across logs, spans and audit rows.
type RequestTrace struct {
	// TraceID comes from X-Trace-ID or is generated at the edge.
	TraceID string
	// SpanID is the otel server span opened for the request.
	SpanID    string
	RequestID string
}

// LogFields returns the key/value pairs every log line of the request carries.
func (t RequestTrace) LogFields() []any {
	fields := []any{"trace_id", t.TraceID, "request_id", t.RequestID}
	if t.SpanID != "" {
		fields = append(fields, "span_id", t.SpanID)
	}
	return fields
}

type requestTraceKey struct{}

// WithTrace stores the request trace in ctx.
func WithTrace(ctx context.Context, t RequestTrace) context.Context {
	return context.WithValue(ctx, requestTraceKey{}, t)
}

// TraceFrom returns the request trace, if the request came through the API.
func TraceFrom(ctx context.Context) (RequestTrace, bool) {
	t, ok := ctx.Value(requestTraceKey{}).(RequestTrace)
	return t, ok
}

// GetRequestID returns the request id or "" outside a request.
func GetRequestID(ctx context.Context) string {
	t, _ := TraceFrom(ctx)
	return t.RequestID
}
