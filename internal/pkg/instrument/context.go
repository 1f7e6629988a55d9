package instrument

import "context"

type correlationIDKey struct{}

// SetCorrelationID stores the correlation id used to join logs, spans and
// published events that belong to the same request.
func SetCorrelationID(ctx context.Context, cID string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, cID)
}

// GetCorrelationID returns the correlation id stored in ctx, or an empty string.
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	cID, ok := ctx.Value(correlationIDKey{}).(string)
	if !ok {
		return ""
	}

	return cID
}
