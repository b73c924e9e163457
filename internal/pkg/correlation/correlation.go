package correlation

import (
	"context"

	"github.com/google/uuid"
)

// Header is the correlation header shared across the gnosis services.
const Header = "X-Correlation-ID"

type contextKey struct{}

func NewID() string {
	return uuid.NewString()
}

func WithID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the correlation id or "" when none was set.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
