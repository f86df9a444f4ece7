// Package security provides security-related utilities including actor context management.
package security

import "context"

type userIDKey struct{}

type clientIPKey struct{}

// Actor identifies who performed an operation and from where.
type Actor struct {
	UserID   string
	ClientIP string
}

// WithUserID adds user ID to context.
// Used by middleware to propagate authenticated user through request chain.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// GetUserID retrieves user ID from context.
// Returns empty string if not found.
//
// Usage in domain layer:
//
//	userID := security.GetUserID(ctx)
//	if userID != "" {
//	    sale.CreatedBy = userID
//	}
func GetUserID(ctx context.Context) string {
	if uid, ok := ctx.Value(userIDKey{}).(string); ok {
		return uid
	}
	return ""
}

// WithClientIP adds the caller's IP address to context.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// GetClientIP retrieves the caller's IP address from context.
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// ActorFrom snapshots the actor stored in ctx.
// Call it on the request goroutine before handing work to another goroutine.
func ActorFrom(ctx context.Context) Actor {
	return Actor{
		UserID:   GetUserID(ctx),
		ClientIP: GetClientIP(ctx),
	}
}
