package middleware

import "context"

type contextKey string

const (
	ctxUserID        contextKey = "user_id"
	ctxIsFarmer      contextKey = "is_farmer"
	ctxCartSessionID contextKey = "cart_session_id"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func IsFarmerFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	if v, ok := ctx.Value(ctxIsFarmer).(bool); ok {
		return v
	}
	return false
}

func CartSessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCartSessionID).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithIsFarmer marks the authenticated user as a farmer for downstream handlers.
func WithIsFarmer(ctx context.Context, isFarmer bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIsFarmer, isFarmer)
}

// WithCartSessionID injects the visitor's cart session identifier.
func WithCartSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCartSessionID, sessionID)
}
