package utils

import "context"

type contextKey string

const (
	userIDKey       contextKey = "user_id"
	userEmailKey    contextKey = "email"
	sessionKey      contextKey = "session_key"
	newSession      contextKey = "new_session"
	internalRequest contextKey = "internal_request"
)

// SessionCookieName carries the anonymous session key for guest carts.
const SessionCookieName = "sid"

// SetUserContext stores the verified token subject. Roles are not kept;
// admin checks re-read the profile.
func SetUserContext(ctx context.Context, id uint, email string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, id)
	return context.WithValue(ctx, userEmailKey, email)
}

// GetUserIDFromContext reports false for anonymous callers.
func GetUserIDFromContext(ctx context.Context) (uint, bool) {
	id, _ := ctx.Value(userIDKey).(uint)
	return id, id != 0
}

func GetUserEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(userEmailKey).(string)
	return email
}

func SetSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKey, key)
}

func GetSessionKeyFromContext(ctx context.Context) (string, bool) {
	key, _ := ctx.Value(sessionKey).(string)
	return key, key != ""
}

// WithNewSession marks a session key minted for this request. Nothing can
// be stored under it yet.
func WithNewSession(ctx context.Context) context.Context {
	return context.WithValue(ctx, newSession, true)
}

func IsNewSession(ctx context.Context) bool {
	ok, _ := ctx.Value(newSession).(bool)
	return ok
}

// WithInternalRequest marks a request authenticated with the service key.
func WithInternalRequest(ctx context.Context) context.Context {
	return context.WithValue(ctx, internalRequest, true)
}

func IsInternalRequest(ctx context.Context) bool {
	ok, _ := ctx.Value(internalRequest).(bool)
	return ok
}
