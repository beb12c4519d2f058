package gateway

import (
	"context"
	"fmt"

	"storefront-be/internal/apperr"
	"storefront-be/internal/utils"
)

// Identity is the owner of session-scoped rows: a signed-in user or an
// anonymous session key.
type Identity struct {
	UserID     uint
	SessionKey string
}

func (i Identity) Authenticated() bool {
	return i.UserID != 0
}

func (i Identity) IsZero() bool {
	return i.UserID == 0 && i.SessionKey == ""
}

// Key is a stable string used to index per-session containers.
func (i Identity) Key() string {
	if i.Authenticated() {
		return fmt.Sprintf("user:%d", i.UserID)
	}
	return "session:" + i.SessionKey
}

// OwnerColumn returns the column and value rows of this identity are
// filtered by.
func (i Identity) OwnerColumn() (string, any) {
	if i.Authenticated() {
		return "user_id", i.UserID
	}
	return "session_key", i.SessionKey
}

// CurrentUser resolves the signed-in user from the request context.
func CurrentUser(ctx context.Context) (Identity, error) {
	uid, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return Identity{}, apperr.ErrAuthenticationRequired
	}
	return Identity{UserID: uid}, nil
}

// CurrentOwner resolves the signed-in user, falling back to the anonymous
// session key.
func CurrentOwner(ctx context.Context) (Identity, error) {
	if id, err := CurrentUser(ctx); err == nil {
		return id, nil
	}
	if key, ok := utils.GetSessionKeyFromContext(ctx); ok {
		return Identity{SessionKey: key}, nil
	}
	return Identity{}, apperr.ErrAuthenticationRequired
}
