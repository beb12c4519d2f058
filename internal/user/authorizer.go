package user

import (
	"context"
	"errors"

	"storefront-be/internal/apperr"
	"storefront-be/internal/gateway"
	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

// Authorizer gates admin mutations. The role is read from the profile on
// every call; the role claim carried by the token is never trusted.
type Authorizer interface {
	RequireAdmin(ctx context.Context) (uint, error)
}

type authorizer struct {
	repo Repository
}

func NewAuthorizer(repo Repository) Authorizer {
	return &authorizer{repo: repo}
}

func (a *authorizer) RequireAdmin(ctx context.Context) (uint, error) {
	id, err := gateway.CurrentUser(ctx)
	if err != nil {
		return 0, err
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "authorizer"),
		zap.Uint("user_id", id.UserID),
	)

	p, err := a.repo.GetProfile(ctx, id.UserID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		log.Warn("admin check without profile")
		return 0, ErrNotAdmin
	case err != nil:
		return 0, apperr.Remote(err)
	}

	if !p.Role.IsAdmin() {
		log.Warn("admin check denied", zap.String("role", string(p.Role)))
		return 0, ErrNotAdmin
	}
	return id.UserID, nil
}
