package user

import (
	"context"
	"errors"

	"storefront-be/internal/apperr"
	"storefront-be/internal/gateway"
	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetProfile(ctx context.Context, userID uint) (*Profile, error)
}

type repository struct {
	gw *gateway.Client
}

func NewRepository(gw *gateway.Client) Repository {
	return &repository{gw: gw}
}

// GetProfile fetches a user's profile by user ID.
func (r *repository) GetProfile(ctx context.Context, userID uint) (*Profile, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetProfile"),
		zap.Uint("user_id", userID),
	)

	query := `
		SELECT id, user_id, full_name, role, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`

	var p Profile
	err := r.gw.QueryRow(ctx, query, []any{userID},
		&p.ID, &p.UserID, &p.FullName, &p.Role, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Info("profile not found")
			return nil, ErrProfileNotFound
		}
		log.Error("failed to fetch profile", zap.Error(err))
		return nil, err
	}

	return &p, nil
}
