package wishlist

import (
	"context"
	"database/sql"

	"storefront-be/internal/gateway"
	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	ListItems(ctx context.Context, userID uint) ([]WishlistItem, error)
	AddItem(ctx context.Context, userID uint, item WishlistItem) error
	DeleteItem(ctx context.Context, userID uint, productID string) error
}

type repository struct {
	gw *gateway.Client
}

func NewRepository(gw *gateway.Client) Repository {
	return &repository{gw: gw}
}

func (r *repository) ListItems(ctx context.Context, userID uint) ([]WishlistItem, error) {
	query := `
		SELECT wi.id, wi.product_id, p.name, p.slug, p.price, COALESCE(p.images[1], ''), p.stock
		FROM wishlist_items wi
		JOIN products p ON p.id = wi.product_id
		WHERE wi.user_id = $1
		ORDER BY wi.created_at, wi.id
	`

	items := []WishlistItem{}
	err := r.gw.QueryRows(ctx, query, []any{userID}, func(rows *sql.Rows) error {
		var it WishlistItem
		if err := rows.Scan(
			&it.ID, &it.ProductID,
			&it.Product.Name, &it.Product.Slug, &it.Product.Price, &it.Product.Image, &it.Product.Stock,
		); err != nil {
			return err
		}
		it.Status = StatusConfirmed
		items = append(items, it)
		return nil
	})
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list wishlist",
			zap.String("layer", "repository"),
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}
	return items, nil
}

// AddItem is idempotent per (user, product).
func (r *repository) AddItem(ctx context.Context, userID uint, item WishlistItem) error {
	_, err := r.gw.Exec(ctx, `
		INSERT INTO wishlist_items (id, user_id, product_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`, item.ID, userID, item.ProductID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to add wishlist item",
			zap.String("layer", "repository"),
			zap.Uint("user_id", userID),
			zap.String("product_id", item.ProductID),
			zap.Error(err),
		)
	}
	return err
}

func (r *repository) DeleteItem(ctx context.Context, userID uint, productID string) error {
	_, err := r.gw.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to delete wishlist item",
			zap.String("layer", "repository"),
			zap.Uint("user_id", userID),
			zap.String("product_id", productID),
			zap.Error(err),
		)
	}
	return err
}
