package cart

import (
	"context"
	"database/sql"

	"storefront-be/internal/gateway"
	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	ListItems(ctx context.Context, owner gateway.Identity) ([]CartItem, error)
	UpsertItem(ctx context.Context, owner gateway.Identity, item CartItem) error
	DeleteItem(ctx context.Context, owner gateway.Identity, productID string) error
	ClearItems(ctx context.Context, owner gateway.Identity) error
}

type repository struct {
	gw *gateway.Client
}

func NewRepository(gw *gateway.Client) Repository {
	return &repository{gw: gw}
}

func (r *repository) log(ctx context.Context, method string, owner gateway.Identity) *zap.Logger {
	return logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", method),
		zap.String("owner", owner.Key()),
	)
}

func (r *repository) ListItems(ctx context.Context, owner gateway.Identity) ([]CartItem, error) {
	col, val := owner.OwnerColumn()
	query := `
		SELECT ci.id, ci.product_id, ci.quantity, ci.price,
			p.name, COALESCE(p.images[1], ''), p.slug, p.stock
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.` + col + ` = $1
		ORDER BY ci.created_at, ci.id
	`

	items := []CartItem{}
	err := r.gw.QueryRows(ctx, query, []any{val}, func(rows *sql.Rows) error {
		var it CartItem
		if err := rows.Scan(
			&it.ID, &it.ProductID, &it.Quantity, &it.Price,
			&it.Product.Name, &it.Product.Image, &it.Product.Slug, &it.Product.Stock,
		); err != nil {
			return err
		}
		it.Status = StatusConfirmed
		items = append(items, it)
		return nil
	})
	if err != nil {
		r.log(ctx, "ListItems", owner).Error("failed to list cart items", zap.Error(err))
		return nil, err
	}
	return items, nil
}

// UpsertItem writes the line's absolute quantity; a line for the same
// product is overwritten, never summed.
func (r *repository) UpsertItem(ctx context.Context, owner gateway.Identity, item CartItem) error {
	col, val := owner.OwnerColumn()
	query := `
		INSERT INTO cart_items (id, ` + col + `, product_id, quantity, price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (` + col + `, product_id) WHERE ` + col + ` IS NOT NULL
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()
	`

	_, err := r.gw.Exec(ctx, query, item.ID, val, item.ProductID, item.Quantity, item.Price)
	if err != nil {
		r.log(ctx, "UpsertItem", owner).Error("failed to upsert cart item",
			zap.String("product_id", item.ProductID),
			zap.Int("quantity", item.Quantity),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// DeleteItem is idempotent: deleting a missing line succeeds.
func (r *repository) DeleteItem(ctx context.Context, owner gateway.Identity, productID string) error {
	col, val := owner.OwnerColumn()
	_, err := r.gw.Exec(ctx, `DELETE FROM cart_items WHERE `+col+` = $1 AND product_id = $2`, val, productID)
	if err != nil {
		r.log(ctx, "DeleteItem", owner).Error("failed to delete cart item",
			zap.String("product_id", productID),
			zap.Error(err),
		)
	}
	return err
}

func (r *repository) ClearItems(ctx context.Context, owner gateway.Identity) error {
	col, val := owner.OwnerColumn()
	n, err := r.gw.Exec(ctx, `DELETE FROM cart_items WHERE `+col+` = $1`, val)
	if err != nil {
		r.log(ctx, "ClearItems", owner).Error("failed to clear cart", zap.Error(err))
		return err
	}
	r.log(ctx, "ClearItems", owner).Info("cart cleared", zap.Int64("deleted", n))
	return nil
}
