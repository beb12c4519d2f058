package order

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront-be/internal/gateway"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var orderColumns = []string{
	"id", "order_number", "user_id", "status", "subtotal", "shipping_fee", "total", "region", "created_at",
}

type Repository interface {
	CountOrders(ctx context.Context, userID uint, status *Status) (int64, error)
	RecentOrders(ctx context.Context, userID uint, limit int) ([]Order, error)
	CreateOrderTx(ctx context.Context, o *Order) error
}

type repository struct {
	gw *gateway.Client
}

func NewRepository(gw *gateway.Client) Repository {
	return &repository{gw: gw}
}

// CountOrders counts a user's orders, optionally narrowed to one status.
func (r *repository) CountOrders(ctx context.Context, userID uint, status *Status) (int64, error) {
	q := gateway.From(gateway.Orders).Eq("user_id", userID)
	if status != nil {
		q = q.Eq("status", string(*status))
	}
	return r.gw.Count(ctx, q)
}

func (r *repository) RecentOrders(ctx context.Context, userID uint, limit int) ([]Order, error) {
	q := gateway.From(gateway.Orders).
		Select(orderColumns...).
		Eq("user_id", userID).
		OrderBy("created_at", true).
		Limit(limit)

	orders := []Order{}
	err := r.gw.Select(ctx, q, func(rows *sql.Rows) error {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.UserID, &o.Status,
			&o.Subtotal, &o.ShippingFee, &o.Total, &o.Region, &o.CreatedAt,
		); err != nil {
			return err
		}
		orders = append(orders, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrderTx inserts the order and its items and decrements stock in one
// transaction. A line whose product no longer has enough stock aborts the
// whole order with ErrInsufficientStock.
func (r *repository) CreateOrderTx(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrderTx"),
		zap.Uint("user_id", o.UserID),
	)

	if len(o.Items) == 0 {
		return ErrEmptyOrder
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.OrderNumber == "" {
		o.OrderNumber = NewOrderNumber(time.Now())
	}
	if o.Status == "" {
		o.Status = StatusPending
	}

	err := r.gw.InTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO orders (id, order_number, user_id, status, subtotal, shipping_fee, total, region)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at
		`, o.ID, o.OrderNumber, o.UserID, o.Status, o.Subtotal, o.ShippingFee, o.Total, o.Region).
			Scan(&o.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, item := range o.Items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (order_id, product_id, name, quantity, price, subtotal)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, o.ID, item.ProductID, item.Name, item.Quantity, item.Price, item.Subtotal()); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}

			res, err := tx.ExecContext(ctx, `
				UPDATE products
				SET stock = stock - $1, updated_at = NOW()
				WHERE id = $2 AND stock >= $1
			`, item.Quantity, item.ProductID)
			if err != nil {
				return fmt.Errorf("deduct stock: %w", err)
			}
			if n, err := res.RowsAffected(); err != nil {
				return err
			} else if n == 0 {
				return fmt.Errorf("%w: product %s", ErrInsufficientStock, item.ProductID)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to create order", zap.Error(err))
		return err
	}

	log.Info("order created", zap.String("order_id", o.ID), zap.String("order_number", o.OrderNumber))
	return nil
}
