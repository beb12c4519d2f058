package dashboard

import (
	"context"
	"time"

	"storefront-be/internal/apperr"
	"storefront-be/internal/logger"
	"storefront-be/internal/order"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const RecentLimit = 5

type Summary struct {
	TotalOrders     int64         `json:"totalOrders"`
	PendingOrders   int64         `json:"pendingOrders"`
	CancelledOrders int64         `json:"cancelledOrders"`
	RecentOrders    []order.Order `json:"recentOrders"`
}

type OrderReader interface {
	CountOrders(ctx context.Context, userID uint, status *order.Status) (int64, error)
	RecentOrders(ctx context.Context, userID uint, limit int) ([]order.Order, error)
}

type Service interface {
	GetSummary(ctx context.Context, userID uint) (Summary, error)
}

type service struct {
	orders       OrderReader
	queryTimeout time.Duration
}

// NewService builds the aggregator. Each of its queries runs under
// queryTimeout independently of the others.
func NewService(orders OrderReader, queryTimeout time.Duration) Service {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	return &service{orders: orders, queryTimeout: queryTimeout}
}

// GetSummary fans out four reads and waits for all of them. A failed read
// leaves its field at the zero value; the summary itself never fails once
// the caller is identified.
func (s *service) GetSummary(ctx context.Context, userID uint) (Summary, error) {
	if userID == 0 {
		return Summary{}, apperr.ErrAuthenticationRequired
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetSummary"),
		zap.Uint("user_id", userID),
	)

	pending, cancelled := order.StatusPending, order.StatusCancelled
	summary := Summary{RecentOrders: []order.Order{}}

	// errgroup.Group without context: one query failing must not cancel
	// the others.
	var g errgroup.Group
	count := func(name string, status *order.Status, dst *int64) {
		g.Go(func() error {
			qctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
			defer cancel()

			n, err := s.orders.CountOrders(qctx, userID, status)
			if err != nil {
				log.Warn("dashboard query degraded", zap.String("query", name), zap.Error(err))
				return nil
			}
			*dst = n
			return nil
		})
	}

	count("total", nil, &summary.TotalOrders)
	count("pending", &pending, &summary.PendingOrders)
	count("cancelled", &cancelled, &summary.CancelledOrders)
	g.Go(func() error {
		qctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()

		orders, err := s.orders.RecentOrders(qctx, userID, RecentLimit)
		if err != nil {
			log.Warn("dashboard query degraded", zap.String("query", "recent"), zap.Error(err))
			return nil
		}
		if len(orders) > RecentLimit {
			orders = orders[:RecentLimit]
		}
		summary.RecentOrders = orders
		return nil
	})

	_ = g.Wait()
	return summary, nil
}
