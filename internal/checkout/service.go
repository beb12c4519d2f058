package checkout

import (
	"context"
	"errors"
	"strings"

	"storefront-be/internal/cart"
	"storefront-be/internal/gateway"
	"storefront-be/internal/logger"
	"storefront-be/internal/order"
	"storefront-be/internal/product"
	"storefront-be/internal/shipping"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Cart is the part of a cart container checkout drives.
type Cart interface {
	Items() []cart.CartItem
	Load(ctx context.Context) error
	Clear(ctx context.Context) error
}

type StockReader interface {
	GetStocks(ctx context.Context, ids []string) (map[string]product.StockLevel, error)
}

type Quoter interface {
	Quote(ctx context.Context, region string, subtotal decimal.Decimal) (shipping.Quote, error)
}

type OrderWriter interface {
	CreateOrderTx(ctx context.Context, o *order.Order) error
}

type Service interface {
	Checkout(ctx context.Context, c Cart, region string) (*order.Order, error)
}

type service struct {
	stocks   StockReader
	shipping Quoter
	orders   OrderWriter
}

func NewService(stocks StockReader, shipping Quoter, orders OrderWriter) Service {
	return &service{stocks: stocks, shipping: shipping, orders: orders}
}

// Checkout turns the cart into an order. Stock and prices are re-read from
// the store; any line above live stock aborts with a StockConflictError and
// reloads the cart.
func (s *service) Checkout(ctx context.Context, c Cart, region string) (*order.Order, error) {
	id, err := gateway.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
	)

	region = strings.TrimSpace(region)
	if region == "" {
		return nil, ErrRegionRequired
	}

	items := c.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	live, err := s.stocks.GetStocks(ctx, ids)
	if err != nil {
		log.Error("failed to read stock", zap.Error(err))
		return nil, err
	}

	o := &order.Order{UserID: id.UserID, Region: region, Status: order.StatusPending}
	var conflicts []Conflict
	for _, it := range items {
		lvl, ok := live[it.ProductID]
		available := lvl.Stock
		if !ok || !lvl.IsActive {
			available = 0
		}
		if it.Quantity > available {
			name := it.Product.Name
			if ok {
				name = lvl.Name
			}
			conflicts = append(conflicts, Conflict{
				ProductID: it.ProductID,
				Name:      name,
				Requested: it.Quantity,
				Available: available,
			})
			continue
		}
		line := order.OrderItem{ProductID: it.ProductID, Name: lvl.Name, Quantity: it.Quantity, Price: lvl.Price}
		o.Items = append(o.Items, line)
		o.Subtotal = o.Subtotal.Add(line.Subtotal())
	}
	if len(conflicts) > 0 {
		log.Info("checkout stock conflict", zap.Int("lines", len(conflicts)))
		s.refresh(ctx, c)
		return nil, &StockConflictError{Conflicts: conflicts}
	}

	quote, err := s.shipping.Quote(ctx, region, o.Subtotal)
	if err != nil {
		return nil, err
	}
	o.ShippingFee = quote.Fee
	o.Total = o.Subtotal.Add(quote.Fee)

	if err := s.orders.CreateOrderTx(ctx, o); err != nil {
		if errors.Is(err, order.ErrInsufficientStock) {
			s.refresh(ctx, c)
		}
		return nil, err
	}

	if err := c.Clear(ctx); err != nil {
		log.Warn("cart clear after checkout failed",
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
	}
	return o, nil
}

func (s *service) refresh(ctx context.Context, c Cart) {
	if err := c.Load(ctx); err != nil {
		logger.FromCtx(ctx).Warn("cart reload after stock conflict failed", zap.Error(err))
	}
}
