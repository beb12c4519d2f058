package cart

import (
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
)

// ProductSnapshot is the denormalized product data shown with a line. It
// is captured when the line is added or loaded and may go stale.
type ProductSnapshot struct {
	Name  string `json:"name"`
	Image string `json:"image"`
	Slug  string `json:"slug"`
	Stock int    `json:"stock"`
}

type CartItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Product   ProductSnapshot `json:"product"`
	Status    Status          `json:"status"`
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Snapshot is a point-in-time view of a cart. Totals are derived from Items
// when the snapshot is taken.
type Snapshot struct {
	Items      []CartItem      `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Warning    string          `json:"warning,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// MutationResult describes the line after an add or quantity change. Item
// is nil when the change removed the line.
type MutationResult struct {
	Item    *CartItem `json:"item"`
	Clamped bool      `json:"clamped"`
	Warning string    `json:"warning,omitempty"`
}
