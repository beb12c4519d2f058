package wishlist

import "github.com/shopspring/decimal"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
)

type ProductSnapshot struct {
	Name  string          `json:"name"`
	Slug  string          `json:"slug"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
	Stock int             `json:"stock"`
}

type WishlistItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Product   ProductSnapshot `json:"product"`
	Status    Status          `json:"status"`
}

type Snapshot struct {
	Items []WishlistItem `json:"items"`
	Count int            `json:"count"`
	Error string         `json:"error,omitempty"`
}

// ToggleResult reports membership after a toggle.
type ToggleResult struct {
	InWishlist bool          `json:"in_wishlist"`
	Item       *WishlistItem `json:"item,omitempty"`
}
