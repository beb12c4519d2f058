package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Slug          string              `json:"slug"`
	Description   *string             `json:"description,omitempty"`
	Price         decimal.Decimal     `json:"price"`
	OriginalPrice decimal.NullDecimal `json:"original_price"`
	Images        []string            `json:"images"`
	Stock         int                 `json:"stock"`
	Categories    []string            `json:"categories"`
	IsActive      bool                `json:"is_active"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// Image returns the first image, used as the thumbnail in cart and
// wishlist snapshots.
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

type NewProductInput struct {
	Name          string           `json:"name"`
	Slug          *string          `json:"slug,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Images        []string         `json:"images"`
	Stock         int              `json:"stock"`
	Categories    []string         `json:"categories"`
	IsActive      *bool            `json:"is_active,omitempty"`
}

// UpdateProductInput carries a partial update; nil fields keep their
// stored value.
type UpdateProductInput struct {
	ID            string           `json:"-"`
	Name          *string          `json:"name,omitempty"`
	Slug          *string          `json:"slug,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Images        []string         `json:"images,omitempty"`
	Stock         *int             `json:"stock,omitempty"`
	Categories    []string         `json:"categories,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
}

func (in UpdateProductInput) empty() bool {
	return in.Name == nil && in.Slug == nil && in.Description == nil &&
		in.Price == nil && in.OriginalPrice == nil && in.Images == nil &&
		in.Stock == nil && in.Categories == nil && in.IsActive == nil
}

type ListOptions struct {
	Page            int    `json:"page"`
	Limit           int    `json:"limit"`
	Category        string `json:"category,omitempty"`
	Search          string `json:"search,omitempty"`
	IncludeInactive bool   `json:"include_inactive,omitempty"`
}

type ListResult struct {
	Items []Product `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}
