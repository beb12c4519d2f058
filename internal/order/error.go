package order

import (
	"fmt"

	"storefront-be/internal/apperr"
)

var (
	ErrOrderNotFound     = fmt.Errorf("order %w", apperr.ErrNotFound)
	ErrEmptyOrder        = apperr.Validation("order has no items")
	ErrInsufficientStock = apperr.Validation("insufficient stock")
)
