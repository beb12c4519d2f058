package cart

import (
	"fmt"

	"storefront-be/internal/apperr"
	"storefront-be/internal/session"
)

var (
	ErrInvalidQuantity = apperr.Validation("quantity must be at least 1")
	ErrOutOfStock      = apperr.Validation("product is out of stock")
	ErrItemNotFound    = fmt.Errorf("cart item %w", apperr.ErrNotFound)
	ErrProductNotFound = fmt.Errorf("product %w", apperr.ErrNotFound)
	ErrClosed          = session.ErrClosed
)
