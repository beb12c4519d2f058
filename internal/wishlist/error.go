package wishlist

import (
	"fmt"

	"storefront-be/internal/apperr"
	"storefront-be/internal/session"
)

var (
	ErrItemNotFound    = fmt.Errorf("wishlist item %w", apperr.ErrNotFound)
	ErrProductNotFound = fmt.Errorf("product %w", apperr.ErrNotFound)
	ErrClosed          = session.ErrClosed
)
