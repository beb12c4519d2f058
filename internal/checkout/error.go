package checkout

import (
	"fmt"
	"strings"

	"storefront-be/internal/apperr"
)

var (
	ErrEmptyCart      = apperr.Validation("cart is empty")
	ErrRegionRequired = apperr.Validation("shipping region is required")
)

// Conflict is one cart line that can no longer be fulfilled as requested.
type Conflict struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// StockConflictError lists the lines whose quantity exceeds live stock.
type StockConflictError struct {
	Conflicts []Conflict
}

func (e *StockConflictError) Error() string {
	parts := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		parts[i] = fmt.Sprintf("%s: requested %d, available %d", c.Name, c.Requested, c.Available)
	}
	return "stock changed: " + strings.Join(parts, "; ")
}

func (e *StockConflictError) Unwrap() error {
	return apperr.ErrValidationFailed
}
