package shipping

import (
	"fmt"

	"storefront-be/internal/apperr"
)

var (
	ErrRuleNotFound   = fmt.Errorf("shipping rule %w", apperr.ErrNotFound)
	ErrNameRequired   = apperr.Validation("shipping rule name is required")
	ErrRegionRequired = apperr.Validation("region is required")
	ErrNegativeAmount = apperr.Validation("amounts cannot be negative")
	ErrNoFieldsUpdate = apperr.Validation("no fields to update")
)
