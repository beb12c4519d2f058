package category

import (
	"fmt"

	"storefront-be/internal/apperr"
)

var (
	ErrCategoryNotFound = fmt.Errorf("category %w", apperr.ErrNotFound)
	ErrNameRequired     = apperr.Validation("category name is required")
	ErrNoFieldsUpdate   = apperr.Validation("no fields to update")
)
