package product

import (
	"fmt"

	"storefront-be/internal/apperr"
)

var (
	ErrProductNotFound = fmt.Errorf("product %w", apperr.ErrNotFound)
	ErrNameRequired    = apperr.Validation("product name is required")
	ErrInvalidPrice    = apperr.Validation("price must be greater than zero")
	ErrInvalidStock    = apperr.Validation("stock cannot be negative")
	ErrNoFieldsUpdate  = apperr.Validation("no fields to update")
	ErrSlugTaken       = apperr.Validation("slug already in use")
)
