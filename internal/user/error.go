package user

import (
	"fmt"

	"storefront-be/internal/apperr"
)

var (
	ErrProfileNotFound = fmt.Errorf("profile %w", apperr.ErrNotFound)
	ErrNotAdmin        = fmt.Errorf("admin role required: %w", apperr.ErrAuthorizationDenied)
)
