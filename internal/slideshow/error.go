package slideshow

import (
	"fmt"

	"storefront-be/internal/apperr"
)

var (
	ErrSlideNotFound    = fmt.Errorf("slide %w", apperr.ErrNotFound)
	ErrTitleRequired    = apperr.Validation("slide title is required")
	ErrInvalidImageURL  = apperr.Validation("image_url must be an absolute http(s) URL")
	ErrNegativePosition = apperr.Validation("position cannot be negative")
	ErrNoFieldsUpdate   = apperr.Validation("no fields to update")
)
