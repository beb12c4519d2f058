package wishlist

import (
	"context"
	"time"

	"storefront-be/internal/apperr"
	"storefront-be/internal/gateway"
	"storefront-be/internal/session"
)

// Registry holds one wishlist per signed-in user.
type Registry struct {
	*session.Registry[*Container]
}

func NewRegistry(repo Repository, products ProductLookup, idleTTL time.Duration) *Registry {
	return &Registry{
		Registry: session.NewRegistry("wishlist", idleTTL, func(id gateway.Identity) *Container {
			return NewContainer(id.UserID, repo, products)
		}),
	}
}

// Get rejects anonymous sessions; wishlists are only kept for users.
func (r *Registry) Get(ctx context.Context, id gateway.Identity) (*Container, error) {
	if !id.Authenticated() {
		return nil, apperr.ErrAuthenticationRequired
	}
	return r.Registry.Get(ctx, id)
}
