package cart

import (
	"time"

	"storefront-be/internal/gateway"
	"storefront-be/internal/session"
)

// Registry holds one cart per session identity.
type Registry = session.Registry[*Container]

func NewRegistry(repo Repository, products ProductLookup, idleTTL time.Duration) *Registry {
	return session.NewRegistry("cart", idleTTL, func(id gateway.Identity) *Container {
		return NewContainer(id, repo, products)
	})
}
