package wishlist

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"storefront-be/internal/apperr"
	"storefront-be/internal/product"
	"storefront-be/internal/session"

	"github.com/google/uuid"
)

type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

type entry struct {
	productID string
	seq       uint64
	version   uint64
	item      *WishlistItem
	confirmed *WishlistItem
	writeMu   sync.Mutex
}

// Container holds one signed-in user's wishlist with the same optimistic
// write discipline as the cart: per-product writes in issue order, queued
// writes skipped once overtaken, rollback to the confirmed state on failure.
type Container struct {
	userID   uint
	repo     Repository
	products ProductLookup

	mu      sync.Mutex
	entries map[string]*entry
	seq     uint64
	lastErr string
	closed  bool

	notifier session.Notifier[Snapshot]
	clock    session.Clock
}

func NewContainer(userID uint, repo Repository, products ProductLookup) *Container {
	c := &Container{
		userID:   userID,
		repo:     repo,
		products: products,
		entries:  make(map[string]*entry),
	}
	c.clock.Touch()
	return c
}

func (c *Container) LastUsed() time.Time {
	return c.clock.LastUsed()
}

func (c *Container) Load(ctx context.Context) error {
	c.clock.Touch()
	items, err := c.repo.ListItems(ctx, c.userID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	c.entries = make(map[string]*entry, len(items))
	if err != nil {
		c.lastErr = err.Error()
		c.publishLocked()
		return err
	}
	c.lastErr = ""
	for _, it := range items {
		it.Status = StatusConfirmed
		c.seq++
		c.entries[it.ProductID] = &entry{
			productID: it.ProductID,
			seq:       c.seq,
			item:      clone(&it),
			confirmed: clone(&it),
		}
	}
	c.publishLocked()
	return nil
}

// Toggle adds the product when absent and removes it when present.
func (c *Container) Toggle(ctx context.Context, productID string) (ToggleResult, error) {
	c.clock.Touch()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ToggleResult{}, ErrClosed
	}
	if e := c.entries[productID]; e != nil && e.item != nil {
		version := c.setLocked(e, nil)
		c.mu.Unlock()
		err := c.commit(ctx, e, version, nil, func(ctx context.Context) error {
			return c.repo.DeleteItem(ctx, c.userID, productID)
		})
		return ToggleResult{InWishlist: false}, err
	}
	c.mu.Unlock()

	p, err := c.products.GetByID(ctx, productID)
	switch {
	case errors.Is(err, apperr.ErrNotFound), err == nil && !p.IsActive:
		return ToggleResult{}, ErrProductNotFound
	case err != nil:
		return ToggleResult{}, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ToggleResult{}, ErrClosed
	}
	e := c.entries[productID]
	if e != nil && e.item != nil {
		// added concurrently; this toggle removes it again
		c.mu.Unlock()
		return c.Toggle(ctx, productID)
	}
	if e == nil {
		c.seq++
		e = &entry{productID: productID, seq: c.seq}
		c.entries[productID] = e
	}
	id := uuid.NewString()
	if e.confirmed != nil {
		id = e.confirmed.ID
	}
	next := WishlistItem{
		ID:        id,
		ProductID: productID,
		Product: ProductSnapshot{
			Name:  p.Name,
			Slug:  p.Slug,
			Price: p.Price,
			Image: p.Image(),
			Stock: p.Stock,
		},
	}
	version := c.setLocked(e, &next)
	c.mu.Unlock()

	if err := c.commit(ctx, e, version, &next, func(ctx context.Context) error {
		return c.repo.AddItem(ctx, c.userID, next)
	}); err != nil {
		return ToggleResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return ToggleResult{InWishlist: e.item != nil, Item: clone(e.item)}, nil
}

// Remove drops the product from the wishlist.
func (c *Container) Remove(ctx context.Context, productID string) error {
	c.clock.Touch()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	e := c.entries[productID]
	if e == nil || e.item == nil {
		c.mu.Unlock()
		return ErrItemNotFound
	}
	version := c.setLocked(e, nil)
	c.mu.Unlock()

	return c.commit(ctx, e, version, nil, func(ctx context.Context) error {
		return c.repo.DeleteItem(ctx, c.userID, productID)
	})
}

func (c *Container) commit(ctx context.Context, e *entry, version uint64, want *WishlistItem, send func(context.Context) error) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	c.mu.Lock()
	superseded := e.version != version
	c.mu.Unlock()
	if superseded {
		return nil
	}

	err := send(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.entries[e.productID] != e {
		return err
	}

	latest := e.version == version
	if err != nil {
		if latest {
			e.item = clone(e.confirmed)
			c.lastErr = err.Error()
			c.dropIfAbsentLocked(e)
			c.publishLocked()
		}
		return err
	}

	e.confirmed = clone(want)
	if e.confirmed != nil {
		e.confirmed.Status = StatusConfirmed
	}
	if latest {
		if e.item != nil {
			e.item.Status = StatusConfirmed
		}
		c.lastErr = ""
		c.dropIfAbsentLocked(e)
		c.publishLocked()
	}
	return nil
}

func (c *Container) setLocked(e *entry, next *WishlistItem) uint64 {
	if next != nil {
		next.Status = StatusPending
	}
	e.item = clone(next)
	e.version++
	c.publishLocked()
	return e.version
}

func (c *Container) dropIfAbsentLocked(e *entry) {
	if e.item == nil && e.confirmed == nil && c.entries[e.productID] == e {
		delete(c.entries, e.productID)
	}
}

// IsInWishlist is a pure lookup against local state.
func (c *Container) IsInWishlist(productID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[productID]
	return e != nil && e.item != nil
}

func (c *Container) Items() []WishlistItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.itemsLocked()
}

func (c *Container) Count() int {
	return len(c.Items())
}

func (c *Container) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Container) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notifier.Subscribe(c.snapshotLocked())
}

func (c *Container) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.notifier.Close()
}

func (c *Container) itemsLocked() []WishlistItem {
	live := make([]*entry, 0, len(c.entries))
	for _, e := range c.entries {
		if e.item != nil {
			live = append(live, e)
		}
	}
	sort.Slice(live, func(i, j int) bool { return live[i].seq < live[j].seq })

	items := make([]WishlistItem, len(live))
	for i, e := range live {
		items[i] = *e.item
	}
	return items
}

func (c *Container) snapshotLocked() Snapshot {
	items := c.itemsLocked()
	return Snapshot{Items: items, Count: len(items), Error: c.lastErr}
}

func (c *Container) publishLocked() {
	c.notifier.Publish(c.snapshotLocked())
}

func clone(it *WishlistItem) *WishlistItem {
	if it == nil {
		return nil
	}
	cp := *it
	return &cp
}
