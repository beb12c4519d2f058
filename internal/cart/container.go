package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront-be/internal/apperr"
	"storefront-be/internal/gateway"
	"storefront-be/internal/product"
	"storefront-be/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductLookup resolves the product a new line is created from.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

type entry struct {
	productID string
	seq       uint64
	version   uint64
	item      *CartItem // what the shopper sees; nil when absent
	confirmed *CartItem // last state the store acknowledged; nil when absent there
	writeMu   sync.Mutex
}

// Container holds one session's cart. Mutations apply locally first and are
// then written through the repository; a failed write rolls the line back
// to its last confirmed state.
//
// Writes to the same line are serialised in issue order. A write that is
// overtaken by a newer one for the same line before it reaches the store is
// skipped. Writes to different lines run concurrently.
type Container struct {
	owner    gateway.Identity
	repo     Repository
	products ProductLookup

	// line writes hold the read side while talking to the store; Clear holds
	// the write side so no upsert interleaves with the bulk delete
	gate sync.RWMutex

	mu      sync.Mutex
	entries map[string]*entry
	seq     uint64
	warning string
	lastErr string
	closed  bool

	notifier session.Notifier[Snapshot]
	clock    session.Clock
}

func NewContainer(owner gateway.Identity, repo Repository, products ProductLookup) *Container {
	c := &Container{
		owner:    owner,
		repo:     repo,
		products: products,
		entries:  make(map[string]*entry),
	}
	c.clock.Touch()
	return c
}

func (c *Container) Owner() gateway.Identity {
	return c.owner
}

func (c *Container) LastUsed() time.Time {
	return c.clock.LastUsed()
}

// Load replaces the local cart with the store's copy. On failure the cart
// is emptied and the error is recorded on the snapshot.
func (c *Container) Load(ctx context.Context) error {
	c.clock.Touch()
	items, err := c.repo.ListItems(ctx, c.owner)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	c.entries = make(map[string]*entry, len(items))
	c.warning = ""
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

// Add puts quantity more of a product in the cart. The resulting line is
// capped at the snapshot stock; a capped result carries a warning.
func (c *Container) Add(ctx context.Context, productID string, quantity int) (MutationResult, error) {
	if quantity < 1 {
		return MutationResult{}, ErrInvalidQuantity
	}
	c.clock.Touch()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return MutationResult{}, ErrClosed
	}
	e := c.entries[productID]
	existing := e != nil && e.item != nil
	c.mu.Unlock()

	var fresh *product.Product
	if !existing {
		p, err := c.products.GetByID(ctx, productID)
		switch {
		case errors.Is(err, apperr.ErrNotFound), err == nil && !p.IsActive:
			return MutationResult{}, ErrProductNotFound
		case err != nil:
			return MutationResult{}, err
		case p.Stock < 1:
			return MutationResult{}, ErrOutOfStock
		}
		fresh = p
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return MutationResult{}, ErrClosed
	}

	e = c.entries[productID]
	var next CartItem
	switch {
	case e != nil && e.item != nil:
		next = *e.item
		next.Quantity += quantity
	case fresh == nil:
		// the line was removed while the lock was released
		c.mu.Unlock()
		return c.Add(ctx, productID, quantity)
	default:
		if e == nil {
			c.seq++
			e = &entry{productID: productID, seq: c.seq}
			c.entries[productID] = e
		}
		id := uuid.NewString()
		if e.confirmed != nil {
			id = e.confirmed.ID
		}
		next = CartItem{
			ID:        id,
			ProductID: productID,
			Quantity:  quantity,
			Price:     fresh.Price,
			Product: ProductSnapshot{
				Name:  fresh.Name,
				Image: fresh.Image(),
				Slug:  fresh.Slug,
				Stock: fresh.Stock,
			},
		}
	}

	if next.Product.Stock < 1 {
		c.mu.Unlock()
		return MutationResult{}, ErrOutOfStock
	}
	clamped, warning := clamp(&next)
	version := c.applyLocked(e, next, warning)
	c.mu.Unlock()

	if err := c.commit(ctx, e, version, &next, func(ctx context.Context) error {
		return c.repo.UpsertItem(ctx, c.owner, next)
	}); err != nil {
		return MutationResult{}, err
	}
	return MutationResult{Item: c.current(e), Clamped: clamped, Warning: warning}, nil
}

// UpdateQuantity sets a line's quantity. Below 1 the line is removed.
func (c *Container) UpdateQuantity(ctx context.Context, itemID string, quantity int) (MutationResult, error) {
	if quantity < 1 {
		return MutationResult{}, c.Remove(ctx, itemID)
	}
	c.clock.Touch()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return MutationResult{}, ErrClosed
	}
	e := c.lookupLocked(itemID)
	if e == nil {
		c.mu.Unlock()
		return MutationResult{}, ErrItemNotFound
	}

	next := *e.item
	next.Quantity = quantity
	if next.Product.Stock < 1 {
		c.mu.Unlock()
		return MutationResult{}, ErrOutOfStock
	}
	clamped, warning := clamp(&next)
	version := c.applyLocked(e, next, warning)
	c.mu.Unlock()

	if err := c.commit(ctx, e, version, &next, func(ctx context.Context) error {
		return c.repo.UpsertItem(ctx, c.owner, next)
	}); err != nil {
		return MutationResult{}, err
	}
	return MutationResult{Item: c.current(e), Clamped: clamped, Warning: warning}, nil
}

func (c *Container) Remove(ctx context.Context, itemID string) error {
	c.clock.Touch()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	e := c.lookupLocked(itemID)
	if e == nil {
		c.mu.Unlock()
		return ErrItemNotFound
	}
	e.item = nil
	e.version++
	version := e.version
	c.warning = ""
	c.publishLocked()
	c.mu.Unlock()

	return c.commit(ctx, e, version, nil, func(ctx context.Context) error {
		return c.repo.DeleteItem(ctx, c.owner, e.productID)
	})
}

// Clear empties the cart after checkout. On failure every line that was not
// touched since returns to its confirmed state.
func (c *Container) Clear(ctx context.Context) error {
	c.clock.Touch()
	c.gate.Lock()
	defer c.gate.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	versions := make(map[*entry]uint64, len(c.entries))
	for _, e := range c.entries {
		e.item = nil
		e.version++
		versions[e] = e.version
	}
	c.warning = ""
	c.publishLocked()
	c.mu.Unlock()

	err := c.repo.ClearItems(ctx, c.owner)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return err
	}

	for e, v := range versions {
		if c.entries[e.productID] != e {
			continue
		}
		latest := e.version == v
		switch {
		case err != nil && latest:
			e.item = clone(e.confirmed)
		case err == nil:
			e.confirmed = nil
			if latest {
				c.dropIfAbsentLocked(e)
			}
		}
	}
	if err != nil {
		c.lastErr = err.Error()
	} else {
		c.lastErr = ""
	}
	c.publishLocked()
	return err
}

// commit sends one line's write to the store and settles the line.
func (c *Container) commit(ctx context.Context, e *entry, version uint64, want *CartItem, send func(context.Context) error) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	c.gate.RLock()
	defer c.gate.RUnlock()

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
		// issued before Close or Load; the result no longer applies
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

func (c *Container) applyLocked(e *entry, next CartItem, warning string) uint64 {
	next.Status = StatusPending
	e.item = &next
	e.version++
	c.warning = warning
	c.publishLocked()
	return e.version
}

func (c *Container) lookupLocked(itemID string) *entry {
	for _, e := range c.entries {
		if e.item != nil && e.item.ID == itemID {
			return e
		}
	}
	return nil
}

func (c *Container) dropIfAbsentLocked(e *entry) {
	if e.item == nil && e.confirmed == nil && c.entries[e.productID] == e {
		delete(c.entries, e.productID)
	}
}

func (c *Container) current(e *entry) *CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(e.item)
}

// Items returns the current lines in the order they were added.
func (c *Container) Items() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.itemsLocked()
}

func (c *Container) TotalItems() int {
	return c.Snapshot().TotalItems
}

func (c *Container) TotalPrice() decimal.Decimal {
	return c.Snapshot().TotalPrice
}

func (c *Container) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe returns a channel that always holds the latest snapshot. The
// current snapshot is delivered immediately.
func (c *Container) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notifier.Subscribe(c.snapshotLocked())
}

// Close tears the container down. Writes still in flight finish against
// the store but no longer change local state.
func (c *Container) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.notifier.Close()
}

func (c *Container) itemsLocked() []CartItem {
	live := make([]*entry, 0, len(c.entries))
	for _, e := range c.entries {
		if e.item != nil {
			live = append(live, e)
		}
	}
	sort.Slice(live, func(i, j int) bool { return live[i].seq < live[j].seq })

	items := make([]CartItem, len(live))
	for i, e := range live {
		items[i] = *e.item
	}
	return items
}

func (c *Container) snapshotLocked() Snapshot {
	s := Snapshot{
		Items:      c.itemsLocked(),
		TotalPrice: decimal.Zero,
		Warning:    c.warning,
		Error:      c.lastErr,
	}
	for _, it := range s.Items {
		s.TotalItems += it.Quantity
		s.TotalPrice = s.TotalPrice.Add(it.LineTotal())
	}
	return s
}

func (c *Container) publishLocked() {
	c.notifier.Publish(c.snapshotLocked())
}

func clamp(item *CartItem) (bool, string) {
	stock := item.Product.Stock
	if item.Quantity <= stock {
		return false, ""
	}
	item.Quantity = stock
	return true, fmt.Sprintf("only %d of %q in stock; quantity capped", stock, item.Product.Name)
}

func clone(it *CartItem) *CartItem {
	if it == nil {
		return nil
	}
	cp := *it
	return &cp
}
