package cart

import (
	"context"
	"fmt"
	"sync"

	"storefront-be/internal/apperr"
	"storefront-be/internal/gateway"
	"storefront-be/internal/product"

	"github.com/shopspring/decimal"
)

// memRepo is an in-memory store. hook runs before every write outside the
// lock, so tests can block or fail individual calls.
type memRepo struct {
	mu      sync.Mutex
	rows    map[string]CartItem
	writes  []string
	listErr error
	hook    func(op string) error
}

func newMemRepo(items ...CartItem) *memRepo {
	r := &memRepo{rows: map[string]CartItem{}}
	for _, it := range items {
		r.rows[it.ProductID] = it
	}
	return r
}

func (r *memRepo) run(op string) error {
	r.mu.Lock()
	hook := r.hook
	r.mu.Unlock()
	if hook != nil {
		return hook(op)
	}
	return nil
}

func (r *memRepo) setHook(h func(op string) error) {
	r.mu.Lock()
	r.hook = h
	r.mu.Unlock()
}

func (r *memRepo) ListItems(ctx context.Context, owner gateway.Identity) ([]CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]CartItem, 0, len(r.rows))
	for _, it := range r.rows {
		out = append(out, it)
	}
	return out, nil
}

func (r *memRepo) UpsertItem(ctx context.Context, owner gateway.Identity, item CartItem) error {
	op := fmt.Sprintf("upsert:%s:%d", item.ProductID, item.Quantity)
	if err := r.run(op); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, op)
	r.rows[item.ProductID] = item
	return nil
}

func (r *memRepo) DeleteItem(ctx context.Context, owner gateway.Identity, productID string) error {
	op := "delete:" + productID
	if err := r.run(op); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, op)
	delete(r.rows, productID)
	return nil
}

func (r *memRepo) ClearItems(ctx context.Context, owner gateway.Identity) error {
	if err := r.run("clear"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, "clear")
	r.rows = map[string]CartItem{}
	return nil
}

func (r *memRepo) quantity(productID string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.rows[productID]
	return it.Quantity, ok
}

func (r *memRepo) log() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.writes...)
}

type catalog map[string]*product.Product

func (c catalog) GetByID(ctx context.Context, id string) (*product.Product, error) {
	p, ok := c[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func testCatalog() catalog {
	return catalog{
		"tote":   {ID: "tote", Name: "Canvas Tote", Slug: "canvas-tote", Price: decimal.RequireFromString("12.50"), Stock: 5, IsActive: true, Images: []string{"tote.jpg"}},
		"mug":    {ID: "mug", Name: "Mug", Slug: "mug", Price: decimal.RequireFromString("8.00"), Stock: 20, IsActive: true},
		"poster": {ID: "poster", Name: "Poster", Slug: "poster", Price: decimal.RequireFromString("3.25"), Stock: 0, IsActive: true},
		"old":    {ID: "old", Name: "Retired", Slug: "retired", Price: decimal.NewFromInt(1), Stock: 9, IsActive: false},
	}
}

var errStoreDown = apperr.Remote(fmt.Errorf("dial tcp: i/o timeout"))

var owner = gateway.Identity{SessionKey: "sess-1"}
