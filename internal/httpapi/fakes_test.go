package httpapi

import (
	"context"
	"mime/multipart"
	"sync"

	"storefront-be/internal/cart"
	"storefront-be/internal/category"
	"storefront-be/internal/checkout"
	"storefront-be/internal/dashboard"
	"storefront-be/internal/gateway"
	"storefront-be/internal/invalidate"
	"storefront-be/internal/media"
	"storefront-be/internal/order"
	"storefront-be/internal/product"
	"storefront-be/internal/shipping"
	"storefront-be/internal/slideshow"
	"storefront-be/internal/wishlist"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type cartRepo struct {
	mu   sync.Mutex
	rows map[string]map[string]cart.CartItem
}

func newCartRepo() *cartRepo {
	return &cartRepo{rows: map[string]map[string]cart.CartItem{}}
}

func (r *cartRepo) ListItems(ctx context.Context, owner gateway.Identity) ([]cart.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []cart.CartItem{}
	for _, it := range r.rows[owner.Key()] {
		out = append(out, it)
	}
	return out, nil
}

func (r *cartRepo) UpsertItem(ctx context.Context, owner gateway.Identity, item cart.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rows[owner.Key()] == nil {
		r.rows[owner.Key()] = map[string]cart.CartItem{}
	}
	r.rows[owner.Key()][item.ProductID] = item
	return nil
}

func (r *cartRepo) DeleteItem(ctx context.Context, owner gateway.Identity, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows[owner.Key()], productID)
	return nil
}

func (r *cartRepo) ClearItems(ctx context.Context, owner gateway.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, owner.Key())
	return nil
}

type wishlistRepo struct {
	mu   sync.Mutex
	rows map[uint]map[string]wishlist.WishlistItem
}

func (r *wishlistRepo) ListItems(ctx context.Context, userID uint) ([]wishlist.WishlistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []wishlist.WishlistItem{}
	for _, it := range r.rows[userID] {
		out = append(out, it)
	}
	return out, nil
}

func (r *wishlistRepo) AddItem(ctx context.Context, userID uint, item wishlist.WishlistItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rows == nil {
		r.rows = map[uint]map[string]wishlist.WishlistItem{}
	}
	if r.rows[userID] == nil {
		r.rows[userID] = map[string]wishlist.WishlistItem{}
	}
	r.rows[userID][item.ProductID] = item
	return nil
}

func (r *wishlistRepo) DeleteItem(ctx context.Context, userID uint, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows[userID], productID)
	return nil
}

type catalog map[string]*product.Product

func (c catalog) GetByID(ctx context.Context, id string) (*product.Product, error) {
	if p, ok := c[id]; ok {
		return p, nil
	}
	return nil, product.ErrProductNotFound
}

var testCatalog = catalog{
	"tote": {ID: "tote", Name: "Tote", Slug: "tote", Price: decimal.RequireFromString("12.50"), Stock: 5, IsActive: true},
}

type MockProducts struct{ mock.Mock }

func (m *MockProducts) List(ctx context.Context, opts product.ListOptions) (*product.ListResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.ListResult), args.Error(1)
}

func (m *MockProducts) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProducts) AdminList(ctx context.Context, opts product.ListOptions) (*product.ListResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.ListResult), args.Error(1)
}

func (m *MockProducts) ListAll(ctx context.Context) ([]product.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *MockProducts) Create(ctx context.Context, in product.NewProductInput) (invalidate.Result[*product.Product], error) {
	args := m.Called(ctx, in)
	return args.Get(0).(invalidate.Result[*product.Product]), args.Error(1)
}

func (m *MockProducts) Update(ctx context.Context, in product.UpdateProductInput) (invalidate.Result[*product.Product], error) {
	args := m.Called(ctx, in)
	return args.Get(0).(invalidate.Result[*product.Product]), args.Error(1)
}

func (m *MockProducts) Delete(ctx context.Context, id string) (invalidate.Result[string], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(invalidate.Result[string]), args.Error(1)
}

type MockCategories struct{ mock.Mock }

func (m *MockCategories) List(ctx context.Context) ([]category.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]category.Category), args.Error(1)
}

func (m *MockCategories) Create(ctx context.Context, in category.NewCategoryInput) (invalidate.Result[*category.Category], error) {
	args := m.Called(ctx, in)
	return args.Get(0).(invalidate.Result[*category.Category]), args.Error(1)
}

func (m *MockCategories) Update(ctx context.Context, in category.UpdateCategoryInput) (invalidate.Result[*category.Category], error) {
	args := m.Called(ctx, in)
	return args.Get(0).(invalidate.Result[*category.Category]), args.Error(1)
}

func (m *MockCategories) Delete(ctx context.Context, id string) (invalidate.Result[string], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(invalidate.Result[string]), args.Error(1)
}

type MockShipping struct{ mock.Mock }

func (m *MockShipping) List(ctx context.Context) ([]shipping.Rule, error) {
	args := m.Called(ctx)
	return args.Get(0).([]shipping.Rule), args.Error(1)
}

func (m *MockShipping) Quote(ctx context.Context, region string, subtotal decimal.Decimal) (shipping.Quote, error) {
	args := m.Called(ctx, region, subtotal)
	return args.Get(0).(shipping.Quote), args.Error(1)
}

func (m *MockShipping) AdminList(ctx context.Context) ([]shipping.Rule, error) {
	args := m.Called(ctx)
	return args.Get(0).([]shipping.Rule), args.Error(1)
}

func (m *MockShipping) Create(ctx context.Context, in shipping.NewRuleInput) (invalidate.Result[*shipping.Rule], error) {
	args := m.Called(ctx, in)
	return args.Get(0).(invalidate.Result[*shipping.Rule]), args.Error(1)
}

func (m *MockShipping) Update(ctx context.Context, in shipping.UpdateRuleInput) (invalidate.Result[*shipping.Rule], error) {
	args := m.Called(ctx, in)
	return args.Get(0).(invalidate.Result[*shipping.Rule]), args.Error(1)
}

func (m *MockShipping) Delete(ctx context.Context, id string) (invalidate.Result[string], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(invalidate.Result[string]), args.Error(1)
}

type MockSlides struct{ mock.Mock }

func (m *MockSlides) ListActive(ctx context.Context) ([]slideshow.Slide, error) {
	args := m.Called(ctx)
	return args.Get(0).([]slideshow.Slide), args.Error(1)
}

func (m *MockSlides) AdminList(ctx context.Context) ([]slideshow.Slide, error) {
	args := m.Called(ctx)
	return args.Get(0).([]slideshow.Slide), args.Error(1)
}

func (m *MockSlides) Create(ctx context.Context, in slideshow.NewSlideInput) (invalidate.Result[*slideshow.Slide], error) {
	args := m.Called(ctx, in)
	return args.Get(0).(invalidate.Result[*slideshow.Slide]), args.Error(1)
}

func (m *MockSlides) Update(ctx context.Context, in slideshow.UpdateSlideInput) (invalidate.Result[*slideshow.Slide], error) {
	args := m.Called(ctx, in)
	return args.Get(0).(invalidate.Result[*slideshow.Slide]), args.Error(1)
}

func (m *MockSlides) Delete(ctx context.Context, id string) (invalidate.Result[string], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(invalidate.Result[string]), args.Error(1)
}

type MockDashboard struct{ mock.Mock }

func (m *MockDashboard) GetSummary(ctx context.Context, userID uint) (dashboard.Summary, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(dashboard.Summary), args.Error(1)
}

type MockCheckout struct{ mock.Mock }

func (m *MockCheckout) Checkout(ctx context.Context, c checkout.Cart, region string) (*order.Order, error) {
	args := m.Called(ctx, c, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockUploader struct{ mock.Mock }

func (m *MockUploader) Upload(ctx context.Context, fh *multipart.FileHeader, folder string) (*media.Image, error) {
	args := m.Called(ctx, fh, folder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*media.Image), args.Error(1)
}

type MockAdmin struct{ mock.Mock }

func (m *MockAdmin) RequireAdmin(ctx context.Context) (uint, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint), args.Error(1)
}
