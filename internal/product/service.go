package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront-be/internal/apperr"
	"storefront-be/internal/invalidate"
	"storefront-be/internal/logger"
	"storefront-be/internal/user"
	"storefront-be/internal/utils"
	"storefront-be/internal/viewcache"

	"go.uber.org/zap"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Service interface {
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)

	AdminList(ctx context.Context, opts ListOptions) (*ListResult, error)
	ListAll(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, input NewProductInput) (invalidate.Result[*Product], error)
	Update(ctx context.Context, input UpdateProductInput) (invalidate.Result[*Product], error)
	Delete(ctx context.Context, id string) (invalidate.Result[string], error)
}

type service struct {
	repo  Repository
	authz user.Authorizer
	cache *viewcache.Cache
}

// NewService builds the product service. cache may be nil.
func NewService(repo Repository, authz user.Authorizer, cache *viewcache.Cache) Service {
	return &service{repo: repo, authz: authz, cache: cache}
}

func normalize(opts ListOptions) ListOptions {
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultLimit
	} else if opts.Limit > maxLimit {
		opts.Limit = maxLimit
	}
	opts.Search = strings.TrimSpace(opts.Search)
	return opts
}

func listView(opts ListOptions) invalidate.View {
	if opts.Category != "" {
		return invalidate.CategoryPage(opts.Category)
	}
	return invalidate.ViewProductList
}

func (s *service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "List"),
	)
	start := time.Now()

	opts = normalize(opts)
	opts.IncludeInactive = false

	view := listView(opts)
	key := fmt.Sprintf("p=%d&l=%d&q=%s", opts.Page, opts.Limit, opts.Search)

	var cached ListResult
	hit, err := s.cache.Get(ctx, view, key, &cached)
	if err != nil {
		log.Warn("view cache read failed", zap.Error(err))
	}
	if hit {
		return &cached, nil
	}

	res, err := s.list(ctx, opts)
	if err != nil {
		log.Error("failed to fetch product list", zap.Error(err))
		return nil, err
	}

	if err := s.cache.Set(ctx, view, key, res); err != nil {
		log.Warn("view cache write failed", zap.Error(err))
	}

	log.Info("get product list success",
		zap.Int("count", len(res.Items)),
		zap.Int64("total", res.Total),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func (s *service) list(ctx context.Context, opts ListOptions) (*ListResult, error) {
	items, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Product{}
	}
	return &ListResult{Items: items, Total: total, Page: opts.Page, Limit: opts.Limit}, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrProductNotFound
	}

	view := invalidate.ProductDetail(slug)
	var cached Product
	if hit, err := s.cache.Get(ctx, view, "detail", &cached); err == nil && hit {
		return &cached, nil
	}

	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, view, "detail", p); err != nil {
		logger.FromCtx(ctx).Warn("view cache write failed", zap.String("view", view.String()), zap.Error(err))
	}
	return p, nil
}

func (s *service) AdminList(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.list(ctx, normalize(opts))
}

func (s *service) ListAll(ctx context.Context) ([]Product, error) {
	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListAll(ctx)
}

func (s *service) Create(ctx context.Context, input NewProductInput) (invalidate.Result[*Product], error) {
	var res invalidate.Result[*Product]

	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return res, err
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return res, ErrNameRequired
	}
	if !input.Price.IsPositive() {
		return res, ErrInvalidPrice
	}
	if input.Stock < 0 {
		return res, ErrInvalidStock
	}

	slug := utils.Slugify(utils.PtrString(input.Slug))
	if slug == "" {
		slug = utils.Slugify(input.Name)
	}
	if slug == "" {
		return res, apperr.Validation("slug cannot be empty")
	}
	input.Slug = &slug

	if input.Images == nil {
		input.Images = []string{}
	}
	if input.Categories == nil {
		input.Categories = []string{}
	}

	p, err := s.repo.Create(ctx, input)
	if err != nil {
		return res, err
	}

	res.Value = p
	res.Invalidated = affectedViews(p)
	return res, nil
}

func (s *service) Update(ctx context.Context, input UpdateProductInput) (invalidate.Result[*Product], error) {
	var res invalidate.Result[*Product]

	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return res, err
	}

	if input.ID == "" {
		return res, apperr.Validation("product id is required")
	}
	if input.empty() {
		return res, ErrNoFieldsUpdate
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return res, ErrNameRequired
	}
	if input.Price != nil && !input.Price.IsPositive() {
		return res, ErrInvalidPrice
	}
	if input.Stock != nil && *input.Stock < 0 {
		return res, ErrInvalidStock
	}
	if input.Slug != nil {
		slug := utils.Slugify(*input.Slug)
		if slug == "" {
			return res, apperr.Validation("slug cannot be empty")
		}
		input.Slug = &slug
	}

	before, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return res, err
	}

	after, err := s.repo.Update(ctx, input)
	if err != nil {
		return res, err
	}

	res.Value = after
	res.Invalidated = affectedViews(before, after)
	return res, nil
}

func (s *service) Delete(ctx context.Context, id string) (invalidate.Result[string], error) {
	var res invalidate.Result[string]

	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return res, err
	}
	if id == "" {
		return res, apperr.Validation("product id is required")
	}

	p, err := s.repo.Delete(ctx, id)
	if err != nil {
		return res, err
	}

	res.Value = p.ID
	res.Invalidated = affectedViews(p)
	return res, nil
}

// affectedViews lists every view that renders one of the given products.
func affectedViews(products ...*Product) []invalidate.View {
	views := []invalidate.View{invalidate.ViewProductList, invalidate.ViewHome}
	for _, p := range products {
		if p == nil {
			continue
		}
		views = append(views, invalidate.ProductDetail(p.Slug))
		for _, c := range p.Categories {
			views = append(views, invalidate.CategoryPage(c))
		}
	}
	return invalidate.Merge(views)
}
