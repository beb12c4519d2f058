package category

import (
	"context"
	"strings"

	"storefront-be/internal/apperr"
	"storefront-be/internal/invalidate"
	"storefront-be/internal/logger"
	"storefront-be/internal/user"
	"storefront-be/internal/utils"
	"storefront-be/internal/viewcache"

	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context) ([]Category, error)
	Create(ctx context.Context, input NewCategoryInput) (invalidate.Result[*Category], error)
	Update(ctx context.Context, input UpdateCategoryInput) (invalidate.Result[*Category], error)
	Delete(ctx context.Context, id string) (invalidate.Result[string], error)
}

type service struct {
	repo  Repository
	authz user.Authorizer
	cache *viewcache.Cache
}

func NewService(repo Repository, authz user.Authorizer, cache *viewcache.Cache) Service {
	return &service{repo: repo, authz: authz, cache: cache}
}

// List returns every category ordered by name.
func (s *service) List(ctx context.Context) ([]Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "List"),
	)

	var cached []Category
	if hit, err := s.cache.Get(ctx, invalidate.ViewCategories, "all", &cached); err != nil {
		log.Warn("view cache read failed", zap.Error(err))
	} else if hit {
		return cached, nil
	}

	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, invalidate.ViewCategories, "all", categories); err != nil {
		log.Warn("view cache write failed", zap.Error(err))
	}
	return categories, nil
}

func (s *service) Create(ctx context.Context, input NewCategoryInput) (invalidate.Result[*Category], error) {
	var res invalidate.Result[*Category]
	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return res, err
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return res, ErrNameRequired
	}
	slug := utils.Slugify(utils.PtrString(input.Slug))
	if slug == "" {
		slug = utils.Slugify(input.Name)
	}
	input.Slug = &slug

	c, err := s.repo.Create(ctx, input)
	if err != nil {
		return res, err
	}
	res.Value = c
	res.Invalidated = views(c)
	return res, nil
}

func (s *service) Update(ctx context.Context, input UpdateCategoryInput) (invalidate.Result[*Category], error) {
	var res invalidate.Result[*Category]
	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return res, err
	}

	if input.ID == "" {
		return res, apperr.Validation("category id is required")
	}
	if input.Name == nil && input.Slug == nil && input.Description == nil && input.Image == nil {
		return res, ErrNoFieldsUpdate
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return res, ErrNameRequired
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
	res.Invalidated = views(before, after)
	return res, nil
}

func (s *service) Delete(ctx context.Context, id string) (invalidate.Result[string], error) {
	var res invalidate.Result[string]
	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return res, err
	}
	if id == "" {
		return res, apperr.Validation("category id is required")
	}

	c, err := s.repo.Delete(ctx, id)
	if err != nil {
		return res, err
	}
	res.Value = c.ID
	res.Invalidated = views(c)
	return res, nil
}

func views(categories ...*Category) []invalidate.View {
	out := []invalidate.View{invalidate.ViewCategories, invalidate.ViewHome}
	for _, c := range categories {
		out = append(out, invalidate.CategoryPage(c.Slug))
	}
	return invalidate.Merge(out)
}
