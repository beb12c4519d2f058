package slideshow

import (
	"context"
	"net/url"
	"strings"

	"storefront-be/internal/apperr"
	"storefront-be/internal/invalidate"
	"storefront-be/internal/user"
	"storefront-be/internal/viewcache"
)

type Service interface {
	ListActive(ctx context.Context) ([]Slide, error)
	AdminList(ctx context.Context) ([]Slide, error)
	Create(ctx context.Context, input NewSlideInput) (invalidate.Result[*Slide], error)
	Update(ctx context.Context, input UpdateSlideInput) (invalidate.Result[*Slide], error)
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

func views() []invalidate.View {
	return []invalidate.View{invalidate.ViewSlideshow, invalidate.ViewHome}
}

func (s *service) ListActive(ctx context.Context) ([]Slide, error) {
	var cached []Slide
	if hit, err := s.cache.Get(ctx, invalidate.ViewSlideshow, "active", &cached); err == nil && hit {
		return cached, nil
	}

	slides, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, invalidate.ViewSlideshow, "active", slides)
	return slides, nil
}

func (s *service) AdminList(ctx context.Context) ([]Slide, error) {
	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, false)
}

func validImageURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (s *service) Create(ctx context.Context, input NewSlideInput) (invalidate.Result[*Slide], error) {
	var res invalidate.Result[*Slide]
	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return res, err
	}

	input.Title = strings.TrimSpace(input.Title)
	switch {
	case input.Title == "":
		return res, ErrTitleRequired
	case !validImageURL(input.ImageURL):
		return res, ErrInvalidImageURL
	case input.Position < 0:
		return res, ErrNegativePosition
	}

	slide, err := s.repo.Create(ctx, input)
	if err != nil {
		return res, err
	}
	res.Value = slide
	res.Invalidated = views()
	return res, nil
}

func (s *service) Update(ctx context.Context, input UpdateSlideInput) (invalidate.Result[*Slide], error) {
	var res invalidate.Result[*Slide]
	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return res, err
	}

	if input.ID == "" {
		return res, apperr.Validation("slide id is required")
	}
	if input.Title == nil && input.Subtitle == nil && input.ImageURL == nil &&
		input.LinkURL == nil && input.Position == nil && input.IsActive == nil {
		return res, ErrNoFieldsUpdate
	}
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return res, ErrTitleRequired
	}
	if input.ImageURL != nil && !validImageURL(*input.ImageURL) {
		return res, ErrInvalidImageURL
	}
	if input.Position != nil && *input.Position < 0 {
		return res, ErrNegativePosition
	}

	slide, err := s.repo.Update(ctx, input)
	if err != nil {
		return res, err
	}
	res.Value = slide
	res.Invalidated = views()
	return res, nil
}

func (s *service) Delete(ctx context.Context, id string) (invalidate.Result[string], error) {
	var res invalidate.Result[string]
	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return res, err
	}
	if id == "" {
		return res, apperr.Validation("slide id is required")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return res, err
	}
	res.Value = id
	res.Invalidated = views()
	return res, nil
}
