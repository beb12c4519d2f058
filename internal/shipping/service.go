package shipping

import (
	"context"
	"strings"

	"storefront-be/internal/apperr"
	"storefront-be/internal/invalidate"
	"storefront-be/internal/logger"
	"storefront-be/internal/user"
	"storefront-be/internal/viewcache"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context) ([]Rule, error)
	Quote(ctx context.Context, region string, subtotal decimal.Decimal) (Quote, error)

	AdminList(ctx context.Context) ([]Rule, error)
	Create(ctx context.Context, input NewRuleInput) (invalidate.Result[*Rule], error)
	Update(ctx context.Context, input UpdateRuleInput) (invalidate.Result[*Rule], error)
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

func invalidated() []invalidate.View {
	return []invalidate.View{invalidate.ViewShipping}
}

// List returns the active rules shown to shoppers.
func (s *service) List(ctx context.Context) ([]Rule, error) {
	var cached []Rule
	if hit, err := s.cache.Get(ctx, invalidate.ViewShipping, "active", &cached); err == nil && hit {
		return cached, nil
	}

	rules, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, invalidate.ViewShipping, "active", rules); err != nil {
		logger.FromCtx(ctx).Warn("view cache write failed", zap.Error(err))
	}
	return rules, nil
}

// Quote picks the active rule for region with the highest min_subtotal
// not above subtotal. No match means free shipping.
func (s *service) Quote(ctx context.Context, region string, subtotal decimal.Decimal) (Quote, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return Quote{}, ErrRegionRequired
	}

	rules, err := s.repo.ActiveForRegion(ctx, region)
	if err != nil {
		return Quote{}, err
	}
	return pick(rules, region, subtotal), nil
}

func pick(rules []Rule, region string, subtotal decimal.Decimal) Quote {
	var best *Rule
	for i := range rules {
		r := &rules[i]
		if r.MinSubtotal.GreaterThan(subtotal) {
			continue
		}
		if best == nil || r.MinSubtotal.GreaterThan(best.MinSubtotal) {
			best = r
		}
	}
	if best == nil {
		return Quote{Region: region, Fee: decimal.Zero}
	}
	return Quote{RuleID: best.ID, Name: best.Name, Region: region, Fee: best.Fee}
}

func (s *service) AdminList(ctx context.Context) ([]Rule, error) {
	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, false)
}

func (s *service) Create(ctx context.Context, input NewRuleInput) (invalidate.Result[*Rule], error) {
	var res invalidate.Result[*Rule]
	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return res, err
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Region = strings.TrimSpace(input.Region)
	switch {
	case input.Name == "":
		return res, ErrNameRequired
	case input.Region == "":
		return res, ErrRegionRequired
	case input.MinSubtotal.IsNegative(), input.Fee.IsNegative():
		return res, ErrNegativeAmount
	}

	rule, err := s.repo.Create(ctx, input)
	if err != nil {
		return res, err
	}
	res.Value = rule
	res.Invalidated = invalidated()
	return res, nil
}

func (s *service) Update(ctx context.Context, input UpdateRuleInput) (invalidate.Result[*Rule], error) {
	var res invalidate.Result[*Rule]
	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return res, err
	}

	if input.ID == "" {
		return res, apperr.Validation("shipping rule id is required")
	}
	if input.Name == nil && input.Region == nil && input.MinSubtotal == nil && input.Fee == nil && input.IsActive == nil {
		return res, ErrNoFieldsUpdate
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return res, ErrNameRequired
	}
	if input.Region != nil && strings.TrimSpace(*input.Region) == "" {
		return res, ErrRegionRequired
	}
	if (input.MinSubtotal != nil && input.MinSubtotal.IsNegative()) || (input.Fee != nil && input.Fee.IsNegative()) {
		return res, ErrNegativeAmount
	}

	rule, err := s.repo.Update(ctx, input)
	if err != nil {
		return res, err
	}
	res.Value = rule
	res.Invalidated = invalidated()
	return res, nil
}

func (s *service) Delete(ctx context.Context, id string) (invalidate.Result[string], error) {
	var res invalidate.Result[string]
	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return res, err
	}
	if id == "" {
		return res, apperr.Validation("shipping rule id is required")
	}

	rule, err := s.repo.Delete(ctx, id)
	if err != nil {
		return res, err
	}
	res.Value = rule.ID
	res.Invalidated = invalidated()
	return res, nil
}
