package shipping

import (
	"context"
	"database/sql"
	"errors"

	"storefront-be/internal/apperr"
	"storefront-be/internal/gateway"
	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

var ruleColumns = []string{"id", "name", "region", "min_subtotal", "fee", "is_active"}

const returning = ` RETURNING id, name, region, min_subtotal, fee, is_active`

type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]Rule, error)
	ActiveForRegion(ctx context.Context, region string) ([]Rule, error)
	Create(ctx context.Context, input NewRuleInput) (*Rule, error)
	Update(ctx context.Context, input UpdateRuleInput) (*Rule, error)
	Delete(ctx context.Context, id string) (*Rule, error)
}

type repository struct {
	gw *gateway.Client
}

func NewRepository(gw *gateway.Client) Repository {
	return &repository{gw: gw}
}

func scanDest(r *Rule) []any {
	return []any{&r.ID, &r.Name, &r.Region, &r.MinSubtotal, &r.Fee, &r.IsActive}
}

func (r *repository) selectRules(ctx context.Context, q *gateway.Query) ([]Rule, error) {
	rules := []Rule{}
	err := r.gw.Select(ctx, q, func(rows *sql.Rows) error {
		var rule Rule
		if err := rows.Scan(scanDest(&rule)...); err != nil {
			return err
		}
		rules = append(rules, rule)
		return nil
	})
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list shipping rules",
			zap.String("layer", "repository"),
			zap.Error(err),
		)
		return nil, err
	}
	return rules, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]Rule, error) {
	q := gateway.From(gateway.ShippingRules).Select(ruleColumns...)
	if activeOnly {
		q = q.Eq("is_active", true)
	}
	return r.selectRules(ctx, q.OrderBy("region", false))
}

// ActiveForRegion returns the region's active rules, highest threshold
// first.
func (r *repository) ActiveForRegion(ctx context.Context, region string) ([]Rule, error) {
	q := gateway.From(gateway.ShippingRules).
		Select(ruleColumns...).
		Eq("region", region).
		Eq("is_active", true).
		OrderBy("min_subtotal", true)
	return r.selectRules(ctx, q)
}

func (r *repository) Create(ctx context.Context, input NewRuleInput) (*Rule, error) {
	var rule Rule
	err := r.gw.QueryRow(ctx,
		`INSERT INTO shipping_rules (name, region, min_subtotal, fee, is_active) VALUES ($1, $2, $3, $4, COALESCE($5, TRUE))`+returning,
		[]any{input.Name, input.Region, input.MinSubtotal, input.Fee, input.IsActive},
		scanDest(&rule)...,
	)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to create shipping rule",
			zap.String("layer", "repository"),
			zap.String("region", input.Region),
			zap.Error(err),
		)
		return nil, err
	}
	return &rule, nil
}

func (r *repository) Update(ctx context.Context, input UpdateRuleInput) (*Rule, error) {
	query := `
		UPDATE shipping_rules
		SET name = COALESCE($2, name),
			region = COALESCE($3, region),
			min_subtotal = COALESCE($4, min_subtotal),
			fee = COALESCE($5, fee),
			is_active = COALESCE($6, is_active)
		WHERE id = $1` + returning

	var minSubtotal, fee any
	if input.MinSubtotal != nil {
		minSubtotal = *input.MinSubtotal
	}
	if input.Fee != nil {
		fee = *input.Fee
	}

	var rule Rule
	err := r.gw.QueryRow(ctx, query,
		[]any{input.ID, input.Name, input.Region, minSubtotal, fee, input.IsActive},
		scanDest(&rule)...,
	)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repository) Delete(ctx context.Context, id string) (*Rule, error) {
	var rule Rule
	err := r.gw.QueryRow(ctx, `DELETE FROM shipping_rules WHERE id = $1`+returning, []any{id}, scanDest(&rule)...)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	return &rule, nil
}
