package shipping

import "github.com/shopspring/decimal"

type Rule struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Region      string          `json:"region"`
	MinSubtotal decimal.Decimal `json:"min_subtotal"`
	Fee         decimal.Decimal `json:"fee"`
	IsActive    bool            `json:"is_active"`
}

type NewRuleInput struct {
	Name        string          `json:"name"`
	Region      string          `json:"region"`
	MinSubtotal decimal.Decimal `json:"min_subtotal"`
	Fee         decimal.Decimal `json:"fee"`
	IsActive    *bool           `json:"is_active,omitempty"`
}

type UpdateRuleInput struct {
	ID          string           `json:"-"`
	Name        *string          `json:"name,omitempty"`
	Region      *string          `json:"region,omitempty"`
	MinSubtotal *decimal.Decimal `json:"min_subtotal,omitempty"`
	Fee         *decimal.Decimal `json:"fee,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

// Quote is the shipping fee chosen for an order. RuleID is empty when no
// rule matched and shipping is free.
type Quote struct {
	RuleID string          `json:"rule_id,omitempty"`
	Name   string          `json:"name,omitempty"`
	Region string          `json:"region"`
	Fee    decimal.Decimal `json:"fee"`
}
