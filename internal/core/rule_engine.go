package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SalesRuleEngine resolves the catalog-owned selling policy for a SKU.
// Product-level flags win; NULL flags fall back to the tenant defaults in
// sales_rule_defaults; a SKU the catalog has not synced yet resolves to the
// tenant defaults so classification never fails on catalog lag.
type SalesRuleEngine interface {
	ResolveSalesRule(ctx context.Context, tenantID int, sku string) (SalesRule, error)
}

type salesRuleEngine struct {
	pool *pgxpool.Pool
}

// NewSalesRuleEngine constructs a SalesRuleEngine backed by the products and
// sales_rule_defaults tables.
func NewSalesRuleEngine(pool *pgxpool.Pool) SalesRuleEngine {
	return &salesRuleEngine{pool: pool}
}

func (r *salesRuleEngine) ResolveSalesRule(ctx context.Context, tenantID int, sku string) (SalesRule, error) {
	rule := SalesRule{SKU: sku}

	var defBackorder, defTransfer bool
	err := r.pool.QueryRow(ctx, `
		SELECT allow_backorder, allow_transfer
		FROM sales_rule_defaults
		WHERE tenant_id = $1
	`, tenantID).Scan(&defBackorder, &defTransfer)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return rule, fmt.Errorf("failed to resolve sales-rule defaults: %w", err)
	}

	var backorder, transfer *bool
	err = r.pool.QueryRow(ctx, `
		SELECT allow_backorder, allow_transfer
		FROM products
		WHERE tenant_id = $1 AND sku = $2 AND is_active = true
	`, tenantID, sku).Scan(&backorder, &transfer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			rule.AllowBackorder = defBackorder
			rule.AllowTransfer = defTransfer
			return rule, nil
		}
		return rule, fmt.Errorf("failed to resolve sales rule for %s: %w", sku, err)
	}

	rule.AllowBackorder = defBackorder
	if backorder != nil {
		rule.AllowBackorder = *backorder
	}
	rule.AllowTransfer = defTransfer
	if transfer != nil {
		rule.AllowTransfer = *transfer
	}
	return rule, nil
}
