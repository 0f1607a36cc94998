package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Classify maps a stock position and its sales rule to a status. First
// matching rule wins:
//
//	available > 0                     -> IN_STOCK
//	allow_backorder                   -> BACKORDER
//	allow_transfer and DC stock > 0   -> TRANSFERABLE
//	otherwise                         -> UNAVAILABLE
//
// dcOnHand is the summed on-hand across the tenant's active distribution
// centers. Pure function of its inputs; calling it never changes stock.
func Classify(bal Balance, rule SalesRule, dcOnHand decimal.Decimal) StockStatus {
	if bal.Available().Sign() > 0 {
		return StatusInStock
	}
	if rule.AllowBackorder {
		return StatusBackorder
	}
	if rule.AllowTransfer && dcOnHand.Sign() > 0 {
		return StatusTransferable
	}
	return StatusUnavailable
}

// Availability is a classification result with the inputs that produced it,
// so callers can show "why" alongside the status.
type Availability struct {
	SKU           string
	WarehouseCode string
	Status        StockStatus
	OnHand        decimal.Decimal
	Reserved      decimal.Decimal
	Available     decimal.Decimal
	DCOnHand      decimal.Decimal
	Rule          SalesRule
}

// AvailabilityService classifies sellability for storefront-facing callers.
type AvailabilityService interface {
	// ClassifyAvailability classifies one (warehouse, sku) key. Unknown SKUs
	// classify like any zero balance; an unknown warehouse is an error.
	ClassifyAvailability(ctx context.Context, tenantCode, warehouseCode, sku string) (*Availability, error)

	// ClassifyWarehouse classifies every SKU with a balance row at one
	// warehouse.
	ClassifyWarehouse(ctx context.Context, tenantCode, warehouseCode string) ([]Availability, error)
}

type availabilityService struct {
	pool      *pgxpool.Pool
	inventory InventoryService
	rules     SalesRuleEngine
}

func NewAvailabilityService(pool *pgxpool.Pool, inventory InventoryService, rules SalesRuleEngine) AvailabilityService {
	return &availabilityService{pool: pool, inventory: inventory, rules: rules}
}

func (s *availabilityService) ClassifyAvailability(ctx context.Context, tenantCode, warehouseCode, sku string) (*Availability, error) {
	bal, err := s.inventory.GetBalance(ctx, tenantCode, warehouseCode, sku)
	if err != nil {
		return nil, err
	}

	rule, err := s.rules.ResolveSalesRule(ctx, bal.TenantID, sku)
	if err != nil {
		return nil, err
	}

	dcOnHand, err := s.dcOnHand(ctx, bal.TenantID, sku)
	if err != nil {
		return nil, err
	}

	return &Availability{
		SKU:           sku,
		WarehouseCode: warehouseCode,
		Status:        Classify(bal, rule, dcOnHand),
		OnHand:        bal.OnHand,
		Reserved:      bal.Reserved,
		Available:     bal.Available(),
		DCOnHand:      dcOnHand,
		Rule:          rule,
	}, nil
}

func (s *availabilityService) ClassifyWarehouse(ctx context.Context, tenantCode, warehouseCode string) ([]Availability, error) {
	tenantID, err := resolveTenantID(ctx, s.pool, tenantCode)
	if err != nil {
		return nil, err
	}
	warehouseID, err := resolveWarehouseID(ctx, s.pool, tenantID, warehouseCode)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT sku, qty_on_hand, qty_reserved
		FROM stock_balances
		WHERE tenant_id = $1 AND warehouse_id = $2
		ORDER BY sku
	`, tenantID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances: %w", err)
	}
	defer rows.Close()

	var balances []Balance
	for rows.Next() {
		b := Balance{TenantID: tenantID, WarehouseID: warehouseID}
		if err := rows.Scan(&b.SKU, &b.OnHand, &b.Reserved); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	results := make([]Availability, 0, len(balances))
	for _, b := range balances {
		rule, err := s.rules.ResolveSalesRule(ctx, tenantID, b.SKU)
		if err != nil {
			return nil, err
		}
		dcOnHand, err := s.dcOnHand(ctx, tenantID, b.SKU)
		if err != nil {
			return nil, err
		}
		results = append(results, Availability{
			SKU:           b.SKU,
			WarehouseCode: warehouseCode,
			Status:        Classify(b, rule, dcOnHand),
			OnHand:        b.OnHand,
			Reserved:      b.Reserved,
			Available:     b.Available(),
			DCOnHand:      dcOnHand,
			Rule:          rule,
		})
	}
	return results, nil
}

// dcOnHand sums on-hand stock for a SKU across active distribution centers.
func (s *availabilityService) dcOnHand(ctx context.Context, tenantID int, sku string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(b.qty_on_hand), 0)
		FROM stock_balances b
		JOIN warehouses w ON w.id = b.warehouse_id
		WHERE b.tenant_id = $1 AND b.sku = $2
		  AND w.wh_type = 'DC' AND w.is_active = true
	`, tenantID, sku).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum DC stock for %s: %w", sku, err)
	}
	return total, nil
}
