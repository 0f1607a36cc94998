package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ReportingService answers back-office questions from the balance store and
// the movement ledger. All queries are read-only.
type ReportingService interface {
	// GetStockValuation values on-hand stock at catalog unit price, per SKU,
	// across all warehouses.
	GetStockValuation(ctx context.Context, tenantCode string) (*ValuationReport, error)

	// GetLowStock lists SKUs whose total on-hand across all warehouses is
	// positive but at or below the threshold. Reservations do not affect
	// the cut: stock that is fully earmarked is still on the shelf.
	GetLowStock(ctx context.Context, tenantCode string, threshold decimal.Decimal) ([]LowStockLine, error)

	// GetOutOfStock lists catalog SKUs with zero on-hand across all
	// warehouses, including SKUs that never had a balance row.
	GetOutOfStock(ctx context.Context, tenantCode string) ([]OutOfStockLine, error)

	// GetMovementCounts tallies ledger activity by movement type. Zero
	// time bounds are open-ended.
	GetMovementCounts(ctx context.Context, tenantCode string, from, to time.Time) ([]MovementCount, error)

	// GetWarehouseRollup sums a SKU's position across every warehouse.
	GetWarehouseRollup(ctx context.Context, tenantCode, sku string) (*RollupReport, error)
}

type ValuationLine struct {
	SKU       string
	Name      string
	OnHand    decimal.Decimal
	UnitPrice decimal.Decimal
	Value     decimal.Decimal
}

type ValuationReport struct {
	Lines      []ValuationLine
	TotalValue decimal.Decimal
}

// LowStockLine is one SKU's position summed across all warehouses.
type LowStockLine struct {
	SKU       string
	OnHand    decimal.Decimal
	Reserved  decimal.Decimal
	Available decimal.Decimal
}

type OutOfStockLine struct {
	SKU  string
	Name string
}

type MovementCount struct {
	Type          MovementType
	Count         int64
	TotalQuantity decimal.Decimal
}

// RollupLine is one warehouse's contribution to a SKU rollup.
type RollupLine struct {
	WarehouseCode string
	WarehouseType WarehouseType
	OnHand        decimal.Decimal
	Reserved      decimal.Decimal
	InTransitIn   decimal.Decimal
	InTransitOut  decimal.Decimal
}

type RollupReport struct {
	SKU           string
	Lines         []RollupLine
	TotalOnHand   decimal.Decimal
	TotalReserved decimal.Decimal
	TotalInflight decimal.Decimal
}

type reportingService struct {
	pool *pgxpool.Pool
}

func NewReportingService(pool *pgxpool.Pool) ReportingService {
	return &reportingService{pool: pool}
}

func (s *reportingService) GetStockValuation(ctx context.Context, tenantCode string) (*ValuationReport, error) {
	tenantID, err := resolveTenantID(ctx, s.pool, tenantCode)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT b.sku, COALESCE(p.name, b.sku), SUM(b.qty_on_hand) AS on_hand,
		       COALESCE(p.unit_price, 0) AS unit_price
		FROM stock_balances b
		LEFT JOIN products p ON p.tenant_id = b.tenant_id AND p.sku = b.sku
		WHERE b.tenant_id = $1
		GROUP BY b.sku, p.name, p.unit_price
		ORDER BY b.sku
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query valuation: %w", err)
	}
	defer rows.Close()

	report := &ValuationReport{}
	for rows.Next() {
		var line ValuationLine
		if err := rows.Scan(&line.SKU, &line.Name, &line.OnHand, &line.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan valuation line: %w", err)
		}
		line.Value = line.OnHand.Mul(line.UnitPrice)
		report.TotalValue = report.TotalValue.Add(line.Value)
		report.Lines = append(report.Lines, line)
	}
	return report, rows.Err()
}

func (s *reportingService) GetLowStock(ctx context.Context, tenantCode string, threshold decimal.Decimal) ([]LowStockLine, error) {
	tenantID, err := resolveTenantID(ctx, s.pool, tenantCode)
	if err != nil {
		return nil, err
	}

	// Low stock is an on-hand measure, not an availability measure: a SKU
	// whose stock is fully reserved is still counted by what sits on the
	// shelf.
	rows, err := s.pool.Query(ctx, `
		SELECT b.sku, SUM(b.qty_on_hand) AS on_hand, SUM(b.qty_reserved) AS reserved
		FROM stock_balances b
		WHERE b.tenant_id = $1
		GROUP BY b.sku
		HAVING SUM(b.qty_on_hand) > 0 AND SUM(b.qty_on_hand) <= $2
		ORDER BY on_hand, b.sku
	`, tenantID, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock: %w", err)
	}
	defer rows.Close()

	var lines []LowStockLine
	for rows.Next() {
		var l LowStockLine
		if err := rows.Scan(&l.SKU, &l.OnHand, &l.Reserved); err != nil {
			return nil, fmt.Errorf("failed to scan low-stock line: %w", err)
		}
		l.Available = l.OnHand.Sub(l.Reserved)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *reportingService) GetOutOfStock(ctx context.Context, tenantCode string) ([]OutOfStockLine, error) {
	tenantID, err := resolveTenantID(ctx, s.pool, tenantCode)
	if err != nil {
		return nil, err
	}

	// LEFT JOIN from the catalog so SKUs that never received stock anywhere
	// show up as out of stock too.
	rows, err := s.pool.Query(ctx, `
		SELECT p.sku, p.name
		FROM products p
		LEFT JOIN stock_balances b
		  ON b.tenant_id = p.tenant_id AND b.sku = p.sku
		WHERE p.tenant_id = $1 AND p.is_active = true
		GROUP BY p.sku, p.name
		HAVING COALESCE(SUM(b.qty_on_hand), 0) = 0
		ORDER BY p.sku
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query out-of-stock: %w", err)
	}
	defer rows.Close()

	var lines []OutOfStockLine
	for rows.Next() {
		var l OutOfStockLine
		if err := rows.Scan(&l.SKU, &l.Name); err != nil {
			return nil, fmt.Errorf("failed to scan out-of-stock line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *reportingService) GetMovementCounts(ctx context.Context, tenantCode string, from, to time.Time) ([]MovementCount, error) {
	tenantID, err := resolveTenantID(ctx, s.pool, tenantCode)
	if err != nil {
		return nil, err
	}

	q := `
		SELECT movement_type, COUNT(*), COALESCE(SUM(quantity), 0)
		FROM stock_movements
		WHERE tenant_id = $1`
	args := []any{tenantID}
	if !from.IsZero() {
		args = append(args, from)
		q += fmt.Sprintf(" AND moved_at >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		q += fmt.Sprintf(" AND moved_at < $%d", len(args))
	}
	q += " GROUP BY movement_type ORDER BY movement_type"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movement counts: %w", err)
	}
	defer rows.Close()

	var counts []MovementCount
	for rows.Next() {
		var c MovementCount
		if err := rows.Scan(&c.Type, &c.Count, &c.TotalQuantity); err != nil {
			return nil, fmt.Errorf("failed to scan movement count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (s *reportingService) GetWarehouseRollup(ctx context.Context, tenantCode, sku string) (*RollupReport, error) {
	tenantID, err := resolveTenantID(ctx, s.pool, tenantCode)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT w.code, w.wh_type, b.qty_on_hand, b.qty_reserved,
		       b.qty_in_transit_in, b.qty_in_transit_out
		FROM stock_balances b
		JOIN warehouses w ON w.id = b.warehouse_id
		WHERE b.tenant_id = $1 AND b.sku = $2
		ORDER BY w.code
	`, tenantID, sku)
	if err != nil {
		return nil, fmt.Errorf("failed to query rollup for %s: %w", sku, err)
	}
	defer rows.Close()

	report := &RollupReport{SKU: sku}
	for rows.Next() {
		var l RollupLine
		if err := rows.Scan(&l.WarehouseCode, &l.WarehouseType, &l.OnHand, &l.Reserved, &l.InTransitIn, &l.InTransitOut); err != nil {
			return nil, fmt.Errorf("failed to scan rollup line: %w", err)
		}
		report.TotalOnHand = report.TotalOnHand.Add(l.OnHand)
		report.TotalReserved = report.TotalReserved.Add(l.Reserved)
		report.TotalInflight = report.TotalInflight.Add(l.InTransitOut)
		report.Lines = append(report.Lines, l)
	}
	return report, rows.Err()
}
