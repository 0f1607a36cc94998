package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"inventory-engine/internal/core"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type appService struct {
	pool         *pgxpool.Pool
	inventory    core.InventoryService
	availability core.AvailabilityService
	warehouses   core.WarehouseService
	reporting    core.ReportingService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	pool *pgxpool.Pool,
	inventory core.InventoryService,
	availability core.AvailabilityService,
	warehouses core.WarehouseService,
	reporting core.ReportingService,
) ApplicationService {
	return &appService{
		pool:         pool,
		inventory:    inventory,
		availability: availability,
		warehouses:   warehouses,
		reporting:    reporting,
	}
}

// ReceiveStock records inbound stock at a warehouse.
func (s *appService) ReceiveStock(ctx context.Context, req StockOperationRequest) (*MovementResult, error) {
	qty, err := parseQuantity(req.Quantity)
	if err != nil {
		return nil, err
	}
	mv, err := s.inventory.Receive(ctx, req.TenantCode, req.WarehouseCode, req.SKU, qty, req.OperatorID)
	if err != nil {
		return nil, err
	}
	return &MovementResult{Movement: mv}, nil
}

// IssueStock removes on-hand stock for sale or consumption.
func (s *appService) IssueStock(ctx context.Context, req StockOperationRequest) (*MovementResult, error) {
	qty, err := parseQuantity(req.Quantity)
	if err != nil {
		return nil, err
	}
	mv, err := s.inventory.Issue(ctx, req.TenantCode, req.WarehouseCode, req.SKU, qty, req.OperatorID)
	if err != nil {
		return nil, err
	}
	return &MovementResult{Movement: mv}, nil
}

// ReserveStock earmarks available stock for pending demand.
func (s *appService) ReserveStock(ctx context.Context, req StockOperationRequest) (*MovementResult, error) {
	qty, err := parseQuantity(req.Quantity)
	if err != nil {
		return nil, err
	}
	mv, err := s.inventory.Reserve(ctx, req.TenantCode, req.WarehouseCode, req.SKU, qty, req.OperatorID)
	if err != nil {
		return nil, err
	}
	return &MovementResult{Movement: mv}, nil
}

// ReleaseStock returns earmarked stock to availability.
func (s *appService) ReleaseStock(ctx context.Context, req StockOperationRequest) (*MovementResult, error) {
	qty, err := parseQuantity(req.Quantity)
	if err != nil {
		return nil, err
	}
	mv, err := s.inventory.ReleaseReservation(ctx, req.TenantCode, req.WarehouseCode, req.SKU, qty, req.OperatorID)
	if err != nil {
		return nil, err
	}
	return &MovementResult{Movement: mv}, nil
}

// AdjustStock applies a signed cycle-count correction with a reason.
func (s *appService) AdjustStock(ctx context.Context, req AdjustRequest) (*MovementResult, error) {
	delta, err := parseQuantity(req.Delta)
	if err != nil {
		return nil, err
	}
	mv, err := s.inventory.Adjust(ctx, req.TenantCode, req.WarehouseCode, req.SKU, delta, req.OperatorID, req.Reason)
	if err != nil {
		return nil, err
	}
	return &MovementResult{Movement: mv}, nil
}

// TransferStock moves stock between two warehouses atomically.
func (s *appService) TransferStock(ctx context.Context, req TransferRequest) (*TransferMovementsResult, error) {
	qty, err := parseQuantity(req.Quantity)
	if err != nil {
		return nil, err
	}
	result, err := s.inventory.Transfer(ctx, req.TenantCode, req.FromWarehouse, req.ToWarehouse, req.SKU, qty, req.OperatorID)
	if err != nil {
		return nil, err
	}
	return &TransferMovementsResult{Out: &result.Out, In: &result.In}, nil
}

// DispatchTransfer starts a two-step transfer.
func (s *appService) DispatchTransfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	qty, err := parseQuantity(req.Quantity)
	if err != nil {
		return nil, err
	}
	transfer, err := s.inventory.DispatchTransfer(ctx, req.TenantCode, req.FromWarehouse, req.ToWarehouse, req.SKU, qty, req.OperatorID)
	if err != nil {
		return nil, err
	}
	return &TransferResult{Transfer: transfer}, nil
}

// CompleteTransfer lands an in-transit transfer at its destination.
func (s *appService) CompleteTransfer(ctx context.Context, tenantCode, ref, operatorID string) (*MovementResult, error) {
	id, err := parseTransferRef(ref)
	if err != nil {
		return nil, err
	}
	mv, err := s.inventory.CompleteTransfer(ctx, tenantCode, id, operatorID)
	if err != nil {
		return nil, err
	}
	return &MovementResult{Movement: mv}, nil
}

// CancelTransfer returns an in-transit transfer's stock to its source.
func (s *appService) CancelTransfer(ctx context.Context, tenantCode, ref, operatorID string) (*MovementResult, error) {
	id, err := parseTransferRef(ref)
	if err != nil {
		return nil, err
	}
	mv, err := s.inventory.CancelTransfer(ctx, tenantCode, id, operatorID)
	if err != nil {
		return nil, err
	}
	return &MovementResult{Movement: mv}, nil
}

// GetBalance returns the stock position for one (warehouse, sku) key.
func (s *appService) GetBalance(ctx context.Context, tenantCode, warehouseCode, sku string) (*BalanceResult, error) {
	bal, err := s.inventory.GetBalance(ctx, tenantCode, warehouseCode, sku)
	if err != nil {
		return nil, err
	}
	return &BalanceResult{Balance: bal, WarehouseCode: warehouseCode}, nil
}

// ListMovements returns ledger entries newest first.
func (s *appService) ListMovements(ctx context.Context, tenantCode, sku string, limit int) (*MovementListResult, error) {
	movements, err := s.inventory.ListMovements(ctx, tenantCode, sku, limit)
	if err != nil {
		return nil, err
	}
	return &MovementListResult{Movements: movements}, nil
}

// ListTransfers returns two-step transfers.
func (s *appService) ListTransfers(ctx context.Context, tenantCode, status string) (*TransferListResult, error) {
	transfers, err := s.inventory.ListTransfers(ctx, tenantCode, core.TransferStatus(status))
	if err != nil {
		return nil, err
	}
	return &TransferListResult{Transfers: transfers}, nil
}

// GetAvailability classifies a SKU's sellability at a warehouse.
func (s *appService) GetAvailability(ctx context.Context, tenantCode, warehouseCode, sku string) (*AvailabilityResult, error) {
	av, err := s.availability.ClassifyAvailability(ctx, tenantCode, warehouseCode, sku)
	if err != nil {
		return nil, err
	}
	return &AvailabilityResult{Availability: av}, nil
}

// GetWarehouseAvailability classifies every stocked SKU at a warehouse.
func (s *appService) GetWarehouseAvailability(ctx context.Context, tenantCode, warehouseCode string) (*AvailabilityListResult, error) {
	avs, err := s.availability.ClassifyWarehouse(ctx, tenantCode, warehouseCode)
	if err != nil {
		return nil, err
	}
	return &AvailabilityListResult{WarehouseCode: warehouseCode, Availabilities: avs}, nil
}

// ListWarehouses returns all active warehouses for a tenant.
func (s *appService) ListWarehouses(ctx context.Context, tenantCode string) (*WarehouseListResult, error) {
	warehouses, err := s.warehouses.GetWarehouses(ctx, tenantCode)
	if err != nil {
		return nil, err
	}
	return &WarehouseListResult{Warehouses: warehouses}, nil
}

// GetStockValuation values on-hand stock at catalog unit price.
func (s *appService) GetStockValuation(ctx context.Context, tenantCode string) (*ValuationResult, error) {
	report, err := s.reporting.GetStockValuation(ctx, tenantCode)
	if err != nil {
		return nil, err
	}
	return &ValuationResult{Report: report}, nil
}

// GetLowStock lists SKUs whose total on-hand is at or below threshold.
func (s *appService) GetLowStock(ctx context.Context, tenantCode, threshold string) (*LowStockResult, error) {
	th, err := decimal.NewFromString(threshold)
	if err != nil {
		return nil, fmt.Errorf("invalid threshold %q: %w", threshold, err)
	}
	lines, err := s.reporting.GetLowStock(ctx, tenantCode, th)
	if err != nil {
		return nil, err
	}
	return &LowStockResult{Lines: lines}, nil
}

// GetOutOfStock lists catalog SKUs with zero on-hand everywhere.
func (s *appService) GetOutOfStock(ctx context.Context, tenantCode string) (*OutOfStockResult, error) {
	lines, err := s.reporting.GetOutOfStock(ctx, tenantCode)
	if err != nil {
		return nil, err
	}
	return &OutOfStockResult{Lines: lines}, nil
}

// GetMovementCounts tallies ledger activity by movement type.
func (s *appService) GetMovementCounts(ctx context.Context, tenantCode, fromDate, toDate string) (*MovementCountsResult, error) {
	var from, to time.Time
	var err error
	if fromDate != "" {
		from, err = time.Parse("2006-01-02", fromDate)
		if err != nil {
			return nil, fmt.Errorf("invalid from date %q: %w", fromDate, err)
		}
	}
	if toDate != "" {
		to, err = time.Parse("2006-01-02", toDate)
		if err != nil {
			return nil, fmt.Errorf("invalid to date %q: %w", toDate, err)
		}
		// Treat the to date as inclusive.
		to = to.AddDate(0, 0, 1)
	}
	counts, err := s.reporting.GetMovementCounts(ctx, tenantCode, from, to)
	if err != nil {
		return nil, err
	}
	return &MovementCountsResult{Counts: counts}, nil
}

// GetWarehouseRollup sums one SKU's position across all warehouses.
func (s *appService) GetWarehouseRollup(ctx context.Context, tenantCode, sku string) (*RollupResult, error) {
	report, err := s.reporting.GetWarehouseRollup(ctx, tenantCode, sku)
	if err != nil {
		return nil, err
	}
	return &RollupResult{Report: report}, nil
}

// LoadDefaultTenant loads the active tenant, using TENANT_CODE env var if set.
func (s *appService) LoadDefaultTenant(ctx context.Context) (*core.Tenant, error) {
	if code := os.Getenv("TENANT_CODE"); code != "" {
		t := &core.Tenant{}
		err := s.pool.QueryRow(ctx,
			"SELECT id, tenant_code, name FROM tenants WHERE tenant_code = $1", code,
		).Scan(&t.ID, &t.TenantCode, &t.Name)
		if err != nil {
			return nil, fmt.Errorf("tenant %s not found: %w", code, err)
		}
		return t, nil
	}

	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM tenants").Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count tenants: %w", err)
	}
	if count > 1 {
		return nil, fmt.Errorf("multiple tenants found; set TENANT_CODE env var (e.g. TENANT_CODE=ACME)")
	}

	t := &core.Tenant{}
	if err := s.pool.QueryRow(ctx,
		"SELECT id, tenant_code, name FROM tenants LIMIT 1",
	).Scan(&t.ID, &t.TenantCode, &t.Name); err != nil {
		return nil, fmt.Errorf("no default tenant found, have migrations run?: %w", err)
	}
	return t, nil
}

// ── private helpers ───────────────────────────────────────────────────────────

// parseQuantity parses a decimal string; validation of sign and wholeness
// happens in the core services.
func parseQuantity(raw string) (decimal.Decimal, error) {
	qty, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid quantity %q: %w", raw, err)
	}
	return qty, nil
}

// parseTransferRef parses a transfer UUID from user input.
func parseTransferRef(ref string) (uuid.UUID, error) {
	id, err := uuid.Parse(ref)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid transfer id %q: %w", ref, err)
	}
	return id, nil
}
