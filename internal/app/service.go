package app

import (
	"context"

	"inventory-engine/internal/core"
)

// ApplicationService is the single interface all UI adapters (REPL, CLI) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// ReceiveStock records inbound stock at a warehouse.
	ReceiveStock(ctx context.Context, req StockOperationRequest) (*MovementResult, error)

	// IssueStock removes on-hand stock for sale or consumption.
	IssueStock(ctx context.Context, req StockOperationRequest) (*MovementResult, error)

	// ReserveStock earmarks available stock for pending demand.
	ReserveStock(ctx context.Context, req StockOperationRequest) (*MovementResult, error)

	// ReleaseStock returns earmarked stock to availability.
	ReleaseStock(ctx context.Context, req StockOperationRequest) (*MovementResult, error)

	// AdjustStock applies a signed cycle-count correction with a reason.
	AdjustStock(ctx context.Context, req AdjustRequest) (*MovementResult, error)

	// TransferStock moves stock between two warehouses atomically.
	TransferStock(ctx context.Context, req TransferRequest) (*TransferMovementsResult, error)

	// DispatchTransfer starts a two-step transfer; the quantity rides the
	// in-transit counters until completed or cancelled.
	DispatchTransfer(ctx context.Context, req TransferRequest) (*TransferResult, error)

	// CompleteTransfer lands an in-transit transfer at its destination.
	// ref is the transfer's UUID.
	CompleteTransfer(ctx context.Context, tenantCode, ref, operatorID string) (*MovementResult, error)

	// CancelTransfer returns an in-transit transfer's stock to its source.
	CancelTransfer(ctx context.Context, tenantCode, ref, operatorID string) (*MovementResult, error)

	// GetBalance returns the stock position for one (warehouse, sku) key.
	GetBalance(ctx context.Context, tenantCode, warehouseCode, sku string) (*BalanceResult, error)

	// ListMovements returns ledger entries newest first, optionally filtered
	// by SKU (empty = all). limit <= 0 means no limit.
	ListMovements(ctx context.Context, tenantCode, sku string, limit int) (*MovementListResult, error)

	// ListTransfers returns two-step transfers, optionally filtered by
	// status string ("" = all).
	ListTransfers(ctx context.Context, tenantCode, status string) (*TransferListResult, error)

	// GetAvailability classifies a SKU's sellability at a warehouse.
	GetAvailability(ctx context.Context, tenantCode, warehouseCode, sku string) (*AvailabilityResult, error)

	// GetWarehouseAvailability classifies every stocked SKU at a warehouse.
	GetWarehouseAvailability(ctx context.Context, tenantCode, warehouseCode string) (*AvailabilityListResult, error)

	// ListWarehouses returns all active warehouses for a tenant.
	ListWarehouses(ctx context.Context, tenantCode string) (*WarehouseListResult, error)

	// GetStockValuation values on-hand stock at catalog unit price.
	GetStockValuation(ctx context.Context, tenantCode string) (*ValuationResult, error)

	// GetLowStock lists SKUs whose total on-hand across all warehouses is
	// positive but at or below threshold.
	GetLowStock(ctx context.Context, tenantCode, threshold string) (*LowStockResult, error)

	// GetOutOfStock lists catalog SKUs with zero on-hand everywhere.
	GetOutOfStock(ctx context.Context, tenantCode string) (*OutOfStockResult, error)

	// GetMovementCounts tallies ledger activity by movement type between two
	// dates (YYYY-MM-DD, empty = unbounded).
	GetMovementCounts(ctx context.Context, tenantCode, fromDate, toDate string) (*MovementCountsResult, error)

	// GetWarehouseRollup sums one SKU's position across all warehouses.
	GetWarehouseRollup(ctx context.Context, tenantCode, sku string) (*RollupResult, error)

	// LoadDefaultTenant loads the active tenant. Uses TENANT_CODE env var if
	// set; otherwise expects exactly one tenant in the database.
	LoadDefaultTenant(ctx context.Context) (*core.Tenant, error)
}
