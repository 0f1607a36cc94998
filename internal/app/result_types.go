package app

import "inventory-engine/internal/core"

// Result types wrap core structs so adapters never import query internals
// and the facade can attach context (tenant, warehouse codes) for display.

type MovementResult struct {
	Movement *core.Movement
}

// TransferMovementsResult is the outcome of an atomic transfer: both ledger
// legs, already committed.
type TransferMovementsResult struct {
	Out *core.Movement
	In  *core.Movement
}

type TransferResult struct {
	Transfer *core.StockTransfer
}

type TransferListResult struct {
	Transfers []core.StockTransfer
}

type BalanceResult struct {
	Balance core.Balance
	// WarehouseCode echoes the request key for display.
	WarehouseCode string
}

type MovementListResult struct {
	Movements []core.Movement
}

type AvailabilityResult struct {
	Availability *core.Availability
}

type AvailabilityListResult struct {
	WarehouseCode  string
	Availabilities []core.Availability
}

type WarehouseListResult struct {
	Warehouses []core.Warehouse
}

type ValuationResult struct {
	Report *core.ValuationReport
}

type LowStockResult struct {
	Lines []core.LowStockLine
}

type OutOfStockResult struct {
	Lines []core.OutOfStockLine
}

type MovementCountsResult struct {
	Counts []core.MovementCount
}

type RollupResult struct {
	Report *core.RollupReport
}
