package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Warehouse is a stocking location within a tenant. STORE and DC locations
// hold sellable stock; VIRTUAL locations exist for drop-ship style flows.
type Warehouse struct {
	ID        int
	TenantID  int
	Code      string
	Name      string
	Type      WarehouseType
	IsActive  bool
	CreatedAt time.Time
}

type WarehouseType string

const (
	WarehouseStore   WarehouseType = "STORE"
	WarehouseDC      WarehouseType = "DC"
	WarehouseVirtual WarehouseType = "VIRTUAL"
)

// Balance is the current stock position for one (warehouse, sku) key.
// A key with no row behaves as the zero balance; rows are created lazily by
// the first Receive and never deleted.
type Balance struct {
	TenantID     int
	WarehouseID  int
	SKU          string
	OnHand       decimal.Decimal
	Reserved     decimal.Decimal
	InTransitIn  decimal.Decimal
	InTransitOut decimal.Decimal
	UpdatedAt    time.Time
}

// Available is the quantity still open to commitment: on-hand minus reserved.
func (b Balance) Available() decimal.Decimal {
	return b.OnHand.Sub(b.Reserved)
}

// MovementType is the closed set of stock-affecting event kinds.
type MovementType string

const (
	MovementReceive     MovementType = "RECEIVE"
	MovementIssue       MovementType = "ISSUE"
	MovementReserve     MovementType = "RESERVE"
	MovementRelease     MovementType = "RELEASE"
	MovementTransferOut MovementType = "TRANSFER_OUT"
	MovementTransferIn  MovementType = "TRANSFER_IN"
	MovementAdjust      MovementType = "ADJUST"
)

// OnHandSign is the on-hand direction implied by the movement type:
// +1 adds stock, -1 removes it, 0 for reservation-only movements.
// ADJUST carries its own signed delta and reports 0 here.
func (t MovementType) OnHandSign() int {
	switch t {
	case MovementReceive, MovementTransferIn:
		return 1
	case MovementIssue, MovementTransferOut:
		return -1
	default:
		return 0
	}
}

// ReferencePrefix is the prefix used for this movement kind's gapless
// reference numbers, e.g. RCV-2026-00017.
func (t MovementType) ReferencePrefix() string {
	switch t {
	case MovementReceive:
		return "RCV"
	case MovementIssue:
		return "ISS"
	case MovementReserve:
		return "RSV"
	case MovementRelease:
		return "REL"
	case MovementTransferOut:
		return "TRO"
	case MovementTransferIn:
		return "TRI"
	case MovementAdjust:
		return "ADJ"
	}
	return "MOV"
}

// Movement is one immutable row of the stock ledger. Quantity is always the
// positive magnitude of the change; OnHandDelta is the signed on-hand effect
// (zero for RESERVE/RELEASE). Replaying SUM(OnHandDelta) over a key must
// reproduce that key's on-hand balance.
type Movement struct {
	ID            uuid.UUID
	TenantID      int
	WarehouseID   int
	WarehouseCode string
	SKU           string
	Type          MovementType
	Quantity      decimal.Decimal
	OnHandDelta   decimal.Decimal
	OperatorID    string
	ReferenceNo   string
	CorrelationID *uuid.UUID
	Reason        string
	MovedAt       time.Time
}

// TransferResult pairs the two legs of a completed stock transfer.
type TransferResult struct {
	Out Movement
	In  Movement
}

// TransferStatus tracks a two-step transfer's lifecycle.
type TransferStatus string

const (
	TransferInTransit TransferStatus = "IN_TRANSIT"
	TransferCompleted TransferStatus = "COMPLETED"
	TransferCancelled TransferStatus = "CANCELLED"
)

// StockTransfer is an in-flight (or settled) two-step transfer. While
// IN_TRANSIT the quantity is counted in the source's in-transit-out and the
// destination's in-transit-in.
type StockTransfer struct {
	ID            uuid.UUID
	TenantID      int
	SKU           string
	FromWarehouse string
	ToWarehouse   string
	Quantity      decimal.Decimal
	Status        TransferStatus
	OperatorID    string
	DispatchedAt  time.Time
	CompletedAt   *time.Time
}

// SalesRule is the catalog-owned selling policy the classifier consumes.
type SalesRule struct {
	SKU            string
	AllowBackorder bool
	AllowTransfer  bool
}

// StockStatus is the availability classification consumed by merchandising
// and the recommendation module.
type StockStatus string

const (
	StatusInStock      StockStatus = "IN_STOCK"
	StatusBackorder    StockStatus = "BACKORDER"
	StatusTransferable StockStatus = "TRANSFERABLE"
	StatusUnavailable  StockStatus = "UNAVAILABLE"
)

// Tenant is the owning retailer (read-only reference data here).
type Tenant struct {
	ID         int
	TenantCode string
	Name       string
}
