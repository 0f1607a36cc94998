package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// InventoryService is the only mutator of stock balances. Every operation is
// one database transaction: read and lock the balance row(s), validate,
// compute the new balance, append the movement(s), commit. A failed
// validation rolls the whole transaction back, so no movement is appended
// and no balance changes.
//
// Per-key serialization comes from the row locks: two operations on the
// same (warehouse, sku) queue on SELECT ... FOR UPDATE, so their
// read-validate-write sequences never interleave.
//
// Issue deliberately does not touch the reserved counter. Callers that
// fulfil a reservation must pair Issue with ReleaseReservation; the two
// effects are separate movements by design.
type InventoryService interface {
	// Receive adds stock, creating the balance row lazily. It never fails
	// for stock-level reasons.
	Receive(ctx context.Context, tenantCode, warehouseCode, sku string, qty decimal.Decimal, operatorID string) (*Movement, error)

	// Issue removes on-hand stock. Fails ErrInsufficientStock when qty
	// exceeds on-hand.
	Issue(ctx context.Context, tenantCode, warehouseCode, sku string, qty decimal.Decimal, operatorID string) (*Movement, error)

	// Reserve earmarks available stock (on-hand minus reserved) for pending
	// demand. Fails ErrInsufficientAvailable when qty exceeds availability.
	Reserve(ctx context.Context, tenantCode, warehouseCode, sku string, qty decimal.Decimal, operatorID string) (*Movement, error)

	// ReleaseReservation returns earmarked stock to availability.
	ReleaseReservation(ctx context.Context, tenantCode, warehouseCode, sku string, qty decimal.Decimal, operatorID string) (*Movement, error)

	// Adjust applies a signed cycle-count correction to on-hand stock.
	// The resulting on-hand must stay >= reserved and >= 0.
	Adjust(ctx context.Context, tenantCode, warehouseCode, sku string, delta decimal.Decimal, operatorID, reason string) (*Movement, error)

	// Transfer moves stock between two locations in a single transaction:
	// both legs apply or neither does. The two movements share a
	// correlation id.
	Transfer(ctx context.Context, tenantCode, fromWarehouse, toWarehouse, sku string, qty decimal.Decimal, operatorID string) (*TransferResult, error)

	// DispatchTransfer starts a two-step transfer: stock leaves the source
	// immediately and rides the in-transit counters until completed or
	// cancelled.
	DispatchTransfer(ctx context.Context, tenantCode, fromWarehouse, toWarehouse, sku string, qty decimal.Decimal, operatorID string) (*StockTransfer, error)

	// CompleteTransfer lands an in-transit transfer at its destination.
	CompleteTransfer(ctx context.Context, tenantCode string, transferID uuid.UUID, operatorID string) (*Movement, error)

	// CancelTransfer compensates an in-transit transfer: the dispatched
	// quantity returns to the source and the counters settle.
	CancelTransfer(ctx context.Context, tenantCode string, transferID uuid.UUID, operatorID string) (*Movement, error)

	// GetBalance returns the current balance for a key. An absent key is a
	// zero balance, not an error.
	GetBalance(ctx context.Context, tenantCode, warehouseCode, sku string) (Balance, error)

	// ListMovements returns movements newest first. Empty sku lists across
	// all SKUs; limit <= 0 means no limit.
	ListMovements(ctx context.Context, tenantCode, sku string, limit int) ([]Movement, error)

	// ListTransfers returns two-step transfers, optionally filtered by
	// status ("" = all), newest first.
	ListTransfers(ctx context.Context, tenantCode string, status TransferStatus) ([]StockTransfer, error)
}

type inventoryService struct {
	pool *pgxpool.Pool
	refs ReferenceService
}

func NewInventoryService(pool *pgxpool.Pool, refs ReferenceService) InventoryService {
	return &inventoryService{pool: pool, refs: refs}
}

// ValidateQuantity rejects zero, negative, and fractional quantities.
// Stock is counted in whole units; fractional input is a caller bug, not a
// rounding problem.
func ValidateQuantity(qty decimal.Decimal) error {
	if qty.Sign() <= 0 || !qty.Equal(qty.Truncate(0)) {
		return fmt.Errorf("%w: got %s", ErrInvalidQuantity, qty)
	}
	return nil
}

// ── Single-key operations ─────────────────────────────────────────────────────

func (s *inventoryService) Receive(ctx context.Context, tenantCode, warehouseCode, sku string, qty decimal.Decimal, operatorID string) (*Movement, error) {
	return s.applySingleKey(ctx, tenantCode, warehouseCode, sku, qty, operatorID, MovementReceive, "",
		func(bal *lockedBalance) error {
			bal.onHand = bal.onHand.Add(qty)
			return nil
		})
}

func (s *inventoryService) Issue(ctx context.Context, tenantCode, warehouseCode, sku string, qty decimal.Decimal, operatorID string) (*Movement, error) {
	return s.applySingleKey(ctx, tenantCode, warehouseCode, sku, qty, operatorID, MovementIssue, "",
		func(bal *lockedBalance) error {
			if bal.onHand.LessThan(qty) {
				return fmt.Errorf("%w: %s at %s has %s on hand, requested %s",
					ErrInsufficientStock, sku, warehouseCode, bal.onHand, qty)
			}
			bal.onHand = bal.onHand.Sub(qty)
			return nil
		})
}

func (s *inventoryService) Reserve(ctx context.Context, tenantCode, warehouseCode, sku string, qty decimal.Decimal, operatorID string) (*Movement, error) {
	return s.applySingleKey(ctx, tenantCode, warehouseCode, sku, qty, operatorID, MovementReserve, "",
		func(bal *lockedBalance) error {
			available := bal.onHand.Sub(bal.reserved)
			if available.LessThan(qty) {
				return fmt.Errorf("%w: %s at %s has %s available, requested %s",
					ErrInsufficientAvailable, sku, warehouseCode, available, qty)
			}
			bal.reserved = bal.reserved.Add(qty)
			return nil
		})
}

func (s *inventoryService) ReleaseReservation(ctx context.Context, tenantCode, warehouseCode, sku string, qty decimal.Decimal, operatorID string) (*Movement, error) {
	return s.applySingleKey(ctx, tenantCode, warehouseCode, sku, qty, operatorID, MovementRelease, "",
		func(bal *lockedBalance) error {
			if bal.reserved.LessThan(qty) {
				return fmt.Errorf("%w: %s at %s has %s reserved, requested %s",
					ErrReleaseExceedsReserved, sku, warehouseCode, bal.reserved, qty)
			}
			bal.reserved = bal.reserved.Sub(qty)
			return nil
		})
}

func (s *inventoryService) Adjust(ctx context.Context, tenantCode, warehouseCode, sku string, delta decimal.Decimal, operatorID, reason string) (*Movement, error) {
	if delta.IsZero() || !delta.Equal(delta.Truncate(0)) {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidQuantity, delta)
	}
	return s.applySingleKey(ctx, tenantCode, warehouseCode, sku, delta.Abs(), operatorID, MovementAdjust, reason,
		func(bal *lockedBalance) error {
			newOnHand := bal.onHand.Add(delta)
			if newOnHand.IsNegative() || newOnHand.LessThan(bal.reserved) {
				return fmt.Errorf("%w: %s at %s on hand %s, reserved %s, delta %s",
					ErrInvalidAdjustment, sku, warehouseCode, bal.onHand, bal.reserved, delta)
			}
			bal.onHand = newOnHand
			return nil
		})
}

// lockedBalance is the mutable view of a balance row held under FOR UPDATE.
type lockedBalance struct {
	id           int
	onHand       decimal.Decimal
	reserved     decimal.Decimal
	inTransitIn  decimal.Decimal
	inTransitOut decimal.Decimal
}

// applySingleKey runs the shared read-lock / validate / mutate / append /
// commit pipeline for operations touching one balance key.
func (s *inventoryService) applySingleKey(ctx context.Context, tenantCode, warehouseCode, sku string,
	qty decimal.Decimal, operatorID string, movementType MovementType, reason string,
	mutate func(*lockedBalance) error) (*Movement, error) {

	if movementType != MovementAdjust {
		if err := ValidateQuantity(qty); err != nil {
			return nil, err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tenantID, err := resolveTenantID(ctx, tx, tenantCode)
	if err != nil {
		return nil, err
	}
	warehouseID, err := resolveWarehouseID(ctx, tx, tenantID, warehouseCode)
	if err != nil {
		return nil, err
	}

	// Receive and Adjust create the balance row lazily; every other
	// operation against an absent key sees the zero balance and fails its
	// own precondition.
	createIfMissing := movementType == MovementReceive || movementType == MovementAdjust
	bal, err := lockBalanceTx(ctx, tx, tenantID, warehouseID, sku, createIfMissing)
	if err != nil {
		return nil, err
	}
	if bal == nil {
		bal = &lockedBalance{}
	}

	before := *bal
	if err := mutate(bal); err != nil {
		return nil, err
	}
	// Re-check the balance invariants before committing. An Issue into
	// reserved territory passes its own precondition but would leave
	// on-hand below reserved, so it aborts here.
	if bal.onHand.IsNegative() || bal.reserved.IsNegative() || bal.onHand.LessThan(bal.reserved) {
		kind := ErrInsufficientStock
		if movementType == MovementAdjust {
			kind = ErrInvalidAdjustment
		}
		return nil, fmt.Errorf("%w: %s at %s would leave on hand %s with %s reserved",
			kind, sku, warehouseCode, bal.onHand, bal.reserved)
	}
	if bal.id != 0 {
		if err := updateBalanceTx(ctx, tx, bal); err != nil {
			return nil, err
		}
	}

	onHandDelta := bal.onHand.Sub(before.onHand)
	mv, err := s.appendMovementTx(ctx, tx, movementInsert{
		tenantID:    tenantID,
		warehouseID: warehouseID,
		sku:         sku,
		typ:         movementType,
		quantity:    qty,
		onHandDelta: onHandDelta,
		operatorID:  operatorID,
		reason:      reason,
	})
	if err != nil {
		return nil, err
	}
	mv.WarehouseCode = warehouseCode

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit %s: %w", movementType, err)
	}
	return mv, nil
}

// ── Transfers ─────────────────────────────────────────────────────────────────

func (s *inventoryService) Transfer(ctx context.Context, tenantCode, fromWarehouse, toWarehouse, sku string, qty decimal.Decimal, operatorID string) (*TransferResult, error) {
	if err := ValidateQuantity(qty); err != nil {
		return nil, err
	}
	if fromWarehouse == toWarehouse {
		return nil, fmt.Errorf("%w: %s", ErrSameLocationTransfer, fromWarehouse)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tenantID, fromID, toID, err := s.resolveTransferEndpoints(ctx, tx, tenantCode, fromWarehouse, toWarehouse)
	if err != nil {
		return nil, err
	}

	source, dest, err := lockBalancePairTx(ctx, tx, tenantID, fromID, toID, sku)
	if err != nil {
		return nil, err
	}
	if source.onHand.LessThan(qty) {
		return nil, fmt.Errorf("%w: %s at %s has %s on hand, requested %s",
			ErrInsufficientSourceStock, sku, fromWarehouse, source.onHand, qty)
	}

	correlationID := uuid.New()

	// Source leg.
	source.onHand = source.onHand.Sub(qty)
	if source.onHand.LessThan(source.reserved) {
		return nil, fmt.Errorf("%w: %s at %s has %s reserved, cannot move %s",
			ErrInsufficientSourceStock, sku, fromWarehouse, source.reserved, qty)
	}
	if err := updateBalanceTx(ctx, tx, source); err != nil {
		return nil, err
	}
	out, err := s.appendMovementTx(ctx, tx, movementInsert{
		tenantID:      tenantID,
		warehouseID:   fromID,
		sku:           sku,
		typ:           MovementTransferOut,
		quantity:      qty,
		onHandDelta:   qty.Neg(),
		operatorID:    operatorID,
		correlationID: &correlationID,
	})
	if err != nil {
		return nil, err
	}

	// Destination leg. Any failure from here rolls the source leg back with
	// the transaction, so the compensation guarantee holds with no
	// partially-debited state ever visible.
	dest.onHand = dest.onHand.Add(qty)
	if err := updateBalanceTx(ctx, tx, dest); err != nil {
		return nil, fmt.Errorf("%w: destination leg at %s: %v", ErrTransferFailed, toWarehouse, err)
	}
	in, err := s.appendMovementTx(ctx, tx, movementInsert{
		tenantID:      tenantID,
		warehouseID:   toID,
		sku:           sku,
		typ:           MovementTransferIn,
		quantity:      qty,
		onHandDelta:   qty,
		operatorID:    operatorID,
		correlationID: &correlationID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: destination movement at %s: %v", ErrTransferFailed, toWarehouse, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}

	out.WarehouseCode = fromWarehouse
	in.WarehouseCode = toWarehouse
	return &TransferResult{Out: *out, In: *in}, nil
}

func (s *inventoryService) DispatchTransfer(ctx context.Context, tenantCode, fromWarehouse, toWarehouse, sku string, qty decimal.Decimal, operatorID string) (*StockTransfer, error) {
	if err := ValidateQuantity(qty); err != nil {
		return nil, err
	}
	if fromWarehouse == toWarehouse {
		return nil, fmt.Errorf("%w: %s", ErrSameLocationTransfer, fromWarehouse)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tenantID, fromID, toID, err := s.resolveTransferEndpoints(ctx, tx, tenantCode, fromWarehouse, toWarehouse)
	if err != nil {
		return nil, err
	}

	source, dest, err := lockBalancePairTx(ctx, tx, tenantID, fromID, toID, sku)
	if err != nil {
		return nil, err
	}
	if source.onHand.LessThan(qty) {
		return nil, fmt.Errorf("%w: %s at %s has %s on hand, requested %s",
			ErrInsufficientSourceStock, sku, fromWarehouse, source.onHand, qty)
	}

	transferID := uuid.New()

	source.onHand = source.onHand.Sub(qty)
	if source.onHand.LessThan(source.reserved) {
		return nil, fmt.Errorf("%w: %s at %s has %s reserved, cannot move %s",
			ErrInsufficientSourceStock, sku, fromWarehouse, source.reserved, qty)
	}
	source.inTransitOut = source.inTransitOut.Add(qty)
	if err := updateBalanceTx(ctx, tx, source); err != nil {
		return nil, err
	}
	dest.inTransitIn = dest.inTransitIn.Add(qty)
	if err := updateBalanceTx(ctx, tx, dest); err != nil {
		return nil, err
	}

	if _, err := s.appendMovementTx(ctx, tx, movementInsert{
		tenantID:      tenantID,
		warehouseID:   fromID,
		sku:           sku,
		typ:           MovementTransferOut,
		quantity:      qty,
		onHandDelta:   qty.Neg(),
		operatorID:    operatorID,
		correlationID: &transferID,
	}); err != nil {
		return nil, err
	}

	var dispatchedAt time.Time
	err = tx.QueryRow(ctx, `
		INSERT INTO stock_transfers (id, tenant_id, sku, from_warehouse_id, to_warehouse_id, quantity, status, operator_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING dispatched_at
	`, transferID, tenantID, sku, fromID, toID, qty, string(TransferInTransit), operatorID).Scan(&dispatchedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert stock transfer: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit dispatch: %w", err)
	}

	return &StockTransfer{
		ID:            transferID,
		TenantID:      tenantID,
		SKU:           sku,
		FromWarehouse: fromWarehouse,
		ToWarehouse:   toWarehouse,
		Quantity:      qty,
		Status:        TransferInTransit,
		OperatorID:    operatorID,
		DispatchedAt:  dispatchedAt,
	}, nil
}

func (s *inventoryService) CompleteTransfer(ctx context.Context, tenantCode string, transferID uuid.UUID, operatorID string) (*Movement, error) {
	return s.settleTransfer(ctx, tenantCode, transferID, operatorID, TransferCompleted)
}

func (s *inventoryService) CancelTransfer(ctx context.Context, tenantCode string, transferID uuid.UUID, operatorID string) (*Movement, error) {
	return s.settleTransfer(ctx, tenantCode, transferID, operatorID, TransferCancelled)
}

// settleTransfer lands (COMPLETED) or compensates (CANCELLED) an in-transit
// transfer. Completion adds the stock at the destination; cancellation is
// the saga compensation — the stock returns to the source, recorded as a
// TRANSFER_IN at the source under the same correlation id, so replay still
// balances and the pair remains reconstructible.
func (s *inventoryService) settleTransfer(ctx context.Context, tenantCode string, transferID uuid.UUID, operatorID string, outcome TransferStatus) (*Movement, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tenantID, err := resolveTenantID(ctx, tx, tenantCode)
	if err != nil {
		return nil, err
	}

	var (
		sku          string
		fromID, toID int
		qty          decimal.Decimal
		status       string
	)
	err = tx.QueryRow(ctx, `
		SELECT sku, from_warehouse_id, to_warehouse_id, quantity, status
		FROM stock_transfers
		WHERE id = $1 AND tenant_id = $2
		FOR UPDATE
	`, transferID, tenantID).Scan(&sku, &fromID, &toID, &qty, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTransfer, transferID)
		}
		return nil, fmt.Errorf("failed to lock stock transfer: %w", err)
	}
	if TransferStatus(status) != TransferInTransit {
		return nil, fmt.Errorf("%w: %s is %s", ErrTransferNotInTransit, transferID, status)
	}

	source, dest, err := lockBalancePairTx(ctx, tx, tenantID, fromID, toID, sku)
	if err != nil {
		return nil, err
	}

	source.inTransitOut = source.inTransitOut.Sub(qty)
	dest.inTransitIn = dest.inTransitIn.Sub(qty)

	landingID := toID
	reason := ""
	if outcome == TransferCancelled {
		source.onHand = source.onHand.Add(qty)
		landingID = fromID
		reason = "transfer cancelled, stock returned to source"
	} else {
		dest.onHand = dest.onHand.Add(qty)
	}

	if err := updateBalanceTx(ctx, tx, source); err != nil {
		return nil, err
	}
	if err := updateBalanceTx(ctx, tx, dest); err != nil {
		return nil, err
	}

	mv, err := s.appendMovementTx(ctx, tx, movementInsert{
		tenantID:      tenantID,
		warehouseID:   landingID,
		sku:           sku,
		typ:           MovementTransferIn,
		quantity:      qty,
		onHandDelta:   qty,
		operatorID:    operatorID,
		correlationID: &transferID,
		reason:        reason,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.QueryRow(ctx,
		"SELECT code FROM warehouses WHERE id = $1", landingID,
	).Scan(&mv.WarehouseCode); err != nil {
		return nil, fmt.Errorf("failed to resolve landing warehouse: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE stock_transfers SET status = $1, completed_at = NOW() WHERE id = $2
	`, string(outcome), transferID); err != nil {
		return nil, fmt.Errorf("failed to update transfer status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transfer settlement: %w", err)
	}
	return mv, nil
}

func (s *inventoryService) resolveTransferEndpoints(ctx context.Context, tx pgx.Tx, tenantCode, fromWarehouse, toWarehouse string) (tenantID, fromID, toID int, err error) {
	tenantID, err = resolveTenantID(ctx, tx, tenantCode)
	if err != nil {
		return 0, 0, 0, err
	}
	fromID, err = resolveWarehouseID(ctx, tx, tenantID, fromWarehouse)
	if err != nil {
		return 0, 0, 0, err
	}
	toID, err = resolveWarehouseID(ctx, tx, tenantID, toWarehouse)
	if err != nil {
		return 0, 0, 0, err
	}
	return tenantID, fromID, toID, nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *inventoryService) GetBalance(ctx context.Context, tenantCode, warehouseCode, sku string) (Balance, error) {
	bal := Balance{SKU: sku}

	tenantID, err := resolveTenantID(ctx, s.pool, tenantCode)
	if err != nil {
		return bal, err
	}
	warehouseID, err := resolveWarehouseID(ctx, s.pool, tenantID, warehouseCode)
	if err != nil {
		return bal, err
	}
	bal.TenantID = tenantID
	bal.WarehouseID = warehouseID

	err = s.pool.QueryRow(ctx, `
		SELECT qty_on_hand, qty_reserved, qty_in_transit_in, qty_in_transit_out, updated_at
		FROM stock_balances
		WHERE tenant_id = $1 AND warehouse_id = $2 AND sku = $3
	`, tenantID, warehouseID, sku).Scan(&bal.OnHand, &bal.Reserved, &bal.InTransitIn, &bal.InTransitOut, &bal.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Never materialized: the zero balance.
			return bal, nil
		}
		return bal, fmt.Errorf("failed to fetch balance: %w", err)
	}
	return bal, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, tenantCode, sku string, limit int) ([]Movement, error) {
	tenantID, err := resolveTenantID(ctx, s.pool, tenantCode)
	if err != nil {
		return nil, err
	}

	q := `
		SELECT m.id, m.tenant_id, m.warehouse_id, w.code, m.sku, m.movement_type,
		       m.quantity, m.on_hand_delta, m.operator_id, m.reference_no,
		       m.correlation_id, COALESCE(m.reason, ''), m.moved_at
		FROM stock_movements m
		JOIN warehouses w ON w.id = m.warehouse_id
		WHERE m.tenant_id = $1`
	args := []any{tenantID}
	if sku != "" {
		args = append(args, sku)
		q += fmt.Sprintf(" AND m.sku = $%d", len(args))
	}
	q += " ORDER BY m.moved_at DESC, m.created_at DESC"
	if limit > 0 {
		args = append(args, limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	var movements []Movement
	for rows.Next() {
		var m Movement
		var corr uuid.NullUUID
		if err := rows.Scan(
			&m.ID, &m.TenantID, &m.WarehouseID, &m.WarehouseCode, &m.SKU, &m.Type,
			&m.Quantity, &m.OnHandDelta, &m.OperatorID, &m.ReferenceNo,
			&corr, &m.Reason, &m.MovedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		if corr.Valid {
			id := corr.UUID
			m.CorrelationID = &id
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func (s *inventoryService) ListTransfers(ctx context.Context, tenantCode string, status TransferStatus) ([]StockTransfer, error) {
	tenantID, err := resolveTenantID(ctx, s.pool, tenantCode)
	if err != nil {
		return nil, err
	}

	q := `
		SELECT t.id, t.tenant_id, t.sku, wf.code, wt.code, t.quantity, t.status,
		       t.operator_id, t.dispatched_at, t.completed_at
		FROM stock_transfers t
		JOIN warehouses wf ON wf.id = t.from_warehouse_id
		JOIN warehouses wt ON wt.id = t.to_warehouse_id
		WHERE t.tenant_id = $1`
	args := []any{tenantID}
	if status != "" {
		args = append(args, string(status))
		q += fmt.Sprintf(" AND t.status = $%d", len(args))
	}
	q += " ORDER BY t.dispatched_at DESC"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	var transfers []StockTransfer
	for rows.Next() {
		var t StockTransfer
		if err := rows.Scan(
			&t.ID, &t.TenantID, &t.SKU, &t.FromWarehouse, &t.ToWarehouse,
			&t.Quantity, &t.Status, &t.OperatorID, &t.DispatchedAt, &t.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

// ── Transaction helpers ───────────────────────────────────────────────────────

// lockBalanceTx locks one balance row FOR UPDATE, optionally creating it
// first. Returns nil (without error) when the row is absent and creation
// was not requested — the caller sees the zero balance.
func lockBalanceTx(ctx context.Context, tx pgx.Tx, tenantID, warehouseID int, sku string, createIfMissing bool) (*lockedBalance, error) {
	if createIfMissing {
		if _, err := tx.Exec(ctx, `
			INSERT INTO stock_balances (tenant_id, warehouse_id, sku)
			VALUES ($1, $2, $3)
			ON CONFLICT (tenant_id, warehouse_id, sku) DO NOTHING
		`, tenantID, warehouseID, sku); err != nil {
			return nil, fmt.Errorf("failed to upsert balance: %w", err)
		}
	}

	var bal lockedBalance
	err := tx.QueryRow(ctx, `
		SELECT id, qty_on_hand, qty_reserved, qty_in_transit_in, qty_in_transit_out
		FROM stock_balances
		WHERE tenant_id = $1 AND warehouse_id = $2 AND sku = $3
		FOR UPDATE
	`, tenantID, warehouseID, sku).Scan(&bal.id, &bal.onHand, &bal.reserved, &bal.inTransitIn, &bal.inTransitOut)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) && !createIfMissing {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock balance: %w", err)
	}
	return &bal, nil
}

// lockBalancePairTx locks the two balance rows of a transfer. Both rows are
// created if absent and locked in ascending warehouse-id order so two
// opposing transfers cannot deadlock.
func lockBalancePairTx(ctx context.Context, tx pgx.Tx, tenantID, fromID, toID int, sku string) (source, dest *lockedBalance, err error) {
	if _, err := tx.Exec(ctx, `
		INSERT INTO stock_balances (tenant_id, warehouse_id, sku)
		VALUES ($1, $2, $4), ($1, $3, $4)
		ON CONFLICT (tenant_id, warehouse_id, sku) DO NOTHING
	`, tenantID, fromID, toID, sku); err != nil {
		return nil, nil, fmt.Errorf("failed to upsert balances: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT id, warehouse_id, qty_on_hand, qty_reserved, qty_in_transit_in, qty_in_transit_out
		FROM stock_balances
		WHERE tenant_id = $1 AND warehouse_id IN ($2, $3) AND sku = $4
		ORDER BY warehouse_id
		FOR UPDATE
	`, tenantID, fromID, toID, sku)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock balances: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bal lockedBalance
		var warehouseID int
		if err := rows.Scan(&bal.id, &warehouseID, &bal.onHand, &bal.reserved, &bal.inTransitIn, &bal.inTransitOut); err != nil {
			return nil, nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		b := bal
		switch warehouseID {
		case fromID:
			source = &b
		case toID:
			dest = &b
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error locking balances: %w", err)
	}
	if source == nil || dest == nil {
		return nil, nil, fmt.Errorf("failed to lock balances for transfer: rows missing after upsert")
	}
	return source, dest, nil
}

func updateBalanceTx(ctx context.Context, tx pgx.Tx, bal *lockedBalance) error {
	_, err := tx.Exec(ctx, `
		UPDATE stock_balances
		SET qty_on_hand = $1, qty_reserved = $2,
		    qty_in_transit_in = $3, qty_in_transit_out = $4,
		    updated_at = NOW()
		WHERE id = $5
	`, bal.onHand, bal.reserved, bal.inTransitIn, bal.inTransitOut, bal.id)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return nil
}

type movementInsert struct {
	tenantID      int
	warehouseID   int
	sku           string
	typ           MovementType
	quantity      decimal.Decimal
	onHandDelta   decimal.Decimal
	operatorID    string
	correlationID *uuid.UUID
	reason        string
}

// appendMovementTx writes one immutable ledger row inside the operation's
// transaction, generating its gapless reference number as it goes.
func (s *inventoryService) appendMovementTx(ctx context.Context, tx pgx.Tx, ins movementInsert) (*Movement, error) {
	refNo, err := s.refs.NextReferenceTx(ctx, tx, ins.tenantID, ins.typ)
	if err != nil {
		return nil, err
	}

	var reason *string
	if ins.reason != "" {
		reason = &ins.reason
	}

	id := uuid.New()
	var movedAt time.Time
	err = tx.QueryRow(ctx, `
		INSERT INTO stock_movements (id, tenant_id, warehouse_id, sku, movement_type,
		                             quantity, on_hand_delta, operator_id, reference_no,
		                             correlation_id, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING moved_at
	`, id, ins.tenantID, ins.warehouseID, ins.sku, string(ins.typ),
		ins.quantity, ins.onHandDelta, ins.operatorID, refNo,
		ins.correlationID, reason).Scan(&movedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert %s movement: %w", ins.typ, err)
	}

	return &Movement{
		ID:            id,
		TenantID:      ins.tenantID,
		WarehouseID:   ins.warehouseID,
		SKU:           ins.sku,
		Type:          ins.typ,
		Quantity:      ins.quantity,
		OnHandDelta:   ins.onHandDelta,
		OperatorID:    ins.operatorID,
		ReferenceNo:   refNo,
		CorrelationID: ins.correlationID,
		Reason:        ins.reason,
		MovedAt:       movedAt,
	}, nil
}
