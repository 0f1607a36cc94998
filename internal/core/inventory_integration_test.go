package core_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"inventory-engine/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) (*pgxpool.Pool, context.Context) {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE stock_movements, stock_transfers, stock_balances,
		               reference_sequences, sales_rule_defaults, products,
		               warehouses, tenants RESTART IDENTITY CASCADE;

		INSERT INTO tenants (tenant_code, name) VALUES ('ACME', 'Acme Retail');

		INSERT INTO warehouses (tenant_id, code, name, wh_type) VALUES
		(1, 'S01', 'Downtown Store',       'STORE'),
		(1, 'S02', 'Riverside Store',      'STORE'),
		(1, 'DC1', 'Central Distribution', 'DC');

		INSERT INTO products (tenant_id, sku, name, unit_price, allow_backorder, allow_transfer) VALUES
		(1, 'SKU-RED',   'Red Jacket',   89.90, false, true),
		(1, 'SKU-BLUE',  'Blue Jacket',  89.90, true,  NULL),
		(1, 'SKU-GREEN', 'Green Jacket', 94.50, NULL,  NULL),
		(1, 'SKU-BELT',  'Leather Belt', 24.00, false, false);

		INSERT INTO sales_rule_defaults (tenant_id, allow_backorder, allow_transfer)
		VALUES (1, false, true);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool, ctx
}

func newInventoryService(pool *pgxpool.Pool) core.InventoryService {
	return core.NewInventoryService(pool, core.NewReferenceService())
}

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// countMovements counts ledger rows for a SKU (all SKUs when sku is empty).
func countMovements(t *testing.T, ctx context.Context, pool *pgxpool.Pool, sku string) int {
	t.Helper()
	var count int
	query := "SELECT COUNT(*) FROM stock_movements WHERE tenant_id = 1"
	var err error
	if sku == "" {
		err = pool.QueryRow(ctx, query).Scan(&count)
	} else {
		err = pool.QueryRow(ctx, query+" AND sku = $1", sku).Scan(&count)
	}
	if err != nil {
		t.Fatalf("Failed to count movements: %v", err)
	}
	return count
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestInventory_ReceiveCreatesBalance(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newInventoryService(pool)

	mv, err := svc.Receive(ctx, "ACME", "S01", "SKU-RED", qty(100), "op1")
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if mv.Type != core.MovementReceive {
		t.Errorf("Expected RECEIVE movement, got %s", mv.Type)
	}
	if !strings.HasPrefix(mv.ReferenceNo, "RCV-") {
		t.Errorf("Expected RCV- reference, got %s", mv.ReferenceNo)
	}
	if !mv.OnHandDelta.Equal(qty(100)) {
		t.Errorf("Expected on-hand delta 100, got %s", mv.OnHandDelta)
	}

	bal, err := svc.GetBalance(ctx, "ACME", "S01", "SKU-RED")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !bal.OnHand.Equal(qty(100)) {
		t.Errorf("Expected on_hand=100, got %s", bal.OnHand)
	}
	if !bal.Reserved.IsZero() {
		t.Errorf("Expected reserved=0, got %s", bal.Reserved)
	}
}

func TestInventory_GetBalanceAbsentKey(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newInventoryService(pool)

	bal, err := svc.GetBalance(ctx, "ACME", "S01", "SKU-GREEN")
	if err != nil {
		t.Fatalf("GetBalance on absent key should not error: %v", err)
	}
	if !bal.OnHand.IsZero() || !bal.Reserved.IsZero() {
		t.Errorf("Expected zero balance, got on_hand=%s reserved=%s", bal.OnHand, bal.Reserved)
	}
}

func TestInventory_ReserveToZeroAvailable(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newInventoryService(pool)

	if _, err := svc.Receive(ctx, "ACME", "S01", "SKU-RED", qty(10), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if _, err := svc.Reserve(ctx, "ACME", "S01", "SKU-RED", qty(10), "op1"); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}

	bal, err := svc.GetBalance(ctx, "ACME", "S01", "SKU-RED")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !bal.Available().IsZero() {
		t.Errorf("Expected available=0, got %s", bal.Available())
	}

	_, err = svc.Reserve(ctx, "ACME", "S01", "SKU-RED", qty(1), "op1")
	if !errors.Is(err, core.ErrInsufficientAvailable) {
		t.Errorf("Expected ErrInsufficientAvailable, got %v", err)
	}
}

func TestInventory_IssueInsufficientLeavesStateUntouched(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newInventoryService(pool)

	if _, err := svc.Receive(ctx, "ACME", "S01", "SKU-RED", qty(5), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}

	_, err := svc.Issue(ctx, "ACME", "S01", "SKU-RED", qty(10), "op1")
	if !errors.Is(err, core.ErrInsufficientStock) {
		t.Errorf("Expected ErrInsufficientStock, got %v", err)
	}

	bal, err := svc.GetBalance(ctx, "ACME", "S01", "SKU-RED")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !bal.OnHand.Equal(qty(5)) {
		t.Errorf("Expected on_hand unchanged at 5, got %s", bal.OnHand)
	}
	if got := countMovements(t, ctx, pool, "SKU-RED"); got != 1 {
		t.Errorf("Failed operation must not append a movement: found %d", got)
	}
}

func TestInventory_IssueDoesNotTouchReserved(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newInventoryService(pool)

	if _, err := svc.Receive(ctx, "ACME", "S01", "SKU-RED", qty(10), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if _, err := svc.Reserve(ctx, "ACME", "S01", "SKU-RED", qty(4), "op1"); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if _, err := svc.Issue(ctx, "ACME", "S01", "SKU-RED", qty(6), "op1"); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	bal, err := svc.GetBalance(ctx, "ACME", "S01", "SKU-RED")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !bal.OnHand.Equal(qty(4)) || !bal.Reserved.Equal(qty(4)) {
		t.Errorf("Expected on_hand=4 reserved=4, got %s/%s", bal.OnHand, bal.Reserved)
	}

	// Issuing into reserved territory would leave on_hand below reserved.
	_, err = svc.Issue(ctx, "ACME", "S01", "SKU-RED", qty(1), "op1")
	if !errors.Is(err, core.ErrInsufficientStock) {
		t.Errorf("Expected ErrInsufficientStock when issue would break reserved invariant, got %v", err)
	}
}

func TestInventory_ReleaseReservation(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newInventoryService(pool)

	if _, err := svc.Receive(ctx, "ACME", "S01", "SKU-RED", qty(10), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if _, err := svc.Reserve(ctx, "ACME", "S01", "SKU-RED", qty(4), "op1"); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}

	mv, err := svc.ReleaseReservation(ctx, "ACME", "S01", "SKU-RED", qty(2), "op1")
	if err != nil {
		t.Fatalf("ReleaseReservation failed: %v", err)
	}
	if mv.Type != core.MovementRelease || !mv.OnHandDelta.IsZero() {
		t.Errorf("Expected RELEASE with zero on-hand delta, got %s delta=%s", mv.Type, mv.OnHandDelta)
	}

	bal, err := svc.GetBalance(ctx, "ACME", "S01", "SKU-RED")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !bal.Reserved.Equal(qty(2)) {
		t.Errorf("Expected reserved=2, got %s", bal.Reserved)
	}

	_, err = svc.ReleaseReservation(ctx, "ACME", "S01", "SKU-RED", qty(5), "op1")
	if !errors.Is(err, core.ErrReleaseExceedsReserved) {
		t.Errorf("Expected ErrReleaseExceedsReserved, got %v", err)
	}
}

func TestInventory_InvalidQuantities(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newInventoryService(pool)

	for _, bad := range []decimal.Decimal{qty(0), qty(-5), decimal.NewFromFloat(2.5)} {
		if _, err := svc.Receive(ctx, "ACME", "S01", "SKU-RED", bad, "op1"); !errors.Is(err, core.ErrInvalidQuantity) {
			t.Errorf("Receive(%s): expected ErrInvalidQuantity, got %v", bad, err)
		}
		if _, err := svc.Issue(ctx, "ACME", "S01", "SKU-RED", bad, "op1"); !errors.Is(err, core.ErrInvalidQuantity) {
			t.Errorf("Issue(%s): expected ErrInvalidQuantity, got %v", bad, err)
		}
	}
	if got := countMovements(t, ctx, pool, ""); got != 0 {
		t.Errorf("Invalid operations must not append movements: found %d", got)
	}
}

func TestInventory_Adjust(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newInventoryService(pool)

	if _, err := svc.Receive(ctx, "ACME", "S01", "SKU-RED", qty(10), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}

	mv, err := svc.Adjust(ctx, "ACME", "S01", "SKU-RED", qty(-3), "op1", "cycle count shrinkage")
	if err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}
	if mv.Type != core.MovementAdjust {
		t.Errorf("Expected ADJUST movement, got %s", mv.Type)
	}
	if !mv.Quantity.Equal(qty(3)) || !mv.OnHandDelta.Equal(qty(-3)) {
		t.Errorf("Expected quantity=3 delta=-3, got %s/%s", mv.Quantity, mv.OnHandDelta)
	}

	bal, _ := svc.GetBalance(ctx, "ACME", "S01", "SKU-RED")
	if !bal.OnHand.Equal(qty(7)) {
		t.Errorf("Expected on_hand=7 after adjust, got %s", bal.OnHand)
	}

	// Below zero is rejected.
	if _, err := svc.Adjust(ctx, "ACME", "S01", "SKU-RED", qty(-8), "op1", "bad count"); !errors.Is(err, core.ErrInvalidAdjustment) {
		t.Errorf("Expected ErrInvalidAdjustment, got %v", err)
	}

	// Positive adjust on a fresh key materializes the balance row.
	if _, err := svc.Adjust(ctx, "ACME", "S02", "SKU-GREEN", qty(5), "op1", "found during audit"); err != nil {
		t.Fatalf("Positive adjust on fresh key failed: %v", err)
	}
	bal, _ = svc.GetBalance(ctx, "ACME", "S02", "SKU-GREEN")
	if !bal.OnHand.Equal(qty(5)) {
		t.Errorf("Expected on_hand=5, got %s", bal.OnHand)
	}

	if _, err := svc.Adjust(ctx, "ACME", "S01", "SKU-RED", qty(0), "op1", "noop"); !errors.Is(err, core.ErrInvalidQuantity) {
		t.Errorf("Expected ErrInvalidQuantity for zero delta, got %v", err)
	}
}

func TestInventory_Transfer(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newInventoryService(pool)

	if _, err := svc.Receive(ctx, "ACME", "S01", "SKU-RED", qty(20), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}

	result, err := svc.Transfer(ctx, "ACME", "S01", "S02", "SKU-RED", qty(5), "op1")
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if result.Out.Type != core.MovementTransferOut || result.In.Type != core.MovementTransferIn {
		t.Errorf("Expected TRANSFER_OUT/TRANSFER_IN pair, got %s/%s", result.Out.Type, result.In.Type)
	}
	if result.Out.CorrelationID == nil || result.In.CorrelationID == nil ||
		*result.Out.CorrelationID != *result.In.CorrelationID {
		t.Error("Transfer legs must share a correlation id")
	}

	from, _ := svc.GetBalance(ctx, "ACME", "S01", "SKU-RED")
	to, _ := svc.GetBalance(ctx, "ACME", "S02", "SKU-RED")
	if !from.OnHand.Equal(qty(15)) {
		t.Errorf("Expected source on_hand=15, got %s", from.OnHand)
	}
	if !to.OnHand.Equal(qty(5)) {
		t.Errorf("Expected destination on_hand=5, got %s", to.OnHand)
	}
}

func TestInventory_TransferFailures(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newInventoryService(pool)

	if _, err := svc.Receive(ctx, "ACME", "S01", "SKU-RED", qty(3), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}

	if _, err := svc.Transfer(ctx, "ACME", "S01", "S01", "SKU-RED", qty(1), "op1"); !errors.Is(err, core.ErrSameLocationTransfer) {
		t.Errorf("Expected ErrSameLocationTransfer, got %v", err)
	}
	if _, err := svc.Transfer(ctx, "ACME", "S01", "NOPE", "SKU-RED", qty(1), "op1"); !errors.Is(err, core.ErrUnknownLocation) {
		t.Errorf("Expected ErrUnknownLocation, got %v", err)
	}
	if _, err := svc.Transfer(ctx, "ACME", "S01", "S02", "SKU-RED", qty(10), "op1"); !errors.Is(err, core.ErrInsufficientSourceStock) {
		t.Errorf("Expected ErrInsufficientSourceStock, got %v", err)
	}

	// No partial debit after any failure.
	bal, _ := svc.GetBalance(ctx, "ACME", "S01", "SKU-RED")
	if !bal.OnHand.Equal(qty(3)) {
		t.Errorf("Expected source on_hand unchanged at 3, got %s", bal.OnHand)
	}
	if got := countMovements(t, ctx, pool, "SKU-RED"); got != 1 {
		t.Errorf("Failed transfers must not append movements: found %d", got)
	}
}

func TestInventory_ConcurrentIssues(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newInventoryService(pool)

	if _, err := svc.Receive(ctx, "ACME", "S01", "SKU-RED", qty(5), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}

	// Two concurrent issues of the full quantity: exactly one must win.
	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Issue(ctx, "ACME", "S01", "SKU-RED", qty(5), "op1")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, insufficient int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, core.ErrInsufficientStock):
			insufficient++
		default:
			t.Errorf("Unexpected error from concurrent issue: %v", err)
		}
	}
	if successes != 1 || insufficient != 1 {
		t.Errorf("Expected exactly one success and one ErrInsufficientStock, got %d/%d", successes, insufficient)
	}

	bal, _ := svc.GetBalance(ctx, "ACME", "S01", "SKU-RED")
	if !bal.OnHand.IsZero() {
		t.Errorf("Expected final on_hand=0, got %s", bal.OnHand)
	}
}

func TestInventory_ReplayProperty(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newInventoryService(pool)

	ops := []func() error{
		func() error { _, err := svc.Receive(ctx, "ACME", "S01", "SKU-RED", qty(50), "op1"); return err },
		func() error { _, err := svc.Issue(ctx, "ACME", "S01", "SKU-RED", qty(12), "op1"); return err },
		func() error { _, err := svc.Reserve(ctx, "ACME", "S01", "SKU-RED", qty(8), "op1"); return err },
		func() error {
			_, err := svc.ReleaseReservation(ctx, "ACME", "S01", "SKU-RED", qty(3), "op1")
			return err
		},
		func() error {
			_, err := svc.Adjust(ctx, "ACME", "S01", "SKU-RED", qty(-2), "op1", "shrinkage")
			return err
		},
		func() error { _, err := svc.Transfer(ctx, "ACME", "S01", "S02", "SKU-RED", qty(10), "op1"); return err },
		func() error { _, err := svc.Receive(ctx, "ACME", "S02", "SKU-RED", qty(7), "op1"); return err },
	}
	for i, op := range ops {
		if err := op(); err != nil {
			t.Fatalf("Operation %d failed: %v", i, err)
		}
	}

	// Replaying the signed deltas must reproduce every on-hand balance.
	rows, err := pool.Query(ctx, `
		SELECT b.warehouse_id, b.qty_on_hand,
		       COALESCE((SELECT SUM(m.on_hand_delta) FROM stock_movements m
		                 WHERE m.warehouse_id = b.warehouse_id AND m.sku = b.sku), 0)
		FROM stock_balances b
		WHERE b.sku = 'SKU-RED'
	`)
	if err != nil {
		t.Fatalf("Replay query failed: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var warehouseID int
		var onHand, replayed decimal.Decimal
		if err := rows.Scan(&warehouseID, &onHand, &replayed); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		if !onHand.Equal(replayed) {
			t.Errorf("Warehouse %d: on_hand=%s but replay=%s", warehouseID, onHand, replayed)
		}
	}
}

func TestInventory_ListMovements(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newInventoryService(pool)

	if _, err := svc.Receive(ctx, "ACME", "S01", "SKU-RED", qty(10), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if _, err := svc.Receive(ctx, "ACME", "S01", "SKU-BLUE", qty(5), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if _, err := svc.Issue(ctx, "ACME", "S01", "SKU-RED", qty(2), "op1"); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	all, err := svc.ListMovements(ctx, "ACME", "", 0)
	if err != nil {
		t.Fatalf("ListMovements failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 movements, got %d", len(all))
	}
	// Newest first.
	if all[0].Type != core.MovementIssue {
		t.Errorf("Expected newest movement first (ISSUE), got %s", all[0].Type)
	}

	reds, err := svc.ListMovements(ctx, "ACME", "SKU-RED", 0)
	if err != nil {
		t.Fatalf("ListMovements filtered failed: %v", err)
	}
	if len(reds) != 2 {
		t.Errorf("Expected 2 SKU-RED movements, got %d", len(reds))
	}
}

func TestInventory_DispatchAndComplete(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newInventoryService(pool)

	if _, err := svc.Receive(ctx, "ACME", "DC1", "SKU-RED", qty(50), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}

	transfer, err := svc.DispatchTransfer(ctx, "ACME", "DC1", "S01", "SKU-RED", qty(20), "op1")
	if err != nil {
		t.Fatalf("DispatchTransfer failed: %v", err)
	}
	if transfer.Status != core.TransferInTransit {
		t.Errorf("Expected IN_TRANSIT, got %s", transfer.Status)
	}

	source, _ := svc.GetBalance(ctx, "ACME", "DC1", "SKU-RED")
	dest, _ := svc.GetBalance(ctx, "ACME", "S01", "SKU-RED")
	if !source.OnHand.Equal(qty(30)) || !source.InTransitOut.Equal(qty(20)) {
		t.Errorf("After dispatch: expected source 30/out 20, got %s/%s", source.OnHand, source.InTransitOut)
	}
	if !dest.OnHand.IsZero() || !dest.InTransitIn.Equal(qty(20)) {
		t.Errorf("After dispatch: expected dest 0/in 20, got %s/%s", dest.OnHand, dest.InTransitIn)
	}

	mv, err := svc.CompleteTransfer(ctx, "ACME", transfer.ID, "op2")
	if err != nil {
		t.Fatalf("CompleteTransfer failed: %v", err)
	}
	if mv.Type != core.MovementTransferIn {
		t.Errorf("Expected TRANSFER_IN on completion, got %s", mv.Type)
	}

	source, _ = svc.GetBalance(ctx, "ACME", "DC1", "SKU-RED")
	dest, _ = svc.GetBalance(ctx, "ACME", "S01", "SKU-RED")
	if !source.InTransitOut.IsZero() || !dest.InTransitIn.IsZero() {
		t.Error("In-transit counters must settle on completion")
	}
	if !dest.OnHand.Equal(qty(20)) {
		t.Errorf("Expected dest on_hand=20, got %s", dest.OnHand)
	}

	// A settled transfer cannot be settled again.
	if _, err := svc.CompleteTransfer(ctx, "ACME", transfer.ID, "op2"); !errors.Is(err, core.ErrTransferNotInTransit) {
		t.Errorf("Expected ErrTransferNotInTransit, got %v", err)
	}
}

func TestInventory_DispatchAndCancel(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newInventoryService(pool)

	if _, err := svc.Receive(ctx, "ACME", "DC1", "SKU-RED", qty(50), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}

	transfer, err := svc.DispatchTransfer(ctx, "ACME", "DC1", "S01", "SKU-RED", qty(20), "op1")
	if err != nil {
		t.Fatalf("DispatchTransfer failed: %v", err)
	}

	mv, err := svc.CancelTransfer(ctx, "ACME", transfer.ID, "op2")
	if err != nil {
		t.Fatalf("CancelTransfer failed: %v", err)
	}
	// Compensation lands the stock back at the source under the same id.
	if mv.Type != core.MovementTransferIn {
		t.Errorf("Expected compensating TRANSFER_IN, got %s", mv.Type)
	}
	if mv.CorrelationID == nil || *mv.CorrelationID != transfer.ID {
		t.Error("Compensation must carry the transfer id as correlation id")
	}

	source, _ := svc.GetBalance(ctx, "ACME", "DC1", "SKU-RED")
	dest, _ := svc.GetBalance(ctx, "ACME", "S01", "SKU-RED")
	if !source.OnHand.Equal(qty(50)) || !source.InTransitOut.IsZero() {
		t.Errorf("After cancel: expected source restored to 50, got %s (out=%s)", source.OnHand, source.InTransitOut)
	}
	if !dest.OnHand.IsZero() || !dest.InTransitIn.IsZero() {
		t.Errorf("After cancel: expected dest untouched, got %s (in=%s)", dest.OnHand, dest.InTransitIn)
	}

	transfers, err := svc.ListTransfers(ctx, "ACME", core.TransferCancelled)
	if err != nil {
		t.Fatalf("ListTransfers failed: %v", err)
	}
	if len(transfers) != 1 || transfers[0].Status != core.TransferCancelled {
		t.Errorf("Expected one CANCELLED transfer, got %+v", transfers)
	}
}

func TestInventory_GaplessReferences(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newInventoryService(pool)

	var refs []string
	for i := 0; i < 3; i++ {
		mv, err := svc.Receive(ctx, "ACME", "S01", "SKU-RED", qty(1), "op1")
		if err != nil {
			t.Fatalf("Receive %d failed: %v", i, err)
		}
		refs = append(refs, mv.ReferenceNo)
	}
	// A failed operation between successes must not burn a number.
	if _, err := svc.Issue(ctx, "ACME", "S01", "SKU-RED", qty(100), "op1"); err == nil {
		t.Fatal("Expected issue to fail")
	}
	mv, err := svc.Receive(ctx, "ACME", "S01", "SKU-RED", qty(1), "op1")
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	refs = append(refs, mv.ReferenceNo)

	for i, ref := range refs {
		if !strings.HasSuffix(ref, fmt.Sprintf("-0000%d", i+1)) {
			t.Errorf("Expected sequential reference ending -0000%d, got %s", i+1, ref)
		}
	}
}
