package core_test

import (
	"testing"
	"time"

	"inventory-engine/internal/core"

	"github.com/shopspring/decimal"
)

func TestReporting_StockValuation(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	inv := newInventoryService(pool)
	reporting := core.NewReportingService(pool)

	// 10 × 89.90 across two warehouses + 5 × 24.00.
	if _, err := inv.Receive(ctx, "ACME", "S01", "SKU-RED", qty(6), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if _, err := inv.Receive(ctx, "ACME", "DC1", "SKU-RED", qty(4), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if _, err := inv.Receive(ctx, "ACME", "S01", "SKU-BELT", qty(5), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}

	report, err := reporting.GetStockValuation(ctx, "ACME")
	if err != nil {
		t.Fatalf("GetStockValuation failed: %v", err)
	}
	if len(report.Lines) != 2 {
		t.Fatalf("Expected 2 valuation lines, got %d", len(report.Lines))
	}

	wantTotal := decimal.NewFromFloat(89.90).Mul(qty(10)).Add(decimal.NewFromFloat(24.00).Mul(qty(5)))
	if !report.TotalValue.Equal(wantTotal) {
		t.Errorf("Expected total %s, got %s", wantTotal, report.TotalValue)
	}
	for _, line := range report.Lines {
		if line.SKU == "SKU-RED" && !line.OnHand.Equal(qty(10)) {
			t.Errorf("Expected SKU-RED on_hand summed to 10, got %s", line.OnHand)
		}
	}
}

func TestReporting_LowStock(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	inv := newInventoryService(pool)
	reporting := core.NewReportingService(pool)

	// SKU-RED sits at 3 across two warehouses; SKU-BELT is comfortably
	// stocked and must not appear.
	if _, err := inv.Receive(ctx, "ACME", "S01", "SKU-RED", qty(2), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if _, err := inv.Receive(ctx, "ACME", "S02", "SKU-RED", qty(1), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if _, err := inv.Receive(ctx, "ACME", "S01", "SKU-BELT", qty(50), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}

	lines, err := reporting.GetLowStock(ctx, "ACME", qty(5))
	if err != nil {
		t.Fatalf("GetLowStock failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("Expected 1 low-stock line, got %d", len(lines))
	}
	if lines[0].SKU != "SKU-RED" || !lines[0].OnHand.Equal(qty(3)) {
		t.Errorf("Expected SKU-RED with total on_hand=3, got %+v", lines[0])
	}
}

func TestReporting_FullyReservedIsLowStockNotOutOfStock(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	inv := newInventoryService(pool)
	reporting := core.NewReportingService(pool)

	// Low/out-of-stock cut on what is on the shelf, not on availability:
	// stock that is fully reserved is still physically present.
	if _, err := inv.Receive(ctx, "ACME", "S02", "SKU-BLUE", qty(5), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if _, err := inv.Reserve(ctx, "ACME", "S02", "SKU-BLUE", qty(5), "op1"); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}

	lines, err := reporting.GetLowStock(ctx, "ACME", qty(10))
	if err != nil {
		t.Fatalf("GetLowStock failed: %v", err)
	}
	if len(lines) != 1 || lines[0].SKU != "SKU-BLUE" {
		t.Fatalf("Expected SKU-BLUE in low stock, got %+v", lines)
	}
	if !lines[0].OnHand.Equal(qty(5)) || !lines[0].Available.Equal(qty(0)) {
		t.Errorf("Expected on_hand=5 available=0, got %+v", lines[0])
	}

	oos, err := reporting.GetOutOfStock(ctx, "ACME")
	if err != nil {
		t.Fatalf("GetOutOfStock failed: %v", err)
	}
	for _, l := range oos {
		if l.SKU == "SKU-BLUE" {
			t.Error("SKU-BLUE has 5 on hand and must not be out of stock")
		}
	}
}

func TestReporting_OutOfStockIncludesUnstockedCatalog(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	inv := newInventoryService(pool)
	reporting := core.NewReportingService(pool)

	// Only SKU-RED is stocked; the other three catalog SKUs never had a
	// balance row and must still be reported.
	if _, err := inv.Receive(ctx, "ACME", "S01", "SKU-RED", qty(9), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}

	lines, err := reporting.GetOutOfStock(ctx, "ACME")
	if err != nil {
		t.Fatalf("GetOutOfStock failed: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("Expected 3 out-of-stock lines, got %d", len(lines))
	}
	for _, l := range lines {
		if l.SKU == "SKU-RED" {
			t.Error("SKU-RED has stock and must not be listed")
		}
	}
}

func TestReporting_MovementCounts(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	inv := newInventoryService(pool)
	reporting := core.NewReportingService(pool)

	if _, err := inv.Receive(ctx, "ACME", "S01", "SKU-RED", qty(10), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if _, err := inv.Receive(ctx, "ACME", "S01", "SKU-BLUE", qty(10), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if _, err := inv.Issue(ctx, "ACME", "S01", "SKU-RED", qty(3), "op1"); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	counts, err := reporting.GetMovementCounts(ctx, "ACME", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetMovementCounts failed: %v", err)
	}

	byType := make(map[core.MovementType]core.MovementCount)
	for _, c := range counts {
		byType[c.Type] = c
	}
	if c := byType[core.MovementReceive]; c.Count != 2 || !c.TotalQuantity.Equal(qty(20)) {
		t.Errorf("Expected 2 RECEIVE totalling 20, got %d/%s", c.Count, c.TotalQuantity)
	}
	if c := byType[core.MovementIssue]; c.Count != 1 || !c.TotalQuantity.Equal(qty(3)) {
		t.Errorf("Expected 1 ISSUE totalling 3, got %d/%s", c.Count, c.TotalQuantity)
	}

	// A window in the far past sees nothing.
	past, err := reporting.GetMovementCounts(ctx, "ACME",
		time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2000, 12, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetMovementCounts with window failed: %v", err)
	}
	if len(past) != 0 {
		t.Errorf("Expected no movements in past window, got %d types", len(past))
	}
}

func TestReporting_WarehouseRollup(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	inv := newInventoryService(pool)
	reporting := core.NewReportingService(pool)

	if _, err := inv.Receive(ctx, "ACME", "S01", "SKU-RED", qty(10), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if _, err := inv.Receive(ctx, "ACME", "DC1", "SKU-RED", qty(40), "op1"); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if _, err := inv.Reserve(ctx, "ACME", "S01", "SKU-RED", qty(2), "op1"); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if _, err := inv.DispatchTransfer(ctx, "ACME", "DC1", "S02", "SKU-RED", qty(5), "op1"); err != nil {
		t.Fatalf("DispatchTransfer failed: %v", err)
	}

	report, err := reporting.GetWarehouseRollup(ctx, "ACME", "SKU-RED")
	if err != nil {
		t.Fatalf("GetWarehouseRollup failed: %v", err)
	}
	// S01, DC1, plus the S02 row materialized by the dispatch.
	if len(report.Lines) != 3 {
		t.Fatalf("Expected 3 rollup lines, got %d", len(report.Lines))
	}
	if !report.TotalOnHand.Equal(qty(45)) {
		t.Errorf("Expected total on_hand=45 (10 + 35 in-warehouse), got %s", report.TotalOnHand)
	}
	if !report.TotalReserved.Equal(qty(2)) {
		t.Errorf("Expected total reserved=2, got %s", report.TotalReserved)
	}
	if !report.TotalInflight.Equal(qty(5)) {
		t.Errorf("Expected 5 in flight, got %s", report.TotalInflight)
	}
}
