package core_test

import (
	"errors"
	"testing"

	"inventory-engine/internal/core"
)

func TestWarehouse_Listing(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := core.NewWarehouseService(pool)

	warehouses, err := svc.GetWarehouses(ctx, "ACME")
	if err != nil {
		t.Fatalf("GetWarehouses failed: %v", err)
	}
	if len(warehouses) != 3 {
		t.Fatalf("Expected 3 warehouses, got %d", len(warehouses))
	}

	dcs, err := svc.GetDistributionCenters(ctx, "ACME")
	if err != nil {
		t.Fatalf("GetDistributionCenters failed: %v", err)
	}
	if len(dcs) != 1 || dcs[0].Code != "DC1" {
		t.Errorf("Expected single DC 'DC1', got %+v", dcs)
	}
}

func TestWarehouse_UnknownCode(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := core.NewWarehouseService(pool)

	_, err := svc.GetWarehouse(ctx, "ACME", "NOPE")
	if !errors.Is(err, core.ErrUnknownLocation) {
		t.Errorf("Expected ErrUnknownLocation, got %v", err)
	}
}
