// verify-db audits the live database: it replays the movement ledger and
// checks that every balance row matches the sum of its movements, and that
// the in-transit counters agree with the open stock transfers.
//
// Usage: go run ./cmd/verify-db
package main

import (
	"context"
	"log"
	"os"

	"inventory-engine/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	failures := 0
	failures += auditOnHandReplay(ctx, pool)
	failures += auditReservedReplay(ctx, pool)
	failures += auditInTransit(ctx, pool)

	if failures > 0 {
		log.Fatalf("[FAIL] %d audit failure(s) found", failures)
	}
	log.Println("[OK] ledger replay matches all balances")
	os.Exit(0)
}

// auditOnHandReplay verifies SUM(on_hand_delta) == qty_on_hand for every
// balance key. A mismatch means a balance was mutated outside an operation
// or a movement was lost.
func auditOnHandReplay(ctx context.Context, pool *pgxpool.Pool) int {
	rows, err := pool.Query(ctx, `
		SELECT b.tenant_id, w.code, b.sku, b.qty_on_hand,
		       COALESCE((
		           SELECT SUM(m.on_hand_delta)
		           FROM stock_movements m
		           WHERE m.tenant_id = b.tenant_id
		             AND m.warehouse_id = b.warehouse_id
		             AND m.sku = b.sku
		       ), 0) AS replayed
		FROM stock_balances b
		JOIN warehouses w ON w.id = b.warehouse_id
	`)
	if err != nil {
		log.Fatalf("[ERROR] on-hand replay query failed: %v", err)
	}
	defer rows.Close()

	failures := 0
	for rows.Next() {
		var tenantID int
		var warehouse, sku string
		var onHand, replayed decimal.Decimal
		if err := rows.Scan(&tenantID, &warehouse, &sku, &onHand, &replayed); err != nil {
			log.Fatalf("[ERROR] scan failed: %v", err)
		}
		if !onHand.Equal(replayed) {
			log.Printf("[MISMATCH] on-hand %s@%s (tenant %d): balance=%s replay=%s",
				sku, warehouse, tenantID, onHand, replayed)
			failures++
		}
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("[ERROR] on-hand replay: %v", err)
	}
	return failures
}

// auditReservedReplay verifies qty_reserved == SUM(RESERVE) - SUM(RELEASE).
func auditReservedReplay(ctx context.Context, pool *pgxpool.Pool) int {
	rows, err := pool.Query(ctx, `
		SELECT b.tenant_id, w.code, b.sku, b.qty_reserved,
		       COALESCE((
		           SELECT SUM(CASE m.movement_type WHEN 'RESERVE' THEN m.quantity ELSE -m.quantity END)
		           FROM stock_movements m
		           WHERE m.tenant_id = b.tenant_id
		             AND m.warehouse_id = b.warehouse_id
		             AND m.sku = b.sku
		             AND m.movement_type IN ('RESERVE', 'RELEASE')
		       ), 0) AS replayed
		FROM stock_balances b
		JOIN warehouses w ON w.id = b.warehouse_id
	`)
	if err != nil {
		log.Fatalf("[ERROR] reserved replay query failed: %v", err)
	}
	defer rows.Close()

	failures := 0
	for rows.Next() {
		var tenantID int
		var warehouse, sku string
		var reserved, replayed decimal.Decimal
		if err := rows.Scan(&tenantID, &warehouse, &sku, &reserved, &replayed); err != nil {
			log.Fatalf("[ERROR] scan failed: %v", err)
		}
		if !reserved.Equal(replayed) {
			log.Printf("[MISMATCH] reserved %s@%s (tenant %d): balance=%s replay=%s",
				sku, warehouse, tenantID, reserved, replayed)
			failures++
		}
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("[ERROR] reserved replay: %v", err)
	}
	return failures
}

// auditInTransit verifies the in-transit counters against the IN_TRANSIT
// rows in stock_transfers.
func auditInTransit(ctx context.Context, pool *pgxpool.Pool) int {
	rows, err := pool.Query(ctx, `
		SELECT b.tenant_id, w.code, b.sku, b.qty_in_transit_out, b.qty_in_transit_in,
		       COALESCE((
		           SELECT SUM(t.quantity) FROM stock_transfers t
		           WHERE t.tenant_id = b.tenant_id AND t.sku = b.sku
		             AND t.from_warehouse_id = b.warehouse_id AND t.status = 'IN_TRANSIT'
		       ), 0) AS open_out,
		       COALESCE((
		           SELECT SUM(t.quantity) FROM stock_transfers t
		           WHERE t.tenant_id = b.tenant_id AND t.sku = b.sku
		             AND t.to_warehouse_id = b.warehouse_id AND t.status = 'IN_TRANSIT'
		       ), 0) AS open_in
		FROM stock_balances b
		JOIN warehouses w ON w.id = b.warehouse_id
	`)
	if err != nil {
		log.Fatalf("[ERROR] in-transit audit query failed: %v", err)
	}
	defer rows.Close()

	failures := 0
	for rows.Next() {
		var tenantID int
		var warehouse, sku string
		var transitOut, transitIn, openOut, openIn decimal.Decimal
		if err := rows.Scan(&tenantID, &warehouse, &sku, &transitOut, &transitIn, &openOut, &openIn); err != nil {
			log.Fatalf("[ERROR] scan failed: %v", err)
		}
		if !transitOut.Equal(openOut) {
			log.Printf("[MISMATCH] in-transit-out %s@%s (tenant %d): counter=%s transfers=%s",
				sku, warehouse, tenantID, transitOut, openOut)
			failures++
		}
		if !transitIn.Equal(openIn) {
			log.Printf("[MISMATCH] in-transit-in %s@%s (tenant %d): counter=%s transfers=%s",
				sku, warehouse, tenantID, transitIn, openIn)
			failures++
		}
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("[ERROR] in-transit audit: %v", err)
	}
	return failures
}
