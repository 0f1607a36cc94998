// restore-seed is a one-shot tool to restore the demo tenant's seed data:
// warehouses, catalog products with sales-rule flags, tenant defaults, and
// opening stock. Run it against a fresh or wiped database after migrations.
//
// Usage: go run ./cmd/restore-seed
package main

import (
	"context"
	"log"
	"os"

	"inventory-engine/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Clearing demo tenant stock data...")
	_, err = tx.Exec(ctx, `
		DELETE FROM stock_movements WHERE tenant_id IN (
			SELECT id FROM tenants WHERE tenant_code = 'ACME'
		);
		DELETE FROM stock_transfers WHERE tenant_id IN (
			SELECT id FROM tenants WHERE tenant_code = 'ACME'
		);
		DELETE FROM stock_balances WHERE tenant_id IN (
			SELECT id FROM tenants WHERE tenant_code = 'ACME'
		);
		DELETE FROM reference_sequences WHERE tenant_id IN (
			SELECT id FROM tenants WHERE tenant_code = 'ACME'
		);
	`)
	if err != nil {
		log.Fatalf("Failed to clear stock data: %v", err)
	}

	log.Println("Restoring tenant...")
	_, err = tx.Exec(ctx, `
		INSERT INTO tenants (tenant_code, name)
		VALUES ('ACME', 'Acme Retail')
		ON CONFLICT (tenant_code) DO UPDATE
		  SET name = EXCLUDED.name;
	`)
	if err != nil {
		log.Fatalf("Failed to restore tenant: %v", err)
	}

	log.Println("Restoring warehouses...")
	_, err = tx.Exec(ctx, `
		INSERT INTO warehouses (tenant_id, code, name, wh_type)
		SELECT t.id, w.code, w.name, w.wh_type
		FROM tenants t
		CROSS JOIN (VALUES
		    ('S01', 'Downtown Store',       'STORE'),
		    ('S02', 'Riverside Store',      'STORE'),
		    ('DC1', 'Central Distribution', 'DC'),
		    ('VRT', 'Dropship Virtual',     'VIRTUAL')
		) AS w(code, name, wh_type)
		WHERE t.tenant_code = 'ACME'
		ON CONFLICT (tenant_id, code) DO UPDATE
		  SET name = EXCLUDED.name,
		      wh_type = EXCLUDED.wh_type;
	`)
	if err != nil {
		log.Fatalf("Failed to restore warehouses: %v", err)
	}

	log.Println("Restoring catalog products...")
	_, err = tx.Exec(ctx, `
		INSERT INTO products (tenant_id, sku, name, unit_price, allow_backorder, allow_transfer)
		SELECT t.id, p.sku, p.name, p.unit_price::numeric, p.allow_backorder::boolean, p.allow_transfer::boolean
		FROM tenants t
		CROSS JOIN (VALUES
		    ('SKU-RED',   'Red Jacket',      '89.90', 'false', 'true'),
		    ('SKU-BLUE',  'Blue Jacket',     '89.90', 'true',  NULL),
		    ('SKU-GREEN', 'Green Jacket',    '94.50', NULL,    NULL),
		    ('SKU-BELT',  'Leather Belt',    '24.00', 'false', 'false'),
		    ('SKU-CAP',   'Canvas Cap',      '15.00', NULL,    'true')
		) AS p(sku, name, unit_price, allow_backorder, allow_transfer)
		WHERE t.tenant_code = 'ACME'
		ON CONFLICT (tenant_id, sku) DO UPDATE
		  SET name = EXCLUDED.name,
		      unit_price = EXCLUDED.unit_price,
		      allow_backorder = EXCLUDED.allow_backorder,
		      allow_transfer = EXCLUDED.allow_transfer;
	`)
	if err != nil {
		log.Fatalf("Failed to restore products: %v", err)
	}

	log.Println("Restoring sales-rule defaults...")
	_, err = tx.Exec(ctx, `
		INSERT INTO sales_rule_defaults (tenant_id, allow_backorder, allow_transfer)
		SELECT id, false, true FROM tenants WHERE tenant_code = 'ACME'
		ON CONFLICT (tenant_id) DO UPDATE
		  SET allow_backorder = EXCLUDED.allow_backorder,
		      allow_transfer = EXCLUDED.allow_transfer;
	`)
	if err != nil {
		log.Fatalf("Failed to restore sales-rule defaults: %v", err)
	}

	// Opening stock is written as RECEIVE movements plus matching balances
	// so a ledger replay still reconciles.
	log.Println("Restoring opening stock...")
	_, err = tx.Exec(ctx, `
		WITH t AS (SELECT id FROM tenants WHERE tenant_code = 'ACME'),
		opening AS (
		    SELECT t.id AS tenant_id, w.id AS warehouse_id, o.sku, o.qty::numeric AS qty
		    FROM t
		    JOIN warehouses w ON w.tenant_id = t.id
		    JOIN (VALUES
		        ('DC1', 'SKU-RED',   '500'),
		        ('DC1', 'SKU-BLUE',  '400'),
		        ('DC1', 'SKU-GREEN', '250'),
		        ('DC1', 'SKU-BELT',  '120'),
		        ('S01', 'SKU-RED',   '40'),
		        ('S01', 'SKU-BELT',  '15'),
		        ('S02', 'SKU-BLUE',  '30'),
		        ('S02', 'SKU-CAP',   '60')
		    ) AS o(wh, sku, qty) ON o.wh = w.code
		),
		bal AS (
		    INSERT INTO stock_balances (tenant_id, warehouse_id, sku, qty_on_hand)
		    SELECT tenant_id, warehouse_id, sku, qty FROM opening
		    RETURNING tenant_id
		)
		INSERT INTO stock_movements (id, tenant_id, warehouse_id, sku, movement_type,
		                             quantity, on_hand_delta, operator_id, reference_no)
		SELECT gen_random_uuid(), tenant_id, warehouse_id, sku, 'RECEIVE',
		       qty, qty, 'seed', 'RCV-SEED-' || row_number() OVER (ORDER BY warehouse_id, sku)
		FROM opening;
	`)
	if err != nil {
		log.Fatalf("Failed to restore opening stock: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed data restored successfully.")
	os.Exit(0)
}
