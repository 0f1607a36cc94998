package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"inventory-engine/internal/adapters/cli"
	"inventory-engine/internal/adapters/repl"
	"inventory-engine/internal/app"
	"inventory-engine/internal/core"
	"inventory-engine/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	refs := core.NewReferenceService()
	inventory := core.NewInventoryService(pool, refs)
	rules := core.NewSalesRuleEngine(pool)
	availability := core.NewAvailabilityService(pool, inventory, rules)
	warehouses := core.NewWarehouseService(pool)
	reporting := core.NewReportingService(pool)

	svc := app.NewAppService(pool, inventory, availability, warehouses, reporting)

	if len(os.Args) > 1 {
		cli.Run(ctx, svc, os.Args[1:])
		return
	}

	repl.Run(ctx, svc, bufio.NewReader(os.Stdin))
}
