package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"inventory-engine/internal/app"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:] — the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	tenant, err := svc.LoadDefaultTenant(ctx)
	if err != nil {
		log.Fatalf("Failed to load tenant: %v", err)
	}

	operator := os.Getenv("OPERATOR_ID")
	if operator == "" {
		operator = "cli"
	}

	switch args[0] {
	case "receive", "issue", "reserve", "release":
		if len(args) < 4 {
			log.Fatalf("Usage: app %s <warehouse> <sku> <qty>", args[0])
		}
		req := app.StockOperationRequest{
			TenantCode:    tenant.TenantCode,
			WarehouseCode: strings.ToUpper(args[1]),
			SKU:           strings.ToUpper(args[2]),
			Quantity:      args[3],
			OperatorID:    operator,
		}
		var result *app.MovementResult
		switch args[0] {
		case "receive":
			result, err = svc.ReceiveStock(ctx, req)
		case "issue":
			result, err = svc.IssueStock(ctx, req)
		case "reserve":
			result, err = svc.ReserveStock(ctx, req)
		case "release":
			result, err = svc.ReleaseStock(ctx, req)
		}
		if err != nil {
			log.Fatalf("%s failed: %v", args[0], err)
		}
		fmt.Printf("%s %s of %s at %s (%s)\n",
			result.Movement.Type, result.Movement.Quantity.StringFixed(0),
			result.Movement.SKU, result.Movement.WarehouseCode, result.Movement.ReferenceNo)

	case "transfer":
		if len(args) < 5 {
			log.Fatal("Usage: app transfer <from> <to> <sku> <qty>")
		}
		result, err := svc.TransferStock(ctx, app.TransferRequest{
			TenantCode:    tenant.TenantCode,
			FromWarehouse: strings.ToUpper(args[1]),
			ToWarehouse:   strings.ToUpper(args[2]),
			SKU:           strings.ToUpper(args[3]),
			Quantity:      args[4],
			OperatorID:    operator,
		})
		if err != nil {
			log.Fatalf("transfer failed: %v", err)
		}
		fmt.Printf("Transferred %s of %s: %s -> %s\n",
			result.Out.Quantity.StringFixed(0), result.Out.SKU,
			result.Out.WarehouseCode, result.In.WarehouseCode)

	case "stock", "bal":
		if len(args) < 3 {
			log.Fatal("Usage: app stock <warehouse> <sku>")
		}
		result, err := svc.GetBalance(ctx, tenant.TenantCode, strings.ToUpper(args[1]), strings.ToUpper(args[2]))
		if err != nil {
			log.Fatalf("Failed to get balance: %v", err)
		}
		b := result.Balance
		fmt.Printf("%s @ %s: on_hand=%s reserved=%s available=%s in_transit_in=%s in_transit_out=%s\n",
			b.SKU, result.WarehouseCode,
			b.OnHand.StringFixed(0), b.Reserved.StringFixed(0), b.Available().StringFixed(0),
			b.InTransitIn.StringFixed(0), b.InTransitOut.StringFixed(0))

	case "availability", "avail":
		if len(args) < 3 {
			log.Fatal("Usage: app availability <warehouse> <sku>")
		}
		result, err := svc.GetAvailability(ctx, tenant.TenantCode, strings.ToUpper(args[1]), strings.ToUpper(args[2]))
		if err != nil {
			log.Fatalf("Failed to classify: %v", err)
		}
		a := result.Availability
		fmt.Printf("%s @ %s: %s (available=%s dc=%s backorder=%t transfer=%t)\n",
			a.SKU, a.WarehouseCode, a.Status,
			a.Available.StringFixed(0), a.DCOnHand.StringFixed(0),
			a.Rule.AllowBackorder, a.Rule.AllowTransfer)

	case "movements", "mov":
		sku := ""
		limit := 20
		if len(args) > 1 {
			sku = strings.ToUpper(args[1])
		}
		if len(args) > 2 {
			if n, err := strconv.Atoi(args[2]); err == nil {
				limit = n
			}
		}
		result, err := svc.ListMovements(ctx, tenant.TenantCode, sku, limit)
		if err != nil {
			log.Fatalf("Failed to list movements: %v", err)
		}
		for _, m := range result.Movements {
			fmt.Printf("%s  %-13s %-8s %-14s qty=%s delta=%s  %s\n",
				m.MovedAt.Format("2006-01-02 15:04"), m.Type, m.WarehouseCode, m.SKU,
				m.Quantity.StringFixed(0), m.OnHandDelta.StringFixed(0), m.ReferenceNo)
		}

	case "valuation", "val":
		result, err := svc.GetStockValuation(ctx, tenant.TenantCode)
		if err != nil {
			log.Fatalf("Failed to get valuation: %v", err)
		}
		for _, l := range result.Report.Lines {
			fmt.Printf("%-16s on_hand=%s price=%s value=%s\n",
				l.SKU, l.OnHand.StringFixed(0), l.UnitPrice.StringFixed(2), l.Value.StringFixed(2))
		}
		fmt.Printf("TOTAL %s\n", result.Report.TotalValue.StringFixed(2))

	default:
		log.Fatalf("Unknown command: %s\nAvailable: receive, issue, reserve, release, transfer, stock, availability, movements, valuation", args[0])
	}
}
