package repl

import (
	"fmt"
	"strings"

	"inventory-engine/internal/app"
	"inventory-engine/internal/core"
)

func printWarehouses(result *app.WarehouseListResult, tenantCode string) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("  WAREHOUSES — Tenant %s\n", tenantCode)
	fmt.Println(strings.Repeat("=", 60))
	if len(result.Warehouses) == 0 {
		fmt.Println("  No warehouses found.")
		fmt.Println(strings.Repeat("=", 60))
		return
	}
	fmt.Printf("  %-10s %-36s %-8s\n", "CODE", "NAME", "TYPE")
	fmt.Println(strings.Repeat("-", 60))
	for _, w := range result.Warehouses {
		fmt.Printf("  %-10s %-36s %-8s\n", w.Code, w.Name, w.Type)
	}
	fmt.Println(strings.Repeat("=", 60))
}

func printBalance(result *app.BalanceResult) {
	b := result.Balance
	fmt.Println()
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("  SKU:        %s @ %s\n", b.SKU, result.WarehouseCode)
	fmt.Printf("  On hand:    %s\n", b.OnHand.StringFixed(0))
	fmt.Printf("  Reserved:   %s\n", b.Reserved.StringFixed(0))
	fmt.Printf("  Available:  %s\n", b.Available().StringFixed(0))
	if !b.InTransitIn.IsZero() || !b.InTransitOut.IsZero() {
		fmt.Printf("  In transit: +%s inbound / -%s outbound\n",
			b.InTransitIn.StringFixed(0), b.InTransitOut.StringFixed(0))
	}
	fmt.Println(strings.Repeat("-", 60))
}

func printMovements(result *app.MovementListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 92))
	fmt.Println("  STOCK MOVEMENTS (newest first)")
	fmt.Println(strings.Repeat("=", 92))
	if len(result.Movements) == 0 {
		fmt.Println("  No movements found.")
		fmt.Println(strings.Repeat("=", 92))
		return
	}
	fmt.Printf("  %-16s %-13s %-8s %-14s %8s %8s  %s\n",
		"REFERENCE", "TYPE", "WH", "SKU", "QTY", "DELTA", "WHEN")
	fmt.Println(strings.Repeat("-", 92))
	for _, m := range result.Movements {
		fmt.Printf("  %-16s %-13s %-8s %-14s %8s %8s  %s\n",
			m.ReferenceNo, m.Type, m.WarehouseCode, m.SKU,
			m.Quantity.StringFixed(0), m.OnHandDelta.StringFixed(0),
			m.MovedAt.Format("2006-01-02 15:04"))
	}
	fmt.Println(strings.Repeat("=", 92))
}

func printMovementConfirmation(m *core.Movement) {
	fmt.Printf("%s recorded: %s of %s at %s  (%s)\n",
		m.Type, m.Quantity.StringFixed(0), m.SKU, m.WarehouseCode, m.ReferenceNo)
}

func printTransfers(result *app.TransferListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 96))
	fmt.Println("  STOCK TRANSFERS")
	fmt.Println(strings.Repeat("=", 96))
	if len(result.Transfers) == 0 {
		fmt.Println("  No transfers found.")
		fmt.Println(strings.Repeat("=", 96))
		return
	}
	fmt.Printf("  %-38s %-14s %-8s %-8s %8s %-12s %s\n",
		"ID", "SKU", "FROM", "TO", "QTY", "STATUS", "DISPATCHED")
	fmt.Println(strings.Repeat("-", 96))
	for _, t := range result.Transfers {
		fmt.Printf("  %-38s %-14s %-8s %-8s %8s %-12s %s\n",
			t.ID, t.SKU, t.FromWarehouse, t.ToWarehouse,
			t.Quantity.StringFixed(0), t.Status, t.DispatchedAt.Format("2006-01-02 15:04"))
	}
	fmt.Println(strings.Repeat("=", 96))
}

func printAvailability(a *core.Availability) {
	fmt.Println()
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("  SKU:       %s @ %s\n", a.SKU, a.WarehouseCode)
	fmt.Printf("  STATUS:    %s\n", a.Status)
	fmt.Printf("  On hand:   %s   Reserved: %s   Available: %s\n",
		a.OnHand.StringFixed(0), a.Reserved.StringFixed(0), a.Available.StringFixed(0))
	fmt.Printf("  DC stock:  %s\n", a.DCOnHand.StringFixed(0))
	fmt.Printf("  Rules:     backorder=%t transfer=%t\n", a.Rule.AllowBackorder, a.Rule.AllowTransfer)
	fmt.Println(strings.Repeat("-", 60))
}

func printShelf(result *app.AvailabilityListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 76))
	fmt.Printf("  AVAILABILITY — Warehouse %s\n", result.WarehouseCode)
	fmt.Println(strings.Repeat("=", 76))
	if len(result.Availabilities) == 0 {
		fmt.Println("  No stocked SKUs found.")
		fmt.Println(strings.Repeat("=", 76))
		return
	}
	fmt.Printf("  %-16s %-14s %10s %10s %10s %10s\n",
		"SKU", "STATUS", "ON HAND", "RESERVED", "AVAILABLE", "DC STOCK")
	fmt.Println(strings.Repeat("-", 76))
	for _, a := range result.Availabilities {
		fmt.Printf("  %-16s %-14s %10s %10s %10s %10s\n",
			a.SKU, a.Status,
			a.OnHand.StringFixed(0), a.Reserved.StringFixed(0),
			a.Available.StringFixed(0), a.DCOnHand.StringFixed(0))
	}
	fmt.Println(strings.Repeat("=", 76))
}

func printValuation(result *app.ValuationResult, tenantCode string) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 76))
	fmt.Printf("  STOCK VALUATION — Tenant %s\n", tenantCode)
	fmt.Println(strings.Repeat("=", 76))
	if len(result.Report.Lines) == 0 {
		fmt.Println("  No stock records found.")
		fmt.Println(strings.Repeat("=", 76))
		return
	}
	fmt.Printf("  %-16s %-26s %10s %10s %10s\n", "SKU", "NAME", "ON HAND", "PRICE", "VALUE")
	fmt.Println(strings.Repeat("-", 76))
	for _, l := range result.Report.Lines {
		fmt.Printf("  %-16s %-26s %10s %10s %10s\n",
			l.SKU, l.Name, l.OnHand.StringFixed(0),
			l.UnitPrice.StringFixed(2), l.Value.StringFixed(2))
	}
	fmt.Println(strings.Repeat("-", 76))
	fmt.Printf("  %-54s %20s\n", "TOTAL", result.Report.TotalValue.StringFixed(2))
	fmt.Println(strings.Repeat("=", 76))
}

func printLowStock(result *app.LowStockResult, threshold string) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("  LOW STOCK — total on hand <= %s\n", threshold)
	fmt.Println(strings.Repeat("=", 60))
	if len(result.Lines) == 0 {
		fmt.Println("  No low-stock SKUs.")
		fmt.Println(strings.Repeat("=", 60))
		return
	}
	fmt.Printf("  %-16s %10s %10s %10s\n", "SKU", "ON HAND", "RESERVED", "AVAILABLE")
	fmt.Println(strings.Repeat("-", 60))
	for _, l := range result.Lines {
		fmt.Printf("  %-16s %10s %10s %10s\n",
			l.SKU,
			l.OnHand.StringFixed(0), l.Reserved.StringFixed(0), l.Available.StringFixed(0))
	}
	fmt.Println(strings.Repeat("=", 60))
}

func printOutOfStock(result *app.OutOfStockResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 52))
	fmt.Println("  OUT OF STOCK — zero on hand everywhere")
	fmt.Println(strings.Repeat("=", 52))
	if len(result.Lines) == 0 {
		fmt.Println("  Nothing out of stock.")
		fmt.Println(strings.Repeat("=", 52))
		return
	}
	fmt.Printf("  %-16s %-30s\n", "SKU", "NAME")
	fmt.Println(strings.Repeat("-", 52))
	for _, l := range result.Lines {
		fmt.Printf("  %-16s %-30s\n", l.SKU, l.Name)
	}
	fmt.Println(strings.Repeat("=", 52))
}

func printMovementCounts(result *app.MovementCountsResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 52))
	fmt.Println("  LEDGER ACTIVITY")
	fmt.Println(strings.Repeat("=", 52))
	if len(result.Counts) == 0 {
		fmt.Println("  No movements in period.")
		fmt.Println(strings.Repeat("=", 52))
		return
	}
	fmt.Printf("  %-14s %10s %14s\n", "TYPE", "COUNT", "TOTAL QTY")
	fmt.Println(strings.Repeat("-", 52))
	for _, c := range result.Counts {
		fmt.Printf("  %-14s %10d %14s\n", c.Type, c.Count, c.TotalQuantity.StringFixed(0))
	}
	fmt.Println(strings.Repeat("=", 52))
}

func printRollup(result *app.RollupResult) {
	r := result.Report
	fmt.Println()
	fmt.Println(strings.Repeat("=", 76))
	fmt.Printf("  WAREHOUSE ROLLUP — %s\n", r.SKU)
	fmt.Println(strings.Repeat("=", 76))
	if len(r.Lines) == 0 {
		fmt.Println("  No balance rows for this SKU.")
		fmt.Println(strings.Repeat("=", 76))
		return
	}
	fmt.Printf("  %-10s %-6s %10s %10s %10s %10s\n",
		"WH", "TYPE", "ON HAND", "RESERVED", "IN(+)", "OUT(-)")
	fmt.Println(strings.Repeat("-", 76))
	for _, l := range r.Lines {
		fmt.Printf("  %-10s %-6s %10s %10s %10s %10s\n",
			l.WarehouseCode, l.WarehouseType,
			l.OnHand.StringFixed(0), l.Reserved.StringFixed(0),
			l.InTransitIn.StringFixed(0), l.InTransitOut.StringFixed(0))
	}
	fmt.Println(strings.Repeat("-", 76))
	fmt.Printf("  %-17s %10s %10s   in flight: %s\n", "TOTAL",
		r.TotalOnHand.StringFixed(0), r.TotalReserved.StringFixed(0), r.TotalInflight.StringFixed(0))
	fmt.Println(strings.Repeat("=", 76))
}

func printHelp() {
	fmt.Println()
	fmt.Println("INVENTORY ENGINE — COMMANDS")
	fmt.Println(strings.Repeat("=", 66))
	fmt.Println()
	fmt.Println("  BALANCES & LEDGER")
	fmt.Println("  /stock <wh> <sku>                View one stock position")
	fmt.Println("  /movements [sku] [limit]         Ledger entries, newest first")
	fmt.Println("  /warehouses                      List warehouses")
	fmt.Println()
	fmt.Println("  OPERATIONS")
	fmt.Println("  /receive <wh> <sku> <qty>        Receive inbound stock")
	fmt.Println("  /issue   <wh> <sku> <qty>        Issue stock out")
	fmt.Println("  /reserve <wh> <sku> <qty>        Reserve available stock")
	fmt.Println("  /release <wh> <sku> <qty>        Release a reservation")
	fmt.Println("  /adjust  <wh> <sku> <+/-n> <why> Cycle-count correction")
	fmt.Println()
	fmt.Println("  TRANSFERS")
	fmt.Println("  /transfer [from to sku qty]      Atomic transfer (no args = wizard)")
	fmt.Println("  /dispatch <from> <to> <sku> <qty>  Start two-step transfer")
	fmt.Println("  /arrive <transfer-id>            Land an in-transit transfer")
	fmt.Println("  /cancel-transfer <transfer-id>   Return in-transit stock to source")
	fmt.Println("  /transfers [status]              List transfers")
	fmt.Println()
	fmt.Println("  AVAILABILITY & REPORTS")
	fmt.Println("  /availability <wh> <sku>         Classify one SKU")
	fmt.Println("  /shelf <wh>                      Classify all stocked SKUs")
	fmt.Println("  /valuation                       Stock valuation at unit price")
	fmt.Println("  /lowstock [threshold]            SKUs at or below on-hand threshold")
	fmt.Println("  /oos                             Out-of-stock catalog SKUs")
	fmt.Println("  /activity [from] [to]            Movement counts by type")
	fmt.Println("  /rollup <sku>                    Position across all warehouses")
	fmt.Println()
	fmt.Println("  SESSION")
	fmt.Println("  /help                            Show this help")
	fmt.Println("  /exit                            Exit")
	fmt.Println(strings.Repeat("=", 66))
}
