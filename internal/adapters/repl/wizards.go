package repl

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"inventory-engine/internal/app"

	"github.com/shopspring/decimal"
)

// handleTransferWizard runs an interactive transfer session: pick source and
// destination from the warehouse list, then SKU and quantity, confirm, apply.
func handleTransferWizard(ctx context.Context, reader *bufio.Reader, svc app.ApplicationService, tenantCode, operator string) {
	warehouses, err := svc.ListWarehouses(ctx, tenantCode)
	if err != nil {
		fmt.Printf("Error loading warehouses: %v\n", err)
		return
	}
	if len(warehouses.Warehouses) < 2 {
		fmt.Println("Need at least two warehouses to transfer.")
		return
	}

	fmt.Println("Transfer stock. Type 'cancel' at any prompt to abort.")
	fmt.Println("Warehouses:")
	for _, w := range warehouses.Warehouses {
		fmt.Printf("  %-10s %s (%s)\n", w.Code, w.Name, w.Type)
	}

	prompt := func(label string) (string, bool) {
		fmt.Printf("%s: ", label)
		raw, _ := reader.ReadString('\n')
		raw = strings.TrimSpace(raw)
		if strings.EqualFold(raw, "cancel") {
			fmt.Println("Transfer cancelled.")
			return "", false
		}
		return raw, true
	}

	from, ok := prompt("From warehouse")
	if !ok {
		return
	}
	to, ok := prompt("To warehouse")
	if !ok {
		return
	}
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		fmt.Println("Source and destination must differ.")
		return
	}

	sku, ok := prompt("SKU")
	if !ok {
		return
	}
	sku = strings.ToUpper(sku)

	qtyRaw, ok := prompt("Quantity")
	if !ok {
		return
	}
	qty, err := decimal.NewFromString(qtyRaw)
	if err != nil || qty.Sign() <= 0 {
		fmt.Printf("Invalid quantity: %s\n", qtyRaw)
		return
	}

	fmt.Printf("Transfer %s of %s from %s to %s? (y/n): ", qty, sku, from, to)
	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(strings.ToLower(choice))
	if choice != "y" && choice != "yes" {
		fmt.Println("Transfer cancelled.")
		return
	}

	result, err := svc.TransferStock(ctx, app.TransferRequest{
		TenantCode:    tenantCode,
		FromWarehouse: from,
		ToWarehouse:   to,
		SKU:           sku,
		Quantity:      qtyRaw,
		OperatorID:    operator,
	})
	if err != nil {
		fmt.Printf("Transfer failed: %v\n", err)
		return
	}
	fmt.Printf("Done. %s -> %s  (%s / %s)\n",
		result.Out.WarehouseCode, result.In.WarehouseCode,
		result.Out.ReferenceNo, result.In.ReferenceNo)
}
