package repl

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"inventory-engine/internal/app"
)

// Run starts the interactive REPL loop. It reads slash commands from reader
// and dispatches them deterministically against the application service.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader) {
	tenant, err := svc.LoadDefaultTenant(ctx)
	if err != nil {
		log.Fatalf("Failed to load tenant: %v", err)
	}

	operator := os.Getenv("OPERATOR_ID")
	if operator == "" {
		operator = "console"
	}

	fmt.Println("Inventory Engine")
	fmt.Printf("Tenant: %s — %s   Operator: %s\n", tenant.TenantCode, tenant.Name, operator)
	fmt.Println("Type /help for commands.")
	fmt.Println(strings.Repeat("-", 70))

	errExit := fmt.Errorf("exit")

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "warehouses", "wh":
			result, err := svc.ListWarehouses(ctx, tenant.TenantCode)
			if err != nil {
				return err
			}
			printWarehouses(result, tenant.TenantCode)

		case "stock", "bal":
			if len(args) < 2 {
				fmt.Println("Usage: /stock <warehouse> <sku>")
				return nil
			}
			result, err := svc.GetBalance(ctx, tenant.TenantCode, strings.ToUpper(args[0]), strings.ToUpper(args[1]))
			if err != nil {
				return err
			}
			printBalance(result)

		case "movements", "mov":
			sku := ""
			limit := 20
			if len(args) > 0 {
				sku = strings.ToUpper(args[0])
			}
			if len(args) > 1 {
				if n, err := strconv.Atoi(args[1]); err == nil {
					limit = n
				}
			}
			result, err := svc.ListMovements(ctx, tenant.TenantCode, sku, limit)
			if err != nil {
				return err
			}
			printMovements(result)

		case "receive", "issue", "reserve", "release":
			if len(args) < 3 {
				fmt.Printf("Usage: /%s <warehouse> <sku> <qty>\n", cmd)
				return nil
			}
			req := app.StockOperationRequest{
				TenantCode:    tenant.TenantCode,
				WarehouseCode: strings.ToUpper(args[0]),
				SKU:           strings.ToUpper(args[1]),
				Quantity:      args[2],
				OperatorID:    operator,
			}
			var result *app.MovementResult
			var err error
			switch cmd {
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
				return err
			}
			printMovementConfirmation(result.Movement)

		case "adjust":
			if len(args) < 4 {
				fmt.Println("Usage: /adjust <warehouse> <sku> <delta> <reason...>")
				fmt.Println("  Example: /adjust S01 SKU-RED -3 cycle count shrinkage")
				return nil
			}
			result, err := svc.AdjustStock(ctx, app.AdjustRequest{
				TenantCode:    tenant.TenantCode,
				WarehouseCode: strings.ToUpper(args[0]),
				SKU:           strings.ToUpper(args[1]),
				Delta:         args[2],
				OperatorID:    operator,
				Reason:        strings.Join(args[3:], " "),
			})
			if err != nil {
				return err
			}
			printMovementConfirmation(result.Movement)

		case "transfer":
			if len(args) == 0 {
				handleTransferWizard(ctx, reader, svc, tenant.TenantCode, operator)
				return nil
			}
			if len(args) < 4 {
				fmt.Println("Usage: /transfer <from> <to> <sku> <qty>   (or /transfer for the wizard)")
				return nil
			}
			result, err := svc.TransferStock(ctx, app.TransferRequest{
				TenantCode:    tenant.TenantCode,
				FromWarehouse: strings.ToUpper(args[0]),
				ToWarehouse:   strings.ToUpper(args[1]),
				SKU:           strings.ToUpper(args[2]),
				Quantity:      args[3],
				OperatorID:    operator,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Transferred %s of %s: %s -> %s  (%s / %s)\n",
				result.Out.Quantity, result.Out.SKU,
				result.Out.WarehouseCode, result.In.WarehouseCode,
				result.Out.ReferenceNo, result.In.ReferenceNo)

		case "dispatch":
			if len(args) < 4 {
				fmt.Println("Usage: /dispatch <from> <to> <sku> <qty>")
				return nil
			}
			result, err := svc.DispatchTransfer(ctx, app.TransferRequest{
				TenantCode:    tenant.TenantCode,
				FromWarehouse: strings.ToUpper(args[0]),
				ToWarehouse:   strings.ToUpper(args[1]),
				SKU:           strings.ToUpper(args[2]),
				Quantity:      args[3],
				OperatorID:    operator,
			})
			if err != nil {
				return err
			}
			t := result.Transfer
			fmt.Printf("Dispatched %s of %s: %s -> %s (IN_TRANSIT)\n", t.Quantity, t.SKU, t.FromWarehouse, t.ToWarehouse)
			fmt.Printf("Transfer ID: %s   Use /arrive or /cancel-transfer with this ID.\n", t.ID)

		case "arrive":
			if len(args) < 1 {
				fmt.Println("Usage: /arrive <transfer-id>")
				return nil
			}
			result, err := svc.CompleteTransfer(ctx, tenant.TenantCode, args[0], operator)
			if err != nil {
				return err
			}
			fmt.Printf("Transfer completed. %s of %s landed at %s (%s)\n",
				result.Movement.Quantity, result.Movement.SKU, result.Movement.WarehouseCode, result.Movement.ReferenceNo)

		case "cancel-transfer":
			if len(args) < 1 {
				fmt.Println("Usage: /cancel-transfer <transfer-id>")
				return nil
			}
			result, err := svc.CancelTransfer(ctx, tenant.TenantCode, args[0], operator)
			if err != nil {
				return err
			}
			fmt.Printf("Transfer cancelled. %s of %s returned to source (%s)\n",
				result.Movement.Quantity, result.Movement.SKU, result.Movement.ReferenceNo)

		case "transfers":
			status := ""
			if len(args) > 0 {
				status = strings.ToUpper(args[0])
			}
			result, err := svc.ListTransfers(ctx, tenant.TenantCode, status)
			if err != nil {
				return err
			}
			printTransfers(result)

		case "availability", "avail":
			if len(args) < 2 {
				fmt.Println("Usage: /availability <warehouse> <sku>")
				return nil
			}
			result, err := svc.GetAvailability(ctx, tenant.TenantCode, strings.ToUpper(args[0]), strings.ToUpper(args[1]))
			if err != nil {
				return err
			}
			printAvailability(result.Availability)

		case "shelf":
			if len(args) < 1 {
				fmt.Println("Usage: /shelf <warehouse>")
				return nil
			}
			result, err := svc.GetWarehouseAvailability(ctx, tenant.TenantCode, strings.ToUpper(args[0]))
			if err != nil {
				return err
			}
			printShelf(result)

		case "valuation", "val":
			result, err := svc.GetStockValuation(ctx, tenant.TenantCode)
			if err != nil {
				return err
			}
			printValuation(result, tenant.TenantCode)

		case "lowstock", "low":
			threshold := "10"
			if len(args) > 0 {
				threshold = args[0]
			}
			result, err := svc.GetLowStock(ctx, tenant.TenantCode, threshold)
			if err != nil {
				return err
			}
			printLowStock(result, threshold)

		case "oos":
			result, err := svc.GetOutOfStock(ctx, tenant.TenantCode)
			if err != nil {
				return err
			}
			printOutOfStock(result)

		case "activity":
			from, to := "", ""
			if len(args) > 0 {
				from = args[0]
			}
			if len(args) > 1 {
				to = args[1]
			}
			result, err := svc.GetMovementCounts(ctx, tenant.TenantCode, from, to)
			if err != nil {
				return err
			}
			printMovementCounts(result)

		case "rollup":
			if len(args) < 1 {
				fmt.Println("Usage: /rollup <sku>")
				return nil
			}
			result, err := svc.GetWarehouseRollup(ctx, tenant.TenantCode, strings.ToUpper(args[0]))
			if err != nil {
				return err
			}
			printRollup(result)

		case "help", "h":
			printHelp()

		case "exit", "quit", "e", "q":
			return errExit

		default:
			fmt.Printf("Unknown command: /%s  (type /help for all commands)\n", cmd)
		}
		return nil
	}

	for {
		fmt.Print("\n> ")
		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !strings.HasPrefix(input, "/") {
			fmt.Println("Commands start with /  (type /help)")
			continue
		}
		if err := dispatchSlash(input); err != nil {
			if err == errExit {
				fmt.Println("Goodbye!")
				break
			}
			fmt.Printf("Error: %v\n", err)
		}
	}
}
