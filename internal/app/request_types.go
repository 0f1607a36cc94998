package app

// StockOperationRequest carries the parameters shared by the single-key
// operations (receive, issue, reserve, release). Quantity is a decimal
// string so adapters pass user input through unparsed.
type StockOperationRequest struct {
	TenantCode    string
	WarehouseCode string
	SKU           string
	Quantity      string
	OperatorID    string
}

// AdjustRequest is a signed cycle-count correction. Delta accepts a leading
// sign, e.g. "-3".
type AdjustRequest struct {
	TenantCode    string
	WarehouseCode string
	SKU           string
	Delta         string
	OperatorID    string
	Reason        string
}

// TransferRequest moves stock between two warehouses, either atomically
// (TransferStock) or via the two-step in-transit flow (DispatchTransfer).
type TransferRequest struct {
	TenantCode    string
	FromWarehouse string
	ToWarehouse   string
	SKU           string
	Quantity      string
	OperatorID    string
}
