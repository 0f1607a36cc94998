package core

import "errors"

// Operation failures callers are expected to branch on. All are recoverable
// and leave state untouched: a failed operation appends no movement and
// mutates no balance. Match with errors.Is; services wrap these with
// context via fmt.Errorf("...: %w", ...).
var (
	// ErrInvalidQuantity — quantity is zero, negative, or fractional.
	ErrInvalidQuantity = errors.New("quantity must be a positive whole number")

	// ErrInsufficientStock — Issue asked for more than on-hand.
	ErrInsufficientStock = errors.New("insufficient stock on hand")

	// ErrInsufficientAvailable — Reserve asked for more than on-hand minus reserved.
	ErrInsufficientAvailable = errors.New("insufficient available stock")

	// ErrInsufficientSourceStock — Transfer source lacks on-hand stock.
	ErrInsufficientSourceStock = errors.New("insufficient stock at source location")

	// ErrSameLocationTransfer — transfer source and destination are the same.
	ErrSameLocationTransfer = errors.New("transfer source and destination must differ")

	// ErrUnknownLocation — referenced warehouse does not exist or is inactive.
	ErrUnknownLocation = errors.New("unknown location")

	// ErrTransferFailed — the destination leg could not be applied after the
	// source leg succeeded. The source leg is compensated before this is
	// returned; no partial debit is ever observable.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrReleaseExceedsReserved — release asked for more than is reserved.
	ErrReleaseExceedsReserved = errors.New("release exceeds reserved quantity")

	// ErrInvalidAdjustment — adjustment would drop on-hand below zero or
	// below the reserved quantity.
	ErrInvalidAdjustment = errors.New("adjustment violates balance invariants")

	// ErrUnknownTransfer — referenced stock transfer does not exist.
	ErrUnknownTransfer = errors.New("unknown transfer")

	// ErrTransferNotInTransit — transfer already completed or cancelled.
	ErrTransferNotInTransit = errors.New("transfer is not in transit")
)
