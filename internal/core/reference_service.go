package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ReferenceService issues gapless reference numbers for movements, e.g.
// RCV-2026-00017. Numbers are generated inside the operation's transaction
// so a rolled-back operation never burns a number.
type ReferenceService interface {
	// NextReferenceTx increments the (tenant, prefix) sequence within the
	// caller's transaction and returns the formatted reference number.
	NextReferenceTx(ctx context.Context, tx pgx.Tx, tenantID int, movementType MovementType) (string, error)
}

// referenceService is stateless; sequences are read and bumped inside the
// caller's transaction.
type referenceService struct{}

func NewReferenceService() ReferenceService {
	return referenceService{}
}

func (referenceService) NextReferenceTx(ctx context.Context, tx pgx.Tx, tenantID int, movementType MovementType) (string, error) {
	prefix := movementType.ReferencePrefix()

	// Concurrency-safe gapless sequence: the upsert takes a row lock held
	// until the surrounding transaction commits.
	var lastNumber int64
	err := tx.QueryRow(ctx, `
		INSERT INTO reference_sequences (tenant_id, prefix, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, prefix)
		DO UPDATE SET last_number = reference_sequences.last_number + 1
		RETURNING last_number
	`, tenantID, prefix).Scan(&lastNumber)
	if err != nil {
		return "", fmt.Errorf("failed to generate reference sequence for %s: %w", prefix, err)
	}

	return fmt.Sprintf("%s-%d-%05d", prefix, time.Now().Year(), lastNumber), nil
}
