package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WarehouseService reads the location directory. The directory is owned by
// the tenant/system module; this core never mutates it.
type WarehouseService interface {
	GetWarehouses(ctx context.Context, tenantCode string) ([]Warehouse, error)
	GetWarehouse(ctx context.Context, tenantCode, code string) (*Warehouse, error)
	// GetDistributionCenters returns active DC-type warehouses, the pool a
	// store can be replenished from.
	GetDistributionCenters(ctx context.Context, tenantCode string) ([]Warehouse, error)
}

type warehouseService struct {
	pool *pgxpool.Pool
}

func NewWarehouseService(pool *pgxpool.Pool) WarehouseService {
	return &warehouseService{pool: pool}
}

func (s *warehouseService) GetWarehouses(ctx context.Context, tenantCode string) ([]Warehouse, error) {
	tenantID, err := resolveTenantID(ctx, s.pool, tenantCode)
	if err != nil {
		return nil, err
	}
	return s.queryWarehouses(ctx, `
		SELECT id, tenant_id, code, name, wh_type, is_active, created_at
		FROM warehouses
		WHERE tenant_id = $1 AND is_active = true
		ORDER BY code
	`, tenantID)
}

func (s *warehouseService) GetWarehouse(ctx context.Context, tenantCode, code string) (*Warehouse, error) {
	tenantID, err := resolveTenantID(ctx, s.pool, tenantCode)
	if err != nil {
		return nil, err
	}

	var w Warehouse
	err = s.pool.QueryRow(ctx, `
		SELECT id, tenant_id, code, name, wh_type, is_active, created_at
		FROM warehouses
		WHERE tenant_id = $1 AND code = $2 AND is_active = true
	`, tenantID, code).Scan(&w.ID, &w.TenantID, &w.Code, &w.Name, &w.Type, &w.IsActive, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("warehouse %s: %w", code, ErrUnknownLocation)
		}
		return nil, fmt.Errorf("failed to fetch warehouse %s: %w", code, err)
	}
	return &w, nil
}

func (s *warehouseService) GetDistributionCenters(ctx context.Context, tenantCode string) ([]Warehouse, error) {
	tenantID, err := resolveTenantID(ctx, s.pool, tenantCode)
	if err != nil {
		return nil, err
	}
	return s.queryWarehouses(ctx, `
		SELECT id, tenant_id, code, name, wh_type, is_active, created_at
		FROM warehouses
		WHERE tenant_id = $1 AND wh_type = 'DC' AND is_active = true
		ORDER BY code
	`, tenantID)
}

func (s *warehouseService) queryWarehouses(ctx context.Context, query string, tenantID int) ([]Warehouse, error) {
	rows, err := s.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query warehouses: %w", err)
	}
	defer rows.Close()

	var warehouses []Warehouse
	for rows.Next() {
		var w Warehouse
		if err := rows.Scan(&w.ID, &w.TenantID, &w.Code, &w.Name, &w.Type, &w.IsActive, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan warehouse: %w", err)
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, rows.Err()
}

// rowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx so tenant and
// warehouse resolution can run inside or outside a transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// resolveTenantID looks up the integer primary key for a tenant code.
func resolveTenantID(ctx context.Context, q rowQuerier, tenantCode string) (int, error) {
	var id int
	if err := q.QueryRow(ctx,
		"SELECT id FROM tenants WHERE tenant_code = $1", tenantCode,
	).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("tenant code %s not found", tenantCode)
		}
		return 0, fmt.Errorf("failed to resolve tenant: %w", err)
	}
	return id, nil
}

// resolveWarehouseID looks up an active warehouse by code within a tenant.
func resolveWarehouseID(ctx context.Context, q rowQuerier, tenantID int, code string) (int, error) {
	var id int
	if err := q.QueryRow(ctx,
		"SELECT id FROM warehouses WHERE tenant_id = $1 AND code = $2 AND is_active = true",
		tenantID, code,
	).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("warehouse %s: %w", code, ErrUnknownLocation)
		}
		return 0, fmt.Errorf("failed to resolve warehouse %s: %w", code, err)
	}
	return id, nil
}
