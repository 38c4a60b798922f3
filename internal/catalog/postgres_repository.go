package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PgxPool is the subset of pgxpool.Pool the repository needs.
type PgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository reads the service catalog from Postgres.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const serviceColumns = `id, tenant_id, name, category, duration_minutes, price_cents, active, created_at`

// ListActive returns active services for a tenant.
func (r *PostgresRepository) ListActive(ctx context.Context, tenantID uuid.UUID) ([]Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE tenant_id = $1 AND active
		ORDER BY category, name
	`
	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list active: %w", err)
	}
	defer rows.Close()
	return collectServices(rows)
}

// GetByIDs resolves the given service ids for a tenant, preserving the
// requested order. Missing or inactive ids fail with ErrServiceNotFound.
func (r *PostgresRepository) GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE tenant_id = $1 AND active AND id = ANY($2)
	`
	rows, err := r.pool.Query(ctx, query, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("catalog: get by ids: %w", err)
	}
	defer rows.Close()

	found, err := collectServices(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]Service, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}
	out := make([]Service, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("catalog: %w: %s", ErrServiceNotFound, id)
		}
		out = append(out, s)
	}
	return out, nil
}

func collectServices(rows pgx.Rows) ([]Service, error) {
	var services []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(
			&s.ID,
			&s.TenantID,
			&s.Name,
			&s.Category,
			&s.DurationMinutes,
			&s.PriceCents,
			&s.Active,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("catalog: scan service: %w", err)
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: rows: %w", err)
	}
	return services, nil
}
