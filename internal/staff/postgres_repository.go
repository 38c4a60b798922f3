package staff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PgxPool is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type PgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository reads the staff directory from Postgres.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("staff: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const memberColumns = `id, tenant_id, name, active, can_book, working_hours, buffer_minutes, created_at`

// ListEligible returns active, booking-eligible members for a tenant.
func (r *PostgresRepository) ListEligible(ctx context.Context, tenantID uuid.UUID) ([]*Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM staff_members
		WHERE tenant_id = $1 AND active AND can_book
		ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("staff: list eligible: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("staff: list eligible rows: %w", err)
	}
	return members, nil
}

// GetForTenant returns a member scoped to the tenant.
func (r *PostgresRepository) GetForTenant(ctx context.Context, tenantID, memberID uuid.UUID) (*Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM staff_members
		WHERE id = $1 AND tenant_id = $2
	`
	m, err := scanMember(r.pool.QueryRow(ctx, query, memberID, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return m, nil
}

func scanMember(row pgx.Row) (*Member, error) {
	var (
		m        Member
		hoursRaw []byte
	)
	if err := row.Scan(
		&m.ID,
		&m.TenantID,
		&m.Name,
		&m.Active,
		&m.CanBook,
		&hoursRaw,
		&m.BufferMinutes,
		&m.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("staff: scan member: %w", err)
	}
	if len(hoursRaw) > 0 {
		if err := json.Unmarshal(hoursRaw, &m.WorkingHours); err != nil {
			return nil, fmt.Errorf("staff: decode working hours: %w", err)
		}
	}
	return &m, nil
}
