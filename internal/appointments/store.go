package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/glowdesk/scheduling/internal/schedule"
)

// Store is the persistence boundary for appointments. Create and
// UpdateRange must be atomic with respect to the exclusivity check: two
// concurrent calls for overlapping ranges on the same staff resolve to
// exactly one success and ErrConflict for the rest.
type Store interface {
	Create(ctx context.Context, params CreateParams) (*Appointment, error)
	UpdateRange(ctx context.Context, tenantID, id uuid.UUID, newRange schedule.TimeRange) (*Appointment, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, to Status) (*Appointment, error)
	GetForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error)
	// ListByStaffAndRange returns confirmed/completed appointments for
	// the staff member whose ranges intersect the given one, ordered by
	// start.
	ListByStaffAndRange(ctx context.Context, tenantID, staffID uuid.UUID, within schedule.TimeRange) ([]*Appointment, error)
}

// PgxPool is the subset of pgxpool.Pool the store needs; pgxmock
// satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists appointments in Postgres. Exclusivity is
// enforced by the appointments_no_overlap exclusion constraint on
// (staff_id, during), so the overlap check and the write are a single
// atomic operation regardless of how many instances run.
type PostgresStore struct {
	pool PgxPool
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool PgxPool) *PostgresStore {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

const appointmentColumns = `id, tenant_id, staff_id, lower(during), upper(during), status,
	customer_name, customer_email, customer_phone, service_ids, total_price_cents, created_at, updated_at`

// exclusionViolation is the SQLSTATE raised by the exclusion constraint.
const exclusionViolation = "23P01"

// Create inserts a confirmed appointment. An overlap with an existing
// confirmed/completed row surfaces as ErrConflict with nothing written.
func (s *PostgresStore) Create(ctx context.Context, params CreateParams) (*Appointment, error) {
	id := uuid.New()
	query := `
		INSERT INTO appointments (id, tenant_id, staff_id, during, status,
			customer_name, customer_email, customer_phone, service_ids, total_price_cents)
		VALUES ($1, $2, $3, tstzrange($4, $5, '[)'), $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	appt := &Appointment{
		ID:              id,
		TenantID:        params.TenantID,
		StaffID:         params.StaffID,
		Range:           params.Range,
		Status:          StatusConfirmed,
		CustomerName:    params.CustomerName,
		CustomerEmail:   params.CustomerEmail,
		CustomerPhone:   params.CustomerPhone,
		ServiceIDs:      params.ServiceIDs,
		TotalPriceCents: params.TotalPriceCents,
	}
	err := s.pool.QueryRow(ctx, query,
		id,
		params.TenantID,
		params.StaffID,
		params.Range.Start,
		params.Range.End,
		StatusConfirmed,
		params.CustomerName,
		params.CustomerEmail,
		params.CustomerPhone,
		params.ServiceIDs,
		params.TotalPriceCents,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt)
	if err != nil {
		return nil, classify("insert", err)
	}
	return appt, nil
}

// UpdateRange moves a confirmed appointment to a new range. The row's
// own prior range never conflicts with itself: the exclusion constraint
// only compares distinct rows, so an unchanged reschedule succeeds.
func (s *PostgresStore) UpdateRange(ctx context.Context, tenantID, id uuid.UUID, newRange schedule.TimeRange) (*Appointment, error) {
	query := `
		UPDATE appointments
		SET during = tstzrange($3, $4, '[)'), updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND status = $5
		RETURNING ` + appointmentColumns + `
	`
	appt, err := scanAppointment(s.pool.QueryRow(ctx, query, id, tenantID, newRange.Start, newRange.End, StatusConfirmed))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, classify("update range", err)
	}
	return appt, nil
}

// UpdateStatus applies a one-way transition out of confirmed.
func (s *PostgresStore) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, to Status) (*Appointment, error) {
	if !StatusConfirmed.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: confirmed -> %s", ErrInvalidTransition, to)
	}
	query := `
		UPDATE appointments
		SET status = $3, updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND status = $4
		RETURNING ` + appointmentColumns + `
	`
	appt, err := scanAppointment(s.pool.QueryRow(ctx, query, id, tenantID, to, StatusConfirmed))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Row exists but is terminal, or does not exist at all.
			if _, getErr := s.GetForTenant(ctx, tenantID, id); getErr == nil {
				return nil, fmt.Errorf("%w: appointment is not confirmed", ErrInvalidTransition)
			}
			return nil, ErrAppointmentNotFound
		}
		return nil, classify("update status", err)
	}
	return appt, nil
}

// GetForTenant returns an appointment scoped to the tenant.
func (s *PostgresStore) GetForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE id = $1 AND tenant_id = $2
	`
	appt, err := scanAppointment(s.pool.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, classify("get", err)
	}
	return appt, nil
}

// ListByStaffAndRange returns blocking appointments intersecting the range.
func (s *PostgresStore) ListByStaffAndRange(ctx context.Context, tenantID, staffID uuid.UUID, within schedule.TimeRange) ([]*Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE tenant_id = $1 AND staff_id = $2
		  AND status IN ($3, $4)
		  AND during && tstzrange($5, $6, '[)')
		ORDER BY lower(during)
	`
	rows, err := s.pool.Query(ctx, query, tenantID, staffID, StatusConfirmed, StatusCompleted, within.Start, within.End)
	if err != nil {
		return nil, classify("list", err)
	}
	defer rows.Close()

	var appts []*Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, classify("list scan", err)
		}
		appts = append(appts, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list rows", err)
	}
	return appts, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var appt Appointment
	if err := row.Scan(
		&appt.ID,
		&appt.TenantID,
		&appt.StaffID,
		&appt.Range.Start,
		&appt.Range.End,
		&appt.Status,
		&appt.CustomerName,
		&appt.CustomerEmail,
		&appt.CustomerPhone,
		&appt.ServiceIDs,
		&appt.TotalPriceCents,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &appt, nil
}

// classify maps storage errors to the engine taxonomy: exclusion
// violations become ErrConflict, everything else is an infrastructure
// failure wrapped in ErrStoreUnavailable.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
		return fmt.Errorf("appointments: %s: %w", op, ErrConflict)
	}
	return fmt.Errorf("appointments: %s: %w: %v", op, ErrStoreUnavailable, err)
}
