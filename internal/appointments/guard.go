package appointments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/glowdesk/scheduling/internal/observability/metrics"
	"github.com/glowdesk/scheduling/internal/schedule"
	"github.com/glowdesk/scheduling/internal/settings"
	"github.com/glowdesk/scheduling/internal/staff"
	"github.com/glowdesk/scheduling/pkg/logging"
)

var guardTracer = otel.Tracer("glowdesk.internal.appointments")

// Guard performs the atomic validate-and-commit for bookings. The
// overlap check itself lives in the store (the exclusion constraint);
// the guard adds the business validations that do not need atomicity:
// staff eligibility, working-hours containment, lead time, and the
// best-effort buffer check.
type Guard struct {
	store     Store
	staffRepo staff.Repository
	settings  *settings.Store
	metrics   *metrics.SchedulingMetrics
	logger    *logging.Logger

	// LeadTime is the minimum interval between now and a commit's start
	// when the tenant has no settings store wired. With a settings store
	// the tenant's own MinimumLeadTime applies.
	LeadTime time.Duration

	// now is injectable for tests.
	now func() time.Time
}

// NewGuard constructs a conflict guard.
func NewGuard(store Store, staffRepo staff.Repository, settingsStore *settings.Store, m *metrics.SchedulingMetrics, logger *logging.Logger, leadTime time.Duration) *Guard {
	if store == nil {
		panic("appointments: store required")
	}
	if staffRepo == nil {
		panic("appointments: staff repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Guard{
		store:     store,
		staffRepo: staffRepo,
		settings:  settingsStore,
		metrics:   m,
		logger:    logger,
		LeadTime:  leadTime,
		now:       time.Now,
	}
}

// Commit validates the request against the staff member's calendar and
// inserts the appointment. Exactly one of any set of concurrent
// overlapping commits succeeds; the rest receive ErrConflict. No partial
// write is ever observable.
func (g *Guard) Commit(ctx context.Context, params CreateParams) (*Appointment, error) {
	ctx, span := guardTracer.Start(ctx, "appointments.commit")
	defer span.End()
	span.SetAttributes(
		attribute.String("glowdesk.tenant_id", params.TenantID.String()),
		attribute.String("glowdesk.staff_id", params.StaffID.String()),
	)
	start := g.now()

	member, err := g.staffRepo.GetForTenant(ctx, params.TenantID, params.StaffID)
	if err != nil {
		g.observe("commit", "error", start)
		return nil, err
	}
	if err := g.validateRange(ctx, member, params.Range, uuid.Nil); err != nil {
		span.RecordError(err)
		g.observe("commit", "rejected", start)
		return nil, err
	}

	appt, err := g.store.Create(ctx, params)
	if err != nil {
		span.RecordError(err)
		g.observe("commit", outcomeFor(err), start)
		return nil, err
	}

	g.observe("commit", "committed", start)
	g.logger.Info("appointment committed",
		"tenant_id", params.TenantID,
		"staff_id", params.StaffID,
		"appointment_id", appt.ID,
		"range", appt.Range.String(),
	)
	return appt, nil
}

// Lookup returns an appointment scoped to the tenant.
func (g *Guard) Lookup(ctx context.Context, tenantID, appointmentID uuid.UUID) (*Appointment, error) {
	return g.store.GetForTenant(ctx, tenantID, appointmentID)
}

// Recommit moves an existing confirmed appointment to a new range,
// excluding the appointment's own prior record from the overlap check.
// On ErrConflict nothing changes and the caller restores its prior
// displayed range.
func (g *Guard) Recommit(ctx context.Context, tenantID, appointmentID uuid.UUID, newRange schedule.TimeRange) (*Appointment, error) {
	ctx, span := guardTracer.Start(ctx, "appointments.recommit")
	defer span.End()
	span.SetAttributes(
		attribute.String("glowdesk.tenant_id", tenantID.String()),
		attribute.String("glowdesk.appointment_id", appointmentID.String()),
	)
	start := g.now()

	existing, err := g.store.GetForTenant(ctx, tenantID, appointmentID)
	if err != nil {
		g.observe("recommit", outcomeFor(err), start)
		return nil, err
	}
	member, err := g.staffRepo.GetForTenant(ctx, tenantID, existing.StaffID)
	if err != nil {
		g.observe("recommit", "error", start)
		return nil, err
	}
	if err := g.validateRange(ctx, member, newRange, appointmentID); err != nil {
		span.RecordError(err)
		g.observe("recommit", "rejected", start)
		return nil, err
	}

	appt, err := g.store.UpdateRange(ctx, tenantID, appointmentID, newRange)
	if err != nil {
		span.RecordError(err)
		g.observe("recommit", outcomeFor(err), start)
		return nil, err
	}

	g.observe("recommit", "committed", start)
	g.logger.Info("appointment rescheduled",
		"tenant_id", tenantID,
		"appointment_id", appointmentID,
		"range", appt.Range.String(),
	)
	return appt, nil
}

// validateRange checks eligibility, working-hours containment, lead
// time, and the buffer zone. The buffer check reads a snapshot and is
// best effort; hard exclusivity on the actual ranges stays with the
// store's atomic check. Working hours are anchored in the tenant's
// configured timezone, so the same instant validates identically
// whatever offset notation the caller used.
func (g *Guard) validateRange(ctx context.Context, member *staff.Member, r schedule.TimeRange, excludeID uuid.UUID) error {
	if !member.Bookable() {
		return ErrStaffNotBookable
	}
	cfg, err := g.tenantSettings(ctx, member.TenantID)
	if err != nil {
		return err
	}
	if r.Start.Before(g.now().Add(cfg.MinimumLeadTime)) {
		return ErrLeadTimeViolated
	}

	window, open := member.WindowFor(r.Start, cfg.Location())
	if !open || !window.Contains(r) {
		return fmt.Errorf("%w: %s", ErrOutsideWorkingHours, r)
	}

	if buffer := member.Buffer(); buffer > 0 {
		neighbors, err := g.store.ListByStaffAndRange(ctx, member.TenantID, member.ID, r.Expand(buffer))
		if err != nil {
			return err
		}
		for _, n := range neighbors {
			if n.ID != excludeID {
				return fmt.Errorf("appointments: buffer zone: %w", ErrConflict)
			}
		}
	}
	return nil
}

func (g *Guard) tenantSettings(ctx context.Context, tenantID uuid.UUID) (*settings.Settings, error) {
	if g.settings == nil {
		return &settings.Settings{SlotGranularityMinutes: 15, MinimumLeadTime: g.LeadTime}, nil
	}
	return g.settings.Get(ctx, tenantID.String())
}

func (g *Guard) observe(operation, outcome string, start time.Time) {
	g.metrics.ObserveCommit(operation, outcome)
	g.metrics.ObserveCommitLatency(g.now().Sub(start).Seconds())
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return "committed"
	case isConflict(err):
		return "conflict"
	default:
		return "error"
	}
}
