// Package availability computes bookable slots for a staff member and
// date by combining the staff directory, the appointment store, and the
// tenant settings with the pure slot calculator.
package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/glowdesk/scheduling/internal/appointments"
	"github.com/glowdesk/scheduling/internal/observability/metrics"
	"github.com/glowdesk/scheduling/internal/schedule"
	"github.com/glowdesk/scheduling/internal/settings"
	"github.com/glowdesk/scheduling/internal/staff"
	"github.com/glowdesk/scheduling/pkg/logging"
)

// DateLayout is the wire format for date-only inputs. Dates are
// interpreted in the tenant's configured timezone.
const DateLayout = "2006-01-02"

var availabilityTracer = otel.Tracer("glowdesk.internal.availability")

var (
	// ErrInvalidDate is returned for unparseable date inputs.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidDuration is returned when the requested duration is not
	// strictly positive.
	ErrInvalidDuration = errors.New("duration must be positive")
)

// Service computes candidate slots. Reads only; safe for any number of
// concurrent callers.
type Service struct {
	staffRepo staff.Repository
	store     appointments.Store
	settings  *settings.Store
	metrics   *metrics.SchedulingMetrics
	logger    *logging.Logger

	now func() time.Time
}

// NewService constructs an availability service.
func NewService(staffRepo staff.Repository, store appointments.Store, settingsStore *settings.Store, m *metrics.SchedulingMetrics, logger *logging.Logger) *Service {
	if staffRepo == nil {
		panic("availability: staff repository required")
	}
	if store == nil {
		panic("availability: appointment store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		staffRepo: staffRepo,
		store:     store,
		settings:  settingsStore,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// GetSlots parses the date in the tenant timezone and returns every
// candidate slot for the staff member, available or not. A closed or
// inactive staff member yields an empty result, not an error.
func (s *Service) GetSlots(ctx context.Context, tenantID, staffID uuid.UUID, date string, duration time.Duration) ([]schedule.Slot, error) {
	cfg, err := s.tenantSettings(ctx, tenantID)
	if err != nil {
		s.metrics.ObserveSlotQuery("error")
		return nil, err
	}
	day, err := time.ParseInLocation(DateLayout, date, cfg.Location())
	if err != nil {
		s.metrics.ObserveSlotQuery("rejected")
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return s.SlotsForDay(ctx, tenantID, staffID, day, duration)
}

// SlotsForDay computes slots for an already-resolved calendar day. The
// day's location must be the tenant timezone.
func (s *Service) SlotsForDay(ctx context.Context, tenantID, staffID uuid.UUID, day time.Time, duration time.Duration) ([]schedule.Slot, error) {
	ctx, span := availabilityTracer.Start(ctx, "availability.slots")
	defer span.End()
	span.SetAttributes(
		attribute.String("glowdesk.tenant_id", tenantID.String()),
		attribute.String("glowdesk.staff_id", staffID.String()),
	)

	if duration <= 0 {
		s.metrics.ObserveSlotQuery("rejected")
		return nil, ErrInvalidDuration
	}
	cfg, err := s.tenantSettings(ctx, tenantID)
	if err != nil {
		s.metrics.ObserveSlotQuery("error")
		return nil, err
	}

	member, err := s.staffRepo.GetForTenant(ctx, tenantID, staffID)
	if err != nil {
		s.metrics.ObserveSlotQuery("error")
		return nil, err
	}
	if !member.Bookable() {
		s.metrics.ObserveSlotQuery("empty")
		return nil, nil
	}
	window, open := member.WindowFor(day, cfg.Location())
	if !open {
		s.metrics.ObserveSlotQuery("empty")
		return nil, nil
	}

	// Widen the listing window by the buffer so appointments just
	// outside the working day still produce buffer zones inside it.
	existing, err := s.store.ListByStaffAndRange(ctx, tenantID, staffID, window.Expand(member.Buffer()+duration))
	if err != nil {
		s.metrics.ObserveSlotQuery("error")
		return nil, err
	}
	busy := make([]schedule.TimeRange, 0, len(existing))
	for _, appt := range existing {
		busy = append(busy, appt.Range)
	}

	slots := schedule.ComputeSlots(window, busy, schedule.SlotOptions{
		Duration:    duration,
		Granularity: cfg.Granularity(),
		Now:         s.now(),
		LeadTime:    cfg.MinimumLeadTime,
		Buffer:      member.Buffer(),
	})
	if len(schedule.AvailableOnly(slots)) == 0 {
		s.metrics.ObserveSlotQuery("empty")
	} else {
		s.metrics.ObserveSlotQuery("ok")
	}
	return slots, nil
}

func (s *Service) tenantSettings(ctx context.Context, tenantID uuid.UUID) (*settings.Settings, error) {
	if s.settings == nil {
		return &settings.Settings{SlotGranularityMinutes: 15}, nil
	}
	return s.settings.Get(ctx, tenantID.String())
}
