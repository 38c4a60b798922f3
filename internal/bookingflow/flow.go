// Package bookingflow drives the booking wizard: an explicit state
// machine whose only side effect is the commit performed on entering
// the final state. Slots are never held between steps; the exclusivity
// check at commit time is the single enforcement point, and a conflict
// bounces the flow back to date selection with a fresh slot list.
package bookingflow

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glowdesk/scheduling/internal/appointments"
	"github.com/glowdesk/scheduling/internal/availability"
	"github.com/glowdesk/scheduling/internal/catalog"
	"github.com/glowdesk/scheduling/internal/schedule"
	"github.com/glowdesk/scheduling/internal/staff"
	"github.com/glowdesk/scheduling/pkg/logging"
)

// State tags a wizard step.
type State string

const (
	StateServiceSelection  State = "service_selection"
	StateStaffSelection    State = "staff_selection"
	StateDateTimeSelection State = "datetime_selection"
	StateCustomerDetails   State = "customer_details"
	StateConfirmation      State = "confirmation"
)

// order maps each state to its position in the forward path.
var order = map[State]int{
	StateServiceSelection:  0,
	StateStaffSelection:    1,
	StateDateTimeSelection: 2,
	StateCustomerDetails:   3,
	StateConfirmation:      4,
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// CustomerInfo carries the details collected on the customer step.
type CustomerInfo struct {
	Name          string
	Email         string
	Phone         string
	TermsAccepted bool
}

func (c CustomerInfo) Validate() *ValidationError {
	var ve ValidationError
	if strings.TrimSpace(c.Name) == "" {
		ve.Fields = append(ve.Fields, FieldError{Field: "name", Reason: "required"})
	}
	switch {
	case strings.TrimSpace(c.Email) == "":
		ve.Fields = append(ve.Fields, FieldError{Field: "email", Reason: "required"})
	case !emailPattern.MatchString(c.Email):
		ve.Fields = append(ve.Fields, FieldError{Field: "email", Reason: "malformed"})
	}
	if !c.TermsAccepted {
		ve.Fields = append(ve.Fields, FieldError{Field: "terms_accepted", Reason: "must be accepted"})
	}
	if len(ve.Fields) > 0 {
		return &ve
	}
	return nil
}

// Engine owns the collaborators every flow needs. One engine serves all
// tenants and flows.
type Engine struct {
	catalog      catalog.Repository
	staffRepo    staff.Repository
	availability *availability.Service
	guard        *appointments.Guard
	logger       *logging.Logger
}

// NewEngine constructs the wizard engine.
func NewEngine(catalogRepo catalog.Repository, staffRepo staff.Repository, avail *availability.Service, guard *appointments.Guard, logger *logging.Logger) *Engine {
	if catalogRepo == nil {
		panic("bookingflow: catalog repository required")
	}
	if staffRepo == nil {
		panic("bookingflow: staff repository required")
	}
	if avail == nil {
		panic("bookingflow: availability service required")
	}
	if guard == nil {
		panic("bookingflow: guard required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		catalog:      catalogRepo,
		staffRepo:    staffRepo,
		availability: avail,
		guard:        guard,
		logger:       logger,
	}
}

// Flow is one in-progress booking. Not safe for concurrent use; each
// flow belongs to a single caller session.
type Flow struct {
	engine   *Engine
	tenantID uuid.UUID

	state     State
	completed map[State]bool

	preferredStaff uuid.UUID
	services       []catalog.Service
	member         *staff.Member
	date           string
	slot           schedule.TimeRange
	customer       CustomerInfo

	appointment    *appointments.Appointment
	conflictErr    error
	refreshedSlots []schedule.Slot
}

// Start opens a flow at service selection. preferredStaff may be
// uuid.Nil; when set, the staff step is auto-resolved after services
// are chosen.
func (e *Engine) Start(tenantID uuid.UUID, preferredStaff uuid.UUID) *Flow {
	return &Flow{
		engine:         e,
		tenantID:       tenantID,
		state:          StateServiceSelection,
		completed:      make(map[State]bool),
		preferredStaff: preferredStaff,
	}
}

// State reports the current step.
func (f *Flow) State() State { return f.state }

// Services returns the selected services.
func (f *Flow) Services() []catalog.Service { return f.services }

// Staff returns the resolved staff member, nil before staff selection.
func (f *Flow) Staff() *staff.Member { return f.member }

// Appointment returns the committed appointment once the flow reaches
// confirmation.
func (f *Flow) Appointment() *appointments.Appointment { return f.appointment }

// LastConflict returns the conflict that bounced the flow back to date
// selection, nil otherwise.
func (f *Flow) LastConflict() error { return f.conflictErr }

// RefreshedSlots returns the slot list recomputed after a conflict.
func (f *Flow) RefreshedSlots() []schedule.Slot { return f.refreshedSlots }

// Duration is the aggregate duration of the selected services.
func (f *Flow) Duration() time.Duration { return catalog.TotalDuration(f.services) }

// SelectServices resolves and pins the chosen services, then advances.
// The staff step is skipped when a preferred member is pre-resolved or
// exactly one eligible member exists.
func (f *Flow) SelectServices(ctx context.Context, ids []uuid.UUID) error {
	if f.state != StateServiceSelection {
		return ErrInvalidStep
	}
	if len(ids) == 0 {
		return invalid("service_ids", "at least one service required")
	}
	services, err := f.engine.catalog.GetByIDs(ctx, f.tenantID, ids)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			return invalid("service_ids", "unknown or inactive service")
		}
		return err
	}
	f.services = services
	f.completed[StateServiceSelection] = true
	f.state = StateStaffSelection
	return f.autoResolveStaff(ctx)
}

// autoResolveStaff skips the staff step when the member is already
// determined.
func (f *Flow) autoResolveStaff(ctx context.Context) error {
	if f.preferredStaff != uuid.Nil {
		member, err := f.engine.staffRepo.GetForTenant(ctx, f.tenantID, f.preferredStaff)
		if err != nil {
			return err
		}
		if !member.Bookable() {
			return invalid("staff_id", "staff member not bookable")
		}
		f.member = member
		f.completed[StateStaffSelection] = true
		f.state = StateDateTimeSelection
		return nil
	}
	eligible, err := f.engine.staffRepo.ListEligible(ctx, f.tenantID)
	if err != nil {
		return err
	}
	if len(eligible) == 1 {
		f.member = eligible[0]
		f.completed[StateStaffSelection] = true
		f.state = StateDateTimeSelection
	}
	return nil
}

// SelectStaff pins the staff member and advances to date selection.
func (f *Flow) SelectStaff(ctx context.Context, staffID uuid.UUID) error {
	if f.state != StateStaffSelection {
		return ErrInvalidStep
	}
	member, err := f.engine.staffRepo.GetForTenant(ctx, f.tenantID, staffID)
	if err != nil {
		return err
	}
	if !member.Bookable() {
		return invalid("staff_id", "staff member not bookable")
	}
	f.member = member
	f.completed[StateStaffSelection] = true
	f.state = StateDateTimeSelection
	return nil
}

// Slots computes the current slot list for a date without advancing.
func (f *Flow) Slots(ctx context.Context, date string) ([]schedule.Slot, error) {
	if f.member == nil || len(f.services) == 0 {
		return nil, ErrInvalidStep
	}
	return f.engine.availability.GetSlots(ctx, f.tenantID, f.member.ID, date, f.Duration())
}

// SelectSlot verifies the chosen start against a freshly computed slot
// list and advances to customer details. The verification is advisory;
// the authoritative check happens at commit.
func (f *Flow) SelectSlot(ctx context.Context, date string, start time.Time) error {
	if f.state != StateDateTimeSelection {
		return ErrInvalidStep
	}
	slots, err := f.engine.availability.GetSlots(ctx, f.tenantID, f.member.ID, date, f.Duration())
	if err != nil {
		return err
	}
	available := schedule.AvailableOnly(slots)
	if len(available) == 0 {
		return ErrNoAvailability
	}
	chosen, ok := schedule.FindSlot(available, start)
	if !ok {
		return invalid("start", "slot is not available")
	}
	f.date = date
	f.slot = chosen.TimeRange
	f.completed[StateDateTimeSelection] = true
	f.state = StateCustomerDetails
	return nil
}

// SubmitCustomerDetails validates and records the customer fields. The
// flow stays on the customer step until Confirm.
func (f *Flow) SubmitCustomerDetails(info CustomerInfo) error {
	if f.state != StateCustomerDetails {
		return ErrInvalidStep
	}
	if ve := info.Validate(); ve != nil {
		return ve
	}
	f.customer = info
	f.completed[StateCustomerDetails] = true
	return nil
}

// Confirm performs the combined validate-and-commit. On success the
// flow terminates at confirmation. On a conflict the flow returns to
// date selection carrying the error and a recomputed slot list; the
// previously displayed slot may have gone stale in the meantime.
func (f *Flow) Confirm(ctx context.Context) error {
	if f.state != StateCustomerDetails || !f.completed[StateCustomerDetails] {
		return ErrInvalidStep
	}
	ids := make([]uuid.UUID, 0, len(f.services))
	for _, s := range f.services {
		ids = append(ids, s.ID)
	}
	appt, err := f.engine.guard.Commit(ctx, appointments.CreateParams{
		TenantID:        f.tenantID,
		StaffID:         f.member.ID,
		Range:           f.slot,
		CustomerName:    f.customer.Name,
		CustomerEmail:   f.customer.Email,
		CustomerPhone:   f.customer.Phone,
		ServiceIDs:      ids,
		TotalPriceCents: catalog.TotalPriceCents(f.services),
	})
	if err != nil {
		if errors.Is(err, appointments.ErrConflict) {
			f.bounceToDateSelection(ctx, err)
		}
		return err
	}
	f.appointment = appt
	f.conflictErr = nil
	f.refreshedSlots = nil
	f.completed[StateConfirmation] = true
	f.state = StateConfirmation
	return nil
}

func (f *Flow) bounceToDateSelection(ctx context.Context, cause error) {
	f.state = StateDateTimeSelection
	f.completed[StateDateTimeSelection] = false
	f.conflictErr = cause
	slots, err := f.engine.availability.GetSlots(ctx, f.tenantID, f.member.ID, f.date, f.Duration())
	if err != nil {
		f.engine.logger.Warn("slot refresh after conflict failed", "tenant_id", f.tenantID, "error", err)
		f.refreshedSlots = nil
		return
	}
	f.refreshedSlots = slots
}

// Back returns to a previously completed step. Forward jumps and moves
// to never-completed steps are rejected; a terminal flow cannot move.
func (f *Flow) Back(to State) error {
	pos, known := order[to]
	if !known || f.state == StateConfirmation {
		return ErrInvalidStep
	}
	if pos >= order[f.state] || !f.completed[to] {
		return ErrInvalidStep
	}
	f.state = to
	f.conflictErr = nil
	f.refreshedSlots = nil
	return nil
}

// Reschedule applies the optimistic pattern for moving an existing
// appointment: the prior duration is preserved, display callbacks see
// the new range immediately, and the prior range is restored when the
// store rejects the move.
func (e *Engine) Reschedule(ctx context.Context, tenantID, appointmentID uuid.UUID, newStart time.Time, display func(schedule.TimeRange)) (*appointments.Appointment, error) {
	prior, err := e.guard.Lookup(ctx, tenantID, appointmentID)
	if err != nil {
		return nil, err
	}
	newRange, err := schedule.NewTimeRange(newStart, newStart.Add(prior.Range.Duration()))
	if err != nil {
		return nil, err
	}
	if display != nil {
		display(newRange)
	}
	appt, err := e.guard.Recommit(ctx, tenantID, appointmentID, newRange)
	if err != nil {
		if display != nil {
			display(prior.Range)
		}
		return nil, err
	}
	return appt, nil
}
