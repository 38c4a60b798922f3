package appointments

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/glowdesk/scheduling/internal/schedule"
)

// MemoryStore is a Store with the same check-and-commit semantics as the
// Postgres exclusion constraint, serialized by a mutex. Used in tests
// and local development; a single mutex is only equivalent to the
// database constraint within one process.
type MemoryStore struct {
	mu    sync.Mutex
	appts map[uuid.UUID]*Appointment
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{appts: make(map[uuid.UUID]*Appointment)}
}

// Create inserts a confirmed appointment, failing with ErrConflict when
// the range overlaps a blocking appointment for the same staff.
func (s *MemoryStore) Create(ctx context.Context, params CreateParams) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.overlapsLocked(params.StaffID, params.Range, uuid.Nil) {
		return nil, fmt.Errorf("appointments: insert: %w", ErrConflict)
	}

	now := time.Now().UTC()
	appt := &Appointment{
		ID:              uuid.New(),
		TenantID:        params.TenantID,
		StaffID:         params.StaffID,
		Range:           params.Range,
		Status:          StatusConfirmed,
		CustomerName:    params.CustomerName,
		CustomerEmail:   params.CustomerEmail,
		CustomerPhone:   params.CustomerPhone,
		ServiceIDs:      params.ServiceIDs,
		TotalPriceCents: params.TotalPriceCents,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.appts[appt.ID] = appt
	return cloned(appt), nil
}

// UpdateRange moves a confirmed appointment, excluding the row itself
// from its own overlap check.
func (s *MemoryStore) UpdateRange(ctx context.Context, tenantID, id uuid.UUID, newRange schedule.TimeRange) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.appts[id]
	if !ok || appt.TenantID != tenantID || appt.Status != StatusConfirmed {
		return nil, ErrAppointmentNotFound
	}
	if s.overlapsLocked(appt.StaffID, newRange, id) {
		return nil, fmt.Errorf("appointments: update range: %w", ErrConflict)
	}
	appt.Range = newRange
	appt.UpdatedAt = time.Now().UTC()
	return cloned(appt), nil
}

// UpdateStatus applies a one-way transition out of confirmed.
func (s *MemoryStore) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, to Status) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.appts[id]
	if !ok || appt.TenantID != tenantID {
		return nil, ErrAppointmentNotFound
	}
	if !appt.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, to)
	}
	appt.Status = to
	appt.UpdatedAt = time.Now().UTC()
	return cloned(appt), nil
}

// GetForTenant returns an appointment scoped to the tenant.
func (s *MemoryStore) GetForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.appts[id]
	if !ok || appt.TenantID != tenantID {
		return nil, ErrAppointmentNotFound
	}
	return cloned(appt), nil
}

// ListByStaffAndRange returns blocking appointments intersecting the range.
func (s *MemoryStore) ListByStaffAndRange(ctx context.Context, tenantID, staffID uuid.UUID, within schedule.TimeRange) ([]*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Appointment
	for _, appt := range s.appts {
		if appt.TenantID == tenantID && appt.StaffID == staffID && appt.Status.Blocks() && appt.Range.Overlaps(within) {
			out = append(out, cloned(appt))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Range.Start.Before(out[j].Range.Start) })
	return out, nil
}

func (s *MemoryStore) overlapsLocked(staffID uuid.UUID, r schedule.TimeRange, excludeID uuid.UUID) bool {
	for _, appt := range s.appts {
		if appt.ID == excludeID || appt.StaffID != staffID || !appt.Status.Blocks() {
			continue
		}
		if appt.Range.Overlaps(r) {
			return true
		}
	}
	return false
}

func cloned(appt *Appointment) *Appointment {
	c := *appt
	c.ServiceIDs = append([]uuid.UUID(nil), appt.ServiceIDs...)
	return &c
}
