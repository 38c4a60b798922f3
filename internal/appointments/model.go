// Package appointments holds the durable appointment record, its store,
// and the conflict guard that enforces staff exclusivity at commit time.
package appointments

import (
	"time"

	"github.com/google/uuid"

	"github.com/glowdesk/scheduling/internal/schedule"
)

// Status is the lifecycle state of a committed appointment.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Blocks reports whether an appointment in this status counts against
// the staff exclusivity invariant.
func (s Status) Blocks() bool {
	return s == StatusConfirmed || s == StatusCompleted
}

// CanTransitionTo enforces the one-way lifecycle: confirmed moves into
// exactly one of completed, cancelled, or no_show; terminal statuses
// never move again.
func (s Status) CanTransitionTo(to Status) bool {
	if s != StatusConfirmed {
		return false
	}
	switch to {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Appointment is a committed booking. It is created only by a successful
// guard commit and mutated only by explicit status changes or reschedule.
type Appointment struct {
	ID              uuid.UUID          `json:"id"`
	TenantID        uuid.UUID          `json:"tenant_id"`
	StaffID         uuid.UUID          `json:"staff_id"`
	Range           schedule.TimeRange `json:"range"`
	Status          Status             `json:"status"`
	CustomerName    string             `json:"customer_name"`
	CustomerEmail   string             `json:"customer_email"`
	CustomerPhone   string             `json:"customer_phone,omitempty"`
	ServiceIDs      []uuid.UUID        `json:"service_ids"`
	TotalPriceCents int64              `json:"total_price_cents"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// CreateParams carries everything a commit writes in one atomic insert.
type CreateParams struct {
	TenantID        uuid.UUID
	StaffID         uuid.UUID
	Range           schedule.TimeRange
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ServiceIDs      []uuid.UUID
	TotalPriceCents int64
}
