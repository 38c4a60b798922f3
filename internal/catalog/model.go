// Package catalog exposes the active service catalog for a tenant:
// bookable services with duration and price.
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Service is a bookable service. Treated as immutable within a booking
// transaction: duration and price are read once and cached on the
// committed appointment.
type Service struct {
	ID              uuid.UUID `json:"id"`
	TenantID        uuid.UUID `json:"tenant_id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	DurationMinutes int       `json:"duration_minutes"`
	PriceCents      int64     `json:"price_cents"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

// Duration returns the service length.
func (s Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// TotalDuration sums service durations. The aggregate must be strictly
// positive for a valid appointment request.
func TotalDuration(services []Service) time.Duration {
	var total time.Duration
	for _, s := range services {
		total += s.Duration()
	}
	return total
}

// TotalPriceCents sums service prices.
func TotalPriceCents(services []Service) int64 {
	var total int64
	for _, s := range services {
		total += s.PriceCents
	}
	return total
}
