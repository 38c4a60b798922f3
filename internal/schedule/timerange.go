// Package schedule holds the pure interval arithmetic behind availability:
// half-open time ranges and the slot calculator. Nothing in here touches
// storage or the clock.
package schedule

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange is returned when a range would not satisfy start < end.
var ErrInvalidRange = errors.New("schedule: range start must be before end")

// TimeRange is a half-open interval [Start, End).
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeRange validates start < end.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if !start.Before(end) {
		return TimeRange{}, fmt.Errorf("%w: [%s, %s)", ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return TimeRange{Start: start, End: end}, nil
}

// Overlaps reports whether two half-open ranges intersect. Ranges that
// merely touch at an endpoint do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains reports whether other lies entirely within r.
func (r TimeRange) Contains(other TimeRange) bool {
	return !other.Start.Before(r.Start) && !other.End.After(r.End)
}

// Duration returns End − Start.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Expand widens the range by d on both sides. Used to build buffer zones
// around existing appointments.
func (r TimeRange) Expand(d time.Duration) TimeRange {
	if d <= 0 {
		return r
	}
	return TimeRange{Start: r.Start.Add(-d), End: r.End.Add(d)}
}

// IsZero reports whether the range is unset.
func (r TimeRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

func (r TimeRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}
