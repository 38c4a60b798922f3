package schedule

import "time"

// Slot is a candidate range for display. Slots are never persisted; the
// Available flag reflects the moment they were computed.
type Slot struct {
	TimeRange
	Available bool `json:"available"`
}

// SlotOptions parameterizes slot computation.
type SlotOptions struct {
	// Duration is the aggregate appointment length. Must be positive.
	Duration time.Duration
	// Granularity is the step between candidate starts. Must be positive.
	Granularity time.Duration
	// Now anchors the lead-time cutoff.
	Now time.Time
	// LeadTime is the minimum interval between Now and a bookable start.
	LeadTime time.Duration
	// Buffer widens every busy range on both sides before the overlap test.
	Buffer time.Duration
}

// ComputeSlots generates candidate slots inside the working window at
// Granularity steps, from the window open through close − Duration
// inclusive. Every candidate is returned; ones that collide with a busy
// range (widened by Buffer), or that start before Now + LeadTime, carry
// Available=false so callers can render both states.
//
// A duration longer than the window yields an empty result, not an error.
// The function is pure: identical inputs produce identical output.
func ComputeSlots(window TimeRange, busy []TimeRange, opts SlotOptions) []Slot {
	if opts.Duration <= 0 || opts.Granularity <= 0 || window.IsZero() {
		return nil
	}

	lastStart := window.End.Add(-opts.Duration)
	if lastStart.Before(window.Start) {
		return nil
	}

	cutoff := opts.Now.Add(opts.LeadTime)

	var slots []Slot
	for start := window.Start; !start.After(lastStart); start = start.Add(opts.Granularity) {
		candidate := TimeRange{Start: start, End: start.Add(opts.Duration)}
		slots = append(slots, Slot{
			TimeRange: candidate,
			Available: !start.Before(cutoff) && !collides(candidate, busy, opts.Buffer),
		})
	}
	return slots
}

// AvailableOnly filters a computed slot list down to bookable candidates.
func AvailableOnly(slots []Slot) []Slot {
	var out []Slot
	for _, s := range slots {
		if s.Available {
			out = append(out, s)
		}
	}
	return out
}

// FindSlot returns the slot starting at the given instant, if present.
func FindSlot(slots []Slot, start time.Time) (Slot, bool) {
	for _, s := range slots {
		if s.Start.Equal(start) {
			return s, true
		}
	}
	return Slot{}, false
}

func collides(candidate TimeRange, busy []TimeRange, buffer time.Duration) bool {
	for _, b := range busy {
		if candidate.Overlaps(b.Expand(buffer)) {
			return true
		}
	}
	return false
}
