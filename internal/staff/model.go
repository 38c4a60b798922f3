// Package staff exposes the staff directory: booking-eligible members,
// their per-weekday working hours, and buffer configuration.
package staff

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glowdesk/scheduling/internal/schedule"
)

// DayHours is the open/close window for a single weekday in "15:04"
// 24-hour format. A weekday absent from WorkingHours means closed.
type DayHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// WorkingHours maps weekdays to their hours.
type WorkingHours map[time.Weekday]DayHours

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// MarshalJSON encodes working hours keyed by lowercase weekday name, the
// shape stored in the staff_members.working_hours column.
func (wh WorkingHours) MarshalJSON() ([]byte, error) {
	out := make(map[string]DayHours, len(wh))
	for day, hours := range wh {
		out[strings.ToLower(day.String())] = hours
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the day-name keyed representation.
func (wh *WorkingHours) UnmarshalJSON(data []byte) error {
	var raw map[string]DayHours
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(WorkingHours, len(raw))
	for name, hours := range raw {
		day, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("staff: unknown weekday %q", name)
		}
		out[day] = hours
	}
	*wh = out
	return nil
}

// Member is a staff member as exposed by the directory.
type Member struct {
	ID            uuid.UUID    `json:"id"`
	TenantID      uuid.UUID    `json:"tenant_id"`
	Name          string       `json:"name"`
	Active        bool         `json:"active"`
	CanBook       bool         `json:"can_book"`
	WorkingHours  WorkingHours `json:"working_hours"`
	BufferMinutes int          `json:"buffer_minutes"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Bookable reports whether the member can take appointments at all.
func (m *Member) Bookable() bool {
	return m != nil && m.Active && m.CanBook
}

// Buffer returns the configured idle time around appointments.
func (m *Member) Buffer() time.Duration {
	if m == nil || m.BufferMinutes <= 0 {
		return 0
	}
	return time.Duration(m.BufferMinutes) * time.Minute
}

// WindowFor resolves the member's working window on the given calendar
// date in loc. The second return is false when the member is closed that
// weekday or the hours are malformed.
func (m *Member) WindowFor(date time.Time, loc *time.Location) (schedule.TimeRange, bool) {
	if m == nil {
		return schedule.TimeRange{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	day := date.In(loc)
	hours, ok := m.WorkingHours[day.Weekday()]
	if !ok {
		return schedule.TimeRange{}, false
	}

	open, err := clockOn(day, hours.Open, loc)
	if err != nil {
		return schedule.TimeRange{}, false
	}
	close, err := clockOn(day, hours.Close, loc)
	if err != nil {
		return schedule.TimeRange{}, false
	}

	window, err := schedule.NewTimeRange(open, close)
	if err != nil {
		return schedule.TimeRange{}, false
	}
	return window, true
}

func clockOn(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("staff: parse clock %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, loc), nil
}
