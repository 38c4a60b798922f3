package staff

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func monSat(open, close string) WorkingHours {
	wh := WorkingHours{}
	for day := time.Monday; day <= time.Saturday; day++ {
		wh[day] = DayHours{Open: open, Close: close}
	}
	return wh
}

func TestWindowForOpenDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	m := &Member{
		ID:           uuid.New(),
		Active:       true,
		CanBook:      true,
		WorkingHours: monSat("09:00", "19:00"),
	}

	// Monday March 2 2026.
	date := time.Date(2026, time.March, 2, 0, 0, 0, 0, loc)
	window, ok := m.WindowFor(date, loc)
	if !ok {
		t.Fatalf("expected Monday window")
	}
	if window.Start.Hour() != 9 || window.End.Hour() != 19 {
		t.Fatalf("unexpected window %s", window)
	}
	if window.Start.Location() != loc {
		t.Fatalf("window must be anchored in the tenant timezone")
	}
}

func TestWindowForClosedDay(t *testing.T) {
	m := &Member{WorkingHours: monSat("09:00", "19:00")}
	// Sunday March 1 2026.
	sunday := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	if _, ok := m.WindowFor(sunday, time.UTC); ok {
		t.Fatalf("expected closed Sunday to yield no window")
	}
}

func TestWindowForMalformedHours(t *testing.T) {
	m := &Member{WorkingHours: WorkingHours{time.Monday: {Open: "9am", Close: "19:00"}}}
	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	if _, ok := m.WindowFor(monday, time.UTC); ok {
		t.Fatalf("expected malformed hours to yield no window")
	}

	inverted := &Member{WorkingHours: WorkingHours{time.Monday: {Open: "19:00", Close: "09:00"}}}
	if _, ok := inverted.WindowFor(monday, time.UTC); ok {
		t.Fatalf("expected inverted hours to yield no window")
	}
}

func TestBookableAndBuffer(t *testing.T) {
	m := &Member{Active: true, CanBook: true, BufferMinutes: 15}
	if !m.Bookable() {
		t.Fatalf("active bookable member must be bookable")
	}
	if m.Buffer() != 15*time.Minute {
		t.Fatalf("expected 15m buffer, got %s", m.Buffer())
	}

	m.Active = false
	if m.Bookable() {
		t.Fatalf("inactive member must not be bookable")
	}
	var nilMember *Member
	if nilMember.Bookable() {
		t.Fatalf("nil member must not be bookable")
	}
}

func TestWorkingHoursJSONRoundTrip(t *testing.T) {
	wh := WorkingHours{
		time.Monday:   {Open: "09:00", Close: "19:00"},
		time.Saturday: {Open: "10:00", Close: "16:00"},
	}
	data, err := wh.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded WorkingHours
	if err := decoded.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded[time.Monday].Open != "09:00" || decoded[time.Saturday].Close != "16:00" {
		t.Fatalf("round trip mismatch: %v", decoded)
	}
	if _, ok := decoded[time.Sunday]; ok {
		t.Fatalf("absent weekday must stay absent")
	}

	if err := decoded.UnmarshalJSON([]byte(`{"moonday": {"open":"09:00","close":"17:00"}}`)); err == nil {
		t.Fatalf("expected unknown weekday to be rejected")
	}
}
