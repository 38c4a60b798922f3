package schedule

import (
	"errors"
	"testing"
	"time"
)

func mustRange(t *testing.T, start, end time.Time) TimeRange {
	t.Helper()
	r, err := NewTimeRange(start, end)
	if err != nil {
		t.Fatalf("NewTimeRange(%s, %s): %v", start, end, err)
	}
	return r
}

func at(hour, min int) time.Time {
	return time.Date(2026, time.March, 2, hour, min, 0, 0, time.UTC)
}

func TestNewTimeRangeRejectsInvertedAndEmpty(t *testing.T) {
	if _, err := NewTimeRange(at(10, 0), at(9, 0)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for inverted range, got %v", err)
	}
	if _, err := NewTimeRange(at(10, 0), at(10, 0)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for empty range, got %v", err)
	}
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	a := mustRange(t, at(9, 0), at(10, 0))
	b := mustRange(t, at(10, 0), at(11, 0))
	if a.Overlaps(b) || b.Overlaps(a) {
		t.Fatalf("touching ranges must not overlap")
	}

	c := mustRange(t, at(9, 30), at(10, 30))
	if !a.Overlaps(c) || !c.Overlaps(a) {
		t.Fatalf("intersecting ranges must overlap")
	}

	inner := mustRange(t, at(9, 15), at(9, 45))
	if !a.Overlaps(inner) || !a.Contains(inner) {
		t.Fatalf("contained range must overlap and be contained")
	}
}

func TestExpandBuildsBufferZone(t *testing.T) {
	r := mustRange(t, at(10, 0), at(10, 45))
	expanded := r.Expand(15 * time.Minute)
	if !expanded.Start.Equal(at(9, 45)) || !expanded.End.Equal(at(11, 0)) {
		t.Fatalf("unexpected expansion: %s", expanded)
	}
	if got := r.Expand(0); got != r {
		t.Fatalf("zero expansion must be identity, got %s", got)
	}
}
