package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/glowdesk/scheduling/internal/schedule"
	"github.com/glowdesk/scheduling/internal/settings"
	"github.com/glowdesk/scheduling/internal/staff"
)

func guardFixture(t *testing.T, bufferMinutes int) (*Guard, *MemoryStore, *staff.Member) {
	t.Helper()
	store := NewMemoryStore()
	staffRepo := staff.NewInMemoryRepository()

	hours := staff.WorkingHours{}
	for day := time.Monday; day <= time.Saturday; day++ {
		hours[day] = staff.DayHours{Open: "09:00", Close: "19:00"}
	}
	member := &staff.Member{
		ID:            uuid.New(),
		TenantID:      uuid.New(),
		Name:          "Riley",
		Active:        true,
		CanBook:       true,
		WorkingHours:  hours,
		BufferMinutes: bufferMinutes,
	}
	staffRepo.Put(member)

	guard := NewGuard(store, staffRepo, nil, nil, nil, 2*time.Hour)
	// Sunday evening before the Monday fixture day.
	guard.now = func() time.Time { return time.Date(2026, time.March, 1, 18, 0, 0, 0, time.UTC) }
	return guard, store, member
}

func commitParams(member *staff.Member, r schedule.TimeRange) CreateParams {
	return CreateParams{
		TenantID:      member.TenantID,
		StaffID:       member.ID,
		Range:         r,
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		ServiceIDs:    []uuid.UUID{uuid.New()},
	}
}

func TestGuardCommitHappyPath(t *testing.T) {
	guard, store, member := guardFixture(t, 0)
	r := mondayRange(t, 10, 0, 45)

	appt, err := guard.Commit(context.Background(), commitParams(member, r))
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if appt.Status != StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", appt.Status)
	}

	listed, err := store.ListByStaffAndRange(context.Background(), member.TenantID, member.ID, mondayRange(t, 0, 0, 24*60))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected committed appointment persisted")
	}
}

func TestGuardCommitConflictPassthrough(t *testing.T) {
	guard, _, member := guardFixture(t, 0)
	r := mondayRange(t, 10, 0, 45)

	if _, err := guard.Commit(context.Background(), commitParams(member, r)); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	overlapping := mondayRange(t, 10, 15, 45)
	if _, err := guard.Commit(context.Background(), commitParams(member, overlapping)); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestGuardCommitRejectsOutsideWorkingHours(t *testing.T) {
	guard, _, member := guardFixture(t, 0)

	// Ends past close.
	late := mondayRange(t, 18, 45, 30)
	if _, err := guard.Commit(context.Background(), commitParams(member, late)); !errors.Is(err, ErrOutsideWorkingHours) {
		t.Fatalf("expected ErrOutsideWorkingHours, got %v", err)
	}

	// Sunday: closed.
	sunStart := time.Date(2026, time.March, 8, 10, 0, 0, 0, time.UTC)
	sunday := schedule.TimeRange{Start: sunStart, End: sunStart.Add(30 * time.Minute)}
	if _, err := guard.Commit(context.Background(), commitParams(member, sunday)); !errors.Is(err, ErrOutsideWorkingHours) {
		t.Fatalf("expected ErrOutsideWorkingHours for closed day, got %v", err)
	}
}

func TestGuardCommitRejectsLeadTimeViolation(t *testing.T) {
	guard, _, member := guardFixture(t, 0)
	// Now is Monday 09:30; a 10:00 start is inside the 2h lead time.
	guard.now = func() time.Time { return time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC) }

	if _, err := guard.Commit(context.Background(), commitParams(member, mondayRange(t, 10, 0, 30))); !errors.Is(err, ErrLeadTimeViolated) {
		t.Fatalf("expected ErrLeadTimeViolated, got %v", err)
	}
	// 11:30 is exactly now+lead and is allowed.
	if _, err := guard.Commit(context.Background(), commitParams(member, mondayRange(t, 11, 30, 30))); err != nil {
		t.Fatalf("boundary commit: %v", err)
	}
}

func TestGuardCommitRejectsUnbookableStaff(t *testing.T) {
	guard, _, member := guardFixture(t, 0)
	member.Active = false

	if _, err := guard.Commit(context.Background(), commitParams(member, mondayRange(t, 10, 0, 30))); !errors.Is(err, ErrStaffNotBookable) {
		t.Fatalf("expected ErrStaffNotBookable, got %v", err)
	}

	if _, err := guard.Commit(context.Background(), CreateParams{
		TenantID: member.TenantID,
		StaffID:  uuid.New(),
		Range:    mondayRange(t, 10, 0, 30),
	}); !errors.Is(err, staff.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestGuardCommitEnforcesBufferZone(t *testing.T) {
	guard, _, member := guardFixture(t, 15)

	if _, err := guard.Commit(context.Background(), commitParams(member, mondayRange(t, 10, 0, 45))); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	// 10:45 touches the appointment; the 15-minute buffer rejects it.
	if _, err := guard.Commit(context.Background(), commitParams(member, mondayRange(t, 10, 45, 30))); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected buffer conflict, got %v", err)
	}
	// 11:00 clears the buffer.
	if _, err := guard.Commit(context.Background(), commitParams(member, mondayRange(t, 11, 0, 30))); err != nil {
		t.Fatalf("commit past buffer: %v", err)
	}
}

func TestGuardRecommit(t *testing.T) {
	guard, _, member := guardFixture(t, 0)
	ctx := context.Background()

	first, err := guard.Commit(ctx, commitParams(member, mondayRange(t, 10, 0, 45)))
	if err != nil {
		t.Fatalf("commit first: %v", err)
	}
	second, err := guard.Commit(ctx, commitParams(member, mondayRange(t, 12, 0, 45)))
	if err != nil {
		t.Fatalf("commit second: %v", err)
	}

	// Onto an overlap with a different appointment: rejected.
	if _, err := guard.Recommit(ctx, member.TenantID, second.ID, mondayRange(t, 10, 15, 45)); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	// Onto its own unchanged prior range: succeeds.
	if _, err := guard.Recommit(ctx, member.TenantID, first.ID, first.Range); err != nil {
		t.Fatalf("recommit own range: %v", err)
	}
	// Onto a free, in-hours range: succeeds.
	moved, err := guard.Recommit(ctx, member.TenantID, second.ID, mondayRange(t, 15, 0, 45))
	if err != nil {
		t.Fatalf("recommit free range: %v", err)
	}
	if moved.Range.Start.Hour() != 15 {
		t.Fatalf("unexpected moved range %s", moved.Range)
	}

	// Unknown appointment.
	if _, err := guard.Recommit(ctx, member.TenantID, uuid.New(), mondayRange(t, 16, 0, 30)); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

// seedTenantSettings wires the guard to a settings store holding the
// given tenant configuration.
func seedTenantSettings(t *testing.T, guard *Guard, cfg *settings.Settings) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := settings.NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), settings.Defaults{
		Timezone:               "UTC",
		SlotGranularityMinutes: 15,
		MinimumLeadTime:        2 * time.Hour,
	})
	if err := store.Set(context.Background(), cfg); err != nil {
		t.Fatalf("seed settings: %v", err)
	}
	guard.settings = store
}

func TestGuardCommitNormalizesCallerOffset(t *testing.T) {
	guard, _, member := guardFixture(t, 0)
	ctx := context.Background()

	// Monday 05:00 UTC written as 10:00+05:00: the same instant is out
	// of the 09:00-19:00 tenant-timezone day whichever way it is spelled.
	plusFive := time.FixedZone("UTC+5", 5*60*60)
	early := time.Date(2026, time.March, 2, 10, 0, 0, 0, plusFive)
	earlyRange := schedule.TimeRange{Start: early, End: early.Add(30 * time.Minute)}
	if _, err := guard.Commit(ctx, commitParams(member, earlyRange)); !errors.Is(err, ErrOutsideWorkingHours) {
		t.Fatalf("expected ErrOutsideWorkingHours, got %v", err)
	}

	// Monday 10:00 UTC written as 15:00+05:00 is in hours and commits
	// exactly as its UTC spelling would.
	inHours := time.Date(2026, time.March, 2, 15, 0, 0, 0, plusFive)
	r := schedule.TimeRange{Start: inHours, End: inHours.Add(30 * time.Minute)}
	if _, err := guard.Commit(ctx, commitParams(member, r)); err != nil {
		t.Fatalf("commit in-hours offset range: %v", err)
	}
}

func TestGuardCommitAnchorsHoursInTenantTimezone(t *testing.T) {
	guard, _, member := guardFixture(t, 0)
	seedTenantSettings(t, guard, &settings.Settings{
		TenantID: member.TenantID.String(),
		Timezone: "America/New_York",
	})
	ctx := context.Background()

	// Monday 22:00 UTC is Monday 17:00 in New York: inside the tenant's
	// 09:00-19:00 day even though UTC has already passed close.
	evening := time.Date(2026, time.March, 2, 22, 0, 0, 0, time.UTC)
	if _, err := guard.Commit(ctx, commitParams(member, schedule.TimeRange{Start: evening, End: evening.Add(30 * time.Minute)})); err != nil {
		t.Fatalf("commit in tenant hours: %v", err)
	}

	// Monday 10:00 UTC is 05:00 in New York: before open.
	early := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	if _, err := guard.Commit(ctx, commitParams(member, schedule.TimeRange{Start: early, End: early.Add(30 * time.Minute)})); !errors.Is(err, ErrOutsideWorkingHours) {
		t.Fatalf("expected ErrOutsideWorkingHours, got %v", err)
	}
}

func TestGuardCommitUsesTenantLeadTime(t *testing.T) {
	guard, _, member := guardFixture(t, 0)
	seedTenantSettings(t, guard, &settings.Settings{
		TenantID:        member.TenantID.String(),
		Timezone:        "UTC",
		MinimumLeadTime: 30 * time.Minute,
	})
	// Now Monday 09:30; a 10:00 start clears the tenant's 30-minute
	// lead time even though the guard's fallback default is two hours.
	guard.now = func() time.Time { return time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC) }
	if _, err := guard.Commit(context.Background(), commitParams(member, mondayRange(t, 10, 0, 30))); err != nil {
		t.Fatalf("commit within tenant lead time: %v", err)
	}

	strict, _, strictMember := guardFixture(t, 0)
	seedTenantSettings(t, strict, &settings.Settings{
		TenantID:        strictMember.TenantID.String(),
		Timezone:        "UTC",
		MinimumLeadTime: 24 * time.Hour,
	})
	strict.now = func() time.Time { return time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC) }
	if _, err := strict.Commit(context.Background(), commitParams(strictMember, mondayRange(t, 12, 0, 30))); !errors.Is(err, ErrLeadTimeViolated) {
		t.Fatalf("expected ErrLeadTimeViolated, got %v", err)
	}
}

func TestGuardRecommitKeepsWorkingHoursInvariant(t *testing.T) {
	guard, _, member := guardFixture(t, 0)
	ctx := context.Background()

	appt, err := guard.Commit(ctx, commitParams(member, mondayRange(t, 10, 0, 45)))
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	late := mondayRange(t, 18, 45, 45)
	if _, err := guard.Recommit(ctx, member.TenantID, appt.ID, late); !errors.Is(err, ErrOutsideWorkingHours) {
		t.Fatalf("expected ErrOutsideWorkingHours, got %v", err)
	}
}
