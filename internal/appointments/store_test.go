package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"

	"github.com/glowdesk/scheduling/internal/schedule"
)

func mondayRange(t *testing.T, openHour, openMin, durMin int) schedule.TimeRange {
	t.Helper()
	start := time.Date(2026, time.March, 2, openHour, openMin, 0, 0, time.UTC)
	r, err := schedule.NewTimeRange(start, start.Add(time.Duration(durMin)*time.Minute))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	return r
}

func TestStoreCreateReturnsAppointment(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	store := &PostgresStore{pool: mock}

	params := CreateParams{
		TenantID:        uuid.New(),
		StaffID:         uuid.New(),
		Range:           mondayRange(t, 10, 0, 45),
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		ServiceIDs:      []uuid.UUID{uuid.New()},
		TotalPriceCents: 5500,
	}
	now := time.Now()
	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(pgxmock.AnyArg(), params.TenantID, params.StaffID, params.Range.Start, params.Range.End,
			StatusConfirmed, params.CustomerName, params.CustomerEmail, "", params.ServiceIDs, params.TotalPriceCents).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	appt, err := store.Create(context.Background(), params)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if appt.Status != StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", appt.Status)
	}
	if !appt.Range.Start.Equal(params.Range.Start) || !appt.Range.End.Equal(params.Range.End) {
		t.Fatalf("range mismatch: %s", appt.Range)
	}
	if appt.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}
}

func TestStoreCreateMapsExclusionViolationToConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	store := &PostgresStore{pool: mock}

	mock.ExpectQuery("INSERT INTO appointments").
		WillReturnError(&pgconn.PgError{Code: "23P01", ConstraintName: "appointments_no_overlap"})

	_, err = store.Create(context.Background(), CreateParams{
		TenantID: uuid.New(),
		StaffID:  uuid.New(),
		Range:    mondayRange(t, 10, 0, 30),
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("conflict must not be classified as store failure")
	}
}

func TestStoreCreateWrapsInfrastructureFailures(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	store := &PostgresStore{pool: mock}

	mock.ExpectQuery("INSERT INTO appointments").
		WillReturnError(errors.New("connection refused"))

	_, err = store.Create(context.Background(), CreateParams{
		TenantID: uuid.New(),
		StaffID:  uuid.New(),
		Range:    mondayRange(t, 10, 0, 30),
	})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestStoreUpdateRangeConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	store := &PostgresStore{pool: mock}
	tenantID, id := uuid.New(), uuid.New()
	r := mondayRange(t, 14, 0, 30)

	mock.ExpectQuery("UPDATE appointments").
		WithArgs(id, tenantID, r.Start, r.End, StatusConfirmed).
		WillReturnError(&pgconn.PgError{Code: "23P01"})

	if _, err := store.UpdateRange(context.Background(), tenantID, id, r); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestStoreUpdateStatusRejectsInvalidTransition(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	store := &PostgresStore{pool: mock}

	// Rejected before any query.
	if _, err := store.UpdateStatus(context.Background(), uuid.New(), uuid.New(), StatusConfirmed); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := store.UpdateStatus(context.Background(), uuid.New(), uuid.New(), Status("archived")); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for unknown status, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no queries expected: %v", err)
	}
}

func TestStoreListByStaffAndRange(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	store := &PostgresStore{pool: mock}
	tenantID, staffID := uuid.New(), uuid.New()
	within := mondayRange(t, 9, 0, 600)
	busy := mondayRange(t, 10, 0, 45)
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "tenant_id", "staff_id", "lower", "upper", "status",
		"customer_name", "customer_email", "customer_phone", "service_ids", "total_price_cents", "created_at", "updated_at"}).
		AddRow(uuid.New(), tenantID, staffID, busy.Start, busy.End, StatusConfirmed,
			"Ada Lovelace", "ada@example.com", "", []uuid.UUID{uuid.New()}, int64(5500), now, now)
	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WithArgs(tenantID, staffID, StatusConfirmed, StatusCompleted, within.Start, within.End).
		WillReturnRows(rows)

	appts, err := store.ListByStaffAndRange(context.Background(), tenantID, staffID, within)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(appts) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(appts))
	}
	if !appts[0].Range.Start.Equal(busy.Start) || !appts[0].Range.End.Equal(busy.End) {
		t.Fatalf("range mismatch: %s", appts[0].Range)
	}
}
