package doselog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mediccompanion/backend/internal/data/repos/testutil"
	types "github.com/mediccompanion/backend/internal/domain"
)

func TestDoseLogRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewDoseLogRepo(db, testutil.Logger(t))

	p := testutil.SeedPatient(t, ctx, tx, "doselog@example.com")
	m := testutil.SeedMedication(t, ctx, tx, p.ID, "Aspirin", "08:00")
	scheduleID := m.Schedules[0].ID
	scheduledAt := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	first, err := repo.Upsert(ctx, tx, &types.DoseLog{
		ScheduleID:    scheduleID,
		MedicationID:  m.ID,
		PatientID:     p.ID,
		ScheduledTime: scheduledAt,
		ActionTime:    scheduledAt.Add(5 * time.Minute),
		Status:        types.DoseStatusSnoozed,
		ActionType:    types.DoseStatusSnoozed,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// A second mark for the same scheduled time updates in place.
	second, err := repo.Upsert(ctx, tx, &types.DoseLog{
		ScheduleID:    scheduleID,
		MedicationID:  m.ID,
		PatientID:     p.ID,
		ScheduledTime: scheduledAt,
		ActionTime:    scheduledAt.Add(20 * time.Minute),
		Status:        types.DoseStatusTaken,
		ActionType:    types.DoseStatusTaken,
	})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected in-place update, got new row %s vs %s", second.ID, first.ID)
	}
	if second.Status != types.DoseStatusTaken {
		t.Fatalf("status = %s", second.Status)
	}

	rows, err := repo.ListForSchedules(ctx, tx, []uuid.UUID{scheduleID}, p.ID,
		scheduledAt.Add(-time.Hour), scheduledAt.Add(time.Hour))
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListForSchedules: err=%v len=%d", err, len(rows))
	}
}

func TestDoseLogRepoWindows(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewDoseLogRepo(db, testutil.Logger(t))

	p := testutil.SeedPatient(t, ctx, tx, "doselogwin@example.com")
	m := testutil.SeedMedication(t, ctx, tx, p.ID, "Metformin", "08:00")
	scheduleID := m.Schedules[0].ID

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	statuses := []string{
		types.DoseStatusTaken,
		types.DoseStatusMissed,
		types.DoseStatusTaken,
		types.DoseStatusMissed,
		types.DoseStatusMissed,
	}
	for i, st := range statuses {
		testutil.SeedDoseLog(t, ctx, tx, p.ID, m, scheduleID, base.AddDate(0, 0, i), st)
	}
	windowStart := base.Add(-time.Hour)

	if n, err := repo.CountByStatus(ctx, tx, p.ID, windowStart, types.DoseStatusTaken); err != nil || n != 2 {
		t.Fatalf("CountByStatus taken: err=%v n=%d", err, n)
	}
	if n, err := repo.CountByStatus(ctx, tx, p.ID, windowStart, types.DoseStatusMissed); err != nil || n != 3 {
		t.Fatalf("CountByStatus missed: err=%v n=%d", err, n)
	}

	last, err := repo.LastActionAt(ctx, tx, p.ID, windowStart, types.DoseStatusMissed)
	if err != nil || last == nil {
		t.Fatalf("LastActionAt: err=%v last=%v", err, last)
	}
	if want := base.AddDate(0, 0, 4); !last.Equal(want) {
		t.Fatalf("LastActionAt = %v, want %v", last, want)
	}
	if none, err := repo.LastActionAt(ctx, tx, p.ID, windowStart, types.DoseStatusSkipped); err != nil || none != nil {
		t.Fatalf("LastActionAt none: err=%v got=%v", err, none)
	}

	recent, err := repo.ListRecent(ctx, tx, p.ID, windowStart, 3)
	if err != nil || len(recent) != 3 {
		t.Fatalf("ListRecent: err=%v len=%d", err, len(recent))
	}
	// Most recent scheduled time first: missed, missed, missed.
	if recent[0].Status != types.DoseStatusMissed || !recent[0].ScheduledTime.Equal(base.AddDate(0, 0, 4)) {
		t.Fatalf("recent[0] = %+v", recent[0])
	}

	hist, err := repo.ListHistory(ctx, tx, p.ID, base, base.AddDate(0, 0, 2), 10, 0)
	if err != nil || len(hist) != 3 {
		t.Fatalf("ListHistory: err=%v len=%d", err, len(hist))
	}
}

func TestAdherenceStoreScheduledOccurrences(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	logg := testutil.Logger(t)

	p := testutil.SeedPatient(t, ctx, tx, "occurrences@example.com")
	testutil.SeedMedication(t, ctx, tx, p.ID, "Aspirin", "08:00", "20:00")

	// The adapter runs against the tx so the seeded rows are visible.
	st := &store{db: tx, log: logg, now: time.Now}
	windowStart := time.Now().AddDate(0, 0, -7)

	// Both slots were created just now, so each owes a single occurrence.
	n, err := st.CountScheduledDoseOccurrences(ctx, p.ID, windowStart)
	if err != nil {
		t.Fatalf("CountScheduledDoseOccurrences: %v", err)
	}
	if n != 2 {
		t.Fatalf("occurrences = %d, want 2 for freshly created slots", n)
	}
}
