package meds

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/mediccompanion/backend/internal/data/repos/testutil"
	types "github.com/mediccompanion/backend/internal/domain"
	errs "github.com/mediccompanion/backend/internal/pkg/errors"
)

func TestMedicationRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewMedicationRepo(db, testutil.Logger(t))

	p := testutil.SeedPatient(t, ctx, tx, "medrepo@example.com")
	m := &types.Medication{
		ID:        uuid.New(),
		PatientID: p.ID,
		Name:      "Aspirin",
		Dosage:    "75mg",
		IsActive:  true,
		Schedules: []types.Schedule{
			{ID: uuid.New(), TimeOfDay: "08:00"},
			{ID: uuid.New(), TimeOfDay: "20:00"},
		},
	}
	if _, err := repo.Create(ctx, tx, []*types.Medication{m}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, m.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Schedules) != 2 {
		t.Fatalf("schedules not preloaded: %d", len(got.Schedules))
	}

	rows, err := repo.ListByPatient(ctx, tx, p.ID, true)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByPatient: err=%v len=%d", err, len(rows))
	}

	if err := repo.Deactivate(ctx, tx, p.ID, m.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	rows, err = repo.ListByPatient(ctx, tx, p.ID, true)
	if err != nil || len(rows) != 0 {
		t.Fatalf("after Deactivate ListByPatient(active): err=%v len=%d", err, len(rows))
	}
	rows, err = repo.ListByPatient(ctx, tx, p.ID, false)
	if err != nil || len(rows) != 1 {
		t.Fatalf("after Deactivate ListByPatient(all): err=%v len=%d", err, len(rows))
	}

	if err := repo.Deactivate(ctx, tx, p.ID, uuid.New()); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("Deactivate missing: %v", err)
	}
	// A medication belonging to another patient is invisible.
	other := testutil.SeedPatient(t, ctx, tx, "medrepo2@example.com")
	if err := repo.Deactivate(ctx, tx, other.ID, m.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("Deactivate cross-patient: %v", err)
	}
}

func TestScheduleRepoSlots(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewScheduleRepo(db, testutil.Logger(t))
	medRepo := NewMedicationRepo(db, testutil.Logger(t))

	p := testutil.SeedPatient(t, ctx, tx, "schedrepo@example.com")
	active := testutil.SeedMedication(t, ctx, tx, p.ID, "Metformin", "20:00", "08:00")
	inactive := testutil.SeedMedication(t, ctx, tx, p.ID, "Old Med", "09:00")
	if err := medRepo.Deactivate(ctx, tx, p.ID, inactive.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	slots, err := repo.ListActiveSlotsForPatient(ctx, tx, p.ID)
	if err != nil {
		t.Fatalf("ListActiveSlotsForPatient: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("slots = %d, want 2 (inactive medication excluded)", len(slots))
	}
	if slots[0].TimeOfDay != "08:00" || slots[1].TimeOfDay != "20:00" {
		t.Fatalf("slots not ordered by time: %+v", slots)
	}
	if slots[0].MedicationName != "Metformin" {
		t.Fatalf("slot medication = %s", slots[0].MedicationName)
	}
	_ = active

	if err := repo.ReplaceForMedication(ctx, tx, active.ID, []*types.Schedule{
		{ID: uuid.New(), TimeOfDay: "12:00"},
	}); err != nil {
		t.Fatalf("ReplaceForMedication: %v", err)
	}
	slots, err = repo.ListActiveSlotsForPatient(ctx, tx, p.ID)
	if err != nil || len(slots) != 1 || slots[0].TimeOfDay != "12:00" {
		t.Fatalf("after replace: err=%v slots=%+v", err, slots)
	}
}

func TestMedicationRepoUpdate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewMedicationRepo(db, testutil.Logger(t))

	p := testutil.SeedPatient(t, ctx, tx, "medupdate@example.com")
	m := testutil.SeedMedication(t, ctx, tx, p.ID, "Aspirin", "08:00")

	m.Name = "Aspirin EC"
	m.Dosage = "150mg"
	if err := repo.Update(ctx, tx, m); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, m.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Aspirin EC" || got.Dosage != "150mg" {
		t.Errorf("update not persisted: %+v", got)
	}
	if len(got.Schedules) != 1 {
		t.Errorf("schedules disturbed by update: %d", len(got.Schedules))
	}
}
