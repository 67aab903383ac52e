package services

import (
	"testing"

	"github.com/google/uuid"

	types "github.com/mediccompanion/backend/internal/domain"
)

func TestMedicationsFromPlanItems(t *testing.T) {
	patientID := uuid.New()
	items := []*types.ProposedScheduleItem{
		{
			MedicationName: " Aspirin ",
			Dosage:         "75mg",
			ScheduleTimes:  types.StringList{"08:00", "20:00"},
		},
		{
			MedicationName: "Metformin",
			Dosage:         "500mg",
			// Malformed times are dropped, the medication survives.
			ScheduleTimes: types.StringList{"8:00", "morning", "21:00"},
		},
		nil,
		{MedicationName: "", Dosage: "10mg"},
	}

	meds := medicationsFromPlanItems(patientID, items)
	if len(meds) != 2 {
		t.Fatalf("got %d medications, want 2", len(meds))
	}

	aspirin := meds[0]
	if aspirin.Name != "Aspirin" || aspirin.PatientID != patientID || !aspirin.IsActive {
		t.Errorf("aspirin row = %+v", aspirin)
	}
	if len(aspirin.Schedules) != 2 {
		t.Fatalf("aspirin schedules = %d, want 2", len(aspirin.Schedules))
	}
	for _, s := range aspirin.Schedules {
		if s.MedicationID != aspirin.ID || s.DosageAmount != "75mg" {
			t.Errorf("schedule not linked to medication: %+v", s)
		}
	}

	metformin := meds[1]
	if len(metformin.Schedules) != 1 || metformin.Schedules[0].TimeOfDay != "21:00" {
		t.Errorf("metformin schedules = %+v, want only the valid 21:00 slot", metformin.Schedules)
	}
}

func TestMedicationsFromPlanItemsEmpty(t *testing.T) {
	if meds := medicationsFromPlanItems(uuid.New(), nil); len(meds) != 0 {
		t.Errorf("nil items produced %d medications", len(meds))
	}
	if meds := medicationsFromPlanItems(uuid.New(), []*types.ProposedScheduleItem{nil, {MedicationName: "  "}}); len(meds) != 0 {
		t.Errorf("empty items produced %d medications", len(meds))
	}
}

func TestFilterPlanItems(t *testing.T) {
	items := []*types.ProposedScheduleItem{
		{MedicationName: "Aspirin"},
		{MedicationName: "Metformin"},
		nil,
		{MedicationName: "Zinc"},
	}

	if kept := filterPlanItems(items, nil); len(kept) != 4 {
		t.Errorf("empty filter kept %d items, want all", len(kept))
	}

	kept := filterPlanItems(items, []string{" aspirin ", "ZINC"})
	if len(kept) != 2 {
		t.Fatalf("kept %d items, want 2", len(kept))
	}
	if kept[0].MedicationName != "Aspirin" || kept[1].MedicationName != "Zinc" {
		t.Errorf("kept = %q, %q", kept[0].MedicationName, kept[1].MedicationName)
	}

	if kept := filterPlanItems(items, []string{"Ibuprofen"}); len(kept) != 0 {
		t.Errorf("unmatched filter kept %d items", len(kept))
	}
}
