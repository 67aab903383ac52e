package repos

import (
	"gorm.io/gorm"

	"github.com/mediccompanion/backend/internal/data/repos/doselog"
	"github.com/mediccompanion/backend/internal/data/repos/meds"
	"github.com/mediccompanion/backend/internal/data/repos/patient"
	"github.com/mediccompanion/backend/internal/data/repos/plans"
	"github.com/mediccompanion/backend/internal/modules/adherence"
	"github.com/mediccompanion/backend/internal/platform/logger"
)

type PatientRepo = patient.PatientRepo
type MedicationRepo = meds.MedicationRepo
type ScheduleRepo = meds.ScheduleRepo
type DoseLogRepo = doselog.DoseLogRepo
type PlanReviewRepo = plans.PlanReviewRepo

// Repos is the full repository set wired at startup.
type Repos struct {
	Patient    PatientRepo
	Medication MedicationRepo
	Schedule   ScheduleRepo
	DoseLog    DoseLogRepo
	PlanReview PlanReviewRepo

	// AdherenceStore is the read-only view the resolution engine consumes.
	AdherenceStore adherence.Store
}

func New(db *gorm.DB, baseLog *logger.Logger) *Repos {
	scheduleRepo := meds.NewScheduleRepo(db, baseLog)
	doseLogRepo := doselog.NewDoseLogRepo(db, baseLog)

	return &Repos{
		Patient:        patient.NewPatientRepo(db, baseLog),
		Medication:     meds.NewMedicationRepo(db, baseLog),
		Schedule:       scheduleRepo,
		DoseLog:        doseLogRepo,
		PlanReview:     plans.NewPlanReviewRepo(db, baseLog),
		AdherenceStore: doselog.NewAdherenceStore(db, scheduleRepo, doseLogRepo, baseLog),
	}
}
