package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/mediccompanion/backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Patient{},
		&types.Medication{},
		&types.Schedule{},
		&types.DoseLog{},
		&types.PlanReview{},
	)
}

// adherenceIndexes are the composite indexes the resolver and metrics
// queries lean on. AutoMigrate only creates the single-column indexes
// declared on the models.
var adherenceIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_dose_log_patient_scheduled ON dose_log (patient_id, scheduled_time DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_dose_log_patient_status_scheduled ON dose_log (patient_id, status, scheduled_time DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_dose_log_schedule_created ON dose_log (schedule_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_medication_patient_active ON medication (patient_id, is_active)`,
	`CREATE INDEX IF NOT EXISTS idx_schedule_medication ON schedule (medication_id)`,
}

func EnsureAdherenceIndexes(db *gorm.DB) error {
	for _, stmt := range adherenceIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to ensure adherence index: %w", err)
		}
	}
	return nil
}
