package meds

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/mediccompanion/backend/internal/domain"
	errs "github.com/mediccompanion/backend/internal/pkg/errors"
	"github.com/mediccompanion/backend/internal/platform/logger"
)

type ScheduleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, schedules []*types.Schedule) ([]*types.Schedule, error)
	GetByID(ctx context.Context, tx *gorm.DB, scheduleID uuid.UUID) (*types.Schedule, error)
	ReplaceForMedication(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID, schedules []*types.Schedule) error

	// ListActiveSlotsForPatient joins schedules with their active
	// medications, ordered by time of day.
	ListActiveSlotsForPatient(ctx context.Context, tx *gorm.DB, patientID uuid.UUID) ([]types.ScheduleSlot, error)
}

type scheduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScheduleRepo(db *gorm.DB, baseLog *logger.Logger) ScheduleRepo {
	return &scheduleRepo{db: db, log: baseLog.With("repo", "ScheduleRepo")}
}

func (r *scheduleRepo) Create(ctx context.Context, tx *gorm.DB, schedules []*types.Schedule) ([]*types.Schedule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(schedules) == 0 {
		return []*types.Schedule{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&schedules).Error; err != nil {
		return nil, fmt.Errorf("%w: create schedules: %v", errs.ErrStorage, err)
	}
	return schedules, nil
}

func (r *scheduleRepo) GetByID(ctx context.Context, tx *gorm.DB, scheduleID uuid.UUID) (*types.Schedule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Schedule
	err := transaction.WithContext(ctx).
		Where("id = ?", scheduleID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get schedule: %v", errs.ErrStorage, err)
	}
	return &result, nil
}

func (r *scheduleRepo) ReplaceForMedication(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID, schedules []*types.Schedule) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	err := transaction.WithContext(ctx).
		Where("medication_id = ?", medicationID).
		Delete(&types.Schedule{}).Error
	if err != nil {
		return fmt.Errorf("%w: clear schedules: %v", errs.ErrStorage, err)
	}
	if len(schedules) == 0 {
		return nil
	}
	for i := range schedules {
		schedules[i].MedicationID = medicationID
	}
	if err := transaction.WithContext(ctx).Create(&schedules).Error; err != nil {
		return fmt.Errorf("%w: recreate schedules: %v", errs.ErrStorage, err)
	}
	return nil
}

func (r *scheduleRepo) ListActiveSlotsForPatient(ctx context.Context, tx *gorm.DB, patientID uuid.UUID) ([]types.ScheduleSlot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var slots []types.ScheduleSlot
	err := transaction.WithContext(ctx).
		Table("schedule").
		Select(`schedule.id AS schedule_id,
			medication.id AS medication_id,
			medication.name AS medication_name,
			schedule.time_of_day AS time_of_day,
			schedule.dosage_amount AS dosage_amount`).
		Joins("JOIN medication ON medication.id = schedule.medication_id").
		Where("medication.patient_id = ? AND medication.is_active = ?", patientID, true).
		Where("medication.deleted_at IS NULL AND schedule.deleted_at IS NULL").
		Order("schedule.time_of_day ASC").
		Scan(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list schedule slots: %v", errs.ErrStorage, err)
	}
	return slots, nil
}
