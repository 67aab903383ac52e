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

type MedicationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, meds []*types.Medication) ([]*types.Medication, error)
	GetByID(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID) (*types.Medication, error)
	ListByPatient(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, activeOnly bool) ([]*types.Medication, error)
	Update(ctx context.Context, tx *gorm.DB, med *types.Medication) error
	Deactivate(ctx context.Context, tx *gorm.DB, patientID, medicationID uuid.UUID) error
}

type medicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMedicationRepo(db *gorm.DB, baseLog *logger.Logger) MedicationRepo {
	return &medicationRepo{db: db, log: baseLog.With("repo", "MedicationRepo")}
}

func (r *medicationRepo) Create(ctx context.Context, tx *gorm.DB, meds []*types.Medication) ([]*types.Medication, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(meds) == 0 {
		return []*types.Medication{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&meds).Error; err != nil {
		return nil, fmt.Errorf("%w: create medications: %v", errs.ErrStorage, err)
	}
	return meds, nil
}

func (r *medicationRepo) GetByID(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID) (*types.Medication, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Medication
	err := transaction.WithContext(ctx).
		Preload("Schedules").
		Where("id = ?", medicationID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get medication: %v", errs.ErrStorage, err)
	}
	return &result, nil
}

func (r *medicationRepo) ListByPatient(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, activeOnly bool) ([]*types.Medication, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).
		Preload("Schedules").
		Where("patient_id = ?", patientID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var results []*types.Medication
	if err := q.Order("created_at ASC").Find(&results).Error; err != nil {
		return nil, fmt.Errorf("%w: list medications: %v", errs.ErrStorage, err)
	}
	return results, nil
}

func (r *medicationRepo) Update(ctx context.Context, tx *gorm.DB, med *types.Medication) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Save(med).Error; err != nil {
		return fmt.Errorf("%w: update medication: %v", errs.ErrStorage, err)
	}
	return nil
}

// Deactivate soft-stops a medication without touching its dose history.
func (r *medicationRepo) Deactivate(ctx context.Context, tx *gorm.DB, patientID, medicationID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.Medication{}).
		Where("id = ? AND patient_id = ?", medicationID, patientID).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("%w: deactivate medication: %v", errs.ErrStorage, result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}
