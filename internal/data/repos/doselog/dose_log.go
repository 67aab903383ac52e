package doselog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/mediccompanion/backend/internal/domain"
	errs "github.com/mediccompanion/backend/internal/pkg/errors"
	"github.com/mediccompanion/backend/internal/platform/logger"
)

type DoseLogRepo interface {
	// Upsert records a mark action. A repeat mark for the same schedule and
	// scheduled time updates the existing row in place instead of stacking
	// a second one.
	Upsert(ctx context.Context, tx *gorm.DB, doseLog *types.DoseLog) (*types.DoseLog, error)

	ListForSchedules(ctx context.Context, tx *gorm.DB, scheduleIDs []uuid.UUID, patientID uuid.UUID, from, to time.Time) ([]types.DoseLog, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, windowStart time.Time, status string) (int64, error)
	LastActionAt(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, windowStart time.Time, status string) (*time.Time, error)
	ListRecent(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, windowStart time.Time, limit int) ([]types.DoseLog, error)
	ListHistory(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, from, to time.Time, limit, offset int) ([]types.DoseLog, error)
}

type doseLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDoseLogRepo(db *gorm.DB, baseLog *logger.Logger) DoseLogRepo {
	return &doseLogRepo{db: db, log: baseLog.With("repo", "DoseLogRepo")}
}

func (r *doseLogRepo) Upsert(ctx context.Context, tx *gorm.DB, doseLog *types.DoseLog) (*types.DoseLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var existing types.DoseLog
	err := transaction.WithContext(ctx).
		Where("schedule_id = ? AND patient_id = ? AND scheduled_time = ?",
			doseLog.ScheduleID, doseLog.PatientID, doseLog.ScheduledTime).
		First(&existing).Error
	switch {
	case err == nil:
		existing.Status = doseLog.Status
		existing.ActionType = doseLog.ActionType
		existing.ActionTime = doseLog.ActionTime
		existing.Notes = doseLog.Notes
		if err := transaction.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, fmt.Errorf("%w: update dose log: %v", errs.ErrStorage, err)
		}
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := transaction.WithContext(ctx).Create(doseLog).Error; err != nil {
			return nil, fmt.Errorf("%w: create dose log: %v", errs.ErrStorage, err)
		}
		return doseLog, nil
	default:
		return nil, fmt.Errorf("%w: lookup dose log: %v", errs.ErrStorage, err)
	}
}

func (r *doseLogRepo) ListForSchedules(ctx context.Context, tx *gorm.DB, scheduleIDs []uuid.UUID, patientID uuid.UUID, from, to time.Time) ([]types.DoseLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []types.DoseLog
	if len(scheduleIDs) == 0 {
		return results, nil
	}

	err := transaction.WithContext(ctx).
		Where("schedule_id IN ? AND patient_id = ?", scheduleIDs, patientID).
		Where("scheduled_time >= ? AND scheduled_time <= ?", from, to).
		Order("created_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list dose logs: %v", errs.ErrStorage, err)
	}
	return results, nil
}

func (r *doseLogRepo) CountByStatus(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, windowStart time.Time, status string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var n int64
	err := transaction.WithContext(ctx).
		Model(&types.DoseLog{}).
		Where("patient_id = ? AND status = ? AND scheduled_time >= ?", patientID, status, windowStart).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("%w: count dose logs: %v", errs.ErrStorage, err)
	}
	return n, nil
}

func (r *doseLogRepo) LastActionAt(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, windowStart time.Time, status string) (*time.Time, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.DoseLog
	err := transaction.WithContext(ctx).
		Where("patient_id = ? AND status = ? AND scheduled_time >= ?", patientID, status, windowStart).
		Order("scheduled_time DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: last dose action: %v", errs.ErrStorage, err)
	}
	at := row.ScheduledTime
	if !row.ActionTime.IsZero() {
		at = row.ActionTime
	}
	return &at, nil
}

func (r *doseLogRepo) ListRecent(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, windowStart time.Time, limit int) ([]types.DoseLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []types.DoseLog
	err := transaction.WithContext(ctx).
		Where("patient_id = ? AND scheduled_time >= ?", patientID, windowStart).
		Order("scheduled_time DESC").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list recent dose logs: %v", errs.ErrStorage, err)
	}
	return results, nil
}

func (r *doseLogRepo) ListHistory(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, from, to time.Time, limit, offset int) ([]types.DoseLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []types.DoseLog
	err := transaction.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Where("scheduled_time >= ? AND scheduled_time <= ?", from, to).
		Order("scheduled_time DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list dose history: %v", errs.ErrStorage, err)
	}
	return results, nil
}
