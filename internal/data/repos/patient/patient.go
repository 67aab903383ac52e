package patient

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

type PatientRepo interface {
	Create(ctx context.Context, tx *gorm.DB, p *types.Patient) (*types.Patient, error)
	GetByID(ctx context.Context, tx *gorm.DB, patientID uuid.UUID) (*types.Patient, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Patient, error)
	ListByRole(ctx context.Context, tx *gorm.DB, role string, limit int) ([]*types.Patient, error)
	Update(ctx context.Context, tx *gorm.DB, p *types.Patient) error
}

type patientRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPatientRepo(db *gorm.DB, baseLog *logger.Logger) PatientRepo {
	return &patientRepo{db: db, log: baseLog.With("repo", "PatientRepo")}
}

func (r *patientRepo) Create(ctx context.Context, tx *gorm.DB, p *types.Patient) (*types.Patient, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(p).Error; err != nil {
		return nil, fmt.Errorf("%w: create patient: %v", errs.ErrStorage, err)
	}
	return p, nil
}

func (r *patientRepo) GetByID(ctx context.Context, tx *gorm.DB, patientID uuid.UUID) (*types.Patient, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Patient
	err := transaction.WithContext(ctx).
		Where("id = ?", patientID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get patient: %v", errs.ErrStorage, err)
	}
	return &result, nil
}

func (r *patientRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Patient, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Patient
	err := transaction.WithContext(ctx).
		Where("email = ?", email).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get patient by email: %v", errs.ErrStorage, err)
	}
	return &result, nil
}

func (r *patientRepo) ListByRole(ctx context.Context, tx *gorm.DB, role string, limit int) ([]*types.Patient, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if limit <= 0 {
		limit = 50
	}
	var results []*types.Patient
	err := transaction.WithContext(ctx).
		Where("role = ?", role).
		Order("first_name ASC, last_name ASC").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list patients by role: %v", errs.ErrStorage, err)
	}
	return results, nil
}

func (r *patientRepo) Update(ctx context.Context, tx *gorm.DB, p *types.Patient) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("%w: update patient: %v", errs.ErrStorage, err)
	}
	return nil
}
