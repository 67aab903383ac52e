package plans

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

type PlanReviewRepo interface {
	Create(ctx context.Context, tx *gorm.DB, review *types.PlanReview) (*types.PlanReview, error)
	GetByID(ctx context.Context, tx *gorm.DB, reviewID uuid.UUID) (*types.PlanReview, error)
	ListByPatient(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, limit int) ([]*types.PlanReview, error)
	Update(ctx context.Context, tx *gorm.DB, review *types.PlanReview) error
}

type planReviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanReviewRepo(db *gorm.DB, baseLog *logger.Logger) PlanReviewRepo {
	return &planReviewRepo{db: db, log: baseLog.With("repo", "PlanReviewRepo")}
}

func (r *planReviewRepo) Create(ctx context.Context, tx *gorm.DB, review *types.PlanReview) (*types.PlanReview, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(review).Error; err != nil {
		return nil, fmt.Errorf("%w: create plan review: %v", errs.ErrStorage, err)
	}
	return review, nil
}

func (r *planReviewRepo) GetByID(ctx context.Context, tx *gorm.DB, reviewID uuid.UUID) (*types.PlanReview, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.PlanReview
	err := transaction.WithContext(ctx).
		Where("id = ?", reviewID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get plan review: %v", errs.ErrStorage, err)
	}
	return &result, nil
}

func (r *planReviewRepo) Update(ctx context.Context, tx *gorm.DB, review *types.PlanReview) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Save(review).Error; err != nil {
		return fmt.Errorf("%w: update plan review: %v", errs.ErrStorage, err)
	}
	return nil
}

func (r *planReviewRepo) ListByPatient(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, limit int) ([]*types.PlanReview, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if limit <= 0 {
		limit = 20
	}
	var results []*types.PlanReview
	err := transaction.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list plan reviews: %v", errs.ErrStorage, err)
	}
	return results, nil
}
