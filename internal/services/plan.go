package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	plannerclient "github.com/mediccompanion/backend/internal/clients/planner"
	"github.com/mediccompanion/backend/internal/data/repos"
	types "github.com/mediccompanion/backend/internal/domain"
	"github.com/mediccompanion/backend/internal/modules/planner"
	errs "github.com/mediccompanion/backend/internal/pkg/errors"
	"github.com/mediccompanion/backend/internal/platform/logger"
)

type PlanService interface {
	// GeneratePlan asks the planning service for a schedule proposal, runs
	// the frequency guardrail over it, and persists the decision for audit.
	// A planner outage degrades to the guardrail's safe fallback instead of
	// failing the request.
	GeneratePlan(ctx context.Context, patientID uuid.UUID, input types.PlanInput) (types.GuardrailResult, error)

	// ContinuePlan refines an earlier proposal with patient feedback and
	// re-runs the guardrail; the review row is updated in place.
	ContinuePlan(ctx context.Context, patientID, reviewID uuid.UUID, prompt string) (types.GuardrailResult, error)

	// ApprovePlan turns a reviewed proposal into persisted medications and
	// schedules. medNames, when non-empty, approves only the named subset.
	ApprovePlan(ctx context.Context, patientID, reviewID uuid.UUID, medNames []string) ([]*types.Medication, error)

	Reviews(ctx context.Context, patientID uuid.UUID, limit int) ([]*types.PlanReview, error)
}

type planService struct {
	db             *gorm.DB
	log            *logger.Logger
	client         plannerclient.Client
	validator      *planner.Validator
	planReviewRepo repos.PlanReviewRepo
	medicationRepo repos.MedicationRepo
}

func NewPlanService(
	db *gorm.DB,
	baseLog *logger.Logger,
	client plannerclient.Client,
	validator *planner.Validator,
	planReviewRepo repos.PlanReviewRepo,
	medicationRepo repos.MedicationRepo,
) PlanService {
	return &planService{
		db:             db,
		log:            baseLog.With("service", "PlanService"),
		client:         client,
		validator:      validator,
		planReviewRepo: planReviewRepo,
		medicationRepo: medicationRepo,
	}
}

func (ps *planService) GeneratePlan(ctx context.Context, patientID uuid.UUID, input types.PlanInput) (types.GuardrailResult, error) {
	input.RawText = strings.TrimSpace(input.RawText)
	if input.RawText == "" && len(input.Meds) == 0 {
		return ps.validator.Validate(input, nil), nil
	}

	var proposed []*types.ProposedScheduleItem
	if ps.client != nil {
		items, err := ps.client.ProposeSchedule(ctx, input)
		if err != nil {
			ps.log.Error("Planner unavailable, falling back", "patient_id", patientID, "error", err)
		} else {
			proposed = items
		}
	}

	result := ps.validator.Validate(input, proposed)

	if err := ps.persistReview(ctx, patientID, input, result); err != nil {
		// The audit row is best-effort; the reviewed plan still goes back
		// to the caller.
		ps.log.Error("Failed to persist plan review", "patient_id", patientID, "error", err)
	}
	return result, nil
}

func (ps *planService) persistReview(ctx context.Context, patientID uuid.UUID, input types.PlanInput, result types.GuardrailResult) error {
	scheduleJSON, err := json.Marshal(result.Schedule)
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}
	mismatchJSON, err := json.Marshal(result.FrequencyMismatches)
	if err != nil {
		return fmt.Errorf("encode mismatches: %w", err)
	}

	_, err = ps.planReviewRepo.Create(ctx, nil, &types.PlanReview{
		ID:         uuid.New(),
		PatientID:  patientID,
		RawText:    input.RawText,
		Schedule:   datatypes.JSON(scheduleJSON),
		Mismatches: datatypes.JSON(mismatchJSON),
		NeedsInfo:  result.NeedsInfo,
		Status:     types.PlanStatusProposed,
	})
	return err
}

func (ps *planService) ContinuePlan(ctx context.Context, patientID, reviewID uuid.UUID, prompt string) (types.GuardrailResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return types.GuardrailResult{}, fmt.Errorf("%w: prompt required", errs.ErrInvalidArgument)
	}

	review, err := ps.ownedReview(ctx, patientID, reviewID)
	if err != nil {
		return types.GuardrailResult{}, err
	}
	if review.Status == types.PlanStatusApproved {
		return types.GuardrailResult{}, fmt.Errorf("%w: plan already approved", errs.ErrInvalidArgument)
	}

	var previous []*types.ProposedScheduleItem
	if len(review.Schedule) > 0 {
		if err := json.Unmarshal(review.Schedule, &previous); err != nil {
			return types.GuardrailResult{}, fmt.Errorf("decode stored schedule: %w", err)
		}
	}

	input := types.PlanInput{
		RawText:    review.RawText,
		Continue:   true,
		UserPrompt: prompt,
		Previous:   previous,
	}
	var proposed []*types.ProposedScheduleItem
	if ps.client != nil {
		items, err := ps.client.ProposeSchedule(ctx, input)
		if err != nil {
			ps.log.Error("Planner unavailable, falling back", "patient_id", patientID, "error", err)
		} else {
			proposed = items
		}
	}

	result := ps.validator.Validate(input, proposed)

	scheduleJSON, err := json.Marshal(result.Schedule)
	if err != nil {
		return types.GuardrailResult{}, fmt.Errorf("encode schedule: %w", err)
	}
	mismatchJSON, err := json.Marshal(result.FrequencyMismatches)
	if err != nil {
		return types.GuardrailResult{}, fmt.Errorf("encode mismatches: %w", err)
	}
	review.Schedule = datatypes.JSON(scheduleJSON)
	review.Mismatches = datatypes.JSON(mismatchJSON)
	review.NeedsInfo = result.NeedsInfo
	if err := ps.planReviewRepo.Update(ctx, nil, review); err != nil {
		ps.log.Error("Failed to update plan review", "patient_id", patientID, "error", err)
	}
	return result, nil
}

func (ps *planService) ApprovePlan(ctx context.Context, patientID, reviewID uuid.UUID, medNames []string) ([]*types.Medication, error) {
	review, err := ps.ownedReview(ctx, patientID, reviewID)
	if err != nil {
		return nil, err
	}
	if review.Status == types.PlanStatusApproved {
		return nil, fmt.Errorf("%w: plan already approved", errs.ErrInvalidArgument)
	}

	var items []*types.ProposedScheduleItem
	if len(review.Schedule) > 0 {
		if err := json.Unmarshal(review.Schedule, &items); err != nil {
			return nil, fmt.Errorf("decode stored schedule: %w", err)
		}
	}
	items = filterPlanItems(items, medNames)
	meds := medicationsFromPlanItems(patientID, items)
	if len(meds) == 0 {
		return nil, fmt.Errorf("%w: nothing to approve", errs.ErrInvalidArgument)
	}

	err = ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ps.medicationRepo.Create(ctx, tx, meds); err != nil {
			return err
		}
		now := time.Now()
		review.Status = types.PlanStatusApproved
		review.ApprovedAt = &now
		return ps.planReviewRepo.Update(ctx, tx, review)
	})
	if err != nil {
		return nil, err
	}
	ps.log.Info("Plan approved", "patient_id", patientID, "review_id", reviewID, "medications", len(meds))
	return meds, nil
}

func (ps *planService) ownedReview(ctx context.Context, patientID, reviewID uuid.UUID) (*types.PlanReview, error) {
	review, err := ps.planReviewRepo.GetByID(ctx, nil, reviewID)
	if err != nil {
		return nil, err
	}
	if review.PatientID != patientID {
		return nil, errs.ErrNotFound
	}
	return review, nil
}

// filterPlanItems keeps only the named medications; an empty filter keeps
// everything. Matching is case-insensitive.
func filterPlanItems(items []*types.ProposedScheduleItem, medNames []string) []*types.ProposedScheduleItem {
	if len(medNames) == 0 {
		return items
	}
	wanted := make(map[string]bool, len(medNames))
	for _, name := range medNames {
		wanted[strings.ToLower(strings.TrimSpace(name))] = true
	}
	var kept []*types.ProposedScheduleItem
	for _, item := range items {
		if item == nil {
			continue
		}
		if wanted[strings.ToLower(strings.TrimSpace(item.MedicationName))] {
			kept = append(kept, item)
		}
	}
	return kept
}

// medicationsFromPlanItems materializes an approved proposal as medication
// rows. Unnamed items and malformed schedule times are dropped rather than
// failing the whole approval.
func medicationsFromPlanItems(patientID uuid.UUID, items []*types.ProposedScheduleItem) []*types.Medication {
	var meds []*types.Medication
	for _, item := range items {
		if item == nil || strings.TrimSpace(item.MedicationName) == "" {
			continue
		}
		med := &types.Medication{
			ID:        uuid.New(),
			PatientID: patientID,
			Name:      strings.TrimSpace(item.MedicationName),
			Dosage:    strings.TrimSpace(item.Dosage),
			IsActive:  true,
		}
		for _, tod := range item.ScheduleTimes {
			tod = strings.TrimSpace(tod)
			if validateTimeOfDay(tod) != nil {
				continue
			}
			med.Schedules = append(med.Schedules, types.Schedule{
				ID:           uuid.New(),
				MedicationID: med.ID,
				TimeOfDay:    tod,
				DosageAmount: med.Dosage,
			})
		}
		meds = append(meds, med)
	}
	return meds
}

func (ps *planService) Reviews(ctx context.Context, patientID uuid.UUID, limit int) ([]*types.PlanReview, error) {
	if patientID == uuid.Nil {
		return nil, errs.ErrInvalidArgument
	}
	return ps.planReviewRepo.ListByPatient(ctx, nil, patientID, limit)
}
