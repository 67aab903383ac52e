package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mediccompanion/backend/internal/data/repos"
	types "github.com/mediccompanion/backend/internal/domain"
	errs "github.com/mediccompanion/backend/internal/pkg/errors"
	"github.com/mediccompanion/backend/internal/platform/logger"
)

type MedicationService interface {
	Create(ctx context.Context, patientID uuid.UUID, med *types.Medication) (*types.Medication, error)
	Get(ctx context.Context, patientID, medicationID uuid.UUID) (*types.Medication, error)
	List(ctx context.Context, patientID uuid.UUID, activeOnly bool) ([]*types.Medication, error)
	Update(ctx context.Context, patientID, medicationID uuid.UUID, name, dosage string) (*types.Medication, error)
	UpdateSchedules(ctx context.Context, patientID, medicationID uuid.UUID, schedules []*types.Schedule) (*types.Medication, error)
	Deactivate(ctx context.Context, patientID, medicationID uuid.UUID) error
}

type medicationService struct {
	db             *gorm.DB
	log            *logger.Logger
	medicationRepo repos.MedicationRepo
	scheduleRepo   repos.ScheduleRepo
}

func NewMedicationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	medicationRepo repos.MedicationRepo,
	scheduleRepo repos.ScheduleRepo,
) MedicationService {
	return &medicationService{
		db:             db,
		log:            baseLog.With("service", "MedicationService"),
		medicationRepo: medicationRepo,
		scheduleRepo:   scheduleRepo,
	}
}

func validateTimeOfDay(tod string) error {
	parts := strings.SplitN(tod, ":", 2)
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return fmt.Errorf("%w: schedule time must be HH:MM, got %q", errs.ErrInvalidArgument, tod)
	}
	return nil
}

func (ms *medicationService) Create(ctx context.Context, patientID uuid.UUID, med *types.Medication) (*types.Medication, error) {
	med.Name = strings.TrimSpace(med.Name)
	if med.Name == "" {
		return nil, fmt.Errorf("%w: medication name required", errs.ErrInvalidArgument)
	}
	for i := range med.Schedules {
		if err := validateTimeOfDay(med.Schedules[i].TimeOfDay); err != nil {
			return nil, err
		}
	}

	med.ID = uuid.New()
	med.PatientID = patientID
	med.IsActive = true
	for i := range med.Schedules {
		med.Schedules[i].ID = uuid.New()
		med.Schedules[i].MedicationID = med.ID
	}

	var created *types.Medication
	err := ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := ms.medicationRepo.Create(ctx, tx, []*types.Medication{med})
		if err != nil {
			return err
		}
		created = rows[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	ms.log.Info("Medication created", "patient_id", patientID, "medication_id", created.ID)
	return created, nil
}

func (ms *medicationService) Get(ctx context.Context, patientID, medicationID uuid.UUID) (*types.Medication, error) {
	med, err := ms.medicationRepo.GetByID(ctx, nil, medicationID)
	if err != nil {
		return nil, err
	}
	if med.PatientID != patientID {
		return nil, errs.ErrNotFound
	}
	return med, nil
}

func (ms *medicationService) List(ctx context.Context, patientID uuid.UUID, activeOnly bool) ([]*types.Medication, error) {
	return ms.medicationRepo.ListByPatient(ctx, nil, patientID, activeOnly)
}

// Update changes name and dosage; empty arguments keep the stored value.
// Schedule changes go through UpdateSchedules.
func (ms *medicationService) Update(ctx context.Context, patientID, medicationID uuid.UUID, name, dosage string) (*types.Medication, error) {
	med, err := ms.Get(ctx, patientID, medicationID)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(name); v != "" {
		med.Name = v
	}
	if v := strings.TrimSpace(dosage); v != "" {
		med.Dosage = v
	}

	if err := ms.medicationRepo.Update(ctx, nil, med); err != nil {
		return nil, err
	}
	ms.log.Info("Medication updated", "patient_id", patientID, "medication_id", medicationID)
	return med, nil
}

func (ms *medicationService) UpdateSchedules(ctx context.Context, patientID, medicationID uuid.UUID, schedules []*types.Schedule) (*types.Medication, error) {
	for _, s := range schedules {
		if err := validateTimeOfDay(s.TimeOfDay); err != nil {
			return nil, err
		}
	}
	if _, err := ms.Get(ctx, patientID, medicationID); err != nil {
		return nil, err
	}

	err := ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range schedules {
			schedules[i].ID = uuid.New()
		}
		return ms.scheduleRepo.ReplaceForMedication(ctx, tx, medicationID, schedules)
	})
	if err != nil {
		return nil, err
	}
	return ms.medicationRepo.GetByID(ctx, nil, medicationID)
}

func (ms *medicationService) Deactivate(ctx context.Context, patientID, medicationID uuid.UUID) error {
	if err := ms.medicationRepo.Deactivate(ctx, nil, patientID, medicationID); err != nil {
		return err
	}
	ms.log.Info("Medication deactivated", "patient_id", patientID, "medication_id", medicationID)
	return nil
}
