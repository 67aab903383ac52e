package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/mediccompanion/backend/internal/domain"
)

func SeedPatient(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.Patient {
	tb.Helper()
	p := &types.Patient{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
		Role:      types.RolePatient,
		Timezone:  "UTC",
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed patient: %v", err)
	}
	return p
}

func SeedMedication(tb testing.TB, ctx context.Context, tx *gorm.DB, patientID uuid.UUID, name string, times ...string) *types.Medication {
	tb.Helper()
	m := &types.Medication{
		ID:        uuid.New(),
		PatientID: patientID,
		Name:      name,
		Dosage:    "1 tablet",
		IsActive:  true,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed medication: %v", err)
	}
	for _, tod := range times {
		s := &types.Schedule{
			ID:           uuid.New(),
			MedicationID: m.ID,
			TimeOfDay:    tod,
		}
		if err := tx.WithContext(ctx).Create(s).Error; err != nil {
			tb.Fatalf("seed schedule: %v", err)
		}
		m.Schedules = append(m.Schedules, *s)
	}
	return m
}

func SeedDoseLog(tb testing.TB, ctx context.Context, tx *gorm.DB, patientID uuid.UUID, m *types.Medication, scheduleID uuid.UUID, scheduledAt time.Time, status string) *types.DoseLog {
	tb.Helper()
	l := &types.DoseLog{
		ID:            uuid.New(),
		ScheduleID:    scheduleID,
		MedicationID:  m.ID,
		PatientID:     patientID,
		ScheduledTime: scheduledAt,
		ActionTime:    scheduledAt,
		Status:        status,
		ActionType:    status,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed dose log: %v", err)
	}
	return l
}
