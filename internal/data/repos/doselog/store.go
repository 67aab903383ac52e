package doselog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mediccompanion/backend/internal/data/repos/meds"
	types "github.com/mediccompanion/backend/internal/domain"
	"github.com/mediccompanion/backend/internal/modules/adherence"
	errs "github.com/mediccompanion/backend/internal/pkg/errors"
	"github.com/mediccompanion/backend/internal/platform/logger"
)

// store adapts the repos to the read-only contract the resolver and metrics
// engine consume. All calls run outside any transaction.
type store struct {
	db        *gorm.DB
	schedules meds.ScheduleRepo
	doseLogs  DoseLogRepo
	log       *logger.Logger
	now       func() time.Time
}

var _ adherence.Store = (*store)(nil)

func NewAdherenceStore(db *gorm.DB, schedules meds.ScheduleRepo, doseLogs DoseLogRepo, baseLog *logger.Logger) adherence.Store {
	return &store{
		db:        db,
		schedules: schedules,
		doseLogs:  doseLogs,
		log:       baseLog.With("repo", "AdherenceStore"),
		now:       time.Now,
	}
}

func (s *store) ListActiveSchedulesForPatient(ctx context.Context, patientID uuid.UUID) ([]types.ScheduleSlot, error) {
	return s.schedules.ListActiveSlotsForPatient(ctx, nil, patientID)
}

func (s *store) ListDoseLogsForSchedules(ctx context.Context, scheduleIDs []uuid.UUID, patientID uuid.UUID, from, to time.Time) ([]types.DoseLog, error) {
	return s.doseLogs.ListForSchedules(ctx, nil, scheduleIDs, patientID, from, to)
}

// CountScheduledDoseOccurrences derives the expected dose count from the
// schedule definitions: one occurrence per slot per elapsed day, with each
// slot's window clipped to its own creation day so a newly added medication
// does not owe doses for days before it existed.
func (s *store) CountScheduledDoseOccurrences(ctx context.Context, patientID uuid.UUID, windowStart time.Time) (int64, error) {
	type slotRow struct {
		CreatedAt time.Time
	}
	var rows []slotRow
	err := s.db.WithContext(ctx).
		Table("schedule").
		Select("schedule.created_at AS created_at").
		Joins("JOIN medication ON medication.id = schedule.medication_id").
		Where("medication.patient_id = ? AND medication.is_active = ?", patientID, true).
		Where("medication.deleted_at IS NULL AND schedule.deleted_at IS NULL").
		Scan(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("%w: list schedule starts: %v", errs.ErrStorage, err)
	}

	now := s.now()
	var total int64
	for _, row := range rows {
		start := windowStart
		if row.CreatedAt.After(start) {
			start = row.CreatedAt
		}
		if !start.Before(now) {
			continue
		}
		days := int64(now.Sub(start).Hours() / 24)
		if days < 1 {
			days = 1
		}
		total += days
	}
	return total, nil
}

func (s *store) CountDoseLogsByStatus(ctx context.Context, patientID uuid.UUID, windowStart time.Time, status string) (int64, error) {
	return s.doseLogs.CountByStatus(ctx, nil, patientID, windowStart, status)
}

func (s *store) LastDoseActionAt(ctx context.Context, patientID uuid.UUID, windowStart time.Time, status string) (*time.Time, error) {
	return s.doseLogs.LastActionAt(ctx, nil, patientID, windowStart, status)
}

func (s *store) RecentDoseLogs(ctx context.Context, patientID uuid.UUID, windowStart time.Time, limit int) ([]types.DoseLog, error) {
	return s.doseLogs.ListRecent(ctx, nil, patientID, windowStart, limit)
}
