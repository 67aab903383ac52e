package adherence

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mediccompanion/backend/internal/domain"
)

// Store is the read-only storage collaborator the resolver and metrics
// engine consume. Every method is idempotent; nothing in this package
// writes.
type Store interface {
	// ListActiveSchedulesForPatient returns schedule slots of active
	// medications, ordered by time-of-day ascending.
	ListActiveSchedulesForPatient(ctx context.Context, patientID uuid.UUID) ([]domain.ScheduleSlot, error)

	// ListDoseLogsForSchedules returns all dose logs for the given schedules
	// within [from, to] in one batched lookup. Zero or several rows per
	// schedule are both legal.
	ListDoseLogsForSchedules(ctx context.Context, scheduleIDs []uuid.UUID, patientID uuid.UUID, from, to time.Time) ([]domain.DoseLog, error)

	// CountScheduledDoseOccurrences derives the number of expected dose
	// occurrences for active schedules since windowStart from the schedule
	// definitions themselves, not from logged rows.
	CountScheduledDoseOccurrences(ctx context.Context, patientID uuid.UUID, windowStart time.Time) (int64, error)

	// CountDoseLogsByStatus counts dose logs with the given stored status
	// scheduled at or after windowStart.
	CountDoseLogsByStatus(ctx context.Context, patientID uuid.UUID, windowStart time.Time, status string) (int64, error)

	// LastDoseActionAt returns the most recent action time for the given
	// stored status at or after windowStart; nil when none exists.
	LastDoseActionAt(ctx context.Context, patientID uuid.UUID, windowStart time.Time, status string) (*time.Time, error)

	// RecentDoseLogs returns up to limit dose logs scheduled at or after
	// windowStart, most recent scheduled time first.
	RecentDoseLogs(ctx context.Context, patientID uuid.UUID, windowStart time.Time, limit int) ([]domain.DoseLog, error)
}
