package adherence

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mediccompanion/backend/internal/domain"
	"github.com/mediccompanion/backend/internal/platform/logger"
)

const DefaultGraceMinutes = 60

var bucketOrder = map[domain.Bucket]int{
	domain.BucketMorning:   1,
	domain.BucketAfternoon: 2,
	domain.BucketNight:     3,
}

// GetBucket classifies an "HH:MM" time of day. The three buckets partition
// the full 24h; unparseable input lands in MORNING.
func GetBucket(timeOfDay string) domain.Bucket {
	hour, _, ok := parseTimeOfDay(timeOfDay)
	if !ok {
		return domain.BucketMorning
	}
	switch {
	case hour >= 5 && hour < 12:
		return domain.BucketMorning
	case hour >= 12 && hour < 17:
		return domain.BucketAfternoon
	default:
		return domain.BucketNight
	}
}

func parseTimeOfDay(s string) (hour, minute int, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 3)
	if len(parts) < 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

func isOverdue(scheduledAt time.Time, grace time.Duration, now time.Time) bool {
	if scheduledAt.IsZero() {
		return false
	}
	return now.After(scheduledAt.Add(grace))
}

// DetermineStatus applies the display-status priority: a taken mark wins,
// then a snooze mark, then the grace deadline, otherwise PENDING.
func DetermineStatus(log *domain.DoseLog, scheduledAt time.Time, grace time.Duration, now time.Time) domain.ResolvedStatus {
	if log != nil && log.ActionType == domain.DoseStatusTaken {
		return domain.ResolvedTaken
	}
	if log != nil && log.ActionType == domain.DoseStatusSnoozed {
		return domain.ResolvedSnoozed
	}
	if isOverdue(scheduledAt, grace, now) {
		return domain.ResolvedMissed
	}
	return domain.ResolvedPending
}

// latestLogPerSchedule reduces a batch of dose logs to one authoritative log
// per schedule. The input is explicitly re-sorted by created time descending
// before the first-seen-wins pass; callers must not rely on query order.
func latestLogPerSchedule(logs []domain.DoseLog) map[uuid.UUID]*domain.DoseLog {
	sorted := make([]domain.DoseLog, len(logs))
	copy(sorted, logs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	out := make(map[uuid.UUID]*domain.DoseLog, len(sorted))
	for i := range sorted {
		l := sorted[i]
		if _, seen := out[l.ScheduleID]; !seen {
			out[l.ScheduleID] = &sorted[i]
		}
	}
	return out
}

// Resolver turns (schedule, most-recent dose log) pairs into the ordered
// day view with next-action computation.
type Resolver struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

func NewResolver(store Store, baseLog *logger.Logger) *Resolver {
	return &Resolver{
		store: store,
		log:   baseLog.With("module", "DoseResolver"),
		now:   time.Now,
	}
}

// ResolveDay resolves the dose list for one local calendar date. It never
// returns an error: a storage failure is logged and degrades to the empty
// day view, so a rendering layer always has something displayable.
func (r *Resolver) ResolveDay(ctx context.Context, patientID uuid.UUID, dateLocal string, loc *time.Location, graceMinutes int) domain.DayDoseView {
	if loc == nil {
		loc = time.UTC
	}
	if graceMinutes <= 0 {
		graceMinutes = DefaultGraceMinutes
	}
	grace := time.Duration(graceMinutes) * time.Minute

	view := domain.DayDoseView{Date: dateLocal, Doses: []domain.ResolvedDose{}}

	day, err := time.ParseInLocation("2006-01-02", dateLocal, loc)
	if err != nil {
		r.log.Warn("Unparseable date, returning empty day view", "date", dateLocal, "error", err)
		return view
	}
	now := r.now()

	slots, err := r.store.ListActiveSchedulesForPatient(ctx, patientID)
	if err != nil {
		r.log.Error("Schedule lookup failed, returning empty day view", "patient_id", patientID, "error", err)
		return view
	}
	if len(slots) == 0 {
		return view
	}

	scheduleIDs := make([]uuid.UUID, 0, len(slots))
	for _, s := range slots {
		scheduleIDs = append(scheduleIDs, s.ScheduleID)
	}

	startOfDay := day
	endOfDay := day.AddDate(0, 0, 1).Add(-time.Second)
	logs, err := r.store.ListDoseLogsForSchedules(ctx, scheduleIDs, patientID, startOfDay, endOfDay)
	if err != nil {
		r.log.Error("Dose log lookup failed, returning empty day view", "patient_id", patientID, "error", err)
		return view
	}
	logBySchedule := latestLogPerSchedule(logs)

	doses := make([]domain.ResolvedDose, 0, len(slots))
	taken, missed := 0, 0
	for _, slot := range slots {
		scheduledAt := scheduledTimeFor(day, slot.TimeOfDay, loc)
		doseLog := logBySchedule[slot.ScheduleID]
		status := DetermineStatus(doseLog, scheduledAt, grace, now)

		switch status {
		case domain.ResolvedTaken:
			taken++
		case domain.ResolvedMissed:
			missed++
		}

		doses = append(doses, domain.ResolvedDose{
			DoseID:         slot.ScheduleID,
			MedicationID:   slot.MedicationID,
			MedicationName: slot.MedicationName,
			TimeLocal:      slot.TimeOfDay,
			Bucket:         GetBucket(slot.TimeOfDay),
			Status:         status,
			IsOverdue:      status == domain.ResolvedPending && isOverdue(scheduledAt, grace, now),
			ScheduledAt:    scheduledAt,
		})
	}

	sort.SliceStable(doses, func(i, j int) bool {
		bi, bj := bucketOrder[doses[i].Bucket], bucketOrder[doses[j].Bucket]
		if bi != bj {
			return bi < bj
		}
		return doses[i].TimeLocal < doses[j].TimeLocal
	})

	view.Doses = doses
	view.TotalToday = len(doses)
	view.TakenToday = taken
	view.MissedToday = missed

	for _, d := range doses {
		if (d.Status == domain.ResolvedPending || d.Status == domain.ResolvedSnoozed) && !d.IsOverdue {
			at := d.ScheduledAt
			view.NextDoseAt = &at
			view.NextMedicationName = d.MedicationName
			break
		}
	}

	return view
}

// scheduledTimeFor anchors an "HH:MM" slot on the given local day in the
// patient's timezone. A slot that fails to parse anchors at midnight.
func scheduledTimeFor(day time.Time, timeOfDay string, loc *time.Location) time.Time {
	hour, minute, ok := parseTimeOfDay(timeOfDay)
	if !ok {
		hour, minute = 0, 0
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
}
