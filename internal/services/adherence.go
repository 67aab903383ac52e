package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	rediscache "github.com/mediccompanion/backend/internal/clients/redis"
	"github.com/mediccompanion/backend/internal/data/repos"
	types "github.com/mediccompanion/backend/internal/domain"
	"github.com/mediccompanion/backend/internal/modules/adherence"
	errs "github.com/mediccompanion/backend/internal/pkg/errors"
	"github.com/mediccompanion/backend/internal/platform/logger"
)

type MarkDoseInput struct {
	ScheduleID uuid.UUID `json:"schedule_id"`
	Date       string    `json:"date"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes"`
}

type AdherenceService interface {
	// Today resolves the patient's dose list for one local calendar date.
	// date defaults to today in the patient's timezone.
	Today(ctx context.Context, patientID uuid.UUID, date string) (types.DayDoseView, error)

	// MarkDose records a taken/missed/snoozed/skipped action for a schedule
	// slot on a calendar day.
	MarkDose(ctx context.Context, patientID uuid.UUID, input MarkDoseInput) (*types.DoseLog, error)

	// Summary computes the windowed adherence report: metrics, risk tier,
	// nudge flags, and the per-day trend.
	Summary(ctx context.Context, patientID uuid.UUID, windowDays int) (*types.AdherenceReport, error)

	History(ctx context.Context, patientID uuid.UUID, from, to time.Time, limit, offset int) ([]types.DoseLog, error)
}

type adherenceService struct {
	db           *gorm.DB
	log          *logger.Logger
	patientRepo  repos.PatientRepo
	scheduleRepo repos.ScheduleRepo
	doseLogRepo  repos.DoseLogRepo
	resolver     *adherence.Resolver
	metrics      *adherence.Metrics
	cache        rediscache.ReportCache
	now          func() time.Time
}

func NewAdherenceService(
	db *gorm.DB,
	baseLog *logger.Logger,
	patientRepo repos.PatientRepo,
	scheduleRepo repos.ScheduleRepo,
	doseLogRepo repos.DoseLogRepo,
	resolver *adherence.Resolver,
	metrics *adherence.Metrics,
	cache rediscache.ReportCache,
) AdherenceService {
	return &adherenceService{
		db:           db,
		log:          baseLog.With("service", "AdherenceService"),
		patientRepo:  patientRepo,
		scheduleRepo: scheduleRepo,
		doseLogRepo:  doseLogRepo,
		resolver:     resolver,
		metrics:      metrics,
		cache:        cache,
		now:          time.Now,
	}
}

// patientLocation loads the patient's IANA timezone, falling back to UTC on
// any failure so time handling never blocks a request.
func (s *adherenceService) patientLocation(ctx context.Context, patientID uuid.UUID) *time.Location {
	p, err := s.patientRepo.GetByID(ctx, nil, patientID)
	if err != nil || p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		s.log.Warn("Unknown patient timezone, using UTC", "patient_id", patientID, "timezone", p.Timezone)
		return time.UTC
	}
	return loc
}

func (s *adherenceService) Today(ctx context.Context, patientID uuid.UUID, date string) (types.DayDoseView, error) {
	loc := s.patientLocation(ctx, patientID)
	if date == "" {
		date = s.now().In(loc).Format("2006-01-02")
	}
	return s.resolver.ResolveDay(ctx, patientID, date, loc, 0), nil
}

func (s *adherenceService) MarkDose(ctx context.Context, patientID uuid.UUID, input MarkDoseInput) (*types.DoseLog, error) {
	if !types.ValidDoseStatus(input.Status) {
		return nil, fmt.Errorf("%w: unknown dose status %q", errs.ErrInvalidArgument, input.Status)
	}

	schedule, err := s.scheduleRepo.GetByID(ctx, nil, input.ScheduleID)
	if err != nil {
		return nil, err
	}

	// Ownership check runs through the medication join.
	slots, err := s.scheduleRepo.ListActiveSlotsForPatient(ctx, nil, patientID)
	if err != nil {
		return nil, err
	}
	var slot *types.ScheduleSlot
	for i := range slots {
		if slots[i].ScheduleID == input.ScheduleID {
			slot = &slots[i]
			break
		}
	}
	if slot == nil {
		return nil, errs.ErrNotFound
	}

	loc := s.patientLocation(ctx, patientID)
	date := input.Date
	if date == "" {
		date = s.now().In(loc).Format("2006-01-02")
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", errs.ErrInvalidArgument, input.Date)
	}

	hour, minute := 0, 0
	if parts := strings.SplitN(schedule.TimeOfDay, ":", 2); len(parts) == 2 {
		hour, _ = strconv.Atoi(parts[0])
		minute, _ = strconv.Atoi(parts[1])
	}
	scheduledAt := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)

	var saved *types.DoseLog
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.doseLogRepo.Upsert(ctx, tx, &types.DoseLog{
			ID:            uuid.New(),
			ScheduleID:    input.ScheduleID,
			MedicationID:  slot.MedicationID,
			PatientID:     patientID,
			ScheduledTime: scheduledAt,
			ActionTime:    s.now(),
			Status:        input.Status,
			ActionType:    input.Status,
			Notes:         input.Notes,
		})
		if err != nil {
			return err
		}
		saved = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, patientID)
	}
	s.log.Info("Dose marked", "patient_id", patientID, "schedule_id", input.ScheduleID, "status", input.Status)
	return saved, nil
}

func (s *adherenceService) Summary(ctx context.Context, patientID uuid.UUID, windowDays int) (*types.AdherenceReport, error) {
	if windowDays == 0 {
		windowDays = adherence.DefaultWindowDays
	}
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, patientID, windowDays); ok {
			return cached, nil
		}
	}

	metrics, err := s.metrics.ComputeWindow(ctx, patientID, windowDays)
	if err != nil {
		return nil, err
	}

	pct := metrics.AdherencePercentage
	pctPtr := &pct
	if metrics.TotalScheduledDoses == 0 {
		pctPtr = nil
	}

	report := &types.AdherenceReport{
		Metrics:    metrics,
		RiskLevel:  adherence.ClassifyRisk(pctPtr),
		NudgeFlags: adherence.GenerateNudgeFlags(pctPtr, metrics.MissedStreak, metrics.LastMissedAt, s.now()),
		Trend:      s.trend(ctx, patientID, windowDays),
	}

	if s.cache != nil {
		s.cache.Set(ctx, patientID, windowDays, report)
	}
	return report, nil
}

// trend resolves each day of the window through the same state machine the
// day view uses, so the dashboard numbers always agree with the day screen.
func (s *adherenceService) trend(ctx context.Context, patientID uuid.UUID, windowDays int) []types.TrendDay {
	loc := s.patientLocation(ctx, patientID)
	today := s.now().In(loc)

	out := make([]types.TrendDay, 0, windowDays)
	for i := windowDays - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format("2006-01-02")
		view := s.resolver.ResolveDay(ctx, patientID, date, loc, 0)
		rate := 0
		if view.TotalToday > 0 {
			rate = int(float64(view.TakenToday) / float64(view.TotalToday) * 100)
		}
		out = append(out, types.TrendDay{
			Date:          date,
			Total:         view.TotalToday,
			Taken:         view.TakenToday,
			AdherenceRate: rate,
		})
	}
	return out
}

func (s *adherenceService) History(ctx context.Context, patientID uuid.UUID, from, to time.Time, limit, offset int) ([]types.DoseLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: from is after to", errs.ErrInvalidArgument)
	}
	return s.doseLogRepo.ListHistory(ctx, nil, patientID, from, to, limit, offset)
}
