package adherence

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mediccompanion/backend/internal/domain"
	errs "github.com/mediccompanion/backend/internal/pkg/errors"
	"github.com/mediccompanion/backend/internal/platform/logger"
)

const (
	DefaultWindowDays = 7

	// streakScanLimit caps the backward walk for the missed streak.
	streakScanLimit = 50
)

// Metrics computes windowed adherence aggregates. Read-only; storage
// failures propagate to the caller, unlike the resolver.
type Metrics struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

func NewMetrics(store Store, baseLog *logger.Logger) *Metrics {
	return &Metrics{
		store: store,
		log:   baseLog.With("module", "AdherenceMetrics"),
		now:   time.Now,
	}
}

// ComputeWindow aggregates adherence over the trailing windowDays days.
// windowDays 0 means the default window; negative values are invalid.
// The five constituent lookups are independent and issued concurrently.
func (m *Metrics) ComputeWindow(ctx context.Context, patientID uuid.UUID, windowDays int) (domain.AdherenceWindowMetrics, error) {
	if windowDays == 0 {
		windowDays = DefaultWindowDays
	}
	if windowDays < 0 {
		return domain.AdherenceWindowMetrics{}, fmt.Errorf("%w: windowDays must be >= 1, got %d", errs.ErrInvalidArgument, windowDays)
	}

	now := m.now()
	start := now.AddDate(0, 0, -windowDays)
	windowStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	var (
		scheduled, taken, missed  int64
		lastTakenAt, lastMissedAt *time.Time
		streak                    int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := m.store.CountScheduledDoseOccurrences(gctx, patientID, windowStart)
		if err != nil {
			return fmt.Errorf("%w: count scheduled: %v", errs.ErrStorage, err)
		}
		scheduled = n
		return nil
	})
	g.Go(func() error {
		n, err := m.store.CountDoseLogsByStatus(gctx, patientID, windowStart, domain.DoseStatusTaken)
		if err != nil {
			return fmt.Errorf("%w: count taken: %v", errs.ErrStorage, err)
		}
		taken = n
		return nil
	})
	g.Go(func() error {
		n, err := m.store.CountDoseLogsByStatus(gctx, patientID, windowStart, domain.DoseStatusMissed)
		if err != nil {
			return fmt.Errorf("%w: count missed: %v", errs.ErrStorage, err)
		}
		missed = n
		return nil
	})
	g.Go(func() error {
		ts, err := m.store.LastDoseActionAt(gctx, patientID, windowStart, domain.DoseStatusTaken)
		if err != nil {
			return fmt.Errorf("%w: last taken: %v", errs.ErrStorage, err)
		}
		lastTakenAt = ts
		return nil
	})
	g.Go(func() error {
		ts, err := m.store.LastDoseActionAt(gctx, patientID, windowStart, domain.DoseStatusMissed)
		if err != nil {
			return fmt.Errorf("%w: last missed: %v", errs.ErrStorage, err)
		}
		lastMissedAt = ts
		return nil
	})
	g.Go(func() error {
		n, err := m.missedStreak(gctx, patientID, windowStart)
		if err != nil {
			return fmt.Errorf("%w: missed streak: %v", errs.ErrStorage, err)
		}
		streak = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.AdherenceWindowMetrics{}, err
	}

	pct := 0
	if scheduled > 0 {
		pct = int(math.Round(float64(taken) / float64(scheduled) * 100))
	}

	return domain.AdherenceWindowMetrics{
		TotalScheduledDoses: int(scheduled),
		TotalTakenDoses:     int(taken),
		TotalMissedDoses:    int(missed),
		AdherencePercentage: pct,
		MissedStreak:        streak,
		LastTakenAt:         lastTakenAt,
		LastMissedAt:        lastMissedAt,
		WindowDays:          windowDays,
		CalculatedAt:        now,
	}, nil
}

// missedStreak walks recent dose logs from most recent scheduled time
// backward, counting consecutive missed entries. The first taken entry ends
// the streak; snoozed/skipped/pending entries neither count nor terminate.
func (m *Metrics) missedStreak(ctx context.Context, patientID uuid.UUID, windowStart time.Time) (int, error) {
	logs, err := m.store.RecentDoseLogs(ctx, patientID, windowStart, streakScanLimit)
	if err != nil {
		return 0, err
	}
	streak := 0
	for _, l := range logs {
		switch l.Status {
		case domain.DoseStatusMissed:
			streak++
		case domain.DoseStatusTaken:
			return streak, nil
		}
	}
	return streak, nil
}
