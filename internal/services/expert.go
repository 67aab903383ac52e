package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mediccompanion/backend/internal/data/repos"
	types "github.com/mediccompanion/backend/internal/domain"
	"github.com/mediccompanion/backend/internal/modules/adherence"
	errs "github.com/mediccompanion/backend/internal/pkg/errors"
	"github.com/mediccompanion/backend/internal/platform/logger"
)

// ExpertService serves the caregiver/doctor dashboard: read-only adherence
// risk across patients, no access to notes or raw plan text.
type ExpertService interface {
	// PatientRisk computes the compact risk summary for one patient.
	PatientRisk(ctx context.Context, patientID uuid.UUID, windowDays int) (*types.PatientRiskSummary, error)

	// Patients lists patient accounts with their recent adherence for the
	// dashboard. Assignment scoping is deliberately absent for now: every
	// expert sees every patient, as a future assignment table would refine.
	Patients(ctx context.Context) ([]*types.AssignedPatient, error)
}

type expertService struct {
	log         *logger.Logger
	patientRepo repos.PatientRepo
	metrics     *adherence.Metrics
	now         func() time.Time
}

func NewExpertService(baseLog *logger.Logger, patientRepo repos.PatientRepo, metrics *adherence.Metrics) ExpertService {
	return &expertService{
		log:         baseLog.With("service", "ExpertService"),
		patientRepo: patientRepo,
		metrics:     metrics,
		now:         time.Now,
	}
}

func (es *expertService) PatientRisk(ctx context.Context, patientID uuid.UUID, windowDays int) (*types.PatientRiskSummary, error) {
	patient, err := es.patientRepo.GetByID(ctx, nil, patientID)
	if err != nil {
		return nil, err
	}
	if patient.Role != types.RolePatient {
		return nil, fmt.Errorf("%w: not a patient account", errs.ErrNotFound)
	}

	metrics, err := es.metrics.ComputeWindow(ctx, patientID, windowDays)
	if err != nil {
		return nil, err
	}

	pctPtr := &metrics.AdherencePercentage
	if metrics.TotalScheduledDoses == 0 {
		pctPtr = nil
	}
	flags := adherence.GenerateNudgeFlags(pctPtr, metrics.MissedStreak, metrics.LastMissedAt, es.now())

	summary := &types.PatientRiskSummary{
		PatientID:           patient.ID,
		PatientName:         patientDisplayName(patient),
		AdherencePercentage: metrics.AdherencePercentage,
		RiskLevel:           adherence.ClassifyRisk(pctPtr),
		MissedStreak:        metrics.MissedStreak,
		HighRisk:            flags.HighRisk,
		LastActivityAt:      lastActivity(metrics.LastTakenAt, metrics.LastMissedAt),
		TotalScheduled:      metrics.TotalScheduledDoses,
		TotalTaken:          metrics.TotalTakenDoses,
		TotalMissed:         metrics.TotalMissedDoses,
		WindowDays:          metrics.WindowDays,
		GeneratedAt:         es.now(),
	}
	es.log.Info("Patient risk computed",
		"patient_id", patientID,
		"risk_level", summary.RiskLevel,
		"adherence_pct", summary.AdherencePercentage,
	)
	return summary, nil
}

func (es *expertService) Patients(ctx context.Context) ([]*types.AssignedPatient, error) {
	patients, err := es.patientRepo.ListByRole(ctx, nil, types.RolePatient, 50)
	if err != nil {
		return nil, err
	}

	rows := make([]*types.AssignedPatient, 0, len(patients))
	for _, p := range patients {
		row := &types.AssignedPatient{
			ID:           p.ID,
			Name:         patientDisplayName(p),
			PatientSince: p.CreatedAt,
		}
		metrics, err := es.metrics.ComputeWindow(ctx, p.ID, 0)
		if err != nil {
			// One broken patient row must not empty the dashboard.
			es.log.Warn("Recent adherence unavailable", "patient_id", p.ID, "error", err)
		} else if metrics.TotalScheduledDoses > 0 {
			pct := metrics.AdherencePercentage
			row.RecentAdherence = &pct
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// lastActivity picks the later of the two action timestamps; either side
// may be nil.
func lastActivity(taken, missed *time.Time) *time.Time {
	switch {
	case taken == nil:
		return missed
	case missed == nil:
		return taken
	case taken.After(*missed):
		return taken
	default:
		return missed
	}
}

func patientDisplayName(p *types.Patient) string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
