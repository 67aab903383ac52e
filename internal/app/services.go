package app

import (
	"gorm.io/gorm"

	plannerclient "github.com/mediccompanion/backend/internal/clients/planner"
	rediscache "github.com/mediccompanion/backend/internal/clients/redis"
	"github.com/mediccompanion/backend/internal/data/repos"
	"github.com/mediccompanion/backend/internal/modules/adherence"
	"github.com/mediccompanion/backend/internal/modules/planner"
	"github.com/mediccompanion/backend/internal/platform/logger"
	"github.com/mediccompanion/backend/internal/platform/sendgrid"
	"github.com/mediccompanion/backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Medication services.MedicationService
	Adherence  services.AdherenceService
	Plan       services.PlanService
	Nudge      services.NudgeService
	Expert     services.ExpertService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet *repos.Repos) Services {
	log.Info("Wiring services...")

	resolver := adherence.NewResolver(reposet.AdherenceStore, log)
	metrics := adherence.NewMetrics(reposet.AdherenceStore, log)
	validator := planner.NewValidator(log)

	// Optional collaborators degrade to nil when unconfigured.
	var cache rediscache.ReportCache
	if c, err := rediscache.NewReportCache(log); err != nil {
		log.Warn("Report cache disabled", "error", err)
	} else {
		cache = c
	}

	var mail sendgrid.Client
	if !cfg.NudgeEmailEnabled {
		log.Info("Email nudges disabled by config")
	} else if m, err := sendgrid.NewFromEnv(log); err != nil {
		log.Warn("Email nudges disabled", "error", err)
	} else {
		mail = m
	}

	var planClient plannerclient.Client
	if pc, err := plannerclient.NewFromEnv(log); err != nil {
		log.Warn("Planning service disabled, guardrail fallback only", "error", err)
	} else {
		planClient = pc
	}

	return Services{
		Auth:       services.NewAuthService(db, log, reposet.Patient, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Medication: services.NewMedicationService(db, log, reposet.Medication, reposet.Schedule),
		Adherence: services.NewAdherenceService(
			db, log,
			reposet.Patient, reposet.Schedule, reposet.DoseLog,
			resolver, metrics, cache,
		),
		Plan:   services.NewPlanService(db, log, planClient, validator, reposet.PlanReview, reposet.Medication),
		Nudge:  services.NewNudgeService(log, reposet.Patient, mail),
		Expert: services.NewExpertService(log, reposet.Patient, metrics),
	}
}
