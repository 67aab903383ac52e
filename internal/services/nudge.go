package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mediccompanion/backend/internal/data/repos"
	types "github.com/mediccompanion/backend/internal/domain"
	"github.com/mediccompanion/backend/internal/platform/logger"
	"github.com/mediccompanion/backend/internal/platform/sendgrid"
)

type NudgeService interface {
	// NotifyIfAtRisk emails the patient when their report raises any nudge
	// flag. Returns whether an email went out.
	NotifyIfAtRisk(ctx context.Context, patientID uuid.UUID, report *types.AdherenceReport) (bool, error)
}

type nudgeService struct {
	log         *logger.Logger
	patientRepo repos.PatientRepo
	mail        sendgrid.Client
}

func NewNudgeService(baseLog *logger.Logger, patientRepo repos.PatientRepo, mail sendgrid.Client) NudgeService {
	return &nudgeService{
		log:         baseLog.With("service", "NudgeService"),
		patientRepo: patientRepo,
		mail:        mail,
	}
}

func (ns *nudgeService) NotifyIfAtRisk(ctx context.Context, patientID uuid.UUID, report *types.AdherenceReport) (bool, error) {
	if report == nil {
		return false, nil
	}
	flags := report.NudgeFlags
	if !flags.HighRisk && !flags.StreakAlert && !flags.RecentMiss {
		return false, nil
	}
	if ns.mail == nil {
		ns.log.Warn("Nudge suppressed, mail client not configured", "patient_id", patientID)
		return false, nil
	}

	p, err := ns.patientRepo.GetByID(ctx, nil, patientID)
	if err != nil {
		return false, err
	}

	subject, body := nudgeMessage(p.FirstName, report)
	result, err := ns.mail.Send(ctx, sendgrid.SendEmailRequest{
		To:      []sendgrid.EmailAddress{{Email: p.Email, Name: p.FirstName}},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return false, fmt.Errorf("send nudge email: %w", err)
	}
	ns.log.Info("Nudge email sent",
		"patient_id", patientID,
		"status_code", result.StatusCode,
		"high_risk", flags.HighRisk,
		"streak_alert", flags.StreakAlert,
	)
	return true, nil
}

func nudgeMessage(firstName string, report *types.AdherenceReport) (subject, body string) {
	m := report.Metrics
	flags := report.NudgeFlags

	switch {
	case flags.HighRisk:
		subject = "Important: your medication schedule needs attention"
	case flags.StreakAlert:
		subject = "You've missed a few doses in a row"
	default:
		subject = "Reminder about a recently missed dose"
	}

	name := firstName
	if name == "" {
		name = "there"
	}

	body = fmt.Sprintf(
		"Hi %s,\n\nOver the last %d days you've taken %d of %d scheduled doses (%d%%).",
		name, m.WindowDays, m.TotalTakenDoses, m.TotalScheduledDoses, m.AdherencePercentage,
	)
	if m.MissedStreak >= 2 {
		body += fmt.Sprintf(" Your last %d scheduled doses were missed.", m.MissedStreak)
	}
	body += "\n\nStaying on schedule matters. Open the app to review today's doses, " +
		"and talk to your doctor if the schedule isn't working for you.\n"
	return subject, body
}
