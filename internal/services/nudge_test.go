package services

import (
	"strings"
	"testing"
	"time"

	types "github.com/mediccompanion/backend/internal/domain"
)

func TestNudgeMessage(t *testing.T) {
	lastMissed := time.Now().Add(-2 * time.Hour)
	report := &types.AdherenceReport{
		Metrics: types.AdherenceWindowMetrics{
			TotalScheduledDoses: 14,
			TotalTakenDoses:     8,
			AdherencePercentage: 57,
			MissedStreak:        3,
			LastMissedAt:        &lastMissed,
			WindowDays:          7,
		},
		RiskLevel:  types.RiskHigh,
		NudgeFlags: types.NudgeFlags{HighRisk: true, StreakAlert: true, RecentMiss: true},
	}

	subject, body := nudgeMessage("Priya", report)
	if !strings.Contains(subject, "needs attention") {
		t.Errorf("high-risk subject = %q", subject)
	}
	if !strings.Contains(body, "Hi Priya") {
		t.Errorf("body missing greeting: %q", body)
	}
	if !strings.Contains(body, "8 of 14") || !strings.Contains(body, "57%") {
		t.Errorf("body missing metrics: %q", body)
	}
	if !strings.Contains(body, "last 3 scheduled doses") {
		t.Errorf("body missing streak: %q", body)
	}

	report.NudgeFlags = types.NudgeFlags{StreakAlert: true}
	subject, _ = nudgeMessage("", report)
	if !strings.Contains(subject, "in a row") {
		t.Errorf("streak subject = %q", subject)
	}

	report.NudgeFlags = types.NudgeFlags{RecentMiss: true}
	subject, body = nudgeMessage("", report)
	if !strings.Contains(subject, "recently missed") {
		t.Errorf("recent-miss subject = %q", subject)
	}
	if !strings.Contains(body, "Hi there") {
		t.Errorf("fallback greeting missing: %q", body)
	}
}
