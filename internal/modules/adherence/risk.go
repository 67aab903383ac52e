package adherence

import (
	"time"

	"github.com/mediccompanion/backend/internal/domain"
)

// Risk thresholds are contractual: LOW at >= 90%, MEDIUM at >= 70%,
// HIGH below that. An unknown percentage fails safe to HIGH.
const (
	lowRiskFloor    = 90
	mediumRiskFloor = 70

	highRiskStreak  = 4
	alertStreak     = 2
	recentMissHours = 24
)

// ClassifyRisk tiers an adherence percentage. nil means unknown.
func ClassifyRisk(pct *int) domain.RiskLevel {
	if pct == nil {
		return domain.RiskHigh
	}
	switch {
	case *pct >= lowRiskFloor:
		return domain.RiskLow
	case *pct >= mediumRiskFloor:
		return domain.RiskMedium
	default:
		return domain.RiskHigh
	}
}

// GenerateNudgeFlags derives notification flags from window metrics.
// The 24h recent-miss boundary is inclusive.
func GenerateNudgeFlags(pct *int, missedStreak int, lastMissedAt *time.Time, now time.Time) domain.NudgeFlags {
	flags := domain.NudgeFlags{}

	if (pct != nil && *pct < mediumRiskFloor) || missedStreak >= highRiskStreak {
		flags.HighRisk = true
	}
	if missedStreak >= alertStreak {
		flags.StreakAlert = true
	}
	if lastMissedAt != nil && now.Sub(*lastMissedAt) <= recentMissHours*time.Hour {
		flags.RecentMiss = true
	}

	return flags
}
