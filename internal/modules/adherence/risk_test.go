package adherence

import (
	"testing"
	"time"

	"github.com/mediccompanion/backend/internal/domain"
)

func intp(v int) *int { return &v }

func TestClassifyRisk(t *testing.T) {
	cases := []struct {
		pct  *int
		want domain.RiskLevel
	}{
		{intp(100), domain.RiskLow},
		{intp(90), domain.RiskLow},
		{intp(89), domain.RiskMedium},
		{intp(70), domain.RiskMedium},
		{intp(69), domain.RiskHigh},
		{intp(0), domain.RiskHigh},
		{nil, domain.RiskHigh},
	}
	for _, tc := range cases {
		if got := ClassifyRisk(tc.pct); got != tc.want {
			if tc.pct == nil {
				t.Errorf("ClassifyRisk(nil) = %s, want %s", got, tc.want)
			} else {
				t.Errorf("ClassifyRisk(%d) = %s, want %s", *tc.pct, got, tc.want)
			}
		}
	}
}

func TestGenerateNudgeFlagsHighRisk(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	if f := GenerateNudgeFlags(intp(69), 0, nil, now); !f.HighRisk {
		t.Error("pct 69 should flag high risk")
	}
	if f := GenerateNudgeFlags(intp(70), 0, nil, now); f.HighRisk {
		t.Error("pct 70 should not flag high risk")
	}
	if f := GenerateNudgeFlags(intp(100), 4, nil, now); !f.HighRisk {
		t.Error("streak 4 should flag high risk regardless of percentage")
	}
	if f := GenerateNudgeFlags(intp(100), 3, nil, now); f.HighRisk {
		t.Error("streak 3 with good percentage should not flag high risk")
	}
	if f := GenerateNudgeFlags(nil, 0, nil, now); f.HighRisk {
		t.Error("unknown percentage alone should not flag high risk")
	}
}

func TestGenerateNudgeFlagsStreakAlert(t *testing.T) {
	now := time.Now()
	if f := GenerateNudgeFlags(intp(100), 2, nil, now); !f.StreakAlert {
		t.Error("streak 2 should raise the streak alert")
	}
	if f := GenerateNudgeFlags(intp(100), 1, nil, now); f.StreakAlert {
		t.Error("streak 1 should not raise the streak alert")
	}
}

func TestGenerateNudgeFlagsRecentMiss(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	exactly24h := now.Add(-24 * time.Hour)
	if f := GenerateNudgeFlags(intp(100), 0, &exactly24h, now); !f.RecentMiss {
		t.Error("a miss exactly 24h ago counts as recent")
	}
	over24h := now.Add(-24*time.Hour - time.Second)
	if f := GenerateNudgeFlags(intp(100), 0, &over24h, now); f.RecentMiss {
		t.Error("a miss over 24h ago is not recent")
	}
	if f := GenerateNudgeFlags(intp(100), 0, nil, now); f.RecentMiss {
		t.Error("no recorded miss cannot be recent")
	}
}
