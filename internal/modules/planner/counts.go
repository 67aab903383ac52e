package planner

import (
	"regexp"
	"strings"

	"github.com/mediccompanion/backend/internal/domain"
)

// Coarser fallback match used only when a schedule item carries no times.
var (
	onceRe   = regexp.MustCompile(`(?i)\bonce\b`)
	twiceRe  = regexp.MustCompile(`(?i)\btwice\b|\bbd\b|\bbid\b`)
	thriceRe = regexp.MustCompile(`(?i)\bthrice\b|\btds\b|\btid\b`)
	qidRe    = regexp.MustCompile(`(?i)\bqid\b|\bfour\b`)
)

// CountDoses counts proposed reminders per medication, keyed by
// case-insensitive name. Nil entries contribute nothing; an item without
// schedule times falls back to a keyword parse of its own frequency
// string, defaulting to one dose.
func CountDoses(items []*domain.ProposedScheduleItem) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		if item == nil {
			continue
		}
		name := strings.TrimSpace(item.MedicationName)
		if name == "" {
			name = "unknown"
		}
		key := strings.ToLower(name)

		n := len(item.ScheduleTimes)
		if n == 0 {
			n = freqKeywordCount(item.Frequency)
		}
		counts[key] += n
	}
	return counts
}

func freqKeywordCount(freq string) int {
	switch {
	case onceRe.MatchString(freq):
		return 1
	case twiceRe.MatchString(freq):
		return 2
	case thriceRe.MatchString(freq):
		return 3
	case qidRe.MatchString(freq):
		return 4
	default:
		return 1
	}
}
