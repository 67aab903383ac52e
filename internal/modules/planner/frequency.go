package planner

import (
	"regexp"
	"strings"

	"github.com/mediccompanion/backend/internal/domain"
)

// FreqEveryOtherDay marks "every other day"/"weekly" style frequencies.
// They compare as one reminder per day for over-scheduling checks.
const FreqEveryOtherDay = 0.5

type freqRule struct {
	re     *regexp.Regexp
	perDay float64
}

// freqRules maps prescription frequency phrasing (including common Indian
// abbreviations) to expected daily dose counts. The slice order is the
// tie-break contract: the first matching rule wins, so this must stay an
// ordered sequence, never a map.
var freqRules = []freqRule{
	{regexp.MustCompile(`(?i)\b(once daily|od|1\s*\*\s*daily|one\s*time\s*daily|once\s*a\s*day|once\s*per\s*day)\b`), 1},
	{regexp.MustCompile(`(?i)\b(0-0-1|1-0-0|once)\b`), 1},

	{regexp.MustCompile(`(?i)\b(twice daily|bd|bid|2\s*\*\s*daily|two\s*times\s*daily|twice\s*a\s*day|two\s*times\s*a\s*day)\b`), 2},
	{regexp.MustCompile(`(?i)\b(1-0-1|0-1-1|1-1-0|bd)\b`), 2},

	{regexp.MustCompile(`(?i)\b(thrice daily|tds|tid|3\s*\*\s*daily|three\s*times\s*daily|thrice\s*a\s*day)\b`), 3},
	{regexp.MustCompile(`(?i)\b(1-1-1|tid|tds)\b`), 3},

	{regexp.MustCompile(`(?i)\b(qid|4\s*\*\s*daily|four\s*times\s*daily|four\s*times\s*a\s*day)\b`), 4},
	{regexp.MustCompile(`(?i)\b(1-1-1-1|qid)\b`), 4},

	{regexp.MustCompile(`(?i)\b(6\s*\*\s*daily|six\s*times\s*daily|q6h|every\s*6\s*hours)\b`), 6},

	{regexp.MustCompile(`(?i)\b(eod|every\s*other\s*day|once\s*a\s*week|weekly|once\s*weekly)\b`), FreqEveryOtherDay},
}

// InferExpectedFrequency matches free text against the ordered rule table.
// ok is false when no rule matches (unknown frequency).
func InferExpectedFrequency(text string) (perDay float64, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	for _, rule := range freqRules {
		if rule.re.MatchString(text) {
			return rule.perDay, true
		}
	}
	return 0, false
}

// CombinedText concatenates every free-text field of a plan request into
// one blob for frequency inference.
func CombinedText(input domain.PlanInput) string {
	var b strings.Builder
	if t := strings.TrimSpace(input.RawText); t != "" {
		b.WriteString(t)
		b.WriteString(" ")
	}
	for _, med := range input.Meds {
		for _, part := range []string{med.Name, med.Frequency, med.Dosage, med.Instructions} {
			if p := strings.TrimSpace(part); p != "" {
				b.WriteString(p)
				b.WriteString(" ")
			}
		}
	}
	return strings.TrimSpace(b.String())
}
