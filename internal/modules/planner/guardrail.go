package planner

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mediccompanion/backend/internal/domain"
	"github.com/mediccompanion/backend/internal/platform/logger"
)

// Validator cross-checks an AI-proposed schedule against the dosing
// frequency the patient actually stated. It only flags: it never invents a
// frequency absent from the input and never rewrites or truncates the
// proposed times.
type Validator struct {
	log *logger.Logger
}

func NewValidator(baseLog *logger.Logger) *Validator {
	return &Validator{log: baseLog.With("module", "FrequencyGuardrail")}
}

// Validate normalizes the request, infers the stated frequency and checks
// every proposed medication for over-scheduling. Pure text work; no I/O.
func (v *Validator) Validate(input domain.PlanInput, proposed []*domain.ProposedScheduleItem) domain.GuardrailResult {
	result := domain.GuardrailResult{
		Schedule:               proposed,
		ClarificationQuestions: []domain.ClarificationQuestion{},
		FrequencyMismatches:    []domain.FrequencyMismatch{},
	}
	if result.Schedule == nil {
		result.Schedule = []*domain.ProposedScheduleItem{}
	}

	fullText := CombinedText(input)

	if len(result.Schedule) == 0 {
		return v.safeFallback(input, fullText)
	}
	if fullText == "" {
		return result
	}

	expected, known := InferExpectedFrequency(fullText)
	if !known {
		result.NeedsInfo = true
		result.ClarificationQuestions = append(result.ClarificationQuestions, domain.ClarificationQuestion{
			Question: "Frequency was not clearly specified in the input. Please confirm how many times per day this medication should be taken.",
			Field:    "frequency",
		})
		return result
	}

	effectiveExpected := int(math.Ceil(expected))
	if expected == FreqEveryOtherDay {
		effectiveExpected = 1
	}

	counts := CountDoses(result.Schedule)
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		actual := counts[key]
		if actual <= effectiveExpected {
			continue
		}

		medName := displayName(result.Schedule, key)
		result.FrequencyMismatches = append(result.FrequencyMismatches, domain.FrequencyMismatch{
			Medication: medName,
			Expected:   effectiveExpected,
			Actual:     actual,
			Severity:   "high",
		})
		result.NeedsInfo = true

		if !hasQuestionFor(result.ClarificationQuestions, medName) {
			result.ClarificationQuestions = append(result.ClarificationQuestions, domain.ClarificationQuestion{
				Question:          fmt.Sprintf("I detected %d reminders for %s, but input suggests %d per day. Please confirm frequency.", actual, medName, effectiveExpected),
				Field:             "frequency",
				Medication:        medName,
				ExpectedFrequency: effectiveExpected,
				ActualFrequency:   actual,
			})
		}

		v.log.Warn("Over-scheduling detected",
			"medication", medName,
			"expected", effectiveExpected,
			"actual", actual,
		)
	}

	return result
}

// safeFallback handles an empty proposed schedule. The clarification
// depends on whether any medication input existed at all.
func (v *Validator) safeFallback(input domain.PlanInput, fullText string) domain.GuardrailResult {
	result := domain.GuardrailResult{
		Schedule:            []*domain.ProposedScheduleItem{},
		NeedsInfo:           true,
		Fallback:            true,
		FrequencyMismatches: []domain.FrequencyMismatch{},
	}
	if fullText != "" || len(input.Meds) > 0 {
		result.ClarificationQuestions = []domain.ClarificationQuestion{{
			Question: "Could not generate a valid schedule. Please confirm the frequency (how many times per day) for each medication.",
			Field:    "frequency",
		}}
		return result
	}
	result.ClarificationQuestions = []domain.ClarificationQuestion{{
		Question: "No medication information provided. Please enter medication name, dosage, and frequency.",
		Field:    "medications",
	}}
	return result
}

func displayName(items []*domain.ProposedScheduleItem, key string) string {
	for _, item := range items {
		if item == nil {
			continue
		}
		if strings.ToLower(strings.TrimSpace(item.MedicationName)) == key {
			return strings.TrimSpace(item.MedicationName)
		}
	}
	return key
}

func hasQuestionFor(questions []domain.ClarificationQuestion, medication string) bool {
	for _, q := range questions {
		if q.Medication == medication {
			return true
		}
	}
	return false
}
