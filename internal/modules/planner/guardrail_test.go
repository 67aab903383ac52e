package planner

import (
	"strings"
	"testing"

	"github.com/mediccompanion/backend/internal/domain"
	"github.com/mediccompanion/backend/internal/platform/logger"
)

func testValidator(t *testing.T) *Validator {
	t.Helper()
	l, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return NewValidator(l)
}

func TestValidateOverScheduling(t *testing.T) {
	v := testValidator(t)
	input := domain.PlanInput{RawText: "Aspirin 75mg once daily"}
	proposed := []*domain.ProposedScheduleItem{
		{MedicationName: "Aspirin", ScheduleTimes: domain.StringList{"08:00", "12:00", "16:00", "20:00"}},
	}

	got := v.Validate(input, proposed)
	if !got.NeedsInfo {
		t.Error("over-scheduled plan must require clarification")
	}
	if got.Fallback {
		t.Error("a non-empty plan is not a fallback")
	}
	if len(got.FrequencyMismatches) != 1 {
		t.Fatalf("mismatches = %d, want 1", len(got.FrequencyMismatches))
	}
	mm := got.FrequencyMismatches[0]
	if mm.Medication != "Aspirin" || mm.Expected != 1 || mm.Actual != 4 || mm.Severity != "high" {
		t.Errorf("mismatch = %+v", mm)
	}
	if len(got.ClarificationQuestions) != 1 {
		t.Fatalf("questions = %d, want 1", len(got.ClarificationQuestions))
	}
	q := got.ClarificationQuestions[0]
	if q.Medication != "Aspirin" || q.ExpectedFrequency != 1 || q.ActualFrequency != 4 {
		t.Errorf("question = %+v", q)
	}
	// The proposed schedule passes through untouched for review.
	if len(got.Schedule) != 1 || len(got.Schedule[0].ScheduleTimes) != 4 {
		t.Errorf("schedule was altered: %+v", got.Schedule)
	}
}

func TestValidateMatchingPlan(t *testing.T) {
	v := testValidator(t)
	input := domain.PlanInput{
		Meds: []domain.MedInput{{Name: "Amoxicillin", Dosage: "500mg", Frequency: "twice daily (BD)"}},
	}
	proposed := []*domain.ProposedScheduleItem{
		{MedicationName: "Amoxicillin", ScheduleTimes: domain.StringList{"08:00", "20:00"}},
	}

	got := v.Validate(input, proposed)
	if got.NeedsInfo {
		t.Errorf("matching plan flagged: %+v", got)
	}
	if len(got.FrequencyMismatches) != 0 || len(got.ClarificationQuestions) != 0 {
		t.Errorf("unexpected findings: %+v", got)
	}
}

func TestValidateUnderSchedulingAllowed(t *testing.T) {
	v := testValidator(t)
	input := domain.PlanInput{RawText: "Metformin twice daily"}
	proposed := []*domain.ProposedScheduleItem{
		{MedicationName: "Metformin", ScheduleTimes: domain.StringList{"08:00"}},
	}

	got := v.Validate(input, proposed)
	if got.NeedsInfo || len(got.FrequencyMismatches) != 0 {
		t.Errorf("fewer reminders than expected must not flag: %+v", got)
	}
}

func TestValidateUnknownFrequency(t *testing.T) {
	v := testValidator(t)
	input := domain.PlanInput{RawText: "Aspirin 75mg with water"}
	proposed := []*domain.ProposedScheduleItem{
		{MedicationName: "Aspirin", ScheduleTimes: domain.StringList{"08:00", "20:00"}},
	}

	got := v.Validate(input, proposed)
	if !got.NeedsInfo {
		t.Error("unknown frequency must request clarification")
	}
	if len(got.FrequencyMismatches) != 0 {
		t.Errorf("no mismatch can be asserted without a known frequency: %+v", got.FrequencyMismatches)
	}
	if len(got.ClarificationQuestions) != 1 || got.ClarificationQuestions[0].Field != "frequency" {
		t.Errorf("questions = %+v", got.ClarificationQuestions)
	}
}

func TestValidateEveryOtherDay(t *testing.T) {
	v := testValidator(t)
	input := domain.PlanInput{RawText: "Alendronate weekly"}

	ok := v.Validate(input, []*domain.ProposedScheduleItem{
		{MedicationName: "Alendronate", ScheduleTimes: domain.StringList{"08:00"}},
	})
	if ok.NeedsInfo {
		t.Errorf("one daily reminder for a weekly medication is acceptable: %+v", ok)
	}

	bad := v.Validate(input, []*domain.ProposedScheduleItem{
		{MedicationName: "Alendronate", ScheduleTimes: domain.StringList{"08:00", "20:00"}},
	})
	if len(bad.FrequencyMismatches) != 1 || bad.FrequencyMismatches[0].Expected != 1 {
		t.Errorf("two reminders must flag against an effective expectation of 1: %+v", bad)
	}
}

func TestValidateEmptyPlanFallbacks(t *testing.T) {
	v := testValidator(t)

	// Input existed but planning produced nothing.
	withInput := v.Validate(domain.PlanInput{RawText: "Aspirin once daily"}, nil)
	if !withInput.Fallback || !withInput.NeedsInfo {
		t.Errorf("empty plan must fall back: %+v", withInput)
	}
	if len(withInput.ClarificationQuestions) != 1 || !strings.Contains(withInput.ClarificationQuestions[0].Question, "Could not generate") {
		t.Errorf("questions = %+v", withInput.ClarificationQuestions)
	}
	if withInput.Schedule == nil || len(withInput.Schedule) != 0 {
		t.Errorf("fallback schedule must be empty, not nil: %+v", withInput.Schedule)
	}

	// Nothing to plan from at all.
	noInput := v.Validate(domain.PlanInput{}, []*domain.ProposedScheduleItem{})
	if !noInput.Fallback || !noInput.NeedsInfo {
		t.Errorf("no-input case must fall back: %+v", noInput)
	}
	if len(noInput.ClarificationQuestions) != 1 || noInput.ClarificationQuestions[0].Field != "medications" {
		t.Errorf("questions = %+v", noInput.ClarificationQuestions)
	}
}

func TestValidateDeduplicatesQuestionsPerMedication(t *testing.T) {
	v := testValidator(t)
	input := domain.PlanInput{RawText: "Aspirin once daily"}
	// The same medication split across two items still yields one question.
	proposed := []*domain.ProposedScheduleItem{
		{MedicationName: "Aspirin", ScheduleTimes: domain.StringList{"08:00", "14:00"}},
		{MedicationName: "aspirin", ScheduleTimes: domain.StringList{"20:00"}},
	}

	got := v.Validate(input, proposed)
	if len(got.FrequencyMismatches) != 1 {
		t.Fatalf("mismatches = %+v", got.FrequencyMismatches)
	}
	if got.FrequencyMismatches[0].Actual != 3 {
		t.Errorf("actual = %d, want merged 3", got.FrequencyMismatches[0].Actual)
	}
	if len(got.ClarificationQuestions) != 1 {
		t.Errorf("questions = %+v", got.ClarificationQuestions)
	}
}

func TestValidateDeterministicMismatchOrder(t *testing.T) {
	v := testValidator(t)
	input := domain.PlanInput{RawText: "all meds once daily"}
	proposed := []*domain.ProposedScheduleItem{
		{MedicationName: "Zinc", ScheduleTimes: domain.StringList{"08:00", "20:00"}},
		{MedicationName: "Aspirin", ScheduleTimes: domain.StringList{"08:00", "20:00"}},
		{MedicationName: "Metformin", ScheduleTimes: domain.StringList{"08:00", "20:00"}},
	}

	got := v.Validate(input, proposed)
	if len(got.FrequencyMismatches) != 3 {
		t.Fatalf("mismatches = %d", len(got.FrequencyMismatches))
	}
	wantOrder := []string{"Aspirin", "Metformin", "Zinc"}
	for i, want := range wantOrder {
		if got.FrequencyMismatches[i].Medication != want {
			t.Errorf("mismatch[%d] = %s, want %s", i, got.FrequencyMismatches[i].Medication, want)
		}
	}
}

func TestValidateNilItemsIgnored(t *testing.T) {
	v := testValidator(t)
	input := domain.PlanInput{RawText: "Aspirin once daily"}
	proposed := []*domain.ProposedScheduleItem{
		nil,
		{MedicationName: "Aspirin", ScheduleTimes: domain.StringList{"08:00"}},
	}

	got := v.Validate(input, proposed)
	if got.NeedsInfo || len(got.FrequencyMismatches) != 0 {
		t.Errorf("nil entries must not affect validation: %+v", got)
	}
}
