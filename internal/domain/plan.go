package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StringList unmarshals from either a JSON array of strings or a bare
// string; upstream planners emit both shapes for schedule times.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*s = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*s = []string{one}
	return nil
}

// ProposedScheduleItem is one medication row of an AI-proposed plan, as
// produced upstream by the planning service.
type ProposedScheduleItem struct {
	MedicationName string     `json:"medication_name"`
	Dosage         string     `json:"dosage"`
	Frequency      string     `json:"frequency"`
	ScheduleTimes  StringList `json:"schedule_times"`
	Instructions   string     `json:"instructions"`
}

// MedInput is one structured medication entry of a plan request.
type MedInput struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Instructions string `json:"instructions"`
}

// PlanInput is the normalized guardrail input: free text, structured meds,
// or both. The continuation fields are set only when refining an earlier
// proposal.
type PlanInput struct {
	RawText string     `json:"raw_text"`
	Meds    []MedInput `json:"meds"`

	Continue   bool                    `json:"continue,omitempty"`
	UserPrompt string                  `json:"user_prompt,omitempty"`
	Previous   []*ProposedScheduleItem `json:"previous,omitempty"`
}

type ClarificationQuestion struct {
	Question          string `json:"question"`
	Field             string `json:"field"`
	Medication        string `json:"medication,omitempty"`
	ExpectedFrequency int    `json:"expected_frequency,omitempty"`
	ActualFrequency   int    `json:"actual_frequency,omitempty"`
}

type FrequencyMismatch struct {
	Medication string `json:"medication"`
	Expected   int    `json:"expected"`
	Actual     int    `json:"actual"`
	Severity   string `json:"severity"`
}

// GuardrailResult is ephemeral; persisting a decision is the caller's job
// (see PlanReview).
type GuardrailResult struct {
	Schedule               []*ProposedScheduleItem `json:"schedule"`
	NeedsInfo              bool                    `json:"needs_info"`
	ClarificationQuestions []ClarificationQuestion `json:"clarification_questions"`
	FrequencyMismatches    []FrequencyMismatch     `json:"frequency_mismatches"`
	Fallback               bool                    `json:"fallback,omitempty"`
}

const (
	PlanStatusProposed = "proposed"
	PlanStatusApproved = "approved"
)

// PlanReview is the persisted audit record of one guardrail decision.
type PlanReview struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PatientID  uuid.UUID      `gorm:"type:uuid;not null;index;column:patient_id" json:"patient_id"`
	RawText    string         `gorm:"column:raw_text" json:"raw_text"`
	Schedule   datatypes.JSON `gorm:"column:schedule" json:"schedule"`
	Mismatches datatypes.JSON `gorm:"column:mismatches" json:"mismatches"`
	NeedsInfo  bool           `gorm:"not null;default:false;column:needs_info" json:"needs_info"`
	Status     string         `gorm:"not null;default:proposed;column:status" json:"status"`
	ApprovedAt *time.Time     `gorm:"column:approved_at" json:"approved_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (PlanReview) TableName() string { return "plan_review" }
