package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Dose log statuses as stored. The resolver's displayable statuses
// (TAKEN/MISSED/SNOOZED/PENDING) live in adherence.go.
const (
	DoseStatusTaken   = "taken"
	DoseStatusMissed  = "missed"
	DoseStatusSnoozed = "snoozed"
	DoseStatusSkipped = "skipped"
	DoseStatusPending = "pending"
)

func ValidDoseStatus(s string) bool {
	switch s {
	case DoseStatusTaken, DoseStatusMissed, DoseStatusSnoozed, DoseStatusSkipped, DoseStatusPending:
		return true
	}
	return false
}

// DoseLog records one mark action for a (schedule, calendar day) pair. The
// write path updates the row in place on repeat marks the same day; the read
// path still tolerates several rows per pair and treats the most recently
// created one as authoritative.
type DoseLog struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ScheduleID    uuid.UUID `gorm:"type:uuid;not null;index;column:schedule_id" json:"schedule_id"`
	MedicationID  uuid.UUID `gorm:"type:uuid;not null;column:medication_id" json:"medication_id"`
	PatientID     uuid.UUID `gorm:"type:uuid;not null;index;column:patient_id" json:"patient_id"`
	ScheduledTime time.Time `gorm:"not null;column:scheduled_time" json:"scheduled_time"`
	ActionTime    time.Time `gorm:"column:action_time" json:"action_time"`
	Status        string    `gorm:"not null;column:status" json:"status"`
	ActionType    string    `gorm:"column:action_type" json:"action_type"`
	Notes         string    `gorm:"column:notes" json:"notes"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (DoseLog) TableName() string { return "dose_log" }
