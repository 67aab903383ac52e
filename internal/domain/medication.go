package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Medication struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PatientID uuid.UUID `gorm:"type:uuid;not null;index;column:patient_id" json:"patient_id"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	Dosage    string    `gorm:"column:dosage" json:"dosage"`
	IsActive  bool      `gorm:"not null;default:true;column:is_active" json:"is_active"`

	Schedules []Schedule `gorm:"foreignKey:MedicationID" json:"schedules,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Medication) TableName() string { return "medication" }

// Schedule is one reminder slot of a medication. TimeOfDay is "HH:MM" in the
// patient's local day.
type Schedule struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MedicationID uuid.UUID `gorm:"type:uuid;not null;index;column:medication_id" json:"medication_id"`
	TimeOfDay    string    `gorm:"not null;column:time_of_day" json:"time_of_day"`
	DosageAmount string    `gorm:"column:dosage_amount" json:"dosage_amount"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Schedule) TableName() string { return "schedule" }

// ScheduleSlot is the read-model row the resolver consumes: a schedule joined
// with its (active) medication.
type ScheduleSlot struct {
	ScheduleID     uuid.UUID `json:"schedule_id"`
	MedicationID   uuid.UUID `json:"medication_id"`
	MedicationName string    `json:"medication_name"`
	TimeOfDay      string    `json:"time_of_day"`
	DosageAmount   string    `json:"dosage_amount"`
}
