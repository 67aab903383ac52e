package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RolePatient   = "patient"
	RoleDoctor    = "doctor"
	RoleCaregiver = "caregiver"
)

func ValidRole(role string) bool {
	switch role {
	case RolePatient, RoleDoctor, RoleCaregiver:
		return true
	}
	return false
}

type Patient struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password  string    `gorm:"not null;column:password" json:"-"`
	FirstName string    `gorm:"not null;column:first_name" json:"first_name"`
	LastName  string    `gorm:"column:last_name" json:"last_name"`
	Role      string    `gorm:"not null;default:patient;index;column:role" json:"role"`

	// IANA timezone used to anchor the patient's dose day. Empty means UTC.
	Timezone string `gorm:"column:timezone" json:"timezone"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Patient) TableName() string { return "patient" }
