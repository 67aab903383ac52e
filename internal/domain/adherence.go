package domain

import (
	"time"

	"github.com/google/uuid"
)

// Bucket is the coarse time-of-day classification used for display ordering.
type Bucket string

const (
	BucketMorning   Bucket = "MORNING"
	BucketAfternoon Bucket = "AFTERNOON"
	BucketNight     Bucket = "NIGHT"
)

// ResolvedStatus is the displayable per-day dose state.
type ResolvedStatus string

const (
	ResolvedTaken   ResolvedStatus = "TAKEN"
	ResolvedMissed  ResolvedStatus = "MISSED"
	ResolvedSnoozed ResolvedStatus = "SNOOZED"
	ResolvedPending ResolvedStatus = "PENDING"
)

// ResolvedDose is one row of the day view.
type ResolvedDose struct {
	DoseID         uuid.UUID      `json:"dose_id"`
	MedicationID   uuid.UUID      `json:"medication_id"`
	MedicationName string         `json:"medication_name"`
	TimeLocal      string         `json:"time_local"`
	Bucket         Bucket         `json:"bucket"`
	Status         ResolvedStatus `json:"status"`
	IsOverdue      bool           `json:"is_overdue"`
	ScheduledAt    time.Time      `json:"scheduled_at"`
}

type DayDoseView struct {
	Date               string         `json:"date"`
	Doses              []ResolvedDose `json:"doses"`
	NextDoseAt         *time.Time     `json:"next_dose_at"`
	NextMedicationName string         `json:"next_medication_name,omitempty"`
	TotalToday         int            `json:"total_today"`
	TakenToday         int            `json:"taken_today"`
	MissedToday        int            `json:"missed_today"`
}

// AdherenceWindowMetrics is recomputed per request, never persisted.
type AdherenceWindowMetrics struct {
	TotalScheduledDoses int        `json:"total_scheduled_doses"`
	TotalTakenDoses     int        `json:"total_taken_doses"`
	TotalMissedDoses    int        `json:"total_missed_doses"`
	AdherencePercentage int        `json:"adherence_percentage"`
	MissedStreak        int        `json:"missed_streak"`
	LastTakenAt         *time.Time `json:"last_taken_at"`
	LastMissedAt        *time.Time `json:"last_missed_at"`
	WindowDays          int        `json:"window_days"`
	CalculatedAt        time.Time  `json:"calculated_at"`
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

type NudgeFlags struct {
	HighRisk    bool `json:"high_risk"`
	StreakAlert bool `json:"streak_alert"`
	RecentMiss  bool `json:"recent_miss"`
}

// TrendDay is one day of the summary trend.
type TrendDay struct {
	Date          string `json:"date"`
	Total         int    `json:"total"`
	Taken         int    `json:"taken"`
	AdherenceRate int    `json:"adherence_rate"`
}

type AdherenceReport struct {
	Metrics    AdherenceWindowMetrics `json:"metrics"`
	RiskLevel  RiskLevel              `json:"risk_level"`
	NudgeFlags NudgeFlags             `json:"nudge_flags"`
	Trend      []TrendDay             `json:"trend"`
}

// PatientRiskSummary is the compact adherence view served to doctors and
// caregivers. Only the patient's name crosses the boundary, nothing
// free-text.
type PatientRiskSummary struct {
	PatientID           uuid.UUID  `json:"patient_id"`
	PatientName         string     `json:"patient_name"`
	AdherencePercentage int        `json:"adherence_percentage"`
	RiskLevel           RiskLevel  `json:"risk_level"`
	MissedStreak        int        `json:"missed_streak"`
	HighRisk            bool       `json:"high_risk"`
	LastActivityAt      *time.Time `json:"last_activity_at"`
	TotalScheduled      int        `json:"total_scheduled"`
	TotalTaken          int        `json:"total_taken"`
	TotalMissed         int        `json:"total_missed"`
	WindowDays          int        `json:"window_days"`
	GeneratedAt         time.Time  `json:"generated_at"`
}

// AssignedPatient is one row of the expert dashboard list.
type AssignedPatient struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	PatientSince    time.Time `json:"patient_since"`
	RecentAdherence *int      `json:"recent_adherence"`
}
