package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/mediccompanion/backend/internal/domain"
	"github.com/mediccompanion/backend/internal/modules/adherence"
	errs "github.com/mediccompanion/backend/internal/pkg/errors"
	"github.com/mediccompanion/backend/internal/platform/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return l
}

// expertStoreData is one patient's canned adherence data.
type expertStoreData struct {
	scheduled int64
	byStatus  map[string]int64
	lastAt    map[string]*time.Time
	recent    []types.DoseLog
}

type fakeExpertStore struct {
	data map[uuid.UUID]expertStoreData
}

func (f *fakeExpertStore) ListActiveSchedulesForPatient(ctx context.Context, patientID uuid.UUID) ([]types.ScheduleSlot, error) {
	return nil, nil
}

func (f *fakeExpertStore) ListDoseLogsForSchedules(ctx context.Context, scheduleIDs []uuid.UUID, patientID uuid.UUID, from, to time.Time) ([]types.DoseLog, error) {
	return nil, nil
}

func (f *fakeExpertStore) CountScheduledDoseOccurrences(ctx context.Context, patientID uuid.UUID, windowStart time.Time) (int64, error) {
	return f.data[patientID].scheduled, nil
}

func (f *fakeExpertStore) CountDoseLogsByStatus(ctx context.Context, patientID uuid.UUID, windowStart time.Time, status string) (int64, error) {
	return f.data[patientID].byStatus[status], nil
}

func (f *fakeExpertStore) LastDoseActionAt(ctx context.Context, patientID uuid.UUID, windowStart time.Time, status string) (*time.Time, error) {
	return f.data[patientID].lastAt[status], nil
}

func (f *fakeExpertStore) RecentDoseLogs(ctx context.Context, patientID uuid.UUID, windowStart time.Time, limit int) ([]types.DoseLog, error) {
	return f.data[patientID].recent, nil
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*types.Patient
}

func (f *fakePatientRepo) Create(ctx context.Context, tx *gorm.DB, p *types.Patient) (*types.Patient, error) {
	f.patients[p.ID] = p
	return p, nil
}

func (f *fakePatientRepo) GetByID(ctx context.Context, tx *gorm.DB, patientID uuid.UUID) (*types.Patient, error) {
	p, ok := f.patients[patientID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return p, nil
}

func (f *fakePatientRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Patient, error) {
	for _, p := range f.patients {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakePatientRepo) ListByRole(ctx context.Context, tx *gorm.DB, role string, limit int) ([]*types.Patient, error) {
	var out []*types.Patient
	for _, p := range f.patients {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePatientRepo) Update(ctx context.Context, tx *gorm.DB, p *types.Patient) error {
	f.patients[p.ID] = p
	return nil
}

func TestExpertPatientRisk(t *testing.T) {
	ctx := context.Background()
	logg := newTestLogger(t)

	patientID := uuid.New()
	lastTaken := time.Now().Add(-30 * time.Hour)
	lastMissed := time.Now().Add(-2 * time.Hour)

	store := &fakeExpertStore{data: map[uuid.UUID]expertStoreData{
		patientID: {
			scheduled: 10,
			byStatus:  map[string]int64{types.DoseStatusTaken: 8, types.DoseStatusMissed: 2},
			lastAt:    map[string]*time.Time{types.DoseStatusTaken: &lastTaken, types.DoseStatusMissed: &lastMissed},
			recent: []types.DoseLog{
				{Status: types.DoseStatusMissed},
				{Status: types.DoseStatusMissed},
				{Status: types.DoseStatusTaken},
			},
		},
	}}
	repo := &fakePatientRepo{patients: map[uuid.UUID]*types.Patient{
		patientID: {ID: patientID, FirstName: "Priya", LastName: "Sharma", Role: types.RolePatient},
	}}

	svc := NewExpertService(logg, repo, adherence.NewMetrics(store, logg))

	got, err := svc.PatientRisk(ctx, patientID, 7)
	if err != nil {
		t.Fatalf("PatientRisk: %v", err)
	}
	if got.PatientName != "Priya Sharma" {
		t.Errorf("name = %q", got.PatientName)
	}
	if got.AdherencePercentage != 80 || got.RiskLevel != types.RiskMedium {
		t.Errorf("pct=%d risk=%s, want 80 MEDIUM", got.AdherencePercentage, got.RiskLevel)
	}
	if got.MissedStreak != 2 || got.HighRisk {
		t.Errorf("streak=%d highRisk=%v, want streak 2 without high risk", got.MissedStreak, got.HighRisk)
	}
	if got.LastActivityAt == nil || !got.LastActivityAt.Equal(lastMissed) {
		t.Errorf("lastActivity = %v, want the more recent miss %v", got.LastActivityAt, lastMissed)
	}
	if got.TotalScheduled != 10 || got.TotalTaken != 8 || got.TotalMissed != 2 {
		t.Errorf("totals = %d/%d/%d", got.TotalScheduled, got.TotalTaken, got.TotalMissed)
	}
}

func TestExpertPatientRiskRejectsNonPatient(t *testing.T) {
	ctx := context.Background()
	logg := newTestLogger(t)

	doctorID := uuid.New()
	store := &fakeExpertStore{data: map[uuid.UUID]expertStoreData{}}
	repo := &fakePatientRepo{patients: map[uuid.UUID]*types.Patient{
		doctorID: {ID: doctorID, FirstName: "Dr", Role: types.RoleDoctor},
	}}
	svc := NewExpertService(logg, repo, adherence.NewMetrics(store, logg))

	if _, err := svc.PatientRisk(ctx, doctorID, 7); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a doctor account, got %v", err)
	}
	if _, err := svc.PatientRisk(ctx, uuid.New(), 7); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for an unknown id, got %v", err)
	}
}

func TestExpertPatients(t *testing.T) {
	ctx := context.Background()
	logg := newTestLogger(t)

	active := uuid.New()
	fresh := uuid.New()
	doctor := uuid.New()

	store := &fakeExpertStore{data: map[uuid.UUID]expertStoreData{
		active: {
			scheduled: 4,
			byStatus:  map[string]int64{types.DoseStatusTaken: 3},
		},
		// fresh has no schedules yet; the dashboard shows no percentage.
	}}
	repo := &fakePatientRepo{patients: map[uuid.UUID]*types.Patient{
		active: {ID: active, FirstName: "Ravi", Role: types.RolePatient},
		fresh:  {ID: fresh, FirstName: "Meera", Role: types.RolePatient},
		doctor: {ID: doctor, FirstName: "Dr", Role: types.RoleDoctor},
	}}
	svc := NewExpertService(logg, repo, adherence.NewMetrics(store, logg))

	rows, err := svc.Patients(ctx)
	if err != nil {
		t.Fatalf("Patients: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want the two patient accounts", len(rows))
	}
	byID := map[uuid.UUID]*types.AssignedPatient{}
	for _, r := range rows {
		byID[r.ID] = r
	}
	if got := byID[active]; got == nil || got.RecentAdherence == nil || *got.RecentAdherence != 75 {
		t.Errorf("active patient adherence = %+v, want 75", got)
	}
	if got := byID[fresh]; got == nil || got.RecentAdherence != nil {
		t.Errorf("fresh patient should have no adherence yet: %+v", got)
	}
}

func TestLastActivity(t *testing.T) {
	early := time.Now().Add(-48 * time.Hour)
	late := time.Now().Add(-1 * time.Hour)

	if got := lastActivity(nil, nil); got != nil {
		t.Errorf("nil/nil = %v", got)
	}
	if got := lastActivity(&early, nil); got == nil || !got.Equal(early) {
		t.Errorf("taken only = %v", got)
	}
	if got := lastActivity(nil, &late); got == nil || !got.Equal(late) {
		t.Errorf("missed only = %v", got)
	}
	if got := lastActivity(&early, &late); got == nil || !got.Equal(late) {
		t.Errorf("later of the two = %v, want %v", got, late)
	}
	if got := lastActivity(&late, &early); got == nil || !got.Equal(late) {
		t.Errorf("later of the two = %v, want %v", got, late)
	}
}
