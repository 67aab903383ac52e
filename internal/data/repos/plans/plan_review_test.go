package plans

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/mediccompanion/backend/internal/data/repos/testutil"
	types "github.com/mediccompanion/backend/internal/domain"
	errs "github.com/mediccompanion/backend/internal/pkg/errors"
)

func TestPlanReviewRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewPlanReviewRepo(db, testutil.Logger(t))

	p := testutil.SeedPatient(t, ctx, tx, "planrepo@example.com")
	review := &types.PlanReview{
		ID:        uuid.New(),
		PatientID: p.ID,
		RawText:   "Aspirin 75mg once daily",
		Schedule:  datatypes.JSON(`[{"medication_name":"Aspirin","schedule_times":["08:00"]}]`),
		Status:    types.PlanStatusProposed,
	}
	if _, err := repo.Create(ctx, tx, review); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, review.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.PatientID != p.ID || got.Status != types.PlanStatusProposed {
		t.Fatalf("got %+v", got)
	}

	now := time.Now()
	got.Status = types.PlanStatusApproved
	got.ApprovedAt = &now
	if err := repo.Update(ctx, tx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	reloaded, err := repo.GetByID(ctx, tx, review.ID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if reloaded.Status != types.PlanStatusApproved || reloaded.ApprovedAt == nil {
		t.Errorf("approval not persisted: %+v", reloaded)
	}

	rows, err := repo.ListByPatient(ctx, tx, p.ID, 0)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByPatient: err=%v len=%d", err, len(rows))
	}

	if _, err := repo.GetByID(ctx, tx, uuid.New()); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("unknown id: %v", err)
	}
}
