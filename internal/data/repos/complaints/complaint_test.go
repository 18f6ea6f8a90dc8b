package complaints

import (
	"context"
	"testing"
	"time"

	"github.com/yashpatel08/railsathi/internal/data/repos/testutil"
	types "github.com/yashpatel08/railsathi/internal/domain"
	"github.com/yashpatel08/railsathi/internal/platform/dbctx"
	"github.com/yashpatel08/railsathi/internal/platform/pointers"
)

func TestComplaintRepoCreateAndGetWithMedia(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	td := testutil.SeedTrainDetail(t, ctx, db, "12345", "Rajdhani Express", "NDLS")

	repo := NewComplaintRepo(db, testutil.Logger(t))
	mediaRepo := NewComplaintMediaRepo(db, testutil.Logger(t))

	created, err := repo.Create(dbc, &types.Complaint{
		Name:         pointers.String("A"),
		MobileNumber: pointers.String("999"),
		ComplainDate: CalendarDate(time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)),
		TrainID:      &td.ID,
		TrainNumber:  pointers.String("12345"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ComplainID <= 0 {
		t.Fatalf("Create: expected generated id, got %d", created.ComplainID)
	}
	if created.ComplainStatus != types.ComplaintStatusPending {
		t.Fatalf("Create: status want=%q got=%q", types.ComplaintStatusPending, created.ComplainStatus)
	}

	if err := mediaRepo.Create(dbc, &types.ComplaintMedia{ComplainID: created.ComplainID, MediaType: types.MediaTypeImage, MediaURL: "u1"}); err != nil {
		t.Fatalf("media Create: %v", err)
	}
	if err := mediaRepo.Create(dbc, &types.ComplaintMedia{ComplainID: created.ComplainID, MediaType: types.MediaTypeVideo, MediaURL: "u2"}); err != nil {
		t.Fatalf("media Create: %v", err)
	}

	got, err := repo.GetWithMedia(dbc, created.ComplainID)
	if err != nil {
		t.Fatalf("GetWithMedia: %v", err)
	}
	if got == nil {
		t.Fatalf("GetWithMedia: expected row")
	}
	if pointers.Deref(got.JoinedTrainNo) != "12345" || pointers.Deref(got.TrainDepot) != "NDLS" {
		t.Fatalf("GetWithMedia: joined train fields got=%v/%v", got.JoinedTrainNo, got.TrainDepot)
	}
	if pointers.Deref(got.JoinedTrainName) != "Rajdhani Express" {
		t.Fatalf("GetWithMedia: joined train name want=%q got=%v", "Rajdhani Express", got.JoinedTrainName)
	}
	if len(got.Media) != 2 || got.Media[0].MediaURL != "u1" || got.Media[1].MediaURL != "u2" {
		t.Fatalf("GetWithMedia: media got=%+v", got.Media)
	}

	missing, err := repo.GetWithMedia(dbc, created.ComplainID+100)
	if err != nil {
		t.Fatalf("GetWithMedia (missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("GetWithMedia (missing): expected nil got=%+v", missing)
	}
}

func TestComplaintRepoListByDateAndMobile(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewComplaintRepo(db, testutil.Logger(t))

	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	match := testutil.SeedComplaint(t, ctx, db, "A", "999", day)
	testutil.SeedComplaint(t, ctx, db, "A", "888", day)
	testutil.SeedComplaint(t, ctx, db, "A", "999", day.AddDate(0, 0, 1))
	testutil.SeedMedia(t, ctx, db, match.ComplainID, types.MediaTypeImage)

	got, err := repo.ListByDateAndMobile(dbc, day, "999")
	if err != nil {
		t.Fatalf("ListByDateAndMobile: %v", err)
	}
	if len(got) != 1 || got[0].ComplainID != match.ComplainID {
		t.Fatalf("ListByDateAndMobile: unexpected result %+v", got)
	}
	if len(got[0].Media) != 1 {
		t.Fatalf("ListByDateAndMobile: media want=1 got=%d", len(got[0].Media))
	}

	empty, err := repo.ListByDateAndMobile(dbc, day, "000")
	if err != nil {
		t.Fatalf("ListByDateAndMobile (empty): %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("ListByDateAndMobile (empty): want empty slice got=%v", empty)
	}
}

func TestComplaintRepoUpdateFieldsTouchesOnlyGivenColumns(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewComplaintRepo(db, testutil.Logger(t))

	c := testutil.SeedComplaint(t, ctx, db, "A", "999", time.Now())
	later := c.CreatedAt.Add(time.Minute)
	if err := repo.UpdateFields(dbc, c.ComplainID, map[string]interface{}{
		"complain_status": types.ComplaintStatusCompleted,
		"updated_at":      later,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	got, err := repo.GetWithMedia(dbc, c.ComplainID)
	if err != nil || got == nil {
		t.Fatalf("GetWithMedia: %v", err)
	}
	if got.ComplainStatus != types.ComplaintStatusCompleted {
		t.Fatalf("status: want=%q got=%q", types.ComplaintStatusCompleted, got.ComplainStatus)
	}
	if pointers.Deref(got.Name) != "A" || pointers.Deref(got.ComplainType) != "cleanliness" {
		t.Fatalf("untouched fields changed: %+v", got)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Fatalf("updated_at: want after %v got=%v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestComplaintRepoDeleteCascade(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewComplaintRepo(db, testutil.Logger(t))
	mediaRepo := NewComplaintMediaRepo(db, testutil.Logger(t))

	a := testutil.SeedComplaint(t, ctx, db, "A", "999", time.Now())
	b := testutil.SeedComplaint(t, ctx, db, "B", "888", time.Now())
	testutil.SeedMedia(t, ctx, db, a.ComplainID, types.MediaTypeImage)
	testutil.SeedMedia(t, ctx, db, a.ComplainID, types.MediaTypeVideo)
	keep := testutil.SeedMedia(t, ctx, db, b.ComplainID, types.MediaTypeImage)

	n, err := repo.DeleteCascade(dbc, a.ComplainID)
	if err != nil {
		t.Fatalf("DeleteCascade: %v", err)
	}
	if n != 1 {
		t.Fatalf("DeleteCascade: want=1 got=%d", n)
	}
	if got, _ := repo.GetWithMedia(dbc, a.ComplainID); got != nil {
		t.Fatalf("GetWithMedia after delete: expected nil")
	}
	left, err := mediaRepo.ListByComplaintIDs(dbc, []int64{a.ComplainID, b.ComplainID})
	if err != nil {
		t.Fatalf("ListByComplaintIDs: %v", err)
	}
	if len(left) != 1 || left[0].ID != keep.ID {
		t.Fatalf("cascade removed foreign media: %+v", left)
	}

	n, err = repo.DeleteCascade(dbc, a.ComplainID)
	if err != nil {
		t.Fatalf("DeleteCascade (again): %v", err)
	}
	if n != 0 {
		t.Fatalf("DeleteCascade (again): want=0 got=%d", n)
	}
}

func TestComplaintRepoIDsAreNotReused(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewComplaintRepo(db, testutil.Logger(t))

	a := testutil.SeedComplaint(t, ctx, db, "A", "999", time.Now())
	b := testutil.SeedComplaint(t, ctx, db, "B", "999", time.Now())
	if _, err := repo.DeleteCascade(dbc, a.ComplainID); err != nil {
		t.Fatalf("DeleteCascade: %v", err)
	}
	c := testutil.SeedComplaint(t, ctx, db, "C", "999", time.Now())
	if c.ComplainID <= b.ComplainID {
		t.Fatalf("id reuse: want > %d got=%d", b.ComplainID, c.ComplainID)
	}
}
