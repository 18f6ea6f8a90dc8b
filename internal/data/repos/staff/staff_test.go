package staff

import (
	"context"
	"testing"

	"github.com/yashpatel08/railsathi/internal/data/repos/testutil"
	types "github.com/yashpatel08/railsathi/internal/domain"
	"github.com/yashpatel08/railsathi/internal/platform/dbctx"
)

func TestStaffRepoListByRole(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewStaffRepo(db, testutil.Logger(t))

	war := testutil.SeedRole(t, ctx, db, types.RoleWarRoomUser)
	s2 := testutil.SeedRole(t, ctx, db, types.RoleS2Admin)
	testutil.SeedUser(t, ctx, db, "war1@example.com", war, "NDLS,BCT")
	testutil.SeedUser(t, ctx, db, "war2@example.com", war, "HWH")
	testutil.SeedUser(t, ctx, db, "s2@example.com", s2, "")
	testutil.SeedUser(t, ctx, db, "norole@example.com", nil, "")

	got, err := repo.ListByRole(dbc, types.RoleWarRoomUser)
	if err != nil {
		t.Fatalf("ListByRole: %v", err)
	}
	if len(got) != 2 || got[0].Email != "war1@example.com" || got[1].Email != "war2@example.com" {
		t.Fatalf("ListByRole: unexpected result %+v", got)
	}

	got, err = repo.ListByRole(dbc, types.RoleRailwayAdmin)
	if err != nil {
		t.Fatalf("ListByRole (none): %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("ListByRole (none): want empty got=%+v", got)
	}
}

func TestStaffRepoListAccessGrantsSkipsEmptyRecords(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewStaffRepo(db, testutil.Logger(t))

	u1 := testutil.SeedUser(t, ctx, db, "grant@example.com", nil, "")
	u2 := testutil.SeedUser(t, ctx, db, "empty@example.com", nil, "")
	testutil.SeedTrainAccess(t, ctx, db, u1.ID, map[string][]types.AccessWindow{
		"12345": {{OriginDate: "2024-01-01", EndDate: types.AccessOngoing}},
	})
	testutil.SeedTrainAccess(t, ctx, db, u2.ID, map[string][]types.AccessWindow{})

	got, err := repo.ListAccessGrants(dbc)
	if err != nil {
		t.Fatalf("ListAccessGrants: %v", err)
	}
	if len(got) != 1 || got[0].Email != "grant@example.com" || got[0].UserID != u1.ID {
		t.Fatalf("ListAccessGrants: unexpected result %+v", got)
	}
}
