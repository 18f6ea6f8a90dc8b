package sqlquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/yashpatel08/railsathi/internal/data/repos/testutil"
	"github.com/yashpatel08/railsathi/internal/platform/apierr"
	"github.com/yashpatel08/railsathi/internal/platform/dbctx"
)

func TestValidateSelect(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"SELECT 1", "SELECT 1", true},
		{"  select * from trains;  ", "select * from trains", true},
		{"-- note\n/* block */ WITH x AS (SELECT 1) SELECT * FROM x", "WITH x AS (SELECT 1) SELECT * FROM x", true},
		{"DELETE FROM trains", "", false},
		{"SELECT 1; DROP TABLE trains", "", false},
		{"/* unterminated", "", false},
		{"selectx 1", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ValidateSelect(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("ValidateSelect(%q): want=%q got=%q err=%v", tc.in, tc.want, got, err)
			}
			continue
		}
		var ae *apierr.Error
		if !errors.As(err, &ae) || ae.Status != http.StatusBadRequest {
			t.Fatalf("ValidateSelect(%q): want validation error got=%v", tc.in, err)
		}
	}
}

func TestRunSelectReturnsRows(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	testutil.SeedComplaint(t, ctx, db, "A", "999", time.Now())
	testutil.SeedComplaint(t, ctx, db, "B", "999", time.Now())

	r := NewRunner(db, testutil.Logger(t))
	rows, err := r.RunSelect(dbctx.Context{Ctx: ctx}, "SELECT name FROM rail_sathi_railsathicomplain WHERE mobile_number = ? ORDER BY complain_id", "999")
	if err != nil {
		t.Fatalf("RunSelect: %v", err)
	}
	if len(rows) != 2 || fmt.Sprint(rows[0]["name"]) != "A" || fmt.Sprint(rows[1]["name"]) != "B" {
		t.Fatalf("RunSelect: unexpected rows %+v", rows)
	}

	if _, err := r.RunSelect(dbctx.Context{Ctx: ctx}, "UPDATE rail_sathi_railsathicomplain SET name = 'x'"); err == nil {
		t.Fatalf("RunSelect: expected rejection of UPDATE")
	}
}
