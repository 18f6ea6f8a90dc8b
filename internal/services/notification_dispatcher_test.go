package services

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/yashpatel08/railsathi/internal/data/repos"
	"github.com/yashpatel08/railsathi/internal/data/repos/testutil"
	types "github.com/yashpatel08/railsathi/internal/domain"
)

func ist(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestGrantCovers(t *testing.T) {
	raw := []byte(`{"12345":[{"origin_date":"2024-01-01","end_date":"2024-01-31"}],"55555":[{"origin_date":"2024-02-01","end_date":"ongoing"}],"99999":[{"origin_date":"bad","end_date":"ongoing"}]}`)
	day := func(s string) time.Time {
		d, err := time.Parse(time.DateOnly, s)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		return d
	}
	cases := []struct {
		train string
		day   string
		want  bool
	}{
		{"12345", "2024-01-01", true},
		{"12345", "2024-01-31", true},
		{"12345", "2024-02-01", false},
		{"12345", "2023-12-31", false},
		{"55555", "2030-05-05", true},
		{"55555", "2024-01-31", false},
		{"99999", "2024-06-01", false},
		{"00000", "2024-01-10", false},
	}
	for _, tc := range cases {
		got, err := GrantCovers(raw, tc.train, day(tc.day))
		if err != nil {
			t.Fatalf("GrantCovers(%s,%s): %v", tc.train, tc.day, err)
		}
		if got != tc.want {
			t.Fatalf("GrantCovers(%s,%s): want=%v got=%v", tc.train, tc.day, tc.want, got)
		}
	}
	if _, err := GrantCovers([]byte(`[1,2]`), "12345", day("2024-01-10")); err == nil {
		t.Fatalf("GrantCovers: expected error for malformed grants")
	}
}

func TestGrantCoversUsesNotifyTimezoneDate(t *testing.T) {
	raw := []byte(`{"12345":[{"origin_date":"2024-01-11","end_date":"2024-01-11"}]}`)
	// 20:00 UTC on the 10th is already the 11th in IST.
	at := time.Date(2024, 1, 10, 20, 0, 0, 0, time.UTC).In(ist(t))
	got, err := GrantCovers(raw, "12345", at)
	if err != nil || !got {
		t.Fatalf("GrantCovers: want true got=%v err=%v", got, err)
	}
}

func newTestDispatcher(t *testing.T, staffRepo repos.StaffRepo, m *fakeMailer, templatePath string) NotificationDispatcher {
	t.Helper()
	d, err := NewNotificationDispatcher(testutil.Logger(t), staffRepo, m, NotificationConfig{
		TemplatePath: templatePath,
		Location:     ist(t),
	})
	if err != nil {
		t.Fatalf("NewNotificationDispatcher: %v", err)
	}
	return d
}

func TestNotifyRecipientUnion(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()

	war := testutil.SeedRole(t, ctx, db, types.RoleWarRoomUser)
	s2 := testutil.SeedRole(t, ctx, db, types.RoleS2Admin)
	rw := testutil.SeedRole(t, ctx, db, types.RoleRailwayAdmin)
	testutil.SeedUser(t, ctx, db, "war-ndls@example.com", war, "BCT,NDLS")
	testutil.SeedUser(t, ctx, db, "war-hwh@example.com", war, "HWH")
	testutil.SeedUser(t, ctx, db, "s2@example.com", s2, "")
	testutil.SeedUser(t, ctx, db, "noemail_42@example.com", s2, "")
	testutil.SeedUser(t, ctx, db, "", s2, "")
	testutil.SeedUser(t, ctx, db, "rw@example.com", rw, "")
	testutil.SeedUser(t, ctx, db, "not-an-address", rw, "")
	testutil.SeedUser(t, ctx, db, "s2@example.com", rw, "")

	covered := testutil.SeedUser(t, ctx, db, "grant@example.com", nil, "")
	expired := testutil.SeedUser(t, ctx, db, "expired@example.com", nil, "")
	testutil.SeedTrainAccess(t, ctx, db, covered.ID, map[string][]types.AccessWindow{
		"12345": {{OriginDate: "2024-01-01", EndDate: types.AccessOngoing}},
	})
	testutil.SeedTrainAccess(t, ctx, db, expired.ID, map[string][]types.AccessWindow{
		"12345": {{OriginDate: "2023-01-01", EndDate: "2023-12-31"}},
	})

	m := &fakeMailer{}
	d := newTestDispatcher(t, repos.NewStaffRepo(db, testutil.Logger(t)), m, "")
	res, err := d.Notify(ctx, ComplaintSnapshot{
		ComplainID:  1,
		TrainNumber: "12345",
		TrainDepot:  "NDLS",
		CreatedAt:   time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	want := []string{"war-ndls@example.com", "s2@example.com", "rw@example.com", "grant@example.com"}
	if got := m.recipients(); !reflect.DeepEqual(got, want) {
		t.Fatalf("recipients: want=%v got=%v", want, got)
	}
	if res.Recipients != 4 || res.Sent != 4 || res.Failed != 0 {
		t.Fatalf("result: got=%+v", res)
	}
}

func TestNotifySkipsWarRoomWithoutDepot(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	war := testutil.SeedRole(t, ctx, db, types.RoleWarRoomUser)
	testutil.SeedUser(t, ctx, db, "war@example.com", war, "NDLS")

	m := &fakeMailer{}
	d := newTestDispatcher(t, repos.NewStaffRepo(db, testutil.Logger(t)), m, "")
	res, err := d.Notify(ctx, ComplaintSnapshot{ComplainID: 2, TrainNumber: "12345", CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if res.Recipients != 0 || len(m.recipients()) != 0 {
		t.Fatalf("empty recipient set: got=%+v sent=%v", res, m.recipients())
	}
}

func TestNotifyContinuesPastSendFailure(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	s2 := testutil.SeedRole(t, ctx, db, types.RoleS2Admin)
	testutil.SeedUser(t, ctx, db, "a@example.com", s2, "")
	testutil.SeedUser(t, ctx, db, "b@example.com", s2, "")
	testutil.SeedUser(t, ctx, db, "c@example.com", s2, "")

	m := &fakeMailer{failTo: map[string]bool{"b@example.com": true}}
	d := newTestDispatcher(t, repos.NewStaffRepo(db, testutil.Logger(t)), m, "")
	res, err := d.Notify(ctx, ComplaintSnapshot{ComplainID: 3, TrainNumber: "12345", CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if res.Sent != 2 || res.Failed != 1 {
		t.Fatalf("result: want sent=2 failed=1 got=%+v", res)
	}
	if got := m.recipients(); !reflect.DeepEqual(got, []string{"a@example.com", "c@example.com"}) {
		t.Fatalf("recipients: got=%v", got)
	}
}

func TestNotifyRendersInlineTemplate(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	s2 := testutil.SeedRole(t, ctx, db, types.RoleS2Admin)
	testutil.SeedUser(t, ctx, db, "ops@example.com", s2, "")

	m := &fakeMailer{}
	d := newTestDispatcher(t, repos.NewStaffRepo(db, testutil.Logger(t)), m, filepath.Join(t.TempDir(), "missing.txt"))
	berth := 42
	_, err := d.Notify(ctx, ComplaintSnapshot{
		ComplainID:    77,
		Name:          "Asha",
		MobileNumber:  "9990001111",
		TrainNumber:   "12345",
		TrainName:     "Rajdhani Express",
		TrainDepot:    "NDLS",
		Coach:         "B2",
		BerthNo:       &berth,
		Description:   "AC not working",
		CreatedAt:     time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC),
		DateOfJourney: time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(m.sent) != 1 {
		t.Fatalf("sent: want=1 got=%d", len(m.sent))
	}
	msg := m.sent[0]
	if msg.subject != "Complaint received for train number: 12345" {
		t.Fatalf("subject: got=%q", msg.subject)
	}
	for _, want := range []string{
		"Complaint ID: 77",
		"Submitted At: 10 Jan 2024, 15:30",
		"PNR: PNR not provided by passenger",
		"Berth: 42",
		"Date of Journey: 09 Jan 2024",
		"Train Depot: NDLS",
		"Team RailSathi",
	} {
		if !strings.Contains(msg.text, want) {
			t.Fatalf("body missing %q:\n%s", want, msg.text)
		}
	}
}

func TestNotifyUsesTemplateFile(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	s2 := testutil.SeedRole(t, ctx, db, types.RoleS2Admin)
	testutil.SeedUser(t, ctx, db, "ops@example.com", s2, "")

	path := filepath.Join(t.TempDir(), "tmpl.txt")
	if err := os.WriteFile(path, []byte("Train {{.TrainNumber}} complaint {{.ComplainID}}"), 0o600); err != nil {
		t.Fatalf("write template: %v", err)
	}
	m := &fakeMailer{}
	d := newTestDispatcher(t, repos.NewStaffRepo(db, testutil.Logger(t)), m, path)
	if _, err := d.Notify(ctx, ComplaintSnapshot{ComplainID: 5, TrainNumber: "12345", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(m.sent) != 1 || m.sent[0].text != "Train 12345 complaint 5" {
		t.Fatalf("body: got=%+v", m.sent)
	}

	bad := filepath.Join(t.TempDir(), "bad.txt")
	if err := os.WriteFile(bad, []byte("{{.Broken"), 0o600); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if _, err := NewNotificationDispatcher(testutil.Logger(t), repos.NewStaffRepo(db, testutil.Logger(t)), m, NotificationConfig{TemplatePath: bad}); err == nil {
		t.Fatalf("NewNotificationDispatcher: expected parse error")
	}
}
