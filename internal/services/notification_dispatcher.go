package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/template"
	"time"
	_ "time/tzdata"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/yashpatel08/railsathi/internal/data/repos"
	types "github.com/yashpatel08/railsathi/internal/domain"
	"github.com/yashpatel08/railsathi/internal/observability"
	"github.com/yashpatel08/railsathi/internal/platform/dbctx"
	"github.com/yashpatel08/railsathi/internal/platform/logger"
	"github.com/yashpatel08/railsathi/internal/platform/mailer"
	"github.com/yashpatel08/railsathi/internal/platform/pointers"
)

const pnrMissingText = "PNR not provided by passenger"

// ComplaintSnapshot is the immutable view of a new complaint handed to
// background notification.
type ComplaintSnapshot struct {
	ComplainID    int64     `json:"complain_id"`
	Name          string    `json:"name"`
	MobileNumber  string    `json:"mobile_number"`
	PNRNumber     string    `json:"pnr_number"`
	ComplainType  string    `json:"complain_type"`
	Description   string    `json:"complain_description"`
	TrainNumber   string    `json:"train_number"`
	TrainName     string    `json:"train_name"`
	TrainDepot    string    `json:"train_depot"`
	Coach         string    `json:"coach"`
	BerthNo       *int      `json:"berth_no"`
	CreatedAt     time.Time `json:"created_at"`
	DateOfJourney time.Time `json:"date_of_journey"`
}

// SnapshotFromComplaint copies the fields notification needs.
func SnapshotFromComplaint(c *types.Complaint, depot string, dateOfJourney time.Time) ComplaintSnapshot {
	return ComplaintSnapshot{
		ComplainID:    c.ComplainID,
		Name:          pointers.Deref(c.Name),
		MobileNumber:  pointers.Deref(c.MobileNumber),
		PNRNumber:     pointers.Deref(c.PNRNumber),
		ComplainType:  pointers.Deref(c.ComplainType),
		Description:   pointers.Deref(c.ComplainDescription),
		TrainNumber:   pointers.Deref(c.TrainNumber),
		TrainName:     pointers.Deref(c.TrainName),
		TrainDepot:    depot,
		Coach:         pointers.Deref(c.Coach),
		BerthNo:       c.BerthNo,
		CreatedAt:     c.CreatedAt,
		DateOfJourney: dateOfJourney,
	}
}

type NotifyResult struct {
	Recipients int
	Sent       int
	Failed     int
}

// NotificationDispatcher emails the staff responsible for a new complaint.
// Per-recipient failures are counted, not returned.
type NotificationDispatcher interface {
	Notify(ctx context.Context, snap ComplaintSnapshot) (NotifyResult, error)
}

type NotificationConfig struct {
	TemplatePath  string
	Location      *time.Location
	NoEmailPrefix string
}

type notificationDispatcher struct {
	log       *logger.Logger
	staffRepo repos.StaffRepo
	mail      mailer.Mailer
	tmpl      *template.Template
	loc       *time.Location
	noEmail   string
}

func NewNotificationDispatcher(log *logger.Logger, staffRepo repos.StaffRepo, mail mailer.Mailer, cfg NotificationConfig) (NotificationDispatcher, error) {
	serviceLog := log.With("service", "NotificationDispatcher")
	tmpl, source, err := loadComplaintEmailTemplate(cfg.TemplatePath)
	if err != nil {
		return nil, err
	}
	serviceLog.Info("complaint email template loaded", "source", source)
	loc := cfg.Location
	if loc == nil {
		loc, err = time.LoadLocation("Asia/Kolkata")
		if err != nil {
			return nil, fmt.Errorf("load notify timezone: %w", err)
		}
	}
	noEmail := strings.TrimSpace(cfg.NoEmailPrefix)
	if noEmail == "" {
		noEmail = "noemail"
	}
	return &notificationDispatcher{
		log:       serviceLog,
		staffRepo: staffRepo,
		mail:      mail,
		tmpl:      tmpl,
		loc:       loc,
		noEmail:   noEmail,
	}, nil
}

func (d *notificationDispatcher) Notify(ctx context.Context, snap ComplaintSnapshot) (NotifyResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "notification.notify")
	defer span.End()
	span.SetAttributes(attribute.Int64("complain_id", snap.ComplainID))

	var res NotifyResult
	recipients, err := d.recipients(ctx, snap)
	if err != nil {
		span.RecordError(err)
		return res, fmt.Errorf("resolve recipients: %w", err)
	}
	res.Recipients = len(recipients)
	span.SetAttributes(attribute.Int("recipients", len(recipients)))
	if len(recipients) == 0 {
		d.log.Info("no notification recipients", "complain_id", snap.ComplainID, "train_number", snap.TrainNumber)
		return res, nil
	}

	subject := "Complaint received for train number: " + snap.TrainNumber
	body, err := d.render(snap)
	if err != nil {
		span.RecordError(err)
		return res, err
	}
	for _, to := range recipients {
		if err := ctx.Err(); err != nil {
			res.Failed += len(recipients) - res.Sent - res.Failed
			break
		}
		if err := d.mail.Send(ctx, mailer.Message{To: []string{to}, Subject: subject, Text: body}); err != nil {
			res.Failed++
			d.log.Warn("complaint email failed", "complain_id", snap.ComplainID, "email", to, "error", err)
			continue
		}
		res.Sent++
	}
	d.log.Info("complaint notifications sent",
		"complain_id", snap.ComplainID,
		"recipients", res.Recipients,
		"sent", res.Sent,
		"failed", res.Failed,
	)
	return res, nil
}

// recipients fetches the four recipient sources in parallel and returns the
// deduplicated, deliverable addresses in source order.
func (d *notificationDispatcher) recipients(ctx context.Context, snap ComplaintSnapshot) ([]string, error) {
	var warRoom, s2, railway []*types.User
	var grants []*types.AccessGrant

	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.Context{Ctx: gctx}
	g.Go(func() (err error) {
		if strings.TrimSpace(snap.TrainDepot) == "" {
			return nil
		}
		warRoom, err = d.staffRepo.ListByRole(dbc, types.RoleWarRoomUser)
		return err
	})
	g.Go(func() (err error) {
		s2, err = d.staffRepo.ListByRole(dbc, types.RoleS2Admin)
		return err
	})
	g.Go(func() (err error) {
		railway, err = d.staffRepo.ListByRole(dbc, types.RoleRailwayAdmin)
		return err
	})
	g.Go(func() (err error) {
		if strings.TrimSpace(snap.TrainNumber) == "" {
			return nil
		}
		grants, err = d.staffRepo.ListAccessGrants(dbc)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []string
	depot := strings.TrimSpace(snap.TrainDepot)
	for _, u := range warRoom {
		if strings.Contains(pointers.Deref(u.Depo), depot) {
			all = append(all, u.Email)
		}
	}
	for _, u := range s2 {
		all = append(all, u.Email)
	}
	for _, u := range railway {
		all = append(all, u.Email)
	}
	day := snap.CreatedAt.In(d.loc)
	for _, grant := range grants {
		covered, err := GrantCovers(grant.TrainDetails, snap.TrainNumber, day)
		if err != nil {
			d.log.Warn("skipping unreadable train access", "user_id", grant.UserID, "error", err)
			continue
		}
		if covered {
			all = append(all, grant.Email)
		}
	}
	return d.deliverable(all), nil
}

func (d *notificationDispatcher) deliverable(addrs []string) []string {
	seen := make(map[string]struct{}, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a == "" || strings.HasPrefix(a, d.noEmail) || !strings.Contains(a, "@") {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

// GrantCovers reports whether raw grants trainNo on the calendar date of day.
// raw maps train numbers to windows of origin_date and end_date (YYYY-MM-DD or
// "ongoing"). Comparison happens in day's location.
func GrantCovers(raw []byte, trainNo string, day time.Time) (bool, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return false, nil
	}
	var grants map[string][]types.AccessWindow
	if err := json.Unmarshal(raw, &grants); err != nil {
		return false, err
	}
	windows := grants[trainNo]
	if len(windows) == 0 {
		return false, nil
	}
	loc := day.Location()
	y, m, dd := day.Date()
	date := time.Date(y, m, dd, 0, 0, 0, 0, loc)
	for _, w := range windows {
		origin, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(w.OriginDate), loc)
		if err != nil || date.Before(origin) {
			continue
		}
		end := strings.TrimSpace(w.EndDate)
		if strings.EqualFold(end, types.AccessOngoing) {
			return true, nil
		}
		endDate, err := time.ParseInLocation(time.DateOnly, end, loc)
		if err != nil {
			continue
		}
		if !date.After(endDate) {
			return true, nil
		}
	}
	return false, nil
}

type complaintEmailData struct {
	ComplainID    string
	SubmittedAt   string
	PassengerName string
	MobileNumber  string
	PNRNumber     string
	ComplainType  string
	TrainNumber   string
	TrainName     string
	TrainDepot    string
	Coach         string
	BerthNo       string
	DateOfJourney string
	Description   string
}

func (d *notificationDispatcher) render(snap ComplaintSnapshot) (string, error) {
	data := complaintEmailData{
		ComplainID:    strconv.FormatInt(snap.ComplainID, 10),
		SubmittedAt:   snap.CreatedAt.In(d.loc).Format("02 Jan 2006, 15:04"),
		PassengerName: snap.Name,
		MobileNumber:  snap.MobileNumber,
		PNRNumber:     snap.PNRNumber,
		ComplainType:  snap.ComplainType,
		TrainNumber:   snap.TrainNumber,
		TrainName:     snap.TrainName,
		TrainDepot:    snap.TrainDepot,
		Coach:         snap.Coach,
		Description:   snap.Description,
	}
	if strings.TrimSpace(data.PNRNumber) == "" {
		data.PNRNumber = pnrMissingText
	}
	if snap.BerthNo != nil {
		data.BerthNo = strconv.Itoa(*snap.BerthNo)
	}
	if !snap.DateOfJourney.IsZero() {
		data.DateOfJourney = snap.DateOfJourney.In(d.loc).Format("02 Jan 2006")
	}
	var buf bytes.Buffer
	if err := d.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render complaint email: %w", err)
	}
	return buf.String(), nil
}

const fallbackComplaintEmailTemplate = `A new complaint has been received.

Complaint ID: {{.ComplainID}}
Submitted At: {{.SubmittedAt}}

Passenger Information
Name: {{.PassengerName}}
Mobile: {{.MobileNumber}}

Travel Details
Train Number: {{.TrainNumber}}
Train Name: {{.TrainName}}
Coach: {{.Coach}}
Berth: {{.BerthNo}}
PNR: {{.PNRNumber}}
Date of Journey: {{.DateOfJourney}}

Complaint Type: {{.ComplainType}}
Description:
{{.Description}}

Train Depot: {{.TrainDepot}}

Team RailSathi
`

// loadComplaintEmailTemplate reads path, falling back to the inline template
// when the file does not exist. A file that exists but fails to parse is an
// error.
func loadComplaintEmailTemplate(path string) (*template.Template, string, error) {
	path = strings.TrimSpace(path)
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			t, perr := template.New("complaint_email").Option("missingkey=zero").Parse(string(raw))
			if perr != nil {
				return nil, "", fmt.Errorf("parse email template %s: %w", path, perr)
			}
			return t, path, nil
		case !errors.Is(err, os.ErrNotExist):
			return nil, "", fmt.Errorf("read email template %s: %w", path, err)
		}
	}
	t := template.Must(template.New("complaint_email").Parse(fallbackComplaintEmailTemplate))
	return t, "inline", nil
}
