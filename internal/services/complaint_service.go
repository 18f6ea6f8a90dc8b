package services

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/yashpatel08/railsathi/internal/data/repos"
	"github.com/yashpatel08/railsathi/internal/data/repos/complaints"
	types "github.com/yashpatel08/railsathi/internal/domain"
	"github.com/yashpatel08/railsathi/internal/observability"
	"github.com/yashpatel08/railsathi/internal/platform/apierr"
	"github.com/yashpatel08/railsathi/internal/platform/ctxutil"
	"github.com/yashpatel08/railsathi/internal/platform/dbctx"
	"github.com/yashpatel08/railsathi/internal/platform/logger"
	"github.com/yashpatel08/railsathi/internal/platform/pointers"
)

const (
	msgComplaintNotFound = "Complaint not found"
	msgUpdateForbidden   = "Only user who created the complaint can update it."
	msgDeleteForbidden   = "Only user who created the complaint can delete it."
	msgNoMediaIDs        = "No media IDs provided for deletion."
	msgNoMatchingMedia   = "No matching media files found for deletion."
)

// CreateComplaintInput is a new complaint plus its uploads. DateOfJourney only
// feeds the notification and is not stored.
type CreateComplaintInput struct {
	Fields        ComplaintFields
	DateOfJourney string
	Files         []MediaFile
}

// ComplaintResult is the re-read complaint and what happened to each upload.
type ComplaintResult struct {
	Complaint *types.Complaint
	Media     []MediaOutcome
}

type ComplaintService interface {
	Create(ctx context.Context, in CreateComplaintInput) (*ComplaintResult, error)
	Update(ctx context.Context, complainID int64, actor Actor, patch ComplaintFields, files []MediaFile) (*ComplaintResult, error)
	Replace(ctx context.Context, complainID int64, actor Actor, fields ComplaintFields, files []MediaFile) (*ComplaintResult, error)
	Delete(ctx context.Context, complainID int64, actor Actor) (int64, error)
	DeleteMedia(ctx context.Context, complainID int64, actor Actor, mediaIDs []int64) (int64, error)
	GetByID(ctx context.Context, complainID int64) (*types.Complaint, error)
	ListByDateAndMobile(ctx context.Context, date string, mobile string) ([]*types.Complaint, error)
}

type ComplaintServiceConfig struct {
	// MaxParallelMedia caps concurrent ingests per call. Zero runs one task
	// per file.
	MaxParallelMedia int
	Location         *time.Location
}

type complaintService struct {
	log        *logger.Logger
	complaints repos.ComplaintRepo
	media      repos.ComplaintMediaRepo
	trains     TrainResolver
	processor  MediaProcessor
	queue      NotificationQueue
	cfg        ComplaintServiceConfig
	now        func() time.Time
}

func NewComplaintService(
	log *logger.Logger,
	complaintRepo repos.ComplaintRepo,
	mediaRepo repos.ComplaintMediaRepo,
	trains TrainResolver,
	processor MediaProcessor,
	queue NotificationQueue,
	cfg ComplaintServiceConfig,
) ComplaintService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &complaintService{
		log:        log.With("service", "ComplaintService"),
		complaints: complaintRepo,
		media:      mediaRepo,
		trains:     trains,
		processor:  processor,
		queue:      queue,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *complaintService) Create(ctx context.Context, in CreateComplaintInput) (*ComplaintResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "complaint.create", trace.WithAttributes(attribute.Int("files", len(in.Files))))
	defer span.End()

	f := in.Fields
	now := s.now()
	today := now.In(s.cfg.Location)

	row := &types.Complaint{
		PNRNumber:           f.PNRNumber,
		IsPNRValidated:      f.IsPNRValidated,
		Name:                f.Name,
		MobileNumber:        f.MobileNumber,
		ComplainType:        f.ComplainType,
		ComplainDescription: f.ComplainDescription,
		ComplainDate:        complaints.CalendarDate(today),
		ComplainStatus:      pointers.Deref(f.ComplainStatus),
		TrainID:             f.TrainID,
		TrainNumber:         f.TrainNumber,
		TrainName:           f.TrainName,
		Coach:               f.Coach,
		BerthNo:             f.BerthNo,
		CreatedBy:           f.Name,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if f.ComplainDate != nil {
		if d, err := ParseComplaintDate(*f.ComplainDate); err == nil {
			row.ComplainDate = d
		}
	}
	if strings.TrimSpace(pointers.Deref(row.IsPNRValidated)) == "" {
		row.IsPNRValidated = pointers.String(types.PNRNotAttempted)
	}
	if strings.TrimSpace(row.ComplainStatus) == "" {
		row.ComplainStatus = types.ComplaintStatusPending
	}

	ref := s.resolveTrain(ctx, f.TrainID, f.TrainNumber)
	if ref != nil {
		row.TrainID = &ref.ID
		row.TrainNumber = pointers.String(ref.Number)
		if ref.Name != nil {
			row.TrainName = ref.Name
		}
	}

	if _, err := s.complaints.Create(dbctx.Context{Ctx: ctx}, row); err != nil {
		span.RecordError(err)
		s.log.Error("complaint insert failed", "error", err)
		return nil, apierr.Persistence("complaint_create_failed", fmt.Errorf("create complaint: %w", err))
	}
	span.SetAttributes(attribute.Int64("complain_id", row.ComplainID))
	s.log.Info("complaint created", "complain_id", row.ComplainID, "mobile_number", pointers.Deref(row.MobileNumber))

	depot := ""
	if ref != nil {
		depot = pointers.Deref(ref.Depot)
	}
	s.enqueueNotification(ctx, SnapshotFromComplaint(row, depot, s.parseDateOfJourney(in.DateOfJourney, now)))

	outcomes := s.ingestAll(ctx, row.ComplainID, pointers.Deref(f.Name), in.Files)
	return s.reload(ctx, row.ComplainID, outcomes)
}

func (s *complaintService) Update(ctx context.Context, complainID int64, actor Actor, patch ComplaintFields, files []MediaFile) (*ComplaintResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "complaint.update", trace.WithAttributes(attribute.Int64("complain_id", complainID)))
	defer span.End()

	if _, err := s.loadOwned(ctx, complainID, actor, msgUpdateForbidden); err != nil {
		return nil, err
	}
	updates, err := patch.PatchUpdates()
	if err != nil {
		return nil, err
	}
	if patch.TrainID != nil || patch.TrainNumber != nil {
		applyTrain(updates, s.resolveTrain(ctx, patch.TrainID, patch.TrainNumber))
	}
	return s.applyAndIngest(ctx, complainID, actor, updates, files)
}

func (s *complaintService) Replace(ctx context.Context, complainID int64, actor Actor, fields ComplaintFields, files []MediaFile) (*ComplaintResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "complaint.replace", trace.WithAttributes(attribute.Int64("complain_id", complainID)))
	defer span.End()

	if _, err := s.loadOwned(ctx, complainID, actor, msgUpdateForbidden); err != nil {
		return nil, err
	}
	updates, err := fields.ReplaceUpdates(s.now().In(s.cfg.Location))
	if err != nil {
		return nil, err
	}
	applyTrain(updates, s.resolveTrain(ctx, fields.TrainID, fields.TrainNumber))
	return s.applyAndIngest(ctx, complainID, actor, updates, files)
}

func (s *complaintService) applyAndIngest(ctx context.Context, complainID int64, actor Actor, updates map[string]interface{}, files []MediaFile) (*ComplaintResult, error) {
	updates["updated_by"] = actor.Name
	updates["updated_at"] = s.now()
	if err := s.complaints.UpdateFields(dbctx.Context{Ctx: ctx}, complainID, updates); err != nil {
		s.log.Error("complaint update failed", "complain_id", complainID, "error", err)
		return nil, apierr.Persistence("complaint_update_failed", fmt.Errorf("update complaint %d: %w", complainID, err))
	}
	s.log.Info("complaint updated", "complain_id", complainID, "columns", len(updates))
	outcomes := s.ingestAll(ctx, complainID, actor.Name, files)
	return s.reload(ctx, complainID, outcomes)
}

func (s *complaintService) Delete(ctx context.Context, complainID int64, actor Actor) (int64, error) {
	ctx, span := observability.Tracer().Start(ctx, "complaint.delete", trace.WithAttributes(attribute.Int64("complain_id", complainID)))
	defer span.End()

	if _, err := s.loadOwned(ctx, complainID, actor, msgDeleteForbidden); err != nil {
		return 0, err
	}
	n, err := s.complaints.DeleteCascade(dbctx.Context{Ctx: ctx}, complainID)
	if err != nil {
		return 0, apierr.Persistence("complaint_delete_failed", fmt.Errorf("delete complaint %d: %w", complainID, err))
	}
	s.log.Info("complaint deleted", "complain_id", complainID, "rows", n)
	return n, nil
}

func (s *complaintService) DeleteMedia(ctx context.Context, complainID int64, actor Actor, mediaIDs []int64) (int64, error) {
	ctx, span := observability.Tracer().Start(ctx, "complaint.delete_media", trace.WithAttributes(
		attribute.Int64("complain_id", complainID),
		attribute.Int("media_ids", len(mediaIDs)),
	))
	defer span.End()

	if _, err := s.loadOwned(ctx, complainID, actor, msgDeleteForbidden); err != nil {
		return 0, err
	}
	if len(mediaIDs) == 0 {
		return 0, apierr.Validation("no_media_ids", msgNoMediaIDs)
	}
	n, err := s.media.DeleteByIDs(dbctx.Context{Ctx: ctx}, complainID, mediaIDs)
	if err != nil {
		return 0, apierr.Persistence("media_delete_failed", fmt.Errorf("delete media for %d: %w", complainID, err))
	}
	if n == 0 {
		return 0, apierr.Validation("no_matching_media", msgNoMatchingMedia)
	}
	s.log.Info("complaint media deleted", "complain_id", complainID, "rows", n)
	return n, nil
}

func (s *complaintService) GetByID(ctx context.Context, complainID int64) (*types.Complaint, error) {
	c, err := s.complaints.GetWithMedia(dbctx.Context{Ctx: ctx}, complainID)
	if err != nil {
		return nil, fmt.Errorf("get complaint %d: %w", complainID, err)
	}
	if c == nil {
		return nil, apierr.NotFound("complaint_not_found", msgComplaintNotFound)
	}
	return c, nil
}

func (s *complaintService) ListByDateAndMobile(ctx context.Context, date string, mobile string) ([]*types.Complaint, error) {
	day, err := time.Parse(time.DateOnly, strings.TrimSpace(date))
	if err != nil {
		return nil, errInvalidDate()
	}
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return nil, apierr.Validation("mobile_number_required", "mobile_number is required")
	}
	rows, err := s.complaints.ListByDateAndMobile(dbctx.Context{Ctx: ctx}, day, mobile)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	return rows, nil
}

// loadOwned fetches the complaint and enforces the holder rule: the caller
// must match created_by and mobile_number, and the complaint must not be
// completed.
func (s *complaintService) loadOwned(ctx context.Context, complainID int64, actor Actor, forbidden string) (*types.Complaint, error) {
	existing, err := s.GetByID(ctx, complainID)
	if err != nil {
		return nil, err
	}
	if existing.IsCompleted() ||
		strings.TrimSpace(actor.Name) == "" ||
		pointers.Deref(existing.CreatedBy) != actor.Name ||
		pointers.Deref(existing.MobileNumber) != actor.MobileNumber {
		s.log.Warn("complaint mutation rejected", "complain_id", complainID, "status", existing.ComplainStatus)
		return nil, apierr.Permission("forbidden", forbidden)
	}
	return existing, nil
}

// resolveTrain prefers id over number. Lookup failures leave the train
// unresolved.
func (s *complaintService) resolveTrain(ctx context.Context, id *int64, number *string) *TrainRef {
	var (
		ref *TrainRef
		err error
	)
	switch {
	case id != nil && *id > 0:
		ref, err = s.trains.ResolveByID(ctx, *id)
	case number != nil && strings.TrimSpace(*number) != "":
		ref, err = s.trains.ResolveByNumber(ctx, *number)
	default:
		return nil
	}
	if err != nil {
		s.log.Warn("train lookup failed (continuing unresolved)", "error", err)
		return nil
	}
	return ref
}

// ingestAll runs one task per file and waits for all of them. Each task
// records its own outcome, so a failing file never cancels its siblings.
func (s *complaintService) ingestAll(ctx context.Context, complainID int64, uploader string, files []MediaFile) []MediaOutcome {
	if len(files) == 0 {
		return nil
	}
	outcomes := make([]MediaOutcome, len(files))
	workCtx := ctxutil.Detach(ctx)

	var g errgroup.Group
	if s.cfg.MaxParallelMedia > 0 {
		g.SetLimit(s.cfg.MaxParallelMedia)
	}
	for i := range files {
		i := i
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("media task panic", "complain_id", complainID, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
					outcomes[i] = MediaOutcome{Filename: files[i].Filename, Err: fmt.Errorf("media task panic: %v", r)}
				}
			}()
			outcomes[i] = s.processor.Ingest(workCtx, complainID, uploader, files[i])
			return nil
		})
	}
	_ = g.Wait()

	ok := 0
	for _, o := range outcomes {
		if o.OK() {
			ok++
		}
	}
	s.log.Info("media ingest finished", "complain_id", complainID, "files", len(files), "attached", ok)
	return outcomes
}

func (s *complaintService) reload(ctx context.Context, complainID int64, outcomes []MediaOutcome) (*ComplaintResult, error) {
	c, err := s.GetByID(ctx, complainID)
	if err != nil {
		return nil, err
	}
	return &ComplaintResult{Complaint: c, Media: outcomes}, nil
}

func (s *complaintService) enqueueNotification(ctx context.Context, snap ComplaintSnapshot) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(ctx, snap); err != nil {
		s.log.Error("failed to enqueue complaint notification", "complain_id", snap.ComplainID, "error", err)
	}
}

// parseDateOfJourney accepts a date or a timestamp; anything else means now.
func (s *complaintService) parseDateOfJourney(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now
	}
	for _, layout := range []string{time.DateOnly, time.DateTime, time.RFC3339} {
		if t, err := time.ParseInLocation(layout, raw, s.cfg.Location); err == nil {
			return t
		}
	}
	return now
}
