package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif"
	_ "image/png"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/yashpatel08/railsathi/internal/data/repos"
	types "github.com/yashpatel08/railsathi/internal/domain"
	"github.com/yashpatel08/railsathi/internal/observability"
	"github.com/yashpatel08/railsathi/internal/platform/dbctx"
	"github.com/yashpatel08/railsathi/internal/platform/gcp"
	"github.com/yashpatel08/railsathi/internal/platform/localmedia"
	"github.com/yashpatel08/railsathi/internal/platform/logger"
	"github.com/yashpatel08/railsathi/internal/platform/pointers"
)

const (
	mediaFilePrefix  = "rail_sathi_complain_"
	imageKeyPrefix   = "rail_sathi_complain_images/"
	videoKeyPrefix   = "rail_sathi_complain_videos/"
	imageContentType = "image/jpeg"
	videoContentType = "video/mp4"
)

var ErrUnsupportedMediaType = errors.New("unsupported media type")

// MediaFile is one uploaded part as received from the client.
type MediaFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MediaOutcome records what happened to one file. Skipped files carry
// ErrUnsupportedMediaType.
type MediaOutcome struct {
	Filename  string
	MediaType string
	Key       string
	URL       string
	Media     *types.ComplaintMedia
	Skipped   bool
	Err       error
}

func (o MediaOutcome) OK() bool { return o.Err == nil && o.Media != nil }

type MediaConfig struct {
	JPEGQuality  int
	// MaxImageEdge caps the longest side of stored images in pixels.
	MaxImageEdge int
	VideoBitrate string
	VideoCodec   string
}

const defaultMaxImageEdge = 2048

// MediaProcessor normalizes, uploads and records a single file. Ingest never
// returns an error; failures stay in the outcome.
type MediaProcessor interface {
	Ingest(ctx context.Context, complainID int64, uploader string, file MediaFile) MediaOutcome
}

type mediaProcessor struct {
	log       *logger.Logger
	bucket    gcp.BucketService
	tools     localmedia.Tools
	mediaRepo repos.ComplaintMediaRepo
	cfg       MediaConfig
	now       func() time.Time
}

func NewMediaProcessor(
	log *logger.Logger,
	bucket gcp.BucketService,
	tools localmedia.Tools,
	mediaRepo repos.ComplaintMediaRepo,
	cfg MediaConfig,
) MediaProcessor {
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 75
	}
	if cfg.MaxImageEdge <= 0 {
		cfg.MaxImageEdge = defaultMaxImageEdge
	}
	if strings.TrimSpace(cfg.VideoBitrate) == "" {
		cfg.VideoBitrate = "5000k"
	}
	if strings.TrimSpace(cfg.VideoCodec) == "" {
		cfg.VideoCodec = "libx264"
	}
	return &mediaProcessor{
		log:       log.With("service", "MediaProcessor"),
		bucket:    bucket,
		tools:     tools,
		mediaRepo: mediaRepo,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (p *mediaProcessor) Ingest(ctx context.Context, complainID int64, uploader string, file MediaFile) (out MediaOutcome) {
	out = MediaOutcome{Filename: file.Filename}
	ctx, span := observability.Tracer().Start(ctx, "media.ingest")
	span.SetAttributes(
		attribute.Int64("complain_id", complainID),
		attribute.String("content_type", file.ContentType),
		attribute.Int("bytes", len(file.Data)),
	)
	defer func() {
		if out.Err != nil && !out.Skipped {
			span.RecordError(out.Err)
			span.SetStatus(codes.Error, out.Err.Error())
		}
		span.End()
	}()

	mediaType := ClassifyMedia(file.ContentType)
	if mediaType == "" {
		p.log.Warn("skipping unsupported media", "complain_id", complainID, "filename", file.Filename, "content_type", file.ContentType)
		out.Skipped = true
		out.Err = fmt.Errorf("%w: %q", ErrUnsupportedMediaType, file.ContentType)
		return out
	}
	out.MediaType = mediaType

	var err error
	switch mediaType {
	case types.MediaTypeImage:
		out.Key = imageKeyPrefix + MediaObjectName(complainID, p.now(), "jpg")
		err = p.uploadImage(ctx, out.Key, file.Data)
	case types.MediaTypeVideo:
		out.Key = videoKeyPrefix + MediaObjectName(complainID, p.now(), "mp4")
		err = p.uploadVideo(ctx, out.Key, file)
	}
	if err != nil {
		p.log.Error("media upload failed", "complain_id", complainID, "filename", file.Filename, "media_type", mediaType, "error", err)
		out.Err = err
		return out
	}
	out.URL = p.bucket.GetPublicURL(out.Key)

	row := &types.ComplaintMedia{
		ComplainID: complainID,
		MediaType:  mediaType,
		MediaURL:   out.URL,
		CreatedBy:  pointers.NonEmpty(uploader),
		UpdatedBy:  pointers.NonEmpty(uploader),
	}
	if err := p.mediaRepo.Create(dbctx.Context{Ctx: ctx}, row); err != nil {
		p.log.Error("media row insert failed", "complain_id", complainID, "key", out.Key, "error", err)
		if delErr := p.bucket.DeleteFile(dbctx.Context{Ctx: ctx}, out.Key); delErr != nil {
			p.log.Warn("failed to delete orphaned media object (ignored)", "key", out.Key, "error", delErr)
		}
		out.Err = fmt.Errorf("insert media row: %w", err)
		return out
	}
	out.Media = row
	p.log.Info("media attached", "complain_id", complainID, "media_id", row.ID, "media_type", mediaType)
	return out
}

func (p *mediaProcessor) uploadImage(ctx context.Context, key string, raw []byte) error {
	encoded, err := NormalizeImage(raw, p.cfg.JPEGQuality, p.cfg.MaxImageEdge)
	if err != nil {
		return err
	}
	if err := p.bucket.UploadFile(dbctx.Context{Ctx: ctx}, key, imageContentType, bytes.NewReader(encoded)); err != nil {
		return fmt.Errorf("upload image: %w", err)
	}
	return nil
}

func (p *mediaProcessor) uploadVideo(ctx context.Context, key string, file MediaFile) error {
	dir, cleanup, err := p.tools.ScratchDir(ctx, "complaint-video-*")
	if err != nil {
		return fmt.Errorf("scratch dir: %w", err)
	}
	defer cleanup()

	suffix := strings.ToLower(filepath.Ext(file.Filename))
	if suffix == "" {
		suffix = ".mp4"
	}
	inPath, err := p.tools.WriteTempFile(ctx, dir, file.Data, suffix)
	if err != nil {
		return fmt.Errorf("write temp video: %w", err)
	}
	outPath := filepath.Join(dir, "transcoded.mp4")
	if err := p.tools.TranscodeVideo(ctx, inPath, outPath, localmedia.TranscodeOptions{
		VideoBitrate: p.cfg.VideoBitrate,
		VideoCodec:   p.cfg.VideoCodec,
	}); err != nil {
		return fmt.Errorf("transcode video: %w", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		return fmt.Errorf("open transcoded video: %w", err)
	}
	defer f.Close()
	if err := p.bucket.UploadFile(dbctx.Context{Ctx: ctx}, key, videoContentType, f); err != nil {
		return fmt.Errorf("upload video: %w", err)
	}
	return nil
}

// ClassifyMedia maps a declared content type to a media type, or "" when the
// type is not accepted.
func ClassifyMedia(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "image/"):
		return types.MediaTypeImage
	case strings.HasPrefix(ct, "video/"):
		return types.MediaTypeVideo
	default:
		return ""
	}
}

// MediaObjectName builds rail_sathi_complain_<id>_<timestamp>_<suffix>.<ext>.
func MediaObjectName(complainID int64, at time.Time, ext string) string {
	stamp := sanitizeObjectToken(at.Format("2006-01-02_15:04:05.000000"))
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:5]
	return fmt.Sprintf("%s%d_%s_%s.%s", mediaFilePrefix, complainID, stamp, suffix, ext)
}

func sanitizeObjectToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '_' || r == '-' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeImage decodes raw, downscales it so neither side exceeds maxEdge,
// flattens any alpha onto white and re-encodes it as JPEG. maxEdge <= 0
// keeps the original size.
func NormalizeImage(raw []byte, quality, maxEdge int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), maxEdge)
	opaque := false
	if o, ok := img.(interface{ Opaque() bool }); ok {
		opaque = o.Opaque()
	}
	if !opaque || w != b.Dx() || h != b.Dy() {
		flat := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(flat, flat.Bounds(), image.White, image.Point{}, draw.Src)
		if w == b.Dx() && h == b.Dy() {
			draw.Draw(flat, flat.Bounds(), img, b.Min, draw.Over)
		} else {
			draw.CatmullRom.Scale(flat, flat.Bounds(), img, b, draw.Over, nil)
		}
		img = flat
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// fitWithin scales w x h down, keeping the aspect ratio, so the longest side
// is at most maxEdge.
func fitWithin(w, h, maxEdge int) (int, int) {
	if maxEdge <= 0 || (w <= maxEdge && h <= maxEdge) {
		return w, h
	}
	if w >= h {
		return maxEdge, max(1, h*maxEdge/w)
	}
	return max(1, w*maxEdge/h), maxEdge
}
