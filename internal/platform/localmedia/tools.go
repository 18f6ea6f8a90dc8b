package localmedia

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/yashpatel08/railsathi/internal/platform/ctxutil"
	"github.com/yashpatel08/railsathi/internal/platform/logger"
)

// Tools is the glue around the ffmpeg binary and the scratch directory used
// while transcoding uploads.
//
// REQUIRED BINARIES at runtime:
// - ffmpeg for video transcoding
type Tools interface {
	AssertReady(ctx context.Context) error

	// TranscodeVideo re-encodes inputPath into an MP4 at outPath.
	TranscodeVideo(ctx context.Context, inputPath string, outPath string, opts TranscodeOptions) error

	// ScratchDir creates a private directory under the work root. The
	// returned cleanup removes the directory and everything written into it.
	ScratchDir(ctx context.Context, pattern string) (string, func(), error)
	WriteTempFile(ctx context.Context, dir string, data []byte, suffix string) (string, error)
}

type Config struct {
	FFmpegPath string
	WorkRoot   string
	Timeout    time.Duration
}

type TranscodeOptions struct {
	VideoBitrate string // e.g. "5000k"
	VideoCodec   string // e.g. "libx264"
}

type tools struct {
	log *logger.Logger

	ffmpegPath     string
	workRoot       string
	defaultTimeout time.Duration
}

func New(log *logger.Logger, cfg Config) Tools {
	t := &tools{
		log:            log.With("service", "MediaTools"),
		ffmpegPath:     strings.TrimSpace(cfg.FFmpegPath),
		workRoot:       strings.TrimSpace(cfg.WorkRoot),
		defaultTimeout: cfg.Timeout,
	}
	if t.ffmpegPath == "" {
		t.ffmpegPath = "ffmpeg"
	}
	if t.workRoot == "" {
		t.workRoot = filepath.Join(os.TempDir(), "rail_sathi_temp")
	}
	if t.defaultTimeout <= 0 {
		t.defaultTimeout = 10 * time.Minute
	}
	return t
}

func (m *tools) AssertReady(ctx context.Context) error {
	if _, err := exec.LookPath(m.ffmpegPath); err != nil {
		return fmt.Errorf("missing required binary %q in PATH: %w", m.ffmpegPath, err)
	}
	if err := os.MkdirAll(m.workRoot, 0o755); err != nil {
		return fmt.Errorf("create workRoot: %w", err)
	}
	return nil
}

func (m *tools) ScratchDir(ctx context.Context, pattern string) (string, func(), error) {
	if err := os.MkdirAll(m.workRoot, 0o755); err != nil {
		return "", func() {}, fmt.Errorf("mkdir workRoot: %w", err)
	}
	dir, err := os.MkdirTemp(m.workRoot, pattern)
	if err != nil {
		return "", func() {}, fmt.Errorf("create scratch dir: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			m.log.Warn("scratch cleanup failed", "dir", dir, "error", err)
		}
	}
	return dir, cleanup, nil
}

func (m *tools) WriteTempFile(ctx context.Context, dir string, data []byte, suffix string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir required")
	}
	if suffix != "" && !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	f, err := os.CreateTemp(dir, "input-*"+suffix)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), nil
}

func (m *tools) TranscodeVideo(ctx context.Context, inputPath string, outPath string, opts TranscodeOptions) error {
	ctx = ctxutil.Default(ctx)
	if inputPath == "" {
		return fmt.Errorf("inputPath required")
	}
	if outPath == "" {
		return fmt.Errorf("outPath required")
	}
	bitrate := strings.TrimSpace(opts.VideoBitrate)
	if bitrate == "" {
		bitrate = "5000k"
	}
	codec := strings.TrimSpace(opts.VideoCodec)
	if codec == "" {
		codec = "libx264"
	}

	ctx, cancel := context.WithTimeout(ctx, m.defaultTimeout)
	defer cancel()

	args := []string{
		"-y",
		"-i", inputPath,
		"-c:v", codec,
		"-b:v", bitrate,
		"-c:a", "aac",
		"-movflags", "+faststart",
		"-f", "mp4",
		outPath,
	}
	start := time.Now()
	cmd := exec.CommandContext(ctx, m.ffmpegPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg transcode failed: %w; out=%s", err, truncate(string(out), 2000))
	}
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("transcode output missing at %s", outPath)
	}
	m.log.Debug("video transcoded", "bitrate", bitrate, "codec", codec, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
