package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	types "github.com/yashpatel08/railsathi/internal/domain"
	"github.com/yashpatel08/railsathi/internal/platform/dbctx"
	"github.com/yashpatel08/railsathi/internal/platform/localmedia"
	"github.com/yashpatel08/railsathi/internal/platform/mailer"
)

type uploadedObject struct {
	contentType string
	data        []byte
}

type fakeBucket struct {
	mu        sync.Mutex
	objects   map[string]uploadedObject
	deleted   []string
	uploadErr error
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string]uploadedObject{}}
}

func (b *fakeBucket) UploadFile(dbc dbctx.Context, key, contentType string, file io.Reader) error {
	if b.uploadErr != nil {
		return b.uploadErr
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = uploadedObject{contentType: contentType, data: data}
	return nil
}

func (b *fakeBucket) DeleteFile(dbc dbctx.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

func (b *fakeBucket) GetPublicURL(key string) string {
	return "https://storage.googleapis.com/test-bucket/" + key
}

func (b *fakeBucket) Close() error { return nil }

func (b *fakeBucket) keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.objects))
	for k := range b.objects {
		out = append(out, k)
	}
	return out
}

// fakeTools creates real scratch dirs and "transcodes" by copying.
type fakeTools struct {
	root         string
	transcodeErr error

	mu       sync.Mutex
	dirs     []string
	cleanups int
}

func newFakeTools(t *testing.T) *fakeTools {
	return &fakeTools{root: t.TempDir()}
}

func (f *fakeTools) AssertReady(ctx context.Context) error { return nil }

func (f *fakeTools) TranscodeVideo(ctx context.Context, in, out string, opts localmedia.TranscodeOptions) error {
	if f.transcodeErr != nil {
		return f.transcodeErr
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	return os.WriteFile(out, data, 0o600)
}

func (f *fakeTools) ScratchDir(ctx context.Context, pattern string) (string, func(), error) {
	dir, err := os.MkdirTemp(f.root, pattern)
	if err != nil {
		return "", nil, err
	}
	f.mu.Lock()
	f.dirs = append(f.dirs, dir)
	f.mu.Unlock()
	return dir, func() {
		_ = os.RemoveAll(dir)
		f.mu.Lock()
		f.cleanups++
		f.mu.Unlock()
	}, nil
}

func (f *fakeTools) WriteTempFile(ctx context.Context, dir string, data []byte, suffix string) (string, error) {
	p := filepath.Join(dir, "input"+suffix)
	return p, os.WriteFile(p, data, 0o600)
}

type sentMail struct {
	to      string
	subject string
	text    string
}

type fakeMailer struct {
	mu     sync.Mutex
	sent   []sentMail
	failTo map[string]bool
}

func (m *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	to := strings.Join(msg.To, ",")
	if m.failTo[to] {
		return errors.New("smtp 550 mailbox unavailable")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: msg.Subject, text: msg.Text})
	return nil
}

func (m *fakeMailer) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, s := range m.sent {
		out = append(out, s.to)
	}
	return out
}

type fakeQueue struct {
	mu    sync.Mutex
	snaps []ComplaintSnapshot
	err   error
}

// Enqueue records the snapshot even when it reports err.
func (q *fakeQueue) Enqueue(ctx context.Context, snap ComplaintSnapshot) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.snaps = append(q.snaps, snap)
	return q.err
}

func (q *fakeQueue) Close(ctx context.Context) error { return nil }

type failingMediaRepo struct{}

func (failingMediaRepo) Create(dbc dbctx.Context, row *types.ComplaintMedia) error {
	return errors.New("insert failed")
}
func (failingMediaRepo) ListByComplaintIDs(dbc dbctx.Context, ids []int64) ([]*types.ComplaintMedia, error) {
	return nil, nil
}
func (failingMediaRepo) DeleteByIDs(dbc dbctx.Context, complainID int64, ids []int64) (int64, error) {
	return 0, nil
}

func pngBytes(t *testing.T, transparent bool) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	c := color.NRGBA{R: 200, G: 10, B: 10, A: 255}
	if transparent {
		c = color.NRGBA{}
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}
