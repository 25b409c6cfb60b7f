package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rajcreationz/livesite/internal/domain/entities/media"
	"github.com/rajcreationz/livesite/internal/domain/entities/schedule"
	schema "github.com/rajcreationz/livesite/internal/infrastructure/database"
	"github.com/rajcreationz/livesite/internal/infrastructure/localcache"
	"github.com/rajcreationz/livesite/internal/infrastructure/messaging"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
	"github.com/rajcreationz/livesite/internal/infrastructure/persistence/database"
	"github.com/rajcreationz/livesite/internal/infrastructure/persistence/remote"
	"github.com/rajcreationz/livesite/internal/infrastructure/storage"
)

var errRemoteDown = errors.New("connection refused")

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) Get(key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = append([]byte(nil), value...)
	return nil
}

func (c *mapCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

type fakeThumbnails struct {
	mu    sync.Mutex
	rows  map[string]media.Thumbnail
	err   error
	calls int
}

func newFakeThumbnails() *fakeThumbnails {
	return &fakeThumbnails{rows: map[string]media.Thumbnail{}}
}

func (f *fakeThumbnails) FindByType(_ context.Context, t string) (*media.Thumbnail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	row, ok := f.rows[t]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (f *fakeThumbnails) Upsert(_ context.Context, thumb *media.Thumbnail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.rows[thumb.Type] = *thumb
	return nil
}

func (f *fakeThumbnails) DeleteByType(_ context.Context, t string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	delete(f.rows, t)
	return nil
}

type fakeSettings struct {
	mu    sync.Mutex
	rows  map[string]string
	err   error
	calls int
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{rows: map[string]string{}}
}

func (f *fakeSettings) Get(_ context.Context, key string) (*string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.rows[key]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (f *fakeSettings) Set(_ context.Context, key, value, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.rows[key] = value
	return nil
}

func (f *fakeSettings) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	delete(f.rows, key)
	return nil
}

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func newFakeBucket() *fakeBucket { return &fakeBucket{objects: map[string][]byte{}} }

func (b *fakeBucket) Upload(_ context.Context, path string, data []byte, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return "", b.err
	}
	b.objects[path] = data
	return b.PublicURL(path), nil
}

func (b *fakeBucket) Remove(_ context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, path)
	return nil
}

func (b *fakeBucket) PublicURL(path string) string {
	return "https://cdn.example/images/" + path
}

func (b *fakeBucket) has(path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[path]
	return ok
}

func newTestUploader(bucket *fakeBucket) *storage.Uploader {
	return storage.NewUploader(bucket, storage.UploaderConfig{
		BucketName:  "images",
		MaxBytes:    1 << 20,
		MaxAttempts: 1,
		RetryDelay:  time.Millisecond,
	}, logging.NewDiscardLogger())
}

type fakePublisher struct {
	mu       sync.Mutex
	payloads []messaging.StatusPayload
}

func (p *fakePublisher) Publish(payload messaging.StatusPayload) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
}

func (p *fakePublisher) last() (messaging.StatusPayload, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.payloads) == 0 {
		return messaging.StatusPayload{}, false
	}
	return p.payloads[len(p.payloads)-1], true
}

type sentReminder struct {
	to       string
	event    schedule.Event
	ics      []byte
	eventURL string
}

type fakeMailer struct {
	sent []sentReminder
	err  error
}

func (m *fakeMailer) SendEventReminder(to string, ev schedule.Event, ics []byte, eventURL string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentReminder{to: to, event: ev, ics: ics, eventURL: eventURL})
	return nil
}

func newTestStore(t *testing.T) *remote.Store {
	t.Helper()
	db, err := database.NewConnection("sqlite3", filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, schema.NewTableCreator().CreateSchema(db.DB))
	return remote.NewStore(db.DB, logging.NewDiscardLogger())
}

func newTestMirror() (*localcache.Mirror, *mapCache) {
	c := newMapCache()
	return localcache.NewMirror(c), c
}
