package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLogger(t *testing.T, patterns ...string) (*ChanneledLogger, *syncBuffer) {
	t.Helper()
	out := &syncBuffer{}
	cfg := DefaultLoggerConfig()
	cfg.OutputToSSE = false
	cfg.Output = out
	cfg.SuppressPatterns = patterns
	l, err := NewChanneledLogger(cfg)
	require.NoError(t, err)
	return l, out
}

func TestChannelAttributeIsAttached(t *testing.T) {
	l, out := newTestLogger(t)
	l.Stream().Info("stream checked", "reachable", true)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out.String())), &rec))
	assert.Equal(t, "stream", rec["channel"])
	assert.Equal(t, "stream checked", rec["msg"])
}

func TestSuppressFilter_DropsMatchingMessagesAndAttrs(t *testing.T) {
	l, out := newTestLogger(t, "tcplayer", "qcloud.com")

	l.Client().Warn("TCPlayer failed to load")
	l.Client().Warn("network error", "url", "https://datacenter.live.qcloud.com/x")
	l.Client().Warn("real problem")

	assert.NotContains(t, out.String(), "TCPlayer")
	assert.NotContains(t, out.String(), "qcloud")
	assert.Contains(t, out.String(), "real problem")
	assert.Equal(t, uint64(2), l.Filter().Dropped())
}

func TestSuppressFilter_RuntimeUpdate(t *testing.T) {
	l, out := newTestLogger(t)
	l.Client().Info("mozPressure is deprecated")
	assert.Contains(t, out.String(), "mozPressure")

	l.Filter().SetPatterns([]string{" mozpressure ", ""})
	assert.Equal(t, []string{"mozpressure"}, l.Filter().Patterns())
	l.Client().Info("mozPressure again")
	assert.NotContains(t, out.String(), "again")
}

func TestSetChannelLevel(t *testing.T) {
	l, out := newTestLogger(t)
	l.Database().Debug("hidden")
	require.NoError(t, l.SetChannelLevel(ChannelDatabase, slog.LevelDebug))
	l.Database().Debug("visible")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "visible")
	assert.Equal(t, "DEBUG", l.GetChannelLevels()["database"])
	assert.Error(t, l.SetChannelLevel("nope", slog.LevelInfo))
}

func TestBroadcaster_FiltersByChannelAndLevel(t *testing.T) {
	b := NewLogBroadcaster()
	go b.Run()
	defer b.Shutdown()

	client := b.NewClient(AppliedFilters{Channel: ChannelAuth, Level: slog.LevelWarn})
	b.RegisterClient(client)

	b.SubmitLog(LogEntry{Channel: "stream", Level: "ERROR", Message: "other channel"})
	b.SubmitLog(LogEntry{Channel: "auth", Level: "INFO", Message: "too quiet"})
	b.SubmitLog(LogEntry{Channel: "auth", Level: "WARN", Message: "login failed"})

	select {
	case msg := <-client.Channel:
		var entry LogEntry
		require.NoError(t, json.Unmarshal(msg, &entry))
		assert.Equal(t, "login failed", entry.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("no log delivered")
	}

	select {
	case msg := <-client.Channel:
		t.Fatalf("unexpected extra message %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcaster_ReplaysBacklogToNewViewer(t *testing.T) {
	b := NewLogBroadcaster()
	go b.Run()
	defer b.Shutdown()

	first := b.NewClient(AppliedFilters{Channel: "all"})
	b.RegisterClient(first)
	b.SubmitLog(LogEntry{Channel: "stream", Level: "INFO", Message: "early", RequestID: "r1"})
	b.SubmitLog(LogEntry{Channel: "stream", Level: "INFO", Message: "other", RequestID: "r2"})
	for i := 0; i < 2; i++ {
		select {
		case <-first.Channel:
		case <-time.After(2 * time.Second):
			t.Fatal("entries not distributed")
		}
	}

	late := b.NewClient(AppliedFilters{Channel: "all", RequestID: "r1"})
	b.RegisterClient(late)

	select {
	case msg := <-late.Channel:
		var entry LogEntry
		require.NoError(t, json.Unmarshal(msg, &entry))
		assert.Equal(t, "early", entry.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("backlog not replayed")
	}
	select {
	case msg := <-late.Channel:
		t.Fatalf("request filter let through %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcaster_ShutdownClosesViewers(t *testing.T) {
	b := NewLogBroadcaster()
	go b.Run()

	client := b.NewClient(AppliedFilters{})
	b.RegisterClient(client)
	b.Shutdown()

	select {
	case _, ok := <-client.Channel:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}
}

func TestFileOutput_OneFilePerChannel(t *testing.T) {
	dir := t.TempDir()
	l, err := NewChanneledLogger(&LoggerConfig{OutputToFile: true, LogDirectory: dir, JSONFormat: true, DefaultLevel: slog.LevelInfo})
	require.NoError(t, err)

	l.Schedule().Info("reminder sent")
	require.NoError(t, l.SetChannelLevel(ChannelSchedule, slog.LevelError))
	l.Schedule().Info("after raise")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(dir, "schedule.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "reminder sent")
	assert.NotContains(t, string(data), "after raise")
}
