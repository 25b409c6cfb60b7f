package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rajcreationz/livesite/internal/application/state"
	"github.com/rajcreationz/livesite/internal/domain/entities/stream"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
)

func TestMonitorCheck_OfflineAfterThreeFailures(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusServiceUnavailable)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	appState := state.New(3, 10)
	require.NoError(t, appState.SetLiveEmbed(stream.Str(`<iframe src="`+srv.URL+`/live"></iframe>`)))
	mirror, _ := newTestMirror()
	pub := &fakePublisher{}
	m := NewStreamMonitor(appState, mirror, pub, MonitorConfig{ErrorLogSize: 10}, logging.NewDiscardLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		m.Check(ctx)
		m.evaluate(false)
		assert.Equal(t, stream.StateLiveNoThumbnail, appState.Status().State)
	}
	m.Check(ctx)
	m.evaluate(false)
	assert.Equal(t, stream.StateOffline, appState.Status().State)
	assert.True(t, appState.Status().OfflineVisible)

	last, ok := pub.last()
	require.True(t, ok)
	assert.Equal(t, string(stream.StateOffline), last.State)
	assert.Equal(t, 3, last.ErrorCount)

	logs, err := mirror.ErrorLogs()
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "Stream Check Failed", logs[0].Type)
	assert.Contains(t, logs[0].Message, "503")

	status.Store(http.StatusOK)
	m.Check(ctx)
	m.evaluate(false)
	assert.Equal(t, stream.StateLiveNoThumbnail, appState.Status().State)
	assert.Equal(t, 0, appState.Status().ErrorCount)
}

func TestMonitorCheck_HeadNotAllowedFallsBackToGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	appState := state.New(3, 10)
	require.NoError(t, appState.SetLiveEmbed(stream.Str(`<iframe src="`+srv.URL+`"></iframe>`)))
	mirror, _ := newTestMirror()
	m := NewStreamMonitor(appState, mirror, nil, MonitorConfig{}, logging.NewDiscardLogger())

	m.Check(context.Background())
	assert.Equal(t, 0, appState.Status().ErrorCount)
}

func TestMonitorThumbnailKeepsOfflineHidden(t *testing.T) {
	defer goleak.VerifyNone(t)

	appState := state.New(3, 10)
	mirror, _ := newTestMirror()
	pub := &fakePublisher{}
	m := NewStreamMonitor(appState, mirror, pub, MonitorConfig{
		PollInterval:  5 * time.Millisecond,
		CheckInterval: time.Hour,
	}, logging.NewDiscardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return appState.Status().OfflineVisible }, time.Second, 5*time.Millisecond)

	require.NoError(t, appState.SetThumbnail(stream.Str("https://cdn.example/t.png")))
	require.Eventually(t, func() bool {
		last, ok := pub.last()
		return ok && last.State == string(stream.StateLiveWithThumbnail)
	}, time.Second, 5*time.Millisecond)

	// Several poll cycles later the thumbnail still holds the live state.
	time.Sleep(30 * time.Millisecond)
	st := appState.Status()
	assert.Equal(t, stream.StateLiveWithThumbnail, st.State)
	assert.False(t, st.OfflineVisible)

	cancel()
	<-done
}
