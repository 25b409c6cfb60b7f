package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rajcreationz/livesite/internal/application/state"
	"github.com/rajcreationz/livesite/internal/domain/entities/stream"
	"github.com/rajcreationz/livesite/internal/infrastructure/localcache"
	"github.com/rajcreationz/livesite/internal/infrastructure/messaging"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/metrics"
)

// MonitorConfig sets the watcher cadence.
type MonitorConfig struct {
	PollInterval  time.Duration
	CheckInterval time.Duration
	CheckTimeout  time.Duration
	ErrorLogSize  int
}

// StreamMonitor keeps the offline indicator consistent with the stage. It
// re-evaluates on every stage mutation and every poll tick, and probes the
// live embed source on the check interval.
type StreamMonitor struct {
	state     *state.AppState
	mirror    *localcache.Mirror
	publisher messaging.Publisher
	client    *http.Client
	config    MonitorConfig
	logger    *logging.ChanneledLogger
	now       func() time.Time
}

func NewStreamMonitor(appState *state.AppState, mirror *localcache.Mirror, publisher messaging.Publisher, config MonitorConfig, logger *logging.ChanneledLogger) *StreamMonitor {
	if config.PollInterval <= 0 {
		config.PollInterval = 500 * time.Millisecond
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = 30 * time.Second
	}
	if config.CheckTimeout <= 0 {
		config.CheckTimeout = 10 * time.Second
	}
	return &StreamMonitor{
		state:     appState,
		mirror:    mirror,
		publisher: publisher,
		client:    &http.Client{Timeout: config.CheckTimeout},
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// Start blocks until ctx is cancelled.
func (m *StreamMonitor) Start(ctx context.Context) {
	if logs, err := m.mirror.ErrorLogs(); err != nil {
		m.logger.Cache().Warn("Failed to restore stream error log", "error", err.Error())
	} else {
		m.state.RestoreErrorLog(logs)
	}

	poll := time.NewTicker(m.config.PollInterval)
	defer poll.Stop()
	check := time.NewTicker(m.config.CheckInterval)
	defer check.Stop()

	m.logger.Stream().Info("Stream monitor started",
		"pollInterval", m.config.PollInterval,
		"checkInterval", m.config.CheckInterval)
	m.evaluate(true)

	for {
		select {
		case <-ctx.Done():
			m.logger.Stream().Info("Stream monitor stopped")
			return
		case <-m.state.Mutated():
			m.evaluate(true)
		case <-poll.C:
			m.evaluate(false)
		case <-check.C:
			m.Check(ctx)
			m.evaluate(false)
		}
	}
}

// evaluate runs the indicator state machine and publishes on change, or
// always when force is set.
func (m *StreamMonitor) evaluate(force bool) {
	current, changed := m.state.Evaluate()
	if !changed && !force {
		return
	}
	if changed {
		metrics.SetIndicatorState(string(current), stateLabels())
		m.logger.Stream().Info("Live indicator changed", "state", current)
	}
	m.publish()
}

func (m *StreamMonitor) publish() {
	if m.publisher == nil {
		return
	}
	st := m.state.Status()
	m.publisher.Publish(messaging.StatusPayload{
		State:          string(st.State),
		IsLive:         st.IsLive,
		OfflineVisible: st.OfflineVisible,
		HasThumbnail:   st.HasThumbnail,
		HasLiveEmbed:   st.HasLiveEmbed,
		ErrorCount:     st.ErrorCount,
		UpdatedAt:      m.now().UTC(),
	})
}

// Check probes the live embed source once. Without a live embed there is
// nothing to probe.
func (m *StreamMonitor) Check(ctx context.Context) {
	src := m.state.LiveEmbedSource()
	if src == "" {
		return
	}

	err := m.probe(ctx, src)
	now := m.now().UTC()
	if err == nil {
		metrics.StreamChecksTotal.WithLabelValues("success").Inc()
		m.state.RecordCheck(true, "", now)
		metrics.StreamErrorCount.Set(0)
		return
	}

	metrics.StreamChecksTotal.WithLabelValues("failure").Inc()
	entry := m.state.RecordCheck(false, err.Error(), now)
	metrics.StreamErrorCount.Set(float64(entry.ErrorCount))
	m.logger.Stream().Warn("Stream check failed", "source", src, "errorCount", entry.ErrorCount, "error", err.Error())
	if err := m.mirror.AppendErrorLog(*entry, m.config.ErrorLogSize); err != nil {
		m.logger.Cache().Warn("Failed to persist stream error log", "error", err.Error())
	}
}

// probe issues HEAD, falling back to GET for servers that refuse HEAD.
func (m *StreamMonitor) probe(ctx context.Context, src string) error {
	status, err := m.request(ctx, http.MethodHead, src)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, err = m.request(ctx, http.MethodGet, src)
	}
	if err != nil {
		return err
	}
	if status >= 500 || status == http.StatusNotFound || status == http.StatusGone {
		return fmt.Errorf("stream source returned %d", status)
	}
	return nil
}

func (m *StreamMonitor) request(ctx context.Context, method, src string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, src, nil)
	if err != nil {
		return 0, fmt.Errorf("invalid stream source: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func stateLabels() []string {
	out := make([]string, len(stream.AllStates))
	for i, s := range stream.AllStates {
		out[i] = string(s)
	}
	return out
}
