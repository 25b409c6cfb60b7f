// Package state owns the mutable presentation state of the live site: the
// stage, the indicator state machine and the stream error log.
package state

import (
	"sync"
	"time"

	"github.com/rajcreationz/livesite/internal/domain/entities/stream"
	"github.com/rajcreationz/livesite/internal/presentation/stage"
)

// Status is a read-only snapshot for the status API and websocket.
type Status struct {
	State          stream.IndicatorState `json:"state"`
	IsLive         bool                  `json:"isLive"`
	OfflineVisible bool                  `json:"offlineVisible"`
	HasThumbnail   bool                  `json:"hasThumbnail"`
	HasLiveEmbed   bool                  `json:"hasLiveEmbed"`
	ErrorCount     int                   `json:"errorCount"`
	LastCheck      time.Time             `json:"lastCheck"`
}

// AppState serializes every stage mutation and signals each one on the
// channel returned by Mutated.
type AppState struct {
	mu         sync.RWMutex
	stage      *stage.Stage
	settings   stream.Settings
	indicator  stream.IndicatorState
	errorCount int
	reachable  bool
	lastCheck  time.Time
	errorLog   []stream.ErrorLogEntry
	threshold  int
	logLimit   int
	mutated    chan struct{}
}

func New(threshold, logLimit int) *AppState {
	return &AppState{
		stage:     stage.New(),
		indicator: stream.StateUnknown,
		threshold: threshold,
		logLimit:  logLimit,
		mutated:   make(chan struct{}, 1),
	}
}

// Mutated delivers a coalesced signal after stage mutations.
func (a *AppState) Mutated() <-chan struct{} {
	return a.mutated
}

func (a *AppState) signal() {
	select {
	case a.mutated <- struct{}{}:
	default:
	}
}

// ApplySettings applies one resolution result: live embed first so the
// thumbnail lands on top. Absent fields leave the stage untouched.
func (a *AppState) ApplySettings(s stream.Settings) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	defer a.signal()

	a.settings = s
	if s.HasLiveEmbed() {
		if err := a.stage.ApplyLiveEmbed(*s.LiveEmbedCode); err != nil {
			return err
		}
	}
	if s.HasRecordedEmbed() {
		if err := a.stage.ApplyRecordedEmbed(*s.RecordedEmbedCode); err != nil {
			return err
		}
	}
	if s.HasThumbnail() {
		if err := a.stage.ApplyThumbnail(*s.ThumbnailRef); err != nil {
			return err
		}
	}
	return nil
}

// PaintOptimistic hides the offline indicator when a cached thumbnail exists,
// before remote resolution finishes.
func (a *AppState) PaintOptimistic(cached stream.Settings) {
	if !cached.HasThumbnail() {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stage.SetOfflineVisible(false)
	a.signal()
}

// SetLiveEmbed applies code, or removes the live embed when code is nil.
func (a *AppState) SetLiveEmbed(code *string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	defer a.signal()

	a.settings.LiveEmbedCode = code
	if code == nil {
		a.stage.ClearLiveEmbed()
		return nil
	}
	return a.stage.ApplyLiveEmbed(*code)
}

// SetRecordedEmbed applies code, or removes the recorded embed when nil.
func (a *AppState) SetRecordedEmbed(code *string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	defer a.signal()

	a.settings.RecordedEmbedCode = code
	if code == nil {
		a.stage.ClearRecordedEmbed()
		return nil
	}
	return a.stage.ApplyRecordedEmbed(*code)
}

// SetThumbnail mounts ref, or unmounts the thumbnail when ref is nil.
func (a *AppState) SetThumbnail(ref *string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	defer a.signal()

	a.settings.ThumbnailRef = ref
	if ref == nil {
		a.stage.RemoveThumbnail()
		return nil
	}
	return a.stage.ApplyThumbnail(*ref)
}

// RecordCheck stores a reachability result. Failures increment the error
// count and return the log entry that was appended.
func (a *AppState) RecordCheck(reachable bool, message string, now time.Time) *stream.ErrorLogEntry {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.lastCheck = now
	a.reachable = reachable
	if reachable {
		a.errorCount = 0
		return nil
	}
	a.errorCount++
	entry := stream.ErrorLogEntry{
		Type:       "Stream Check Failed",
		Message:    message,
		Timestamp:  now,
		ErrorCount: a.errorCount,
	}
	a.errorLog = stream.AppendErrorLog(a.errorLog, entry, a.logLimit)
	return &entry
}

// RestoreErrorLog seeds the error log from persisted entries.
func (a *AppState) RestoreErrorLog(logs []stream.ErrorLogEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errorLog = nil
	for _, l := range logs {
		a.errorLog = stream.AppendErrorLog(a.errorLog, l, a.logLimit)
	}
}

// Evaluate runs the indicator state machine against the current stage and
// forces the offline indicator to match. It reports whether the state changed.
func (a *AppState) Evaluate() (stream.IndicatorState, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	obs := stream.Observation{
		ThumbnailMounted: a.stage.HasThumbnail(),
		Reachable:        a.reachable,
		ErrorCount:       a.errorCount,
		EmbedMissing:     !a.stage.HasLiveEmbed(),
	}
	next := stream.Next(a.indicator, obs, a.threshold)

	mutated := false
	if want := next.OfflineVisible(); a.stage.OfflineVisible() != want {
		a.stage.SetOfflineVisible(want)
		mutated = true
	}
	if next != stream.StateUnknown && a.indicator == stream.StateUnknown {
		a.stage.SetLoadingVisible(false)
		mutated = true
	}

	changed := next != a.indicator
	a.indicator = next
	if mutated {
		a.signal()
	}
	return next, changed
}

// Render serializes the stage.
func (a *AppState) Render() (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stage.Render()
}

func (a *AppState) Settings() stream.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

func (a *AppState) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Status{
		State:          a.indicator,
		IsLive:         a.indicator.IsLive(),
		OfflineVisible: a.stage.OfflineVisible(),
		HasThumbnail:   a.stage.HasThumbnail(),
		HasLiveEmbed:   a.stage.HasLiveEmbed(),
		ErrorCount:     a.errorCount,
		LastCheck:      a.lastCheck,
	}
}

// ErrorLog returns a copy of the rolling error log, oldest first.
func (a *AppState) ErrorLog() []stream.ErrorLogEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]stream.ErrorLogEntry(nil), a.errorLog...)
}

// LiveEmbedSource is the first iframe src of the mounted live embed.
func (a *AppState) LiveEmbedSource() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stage.LiveEmbedSource()
}
