package logging

import (
	"encoding/json"
	"log/slog"
	"time"
)

// sseRecord is the subset of a slog JSON record the log viewer shows.
type sseRecord struct {
	Time      string `json:"time"`
	Level     string `json:"level"`
	Channel   string `json:"channel"`
	Msg       string `json:"msg"`
	RequestID string `json:"requestId"`
}

// SSEWriter receives JSON log lines and feeds them to a LogBroadcaster.
// It is installed as one of the logger's output writers.
type SSEWriter struct {
	broadcaster *LogBroadcaster
}

// NewSSEWriter writes to the process-wide broadcaster.
func NewSSEWriter() *SSEWriter {
	return &SSEWriter{broadcaster: GetBroadcaster()}
}

// Write never fails so that a bad record cannot break the other outputs.
func (w *SSEWriter) Write(p []byte) (int, error) {
	var rec sseRecord
	if err := json.Unmarshal(p, &rec); err != nil {
		w.broadcaster.SubmitLog(LogEntry{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Level:     slog.LevelWarn.String(),
			Channel:   string(ChannelSSE),
			Message:   "unparseable log record skipped",
		})
		return len(p), nil
	}
	w.broadcaster.SubmitLog(LogEntry{
		Timestamp: rec.Time,
		Level:     rec.Level,
		Channel:   rec.Channel,
		Message:   rec.Msg,
		RequestID: rec.RequestID,
	})
	return len(p), nil
}
