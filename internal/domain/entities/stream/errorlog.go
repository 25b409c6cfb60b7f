package stream

import "time"

// ErrorLogEntry is one failed stream reachability check.
type ErrorLogEntry struct {
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	ErrorCount int       `json:"errorCount"`
}

// AppendErrorLog appends entry and keeps at most limit newest entries.
func AppendErrorLog(logs []ErrorLogEntry, entry ErrorLogEntry, limit int) []ErrorLogEntry {
	logs = append(logs, entry)
	if limit > 0 && len(logs) > limit {
		logs = append([]ErrorLogEntry(nil), logs[len(logs)-limit:]...)
	}
	return logs
}
