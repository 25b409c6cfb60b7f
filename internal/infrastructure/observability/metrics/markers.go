package metrics

import "time"

// Marker times a single operation.
type Marker struct {
	Operation string
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string
	Completed bool
}

// StartOperation begins timing operation. Call Complete when it returns.
func StartOperation(operation string) *Marker {
	return &Marker{Operation: operation, StartTime: time.Now(), Success: true}
}

// SetError marks the operation as failed.
func (m *Marker) SetError(err error) {
	if err != nil {
		m.Error = err.Error()
		m.Success = false
	}
}

// Complete records the duration once; repeated calls are ignored.
func (m *Marker) Complete() {
	if m.Completed {
		return
	}
	m.Duration = time.Since(m.StartTime)
	m.Completed = true

	result := "success"
	if !m.Success {
		result = "error"
	}
	OperationDuration.WithLabelValues(m.Operation, result).Observe(m.Duration.Seconds())
}
