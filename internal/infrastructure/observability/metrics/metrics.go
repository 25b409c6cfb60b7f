// Package metrics exposes Prometheus collectors for the live site.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "livesite"

var (
	// SettingsSourceTotal counts which source supplied each resolved field.
	SettingsSourceTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settings_source_total",
		Help:      "Resolved settings fields by field and source (remote, cache, legacy, none)",
	}, []string{"field", "source"})

	// SettingsResolutionsTotal counts resolution passes by outcome.
	SettingsResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settings_resolutions_total",
		Help:      "Settings resolution passes",
	}, []string{"result"})

	// RemoteErrorsTotal counts failed remote store calls.
	RemoteErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_errors_total",
		Help:      "Remote store call failures by operation",
	}, []string{"operation"})

	// IndicatorState is 1 for the current live indicator state and 0 otherwise.
	IndicatorState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_indicator_state",
		Help:      "Current live indicator state (1 = active)",
	}, []string{"state"})

	// StreamErrorCount mirrors the monitor's consecutive reachability failures.
	StreamErrorCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_error_count",
		Help:      "Consecutive failed stream reachability checks",
	})

	// StreamChecksTotal counts reachability checks by result.
	StreamChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stream_checks_total",
		Help:      "Stream reachability checks",
	}, []string{"result"})

	// UploadAttemptsTotal counts object storage upload attempts.
	UploadAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_attempts_total",
		Help:      "Object storage upload attempts by folder and result",
	}, []string{"folder", "result"})

	// LoginAttemptsTotal counts admin logins by result (success, invalid, rate_limited).
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_login_attempts_total",
		Help:      "Admin login attempts",
	}, []string{"result"})

	// WebsocketClients is the number of connected status subscribers.
	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_ws_clients",
		Help:      "Connected live status websocket clients",
	})

	// CacheReadsTotal counts local cache mirror reads by key and result (hit, miss, error).
	CacheReadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "local_cache_reads_total",
		Help:      "Local cache mirror reads",
	}, []string{"key", "result"})

	// ClientLogsTotal counts browser reports received, before suppression.
	ClientLogsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "client_logs_total",
		Help:      "Browser console reports received by level",
	}, []string{"level"})

	// OperationDuration records timed operations started with StartOperation.
	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Duration of resolver, upload and admin operations",
		Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"operation", "result"})
)

// SetIndicatorState flips the state gauge so exactly one label is 1.
func SetIndicatorState(current string, all []string) {
	for _, s := range all {
		v := 0.0
		if s == current {
			v = 1
		}
		IndicatorState.WithLabelValues(s).Set(v)
	}
}

// RegisterSuppressedLogs exposes the log filter's drop counter.
func RegisterSuppressedLogs(dropped func() uint64) error {
	return prometheus.Register(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logs_suppressed_total",
		Help:      "Log records dropped by the suppression filter",
	}, func() float64 { return float64(dropped()) }))
}
