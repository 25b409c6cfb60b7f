// Package logging provides structured logging channels for the live site
// server, with per-channel levels and a suppression filter for third-party noise.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Channel represents a logical logging channel for different system components
type Channel string

const (
	// System channels
	ChannelSystem   Channel = "system"   // General system operations
	ChannelStartup  Channel = "startup"  // Application startup and initialization
	ChannelShutdown Channel = "shutdown" // Application shutdown and cleanup

	// Business logic channels
	ChannelAuth     Channel = "auth"     // Admin gate
	ChannelSettings Channel = "settings" // Settings resolution
	ChannelStream   Channel = "stream"   // Live stream monitoring and embeds
	ChannelSchedule Channel = "schedule" // Schedule events, reminders, calendar export
	ChannelMedia    Channel = "media"    // Photos, videos, thumbnails
	ChannelAdmin    Channel = "admin"    // Admin write path

	// Infrastructure channels
	ChannelDatabase  Channel = "database"   // Remote store queries
	ChannelStorage   Channel = "storage"    // Object storage
	ChannelCache     Channel = "cache"      // Local cache
	ChannelSSE       Channel = "sse"        // Live status push and log streaming
	ChannelSlowQuery Channel = "slow-query" // Slow database queries

	// Client-reported console output
	ChannelClient Channel = "client"

	ChannelDebug Channel = "debug"
)

var allChannels = []Channel{
	ChannelSystem, ChannelStartup, ChannelShutdown,
	ChannelAuth, ChannelSettings, ChannelStream, ChannelSchedule, ChannelMedia, ChannelAdmin,
	ChannelDatabase, ChannelStorage, ChannelCache, ChannelSSE, ChannelSlowQuery,
	ChannelClient, ChannelDebug,
}

// channelLog is one channel's logger and its adjustable threshold.
type channelLog struct {
	logger *slog.Logger
	level  *slog.LevelVar
}

// ChanneledLogger routes records to one slog.Logger per Channel. Levels are
// held in LevelVars so they change without rebuilding handlers.
type ChanneledLogger struct {
	channels map[Channel]channelLog
	filter   *SuppressFilter
	files    []*os.File
}

// LoggerConfig contains configuration options for the channeled logger
type LoggerConfig struct {
	OutputToFile    bool   `json:"outputToFile"`
	OutputToConsole bool   `json:"outputToConsole"`
	OutputToSSE     bool   `json:"outputToSSE"`
	LogDirectory    string `json:"logDirectory"`

	JSONFormat    bool `json:"jsonFormat"`
	IncludeSource bool `json:"includeSource"`

	DefaultLevel  slog.Level             `json:"defaultLevel"`
	ChannelLevels map[Channel]slog.Level `json:"channelLevels"`

	// SuppressPatterns drop records whose message or string attributes
	// contain any pattern (case-insensitive).
	SuppressPatterns []string `json:"suppressPatterns"`

	// Output replaces stdout when set. Used by tests.
	Output io.Writer `json:"-"`
}

// DefaultLoggerConfig logs JSON at info to stdout and the admin stream.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		OutputToConsole: true,
		OutputToSSE:     true,
		LogDirectory:    "logs",
		JSONFormat:      true,
		DefaultLevel:    slog.LevelInfo,
	}
}

// NewChanneledLogger opens any log files and builds every channel.
func NewChanneledLogger(config *LoggerConfig) (*ChanneledLogger, error) {
	if config == nil {
		config = DefaultLoggerConfig()
	}
	cl := &ChanneledLogger{
		channels: make(map[Channel]channelLog, len(allChannels)),
		filter:   NewSuppressFilter(config.SuppressPatterns),
	}

	shared := sharedOutputs(config)
	if config.OutputToFile {
		if err := os.MkdirAll(config.LogDirectory, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	for _, ch := range allChannels {
		outputs := shared
		if config.OutputToFile {
			f, err := cl.openChannelFile(config.LogDirectory, ch)
			if err != nil {
				_ = cl.closeFiles()
				return nil, err
			}
			outputs = append(append([]io.Writer(nil), shared...), f)
		}

		lv := new(slog.LevelVar)
		lv.Set(config.DefaultLevel)
		if l, ok := config.ChannelLevels[ch]; ok {
			lv.Set(l)
		}
		opts := &slog.HandlerOptions{Level: lv, AddSource: config.IncludeSource}

		var h slog.Handler
		if config.JSONFormat {
			h = slog.NewJSONHandler(combine(outputs), opts)
		} else {
			h = slog.NewTextHandler(combine(outputs), opts)
		}
		cl.channels[ch] = channelLog{
			logger: slog.New(cl.filter.Wrap(h)).With(slog.String("channel", string(ch))),
			level:  lv,
		}
	}
	return cl, nil
}

// sharedOutputs are the writers every channel uses. The admin stream
// parses JSON, so it is only attached in JSON mode.
func sharedOutputs(config *LoggerConfig) []io.Writer {
	var out []io.Writer
	if config.OutputToConsole {
		if config.Output != nil {
			out = append(out, config.Output)
		} else {
			out = append(out, os.Stdout)
		}
	}
	if config.OutputToSSE && config.JSONFormat {
		out = append(out, NewSSEWriter())
	}
	return out
}

func (cl *ChanneledLogger) openChannelFile(dir string, ch Channel) (*os.File, error) {
	path := filepath.Join(dir, string(ch)+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	cl.files = append(cl.files, f)
	return f, nil
}

func combine(ws []io.Writer) io.Writer {
	switch len(ws) {
	case 0:
		return io.Discard
	case 1:
		return ws[0]
	}
	return io.MultiWriter(ws...)
}

// NewDiscardLogger returns a logger that writes nowhere. Used by tests.
func NewDiscardLogger() *ChanneledLogger {
	cfg := DefaultLoggerConfig()
	cfg.OutputToSSE = false
	cfg.Output = io.Discard
	l, _ := NewChanneledLogger(cfg)
	return l
}

func (cl *ChanneledLogger) System() *slog.Logger    { return cl.GetChannel(ChannelSystem) }
func (cl *ChanneledLogger) Startup() *slog.Logger   { return cl.GetChannel(ChannelStartup) }
func (cl *ChanneledLogger) Shutdown() *slog.Logger  { return cl.GetChannel(ChannelShutdown) }
func (cl *ChanneledLogger) Auth() *slog.Logger      { return cl.GetChannel(ChannelAuth) }
func (cl *ChanneledLogger) Settings() *slog.Logger  { return cl.GetChannel(ChannelSettings) }
func (cl *ChanneledLogger) Stream() *slog.Logger    { return cl.GetChannel(ChannelStream) }
func (cl *ChanneledLogger) Schedule() *slog.Logger  { return cl.GetChannel(ChannelSchedule) }
func (cl *ChanneledLogger) Media() *slog.Logger     { return cl.GetChannel(ChannelMedia) }
func (cl *ChanneledLogger) Admin() *slog.Logger     { return cl.GetChannel(ChannelAdmin) }
func (cl *ChanneledLogger) Database() *slog.Logger  { return cl.GetChannel(ChannelDatabase) }
func (cl *ChanneledLogger) Storage() *slog.Logger   { return cl.GetChannel(ChannelStorage) }
func (cl *ChanneledLogger) Cache() *slog.Logger     { return cl.GetChannel(ChannelCache) }
func (cl *ChanneledLogger) SSE() *slog.Logger       { return cl.GetChannel(ChannelSSE) }
func (cl *ChanneledLogger) SlowQuery() *slog.Logger { return cl.GetChannel(ChannelSlowQuery) }
func (cl *ChanneledLogger) Client() *slog.Logger    { return cl.GetChannel(ChannelClient) }
func (cl *ChanneledLogger) Debug() *slog.Logger     { return cl.GetChannel(ChannelDebug) }

// GetChannel falls back to the system channel for unknown names.
func (cl *ChanneledLogger) GetChannel(channel Channel) *slog.Logger {
	if c, ok := cl.channels[channel]; ok {
		return c.logger
	}
	return cl.channels[ChannelSystem].logger
}

type ctxKey string

// RequestIDKey carries the per-request id set by the request middleware.
const RequestIDKey ctxKey = "requestId"

// WithContext returns a logger carrying the request id from ctx, if any
func (cl *ChanneledLogger) WithContext(channel Channel, ctx context.Context) *slog.Logger {
	logger := cl.GetChannel(channel)
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		logger = logger.With(slog.String("requestId", requestID))
	}
	return logger
}

// LogSlowQuery records a query, whitespace-collapsed and capped, on the slow-query channel.
func (cl *ChanneledLogger) LogSlowQuery(query string, duration time.Duration) {
	q := strings.Join(strings.Fields(query), " ")
	if len(q) > 500 {
		q = q[:500] + "..."
	}
	cl.SlowQuery().Warn("Slow query detected", slog.String("query", q), slog.Duration("duration", duration))
}

// LogAuthOperation records an admin gate attempt by client key.
func (cl *ChanneledLogger) LogAuthOperation(operation, clientIP string, success bool) {
	level, msg := slog.LevelInfo, "Admin gate check passed"
	if !success {
		level, msg = slog.LevelWarn, "Admin gate check failed"
	}
	cl.Auth().Log(context.Background(), level, msg,
		slog.String("operation", operation),
		slog.String("client", clientIP),
		slog.Bool("success", success),
	)
}

// Filter exposes the suppression filter for runtime updates.
func (cl *ChanneledLogger) Filter() *SuppressFilter {
	return cl.filter
}

// Close closes any open log files.
func (cl *ChanneledLogger) Close() error {
	cl.System().Info("Channeled logger shutting down")
	return cl.closeFiles()
}

func (cl *ChanneledLogger) closeFiles() error {
	var errs []error
	for _, f := range cl.files {
		errs = append(errs, f.Close())
	}
	cl.files = nil
	return errors.Join(errs...)
}

// SetChannelLevel changes a channel's threshold in place.
func (cl *ChanneledLogger) SetChannelLevel(channel Channel, level slog.Level) error {
	c, ok := cl.channels[channel]
	if !ok {
		return fmt.Errorf("channel %s does not exist", channel)
	}
	c.level.Set(level)
	cl.System().Info("Channel log level updated",
		slog.String("channel", string(channel)),
		slog.String("level", level.String()),
	)
	return nil
}

// GetChannelLevels reports the current threshold of every channel.
func (cl *ChanneledLogger) GetChannelLevels() map[string]string {
	levels := make(map[string]string, len(cl.channels))
	for ch, c := range cl.channels {
		levels[string(ch)] = c.level.Level().String()
	}
	return levels
}
