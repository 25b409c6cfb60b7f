package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/metrics"
)

// maxClientMessage caps forwarded browser messages.
const maxClientMessage = 2000

// LogHandlers streams server logs to the admin and accepts browser reports.
type LogHandlers struct {
	logger      *logging.ChanneledLogger
	broadcaster *logging.LogBroadcaster
}

// NewLogHandlers creates log handlers with injected dependencies.
func NewLogHandlers(logger *logging.ChanneledLogger, broadcaster *logging.LogBroadcaster) *LogHandlers {
	return &LogHandlers{logger: logger, broadcaster: broadcaster}
}

// ClientLogRequest is a console message or page error from a browser.
type ClientLogRequest struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Source  string `json:"source,omitempty"`
}

// SetLevelRequest changes one channel's minimum level.
type SetLevelRequest struct {
	Channel string `json:"channel"`
	Level   string `json:"level"`
}

func parseLevel(v string) slog.Level {
	switch strings.ToUpper(v) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// StreamLogs handles the SSE connection for live log streaming at
// GET /api/v1/admin/logs/stream.
func (h *LogHandlers) StreamLogs(c *gin.Context) {
	if h.broadcaster == nil {
		c.JSON(http.StatusServiceUnavailable, APIResponse{Success: false, Error: "Log streaming not available"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	filters := logging.AppliedFilters{
		Channel:   logging.Channel(c.DefaultQuery("channel", "all")),
		Level:     parseLevel(c.DefaultQuery("level", "INFO")),
		RequestID: c.Query("requestId"),
	}

	client := h.broadcaster.NewClient(filters)
	h.broadcaster.RegisterClient(client)
	defer h.broadcaster.UnregisterClient(client)

	fmt.Fprintf(c.Writer, ": connection established\n\n")
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case message, ok := <-client.Channel:
			if !ok {
				return false
			}
			fmt.Fprintf(w, "data: %s\n\n", message)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// GetLogLevels handles GET /api/v1/admin/logs/levels.
func (h *LogHandlers) GetLogLevels(c *gin.Context) {
	respondOK(c, gin.H{
		"levels":           h.logger.GetChannelLevels(),
		"suppressPatterns": h.logger.Filter().Patterns(),
		"suppressed":       h.logger.Filter().Dropped(),
		"streamOverflow":   h.overflow(),
	})
}

func (h *LogHandlers) overflow() uint64 {
	if h.broadcaster == nil {
		return 0
	}
	return h.broadcaster.Overflow()
}

// SetLogLevel handles POST /api/v1/admin/logs/levels.
func (h *LogHandlers) SetLogLevel(c *gin.Context) {
	var req SetLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Channel == "" {
		badRequest(c, "Channel and level are required")
		return
	}
	if err := h.logger.SetChannelLevel(logging.Channel(req.Channel), parseLevel(req.Level)); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.logger.Admin().Info("Log level changed", "channel", req.Channel, "level", req.Level)
	respondOK(c, h.logger.GetChannelLevels())
}

// PostClientLog handles POST /api/v1/client-logs. Messages pass through the
// suppression filter, so third-party player chatter never reaches the logs.
func (h *LogHandlers) PostClientLog(c *gin.Context) {
	var req ClientLogRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.Status(http.StatusNoContent)
		return
	}
	if len(req.Message) > maxClientMessage {
		req.Message = req.Message[:maxClientMessage]
	}

	level := parseLevel(req.Level)
	metrics.ClientLogsTotal.WithLabelValues(strings.ToLower(level.String())).Inc()
	h.logger.Client().Log(c.Request.Context(), level, req.Message,
		"source", req.Source,
		"client", c.ClientIP(),
		"userAgent", c.Request.UserAgent(),
	)
	c.Status(http.StatusNoContent)
}
