package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/rajcreationz/livesite/internal/application/services"
	"github.com/rajcreationz/livesite/internal/application/state"
	"github.com/rajcreationz/livesite/internal/infrastructure/messaging"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
)

// StreamHandlers serves the resolved settings and the live status.
type StreamHandlers struct {
	resolver *services.SettingsResolver
	state    *state.AppState
	hub      *messaging.StatusHub
	upgrader websocket.Upgrader
	logger   *logging.ChanneledLogger
}

// NewStreamHandlers creates stream handlers with injected dependencies.
// allowOrigin decides websocket origins; nil accepts same-host requests only.
func NewStreamHandlers(resolver *services.SettingsResolver, appState *state.AppState, hub *messaging.StatusHub, allowOrigin func(r *http.Request) bool, logger *logging.ChanneledLogger) *StreamHandlers {
	return &StreamHandlers{
		resolver: resolver,
		state:    appState,
		hub:      hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     allowOrigin,
		},
		logger: logger,
	}
}

// GetSettings handles GET /api/v1/settings. It reports what the stage is
// currently showing plus where each field came from.
func (h *StreamHandlers) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.state.Settings())
}

// PostRefresh handles POST /api/v1/admin/settings/refresh and re-runs the
// resolution immediately.
func (h *StreamHandlers) PostRefresh(c *gin.Context) {
	settings, err := h.resolver.ResolveAndApply(c.Request.Context())
	if err != nil {
		respondError(c, h.logger.Settings(), "refresh_settings", err)
		return
	}
	respondOK(c, settings)
}

// GetStatus handles GET /api/v1/stream/status.
func (h *StreamHandlers) GetStatus(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, h.state.Status())
}

// GetErrors handles GET /api/v1/admin/stream/errors.
func (h *StreamHandlers) GetErrors(c *gin.Context) {
	logs := h.state.ErrorLog()
	respondOK(c, gin.H{"count": len(logs), "errors": logs})
}

// GetStatusSocket handles GET /api/v1/stream/ws. The hub sends the last
// known snapshot on connect and every change after that.
func (h *StreamHandlers) GetStatusSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Stream().Warn("Websocket upgrade failed", "error", err.Error(), "client", c.ClientIP())
		return
	}
	client := messaging.NewStatusClient(conn)
	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump(h.hub)
}
