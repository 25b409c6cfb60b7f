package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rajcreationz/livesite/internal/application/services"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
	"github.com/rajcreationz/livesite/internal/presentation/http/middleware"
)

// AdminHandlers contains the admin gate and live stream write handlers.
type AdminHandlers struct {
	service      *services.AdminService
	logger       *logging.ChanneledLogger
	loginDelay   time.Duration
	maxUpload    int64
	secureCookie bool
}

// AdminHandlerConfig tunes the login form and upload limits.
type AdminHandlerConfig struct {
	LoginDelay   time.Duration
	MaxUpload    int64
	SecureCookie bool
}

// NewAdminHandlers creates admin handlers with injected dependencies.
func NewAdminHandlers(service *services.AdminService, config AdminHandlerConfig, logger *logging.ChanneledLogger) *AdminHandlers {
	return &AdminHandlers{
		service:      service,
		logger:       logger,
		loginDelay:   config.LoginDelay,
		maxUpload:    config.MaxUpload,
		secureCookie: config.SecureCookie,
	}
}

// LoginRequest is the admin login form.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// EmbedRequest carries embed markup for the live or recorded region.
type EmbedRequest struct {
	EmbedCode string `json:"embedCode"`
}

// PostLogin handles POST /api/v1/admin/login.
func (h *AdminHandlers) PostLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Please enter a username and password")
		return
	}

	// The form shows its spinner for a moment even on a fast failure.
	if h.loginDelay > 0 {
		select {
		case <-time.After(h.loginDelay):
		case <-c.Request.Context().Done():
			return
		}
	}

	result, err := h.service.Login(clientKey(c), req.Username, req.Password)
	if err != nil {
		respondError(c, h.logger.Auth(), "login", err)
		return
	}

	maxAge := int(h.service.SessionDuration().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AdminCookieName, result.Token, maxAge, "/", "", h.secureCookie, true)
	respondOK(c, gin.H{
		"authenticated": true,
		"expiresAt":     result.Session.ExpiresAt.UnixMilli(),
	})
}

// PostLogout handles POST /api/v1/admin/logout.
func (h *AdminHandlers) PostLogout(c *gin.Context) {
	h.service.Logout()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AdminCookieName, "", -1, "/", "", h.secureCookie, true)
	respondOK(c, gin.H{"authenticated": false})
}

// GetSession handles GET /api/v1/admin/session.
func (h *AdminHandlers) GetSession(c *gin.Context) {
	session := h.service.Check(middleware.AdminToken(c))
	resp := gin.H{"authenticated": session.Authenticated}
	if session.Authenticated {
		resp["expiresAt"] = session.ExpiresAt.UnixMilli()
	}
	c.JSON(http.StatusOK, resp)
}

// PutThumbnail handles PUT /api/v1/admin/thumbnail with either a multipart
// file or a JSON data URL.
func (h *AdminHandlers) PutThumbnail(c *gin.Context) {
	upload, _, err := readUpload(c, h.maxUpload)
	if err != nil {
		respondError(c, h.logger.Admin(), "save_thumbnail", err)
		return
	}
	thumb, err := h.service.SaveThumbnail(c.Request.Context(), upload)
	if err != nil {
		respondError(c, h.logger.Admin(), "save_thumbnail", err)
		return
	}
	respondOK(c, thumb)
}

// DeleteThumbnail handles DELETE /api/v1/admin/thumbnail.
func (h *AdminHandlers) DeleteThumbnail(c *gin.Context) {
	if err := h.service.ClearThumbnail(c.Request.Context()); err != nil {
		respondError(c, h.logger.Admin(), "clear_thumbnail", err)
		return
	}
	respondOK(c, nil)
}

// PutLiveEmbed handles PUT /api/v1/admin/embed/live.
func (h *AdminHandlers) PutLiveEmbed(c *gin.Context) {
	var req EmbedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Embed code is required")
		return
	}
	if err := h.service.SaveLiveEmbed(c.Request.Context(), req.EmbedCode); err != nil {
		respondError(c, h.logger.Admin(), "save_live_embed", err)
		return
	}
	respondOK(c, nil)
}

// DeleteLiveEmbed handles DELETE /api/v1/admin/embed/live.
func (h *AdminHandlers) DeleteLiveEmbed(c *gin.Context) {
	if err := h.service.DeleteLiveEmbed(c.Request.Context()); err != nil {
		respondError(c, h.logger.Admin(), "delete_live_embed", err)
		return
	}
	respondOK(c, nil)
}

// PutRecordedEmbed handles PUT /api/v1/admin/embed/recorded.
func (h *AdminHandlers) PutRecordedEmbed(c *gin.Context) {
	var req EmbedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Embed code is required")
		return
	}
	if err := h.service.SaveRecordedEmbed(c.Request.Context(), req.EmbedCode); err != nil {
		respondError(c, h.logger.Admin(), "save_recorded_embed", err)
		return
	}
	respondOK(c, nil)
}

// DeleteRecordedEmbed handles DELETE /api/v1/admin/embed/recorded.
func (h *AdminHandlers) DeleteRecordedEmbed(c *gin.Context) {
	if err := h.service.DeleteRecordedEmbed(c.Request.Context()); err != nil {
		respondError(c, h.logger.Admin(), "delete_recorded_embed", err)
		return
	}
	respondOK(c, nil)
}
