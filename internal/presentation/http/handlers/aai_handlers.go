package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rajcreationz/livesite/internal/application/services"
	"github.com/rajcreationz/livesite/internal/domain/errs"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
)

// AAIHandlers drafts listing copy through Assembly AI LeMUR.
type AAIHandlers struct {
	service *services.AssistService
	enabled func() bool
	timeout time.Duration
	logger  *logging.ChanneledLogger
}

// NewAAIHandlers creates AAI handlers with injected dependencies. enabled
// is read per request so the site file can switch drafting off live.
func NewAAIHandlers(service *services.AssistService, enabled func() bool, timeout time.Duration, logger *logging.ChanneledLogger) *AAIHandlers {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if enabled == nil {
		enabled = func() bool { return true }
	}
	return &AAIHandlers{service: service, enabled: enabled, timeout: timeout, logger: logger}
}

// DescribeRequest names the item to describe.
type DescribeRequest struct {
	Title string `json:"title"`
	Notes string `json:"notes,omitempty"`
}

// DescribeResponse is the drafted text.
type DescribeResponse struct {
	Description string `json:"description"`
	TokensUsed  int    `json:"tokensUsed"`
}

// PostDescribe handles POST /api/v1/admin/assist/describe.
func (h *AAIHandlers) PostDescribe(c *gin.Context) {
	if !h.enabled() {
		respondError(c, h.logger.Admin(), "draft_description", errs.ErrUnavailable)
		return
	}

	var req DescribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	result, err := h.service.DraftDescription(ctx, req.Title, req.Notes)
	if err != nil {
		respondError(c, h.logger.Admin(), "draft_description", err)
		return
	}

	h.logger.Admin().Debug("Description draft served", "duration", time.Since(start))
	respondOK(c, DescribeResponse{Description: result.Text, TokensUsed: result.TokensEstimated})
}
