package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajcreationz/livesite/internal/application/services"
	"github.com/rajcreationz/livesite/internal/domain/entities/media"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
)

// MediaHandlers serves the photo gallery, recorded videos and event cards.
type MediaHandlers struct {
	service   *services.MediaService
	maxUpload int64
	logger    *logging.ChanneledLogger
}

// NewMediaHandlers creates media handlers with injected dependencies.
func NewMediaHandlers(service *services.MediaService, maxUpload int64, logger *logging.ChanneledLogger) *MediaHandlers {
	return &MediaHandlers{service: service, maxUpload: maxUpload, logger: logger}
}

// GetPhotos handles GET /api/v1/photos.
func (h *MediaHandlers) GetPhotos(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"photos": h.service.ListPhotos(c.Request.Context())})
}

// PostPhoto handles POST /api/v1/admin/photos.
func (h *MediaHandlers) PostPhoto(c *gin.Context) {
	upload, description, err := readUpload(c, h.maxUpload)
	if err != nil {
		respondError(c, h.logger.Media(), "save_photo", err)
		return
	}
	photo, err := h.service.SavePhoto(c.Request.Context(), upload, description)
	if err != nil {
		respondError(c, h.logger.Media(), "save_photo", err)
		return
	}
	respondOK(c, photo)
}

// DeletePhoto handles DELETE /api/v1/admin/photos/:id.
func (h *MediaHandlers) DeletePhoto(c *gin.Context) {
	if err := h.service.DeletePhoto(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger.Media(), "delete_photo", err)
		return
	}
	respondOK(c, nil)
}

// GetVideos handles GET /api/v1/videos.
func (h *MediaHandlers) GetVideos(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"videos": h.service.ListVideos(c.Request.Context())})
}

// PutVideo handles PUT /api/v1/admin/videos. A data URL thumbnail is moved
// to storage; if that fails the video is kept with a warning.
func (h *MediaHandlers) PutVideo(c *gin.Context) {
	var v media.Video
	if err := c.ShouldBindJSON(&v); err != nil {
		badRequest(c, "Invalid video data")
		return
	}
	warning, err := h.service.SaveVideo(c.Request.Context(), &v)
	if err != nil {
		respondError(c, h.logger.Media(), "save_video", err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: v, Warning: warning})
}

// DeleteVideo handles DELETE /api/v1/admin/videos/:id.
func (h *MediaHandlers) DeleteVideo(c *gin.Context) {
	if err := h.service.DeleteVideo(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger.Media(), "delete_video", err)
		return
	}
	respondOK(c, nil)
}

// GetEvents handles GET /api/v1/events.
func (h *MediaHandlers) GetEvents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"events": h.service.ListEvents(c.Request.Context())})
}

// PutEvent handles PUT /api/v1/admin/events.
func (h *MediaHandlers) PutEvent(c *gin.Context) {
	var e media.Event
	if err := c.ShouldBindJSON(&e); err != nil {
		badRequest(c, "Invalid event data")
		return
	}
	warning, err := h.service.SaveEvent(c.Request.Context(), &e)
	if err != nil {
		respondError(c, h.logger.Media(), "save_event_card", err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: e, Warning: warning})
}

// DeleteEvent handles DELETE /api/v1/admin/events/:id.
func (h *MediaHandlers) DeleteEvent(c *gin.Context) {
	if err := h.service.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger.Media(), "delete_event_card", err)
		return
	}
	respondOK(c, nil)
}
