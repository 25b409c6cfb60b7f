package handlers

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rajcreationz/livesite/internal/application/services"
	"github.com/rajcreationz/livesite/internal/application/state"
	"github.com/rajcreationz/livesite/internal/domain/entities/schedule"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
	"github.com/rajcreationz/livesite/internal/presentation/http/middleware"
	"github.com/rajcreationz/livesite/internal/presentation/templates"
	"github.com/rajcreationz/livesite/pkg/config"
)

// PageHandlers renders the public HTML pages.
type PageHandlers struct {
	state    *state.AppState
	site     *config.SiteHolder
	media    *services.MediaService
	schedule *services.ScheduleService
	sessions middleware.SessionChecker
	logger   *logging.ChanneledLogger
	now      func() time.Time
}

// NewPageHandlers creates page handlers with injected dependencies.
func NewPageHandlers(
	appState *state.AppState,
	site *config.SiteHolder,
	mediaService *services.MediaService,
	scheduleService *services.ScheduleService,
	sessions middleware.SessionChecker,
	logger *logging.ChanneledLogger,
) *PageHandlers {
	return &PageHandlers{
		state:    appState,
		site:     site,
		media:    mediaService,
		schedule: scheduleService,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

func (h *PageHandlers) base(c *gin.Context, active, title string) templates.PageData {
	return templates.PageData{
		Site:   h.site.Get(),
		Title:  title,
		Active: active,
		Admin:  middleware.IsAdmin(c, h.sessions),
		Status: h.state.Status(),
	}
}

func (h *PageHandlers) render(c *gin.Context, name string, data templates.PageData) {
	var buf bytes.Buffer
	if err := templates.Render(&buf, name, data); err != nil {
		h.logger.System().Error("Page render failed", "page", name, "error", err.Error())
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// GetHome handles GET /. The stage markup is the server's current state; a
// render failure leaves the region empty rather than failing the page.
func (h *PageHandlers) GetHome(c *gin.Context) {
	data := h.base(c, templates.PageHome, "")
	stage, err := h.state.Render()
	if err != nil {
		h.logger.Stream().Error("Stage render failed", "error", err.Error())
	}
	data.Stage = template.HTML(stage)
	data.Events = h.media.ListEvents(c.Request.Context())
	h.render(c, templates.PageHome, data)
}

// GetVideos handles GET /videos.
func (h *PageHandlers) GetVideos(c *gin.Context) {
	data := h.base(c, templates.PageVideos, "Videos")
	data.Videos = h.media.ListVideos(c.Request.Context())
	h.render(c, templates.PageVideos, data)
}

// GetPhotos handles GET /photos.
func (h *PageHandlers) GetPhotos(c *gin.Context) {
	data := h.base(c, templates.PagePhotos, "Photos")
	data.Photos = h.media.ListPhotos(c.Request.Context())
	h.render(c, templates.PagePhotos, data)
}

// GetSchedule handles GET /schedule?filter=&year=&month=.
func (h *PageHandlers) GetSchedule(c *gin.Context) {
	data := h.base(c, templates.PageSchedule, "Schedule")
	data.Filter = schedule.ParseDisplayFilter(c.Query("filter"))
	data.Schedule = h.schedule.List(c.Request.Context(), schedule.Filters{}, data.Filter)
	year, month := monthQuery(c, h.now())
	data.Month = h.schedule.Month(c.Request.Context(), year, month)
	h.render(c, templates.PageSchedule, data)
}

// GetLogin handles GET /admin/login and opens the overlay.
func (h *PageHandlers) GetLogin(c *gin.Context) {
	h.render(c, templates.PageLogin, h.base(c, templates.PageLogin, "Admin"))
}
