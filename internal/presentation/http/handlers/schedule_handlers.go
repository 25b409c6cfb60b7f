package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rajcreationz/livesite/internal/application/services"
	"github.com/rajcreationz/livesite/internal/domain/entities/schedule"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
)

// ScheduleHandlers serves the broadcast schedule.
type ScheduleHandlers struct {
	service *services.ScheduleService
	siteURL string
	logger  *logging.ChanneledLogger
}

// NewScheduleHandlers creates schedule handlers with injected dependencies.
func NewScheduleHandlers(service *services.ScheduleService, siteURL string, logger *logging.ChanneledLogger) *ScheduleHandlers {
	return &ScheduleHandlers{service: service, siteURL: strings.TrimRight(siteURL, "/"), logger: logger}
}

// ReminderRequest asks for an emailed reminder.
type ReminderRequest struct {
	Email string `json:"email" form:"email"`
}

// parseFilters reads ?status=&recurring=&category= into store filters.
func parseFilters(c *gin.Context) schedule.Filters {
	var f schedule.Filters
	if v := c.Query("status"); v != "" {
		st := schedule.Status(v)
		f.Status = &st
	}
	if v := c.Query("recurring"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.IsRecurring = &b
		}
	}
	if v := c.Query("category"); v != "" {
		f.Category = &v
	}
	return f
}

// GetSchedule handles GET /api/v1/schedule. Store failures degrade to an
// empty list.
func (h *ScheduleHandlers) GetSchedule(c *gin.Context) {
	display := schedule.ParseDisplayFilter(c.Query("filter"))
	events := h.service.List(c.Request.Context(), parseFilters(c), display)
	c.JSON(http.StatusOK, gin.H{"events": events, "filter": display})
}

// GetMonth handles GET /api/v1/schedule/month?year=&month=.
func (h *ScheduleHandlers) GetMonth(c *gin.Context) {
	year, month := monthQuery(c, time.Now())
	c.JSON(http.StatusOK, h.service.Month(c.Request.Context(), year, month))
}

// monthQuery falls back to now's month for missing or invalid values.
func monthQuery(c *gin.Context, now time.Time) (int, time.Month) {
	year, month := now.Year(), now.Month()
	if y, err := strconv.Atoi(c.Query("year")); err == nil && y > 1900 && y < 3000 {
		year = y
	}
	if m, err := strconv.Atoi(c.Query("month")); err == nil && m >= 1 && m <= 12 {
		month = time.Month(m)
	}
	return year, month
}

// GetICS handles GET /schedule/:id/ics and downloads the calendar file.
func (h *ScheduleHandlers) GetICS(c *gin.Context) {
	name, body, err := h.service.ExportICS(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger.Schedule(), "export_ics", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", body)
}

// PostReminder handles POST /api/v1/schedule/:id/reminder.
func (h *ScheduleHandlers) PostReminder(c *gin.Context) {
	var req ReminderRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Please enter your email address")
		return
	}
	eventURL := h.siteURL + "/schedule"
	if err := h.service.SetReminder(c.Request.Context(), c.Param("id"), req.Email, eventURL); err != nil {
		respondError(c, h.logger.Schedule(), "set_reminder", err)
		return
	}
	respondOK(c, gin.H{"message": "Reminder sent. Check your inbox for the calendar invite"})
}

// SaveEvent handles POST and PUT /api/v1/admin/schedule. An event with an
// existing ID is replaced; one without gets a new ID.
func (h *ScheduleHandlers) SaveEvent(c *gin.Context) {
	var ev schedule.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		badRequest(c, "Invalid event data")
		return
	}
	if id := c.Param("id"); id != "" {
		ev.ID = id
	}
	if err := h.service.Save(c.Request.Context(), &ev); err != nil {
		respondError(c, h.logger.Schedule(), "save_event", err)
		return
	}
	respondOK(c, ev)
}

// DeleteEvent handles DELETE /api/v1/admin/schedule/:id.
func (h *ScheduleHandlers) DeleteEvent(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger.Schedule(), "delete_event", err)
		return
	}
	respondOK(c, nil)
}
