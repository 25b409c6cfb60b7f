// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"net/http"
	"net/url"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rajcreationz/livesite/internal/application/container"
	"github.com/rajcreationz/livesite/internal/presentation/http/handlers"
	"github.com/rajcreationz/livesite/internal/presentation/http/middleware"
	"github.com/rajcreationz/livesite/internal/presentation/templates"
	"github.com/rajcreationz/livesite/pkg/config"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.CORSMiddleware(config.AllowedOrigins))
	r.MaxMultipartMemory = config.MaxUploadBytes

	r.GET("/static/site.css", func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=3600")
		c.Data(http.StatusOK, "text/css; charset=utf-8", []byte(templates.Stylesheet))
	})
	if container.MediaRoot != "" {
		r.Static("/media", container.MediaRoot)
	}
	if config.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// Initialize handlers
	pageHandlers := handlers.NewPageHandlers(
		container.State,
		container.Site,
		container.MediaService,
		container.ScheduleService,
		container.AdminService,
		container.Logger,
	)
	streamHandlers := handlers.NewStreamHandlers(
		container.SettingsResolver,
		container.State,
		container.StatusHub,
		originChecker(config.AllowedOrigins),
		container.Logger,
	)
	adminHandlers := handlers.NewAdminHandlers(container.AdminService, handlers.AdminHandlerConfig{
		LoginDelay:   config.AdminLoginDelay,
		MaxUpload:    config.MaxUploadBytes,
		SecureCookie: isHTTPS(config.SiteURL),
	}, container.Logger)
	scheduleHandlers := handlers.NewScheduleHandlers(container.ScheduleService, config.SiteURL, container.Logger)
	mediaHandlers := handlers.NewMediaHandlers(container.MediaService, config.MaxUploadBytes, container.Logger)
	aaiHandlers := handlers.NewAAIHandlers(container.AssistService, func() bool {
		return container.Site.Get().Features.EnableAssist
	}, 0, container.Logger)
	logHandlers := handlers.NewLogHandlers(container.Logger, container.LogBroadcaster)

	// Pages
	r.GET("/", pageHandlers.GetHome)
	r.GET("/videos", pageHandlers.GetVideos)
	r.GET("/photos", pageHandlers.GetPhotos)
	r.GET("/schedule", pageHandlers.GetSchedule)
	r.GET("/schedule/:id/ics", scheduleHandlers.GetICS)
	r.GET("/admin/login", pageHandlers.GetLogin)

	api := r.Group("/api/v1")
	{
		api.GET("/settings", streamHandlers.GetSettings)
		api.GET("/stream/status", streamHandlers.GetStatus)
		api.GET("/stream/ws", streamHandlers.GetStatusSocket)

		api.GET("/schedule", scheduleHandlers.GetSchedule)
		api.GET("/schedule/month", scheduleHandlers.GetMonth)
		api.POST("/schedule/:id/reminder", scheduleHandlers.PostReminder)

		api.GET("/photos", mediaHandlers.GetPhotos)
		api.GET("/videos", mediaHandlers.GetVideos)
		api.GET("/events", mediaHandlers.GetEvents)

		api.POST("/client-logs", logHandlers.PostClientLog)

		// Admin gate
		api.POST("/admin/login", adminHandlers.PostLogin)
		api.POST("/admin/logout", adminHandlers.PostLogout)
		api.GET("/admin/session", adminHandlers.GetSession)

		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware(container.AdminService))
		{
			admin.PUT("/thumbnail", adminHandlers.PutThumbnail)
			admin.DELETE("/thumbnail", adminHandlers.DeleteThumbnail)
			admin.PUT("/embed/live", adminHandlers.PutLiveEmbed)
			admin.DELETE("/embed/live", adminHandlers.DeleteLiveEmbed)
			admin.PUT("/embed/recorded", adminHandlers.PutRecordedEmbed)
			admin.DELETE("/embed/recorded", adminHandlers.DeleteRecordedEmbed)
			admin.POST("/settings/refresh", streamHandlers.PostRefresh)

			admin.POST("/schedule", scheduleHandlers.SaveEvent)
			admin.PUT("/schedule", scheduleHandlers.SaveEvent)
			admin.PUT("/schedule/:id", scheduleHandlers.SaveEvent)
			admin.DELETE("/schedule/:id", scheduleHandlers.DeleteEvent)

			admin.POST("/photos", mediaHandlers.PostPhoto)
			admin.DELETE("/photos/:id", mediaHandlers.DeletePhoto)
			admin.PUT("/videos", mediaHandlers.PutVideo)
			admin.DELETE("/videos/:id", mediaHandlers.DeleteVideo)
			admin.PUT("/events", mediaHandlers.PutEvent)
			admin.DELETE("/events/:id", mediaHandlers.DeleteEvent)

			admin.POST("/assist/describe", aaiHandlers.PostDescribe)

			admin.GET("/stream/errors", streamHandlers.GetErrors)
			admin.GET("/logs/stream", logHandlers.StreamLogs)
			admin.GET("/logs/levels", logHandlers.GetLogLevels)
			admin.POST("/logs/levels", logHandlers.SetLogLevel)
		}
	}

	return r
}

// originChecker accepts same-host websocket upgrades and any allowed origin.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if slices.Contains(allowed, origin) {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

func isHTTPS(siteURL string) bool {
	u, err := url.Parse(siteURL)
	return err == nil && u.Scheme == "https"
}
