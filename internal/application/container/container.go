// Package container provides dependency injection for all singleton services
package container

import (
	"fmt"

	"github.com/rajcreationz/livesite/internal/application/services"
	"github.com/rajcreationz/livesite/internal/application/state"
	"github.com/rajcreationz/livesite/internal/domain/repositories"
	"github.com/rajcreationz/livesite/internal/infrastructure/assist"
	"github.com/rajcreationz/livesite/internal/infrastructure/calendar"
	"github.com/rajcreationz/livesite/internal/infrastructure/email"
	"github.com/rajcreationz/livesite/internal/infrastructure/localcache"
	"github.com/rajcreationz/livesite/internal/infrastructure/messaging"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
	"github.com/rajcreationz/livesite/internal/infrastructure/persistence/database"
	"github.com/rajcreationz/livesite/internal/infrastructure/persistence/remote"
	"github.com/rajcreationz/livesite/internal/infrastructure/storage"
	"github.com/rajcreationz/livesite/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application services
	SettingsResolver *services.SettingsResolver
	AdminService     *services.AdminService
	ScheduleService  *services.ScheduleService
	MediaService     *services.MediaService
	AssistService    *services.AssistService
	StreamMonitor    *services.StreamMonitor

	// Shared state
	State *state.AppState
	Site  *config.SiteHolder

	// Infrastructure
	Logger         *logging.ChanneledLogger
	LogBroadcaster *logging.LogBroadcaster
	StatusHub      *messaging.StatusHub
	DB             *database.DB
	Store          *remote.Store
	Cache          *localcache.Cache
	Mirror         *localcache.Mirror
	Bucket         repositories.Bucket
	Uploader       *storage.Uploader
	MediaRoot      string
}

// Dependencies are the resources opened during startup.
type Dependencies struct {
	Logger *logging.ChanneledLogger
	DB     *database.DB
	Cache  *localcache.Cache
	Site   *config.SiteHolder
}

// NewContainer creates and wires all singleton services
func NewContainer(deps Dependencies) (*Container, error) {
	logger := deps.Logger
	store := remote.NewStore(deps.DB.DB, logger)
	mirror := localcache.NewMirror(deps.Cache)
	appState := state.New(config.StreamErrorThreshold, config.StreamErrorLogSize)
	hub := messaging.NewStatusHub(logger, config.StreamCheckInterval)

	bucket, mediaRoot, err := newBucket()
	if err != nil {
		return nil, err
	}
	uploader := storage.NewUploader(bucket, storage.UploaderConfig{
		BucketName:  config.StorageBucket,
		MaxBytes:    config.MaxUploadBytes,
		MaxAttempts: config.UploadMaxAttempts,
		RetryDelay:  config.UploadRetryDelay,
		Variants:    mediaRoot != "",
	}, logger)

	var mailer email.Service
	if config.ResendAPIKey != "" {
		mailer, err = email.NewService(config.ResendAPIKey, config.ReminderFrom, deps.Site.Get().Site.Title)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Startup().Info("RESEND_API_KEY not set, schedule reminders disabled")
	}

	var drafter assist.Drafter
	if client := assist.NewLemurClient(config.AAIAPIKey); client != nil {
		drafter = client
	} else {
		logger.Startup().Info("AAI_API_KEY not set, description drafting disabled")
	}

	c := &Container{
		State:          appState,
		Site:           deps.Site,
		Logger:         logger,
		LogBroadcaster: logging.GetBroadcaster(),
		StatusHub:      hub,
		DB:             deps.DB,
		Store:          store,
		Cache:          deps.Cache,
		Mirror:         mirror,
		Bucket:         bucket,
		Uploader:       uploader,
		MediaRoot:      mediaRoot,
	}

	c.SettingsResolver = services.NewSettingsResolver(store.Thumbnails, store.Settings, mirror, appState, logger, config.RemoteTimeout)
	c.AdminService = services.NewAdminService(services.AdminConfig{
		Username:           config.AdminUsername,
		Password:           config.AdminPassword,
		JWTSecret:          config.JWTSecret,
		LoginRatePerMinute: config.LoginRatePerMinute,
		MaxEmbedBytes:      config.MaxEmbedBytes,
		RemoteTimeout:      config.RemoteTimeout,
	}, store.Thumbnails, store.Settings, uploader, mirror, appState, logger)
	c.ScheduleService = services.NewScheduleService(store.Schedule, calendar.NewExporter(config.CalendarDomain), mailer, logger, config.RemoteTimeout)
	c.MediaService = services.NewMediaService(store.Photos, store.Videos, store.Events, uploader, logger, config.RemoteTimeout)
	c.AssistService = services.NewAssistService(drafter, store.AITokens, config.AAIDailyTokens, logger)
	c.StreamMonitor = services.NewStreamMonitor(appState, mirror, hub, services.MonitorConfig{
		PollInterval:  config.StreamPollInterval,
		CheckInterval: config.StreamCheckInterval,
		ErrorLogSize:  config.StreamErrorLogSize,
	}, logger)

	return c, nil
}

// newBucket selects object storage. The local bucket also returns its root
// so the router can serve it.
func newBucket() (repositories.Bucket, string, error) {
	switch config.StorageBackend {
	case "supabase":
		key := config.SupabaseServiceKey
		if key == "" {
			key = config.SupabaseAnonKey
		}
		if config.SupabaseURL == "" || key == "" {
			return nil, "", fmt.Errorf("supabase storage requires SUPABASE_URL and SUPABASE_SERVICE_KEY or SUPABASE_ANON_KEY")
		}
		return storage.NewSupabaseBucket(config.SupabaseURL, key, config.StorageBucket), "", nil
	case "local", "":
		b, err := storage.NewLocalBucket(config.MediaDir, config.MediaBaseURL)
		if err != nil {
			return nil, "", err
		}
		return b, b.Root(), nil
	default:
		return nil, "", fmt.Errorf("unsupported storage backend %q", config.StorageBackend)
	}
}
