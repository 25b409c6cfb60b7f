// Package services provides application-level orchestration services
package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/rajcreationz/livesite/internal/application/state"
	"github.com/rajcreationz/livesite/internal/domain/entities/admin"
	"github.com/rajcreationz/livesite/internal/domain/entities/media"
	"github.com/rajcreationz/livesite/internal/domain/entities/stream"
	"github.com/rajcreationz/livesite/internal/domain/errs"
	"github.com/rajcreationz/livesite/internal/domain/repositories"
	"github.com/rajcreationz/livesite/internal/infrastructure/localcache"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/metrics"
	"github.com/rajcreationz/livesite/internal/infrastructure/security"
	"github.com/rajcreationz/livesite/internal/infrastructure/storage"
)

// ThumbnailFolder is the bucket folder for live thumbnails.
const ThumbnailFolder = "thumbnails"

// limiterIdle is how long a client's login limiter is kept unused. A limiter
// refills completely within a minute, so dropping it later loses nothing.
const limiterIdle = 5 * time.Minute

// AdminConfig holds the admin gate credentials and write limits.
type AdminConfig struct {
	Username           string
	Password           string
	JWTSecret          string
	LoginRatePerMinute int
	MaxEmbedBytes      int
	RemoteTimeout      time.Duration
}

// AdminService handles the admin gate and the live stream settings writes.
// Remote writes happen first; the stage and cache change only on success.
type AdminService struct {
	config     AdminConfig
	thumbnails repositories.ThumbnailRepository
	settings   repositories.SettingRepository
	uploader   *storage.Uploader
	mirror     *localcache.Mirror
	state      *state.AppState
	logger     *logging.ChanneledLogger
	now        func() time.Time

	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	lastSweep time.Time
}

type clientLimiter struct {
	*rate.Limiter
	seen time.Time
}

func NewAdminService(
	config AdminConfig,
	thumbnails repositories.ThumbnailRepository,
	settings repositories.SettingRepository,
	uploader *storage.Uploader,
	mirror *localcache.Mirror,
	appState *state.AppState,
	logger *logging.ChanneledLogger,
) *AdminService {
	if config.LoginRatePerMinute <= 0 {
		config.LoginRatePerMinute = 10
	}
	if config.RemoteTimeout <= 0 {
		config.RemoteTimeout = 8 * time.Second
	}
	return &AdminService{
		config:     config,
		thumbnails: thumbnails,
		settings:   settings,
		uploader:   uploader,
		mirror:     mirror,
		state:      appState,
		logger:     logger,
		now:        time.Now,
		limiters:   make(map[string]*clientLimiter),
	}
}

// LoginResult carries the signed session token for the cookie.
type LoginResult struct {
	Token   string        `json:"-"`
	Session admin.Session `json:"session"`
}

func (a *AdminService) limiter(clientKey string) *rate.Limiter {
	now := a.now()
	a.mu.Lock()
	defer a.mu.Unlock()

	if now.Sub(a.lastSweep) >= limiterIdle {
		for key, l := range a.limiters {
			if now.Sub(l.seen) >= limiterIdle {
				delete(a.limiters, key)
			}
		}
		a.lastSweep = now
	}

	l, ok := a.limiters[clientKey]
	if !ok {
		per := a.config.LoginRatePerMinute
		l = &clientLimiter{Limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(per)), per)}
		a.limiters[clientKey] = l
	}
	l.seen = now
	return l.Limiter
}

// Login checks the credentials and starts a session lasting the configured
// duration. A wrong username or password creates no session.
func (a *AdminService) Login(clientKey, username, password string) (*LoginResult, error) {
	if !a.limiter(clientKey).Allow() {
		metrics.LoginAttemptsTotal.WithLabelValues("rate_limited").Inc()
		a.logger.Auth().Warn("Login rate limit exceeded", "client", clientKey)
		return nil, errs.ErrRateLimited
	}

	if a.config.JWTSecret == "" {
		return nil, &errs.ConfigurationError{
			Problem: "Admin login is not configured",
			Hint:    "Set JWT_SECRET and ADMIN_PASSWORD",
		}
	}

	userOK := strings.TrimSpace(username) == a.config.Username
	passOK := security.CheckPassword(a.config.Password, password)
	if !userOK || !passOK {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		a.logger.LogAuthOperation("login", clientKey, false)
		return nil, errs.ErrInvalidCredentials
	}

	now := a.now()
	session := admin.NewSession(now, admin.SessionDuration)
	token, err := security.GenerateAdminToken(session, a.config.Username, a.config.JWTSecret, now)
	if err != nil {
		return nil, err
	}
	if err := a.mirror.SetAdminSession(session); err != nil {
		a.logger.Cache().Warn("Failed to persist admin session", "error", err.Error())
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	a.logger.LogAuthOperation("login", clientKey, true)
	return &LoginResult{Token: token, Session: session}, nil
}

// Logout ends the session.
func (a *AdminService) Logout() {
	if err := a.mirror.ClearAdminSession(); err != nil {
		a.logger.Cache().Warn("Failed to clear admin session", "error", err.Error())
	}
	a.logger.Auth().Info("Admin logged out")
}

// Check returns the session carried by token, or an unauthenticated session
// when the token is missing, invalid or expired.
func (a *AdminService) Check(token string) admin.Session {
	return security.SessionFromToken(token, a.config.JWTSecret, a.now())
}

// SessionDuration is the fixed lifetime of a new session.
func (a *AdminService) SessionDuration() time.Duration {
	return admin.SessionDuration
}

func (a *AdminService) remoteCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.config.RemoteTimeout)
}

// mirrorState writes the current stage settings through to the local cache.
func (a *AdminService) mirrorState() {
	if err := a.mirror.WriteSettings(a.state.Settings()); err != nil {
		a.logger.Cache().Warn("Failed to mirror settings", "error", err.Error())
	}
}

// SaveThumbnail uploads the image, records it as the live thumbnail and
// mounts it over the live region.
func (a *AdminService) SaveThumbnail(ctx context.Context, upload media.Upload) (*media.Thumbnail, error) {
	if err := a.uploader.Validate(upload); err != nil {
		return nil, err
	}

	upload.FileName = uniqueName("live", upload.FileName)

	result, err := a.uploader.Upload(ctx, upload, ThumbnailFolder)
	if err != nil {
		a.logger.Admin().Error("Thumbnail upload failed", "error", err.Error())
		return nil, err
	}

	thumb := &media.Thumbnail{
		Type:      media.ThumbnailTypeLive,
		FileName:  upload.FileName,
		ImageURL:  result.URL,
		UpdatedAt: a.now().UTC(),
	}
	rctx, cancel := a.remoteCtx(ctx)
	defer cancel()
	if err := a.thumbnails.Upsert(rctx, thumb); err != nil {
		a.logger.Admin().Error("Failed to save thumbnail record", "error", err.Error())
		return nil, err
	}

	if err := a.state.SetThumbnail(stream.Str(thumb.ImageURL)); err != nil {
		return nil, err
	}
	a.mirrorState()
	a.logger.Admin().Info("Live thumbnail saved", "url", thumb.ImageURL)
	return thumb, nil
}

// ClearThumbnail deletes the live thumbnail record and unmounts the overlay.
func (a *AdminService) ClearThumbnail(ctx context.Context) error {
	rctx, cancel := a.remoteCtx(ctx)
	defer cancel()
	if err := a.thumbnails.DeleteByType(rctx, media.ThumbnailTypeLive); err != nil {
		return err
	}
	if err := a.state.SetThumbnail(nil); err != nil {
		return err
	}
	a.mirrorState()
	a.logger.Admin().Info("Live thumbnail cleared")
	return nil
}

func (a *AdminService) validateEmbed(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", errs.Invalid("embedCode", "Embed code is required")
	}
	if a.config.MaxEmbedBytes > 0 && len(code) > a.config.MaxEmbedBytes {
		return "", errs.Invalid("embedCode", "Embed code is too large")
	}
	return code, nil
}

// SaveLiveEmbed stores and mounts the live player markup.
func (a *AdminService) SaveLiveEmbed(ctx context.Context, code string) error {
	code, err := a.validateEmbed(code)
	if err != nil {
		return err
	}
	rctx, cancel := a.remoteCtx(ctx)
	defer cancel()
	if err := a.settings.Set(rctx, repositories.SettingLiveStreamEmbed, code, "Live stream embed code"); err != nil {
		return err
	}
	if err := a.state.SetLiveEmbed(&code); err != nil {
		return err
	}
	a.mirrorState()
	a.logger.Admin().Info("Live stream embed saved", "bytes", len(code))
	return nil
}

func (a *AdminService) DeleteLiveEmbed(ctx context.Context) error {
	rctx, cancel := a.remoteCtx(ctx)
	defer cancel()
	if err := a.settings.Delete(rctx, repositories.SettingLiveStreamEmbed); err != nil {
		return err
	}
	if err := a.state.SetLiveEmbed(nil); err != nil {
		return err
	}
	a.mirrorState()
	a.logger.Admin().Info("Live stream embed deleted")
	return nil
}

// SaveRecordedEmbed stores and mounts the recorded videos markup.
func (a *AdminService) SaveRecordedEmbed(ctx context.Context, code string) error {
	code, err := a.validateEmbed(code)
	if err != nil {
		return err
	}
	rctx, cancel := a.remoteCtx(ctx)
	defer cancel()
	if err := a.settings.Set(rctx, repositories.SettingRecordedVideosEmbed, code, "Recorded videos embed code"); err != nil {
		return err
	}
	if err := a.state.SetRecordedEmbed(&code); err != nil {
		return err
	}
	a.mirrorState()
	a.logger.Admin().Info("Recorded videos embed saved", "bytes", len(code))
	return nil
}

func (a *AdminService) DeleteRecordedEmbed(ctx context.Context) error {
	rctx, cancel := a.remoteCtx(ctx)
	defer cancel()
	if err := a.settings.Delete(rctx, repositories.SettingRecordedVideosEmbed); err != nil {
		return err
	}
	if err := a.state.SetRecordedEmbed(nil); err != nil {
		return err
	}
	a.mirrorState()
	a.logger.Admin().Info("Recorded videos embed deleted")
	return nil
}
