package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/rajcreationz/livesite/internal/application/state"
	"github.com/rajcreationz/livesite/internal/domain/entities/media"
	"github.com/rajcreationz/livesite/internal/domain/entities/stream"
	"github.com/rajcreationz/livesite/internal/domain/repositories"
	"github.com/rajcreationz/livesite/internal/infrastructure/localcache"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/metrics"
)

// SettingsResolver merges the remote store with the local cache mirror.
// Remote values win; the cache fills fields the remote does not supply.
type SettingsResolver struct {
	thumbnails repositories.ThumbnailRepository
	settings   repositories.SettingRepository
	mirror     *localcache.Mirror
	state      *state.AppState
	logger     *logging.ChanneledLogger
	timeout    time.Duration
	group      singleflight.Group
}

func NewSettingsResolver(
	thumbnails repositories.ThumbnailRepository,
	settings repositories.SettingRepository,
	mirror *localcache.Mirror,
	appState *state.AppState,
	logger *logging.ChanneledLogger,
	timeout time.Duration,
) *SettingsResolver {
	return &SettingsResolver{
		thumbnails: thumbnails,
		settings:   settings,
		mirror:     mirror,
		state:      appState,
		logger:     logger,
		timeout:    timeout,
	}
}

// remoteSettings is what one pass read from the store. A nil field means
// "no data", whether the row is missing or the call failed.
type remoteSettings struct {
	thumbnail *string
	live      *string
	recorded  *string
	failures  int
}

// Resolve runs one resolution pass. Concurrent callers share the pass in
// flight. It never fails: unreachable sources are logged and skipped.
func (r *SettingsResolver) Resolve(ctx context.Context) stream.Settings {
	v, _, _ := r.group.Do("settings", func() (any, error) {
		return r.resolve(ctx), nil
	})
	return v.(stream.Settings)
}

func (r *SettingsResolver) resolve(ctx context.Context) stream.Settings {
	marker := metrics.StartOperation("settings_resolve")
	defer marker.Complete()

	remote := r.fetchRemote(ctx)

	cached, err := r.mirror.ReadSettings()
	if err != nil {
		r.logger.Cache().Warn("Local cache read failed", "error", err.Error())
	}

	out := stream.Settings{}
	fromRemote := false
	merge := func(field string, remoteVal, cachedVal *string, cachedSrc stream.Source, dst **string, src *stream.Source) {
		switch {
		case remoteVal != nil && *remoteVal != "":
			*dst, *src = remoteVal, stream.SourceRemote
			fromRemote = true
		case cachedVal != nil:
			*dst, *src = cachedVal, cachedSrc
		default:
			*dst, *src = nil, stream.SourceNone
		}
		metrics.SettingsSourceTotal.WithLabelValues(field, string(*src)).Inc()
	}
	merge("thumbnail", remote.thumbnail, cached.ThumbnailRef, cached.Sources.Thumbnail, &out.ThumbnailRef, &out.Sources.Thumbnail)
	merge("live_embed", remote.live, cached.LiveEmbedCode, cached.Sources.LiveEmbed, &out.LiveEmbedCode, &out.Sources.LiveEmbed)
	merge("recorded_embed", remote.recorded, cached.RecordedEmbedCode, cached.Sources.RecordedEmbed, &out.RecordedEmbedCode, &out.Sources.RecordedEmbed)

	if fromRemote {
		if err := r.mirror.WriteSettings(out); err != nil {
			r.logger.Cache().Warn("Failed to mirror remote settings", "error", err.Error())
		}
	}

	result := "ok"
	if remote.failures > 0 {
		result = "degraded"
		marker.Success = false
	}
	metrics.SettingsResolutionsTotal.WithLabelValues(result).Inc()

	r.logger.Settings().Debug("Settings resolved",
		"thumbnail", out.Sources.Thumbnail,
		"liveEmbed", out.Sources.LiveEmbed,
		"recordedEmbed", out.Sources.RecordedEmbed,
		"remoteFailures", remote.failures)
	return out
}

// fetchRemote queries the three fields concurrently, each bounded by the
// remote timeout.
func (r *SettingsResolver) fetchRemote(ctx context.Context) remoteSettings {
	var (
		out remoteSettings
		g   errgroup.Group
	)
	failed := make([]bool, 3)

	g.Go(func() error {
		cctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		thumb, err := r.thumbnails.FindByType(cctx, media.ThumbnailTypeLive)
		if err != nil {
			r.remoteFailed("get_thumbnail", err)
			failed[0] = true
			return nil
		}
		if thumb != nil {
			out.thumbnail = stream.Str(thumb.ImageURL)
		}
		return nil
	})
	fetchSetting := func(i int, key string, dst **string) {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()
			v, err := r.settings.Get(cctx, key)
			if err != nil {
				r.remoteFailed("get_"+key, err)
				failed[i] = true
				return nil
			}
			if v != nil {
				*dst = stream.Str(*v)
			}
			return nil
		})
	}
	fetchSetting(1, repositories.SettingLiveStreamEmbed, &out.live)
	fetchSetting(2, repositories.SettingRecordedVideosEmbed, &out.recorded)

	_ = g.Wait()
	for _, f := range failed {
		if f {
			out.failures++
		}
	}
	return out
}

func (r *SettingsResolver) remoteFailed(op string, err error) {
	metrics.RemoteErrorsTotal.WithLabelValues(op).Inc()
	r.logger.Settings().Warn("Remote settings read failed, using local cache", "operation", op, "error", err.Error())
}

// ResolveCached reads only the local cache. It backs the first paint before
// the remote answers.
func (r *SettingsResolver) ResolveCached() stream.Settings {
	s, err := r.mirror.ReadSettings()
	if err != nil {
		r.logger.Cache().Warn("Local cache read failed", "error", err.Error())
	}
	return s
}

// ResolveAndApply resolves once and applies the result to the stage in a
// single update.
func (r *SettingsResolver) ResolveAndApply(ctx context.Context) (stream.Settings, error) {
	s := r.Resolve(ctx)
	if err := r.state.ApplySettings(s); err != nil {
		r.logger.Stream().Error("Failed to apply resolved settings", "error", err.Error())
		return s, err
	}
	return s, nil
}

// Start resolves, then re-resolves every interval until ctx is cancelled.
// With paintFromCache the stage first shows the cached values so a slow
// remote does not leave the page in its loading state.
func (r *SettingsResolver) Start(ctx context.Context, interval time.Duration, paintFromCache bool) {
	if paintFromCache {
		r.state.PaintOptimistic(r.ResolveCached())
	}
	_, _ = r.ResolveAndApply(ctx)

	if interval <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Settings().Info("Settings refresh stopped")
			return
		case <-ticker.C:
			_, _ = r.ResolveAndApply(ctx)
		}
	}
}
