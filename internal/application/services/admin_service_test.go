package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajcreationz/livesite/internal/application/state"
	"github.com/rajcreationz/livesite/internal/domain/entities/media"
	"github.com/rajcreationz/livesite/internal/domain/entities/stream"
	"github.com/rajcreationz/livesite/internal/domain/errs"
	"github.com/rajcreationz/livesite/internal/domain/repositories"
	"github.com/rajcreationz/livesite/internal/infrastructure/localcache"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
)

type adminFixture struct {
	thumbs   *fakeThumbnails
	settings *fakeSettings
	bucket   *fakeBucket
	mirror   *localcache.Mirror
	cache    *mapCache
	state    *state.AppState
	svc      *AdminService
}

func newAdminFixture(rate int) *adminFixture {
	f := &adminFixture{
		thumbs:   newFakeThumbnails(),
		settings: newFakeSettings(),
		bucket:   newFakeBucket(),
		state:    state.New(3, 10),
	}
	f.mirror, f.cache = newTestMirror()
	f.svc = NewAdminService(AdminConfig{
		Username:           "admin",
		Password:           "s3cret",
		JWTSecret:          "test-secret",
		LoginRatePerMinute: rate,
		MaxEmbedBytes:      1024,
	}, f.thumbs, f.settings, newTestUploader(f.bucket), f.mirror, f.state, logging.NewDiscardLogger())
	return f
}

func TestLogin_WrongCredentialsCreateNoSession(t *testing.T) {
	f := newAdminFixture(10)
	for _, creds := range [][2]string{{"admin", "nope"}, {"root", "s3cret"}, {"", ""}} {
		res, err := f.svc.Login("1.2.3.4", creds[0], creds[1])
		assert.Nil(t, res)
		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
		assert.Equal(t, "Invalid username or password", err.Error())
	}
	_, found, _ := f.cache.Get(localcache.KeyAdminSession)
	assert.False(t, found)
}

func TestLogin_SessionLastsTwoHours(t *testing.T) {
	f := newAdminFixture(10)
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	res, err := f.svc.Login("1.2.3.4", "admin", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, now.Add(2*time.Hour), res.Session.ExpiresAt)
	assert.Equal(t, 2*time.Hour, f.svc.SessionDuration())

	stored, err := f.mirror.AdminSession()
	require.NoError(t, err)
	assert.True(t, stored.Authenticated)

	f.svc.now = func() time.Time { return now.Add(time.Hour) }
	assert.True(t, f.svc.Check(res.Token).Authenticated)

	f.svc.now = func() time.Time { return now.Add(2*time.Hour + time.Second) }
	assert.False(t, f.svc.Check(res.Token).Authenticated)

	assert.False(t, f.svc.Check("garbage").Authenticated)

	f.svc.Logout()
	_, found, _ := f.cache.Get(localcache.KeyAdminSession)
	assert.False(t, found)
}

func TestLogin_RateLimited(t *testing.T) {
	f := newAdminFixture(2)
	for i := 0; i < 2; i++ {
		_, err := f.svc.Login("5.6.7.8", "admin", "bad")
		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	}
	_, err := f.svc.Login("5.6.7.8", "admin", "s3cret")
	assert.ErrorIs(t, err, errs.ErrRateLimited)

	_, err = f.svc.Login("9.9.9.9", "admin", "s3cret")
	assert.NoError(t, err, "limits are per client")
}

func TestLoginLimiters_IdleClientsEvicted(t *testing.T) {
	f := newAdminFixture(10)
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		_, _ = f.svc.Login(ip, "admin", "bad")
	}
	assert.Len(t, f.svc.limiters, 3)

	now = now.Add(limiterIdle - time.Second)
	_, _ = f.svc.Login("10.0.0.1", "admin", "bad")
	now = now.Add(2 * time.Second)
	_, _ = f.svc.Login("10.0.0.4", "admin", "bad")

	assert.Len(t, f.svc.limiters, 2)
	assert.Contains(t, f.svc.limiters, "10.0.0.1")
	assert.Contains(t, f.svc.limiters, "10.0.0.4")
}

func TestSaveLiveEmbed(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(10)

	err := f.svc.SaveLiveEmbed(ctx, "   ")
	assert.True(t, errs.IsValidation(err))
	assert.Zero(t, f.settings.calls, "validation happens before any remote call")

	err = f.svc.SaveLiveEmbed(ctx, string(make([]byte, 2048)))
	assert.True(t, errs.IsValidation(err))

	require.NoError(t, f.svc.SaveLiveEmbed(ctx, liveEmbed))
	assert.Equal(t, liveEmbed, f.settings.rows[repositories.SettingLiveStreamEmbed])
	assert.True(t, f.state.Status().HasLiveEmbed)

	cached, err := f.mirror.ReadSettings()
	require.NoError(t, err)
	assert.Equal(t, liveEmbed, stream.Deref(cached.LiveEmbedCode))

	require.NoError(t, f.svc.DeleteLiveEmbed(ctx))
	assert.False(t, f.state.Status().HasLiveEmbed)
	cached, _ = f.mirror.ReadSettings()
	assert.Nil(t, cached.LiveEmbedCode)
}

func TestSaveLiveEmbed_RemoteFailureLeavesStage(t *testing.T) {
	f := newAdminFixture(10)
	f.settings.err = errRemoteDown

	err := f.svc.SaveLiveEmbed(context.Background(), liveEmbed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errRemoteDown))
	assert.False(t, f.state.Status().HasLiveEmbed)
}

func TestSaveRecordedEmbed(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(10)
	code := `<iframe src="https://player.example/vod/2"></iframe>`

	require.NoError(t, f.svc.SaveRecordedEmbed(ctx, code))
	assert.Equal(t, code, f.settings.rows[repositories.SettingRecordedVideosEmbed])
	assert.Equal(t, code, stream.Deref(f.state.Settings().RecordedEmbedCode))

	require.NoError(t, f.svc.DeleteRecordedEmbed(ctx))
	assert.Nil(t, f.state.Settings().RecordedEmbedCode)
}

func TestSaveThumbnail(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(10)

	_, err := f.svc.SaveThumbnail(ctx, media.Upload{FileName: "t.png"})
	assert.True(t, errs.IsValidation(err))

	thumb, err := f.svc.SaveThumbnail(ctx, media.Upload{FileName: "Poster.PNG", ContentType: "image/png", Data: []byte("png-bytes")})
	require.NoError(t, err)
	assert.Equal(t, media.ThumbnailTypeLive, thumb.Type)
	assert.Contains(t, thumb.ImageURL, "https://cdn.example/images/thumbnails/live_")
	assert.True(t, f.bucket.has("thumbnails/"+thumb.FileName))

	assert.Equal(t, thumb.ImageURL, f.thumbs.rows["live"].ImageURL)
	assert.True(t, f.state.Status().HasThumbnail)
	cached, _ := f.mirror.ReadSettings()
	assert.Equal(t, thumb.ImageURL, stream.Deref(cached.ThumbnailRef))

	require.NoError(t, f.svc.ClearThumbnail(ctx))
	assert.False(t, f.state.Status().HasThumbnail)
	_, ok := f.thumbs.rows["live"]
	assert.False(t, ok)
}

func TestSaveThumbnail_RecordFailureLeavesStage(t *testing.T) {
	f := newAdminFixture(10)
	f.thumbs.err = errRemoteDown

	_, err := f.svc.SaveThumbnail(context.Background(), media.Upload{FileName: "t.png", Data: []byte("x")})
	require.Error(t, err)
	assert.False(t, f.state.Status().HasThumbnail)
}
