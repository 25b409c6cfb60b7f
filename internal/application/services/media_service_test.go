package services

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajcreationz/livesite/internal/domain/entities/media"
	"github.com/rajcreationz/livesite/internal/domain/errs"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
)

func newMediaService(t *testing.T) (*MediaService, *fakeBucket) {
	t.Helper()
	store := newTestStore(t)
	bucket := newFakeBucket()
	return NewMediaService(store.Photos, store.Videos, store.Events, newTestUploader(bucket), logging.NewDiscardLogger(), 0), bucket
}

var inlinePNG = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG fake"))

func TestSavePhotoAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, bucket := newMediaService(t)

	photo, err := svc.SavePhoto(ctx, media.Upload{FileName: "stage.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")}, " Opening night ")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(photo.FileName, "photo_"))
	assert.Equal(t, "Opening night", photo.Description)
	assert.True(t, bucket.has("photos/"+photo.FileName))

	photos := svc.ListPhotos(ctx)
	require.Len(t, photos, 1)

	require.NoError(t, svc.DeletePhoto(ctx, photo.ID))
	assert.Empty(t, svc.ListPhotos(ctx))
	assert.False(t, bucket.has("photos/"+photo.FileName))
}

func TestSavePhoto_Empty(t *testing.T) {
	svc, _ := newMediaService(t)
	_, err := svc.SavePhoto(context.Background(), media.Upload{FileName: "x.png"}, "")
	assert.True(t, errs.IsValidation(err))
}

func TestSaveVideo_MovesInlineThumbnail(t *testing.T) {
	ctx := context.Background()
	svc, bucket := newMediaService(t)

	v := &media.Video{Title: "Holi Special", ThumbnailURL: inlinePNG}
	warning, err := svc.SaveVideo(ctx, v)
	require.NoError(t, err)
	assert.Empty(t, warning)
	assert.True(t, strings.HasPrefix(v.ThumbnailURL, "https://cdn.example/images/videos/video_"))

	videos := svc.ListVideos(ctx)
	require.Len(t, videos, 1)
	assert.Equal(t, v.ThumbnailURL, videos[0].ThumbnailURL)

	bucket.err = errRemoteDown
	v2 := &media.Video{Title: "Diwali", ThumbnailURL: inlinePNG}
	warning, err = svc.SaveVideo(ctx, v2)
	require.NoError(t, err)
	assert.Equal(t, InlineThumbnailWarning, warning)
	assert.Equal(t, inlinePNG, v2.ThumbnailURL)

	require.NoError(t, svc.DeleteVideo(ctx, v.ID))
	assert.Len(t, svc.ListVideos(ctx), 1)
}

func TestSaveVideo_RequiresTitle(t *testing.T) {
	svc, _ := newMediaService(t)
	_, err := svc.SaveVideo(context.Background(), &media.Video{})
	assert.True(t, errs.IsValidation(err))
}

func TestSaveEvent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMediaService(t)

	e := &media.Event{Title: "Ganesh Utsav", ThumbnailURL: inlinePNG, IsLive: true}
	_, err := svc.SaveEvent(ctx, e)
	require.NoError(t, err)
	assert.Contains(t, e.ThumbnailURL, "/events/event_")

	events := svc.ListEvents(ctx)
	require.Len(t, events, 1)
	assert.True(t, events[0].IsLive)

	require.NoError(t, svc.DeleteEvent(ctx, e.ID))
	assert.Empty(t, svc.ListEvents(ctx))
	assert.True(t, errs.IsValidation(svc.DeleteEvent(ctx, "")))
}
