package remote

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajcreationz/livesite/internal/domain/entities/media"
	"github.com/rajcreationz/livesite/internal/domain/entities/schedule"
	"github.com/rajcreationz/livesite/internal/domain/errs"
	schema "github.com/rajcreationz/livesite/internal/infrastructure/database"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
	"github.com/rajcreationz/livesite/internal/infrastructure/persistence/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewConnection("sqlite3", filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, schema.NewTableCreator().CreateSchema(db.DB))
	return NewStore(db.DB, logging.NewDiscardLogger())
}

func TestThumbnailUpsertKeepsOneRowPerType(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	got, err := s.Thumbnails.FindByType(ctx, media.ThumbnailTypeLive)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Thumbnails.Upsert(ctx, &media.Thumbnail{Type: "live", FileName: "a.png", ImageURL: "https://cdn/a.png"}))
	require.NoError(t, s.Thumbnails.Upsert(ctx, &media.Thumbnail{Type: "live", FileName: "b.png", ImageURL: "https://cdn/b.png"}))

	got, err = s.Thumbnails.FindByType(ctx, "live")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "https://cdn/b.png", got.ImageURL)

	var count int
	require.NoError(t, s.Thumbnails.db.QueryRow(`SELECT COUNT(*) FROM thumbnails`).Scan(&count))
	assert.Equal(t, 1, count)

	require.NoError(t, s.Thumbnails.DeleteByType(ctx, "live"))
	got, err = s.Thumbnails.FindByType(ctx, "live")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSettingSetIsUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Settings.Set(ctx, "live_stream_embed", "<iframe src=a>", "Live stream"))
	require.NoError(t, s.Settings.Set(ctx, "live_stream_embed", "<iframe src=b>", "Live stream"))

	v, err := s.Settings.Get(ctx, "live_stream_embed")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "<iframe src=b>", *v)

	require.NoError(t, s.Settings.Delete(ctx, "live_stream_embed"))
	v, err = s.Settings.Get(ctx, "live_stream_embed")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestScheduleUpsertByID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ev := schedule.Event{Title: "Kirtan", Date: "2024-03-15", StartTime: "18:00", EndTime: "19:30"}
	ev.ApplyDefaults()
	require.NoError(t, s.Schedule.Upsert(ctx, &ev))
	require.NotEmpty(t, ev.ID)

	ev.Title = "Kirtan (updated)"
	require.NoError(t, s.Schedule.Upsert(ctx, &ev))

	all, err := s.Schedule.FindAll(ctx, schedule.Filters{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Kirtan (updated)", all[0].Title)
	assert.Equal(t, schedule.DefaultTimezone, all[0].Timezone)

	got, err := s.Schedule.FindByID(ctx, ev.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, schedule.StatusUpcoming, got.Status)

	missing, err := s.Schedule.FindByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestScheduleFiltersAndOrdering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, e := range []schedule.Event{
		{Title: "later", Date: "2024-04-01", StartTime: "10:00", EndTime: "11:00", Status: schedule.StatusUpcoming},
		{Title: "earlier", Date: "2024-03-01", StartTime: "10:00", EndTime: "11:00", Status: schedule.StatusPast, IsRecurring: true},
		{Title: "special", Date: "2024-03-10", StartTime: "10:00", EndTime: "11:00", Category: "Special", Status: schedule.StatusUpcoming},
	} {
		e := e
		e.ApplyDefaults()
		require.NoError(t, s.Schedule.Upsert(ctx, &e))
	}

	all, err := s.Schedule.FindAll(ctx, schedule.Filters{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"earlier", "special", "later"}, []string{all[0].Title, all[1].Title, all[2].Title})

	upcoming := schedule.StatusUpcoming
	got, err := s.Schedule.FindAll(ctx, schedule.Filters{Status: &upcoming})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	recurring := true
	got, err = s.Schedule.FindAll(ctx, schedule.Filters{IsRecurring: &recurring})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "earlier", got[0].Title)

	category := "Special"
	got, err = s.Schedule.FindAll(ctx, schedule.Filters{Category: &category})
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, s.Schedule.Delete(ctx, got[0].ID))
	all, err = s.Schedule.FindAll(ctx, schedule.Filters{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestVideoOrdering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Videos.Upsert(ctx, &media.Video{Title: "second-old", DisplayOrder: 2, CreatedAt: base}))
	require.NoError(t, s.Videos.Upsert(ctx, &media.Video{Title: "first", DisplayOrder: 1, CreatedAt: base}))
	require.NoError(t, s.Videos.Upsert(ctx, &media.Video{Title: "second-new", DisplayOrder: 2, CreatedAt: base.Add(time.Hour)}))

	videos, err := s.Videos.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, videos, 3)
	assert.Equal(t, "first", videos[0].Title)
	assert.Equal(t, "second-new", videos[1].Title)
	assert.Equal(t, "second-old", videos[2].Title)
}

func TestPhotosNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Photos.Store(ctx, &media.Photo{FileName: "old.jpg", URL: "/old.jpg", CreatedAt: base}))
	require.NoError(t, s.Photos.Store(ctx, &media.Photo{FileName: "new.jpg", URL: "/new.jpg", CreatedAt: base.Add(time.Minute)}))

	photos, err := s.Photos.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, "new.jpg", photos[0].FileName)

	require.NoError(t, s.Photos.Delete(ctx, photos[0].ID))
	photos, err = s.Photos.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, photos, 1)
}

func TestEventsAndTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e := media.Event{Title: "Launch", IsLive: true}
	require.NoError(t, s.Events.Upsert(ctx, &e))
	e.Title = "Launch night"
	require.NoError(t, s.Events.Upsert(ctx, &e))

	events, err := s.Events.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Launch night", events[0].Title)
	assert.True(t, events[0].IsLive)

	require.NoError(t, s.AITokens.Record(ctx, 120))
	require.NoError(t, s.AITokens.Record(ctx, 30))
	used, err := s.AITokens.UsedSince(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 150, used)
}

func TestMissingTableIsConfigurationError(t *testing.T) {
	db, err := database.NewConnection("sqlite3", filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer db.Close()

	s := NewStore(db.DB, nil)
	_, err = s.Settings.Get(context.Background(), "live_stream_embed")
	require.Error(t, err)
	assert.True(t, errs.IsConfiguration(err))

	assert.True(t, errs.IsConfiguration(schema.NewTableCreator().VerifySchema(db.DB)))
}
