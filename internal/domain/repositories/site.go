package repositories

import (
	"context"

	"github.com/rajcreationz/livesite/internal/domain/entities/media"
	"github.com/rajcreationz/livesite/internal/domain/entities/schedule"
)

// Setting keys stored in the remote settings table.
const (
	SettingLiveStreamEmbed     = "live_stream_embed"
	SettingRecordedVideosEmbed = "recorded_videos_embed"
)

// Getters return (nil, nil) when no row exists.

type ThumbnailRepository interface {
	FindByType(ctx context.Context, thumbType string) (*media.Thumbnail, error)
	Upsert(ctx context.Context, thumb *media.Thumbnail) error
	DeleteByType(ctx context.Context, thumbType string) error
}

type SettingRepository interface {
	Get(ctx context.Context, key string) (*string, error)
	Set(ctx context.Context, key, value, description string) error
	Delete(ctx context.Context, key string) error
}

type ScheduleRepository interface {
	FindAll(ctx context.Context, filters schedule.Filters) ([]schedule.Event, error)
	FindByID(ctx context.Context, id string) (*schedule.Event, error)
	Upsert(ctx context.Context, event *schedule.Event) error
	Delete(ctx context.Context, id string) error
}

type PhotoRepository interface {
	FindAll(ctx context.Context) ([]media.Photo, error)
	Store(ctx context.Context, photo *media.Photo) error
	Delete(ctx context.Context, id string) error
}

type VideoRepository interface {
	FindAll(ctx context.Context) ([]media.Video, error)
	Upsert(ctx context.Context, video *media.Video) error
	Delete(ctx context.Context, id string) error
}

type EventRepository interface {
	FindAll(ctx context.Context) ([]media.Event, error)
	Upsert(ctx context.Context, event *media.Event) error
	Delete(ctx context.Context, id string) error
}

// Bucket is object storage for uploaded images.
type Bucket interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, path string) error
	PublicURL(path string) string
}

// LocalCache is the persisted key/value mirror of resolved settings.
type LocalCache interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
