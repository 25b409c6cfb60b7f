package services

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/rajcreationz/livesite/internal/domain/entities/media"
	"github.com/rajcreationz/livesite/internal/domain/errs"
	"github.com/rajcreationz/livesite/internal/domain/repositories"
	imageproc "github.com/rajcreationz/livesite/internal/infrastructure/media"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
	"github.com/rajcreationz/livesite/internal/infrastructure/security"
	"github.com/rajcreationz/livesite/internal/infrastructure/storage"
)

// Bucket folders for gallery media.
const (
	PhotoFolder = "photos"
	VideoFolder = "videos"
	EventFolder = "events"
)

// InlineThumbnailWarning is returned alongside a successful save when an
// inline thumbnail could not be moved to storage.
const InlineThumbnailWarning = "Thumbnail upload failed; the inline image was kept"

// MediaService manages the photo gallery, recorded videos and event cards.
type MediaService struct {
	photos   repositories.PhotoRepository
	videos   repositories.VideoRepository
	events   repositories.EventRepository
	uploader *storage.Uploader
	logger   *logging.ChanneledLogger
	timeout  time.Duration
}

func NewMediaService(photos repositories.PhotoRepository, videos repositories.VideoRepository, events repositories.EventRepository, uploader *storage.Uploader, logger *logging.ChanneledLogger, timeout time.Duration) *MediaService {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &MediaService{photos: photos, videos: videos, events: events, uploader: uploader, logger: logger, timeout: timeout}
}

func (m *MediaService) ListPhotos(ctx context.Context) []media.Photo {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	photos, err := m.photos.FindAll(ctx)
	if err != nil {
		m.logger.Media().Warn("Failed to load photos", "error", err.Error())
		return []media.Photo{}
	}
	return photos
}

// SavePhoto uploads the image and adds it to the gallery.
func (m *MediaService) SavePhoto(ctx context.Context, upload media.Upload, description string) (*media.Photo, error) {
	if err := m.uploader.Validate(upload); err != nil {
		return nil, err
	}
	upload.FileName = uniqueName("photo", upload.FileName)

	result, err := m.uploader.Upload(ctx, upload, PhotoFolder)
	if err != nil {
		return nil, err
	}

	photo := &media.Photo{FileName: upload.FileName, URL: result.URL, Description: strings.TrimSpace(description)}
	rctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if err := m.photos.Store(rctx, photo); err != nil {
		return nil, err
	}
	m.logger.Media().Info("Photo saved", "id", photo.ID, "url", photo.URL)
	return photo, nil
}

// DeletePhoto removes the gallery record, then its stored object.
func (m *MediaService) DeletePhoto(ctx context.Context, id string) error {
	if id == "" {
		return errs.Invalid("id", "is required")
	}
	var fileName string
	for _, p := range m.ListPhotos(ctx) {
		if p.ID == id {
			fileName = p.FileName
			break
		}
	}

	rctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if err := m.photos.Delete(rctx, id); err != nil {
		return err
	}
	if fileName != "" {
		if err := m.uploader.Remove(ctx, path.Join(PhotoFolder, fileName)); err != nil {
			m.logger.Storage().Warn("Failed to remove photo object", "file", fileName, "error", err.Error())
		}
	}
	m.logger.Media().Info("Photo deleted", "id", id)
	return nil
}

func (m *MediaService) ListVideos(ctx context.Context) []media.Video {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	videos, err := m.videos.FindAll(ctx)
	if err != nil {
		m.logger.Media().Warn("Failed to load videos", "error", err.Error())
		return []media.Video{}
	}
	return videos
}

// SaveVideo upserts v. An inline data URL thumbnail is moved to storage
// first; if that fails the data URL is kept and a warning is returned.
func (m *MediaService) SaveVideo(ctx context.Context, v *media.Video) (string, error) {
	v.Title = strings.TrimSpace(v.Title)
	if err := v.Validate(); err != nil {
		return "", err
	}

	var warning string
	if v.HasInlineThumbnail() {
		if url, ok := m.moveInline(ctx, v.ThumbnailURL, "video", VideoFolder); ok {
			v.ThumbnailURL = url
		} else {
			warning = InlineThumbnailWarning
		}
	}

	rctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if err := m.videos.Upsert(rctx, v); err != nil {
		return "", err
	}
	m.logger.Media().Info("Video saved", "id", v.ID, "title", v.Title)
	return warning, nil
}

func (m *MediaService) DeleteVideo(ctx context.Context, id string) error {
	if id == "" {
		return errs.Invalid("id", "is required")
	}
	rctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if err := m.videos.Delete(rctx, id); err != nil {
		return err
	}
	m.logger.Media().Info("Video deleted", "id", id)
	return nil
}

func (m *MediaService) ListEvents(ctx context.Context) []media.Event {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	events, err := m.events.FindAll(ctx)
	if err != nil {
		m.logger.Media().Warn("Failed to load events", "error", err.Error())
		return []media.Event{}
	}
	return events
}

// SaveEvent upserts an event card, moving an inline thumbnail like SaveVideo.
func (m *MediaService) SaveEvent(ctx context.Context, e *media.Event) (string, error) {
	e.Title = strings.TrimSpace(e.Title)
	if err := e.Validate(); err != nil {
		return "", err
	}

	var warning string
	if imageproc.IsDataURL(e.ThumbnailURL) {
		if url, ok := m.moveInline(ctx, e.ThumbnailURL, "event", EventFolder); ok {
			e.ThumbnailURL = url
		} else {
			warning = InlineThumbnailWarning
		}
	}

	rctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if err := m.events.Upsert(rctx, e); err != nil {
		return "", err
	}
	m.logger.Media().Info("Event saved", "id", e.ID, "title", e.Title)
	return warning, nil
}

func (m *MediaService) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		return errs.Invalid("id", "is required")
	}
	rctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if err := m.events.Delete(rctx, id); err != nil {
		return err
	}
	m.logger.Media().Info("Event deleted", "id", id)
	return nil
}

// moveInline uploads a data URL image and returns its public URL.
func (m *MediaService) moveInline(ctx context.Context, dataURL, prefix, folder string) (string, bool) {
	upload, err := imageproc.DecodeDataURL(dataURL, prefix+"_"+strings.ToLower(security.GenerateULID()))
	if err != nil {
		m.logger.Media().Warn("Inline thumbnail is not a valid image", "error", err.Error())
		return "", false
	}
	result, err := m.uploader.Upload(ctx, upload, folder)
	if err != nil {
		m.logger.Media().Warn("Inline thumbnail upload failed, keeping data URL", "error", err.Error())
		return "", false
	}
	return result.URL, true
}

// uniqueName keeps the extension of original under a fresh ULID name.
func uniqueName(prefix, original string) string {
	ext := strings.ToLower(path.Ext(original))
	if ext == "" {
		ext = ".png"
	}
	return prefix + "_" + strings.ToLower(security.GenerateULID()) + ext
}
