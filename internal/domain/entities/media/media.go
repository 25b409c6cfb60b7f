// Package media defines gallery, video and thumbnail records.
package media

import (
	"strings"
	"time"

	"github.com/rajcreationz/livesite/internal/domain/errs"
)

// ThumbnailTypeLive is the thumbnail row shown over the live region.
const ThumbnailTypeLive = "live"

// Thumbnail is keyed by Type; at most one row exists per type.
type Thumbnail struct {
	Type      string    `json:"type"`
	FileName  string    `json:"file_name"`
	ImageURL  string    `json:"image_url"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Photo struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Video struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Duration     string    `json:"duration,omitempty"`
	Date         string    `json:"date,omitempty"`
	Views        string    `json:"views,omitempty"`
	EmbedLink    string    `json:"embed_link,omitempty"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (v *Video) Validate() error {
	if strings.TrimSpace(v.Title) == "" {
		return errs.Invalid("title", "is required")
	}
	return nil
}

// HasInlineThumbnail reports whether the thumbnail is still a data URL.
func (v *Video) HasInlineThumbnail() bool {
	return strings.HasPrefix(v.ThumbnailURL, "data:image/")
}

// Event is a generic showcase event card.
type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Date         string    `json:"date,omitempty"`
	Time         string    `json:"time,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	EmbedCode    string    `json:"embed_code,omitempty"`
	IsLive       bool      `json:"is_live"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return errs.Invalid("title", "is required")
	}
	return nil
}

// Upload is an image payload on its way to object storage.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ManifestEntry is one image in the legacy images manifest.
type ManifestEntry struct {
	FileName string    `json:"fileName"`
	Data     string    `json:"data"`
	SavedAt  time.Time `json:"savedAt"`
}

// Manifest is the legacy locally-kept list of thumbnails and photos. It is
// only read as a fallback source.
type Manifest struct {
	Thumbnails  map[string]ManifestEntry `json:"thumbnails"`
	Photos      []ManifestEntry          `json:"photos"`
	LastUpdated time.Time                `json:"lastUpdated"`
}
