// Package stream defines the live stream presentation state.
package stream

// Source records where a resolved field came from.
type Source string

const (
	SourceNone   Source = "none"
	SourceRemote Source = "remote"
	SourceCache  Source = "cache"
	SourceLegacy Source = "legacy"
)

// Settings is the resolved presentation state for the live and recorded regions.
// A nil field means "absent".
type Settings struct {
	ThumbnailRef      *string `json:"thumbnail,omitempty"`
	LiveEmbedCode     *string `json:"liveStreamEmbed,omitempty"`
	RecordedEmbedCode *string `json:"recordedVideosEmbed,omitempty"`

	Sources FieldSources `json:"sources"`
}

type FieldSources struct {
	Thumbnail     Source `json:"thumbnail"`
	LiveEmbed     Source `json:"liveStreamEmbed"`
	RecordedEmbed Source `json:"recordedVideosEmbed"`
}

func (s Settings) HasThumbnail() bool     { return present(s.ThumbnailRef) }
func (s Settings) HasLiveEmbed() bool     { return present(s.LiveEmbedCode) }
func (s Settings) HasRecordedEmbed() bool { return present(s.RecordedEmbedCode) }

func present(v *string) bool { return v != nil && *v != "" }

// Str returns a pointer to v, or nil when v is empty.
func Str(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// Deref returns the pointed-to string or "".
func Deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
