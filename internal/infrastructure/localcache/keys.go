package localcache

import (
	"encoding/json"
	"fmt"

	"github.com/rajcreationz/livesite/internal/domain/entities/admin"
	"github.com/rajcreationz/livesite/internal/domain/entities/media"
	"github.com/rajcreationz/livesite/internal/domain/entities/stream"
	"github.com/rajcreationz/livesite/internal/domain/repositories"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/metrics"
)

// Key contract shared with older deployments.
const (
	KeyLiveThumbnail       = "liveThumbnail"
	KeyLiveStreamEmbed     = "liveStreamEmbed"
	KeyRecordedVideosEmbed = "recordedVideosEmbed"
	KeyWebsiteSettings     = "websiteSettings"
	KeyAdminSession        = "adminSession"
	KeyImagesManifest      = "imagesManifest"
	KeyStreamErrorLogs     = "streamErrorLogs"
)

// WebsiteSettings is the consolidated settings record.
type WebsiteSettings struct {
	Thumbnail           string `json:"thumbnail,omitempty"`
	LiveStreamEmbed     string `json:"liveStreamEmbed,omitempty"`
	RecordedVideosEmbed string `json:"recordedVideosEmbed,omitempty"`
}

// Mirror reads and writes the typed records on top of any LocalCache.
type Mirror struct {
	cache repositories.LocalCache
}

func NewMirror(cache repositories.LocalCache) *Mirror {
	return &Mirror{cache: cache}
}

// get reads key and counts the outcome.
func (m *Mirror) get(key string) ([]byte, bool, error) {
	raw, ok, err := m.cache.Get(key)
	switch {
	case err != nil:
		metrics.CacheReadsTotal.WithLabelValues(key, "error").Inc()
	case ok:
		metrics.CacheReadsTotal.WithLabelValues(key, "hit").Inc()
	default:
		metrics.CacheReadsTotal.WithLabelValues(key, "miss").Inc()
	}
	return raw, ok, err
}

func (m *Mirror) getString(key string) (string, error) {
	raw, ok, err := m.get(key)
	if err != nil || !ok {
		return "", err
	}
	return string(raw), nil
}

func (m *Mirror) getJSON(key string, out any) (bool, error) {
	raw, ok, err := m.get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (m *Mirror) setJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return m.cache.Set(key, raw)
}

// ReadSettings resolves each field from the consolidated record, then the
// legacy per-field keys, then (thumbnail only) the legacy images manifest.
// The first read error is returned alongside whatever could be read.
func (m *Mirror) ReadSettings() (stream.Settings, error) {
	out := stream.Settings{Sources: stream.FieldSources{
		Thumbnail: stream.SourceNone, LiveEmbed: stream.SourceNone, RecordedEmbed: stream.SourceNone,
	}}
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	var ws WebsiteSettings
	_, err := m.getJSON(KeyWebsiteSettings, &ws)
	keep(err)

	pick := func(consolidated, legacyKey string) (*string, stream.Source) {
		if consolidated != "" {
			return stream.Str(consolidated), stream.SourceCache
		}
		v, err := m.getString(legacyKey)
		keep(err)
		if v != "" {
			return stream.Str(v), stream.SourceLegacy
		}
		return nil, stream.SourceNone
	}

	out.ThumbnailRef, out.Sources.Thumbnail = pick(ws.Thumbnail, KeyLiveThumbnail)
	out.LiveEmbedCode, out.Sources.LiveEmbed = pick(ws.LiveStreamEmbed, KeyLiveStreamEmbed)
	out.RecordedEmbedCode, out.Sources.RecordedEmbed = pick(ws.RecordedVideosEmbed, KeyRecordedVideosEmbed)

	if out.ThumbnailRef == nil {
		var manifest media.Manifest
		found, err := m.getJSON(KeyImagesManifest, &manifest)
		keep(err)
		if found {
			if entry, ok := manifest.Thumbnails[media.ThumbnailTypeLive]; ok && entry.Data != "" {
				out.ThumbnailRef = stream.Str(entry.Data)
				out.Sources.Thumbnail = stream.SourceLegacy
			}
		}
	}

	return out, firstErr
}

// WriteSettings stores s in the consolidated record and the legacy keys.
// Absent fields are removed, including the live entry of the images
// manifest, so a cleared thumbnail cannot come back from a legacy source.
func (m *Mirror) WriteSettings(s stream.Settings) error {
	ws := WebsiteSettings{
		Thumbnail:           stream.Deref(s.ThumbnailRef),
		LiveStreamEmbed:     stream.Deref(s.LiveEmbedCode),
		RecordedVideosEmbed: stream.Deref(s.RecordedEmbedCode),
	}
	if err := m.setJSON(KeyWebsiteSettings, ws); err != nil {
		return err
	}
	for key, val := range map[string]string{
		KeyLiveThumbnail:       ws.Thumbnail,
		KeyLiveStreamEmbed:     ws.LiveStreamEmbed,
		KeyRecordedVideosEmbed: ws.RecordedVideosEmbed,
	} {
		var err error
		if val == "" {
			err = m.cache.Delete(key)
		} else {
			err = m.cache.Set(key, []byte(val))
		}
		if err != nil {
			return err
		}
	}
	if ws.Thumbnail == "" {
		return m.dropManifestThumbnail()
	}
	return nil
}

func (m *Mirror) dropManifestThumbnail() error {
	var manifest media.Manifest
	found, err := m.getJSON(KeyImagesManifest, &manifest)
	if err != nil || !found {
		return err
	}
	if _, ok := manifest.Thumbnails[media.ThumbnailTypeLive]; !ok {
		return nil
	}
	delete(manifest.Thumbnails, media.ThumbnailTypeLive)
	return m.setJSON(KeyImagesManifest, manifest)
}

// ErrorLogs returns the stored stream error log, oldest first.
func (m *Mirror) ErrorLogs() ([]stream.ErrorLogEntry, error) {
	var logs []stream.ErrorLogEntry
	if _, err := m.getJSON(KeyStreamErrorLogs, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// AppendErrorLog adds entry and trims to limit.
func (m *Mirror) AppendErrorLog(entry stream.ErrorLogEntry, limit int) error {
	logs, err := m.ErrorLogs()
	if err != nil {
		logs = nil
	}
	return m.setJSON(KeyStreamErrorLogs, stream.AppendErrorLog(logs, entry, limit))
}

func (m *Mirror) AdminSession() (admin.Session, error) {
	var rec admin.Record
	found, err := m.getJSON(KeyAdminSession, &rec)
	if err != nil || !found {
		return admin.Session{}, err
	}
	return rec.Session(), nil
}

func (m *Mirror) SetAdminSession(s admin.Session) error {
	return m.setJSON(KeyAdminSession, s.Record())
}

func (m *Mirror) ClearAdminSession() error {
	return m.cache.Delete(KeyAdminSession)
}
