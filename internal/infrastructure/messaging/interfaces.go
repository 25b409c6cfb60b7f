// Package messaging pushes live status to connected browsers.
package messaging

import "time"

// StatusPayload is the live region state sent to every subscriber.
type StatusPayload struct {
	State          string    `json:"state"`
	IsLive         bool      `json:"isLive"`
	OfflineVisible bool      `json:"offlineVisible"`
	HasThumbnail   bool      `json:"hasThumbnail"`
	HasLiveEmbed   bool      `json:"hasLiveEmbed"`
	ErrorCount     int       `json:"errorCount"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Publisher is implemented by StatusHub; services depend on this instead.
type Publisher interface {
	Publish(payload StatusPayload)
}
