// Package admin defines domain entities for the admin overlay
package admin

import "time"

// SessionDuration is how long an admin session stays valid after login.
const SessionDuration = 2 * time.Hour

// Session is the admin gate state. It is a cosmetic gate, not a security control.
type Session struct {
	Authenticated bool      `json:"authenticated"`
	ExpiresAt     time.Time `json:"-"`
}

// NewSession starts a session at now lasting d.
func NewSession(now time.Time, d time.Duration) Session {
	return Session{Authenticated: true, ExpiresAt: now.Add(d)}
}

// IsValid reports whether the session is authenticated and not yet expired.
func (s Session) IsValid(now time.Time) bool {
	return s.Authenticated && now.Before(s.ExpiresAt)
}

// Record is the persisted form, with expiry in Unix milliseconds.
type Record struct {
	Expiry        int64 `json:"expiry"`
	Authenticated bool  `json:"authenticated"`
}

func (s Session) Record() Record {
	return Record{Expiry: s.ExpiresAt.UnixMilli(), Authenticated: s.Authenticated}
}

func (r Record) Session() Session {
	return Session{Authenticated: r.Authenticated, ExpiresAt: time.UnixMilli(r.Expiry)}
}
