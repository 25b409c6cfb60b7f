package admin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_ExpiresAfterTwoHours(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	s := NewSession(now, SessionDuration)

	assert.True(t, s.IsValid(now))
	assert.True(t, s.IsValid(now.Add(SessionDuration-time.Second)))
	assert.False(t, s.IsValid(now.Add(SessionDuration)))
	assert.False(t, s.IsValid(now.Add(SessionDuration+time.Minute)))
}

func TestSession_ZeroValueInvalid(t *testing.T) {
	assert.False(t, Session{}.IsValid(time.Now()))
}

func TestSession_RecordRoundTrip(t *testing.T) {
	now := time.UnixMilli(1710496800000)
	s := NewSession(now, SessionDuration)
	r := s.Record()
	assert.Equal(t, now.Add(SessionDuration).UnixMilli(), r.Expiry)
	assert.True(t, r.Session().ExpiresAt.Equal(s.ExpiresAt))
}
