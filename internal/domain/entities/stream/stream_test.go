package stream

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNext_ThumbnailDominates(t *testing.T) {
	for _, current := range []IndicatorState{StateUnknown, StateLiveNoThumbnail, StateOffline} {
		got := Next(current, Observation{ThumbnailMounted: true, ErrorCount: 99}, 3)
		assert.Equal(t, StateLiveWithThumbnail, got, "from %s", current)
	}
}

func TestNext_ThumbnailIsSticky(t *testing.T) {
	state := StateLiveWithThumbnail
	for i := 0; i < 5; i++ {
		state = Next(state, Observation{ThumbnailMounted: true, ErrorCount: i + 3}, 3)
		assert.Equal(t, StateLiveWithThumbnail, state)
		assert.False(t, state.OfflineVisible())
	}
}

func TestNext_ErrorThreshold(t *testing.T) {
	state := Next(StateUnknown, Observation{ErrorCount: 1}, 3)
	assert.Equal(t, StateLiveNoThumbnail, state)

	state = Next(state, Observation{ErrorCount: 2}, 3)
	assert.Equal(t, StateLiveNoThumbnail, state)
	assert.True(t, state.IsLive())

	state = Next(state, Observation{ErrorCount: 3}, 3)
	assert.Equal(t, StateOffline, state)
	assert.True(t, state.OfflineVisible())

	state = Next(state, Observation{Reachable: true}, 3)
	assert.Equal(t, StateLiveNoThumbnail, state)
}

func TestNext_NoEmbed(t *testing.T) {
	assert.Equal(t, StateOffline, Next(StateUnknown, Observation{EmbedMissing: true}, 3))
	assert.Equal(t, StateLiveWithThumbnail, Next(StateOffline, Observation{EmbedMissing: true, ThumbnailMounted: true}, 3))
}

func TestAppendErrorLog_KeepsNewest(t *testing.T) {
	var logs []ErrorLogEntry
	for i := 1; i <= 12; i++ {
		logs = AppendErrorLog(logs, ErrorLogEntry{Message: fmt.Sprint(i), Timestamp: time.Unix(int64(i), 0)}, 10)
	}
	assert.Len(t, logs, 10)
	assert.Equal(t, "3", logs[0].Message)
	assert.Equal(t, "12", logs[9].Message)
}

func TestSettingsPresence(t *testing.T) {
	s := Settings{ThumbnailRef: Str(""), LiveEmbedCode: Str("<iframe></iframe>")}
	assert.Nil(t, s.ThumbnailRef)
	assert.False(t, s.HasThumbnail())
	assert.True(t, s.HasLiveEmbed())
	assert.Equal(t, "", Deref(nil))
}
