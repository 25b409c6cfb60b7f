package stream

// IndicatorState drives the offline indicator of the live region.
type IndicatorState string

const (
	StateUnknown           IndicatorState = "unknown"
	StateLiveWithThumbnail IndicatorState = "live_with_thumbnail"
	StateLiveNoThumbnail   IndicatorState = "live_no_thumbnail"
	StateOffline           IndicatorState = "offline"
)

// AllStates lists every indicator state.
var AllStates = []IndicatorState{StateUnknown, StateLiveWithThumbnail, StateLiveNoThumbnail, StateOffline}

// Observation is one input to the indicator state machine.
type Observation struct {
	ThumbnailMounted bool
	Reachable        bool
	ErrorCount       int
	// EmbedMissing is set when no live embed is mounted; there is nothing
	// to watch, so the region is offline unless a thumbnail is shown.
	EmbedMissing bool
}

// Next computes the following state. A mounted thumbnail always wins, and
// Offline is only reached once the error count meets the threshold.
func Next(current IndicatorState, obs Observation, threshold int) IndicatorState {
	if obs.ThumbnailMounted {
		return StateLiveWithThumbnail
	}
	if obs.EmbedMissing {
		return StateOffline
	}
	if obs.Reachable {
		return StateLiveNoThumbnail
	}
	if obs.ErrorCount >= threshold {
		return StateOffline
	}
	switch current {
	case StateLiveNoThumbnail, StateOffline:
		return current
	default:
		return StateLiveNoThumbnail
	}
}

// OfflineVisible reports whether the offline indicator should be shown.
func (s IndicatorState) OfflineVisible() bool {
	return s == StateOffline
}

// IsLive matches the "errorCount < 3 or thumbnail present" status check.
func (s IndicatorState) IsLive() bool {
	return s == StateLiveWithThumbnail || s == StateLiveNoThumbnail
}
