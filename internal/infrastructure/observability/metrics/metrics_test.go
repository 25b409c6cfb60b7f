package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSetIndicatorState_OneHot(t *testing.T) {
	all := []string{"unknown", "live_with_thumbnail", "live_no_thumbnail", "offline"}
	SetIndicatorState("offline", all)

	assert.Equal(t, 1.0, testutil.ToFloat64(IndicatorState.WithLabelValues("offline")))
	assert.Equal(t, 0.0, testutil.ToFloat64(IndicatorState.WithLabelValues("unknown")))

	SetIndicatorState("live_with_thumbnail", all)
	assert.Equal(t, 0.0, testutil.ToFloat64(IndicatorState.WithLabelValues("offline")))
	assert.Equal(t, 1.0, testutil.ToFloat64(IndicatorState.WithLabelValues("live_with_thumbnail")))
}

func TestMarker_CompleteOnce(t *testing.T) {
	m := StartOperation("test_op")
	m.SetError(errors.New("boom"))
	m.Complete()
	d := m.Duration
	m.Complete()

	assert.False(t, m.Success)
	assert.Equal(t, "boom", m.Error)
	assert.Equal(t, d, m.Duration)
	assert.Equal(t, 1, testutil.CollectAndCount(OperationDuration, "livesite_operation_duration_seconds"))
}
