package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provsync/provsync/internal/coordinate"
)

func TestWaitMetrics(t *testing.T) {
	t.Parallel()

	m := NewWaitMetrics()

	m.PollObserved(coordinate.PhaseAwaitingBoot)
	m.PollObserved(coordinate.PhaseAwaitingBoot)
	m.PollObserved(coordinate.PhasePolling)
	m.ElapsedSet(30 * time.Second)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.polls.WithLabelValues(string(coordinate.PhaseAwaitingBoot))))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.polls.WithLabelValues(string(coordinate.PhasePolling))))
	assert.Equal(t, float64(30), testutil.ToFloat64(m.elapsed))

	count, err := testutil.GatherAndCount(m.Registry(),
		"provsync_wait_polls_total", "provsync_wait_polling_elapsed_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
