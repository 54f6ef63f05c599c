package listing

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_TrailingEdge(t *testing.T) {
	var runs atomic.Int32
	d := NewDebouncer(40*time.Millisecond, func() { runs.Add(1) })
	defer d.Stop()

	for i := 0; i < 6; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, int32(0), runs.Load())

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, d.Pending())
	assert.Never(t, func() bool { return runs.Load() > 1 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestDebouncer_Cancel(t *testing.T) {
	var runs atomic.Int32
	d := NewDebouncer(20*time.Millisecond, func() { runs.Add(1) })
	defer d.Stop()

	d.Trigger()
	assert.True(t, d.Pending())
	d.Cancel()
	assert.False(t, d.Pending())
	assert.Never(t, func() bool { return runs.Load() > 0 }, 80*time.Millisecond, 10*time.Millisecond)

	d.Trigger()
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestDebouncer_StopWaitsForRunningCallback(t *testing.T) {
	started := make(chan struct{})
	var finished atomic.Bool
	d := NewDebouncer(time.Millisecond, func() {
		close(started)
		time.Sleep(30 * time.Millisecond)
		finished.Store(true)
	})

	d.Trigger()
	<-started
	d.Stop()
	assert.True(t, finished.Load())

	d.Trigger()
	assert.False(t, d.Pending(), "triggers after Stop are ignored")
}
