package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCall_RunsOnceAfterQuietPeriod(t *testing.T) {
	var runs atomic.Int32
	d := New(20*time.Millisecond, func() { runs.Add(1) })
	defer d.Stop()

	d.Call()
	assert.Equal(t, int32(0), runs.Load(), "must not run before the quiet period")

	assert.Eventually(t, func() bool { return runs.Load() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestCall_CoalescesBursts(t *testing.T) {
	var runs atomic.Int32
	d := New(30*time.Millisecond, func() { runs.Add(1) })
	defer d.Stop()

	// Rapid calls within the window collapse into a single run.
	for range 5 {
		d.Call()
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return runs.Load() == 1 },
		time.Second, 5*time.Millisecond)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestStop_CancelsPendingRun(t *testing.T) {
	var runs atomic.Int32
	d := New(20*time.Millisecond, func() { runs.Add(1) })

	d.Call()
	d.Stop()
	d.Call() // ignored after Stop

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}

func TestNew_NonPositiveWindowUsesDefault(t *testing.T) {
	d := New(0, func() {})
	defer d.Stop()
	assert.Equal(t, DefaultWindow, d.window)
}
