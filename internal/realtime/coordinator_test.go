package realtime

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCoordinator_CoalescesBursts(t *testing.T) {
	var refreshes atomic.Int32
	c := NewCoordinator("tickets", 30*time.Millisecond, func() {
		refreshes.Add(1)
	})
	defer c.Stop()

	for i := 0; i < 10; i++ {
		c.Notify("t1")
	}

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int32(1), refreshes.Load(), "a burst must fire exactly one refresh")

	c.Notify("t2")
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int32(2), refreshes.Load())
}

func TestCoordinator_RecordFilter(t *testing.T) {
	var refreshes atomic.Int32
	c := NewCoordinator("raffles", 20*time.Millisecond, func() {
		refreshes.Add(1)
	}).ForRecord("r1")
	defer c.Stop()

	c.Notify("other")
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), refreshes.Load(), "changes to other records are ignored")

	c.Notify("r1")
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), refreshes.Load())
}

func TestCoordinator_StopClearsPendingTimer(t *testing.T) {
	var refreshes atomic.Int32
	c := NewCoordinator("tickets", 30*time.Millisecond, func() {
		refreshes.Add(1)
	})

	c.Notify("t1")
	c.Stop()

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int32(0), refreshes.Load(), "teardown must not refresh into a dead consumer")

	c.Notify("t1")
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), refreshes.Load(), "a stopped coordinator ignores notifications")
}
