package realtime

import (
	"sync"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"snapwin-admin/monitoring"
)

// Coordinator watches all change events (insert/update/delete) on one
// collection and coalesces bursts into a single refresh callback after
// a short quiet period, so a mass import or a draw touching many rows
// causes one refresh instead of N.
type Coordinator struct {
	collection string
	recordID   string // optional single-row filter for detail views
	debounce   time.Duration
	refresh    func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func NewCoordinator(collection string, debounce time.Duration, refresh func()) *Coordinator {
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &Coordinator{
		collection: collection,
		debounce:   debounce,
		refresh:    refresh,
	}
}

// ForRecord narrows the coordinator to changes of a single record.
func (c *Coordinator) ForRecord(id string) *Coordinator {
	c.recordID = id
	return c
}

// Bind attaches the coordinator to the post-commit record hooks of its
// collection.
func (c *Coordinator) Bind(app core.App) {
	app.OnRecordAfterCreateSuccess(c.collection).BindFunc(func(e *core.RecordEvent) error {
		c.Notify(e.Record.Id)
		return e.Next()
	})
	app.OnRecordAfterUpdateSuccess(c.collection).BindFunc(func(e *core.RecordEvent) error {
		c.Notify(e.Record.Id)
		return e.Next()
	})
	app.OnRecordAfterDeleteSuccess(c.collection).BindFunc(func(e *core.RecordEvent) error {
		c.Notify(e.Record.Id)
		return e.Next()
	})
}

// Notify registers one change event and (re)arms the debounce timer.
func (c *Coordinator) Notify(recordID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	if c.recordID != "" && recordID != c.recordID {
		return
	}

	monitoring.TrackRealtimeEvent(c.collection)

	if c.timer != nil {
		c.timer.Reset(c.debounce)
		return
	}
	c.timer = time.AfterFunc(c.debounce, c.fire)
}

func (c *Coordinator) fire() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.mu.Unlock()

	monitoring.TrackRealtimeRefresh(c.collection)
	c.refresh()
}

// Stop tears the coordinator down. A pending debounce timer is always
// cleared so no refresh fires into a dead consumer.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
