package sync

import (
	"sync"
	"time"
)

type pendingWrite struct {
	timer *time.Timer
	fn    func()
}

// Debouncer collapses bursts of edits into one write per key: each Trigger
// restarts the quiet-period timer and replaces the pending function, so
// only the last value of a burst is written. Rename-while-typing flows
// through here; Cancel drops the pending write when the entity is deleted
// mid-burst.
type Debouncer struct {
	Window time.Duration

	mu      sync.Mutex
	pending map[string]*pendingWrite
}

func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		Window:  window,
		pending: make(map[string]*pendingWrite),
	}
}

func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.pending[key]; ok {
		existing.timer.Stop()
	}

	write := &pendingWrite{fn: fn}
	write.timer = time.AfterFunc(d.Window, func() {
		d.mu.Lock()
		if d.pending[key] != write {
			// cancelled or replaced after the timer fired
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()
		write.fn()
	})
	d.pending[key] = write
}

// Cancel drops the pending write for a key, if any.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if write, ok := d.pending[key]; ok {
		write.timer.Stop()
		delete(d.pending, key)
	}
}

// FlushKey fires the pending write for one key immediately, if any.
func (d *Debouncer) FlushKey(key string) {
	d.mu.Lock()
	write, ok := d.pending[key]
	if ok {
		write.timer.Stop()
		delete(d.pending, key)
	}
	d.mu.Unlock()

	if ok {
		write.fn()
	}
}

// Flush fires every pending write immediately. Used on teardown so the
// last keystrokes of a rename are not lost.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	writes := make([]*pendingWrite, 0, len(d.pending))
	for key, write := range d.pending {
		write.timer.Stop()
		writes = append(writes, write)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, write := range writes {
		write.fn()
	}
}

// Pending reports whether a write is queued for the key.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}
