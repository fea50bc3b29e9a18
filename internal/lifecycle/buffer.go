package lifecycle

import (
	"sync"
	"time"
)

// Buffer debounces change notifications: fire runs once the buffer has not
// been touched for delay. Every Touch replaces the pending task.
type Buffer struct {
	mu     sync.Mutex
	sched  Scheduler
	delay  time.Duration
	fire   func()
	gen    uint64
	cancel CancelFunc
}

func NewBuffer(sched Scheduler, delay time.Duration, fire func()) *Buffer {
	return &Buffer{sched: sched, delay: delay, fire: fire}
}

func (b *Buffer) Touch() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stop()
	b.gen++
	gen := b.gen
	b.cancel = b.sched.Schedule(b.delay, func() {
		b.mu.Lock()
		// A task that lost a race with Touch or Cancel must not fire.
		if gen != b.gen || b.cancel == nil {
			b.mu.Unlock()
			return
		}
		b.cancel = nil
		b.mu.Unlock()
		b.fire()
	})
}

func (b *Buffer) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stop()
}

func (b *Buffer) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cancel != nil
}

func (b *Buffer) stop() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.gen++
}
