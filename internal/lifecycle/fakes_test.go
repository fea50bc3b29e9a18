package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/debemdeboas/quill/internal/model"
)

// manualClock is a Scheduler driven by Advance.
type manualClock struct {
	mu    sync.Mutex
	now   time.Duration
	tasks []*task
}

type task struct {
	at        time.Duration
	fn        func()
	cancelled bool
}

func (c *manualClock) Schedule(delay time.Duration, fn func()) CancelFunc {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &task{at: c.now + delay, fn: fn}
	c.tasks = append(c.tasks, t)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		t.cancelled = true
	}
}

// Advance moves time forward and runs every task that came due, in order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due, rest []*task
	for _, t := range c.tasks {
		switch {
		case t.cancelled:
		case t.at <= c.now:
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	c.tasks = rest
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		c.mu.Lock()
		cancelled := t.cancelled
		c.mu.Unlock()
		if !cancelled {
			t.fn()
		}
	}
}

func (c *manualClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// fakeAPI records calls and can block or fail on demand.
type fakeAPI struct {
	mu        sync.Mutex
	saves     []model.SaveDraftRequest
	publishes []model.DraftID
	deletes   []model.DraftID
	nextID    int

	saveErr    error
	publishErr error
	deleteErr  error

	// When set, SaveDraft signals on started and waits for release.
	started chan struct{}
	release chan struct{}
}

func (f *fakeAPI) SaveDraft(_ context.Context, _ string, req model.SaveDraftRequest) (*model.Draft, error) {
	f.mu.Lock()
	f.saves = append(f.saves, req)
	started, release := f.started, f.release
	err := f.saveErr
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
		<-release
	}
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	id := req.DraftID
	if id == "" {
		f.nextID++
		id = model.DraftID(fmt.Sprintf("d-%d", f.nextID))
	}
	return &model.Draft{ID: id, Title: req.Title, Content: req.Content}, nil
}

func (f *fakeAPI) PublishDraft(_ context.Context, _ string, id model.DraftID) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.publishes = append(f.publishes, id)
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	return &model.Post{ID: model.PostID("p-" + string(id))}, nil
}

func (f *fakeAPI) DeleteDraft(_ context.Context, _ string, id model.DraftID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return f.deleteErr
}

func (f *fakeAPI) saveCalls() []model.SaveDraftRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.SaveDraftRequest(nil), f.saves...)
}

func (f *fakeAPI) creates() int {
	n := 0
	for _, s := range f.saveCalls() {
		if s.IsCreate() {
			n++
		}
	}
	return n
}

type noticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

func (l *noticeLog) Notify(n Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, n)
}

func (l *noticeLog) count(level Level) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, x := range l.notices {
		if x.Level == level {
			n++
		}
	}
	return n
}
