package lifecycle

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/debemdeboas/quill/internal/apperr"
	"github.com/debemdeboas/quill/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quiet = 2100 * time.Millisecond

func newManager(api *fakeAPI, opts ...Option) (*Manager, *manualClock, *noticeLog) {
	clock := &manualClock{}
	notices := &noticeLog{}
	opts = append([]Option{WithScheduler(clock), WithNotifier(notices)}, opts...)
	return NewManager(api, StaticToken("token"), opts...), clock, notices
}

func TestNewDraftAutosave(t *testing.T) {
	api := &fakeAPI{}
	m, clock, notices := newManager(api)
	assert.Equal(t, StateEmpty, m.State())

	m.Update("Hello", "")
	assert.Equal(t, StateEditing, m.State())
	clock.Advance(quiet)

	saves := api.saveCalls()
	require.Len(t, saves, 1)
	assert.Equal(t, model.SaveDraftRequest{Title: "Hello", Content: ""}, saves[0])
	assert.Equal(t, model.DraftID("d-1"), m.DraftID())
	assert.Equal(t, StateSaved, m.State())
	assert.Equal(t, 1, notices.count(LevelSuccess))
}

func TestExistingDraftUpdates(t *testing.T) {
	api := &fakeAPI{}
	m, clock, _ := newManager(api, WithDraft(&model.Draft{ID: "42", Title: "Hello", Content: ""}))
	assert.Equal(t, StateSaved, m.State())

	m.Update("Hello", "World")
	clock.Advance(quiet)

	saves := api.saveCalls()
	require.Len(t, saves, 1)
	assert.Equal(t, model.DraftID("42"), saves[0].DraftID)
	assert.Equal(t, "World", saves[0].Content)
	assert.Zero(t, api.creates())
}

func TestAutosaveUsesLatestValues(t *testing.T) {
	api := &fakeAPI{}
	m, clock, _ := newManager(api)

	for _, title := range []string{"H", "He", "Hel", "Hell", "Hello"} {
		m.Update(title, "")
		clock.Advance(500 * time.Millisecond)
	}
	assert.Empty(t, api.saveCalls(), "no save while typing")

	clock.Advance(quiet)
	saves := api.saveCalls()
	require.Len(t, saves, 1)
	assert.Equal(t, "Hello", saves[0].Title)
}

func TestBlankDraftIsNotSaved(t *testing.T) {
	api := &fakeAPI{}
	m, clock, _ := newManager(api)

	m.Update("   ", "\n\t")
	clock.Advance(quiet)
	assert.Empty(t, api.saveCalls())
	assert.Equal(t, StateEmpty, m.State())

	require.NoError(t, m.Save(context.Background()))
	assert.Empty(t, api.saveCalls())
}

func TestUntitledDraft(t *testing.T) {
	api := &fakeAPI{}
	m, clock, _ := newManager(api)

	m.Update("", "Some content")
	clock.Advance(quiet)

	saves := api.saveCalls()
	require.Len(t, saves, 1)
	assert.Equal(t, model.DefaultUntitledTitle, saves[0].Title)

	// The placeholder is not an edit: nothing more to save.
	clock.Advance(quiet)
	require.NoError(t, m.Save(context.Background()))
	assert.Len(t, api.saveCalls(), 1)
}

func TestManualSaveIsIdempotent(t *testing.T) {
	api := &fakeAPI{}
	m, clock, _ := newManager(api)
	ctx := context.Background()

	m.Update("Title", "Body")
	require.NoError(t, m.Save(ctx))
	require.NoError(t, m.Save(ctx))
	assert.Len(t, api.saveCalls(), 1)

	// The manual save preempted the pending autosave.
	clock.Advance(quiet)
	assert.Len(t, api.saveCalls(), 1)
}

func TestAtMostOneSaveInFlight(t *testing.T) {
	api := &fakeAPI{started: make(chan struct{}), release: make(chan struct{})}
	m, clock, notices := newManager(api)
	ctx := context.Background()

	m.Update("Hello", "")
	done := make(chan error, 1)
	go func() { done <- m.Save(ctx) }()
	<-api.started
	assert.True(t, m.IsSaving())

	// A second manual save and an autosave are both dropped silently.
	m.Update("Hello again", "")
	require.NoError(t, m.Save(ctx))
	m.Update("Hello again!", "")
	clock.Advance(quiet)
	assert.Len(t, api.saveCalls(), 1)
	assert.Zero(t, notices.count(LevelError))

	close(api.release)
	require.NoError(t, <-done)
	assert.Equal(t, model.DraftID("d-1"), m.DraftID())
	assert.Equal(t, StateEditing, m.State(), "edits made during the save are still pending")

	// The finished save re-armed the buffer; the follow-up is an update.
	api.mu.Lock()
	api.started = nil
	api.mu.Unlock()
	clock.Advance(quiet)

	saves := api.saveCalls()
	require.Len(t, saves, 2)
	assert.Equal(t, 1, api.creates())
	assert.Equal(t, model.DraftID("d-1"), saves[1].DraftID)
	assert.Equal(t, "Hello again!", saves[1].Title)
	assert.Equal(t, StateSaved, m.State())
}

func TestSaveWithoutCredential(t *testing.T) {
	api := &fakeAPI{}
	clock := &manualClock{}
	m := NewManager(api, StaticToken(""), WithScheduler(clock))

	m.Update("Hello", "")
	err := m.Save(context.Background())
	assert.True(t, errors.Is(err, apperr.ErrAuthenticationRequired))
	assert.Empty(t, api.saveCalls())
	assert.True(t, m.Dirty())
}

func TestFailedSaveKeepsEditsAndRetriesOnNextCycle(t *testing.T) {
	api := &fakeAPI{saveErr: apperr.NetworkFailure("Network error", errors.New("connection refused"))}
	m, clock, notices := newManager(api)

	m.Update("Hello", "")
	clock.Advance(quiet)
	assert.Len(t, api.saveCalls(), 1)
	assert.Equal(t, 1, notices.count(LevelError))
	assert.Equal(t, StateEditing, m.State())
	assert.True(t, m.Dirty())
	assert.Empty(t, m.DraftID())

	// No automatic retry.
	clock.Advance(10 * quiet)
	assert.Len(t, api.saveCalls(), 1)

	api.mu.Lock()
	api.saveErr = nil
	api.mu.Unlock()
	m.Update("Hello world", "")
	clock.Advance(quiet)

	saves := api.saveCalls()
	require.Len(t, saves, 2)
	assert.Equal(t, "Hello world", saves[1].Title)
	assert.True(t, saves[1].IsCreate())
	assert.Equal(t, StateSaved, m.State())
}

func TestUpdateOfVanishedDraftIsNotFound(t *testing.T) {
	api := &fakeAPI{saveErr: apperr.NotFound("Draft not found")}
	m, _, notices := newManager(api, WithDraft(&model.Draft{ID: "42", Title: "Old"}))

	m.Update("New", "")
	err := m.Save(context.Background())
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Equal(t, model.DraftID("42"), m.DraftID())
	assert.Equal(t, 1, notices.count(LevelError))
}

func TestPublish(t *testing.T) {
	api := &fakeAPI{}
	m, clock, _ := newManager(api)
	ctx := context.Background()

	m.Update("My Post", strings.Repeat("A", 200))
	post, err := m.Publish(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.PostID("p-d-1"), post.ID)
	assert.Equal(t, StatePublished, m.State())
	assert.Len(t, api.saveCalls(), 1, "pending edits are saved before publishing")
	assert.Equal(t, []model.DraftID{"d-1"}, api.publishes)

	// The session is over.
	m.Update("After", "publish")
	clock.Advance(quiet)
	assert.Len(t, api.saveCalls(), 1)
	_, err = m.Publish(ctx)
	assert.True(t, errors.Is(err, ErrClosed))
	assert.Zero(t, clock.pending())
}

func TestPublishWaitsForSaveInFlight(t *testing.T) {
	api := &fakeAPI{started: make(chan struct{}), release: make(chan struct{})}
	m, _, notices := newManager(api)
	ctx := context.Background()
	body := strings.Repeat("A", 200)

	m.Update("My Post", body)
	saved := make(chan error, 1)
	go func() { saved <- m.Save(ctx) }()
	<-api.started

	// Later saves go straight through.
	api.mu.Lock()
	api.started = nil
	api.mu.Unlock()

	m.Update("My Post", body+" and more")
	type result struct {
		post *model.Post
		err  error
	}
	published := make(chan result, 1)
	go func() {
		post, err := m.Publish(ctx)
		published <- result{post, err}
	}()

	select {
	case r := <-published:
		t.Fatalf("Publish returned before the save finished: %v", r.err)
	case <-time.After(50 * time.Millisecond):
	}

	close(api.release)
	require.NoError(t, <-saved)
	r := <-published
	require.NoError(t, r.err)
	assert.Equal(t, model.PostID("p-d-1"), r.post.ID)
	assert.Equal(t, StatePublished, m.State())

	saves := api.saveCalls()
	require.Len(t, saves, 2, "edits made during the save are saved before publishing")
	assert.Equal(t, 1, api.creates())
	assert.Equal(t, model.DraftID("d-1"), saves[1].DraftID)
	assert.Equal(t, body+" and more", saves[1].Content)
	assert.Equal(t, []model.DraftID{"d-1"}, api.publishes)
	assert.Zero(t, notices.count(LevelError))
}

func TestPublishWaitHonorsContext(t *testing.T) {
	api := &fakeAPI{started: make(chan struct{}), release: make(chan struct{})}
	m, _, _ := newManager(api)

	m.Update("My Post", strings.Repeat("A", 200))
	saved := make(chan error, 1)
	go func() { saved <- m.Save(context.Background()) }()
	<-api.started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Publish(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, api.publishes)

	close(api.release)
	require.NoError(t, <-saved)
	assert.Equal(t, StateSaved, m.State())
}

func TestPublishIncomplete(t *testing.T) {
	testCases := []struct {
		name           string
		title, content string
	}{
		{"empty", "", ""},
		{"no content", "My Post", " "},
		{"no title", "", "Body"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAPI{}
			m, _, _ := newManager(api, WithDraft(&model.Draft{ID: "42", Title: tc.title, Content: tc.content}))

			_, err := m.Publish(context.Background())
			assert.True(t, errors.Is(err, apperr.ErrValidationFailed))
			assert.Empty(t, api.publishes)
			assert.Empty(t, api.saveCalls())
			assert.Equal(t, StateSaved, m.State())
		})
	}
}

func TestPublishFailureKeepsSession(t *testing.T) {
	api := &fakeAPI{publishErr: apperr.StoreFailure("Failed to publish draft", errors.New("boom"))}
	m, _, notices := newManager(api, WithDraft(&model.Draft{ID: "42", Title: "Title", Content: "Body"}))

	_, err := m.Publish(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateSaved, m.State())
	assert.Equal(t, model.DraftID("42"), m.DraftID())
	assert.Equal(t, 1, notices.count(LevelError))
}

func TestDelete(t *testing.T) {
	t.Run("saved draft", func(t *testing.T) {
		api := &fakeAPI{}
		m, clock, _ := newManager(api)
		m.Update("Doomed", "")
		clock.Advance(quiet)

		m.Update("Doomed!", "")
		require.NoError(t, m.Delete(context.Background()))
		assert.Equal(t, []model.DraftID{"d-1"}, api.deletes)
		assert.Equal(t, StateDeleted, m.State())

		clock.Advance(quiet)
		assert.Len(t, api.saveCalls(), 1, "pending autosave was cancelled")
		assert.False(t, m.Dirty())
	})

	t.Run("never saved", func(t *testing.T) {
		api := &fakeAPI{}
		m, _, _ := newManager(api)
		m.Update("Scratch", "")
		require.NoError(t, m.Delete(context.Background()))
		assert.Empty(t, api.deletes)
		assert.Equal(t, StateDeleted, m.State())
	})

	t.Run("not while saving", func(t *testing.T) {
		api := &fakeAPI{started: make(chan struct{}), release: make(chan struct{})}
		m, _, _ := newManager(api)
		m.Update("Busy", "")
		done := make(chan error, 1)
		go func() { done <- m.Save(context.Background()) }()
		<-api.started

		assert.True(t, errors.Is(m.Delete(context.Background()), ErrSaveInFlight))
		close(api.release)
		require.NoError(t, <-done)
		require.NoError(t, m.Delete(context.Background()))
	})

	t.Run("failure keeps the draft", func(t *testing.T) {
		api := &fakeAPI{deleteErr: apperr.NotFound("Draft not found")}
		m, _, _ := newManager(api, WithDraft(&model.Draft{ID: "42", Title: "Kept"}))
		assert.Error(t, m.Delete(context.Background()))
		assert.Equal(t, StateSaved, m.State())
	})
}

func TestFlush(t *testing.T) {
	api := &fakeAPI{}
	m, clock, _ := newManager(api)
	ctx := context.Background()

	require.NoError(t, m.Flush(ctx))
	assert.Empty(t, api.saveCalls())

	m.Update("Unsaved", "work")
	assert.True(t, m.Dirty())
	require.NoError(t, m.Flush(ctx))
	assert.Len(t, api.saveCalls(), 1)
	assert.False(t, m.Dirty())

	clock.Advance(quiet)
	assert.Len(t, api.saveCalls(), 1, "flush cancelled the pending autosave")
}

func TestFlushReportsFailure(t *testing.T) {
	api := &fakeAPI{saveErr: errors.New("connection reset")}
	m, _, _ := newManager(api)
	m.Update("Unsaved", "")
	assert.Error(t, m.Flush(context.Background()))
	assert.True(t, m.Dirty())
}

func TestCloseCancelsPendingAutosave(t *testing.T) {
	api := &fakeAPI{}
	m, clock, _ := newManager(api)

	m.Update("Hello", "")
	m.Close()
	clock.Advance(quiet)
	assert.Empty(t, api.saveCalls())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "publishing", StatePublishing.String())
	assert.True(t, StateDeleted.Terminal())
	assert.False(t, StateSaved.Terminal())
}
