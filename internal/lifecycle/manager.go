package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/debemdeboas/quill/internal/apperr"
	"github.com/debemdeboas/quill/internal/config"
	"github.com/debemdeboas/quill/internal/model"
	"github.com/rs/zerolog"
)

const DefaultDelay = 2 * time.Second

// Manager is the draft editing state machine. Feed it every change with
// Update; it autosaves after the quiet interval, and exposes manual save,
// publish, delete and a shutdown Flush.
type Manager struct {
	session  *Session
	saver    *Saver
	buffer   *Buffer
	api      DraftAPI
	token    TokenFunc
	notifier Notifier
	log      zerolog.Logger

	delay    time.Duration
	sched    Scheduler
	untitled string
	initial  *model.Draft
}

type Option func(*Manager)

func WithDelay(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.delay = d
		}
	}
}

func WithScheduler(s Scheduler) Option {
	return func(m *Manager) { m.sched = s }
}

func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

func WithUntitled(title string) Option {
	return func(m *Manager) { m.untitled = title }
}

// WithDraft resumes editing a draft that already exists in the store.
func WithDraft(d *model.Draft) Option {
	return func(m *Manager) { m.initial = d }
}

func NewManager(api DraftAPI, token TokenFunc, opts ...Option) *Manager {
	m := &Manager{
		session:  &Session{},
		api:      api,
		token:    token,
		notifier: nopNotifier{},
		log:      zerolog.Nop(),
		delay:    DefaultDelay,
		sched:    TimerScheduler(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if d := m.initial; d != nil {
		snap := Snapshot{Title: d.Title, Content: d.Content}
		m.session.draftID = d.ID
		m.session.current = snap
		m.session.lastSaved = &snap
		m.session.state = StateSaved
	}

	m.saver = NewSaver(api, token, m.untitled)
	m.buffer = NewBuffer(m.sched, m.delay, m.autosave)
	return m
}

func (m *Manager) State() State {
	m.session.mu.Lock()
	defer m.session.mu.Unlock()
	return m.session.state
}

func (m *Manager) DraftID() model.DraftID {
	m.session.mu.Lock()
	defer m.session.mu.Unlock()
	return m.session.draftID
}

func (m *Manager) IsSaving() bool {
	m.session.mu.Lock()
	defer m.session.mu.Unlock()
	return m.session.inFlight && m.session.state == StateSaving
}

// Dirty reports edits that have not been saved yet.
func (m *Manager) Dirty() bool {
	m.session.mu.Lock()
	defer m.session.mu.Unlock()
	return !m.session.state.Terminal() && m.session.dirtyLocked()
}

// Update records the editor's current title and content and restarts the
// quiet interval.
func (m *Manager) Update(title, content string) {
	if m.session.edit(Snapshot{Title: title, Content: content}) {
		m.buffer.Touch()
	}
}

func (m *Manager) autosave() {
	draft, err := m.saver.Save(context.Background(), m.session)
	switch {
	case errors.Is(err, ErrSaveInFlight):
		// Dropped: the running save finishes and re-arms the buffer if needed.
		m.log.Debug().Msg("Autosave skipped, save in flight")
	case err != nil:
		m.log.Warn().Err(err).Msg("Autosave failed")
		m.notifier.Notify(Notice{Level: LevelError, Message: apperr.Message(err, config.ErrSaveDraft), Err: err})
	case draft != nil:
		m.log.Debug().Str("draft_id", string(draft.ID)).Msg("Autosaved draft")
		m.notifier.Notify(Notice{Level: LevelSuccess, Message: "Draft saved"})
		m.rearm()
	}
}

// rearm schedules another save when edits arrived while a save was running.
func (m *Manager) rearm() {
	if m.Dirty() {
		m.buffer.Touch()
	}
}

// Save saves immediately, preempting a pending autosave. Unchanged values
// cause no request, and neither does a save while another is running.
func (m *Manager) Save(ctx context.Context) error {
	m.buffer.Cancel()

	draft, err := m.saver.Save(ctx, m.session)
	if errors.Is(err, ErrSaveInFlight) {
		// The running save re-arms the buffer if these edits miss it.
		m.log.Debug().Msg("Manual save skipped, save in flight")
		return nil
	}
	if err != nil {
		m.log.Warn().Err(err).Msg("Manual save failed")
		m.notifier.Notify(Notice{Level: LevelError, Message: apperr.Message(err, config.ErrSaveDraft), Err: err})
		return err
	}
	if draft != nil {
		m.notifier.Notify(Notice{Level: LevelSuccess, Message: "Draft saved"})
		m.rearm()
	}
	return nil
}

// Publish saves pending edits and converts the draft into a post. On success
// the session ends.
func (m *Manager) Publish(ctx context.Context) (*model.Post, error) {
	m.buffer.Cancel()

	m.session.mu.Lock()
	if m.session.state.Terminal() {
		m.session.mu.Unlock()
		return nil, ErrClosed
	}
	publishable := m.session.current.Publishable()
	m.session.mu.Unlock()

	if !publishable {
		err := apperr.ValidationFailed(config.ErrPublishIncomplete)
		m.notifier.Notify(Notice{Level: LevelError, Message: err.Message, Err: err})
		return nil, err
	}

	// Wait out a running save, then save whatever it missed.
	for {
		if err := m.Save(ctx); err != nil {
			return nil, err
		}
		m.session.mu.Lock()
		if m.session.state.Terminal() {
			m.session.mu.Unlock()
			return nil, ErrClosed
		}
		if !m.session.inFlight {
			break
		}
		idle := m.session.idle
		m.session.mu.Unlock()

		m.log.Debug().Msg("Publish waiting for save in flight")
		select {
		case <-idle:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	id := m.session.draftID
	if id == "" {
		m.session.mu.Unlock()
		return nil, ErrNotSaved
	}
	token := m.token()
	if token == "" {
		m.session.mu.Unlock()
		return nil, ErrNoCredential
	}
	prev := m.session.state
	m.session.state = StatePublishing
	m.session.beginLocked()
	m.session.mu.Unlock()

	post, err := m.api.PublishDraft(ctx, token, id)

	m.session.mu.Lock()
	m.session.endLocked()
	if err != nil {
		m.session.state = prev
		if m.session.dirtyLocked() {
			m.session.state = StateEditing
		}
		m.session.mu.Unlock()
		m.log.Warn().Err(err).Str("draft_id", string(id)).Msg("Publish failed")
		m.notifier.Notify(Notice{Level: LevelError, Message: apperr.Message(err, config.ErrPublishDraft), Err: err})
		m.rearm()
		return nil, err
	}
	m.session.state = StatePublished
	m.session.mu.Unlock()

	m.buffer.Cancel()
	m.log.Info().Str("draft_id", string(id)).Str("post_id", string(post.ID)).Msg("Draft published")
	m.notifier.Notify(Notice{Level: LevelSuccess, Message: config.MsgDraftPublished})
	return post, nil
}

// Delete removes the draft. Confirmation is the caller's job. A session that
// never saved ends without a request.
func (m *Manager) Delete(ctx context.Context) error {
	m.session.mu.Lock()
	if m.session.state.Terminal() {
		m.session.mu.Unlock()
		return ErrClosed
	}
	if m.session.inFlight {
		m.session.mu.Unlock()
		return ErrSaveInFlight
	}
	m.buffer.Cancel()

	id := m.session.draftID
	if id == "" {
		m.session.state = StateDeleted
		m.session.mu.Unlock()
		return nil
	}
	token := m.token()
	if token == "" {
		m.session.mu.Unlock()
		return ErrNoCredential
	}
	m.session.beginLocked()
	m.session.mu.Unlock()

	err := m.api.DeleteDraft(ctx, token, id)

	m.session.mu.Lock()
	m.session.endLocked()
	if err != nil {
		m.session.mu.Unlock()
		m.notifier.Notify(Notice{Level: LevelError, Message: apperr.Message(err, config.ErrDeleteDraft), Err: err})
		m.rearm()
		return err
	}
	m.session.state = StateDeleted
	m.session.mu.Unlock()

	m.notifier.Notify(Notice{Level: LevelSuccess, Message: config.MsgDraftDeleted})
	return nil
}

// Flush is the shutdown hook: it cancels the pending autosave and makes one
// best-effort attempt to save unsaved edits. It never panics; the returned
// error is informational.
func (m *Manager) Flush(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Interface("panic", r).Msg("Flush panicked")
			err = apperr.New(apperr.KindUnknown, "flush failed")
		}
	}()

	m.buffer.Cancel()
	if !m.Dirty() {
		return nil
	}
	_, err = m.saver.Save(ctx, m.session)
	if err != nil {
		m.log.Warn().Err(err).Msg("Flush save failed")
	}
	return err
}

// Close ends the session locally and cancels any pending autosave.
func (m *Manager) Close() {
	m.buffer.Cancel()
}
