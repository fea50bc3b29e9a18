package lifecycle

import (
	"context"
	"strings"
	"sync"

	"github.com/debemdeboas/quill/internal/model"
)

// Session is the mutable state of one editing session. The Manager owns it
// and hands it to the Saver; every field is guarded by mu.
type Session struct {
	mu        sync.Mutex
	state     State
	draftID   model.DraftID
	current   Snapshot
	lastSaved *Snapshot
	inFlight  bool
	// idle is closed when the running request finishes.
	idle      chan struct{}
}

// beginLocked marks a request as running.
func (s *Session) beginLocked() {
	s.inFlight = true
	s.idle = make(chan struct{})
}

// endLocked marks the running request as finished and wakes waiters.
func (s *Session) endLocked() {
	s.inFlight = false
	if s.idle != nil {
		close(s.idle)
		s.idle = nil
	}
}

// edit records new editor values and reports whether they changed.
func (s *Session) edit(snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() || snap == s.current {
		return false
	}
	s.current = snap
	switch s.state {
	case StateEmpty:
		if !snap.Blank() {
			s.state = StateEditing
		}
	case StateSaved:
		s.state = StateEditing
	}
	return true
}

// dirtyLocked reports unsaved, non-blank changes.
func (s *Session) dirtyLocked() bool {
	if s.current.Blank() {
		return false
	}
	return s.lastSaved == nil || *s.lastSaved != s.current
}

// Saver performs one create-or-update for a Session and reconciles the
// draft id the store assigns on the first create.
type Saver struct {
	api      DraftAPI
	token    TokenFunc
	untitled string
}

func NewSaver(api DraftAPI, token TokenFunc, untitled string) *Saver {
	if untitled == "" {
		untitled = model.DefaultUntitledTitle
	}
	return &Saver{api: api, token: token, untitled: untitled}
}

// Save sends the session's current values. It returns (nil, nil) when there
// is nothing to save, and fails without a request when no credential is set
// or another save is still running.
func (s *Saver) Save(ctx context.Context, sess *Session) (*model.Draft, error) {
	sess.mu.Lock()
	if sess.state.Terminal() {
		sess.mu.Unlock()
		return nil, ErrClosed
	}
	if !sess.dirtyLocked() {
		sess.mu.Unlock()
		return nil, nil
	}
	token := s.token()
	if token == "" {
		sess.mu.Unlock()
		return nil, ErrNoCredential
	}
	if sess.inFlight {
		sess.mu.Unlock()
		return nil, ErrSaveInFlight
	}

	snap := sess.current
	sess.beginLocked()
	sess.state = StateSaving
	req := model.SaveDraftRequest{Title: snap.Title, Content: snap.Content, DraftID: sess.draftID}
	if strings.TrimSpace(req.Title) == "" {
		req.Title = s.untitled
	}
	sess.mu.Unlock()

	draft, err := s.api.SaveDraft(ctx, token, req)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.endLocked()

	if err != nil {
		// The edits are still unsaved.
		if sess.state == StateSaving {
			sess.state = StateEditing
		}
		return nil, err
	}

	// Only the first successful create assigns the id.
	if sess.draftID == "" && draft != nil {
		sess.draftID = draft.ID
	}
	sess.lastSaved = &snap
	if sess.state == StateSaving {
		if sess.current == snap {
			sess.state = StateSaved
		} else {
			sess.state = StateEditing
		}
	}
	return draft, nil
}
