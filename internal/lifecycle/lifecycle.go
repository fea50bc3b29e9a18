// Package lifecycle turns a stream of editor changes into debounced,
// deduplicated draft saves and drives a draft through publish or delete.
package lifecycle

import (
	"context"
	"strings"

	"github.com/debemdeboas/quill/internal/apperr"
	"github.com/debemdeboas/quill/internal/config"
	"github.com/debemdeboas/quill/internal/model"
)

type State int

const (
	StateEmpty State = iota
	StateEditing
	StateSaving
	StateSaved
	StatePublishing
	StatePublished
	StateDeleted
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateEditing:
		return "editing"
	case StateSaving:
		return "saving"
	case StateSaved:
		return "saved"
	case StatePublishing:
		return "publishing"
	case StatePublished:
		return "published"
	case StateDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Terminal reports whether the session has ended.
func (s State) Terminal() bool {
	return s == StatePublished || s == StateDeleted
}

var (
	ErrSaveInFlight = apperr.New(apperr.KindConflict, "A save is already in progress")
	ErrNoCredential = apperr.AuthenticationRequired(config.ErrAuthenticationRequired)
	ErrClosed       = apperr.New(apperr.KindConflict, "Editing session has ended")
	ErrNotSaved     = apperr.ValidationFailed("Draft has not been saved yet")
)

// Snapshot is the editor's (title, content) pair at one point in time.
type Snapshot struct {
	Title   string
	Content string
}

// Blank reports whether both fields are empty or whitespace.
func (s Snapshot) Blank() bool {
	return strings.TrimSpace(s.Title) == "" && strings.TrimSpace(s.Content) == ""
}

func (s Snapshot) Publishable() bool {
	return strings.TrimSpace(s.Title) != "" && strings.TrimSpace(s.Content) != ""
}

// DraftAPI is the remote draft store.
type DraftAPI interface {
	SaveDraft(ctx context.Context, token string, req model.SaveDraftRequest) (*model.Draft, error)
	PublishDraft(ctx context.Context, token string, id model.DraftID) (*model.Post, error)
	DeleteDraft(ctx context.Context, token string, id model.DraftID) error
}

// TokenFunc returns the current bearer credential, or "" when signed out.
type TokenFunc func() string

func StaticToken(token string) TokenFunc {
	return func() string { return token }
}

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// Notice is a transient message for the user, like a toast.
type Notice struct {
	Level   Level
	Message string
	Err     error
}

type Notifier interface {
	Notify(n Notice)
}

type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type nopNotifier struct{}

func (nopNotifier) Notify(Notice) {}
