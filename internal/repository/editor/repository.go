// Package editor stores drafts. Every read and write is scoped by the
// (draft id, author id) pair.
package editor

import (
	"context"

	"github.com/debemdeboas/quill/internal/model"
	"github.com/debemdeboas/quill/internal/repository"
)

// ErrNotFound is returned when no draft matches the (id, author) scope.
var ErrNotFound = repository.ErrNotFound

type Repository interface {
	// CreateDraft assigns a new id and timestamps to draft and stores it.
	CreateDraft(ctx context.Context, draft *model.Draft) error
	// UpdateDraft overwrites title and content of the draft matching
	// (draft.ID, draft.AuthorID). A missing or foreign draft is ErrNotFound.
	UpdateDraft(ctx context.Context, draft *model.Draft) error
	GetDraft(ctx context.Context, id model.DraftID, author model.UserID) (*model.Draft, error)
	// ListDrafts returns the author's drafts, most recently updated first.
	ListDrafts(ctx context.Context, author model.UserID, page model.Page) ([]model.Draft, error)
	DeleteDraft(ctx context.Context, id model.DraftID, author model.UserID) error
}

// Sweeper removes drafts left behind after their content was published.
type Sweeper interface {
	DeletePublishedDrafts(ctx context.Context) (int64, error)
}
