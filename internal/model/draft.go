package model

import (
	"strings"
	"time"
)

type DraftID string

const DefaultUntitledTitle = "Untitled Draft"

// Draft is an unpublished, author-owned piece of writing. Title and content
// may both be empty in memory; the store never holds a draft with both empty.
type Draft struct {
	ID DraftID `json:"id"`

	Title   string `json:"title"`
	Content string `json:"content"`

	ContentHash string `json:"-"`

	AuthorID UserID         `json:"author_id"`
	Author   *AuthorSummary `json:"author,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Publishable reports whether the draft has both a title and content.
func (d *Draft) Publishable() bool {
	return strings.TrimSpace(d.Title) != "" && strings.TrimSpace(d.Content) != ""
}

// SaveDraftRequest is one coalesced save attempt. An empty DraftID means the
// draft has never been persisted and must be created.
type SaveDraftRequest struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	DraftID DraftID `json:"draftId,omitempty"`
}

func (r SaveDraftRequest) IsCreate() bool {
	return r.DraftID == ""
}

// Page describes a 1-based page of results.
type Page struct {
	Number int
	Limit  int
}

// NewPage clamps number and limit into range; zero or negative values fall
// back to the first page and defaultLimit.
func NewPage(number, limit, defaultLimit, maxLimit int) Page {
	if number < 1 {
		number = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return Page{Number: number, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}
