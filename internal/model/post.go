// Package model defines core data structures and types for the blog application.
package model

import (
	"time"
	"unicode/utf8"
)

type PostID string

type Post struct {
	ID PostID `json:"id"`

	Title   string `json:"title"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt"`

	// Hash of the stored content, used to match posts against leftover drafts.
	ContentHash string `json:"-"`

	AuthorID UserID         `json:"author_id"`
	Author   *AuthorSummary `json:"author,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	DefaultExcerptLength = 150
	ExcerptSuffix        = "..."
)

// Excerpt returns the first n runes of content followed by an ellipsis.
// The ellipsis is always appended, even when content is shorter than n.
func Excerpt(content string, n int) string {
	if n <= 0 {
		n = DefaultExcerptLength
	}
	if utf8.RuneCountInString(content) <= n {
		return content + ExcerptSuffix
	}
	runes := []rune(content)
	return string(runes[:n]) + ExcerptSuffix
}

// PostInput is the body of POST /posts and PUT /posts/{id}.
type PostInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
