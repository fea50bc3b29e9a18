// Package repository persists posts and users and mirrors published posts.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/debemdeboas/quill/internal/model"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

var (
	// ErrNotFound is returned when a scoped read, update or delete matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects an insert.
	ErrDuplicate = errors.New("duplicate record")
)

var repoLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}

type PostRepository interface {
	CreatePost(ctx context.Context, post *model.Post) error
	// UpdatePost changes title, content and excerpt of a post owned by post.AuthorID.
	UpdatePost(ctx context.Context, post *model.Post) error
	DeletePost(ctx context.Context, id model.PostID, author model.UserID) error
	GetPost(ctx context.Context, id model.PostID) (*model.Post, error)
	ListPosts(ctx context.Context, page model.Page) ([]model.Post, error)
	CountPosts(ctx context.Context) (int, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// Archive mirrors published posts outside the database.
type Archive interface {
	PutPost(ctx context.Context, post *model.Post) error
	DeletePost(ctx context.Context, id model.PostID) error
}

func now() time.Time {
	return time.Now().UTC()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
