// Package service implements the draft and post operations behind the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/debemdeboas/quill/internal/model"
	"github.com/debemdeboas/quill/internal/repository"
	"github.com/rs/zerolog"
)

var serviceLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	serviceLogger = l
}

// Notifier delivers draft events to the author's connected editors.
type Notifier interface {
	Notify(author model.UserID, event model.DraftEvent)
}

type nopNotifier struct{}

func (nopNotifier) Notify(model.UserID, model.DraftEvent) {}

const archiveTimeout = 30 * time.Second

// Mirror copies published posts to an Archive in the background. A nil
// Archive turns every call into a no-op.
type Mirror struct {
	archive repository.Archive
	wg      sync.WaitGroup
}

func NewMirror(archive repository.Archive) *Mirror {
	return &Mirror{archive: archive}
}

func (m *Mirror) Put(post model.Post) {
	if m == nil || m.archive == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if err := m.archive.PutPost(ctx, &post); err != nil {
			serviceLogger.Error().Err(err).Str("post_id", string(post.ID)).Msg("Failed to archive post")
		}
	}()
}

func (m *Mirror) Remove(id model.PostID) {
	if m == nil || m.archive == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if err := m.archive.DeletePost(ctx, id); err != nil {
			serviceLogger.Error().Err(err).Str("post_id", string(id)).Msg("Failed to remove archived post")
		}
	}()
}

// Wait blocks until every pending archive write has finished.
func (m *Mirror) Wait() {
	if m == nil {
		return
	}
	m.wg.Wait()
}
