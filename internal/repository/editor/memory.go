package editor

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/debemdeboas/quill/internal/model"
	"github.com/debemdeboas/quill/internal/util"
	"github.com/google/uuid"
)

type MemoryRepository struct {
	drafts sync.Map // model.DraftID -> model.Draft
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) CreateDraft(_ context.Context, draft *model.Draft) error {
	now := time.Now().UTC()
	draft.ID = model.DraftID(uuid.New().String())
	draft.CreatedAt = now
	draft.UpdatedAt = now
	draft.ContentHash = util.ContentHashString(draft.Content)

	m.drafts.Store(draft.ID, *draft)
	return nil
}

func (m *MemoryRepository) UpdateDraft(_ context.Context, draft *model.Draft) error {
	for {
		v, ok := m.drafts.Load(draft.ID)
		if !ok {
			return ErrNotFound
		}
		stored := v.(model.Draft)
		if stored.AuthorID != draft.AuthorID {
			return ErrNotFound
		}

		stored.Title = draft.Title
		stored.Content = draft.Content
		stored.ContentHash = util.ContentHashString(draft.Content)
		stored.UpdatedAt = time.Now().UTC()

		if m.drafts.CompareAndSwap(draft.ID, v, stored) {
			*draft = stored
			return nil
		}
	}
}

func (m *MemoryRepository) GetDraft(_ context.Context, id model.DraftID, author model.UserID) (*model.Draft, error) {
	v, ok := m.drafts.Load(id)
	if !ok {
		return nil, ErrNotFound
	}
	d := v.(model.Draft)
	if d.AuthorID != author {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (m *MemoryRepository) ListDrafts(_ context.Context, author model.UserID, page model.Page) ([]model.Draft, error) {
	var drafts []model.Draft
	m.drafts.Range(func(_, v any) bool {
		if d := v.(model.Draft); d.AuthorID == author {
			drafts = append(drafts, d)
		}
		return true
	})

	slices.SortStableFunc(drafts, func(a, b model.Draft) int {
		return -a.UpdatedAt.Compare(b.UpdatedAt)
	})

	start := min(page.Offset(), len(drafts))
	end := min(start+page.Limit, len(drafts))
	return drafts[start:end], nil
}

func (m *MemoryRepository) DeleteDraft(_ context.Context, id model.DraftID, author model.UserID) error {
	v, ok := m.drafts.Load(id)
	if !ok || v.(model.Draft).AuthorID != author {
		return ErrNotFound
	}
	if !m.drafts.CompareAndDelete(id, v) {
		return ErrNotFound
	}
	return nil
}
