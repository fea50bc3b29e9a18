package editor

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/debemdeboas/quill/internal/db"
	"github.com/debemdeboas/quill/internal/model"
	"github.com/debemdeboas/quill/internal/repository"
	"github.com/rs/zerolog"
)

const (
	alice = model.UserID("alice")
	bob   = model.UserID("bob")
)

func newDB(t *testing.T) db.DB {
	t.Helper()
	db.SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))

	d := db.NewSQLite(":memory:")
	if err := d.InitDB(); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	users := repository.NewDBUserRepository(d)
	for _, id := range []model.UserID{alice, bob} {
		u := &model.User{ID: id, Name: string(id), Email: string(id) + "@example.com", PasswordHash: "x"}
		if err := users.CreateUser(context.Background(), u); err != nil {
			t.Fatalf("Failed to create user %s: %v", id, err)
		}
	}
	return d
}

// Both implementations must honour the same (id, author) scoping rules.
func TestRepositoryContract(t *testing.T) {
	impls := map[string]func(t *testing.T) Repository{
		"memory": func(t *testing.T) Repository { return NewMemoryRepository() },
		"sqlite": func(t *testing.T) Repository { return NewDBRepository(newDB(t)) },
	}

	for name, newRepo := range impls {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)

			draft := &model.Draft{Title: "Hello", Content: "", AuthorID: alice}
			if err := repo.CreateDraft(ctx, draft); err != nil {
				t.Fatalf("Failed to create draft: %v", err)
			}
			if draft.ID == "" {
				t.Fatal("Expected an id to be assigned")
			}

			t.Run("get is scoped by author", func(t *testing.T) {
				got, err := repo.GetDraft(ctx, draft.ID, alice)
				if err != nil {
					t.Fatalf("Failed to get draft: %v", err)
				}
				if got.Title != "Hello" || got.Content != "" {
					t.Errorf("Unexpected draft %+v", got)
				}
				if _, err := repo.GetDraft(ctx, draft.ID, bob); !errors.Is(err, ErrNotFound) {
					t.Errorf("Expected ErrNotFound for another author, got %v", err)
				}
			})

			t.Run("update is scoped by author", func(t *testing.T) {
				foreign := &model.Draft{ID: draft.ID, Title: "Stolen", AuthorID: bob}
				if err := repo.UpdateDraft(ctx, foreign); !errors.Is(err, ErrNotFound) {
					t.Errorf("Expected ErrNotFound for foreign update, got %v", err)
				}

				time.Sleep(5 * time.Millisecond)
				upd := &model.Draft{ID: draft.ID, Title: "Hello", Content: "World", AuthorID: alice}
				if err := repo.UpdateDraft(ctx, upd); err != nil {
					t.Fatalf("Failed to update draft: %v", err)
				}
				if !upd.UpdatedAt.After(draft.CreatedAt) {
					t.Errorf("Expected updated_at to move forward")
				}

				got, _ := repo.GetDraft(ctx, draft.ID, alice)
				if got.Content != "World" {
					t.Errorf("Expected content 'World', got %q", got.Content)
				}
			})

			t.Run("list orders by most recent update", func(t *testing.T) {
				time.Sleep(5 * time.Millisecond)
				second := &model.Draft{Title: "Second", AuthorID: alice}
				if err := repo.CreateDraft(ctx, second); err != nil {
					t.Fatalf("Failed to create draft: %v", err)
				}
				other := &model.Draft{Title: "Bob's", AuthorID: bob}
				if err := repo.CreateDraft(ctx, other); err != nil {
					t.Fatalf("Failed to create draft: %v", err)
				}

				list, err := repo.ListDrafts(ctx, alice, model.NewPage(1, 10, 10, 100))
				if err != nil {
					t.Fatalf("Failed to list drafts: %v", err)
				}
				if len(list) != 2 {
					t.Fatalf("Expected 2 drafts for alice, got %d", len(list))
				}
				if list[0].Title != "Second" {
					t.Errorf("Expected most recently updated first, got %q", list[0].Title)
				}

				page2, _ := repo.ListDrafts(ctx, alice, model.NewPage(2, 1, 10, 100))
				if len(page2) != 1 || page2[0].ID != draft.ID {
					t.Errorf("Expected second page to hold the older draft, got %+v", page2)
				}

				empty, _ := repo.ListDrafts(ctx, alice, model.NewPage(5, 10, 10, 100))
				if len(empty) != 0 {
					t.Errorf("Expected empty page past the end, got %d", len(empty))
				}
			})

			t.Run("delete is scoped and then update no-ops", func(t *testing.T) {
				if err := repo.DeleteDraft(ctx, draft.ID, bob); !errors.Is(err, ErrNotFound) {
					t.Errorf("Expected ErrNotFound for foreign delete, got %v", err)
				}
				if err := repo.DeleteDraft(ctx, draft.ID, alice); err != nil {
					t.Fatalf("Failed to delete draft: %v", err)
				}
				if err := repo.DeleteDraft(ctx, draft.ID, alice); !errors.Is(err, ErrNotFound) {
					t.Errorf("Expected second delete to be ErrNotFound, got %v", err)
				}

				stale := &model.Draft{ID: draft.ID, Title: "Late save", AuthorID: alice}
				if err := repo.UpdateDraft(ctx, stale); !errors.Is(err, ErrNotFound) {
					t.Errorf("Expected stale save after delete to be ErrNotFound, got %v", err)
				}
			})
		})
	}
}

func TestDBRepository_AuthorSummary(t *testing.T) {
	ctx := context.Background()
	repo := NewDBRepository(newDB(t))

	d := &model.Draft{Title: "T", Content: "C", AuthorID: alice}
	if err := repo.CreateDraft(ctx, d); err != nil {
		t.Fatalf("Failed to create draft: %v", err)
	}
	got, err := repo.GetDraft(ctx, d.ID, alice)
	if err != nil {
		t.Fatalf("Failed to get draft: %v", err)
	}
	if got.Author == nil || got.Author.Email != "alice@example.com" {
		t.Errorf("Expected author summary, got %+v", got.Author)
	}
}

func TestDBRepository_DeletePublishedDrafts(t *testing.T) {
	ctx := context.Background()
	d := newDB(t)
	drafts := NewDBRepository(d)
	posts := repository.NewDBPostRepository(d)

	published := &model.Draft{Title: "Published", Content: "Body that made it", AuthorID: alice}
	pending := &model.Draft{Title: "Pending", Content: "Still writing", AuthorID: alice}
	edited := &model.Draft{Title: "Edited", Content: "Old body", AuthorID: alice}
	foreign := &model.Draft{Title: "Published", Content: "Body that made it", AuthorID: bob}
	for _, dr := range []*model.Draft{published, pending, edited, foreign} {
		if err := drafts.CreateDraft(ctx, dr); err != nil {
			t.Fatalf("Failed to create draft: %v", err)
		}
	}

	time.Sleep(5 * time.Millisecond)
	for _, p := range []*model.Post{
		{Title: "Published", Content: "Body that made it", AuthorID: alice},
		{Title: "Edited", Content: "Old body", AuthorID: alice},
	} {
		if err := posts.CreatePost(ctx, p); err != nil {
			t.Fatalf("Failed to create post: %v", err)
		}
	}

	// Edited after the post was created, so it is no longer debris.
	time.Sleep(5 * time.Millisecond)
	edited.Content = "Old body"
	if err := drafts.UpdateDraft(ctx, edited); err != nil {
		t.Fatalf("Failed to update draft: %v", err)
	}

	n, err := drafts.DeletePublishedDrafts(ctx)
	if err != nil {
		t.Fatalf("Failed to sweep drafts: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 draft removed, got %d", n)
	}

	if _, err := drafts.GetDraft(ctx, published.ID, alice); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected published draft to be removed, got %v", err)
	}
	for _, keep := range []*model.Draft{pending, edited} {
		if _, err := drafts.GetDraft(ctx, keep.ID, alice); err != nil {
			t.Errorf("Expected draft %q to be kept, got %v", keep.Title, err)
		}
	}
	if _, err := drafts.GetDraft(ctx, foreign.ID, bob); err != nil {
		t.Errorf("Expected other author's draft to be kept, got %v", err)
	}
}
