package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/debemdeboas/quill/internal/db"
	"github.com/debemdeboas/quill/internal/model"
	"github.com/debemdeboas/quill/internal/repository"
	"github.com/rs/zerolog"
)

func TestRun(t *testing.T) {
	quiet := zerolog.Nop()
	db.SetLogger(quiet)
	repository.SetLogger(quiet)

	store := db.NewSQLite(":memory:")
	if err := store.InitDB(); err != nil {
		t.Fatalf("Failed to init database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	owner := &model.User{Name: "Owner", Email: "owner@example.com", PasswordHash: "hash"}
	if err := repository.NewDBUserRepository(store).CreateUser(ctx, owner); err != nil {
		t.Fatalf("Failed to create owner: %v", err)
	}

	dir := t.TempDir()
	files := map[string]string{
		"first.md":  "%%%\ntitle = \"First\"\ndate = 2024-01-01T00:00:00Z\n%%%\nThe first imported post",
		"second.md": "Second body text",
		"blank.md":  "   ",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	n, err := run(ctx, store, dir, "owner@example.com", 150, true)
	if err != nil || n != 2 {
		t.Fatalf("Expected dry run to find 2 posts, got %d (%v)", n, err)
	}
	posts := repository.NewDBPostRepository(store)
	if count, _ := posts.CountPosts(ctx); count != 0 {
		t.Errorf("Expected dry run to write nothing, got %d posts", count)
	}

	n, err = run(ctx, store, dir, "OWNER@example.com", 150, false)
	if err != nil || n != 2 {
		t.Fatalf("Expected 2 imported posts, got %d (%v)", n, err)
	}
	list, err := posts.ListPosts(ctx, model.NewPage(1, 10, 10, 100))
	if err != nil {
		t.Fatalf("Failed to list posts: %v", err)
	}
	for _, p := range list {
		if p.AuthorID != owner.ID {
			t.Errorf("Expected post %q to belong to the owner", p.Title)
		}
	}

	if _, err := run(ctx, store, dir, "nobody@example.com", 150, false); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected unknown owner to be not found, got %v", err)
	}
}
