package repository

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/debemdeboas/quill/internal/model"
	"github.com/debemdeboas/quill/internal/util"
	"github.com/pkg/errors"
)

// FSImporter reads a directory of markdown files, as written by MarshalPost
// or by hand, and turns each one into a Post for author.
type FSImporter struct {
	postsPath string
	author    model.UserID
	excerpt   int
}

func NewFSImporter(postsPath string, author model.UserID, excerptLength int) *FSImporter {
	return &FSImporter{
		postsPath: postsPath,
		author:    author,
		excerpt:   excerptLength,
	}
}

// ReadPosts returns the posts found in the directory, oldest first.
func (r *FSImporter) ReadPosts() ([]model.Post, error) {
	entries, err := os.ReadDir(r.postsPath)
	if err != nil {
		return nil, errors.Wrap(err, "reading posts directory")
	}

	var posts []model.Post
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		post, err := r.readPost(entry)
		if err != nil {
			repoLogger.Warn().Err(err).Str("file", entry.Name()).Msg("Skipping post")
			continue
		}
		posts = append(posts, *post)
	}

	slices.SortStableFunc(posts, func(a, b model.Post) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return posts, nil
}

func (r *FSImporter) readPost(entry os.DirEntry) (*model.Post, error) {
	raw, err := os.ReadFile(filepath.Join(r.postsPath, entry.Name()))
	if err != nil {
		return nil, err
	}

	fileInfo, err := entry.Info()
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:     strings.TrimSuffix(entry.Name(), ".md"),
		Content:   string(raw),
		AuthorID:  r.author,
		CreatedAt: fileInfo.ModTime().UTC(),
	}

	if info, err := util.GetFrontMatter(raw); err == nil {
		if info.Title != "" {
			post.Title = info.Title
		}
		if !info.Date.IsZero() {
			post.CreatedAt = info.Date.UTC()
		}
		post.Content = string(info.Body)
	} else if !errors.Is(err, util.ErrNoFrontMatter) {
		return nil, err
	}

	post.Title = util.Sanitize(post.Title)
	post.Content = util.Sanitize(post.Content)
	if post.Title == "" || post.Content == "" {
		return nil, errors.New("post has no title or content")
	}
	post.Excerpt = model.Excerpt(post.Content, r.excerpt)

	return post, nil
}
