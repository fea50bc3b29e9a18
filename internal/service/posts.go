package service

import (
	"context"
	"errors"

	"github.com/debemdeboas/quill/internal/apperr"
	"github.com/debemdeboas/quill/internal/config"
	"github.com/debemdeboas/quill/internal/model"
	"github.com/debemdeboas/quill/internal/repository"
	"github.com/debemdeboas/quill/internal/util"
	"github.com/debemdeboas/quill/internal/validation"
)

// PostPage is one page of the public post listing.
type PostPage struct {
	Posts []model.Post `json:"posts"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
	Total int          `json:"total"`
}

type PostService struct {
	posts   repository.PostRepository
	mirror  *Mirror
	content config.ContentConfig
}

func NewPostService(posts repository.PostRepository, content config.ContentConfig, mirror *Mirror) *PostService {
	return &PostService{posts: posts, mirror: mirror, content: content}
}

func (s *PostService) sanitize(in model.PostInput) (model.PostInput, error) {
	clean := model.PostInput{Title: util.Sanitize(in.Title), Content: util.Sanitize(in.Content)}
	if err := validation.Post(clean, s.content); err != nil {
		return clean, err
	}
	return clean, nil
}

func (s *PostService) Create(ctx context.Context, author model.UserID, in model.PostInput) (*model.Post, error) {
	clean, err := s.sanitize(in)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:    clean.Title,
		Content:  clean.Content,
		Excerpt:  model.Excerpt(clean.Content, s.content.ExcerptLength),
		AuthorID: author,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		serviceLogger.Error().Err(err).Str("author_id", string(author)).Msg("Failed to create post")
		return nil, apperr.StoreFailure(config.ErrCreatePost, err)
	}

	post = s.reload(ctx, post)
	s.mirror.Put(*post)
	return post, nil
}

// owned loads a post and checks that author may change it.
func (s *PostService) owned(ctx context.Context, author model.UserID, id model.PostID, notOwner string) (*model.Post, error) {
	post, err := s.posts.GetPost(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(config.ErrPostNotFound)
	}
	if err != nil {
		serviceLogger.Error().Err(err).Str("post_id", string(id)).Msg("Failed to fetch post")
		return nil, apperr.StoreFailure(config.ErrFetchPosts, err)
	}
	if post.AuthorID != author {
		return nil, apperr.Unauthorized(notOwner)
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, author model.UserID, id model.PostID, in model.PostInput) (*model.Post, error) {
	clean, err := s.sanitize(in)
	if err != nil {
		return nil, err
	}

	post, err := s.owned(ctx, author, id, config.ErrPostUpdateNotOwner)
	if err != nil {
		return nil, err
	}

	post.Title = clean.Title
	post.Content = clean.Content
	post.Excerpt = model.Excerpt(clean.Content, s.content.ExcerptLength)
	err = s.posts.UpdatePost(ctx, post)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(config.ErrPostNotFound)
	}
	if err != nil {
		serviceLogger.Error().Err(err).Str("post_id", string(id)).Msg("Failed to update post")
		return nil, apperr.StoreFailure(config.ErrUpdatePost, err)
	}

	post = s.reload(ctx, post)
	s.mirror.Put(*post)
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, author model.UserID, id model.PostID) error {
	if _, err := s.owned(ctx, author, id, config.ErrPostDeleteNotOwner); err != nil {
		return err
	}

	err := s.posts.DeletePost(ctx, id, author)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(config.ErrPostNotFound)
	}
	if err != nil {
		serviceLogger.Error().Err(err).Str("post_id", string(id)).Msg("Failed to delete post")
		return apperr.StoreFailure(config.ErrDeletePost, err)
	}

	s.mirror.Remove(id)
	return nil
}

func (s *PostService) Get(ctx context.Context, id model.PostID) (*model.Post, error) {
	post, err := s.posts.GetPost(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(config.ErrPostNotFound)
	}
	if err != nil {
		serviceLogger.Error().Err(err).Str("post_id", string(id)).Msg("Failed to fetch post")
		return nil, apperr.StoreFailure(config.ErrFetchPosts, err)
	}
	return post, nil
}

func (s *PostService) List(ctx context.Context, number, limit int) (*PostPage, error) {
	page := model.NewPage(number, limit, s.content.PostsPerPage, s.content.MaxPageSize)

	posts, err := s.posts.ListPosts(ctx, page)
	if err != nil {
		serviceLogger.Error().Err(err).Msg("Failed to list posts")
		return nil, apperr.StoreFailure(config.ErrFetchPosts, err)
	}
	total, err := s.posts.CountPosts(ctx)
	if err != nil {
		serviceLogger.Error().Err(err).Msg("Failed to count posts")
		return nil, apperr.StoreFailure(config.ErrFetchPosts, err)
	}

	return &PostPage{Posts: posts, Page: page.Number, Limit: page.Limit, Total: total}, nil
}

// reload fetches the stored post so the response carries the author summary.
func (s *PostService) reload(ctx context.Context, post *model.Post) *model.Post {
	stored, err := s.posts.GetPost(ctx, post.ID)
	if err != nil {
		serviceLogger.Warn().Err(err).Str("post_id", string(post.ID)).Msg("Failed to reload post")
		return post
	}
	return stored
}
