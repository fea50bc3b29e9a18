package service

import (
	"context"
	"errors"
	"strings"

	"github.com/debemdeboas/quill/internal/apperr"
	"github.com/debemdeboas/quill/internal/config"
	"github.com/debemdeboas/quill/internal/metrics"
	"github.com/debemdeboas/quill/internal/model"
	"github.com/debemdeboas/quill/internal/repository"
	"github.com/debemdeboas/quill/internal/repository/editor"
	"github.com/debemdeboas/quill/internal/util"
)

type DraftService struct {
	drafts   editor.Repository
	posts    repository.PostRepository
	notifier Notifier
	mirror   *Mirror

	untitled      string
	excerptLength int
	content       config.ContentConfig
}

type DraftOption func(*DraftService)

func WithNotifier(n Notifier) DraftOption {
	return func(s *DraftService) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithMirror(m *Mirror) DraftOption {
	return func(s *DraftService) {
		s.mirror = m
	}
}

func NewDraftService(drafts editor.Repository, posts repository.PostRepository, cfg *config.Config, opts ...DraftOption) *DraftService {
	untitled := cfg.Editor.UntitledTitle
	if untitled == "" {
		untitled = model.DefaultUntitledTitle
	}
	s := &DraftService{
		drafts:        drafts,
		posts:         posts,
		notifier:      nopNotifier{},
		untitled:      untitled,
		excerptLength: cfg.Content.ExcerptLength,
		content:       cfg.Content,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save creates the draft when req carries no id and otherwise updates the
// draft scoped to (req.DraftID, author). The boolean reports a create.
func (s *DraftService) Save(ctx context.Context, author model.UserID, req model.SaveDraftRequest) (*model.Draft, bool, error) {
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Content) == "" {
		return nil, false, apperr.ValidationFailed(config.ErrTitleOrContent)
	}

	draft := &model.Draft{
		ID:       req.DraftID,
		Title:    util.Sanitize(req.Title),
		Content:  util.Sanitize(req.Content),
		AuthorID: author,
	}
	if draft.Title == "" {
		draft.Title = s.untitled
	}

	log := serviceLogger.With().Str("author_id", string(author)).Logger()

	if req.IsCreate() {
		if err := s.drafts.CreateDraft(ctx, draft); err != nil {
			metrics.DraftSaves.WithLabelValues(metrics.OutcomeFailed).Inc()
			log.Error().Err(err).Msg("Failed to create draft")
			return nil, false, apperr.StoreFailure(config.ErrSaveDraft, err)
		}
		metrics.DraftSaves.WithLabelValues(metrics.OutcomeCreated).Inc()
		log.Debug().Str("draft_id", string(draft.ID)).Msg("Draft created")
		s.notify(author, model.EventDraftSaved, draft)
		return draft, true, nil
	}

	if err := s.drafts.UpdateDraft(ctx, draft); err != nil {
		metrics.DraftSaves.WithLabelValues(metrics.OutcomeFailed).Inc()
		if errors.Is(err, editor.ErrNotFound) {
			return nil, false, apperr.NotFound(config.ErrDraftNotFound)
		}
		log.Error().Err(err).Str("draft_id", string(req.DraftID)).Msg("Failed to update draft")
		return nil, false, apperr.StoreFailure(config.ErrSaveDraft, err)
	}
	metrics.DraftSaves.WithLabelValues(metrics.OutcomeUpdated).Inc()
	s.notify(author, model.EventDraftSaved, draft)
	return draft, false, nil
}

func (s *DraftService) Get(ctx context.Context, author model.UserID, id model.DraftID) (*model.Draft, error) {
	draft, err := s.drafts.GetDraft(ctx, id, author)
	if errors.Is(err, editor.ErrNotFound) {
		return nil, apperr.NotFound(config.ErrDraftNotFound)
	}
	if err != nil {
		serviceLogger.Error().Err(err).Str("draft_id", string(id)).Msg("Failed to fetch draft")
		return nil, apperr.StoreFailure(config.ErrFetchDrafts, err)
	}
	return draft, nil
}

// List returns the author's drafts, most recently updated first.
func (s *DraftService) List(ctx context.Context, author model.UserID, number, limit int) ([]model.Draft, error) {
	page := model.NewPage(number, limit, s.content.PostsPerPage, s.content.MaxPageSize)
	drafts, err := s.drafts.ListDrafts(ctx, author, page)
	if err != nil {
		serviceLogger.Error().Err(err).Str("author_id", string(author)).Msg("Failed to list drafts")
		return nil, apperr.StoreFailure(config.ErrFetchDrafts, err)
	}
	return drafts, nil
}

func (s *DraftService) Delete(ctx context.Context, author model.UserID, id model.DraftID) error {
	err := s.drafts.DeleteDraft(ctx, id, author)
	if errors.Is(err, editor.ErrNotFound) {
		return apperr.NotFound(config.ErrDraftNotFound)
	}
	if err != nil {
		serviceLogger.Error().Err(err).Str("draft_id", string(id)).Msg("Failed to delete draft")
		return apperr.StoreFailure(config.ErrDeleteDraft, err)
	}
	s.notifier.Notify(author, model.DraftEvent{Type: model.EventDraftDeleted, DraftID: id})
	return nil
}

// Publish turns the draft into a post and then removes the draft. Once the
// post exists the publish has succeeded: a failed draft delete is logged and
// left for the janitor.
func (s *DraftService) Publish(ctx context.Context, author model.UserID, id model.DraftID) (*model.Post, error) {
	draft, err := s.Get(ctx, author, id)
	if err != nil {
		return nil, err
	}
	if !draft.Publishable() {
		metrics.DraftPublishes.WithLabelValues("rejected").Inc()
		return nil, apperr.ValidationFailed(config.ErrPublishIncomplete)
	}

	post := &model.Post{
		Title:    draft.Title,
		Content:  draft.Content,
		Excerpt:  model.Excerpt(draft.Content, s.excerptLength),
		AuthorID: author,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		metrics.DraftPublishes.WithLabelValues("failed").Inc()
		serviceLogger.Error().Err(err).Str("draft_id", string(id)).Msg("Failed to create post from draft")
		return nil, apperr.StoreFailure(config.ErrPublishDraft, err)
	}

	if err := s.drafts.DeleteDraft(ctx, id, author); err != nil {
		metrics.StrayDrafts.WithLabelValues("publish").Inc()
		serviceLogger.Warn().Err(err).
			Str("draft_id", string(id)).
			Str("post_id", string(post.ID)).
			Msg("Published draft could not be removed")
	}
	metrics.DraftPublishes.WithLabelValues("published").Inc()

	if stored, err := s.posts.GetPost(ctx, post.ID); err == nil {
		post = stored
	} else {
		serviceLogger.Warn().Err(err).Str("post_id", string(post.ID)).Msg("Failed to reload published post")
	}

	s.notifier.Notify(author, model.DraftEvent{Type: model.EventDraftPublished, DraftID: id, PostID: post.ID, Title: post.Title})
	s.mirror.Put(*post)
	return post, nil
}

func (s *DraftService) notify(author model.UserID, t model.EventType, d *model.Draft) {
	s.notifier.Notify(author, model.DraftEvent{Type: t, DraftID: d.ID, Title: d.Title})
}
