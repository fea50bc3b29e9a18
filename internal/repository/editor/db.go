package editor

import (
	"context"
	"database/sql"
	"time"

	"github.com/debemdeboas/quill/internal/db"
	"github.com/debemdeboas/quill/internal/model"
	"github.com/debemdeboas/quill/internal/util"
	"github.com/debemdeboas/quill/internal/util/compression"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const selectDraft = `SELECT d.id, d.title, d.content, d.content_hash, d.author_id, d.created_at, d.updated_at,
    u.name AS author_name, u.email AS author_email
FROM drafts d LEFT JOIN users u ON u.id = d.author_id`

type draftRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Content     []byte         `db:"content"`
	ContentHash string         `db:"content_hash"`
	AuthorID    string         `db:"author_id"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	AuthorName  sql.NullString `db:"author_name"`
	AuthorEmail sql.NullString `db:"author_email"`
}

type DBRepository struct { // implements Repository and Sweeper
	db         db.DB
	compressor compression.Compressor
}

func NewDBRepository(db db.DB) *DBRepository {
	return &DBRepository{
		db:         db,
		compressor: compression.ZstdCompressor{},
	}
}

func (r *DBRepository) toDraft(row *draftRow) (*model.Draft, error) {
	content, err := r.compressor.Decompress(row.Content)
	if err != nil {
		return nil, errors.Wrapf(err, "decompressing draft %s", row.ID)
	}

	d := &model.Draft{
		ID:          model.DraftID(row.ID),
		Title:       row.Title,
		Content:     string(content),
		ContentHash: row.ContentHash,
		AuthorID:    model.UserID(row.AuthorID),
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	if row.AuthorName.Valid {
		d.Author = &model.AuthorSummary{ID: d.AuthorID, Name: row.AuthorName.String, Email: row.AuthorEmail.String}
	}
	return d, nil
}

func (r *DBRepository) CreateDraft(ctx context.Context, draft *model.Draft) error {
	compressed, err := r.compressor.Compress([]byte(draft.Content))
	if err != nil {
		return errors.Wrap(err, "compressing draft content")
	}

	now := time.Now().UTC()
	draft.ID = model.DraftID(uuid.New().String())
	draft.CreatedAt = now
	draft.UpdatedAt = now
	draft.ContentHash = util.ContentHashString(draft.Content)

	_, err = r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO drafts (id, title, content, content_hash, author_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		draft.ID, draft.Title, compressed, draft.ContentHash, draft.AuthorID, draft.CreatedAt, draft.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "inserting draft")
	}
	return nil
}

// UpdateDraft relies on the scoped UPDATE touching zero rows to detect a draft
// that was deleted or belongs to someone else; no lock is taken.
func (r *DBRepository) UpdateDraft(ctx context.Context, draft *model.Draft) error {
	compressed, err := r.compressor.Compress([]byte(draft.Content))
	if err != nil {
		return errors.Wrap(err, "compressing draft content")
	}

	draft.ContentHash = util.ContentHashString(draft.Content)
	draft.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		`UPDATE drafts SET title = ?, content = ?, content_hash = ?, updated_at = ? WHERE id = ? AND author_id = ?`),
		draft.Title, compressed, draft.ContentHash, draft.UpdatedAt, draft.ID, draft.AuthorID,
	)
	if err != nil {
		return errors.Wrap(err, "updating draft")
	}
	if err := requireRow(res); err != nil {
		return err
	}

	// Fill created_at and the author summary for the response.
	stored, err := r.GetDraft(ctx, draft.ID, draft.AuthorID)
	if err != nil {
		return err
	}
	*draft = *stored
	return nil
}

func (r *DBRepository) GetDraft(ctx context.Context, id model.DraftID, author model.UserID) (*model.Draft, error) {
	var row draftRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(selectDraft+` WHERE d.id = ? AND d.author_id = ?`), id, author)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "selecting draft")
	}
	return r.toDraft(&row)
}

func (r *DBRepository) ListDrafts(ctx context.Context, author model.UserID, page model.Page) ([]model.Draft, error) {
	var rows []draftRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(selectDraft+` WHERE d.author_id = ? ORDER BY d.updated_at DESC, d.id LIMIT ? OFFSET ?`),
		author, page.Limit, page.Offset())
	if err != nil {
		return nil, errors.Wrap(err, "listing drafts")
	}

	drafts := make([]model.Draft, 0, len(rows))
	for i := range rows {
		d, err := r.toDraft(&rows[i])
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, *d)
	}
	return drafts, nil
}

func (r *DBRepository) DeleteDraft(ctx context.Context, id model.DraftID, author model.UserID) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM drafts WHERE id = ? AND author_id = ?`), id, author)
	if err != nil {
		return errors.Wrap(err, "deleting draft")
	}
	return requireRow(res)
}

// DeletePublishedDrafts removes drafts whose title and content already exist
// as a post by the same author created at or after the draft's last update.
func (r *DBRepository) DeletePublishedDrafts(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE EXISTS (
    SELECT 1 FROM posts p
    WHERE p.author_id = drafts.author_id
      AND p.content_hash = drafts.content_hash
      AND p.title = drafts.title
      AND p.created_at >= drafts.updated_at
)`)
	if err != nil {
		return 0, errors.Wrap(err, "deleting published drafts")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "reading affected rows")
	}
	return n, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading affected rows")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
