package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/debemdeboas/quill/internal/cache"
	"github.com/debemdeboas/quill/internal/db"
	"github.com/debemdeboas/quill/internal/model"
	"github.com/debemdeboas/quill/internal/util"
	"github.com/debemdeboas/quill/internal/util/compression"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const selectPost = `SELECT p.id, p.title, p.content, p.content_hash, p.excerpt, p.author_id, p.created_at, p.updated_at,
    u.name AS author_name, u.email AS author_email
FROM posts p LEFT JOIN users u ON u.id = p.author_id`

type postRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Content     []byte         `db:"content"`
	ContentHash string         `db:"content_hash"`
	Excerpt     string         `db:"excerpt"`
	AuthorID    string         `db:"author_id"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	AuthorName  sql.NullString `db:"author_name"`
	AuthorEmail sql.NullString `db:"author_email"`
}

type DBPostRepository struct { // implements PostRepository
	postsCache *cache.Cache[model.PostID, *model.Post]

	db         db.DB
	compressor compression.Compressor
}

func NewDBPostRepository(db db.DB) *DBPostRepository {
	return &DBPostRepository{
		postsCache: cache.NewCache[model.PostID, *model.Post](),

		db: db,

		compressor: compression.ZstdCompressor{},
	}
}

func (r *DBPostRepository) toPost(row *postRow) (*model.Post, error) {
	content, err := r.compressor.Decompress(row.Content)
	if err != nil {
		return nil, errors.Wrapf(err, "decompressing post %s", row.ID)
	}

	post := &model.Post{
		ID:          model.PostID(row.ID),
		Title:       row.Title,
		Content:     string(content),
		Excerpt:     row.Excerpt,
		ContentHash: row.ContentHash,
		AuthorID:    model.UserID(row.AuthorID),
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	if row.AuthorName.Valid {
		post.Author = &model.AuthorSummary{
			ID:    post.AuthorID,
			Name:  row.AuthorName.String,
			Email: row.AuthorEmail.String,
		}
	}
	return post, nil
}

// CreatePost assigns an id and timestamps when they are unset.
func (r *DBPostRepository) CreatePost(ctx context.Context, post *model.Post) error {
	if post.ID == "" {
		post.ID = model.PostID(uuid.New().String())
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now()
	}
	post.UpdatedAt = post.CreatedAt

	compressed, err := r.compressor.Compress([]byte(post.Content))
	if err != nil {
		return errors.Wrap(err, "compressing post content")
	}
	post.ContentHash = util.ContentHashString(post.Content)

	_, err = r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO posts (id, title, content, content_hash, excerpt, author_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		post.ID, post.Title, compressed, post.ContentHash, post.Excerpt, post.AuthorID, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "inserting post")
	}

	repoLogger.Debug().Str("post_id", string(post.ID)).Msg("Post created")
	return nil
}

func (r *DBPostRepository) UpdatePost(ctx context.Context, post *model.Post) error {
	compressed, err := r.compressor.Compress([]byte(post.Content))
	if err != nil {
		return errors.Wrap(err, "compressing post content")
	}
	post.ContentHash = util.ContentHashString(post.Content)
	post.UpdatedAt = now()

	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		`UPDATE posts SET title = ?, content = ?, content_hash = ?, excerpt = ?, updated_at = ? WHERE id = ? AND author_id = ?`),
		post.Title, compressed, post.ContentHash, post.Excerpt, post.UpdatedAt, post.ID, post.AuthorID,
	)
	if err != nil {
		return errors.Wrap(err, "updating post")
	}
	if err := requireRow(res); err != nil {
		return err
	}

	r.postsCache.Delete(post.ID)
	repoLogger.Debug().Str("post_id", string(post.ID)).Msg("Post updated")
	return nil
}

func (r *DBPostRepository) DeletePost(ctx context.Context, id model.PostID, author model.UserID) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM posts WHERE id = ? AND author_id = ?`), id, author)
	if err != nil {
		return errors.Wrap(err, "deleting post")
	}
	if err := requireRow(res); err != nil {
		return err
	}

	r.postsCache.Delete(id)
	return nil
}

// GetPost returns a copy of the cached post, loading it on a miss.
func (r *DBPostRepository) GetPost(ctx context.Context, id model.PostID) (*model.Post, error) {
	post, err := r.postsCache.GetOrLoad(id, func() (*model.Post, error) {
		var row postRow
		err := r.db.GetContext(ctx, &row, r.db.Rebind(selectPost+` WHERE p.id = ?`), id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, errors.Wrap(err, "selecting post")
		}
		return r.toPost(&row)
	})
	if err != nil {
		return nil, err
	}
	cp := *post
	return &cp, nil
}

// ListPosts returns a page of posts, newest first.
func (r *DBPostRepository) ListPosts(ctx context.Context, page model.Page) ([]model.Post, error) {
	var rows []postRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(selectPost+` ORDER BY p.created_at DESC, p.id LIMIT ? OFFSET ?`),
		page.Limit, page.Offset())
	if err != nil {
		return nil, errors.Wrap(err, "listing posts")
	}

	posts := make([]model.Post, 0, len(rows))
	for i := range rows {
		post, err := r.toPost(&rows[i])
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, nil
}

func (r *DBPostRepository) CountPosts(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM posts`); err != nil {
		return 0, errors.Wrap(err, "counting posts")
	}
	return n, nil
}

// requireRow turns a scoped write that touched nothing into ErrNotFound.
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
