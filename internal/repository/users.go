package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/debemdeboas/quill/internal/db"
	"github.com/debemdeboas/quill/internal/model"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type userRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func (u *userRow) toUser() *model.User {
	return &model.User{
		ID:           model.UserID(u.ID),
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.UTC(),
	}
}

type DBUserRepository struct { // implements UserRepository
	db db.DB
}

func NewDBUserRepository(db db.DB) *DBUserRepository {
	return &DBUserRepository{db: db}
}

// CreateUser stores user with a lower-cased email. A taken email yields ErrDuplicate.
func (r *DBUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = model.UserID(uuid.New().String())
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now()

	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`),
		user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return errors.Wrap(err, "inserting user")
	}
	return nil
}

func (r *DBUserRepository) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return r.getOne(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (r *DBUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)))
}

func (r *DBUserRepository) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(query), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "selecting user")
	}
	return row.toUser(), nil
}
