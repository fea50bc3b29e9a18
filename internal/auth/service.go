package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/debemdeboas/quill/internal/apperr"
	"github.com/debemdeboas/quill/internal/config"
	"github.com/debemdeboas/quill/internal/model"
	"github.com/debemdeboas/quill/internal/repository"
	"github.com/debemdeboas/quill/internal/util"
	"github.com/debemdeboas/quill/internal/validation"
)

// Service registers and logs in users.
type Service struct {
	users  repository.UserRepository
	tokens *Tokens
	cost   int

	// compared against when the email is unknown, so both paths run bcrypt
	dummyHash string
}

func NewService(users repository.UserRepository, tokens *Tokens, bcryptCost int) *Service {
	dummy, _ := HashPassword("quill-dummy-password", bcryptCost)
	return &Service{
		users:     users,
		tokens:    tokens,
		cost:      bcryptCost,
		dummyHash: dummy,
	}
}

func (s *Service) Tokens() *Tokens {
	return s.tokens
}

func (s *Service) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	req.Name = util.Sanitize(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password, s.cost)
	if err != nil {
		return nil, apperr.StoreFailure(config.ErrRegisterUser, err)
	}

	user := &model.User{Name: req.Name, Email: req.Email, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.ValidationFailed(config.ErrEmailTaken)
		}
		return nil, apperr.StoreFailure(config.ErrRegisterUser, err)
	}

	authLogger.Info().Str("user_id", string(user.ID)).Msg("User registered")
	return s.respond(user)
}

func (s *Service) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		CheckPassword(s.dummyHash, req.Password)
		return nil, apperr.AuthenticationRequired(config.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, apperr.StoreFailure(config.ErrInternalServer, err)
	}

	if !CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperr.AuthenticationRequired(config.ErrInvalidCredentials)
	}

	return s.respond(user)
}

// User returns the account behind a verified token.
func (s *Service) User(ctx context.Context, id model.UserID) (*model.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.AuthenticationRequired(config.ErrInvalidToken)
	}
	if err != nil {
		return nil, apperr.StoreFailure(config.ErrInternalServer, err)
	}
	return user, nil
}

func (s *Service) respond(user *model.User) (*model.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperr.StoreFailure(config.ErrInternalServer, err)
	}
	return &model.AuthResponse{User: user, Token: token}, nil
}
