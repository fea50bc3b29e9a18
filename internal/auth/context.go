package auth

import (
	"context"

	"github.com/debemdeboas/quill/internal/model"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUserID holds the verified user id.
	ContextKeyUserID ContextKey = "userID"
	// ContextKeyTokenError holds the reason a presented token was rejected.
	ContextKeyTokenError ContextKey = "tokenError"
)

func ContextWithUserID(ctx context.Context, userID model.UserID) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

func UserIDFromContext(ctx context.Context) (model.UserID, bool) {
	userID, ok := ctx.Value(ContextKeyUserID).(model.UserID)
	return userID, ok && userID != ""
}

func contextWithTokenError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, ContextKeyTokenError, err)
}

func tokenErrorFromContext(ctx context.Context) error {
	err, _ := ctx.Value(ContextKeyTokenError).(error)
	return err
}
