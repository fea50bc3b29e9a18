package auth

import (
	"net/http"
	"strings"

	"github.com/debemdeboas/quill/internal/apperr"
	"github.com/debemdeboas/quill/internal/config"
	"github.com/debemdeboas/quill/internal/model"
	"github.com/rs/zerolog"
)

// Verifier turns a bearer token into a user id.
type Verifier interface {
	Verify(token string) (model.UserID, error)
}

// WithBearerAuthorization verifies the Authorization header when present and
// stores the user id in the request context. Requests without a valid token
// pass through anonymously; RequireUser decides whether that is acceptable.
func WithBearerAuthorization(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(config.HAuthorization)
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			token, ok := strings.CutPrefix(header, config.BearerPrefix)
			if !ok || strings.TrimSpace(token) == "" {
				next.ServeHTTP(w, r.WithContext(contextWithTokenError(ctx, errMalformedHeader)))
				return
			}

			userID, err := v.Verify(strings.TrimSpace(token))
			if err != nil {
				zerolog.Ctx(ctx).Debug().Err(err).Msg("Rejected bearer token")
				next.ServeHTTP(w, r.WithContext(contextWithTokenError(ctx, err)))
				return
			}

			l := zerolog.Ctx(ctx).With().Str("user_id", string(userID)).Logger()
			ctx = l.WithContext(ContextWithUserID(ctx, userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

var errMalformedHeader = apperr.AuthenticationRequired("malformed authorization header")

// RequireUser returns the authenticated user id, or AuthenticationRequired
// naming whether the token was missing or rejected.
func RequireUser(r *http.Request) (model.UserID, error) {
	if userID, ok := UserIDFromContext(r.Context()); ok {
		return userID, nil
	}
	if tokenErrorFromContext(r.Context()) != nil {
		return "", apperr.AuthenticationRequired(config.ErrInvalidToken)
	}
	return "", apperr.AuthenticationRequired(config.ErrAuthenticationRequired)
}
