// Package auth issues and verifies bearer tokens, hashes passwords and
// exposes the authenticated user id to handlers.
package auth

import "github.com/rs/zerolog"

var authLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	authLogger = l
}
