package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/debemdeboas/quill/internal/config"
	"github.com/debemdeboas/quill/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

const (
	MethodHS256 = "HS256"
	MethodEdDSA = "EdDSA"
)

// Claims carries the user id in the standard "sub" claim.
type Claims struct {
	jwt.RegisteredClaims
}

type Tokens struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any

	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens builds the signer described by cfg. An HS256 configuration
// without a secret gets a random one, so tokens do not survive a restart.
func NewTokens(cfg config.AuthConfig) (*Tokens, error) {
	t := &Tokens{
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}
	if t.ttl <= 0 {
		t.ttl = 7 * 24 * time.Hour
	}

	switch cfg.SigningMethod {
	case MethodHS256, "":
		secret := []byte(cfg.Secret)
		if len(secret) == 0 {
			secret = make([]byte, 32)
			if _, err := rand.Read(secret); err != nil {
				return nil, fmt.Errorf("failed to generate token secret: %w", err)
			}
			authLogger.Warn().Msg("No token secret configured, using a random one")
		}
		t.method = jwt.SigningMethodHS256
		t.signKey = secret
		t.verifyKey = secret

	case MethodEdDSA:
		priv, err := ParseEd25519PrivateKey(cfg.PrivateKeyPEM)
		if err != nil {
			return nil, err
		}
		pub := priv.Public().(ed25519.PublicKey)
		if cfg.PublicKeyPEM != "" {
			configured, err := ParseEd25519PublicKey(cfg.PublicKeyPEM)
			if err != nil {
				return nil, err
			}
			if !configured.Equal(pub) {
				return nil, errors.New("public key does not match private key")
			}
		}
		t.method = jwt.SigningMethodEdDSA
		t.signKey = priv
		t.verifyKey = pub

	default:
		return nil, fmt.Errorf("unsupported signing method %q", cfg.SigningMethod)
	}

	return t, nil
}

func (t *Tokens) Issue(userID model.UserID) (string, error) {
	now := t.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(userID),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(t.method, claims).SignedString(t.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, issuer and expiry and returns the subject.
func (t *Tokens) Verify(tokenString string) (model.UserID, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return t.verifyKey, nil },
		jwt.WithValidMethods([]string{t.method.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return model.UserID(claims.Subject), nil
}
