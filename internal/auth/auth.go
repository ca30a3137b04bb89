// Package auth guards the admin API. The operator exchanges the server-held
// admin key for a short-lived signed token; the key itself never leaves the
// server.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer   = "folio"
	audience = "folio-admin"
	subject  = "admin"

	DefaultTTL = time.Hour
)

// ErrUnauthorized is returned for a wrong key or an invalid token.
var ErrUnauthorized = errors.New("unauthorized")

type Config struct {
	// Key is the admin secret the operator logs in with.
	Key string
	// Secret signs tokens. A random secret is generated when empty, which
	// invalidates outstanding tokens on restart.
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

type Authenticator struct {
	key    []byte
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func New(cfg Config) (*Authenticator, error) {
	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		return nil, errors.New("admin key is required")
	}
	secret := cfg.Secret
	if len(secret) == 0 {
		var err error
		if secret, err = randomBytes(32); err != nil {
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Authenticator{key: []byte(key), secret: secret, ttl: ttl, now: now}, nil
}

// Login checks key and issues a token valid for the configured TTL.
func (a *Authenticator) Login(key string) (string, time.Time, error) {
	if subtle.ConstantTimeCompare([]byte(key), a.key) != 1 {
		return "", time.Time{}, ErrUnauthorized
	}

	jti, err := randomBytes(16)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token id: %w", err)
	}
	now := a.now().UTC().Truncate(time.Second)
	exp := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        hex.EncodeToString(jti),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, exp, nil
}

// Verify returns ErrUnauthorized unless token was issued by this
// authenticator and has not expired.
func (a *Authenticator) Verify(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrUnauthorized
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithSubject(subject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
