// Package auth holds the credential primitives of the server: password
// hashers, the HS256 token signer and the refresh-token digest.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sameershelar/toodo/internal/common"
)

// TokenType tells access tokens and refresh tokens apart.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

const (
	AccessTokenValidity  = 15 * time.Minute
	RefreshTokenValidity = 7 * 24 * time.Hour
)

// MinSecretLength is the smallest HS256 key the signer accepts.
const MinSecretLength = 32

// Claims is the JWT payload: sub, iat, exp and jti from the registered
// claims plus the token type.
type Claims struct {
	jwt.RegisteredClaims
	Type TokenType `json:"type"`
}

// Signer issues and checks HS256 tokens with one symmetric secret. It is
// immutable after construction and safe for concurrent use.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner copies secret; it must be at least MinSecretLength bytes.
func NewSigner(secret []byte) (*Signer, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes, got %d", MinSecretLength, len(secret))
	}
	return &Signer{secret: append([]byte(nil), secret...), now: time.Now}, nil
}

// WithClock returns a copy of the signer that reads the current time from
// now.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	c := *s
	c.now = now
	return &c
}

// Issue signs a token of the given type for subject, valid for ttl.
func (s *Signer) Issue(subject string, typ TokenType, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("empty token subject")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("non-positive token ttl %s", ttl)
	}
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Type: typ,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Signer) IssueAccess(subject string) (string, error) {
	return s.Issue(subject, AccessToken, AccessTokenValidity)
}

func (s *Signer) IssueRefresh(subject string) (string, error) {
	return s.Issue(subject, RefreshToken, RefreshTokenValidity)
}

// Inspect parses token and checks signature, expiry and type. The returned
// error wraps common.ErrInvalidToken and, where known, the narrower
// common.ErrTokenExpired or common.ErrWrongTokenType.
func (s *Signer) Inspect(token string, expected TokenType) (*Claims, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != expected {
		return nil, fmt.Errorf("%w: %w: got %q", common.ErrInvalidToken, common.ErrWrongTokenType, claims.Type)
	}
	return claims, nil
}

// Verify reports whether token is correctly signed, unexpired and of the
// expected type.
func (s *Signer) Verify(token string, expected TokenType) bool {
	_, err := s.Inspect(token, expected)
	return err == nil
}

// SubjectOf returns the sub claim of a correctly signed, unexpired token
// of any type.
func (s *Signer) SubjectOf(token string) (string, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *Signer) parse(token string) (claims *Claims, err error) {
	// The parser is not expected to panic, but the input is untrusted.
	defer func() {
		if r := recover(); r != nil {
			claims, err = nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, r)
		}
	}()

	token = StripBearer(token)
	if token == "" {
		return nil, fmt.Errorf("%w: empty", common.ErrInvalidToken)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	claims = &Claims{}
	if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", common.ErrInvalidToken)
	}
	if claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing issued at", common.ErrInvalidToken)
	}
	return claims, nil
}

// StripBearer removes surrounding whitespace and an optional
// case-insensitive "Bearer " scheme prefix.
func StripBearer(token string) string {
	token = strings.TrimSpace(token)
	if len(token) >= len(common.BearerPrefix) && strings.EqualFold(token[:len(common.BearerPrefix)], common.BearerPrefix) {
		token = token[len(common.BearerPrefix):]
	}
	return strings.TrimSpace(token)
}
