package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/taskflow/internal/domain"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Identity is what a verified token asserts about its bearer.
type Identity struct {
	UserID      int64
	Email       string
	DisplayName string
}

type tokenClaims struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256-signed identity tokens. It keeps no
// server-side state, so a token stays valid until it expires.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService creates a TokenService signing with secret. A non-positive
// ttl selects DefaultTokenTTL.
func NewTokenService(secret string, ttl time.Duration, opts ...TokenOption) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	s := &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue returns a signed token for user valid for the configured TTL.
func (s *TokenService) Issue(user *domain.User) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Email:       user.Email,
		DisplayName: user.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded identity.
// Expired tokens fail with domain.ErrExpiredToken, every other defect with
// domain.ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (Identity, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, domain.ErrExpiredToken
		}
		return Identity{}, domain.ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Identity{}, domain.ErrInvalidToken
	}

	return Identity{UserID: userID, Email: claims.Email, DisplayName: claims.DisplayName}, nil
}
