package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, unexpected algorithm, malformed payload or elapsed expiry.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims holds the typed JWT payload. Subject carries the username.
type Claims struct {
	Authorities []string `json:"authorities"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 access tokens. It keeps no state
// between calls, so one instance is shared by every request.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of the service that reads time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue creates a signed token for identity carrying roles.
func (s *TokenService) Issue(identity string, roles []string) (string, time.Time, error) {
	if identity == "" {
		return "", time.Time{}, errors.New("auth: issue: empty identity")
	}

	issued := s.now()
	expires := issued.Add(s.ttl)
	claims := Claims{
		Authorities: append([]string(nil), roles...),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: issue: %w", err)
	}
	return signed, expires, nil
}

// Verify parses token and returns the principal it was issued for.
func (s *TokenService) Verify(token string) (Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return Principal{}, ErrInvalidToken
	}

	return Principal{Username: claims.Subject, Roles: claims.Authorities}, nil
}
