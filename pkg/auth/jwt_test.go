package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/auth"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc := auth.NewTokenService("secret", time.Hour)

	token, expires, err := svc.Issue("alice", []string{auth.RoleUser, auth.RoleAdmin})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	p, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, []string{auth.RoleUser, auth.RoleAdmin}, p.Roles)
	assert.True(t, p.IsAdmin())
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	svc := auth.NewTokenService("secret", time.Hour).WithClock(func() time.Time { return issuedAt })

	token, _, err := svc.Issue("bob", []string{auth.RoleUser})
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.NoError(t, err)

	later := svc.WithClock(func() time.Time { return issuedAt.Add(61 * time.Minute) })
	_, err = later.Verify(token)
	assert.True(t, errors.Is(err, auth.ErrInvalidToken))
}

func TestVerifyRejectsForeignSignatureAndGarbage(t *testing.T) {
	ours := auth.NewTokenService("secret", time.Hour)
	theirs := auth.NewTokenService("other-secret", time.Hour)

	token, _, err := theirs.Issue("mallory", []string{auth.RoleAdmin})
	require.NoError(t, err)

	_, err = ours.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = ours.Verify("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	claims := auth.Claims{
		Authorities: []string{auth.RoleAdmin},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "mallory",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = auth.NewTokenService("secret", time.Hour).Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRequiresExpiry(t *testing.T) {
	claims := auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "eve"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = auth.NewTokenService("secret", time.Hour).Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, auth.CheckPassword(hash, "s3cret"))
	assert.False(t, auth.CheckPassword(hash, "wrong"))
}

func TestPrincipalContext(t *testing.T) {
	assert.False(t, auth.FromContext(context.Background()).Authenticated())

	ctx := auth.WithPrincipal(context.Background(), auth.Principal{Username: "carol", Roles: []string{auth.RoleUser}})
	p := auth.FromContext(ctx)
	assert.True(t, p.Authenticated())
	assert.False(t, p.IsAdmin())
}
