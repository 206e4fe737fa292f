package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	ts := NewTokenService("test-secret", time.Hour)

	token, err := ts.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := ts.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Hour)
	verifier := NewTokenService("secret-b", time.Hour)

	token, err := issuer.Issue(7)
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpiryRejected(t *testing.T) {
	ts := NewTokenService("test-secret", -time.Minute)

	token, err := ts.Issue(7)
	require.NoError(t, err)

	_, err = ts.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbageRejected(t *testing.T) {
	ts := NewTokenService("test-secret", time.Hour)

	_, err := ts.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
