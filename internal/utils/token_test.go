package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestSessionToken_RoundTrip(t *testing.T) {
	tok, err := NewSessionToken(testSecret, 42, 30)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	require.NotEmpty(t, tok.JTI)
	assert.WithinDuration(t, time.Now().UTC().Add(30*time.Minute), tok.Exp, 5*time.Second)

	userID, jti, err := ParseSessionToken(testSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), userID)
	assert.Equal(t, tok.JTI, jti)
}

func TestSessionToken_UniqueJTIs(t *testing.T) {
	a, err := NewSessionToken(testSecret, 1, 30)
	require.NoError(t, err)
	b, err := NewSessionToken(testSecret, 1, 30)
	require.NoError(t, err)

	assert.NotEqual(t, a.JTI, b.JTI)
}

func TestParseSessionToken_WrongSecret(t *testing.T) {
	tok, err := NewSessionToken(testSecret, 7, 30)
	require.NoError(t, err)

	_, _, err = ParseSessionToken("some-other-secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseSessionToken_Expired(t *testing.T) {
	tok, err := NewSessionToken(testSecret, 7, -1)
	require.NoError(t, err)

	_, _, err = ParseSessionToken(testSecret, tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseSessionToken_Garbage(t *testing.T) {
	for _, raw := range []string{"", "not.a.jwt", "aaaa.bbbb.cccc"} {
		_, _, err := ParseSessionToken(testSecret, raw)
		assert.ErrorIs(t, err, ErrInvalidToken, raw)
	}
}

func TestHashJTI(t *testing.T) {
	h := HashJTI("session-id")

	assert.Len(t, h, 64) // SHA-256 hex digest
	assert.Equal(t, h, HashJTI("session-id"))
	assert.NotEqual(t, h, HashJTI("another-session-id"))
}
