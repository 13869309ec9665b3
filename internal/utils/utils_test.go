package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()
	tok, err := NewAccessToken("s3cret", 42, "USER", 15)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), tok.Exp, 5*time.Second)

	uid, role, err := ParseAccessToken("s3cret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
	assert.Equal(t, "USER", role)
}

func TestAccessTokenRejected(t *testing.T) {
	t.Parallel()
	tok, err := NewAccessToken("s3cret", 42, "USER", 15)
	require.NoError(t, err)

	_, _, err = ParseAccessToken("other", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewAccessToken("s3cret", 42, "USER", -1)
	require.NoError(t, err)
	_, _, err = ParseAccessToken("s3cret", expired.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "42"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, _, err = ParseAccessToken("s3cret", none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = ParseAccessToken("s3cret", "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokens(t *testing.T) {
	t.Parallel()
	a, err := NewRefreshToken(7)
	require.NoError(t, err)
	b, err := NewRefreshToken(7)
	require.NoError(t, err)
	assert.Len(t, a.Raw, 96)
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.Len(t, HashRefreshRaw(a.Raw), 64)
	assert.Equal(t, HashRefreshRaw(a.Raw), HashRefreshRaw(a.Raw))
}

func TestPasswords(t *testing.T) {
	t.Parallel()
	hash, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "hunter2"))
	assert.False(t, VerifyPassword(hash, "hunter3"))
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidatePassword("s3cretpass"))
	assert.NoError(t, ValidatePassword("ççççççç1"))
	assert.ErrorIs(t, ValidatePassword("short"), ErrWeakPassword)
	assert.ErrorIs(t, ValidatePassword(strings.Repeat("a", 73)), ErrWeakPassword)
}

func TestHashPasswordClampsCost(t *testing.T) {
	t.Parallel()
	hash, err := HashPassword("s3cretpass", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
