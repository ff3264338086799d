package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventlistings/internal/domain"
)

func TestJWTCodec_IssueAndVerify(t *testing.T) {
	codec := NewJWTCodec("test-secret")

	token, err := codec.Issue(&domain.Identity{UserID: 42, Username: "alice", IsStaff: true}, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), identity.UserID)
	assert.Equal(t, "alice", identity.Username)
	assert.True(t, identity.IsStaff)
}

func TestJWTCodec_Verify_WrongSecret(t *testing.T) {
	token, err := NewJWTCodec("secret-a").Issue(&domain.Identity{UserID: 1, Username: "bob"}, time.Hour)
	require.NoError(t, err)

	_, err = NewJWTCodec("secret-b").Verify(token)
	require.Error(t, err)
}

func TestJWTCodec_Verify_Expired(t *testing.T) {
	codec := NewJWTCodec("test-secret")
	token, err := codec.Issue(&domain.Identity{UserID: 1, Username: "bob"}, -time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.Error(t, err)
}

func TestJWTCodec_Verify_WrongAlgorithm(t *testing.T) {
	// Unsigned token must be rejected even with a valid payload.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1"})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTCodec("test-secret").Verify(raw)
	require.Error(t, err)
}
