package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService(t *testing.T, expiration time.Duration) *Service {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return NewTestService(key, "tablefolk-test", expiration)
}

func TestSignAndValidate(t *testing.T) {
	svc := testService(t, 15*time.Minute)

	token, err := svc.Sign(Claims{
		Subject: "account:alice",
		UserID:  "account:alice",
		Email:   "alice@example.com",
		Handle:  "alice",
		Role:    "player",
	})
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, "account:alice", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "alice", claims.Handle)
	assert.Equal(t, "tablefolk-test", claims.Issuer)
	assert.False(t, claims.IsAdmin())
}

func TestValidate_Expired(t *testing.T) {
	svc := testService(t, -time.Minute)

	token, err := svc.Sign(Claims{UserID: "account:bob"})
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidate_WrongKey(t *testing.T) {
	signer := testService(t, time.Minute)
	verifier := testService(t, time.Minute)

	token, err := signer.Sign(Claims{UserID: "account:bob"})
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestValidate_WrongIssuer(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	signer := NewTestService(key, "someone-else", time.Minute)
	verifier := NewTestService(key, "tablefolk-test", time.Minute)

	token, err := signer.Sign(Claims{UserID: "account:bob"})
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Malformed(t *testing.T) {
	svc := testService(t, time.Minute)

	for _, token := range []string{"", "abc", "a.b", "a.b.c.d", "!!.!!.!!"} {
		_, err := svc.Validate(token)
		assert.Error(t, err, "token %q should not validate", token)
	}
}

func TestValidate_TamperedClaims(t *testing.T) {
	svc := testService(t, time.Minute)

	token, err := svc.Sign(Claims{UserID: "account:bob", Role: "player"})
	require.NoError(t, err)

	// Swap the claims segment for one asserting admin role.
	forged, err := svc.Sign(Claims{UserID: "account:bob", Role: "admin"})
	require.NoError(t, err)

	parts1 := splitToken(token)
	parts2 := splitToken(forged)
	tampered := parts1[0] + "." + parts2[1] + "." + parts1[2]

	_, err = svc.Validate(tampered)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestClaims_IsAdmin(t *testing.T) {
	assert.True(t, (&Claims{Role: "admin"}).IsAdmin())
	assert.False(t, (&Claims{Role: "moderator"}).IsAdmin())
	assert.False(t, (&Claims{}).IsAdmin())
}

func splitToken(token string) [3]string {
	var parts [3]string
	idx := 0
	start := 0
	for i := 0; i < len(token) && idx < 2; i++ {
		if token[i] == '.' {
			parts[idx] = token[start:i]
			start = i + 1
			idx++
		}
	}
	parts[2] = token[start:]
	return parts
}
