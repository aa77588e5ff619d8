package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier("s3cret")

	token, err := v.Issue("ops@example.com", RoleAdmin, time.Minute)
	require.NoError(t, err)

	claims, err := v.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestVerifier_RejectsWrongSecret(t *testing.T) {
	token, err := NewVerifier("one").Issue("u1", RoleAdmin, time.Minute)
	require.NoError(t, err)

	_, err = NewVerifier("two").Validate(token)
	assert.Error(t, err)
}

func TestVerifier_RejectsExpired(t *testing.T) {
	v := NewVerifier("s3cret")
	token, err := v.Issue("u1", RoleAdmin, -time.Minute)
	require.NoError(t, err)

	_, err = v.Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerifier_RequiresExpiry(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Role: RoleAdmin}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = NewVerifier("s3cret").Validate(token)
	assert.Error(t, err)
}

func TestVerifier_RejectsNonHMAC(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Role: RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewVerifier("s3cret").Validate(token)
	assert.Error(t, err)
}

func TestVerifier_FallsBackToUserID(t *testing.T) {
	claims := &Claims{
		UserID: "user-42",
		Role:   "customer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	got, err := NewVerifier("s3cret").Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", got.Subject)
	assert.Equal(t, "customer", got.Role)
}

func TestVerifier_NoSecret(t *testing.T) {
	v := NewVerifier("")
	_, err := v.Issue("u1", RoleAdmin, time.Minute)
	assert.Error(t, err)
	_, err = v.Validate("anything")
	assert.Error(t, err)
}
