package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issuedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestJWT_SignVerify(t *testing.T) {
	j := NewJWT("s3cret")

	tok, err := j.Sign("7b1c9a52-6d0f-4c8e-9f55-0a2b4f1e3d21")
	require.NoError(t, err)

	uid, err := j.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "7b1c9a52-6d0f-4c8e-9f55-0a2b4f1e3d21", uid)
}

func TestJWT_Claims(t *testing.T) {
	j := NewJWT("s3cret").WithClock(fixedClock(issuedAt))

	tok, err := j.Sign("u-1")
	require.NoError(t, err)

	var claims jwt.RegisteredClaims
	parsed, _, err := jwt.NewParser().ParseUnverified(tok, &claims)
	require.NoError(t, err)

	assert.Equal(t, "HS256", parsed.Method.Alg())
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, issuedAt, claims.IssuedAt.Time.UTC())
	assert.Equal(t, issuedAt.Add(100*time.Hour), claims.ExpiresAt.Time.UTC())
}

func TestJWT_ExpiryBoundary(t *testing.T) {
	signer := NewJWT("s3cret").WithClock(fixedClock(issuedAt))
	tok, err := signer.Sign("u-1")
	require.NoError(t, err)

	justBefore := signer.WithClock(fixedClock(issuedAt.Add(TokenTTL - time.Second)))
	uid, err := justBefore.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", uid)

	after := signer.WithClock(fixedClock(issuedAt.Add(TokenTTL + time.Second)))
	_, err = after.Verify(tok)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWT_RejectsWrongSecret(t *testing.T) {
	tok, err := NewJWT("one").Sign("u-1")
	require.NoError(t, err)

	_, err = NewJWT("two").Verify(tok)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWT_RejectsGarbage(t *testing.T) {
	j := NewJWT("s3cret")
	for _, tok := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.e30."} {
		_, err := j.Verify(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid, tok)
	}
}

func TestJWT_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "u-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = NewJWT("s3cret").Verify(tok)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWT_RequiresExpiryAndSubject(t *testing.T) {
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u-1"}).
		SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = NewJWT("s3cret").Verify(noExp)
	require.ErrorIs(t, err, ErrTokenInvalid)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = NewJWT("s3cret").Verify(noSub)
	require.ErrorIs(t, err, ErrTokenInvalid)
}
