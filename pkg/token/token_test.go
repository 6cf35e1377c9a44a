package token

import (
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	SetSecret("token-test-secret")
	os.Exit(m.Run())
}

func TestGenerateAndParseJWT(t *testing.T) {
	tk, err := GenerateJWT("u1", "u1@example.com", string(RoleStudent), "member_service")
	require.NoError(t, err)

	claims, err := ParseJWT(tk)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.MemberID)
	assert.Equal(t, "u1@example.com", claims.Email)
	assert.Equal(t, string(RoleStudent), claims.Role)
	assert.Equal(t, "member_service", claims.Issuer)
}

func TestParseJWTRejects(t *testing.T) {
	expired, err := generate("u1", "", string(RoleStudent), "test", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		MemberID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	foreignSigned, err := foreign.SignedString([]byte("another-secret"))
	require.NoError(t, err)

	noSubject, err := generate("", "", string(RoleStudent), "test", time.Now().Add(time.Hour))
	require.NoError(t, err)

	cases := map[string]string{
		"empty":      "",
		"garbage":    "not-a-token",
		"expired":    expired,
		"bad secret": foreignSigned,
		"no subject": noSubject,
	}
	for name, tk := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseJWT(tk)
			assert.Error(t, err)
		})
	}

	_, err = ParseJWT(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestCheckJWTNotExpire(t *testing.T) {
	valid, err := GenerateJWT("u1", "", string(RoleStudent), "test")
	require.NoError(t, err)

	ok, err := CheckJWTNotExpire("Bearer " + valid)
	require.NoError(t, err)
	assert.True(t, ok)

	expired, err := generate("u1", "", string(RoleStudent), "test", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	ok, err = CheckJWTNotExpire("Bearer " + expired)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckJWTNotExpire(valid)
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestUnconfiguredSecretRefused(t *testing.T) {
	configured := JWTSecret
	t.Cleanup(func() { JWTSecret = configured })
	JWTSecret = nil

	assert.False(t, HasSecret())

	_, err := GenerateJWT("u1", "", string(RoleStudent), "test")
	assert.ErrorIs(t, err, ErrNoSecret)

	// signed with a well known key, must not pass without a configured secret
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		MemberID: "victim",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secure_secret_key"))
	require.NoError(t, err)

	_, err = ParseJWT(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, ErrNoSecret)

	// an empty key is not a valid configuration either
	SetSecret("")
	assert.False(t, HasSecret())
}

func TestOAuthState(t *testing.T) {
	state, err := GenerateState("u1", time.Minute)
	require.NoError(t, err)

	memberID, err := ParseState(state)
	require.NoError(t, err)
	assert.Equal(t, "u1", memberID)

	// a state token does not log anyone in
	_, err = ParseJWT(state)
	assert.ErrorIs(t, err, ErrInvalidToken)

	login, err := GenerateJWT("u1", "", string(RoleStudent), "member_service")
	require.NoError(t, err)
	_, err = ParseState(login)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := generate("u1", "", "", StateIssuer, time.Now().Add(-time.Second))
	require.NoError(t, err)
	_, err = ParseState(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
