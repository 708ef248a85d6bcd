package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"

	"github.com/scriptgen-ra/scriptgen/common/config"
	"github.com/scriptgen-ra/scriptgen/model"
)

func TestTokenRoundTrip(t *testing.T) {
	user := &model.User{Id: 42, Username: "alice"}
	token, err := GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := parseToken(token)
	require.NoError(t, err)
	require.Equal(t, 42, id)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := parseToken("not.a.token")
	require.Error(t, err)

	_, err = parseToken("")
	require.Error(t, err)
}

func TestParseTokenRejectsWrongKey(t *testing.T) {
	claims := jwt.MapClaims{
		"user_id": 7,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	_, err = parseToken(signed)
	require.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	claims := jwt.MapClaims{
		"user_id": 7,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(config.SessionSecret))
	require.NoError(t, err)

	_, err = parseToken(signed)
	require.Error(t, err)
}

func TestParseTokenRejectsUnexpectedAlg(t *testing.T) {
	// alg=none style tokens must never be accepted
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 7})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = parseToken(signed)
	require.Error(t, err)
}
