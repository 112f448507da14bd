package userservice

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenService_EmptySecret(t *testing.T) {
	_, err := NewTokenService("", 0)
	assert.Error(t, err)
}

func TestTokenService_RoundTrip(t *testing.T) {
	s, err := NewTokenService("secret", 0)
	require.NoError(t, err)

	token, err := s.Issue(42)
	require.NoError(t, err)

	id, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	// without a ttl the token carries no expiry at all
	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.NotContains(t, claims, "exp")
	assert.Contains(t, claims, "iat")
	assert.Equal(t, float64(42), claims["id"])
}

func TestTokenService_Verify(t *testing.T) {
	s, err := NewTokenService("secret", 0)
	require.NoError(t, err)

	other, err := NewTokenService("another-secret", 0)
	require.NoError(t, err)
	foreign, err := other.Issue(1)
	require.NoError(t, err)

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"id": 1}).SignedString([]byte("secret"))
	require.NoError(t, err)

	testCases := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "empty", token: "", wantErr: ErrMissingToken},
		{name: "garbage", token: "not-a-jwt", wantErr: ErrInvalidToken},
		{name: "wrong secret", token: foreign, wantErr: ErrInvalidToken},
		{name: "missing id claim", token: noID, wantErr: ErrInvalidToken},
		{name: "unexpected algorithm", token: hs512, wantErr: ErrInvalidToken},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Verify(tc.token)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestTokenService_Expiry(t *testing.T) {
	s, err := NewTokenService("secret", time.Hour)
	require.NoError(t, err)

	issued := time.Now()
	s.now = func() time.Time { return issued }

	token, err := s.Issue(5)
	require.NoError(t, err)

	_, err = s.Verify(token)
	assert.NoError(t, err)

	s.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
