package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier("test-secret")

	token, err := v.GenerateToken(5, "guest@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 5, claims.UserID)
	assert.Equal(t, "guest@example.com", claims.Email)
}

func TestVerifier_WrongSecret(t *testing.T) {
	token, err := NewVerifier("one").GenerateToken(5, "", time.Hour)
	require.NoError(t, err)

	_, err = NewVerifier("two").ValidateToken(token)
	assert.Error(t, err)
}

func TestVerifier_Expired(t *testing.T) {
	v := NewVerifier("test-secret")
	token, err := v.GenerateToken(5, "", -time.Minute)
	require.NoError(t, err)

	_, err = v.ValidateToken(token)
	assert.Error(t, err)

	_, err = DecodeToken(token)
	assert.Error(t, err)
}

func TestDecodeToken_IgnoresSignature(t *testing.T) {
	token, err := NewVerifier("whatever").GenerateToken(9, "", time.Hour)
	require.NoError(t, err)

	claims, err := DecodeToken(token)
	require.NoError(t, err)

	id, err := claims.ResolveUserID()
	require.NoError(t, err)
	assert.Equal(t, 9, id)
}

func TestResolveUserID(t *testing.T) {
	tests := []struct {
		name    string
		claims  Claims
		want    int
		wantErr bool
	}{
		{"user id claim", Claims{UserID: 3}, 3, false},
		{"subject fallback", func() Claims { c := Claims{}; c.Subject = "12"; return c }(), 12, false},
		{"bad subject", func() Claims { c := Claims{}; c.Subject = "abc"; return c }(), 0, true},
		{"empty", Claims{}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.claims.ResolveUserID()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateToken_NoSecret(t *testing.T) {
	_, err := NewVerifier("").GenerateToken(1, "", time.Hour)
	assert.Error(t, err)
}
