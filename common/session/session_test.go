package session

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/event-planner-client/common/errors"
	"github.com/event-planner-client/common/jwt"
)

func cookieHeader(name, value string) map[string]string {
	return map[string]string{"Cookie": "theme=dark; " + name + "=" + url.QueryEscape(value)}
}

func TestCookieSource(t *testing.T) {
	src := NewCookieSource("", nil)

	tests := []struct {
		name     string
		headers  map[string]string
		want     *Identity
		wantCode apperrors.ErrorCode
	}{
		{
			name:    "no cookie header",
			headers: map[string]string{},
		},
		{
			name:    "other cookies only",
			headers: map[string]string{"Cookie": "theme=dark"},
		},
		{
			name:    "session cookie",
			headers: cookieHeader(DefaultCookieName, `{"userId":5,"token":"abc"}`),
			want:    &Identity{UserID: 5, Token: "abc"},
		},
		{
			name:    "lower-case header name",
			headers: map[string]string{"cookie": DefaultCookieName + "=" + url.QueryEscape(`{"userId":5,"token":"abc"}`)},
			want:    &Identity{UserID: 5, Token: "abc"},
		},
		{
			name:     "not json",
			headers:  cookieHeader(DefaultCookieName, "nope"),
			wantCode: apperrors.ErrCodeInvalidFormat,
		},
		{
			name:     "missing token",
			headers:  cookieHeader(DefaultCookieName, `{"userId":5}`),
			wantCode: apperrors.ErrCodeUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := src.Resolve(tt.headers)
			if tt.wantCode != "" {
				assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCookieSourceVerifiesToken(t *testing.T) {
	verifier := jwt.NewVerifier("secret")
	token, err := verifier.GenerateToken(5, "a@b.c", time.Hour)
	require.NoError(t, err)
	src := NewCookieSource(DefaultCookieName, verifier)

	got, err := src.Resolve(cookieHeader(DefaultCookieName, `{"userId":5,"token":"`+token+`"}`))
	require.NoError(t, err)
	assert.Equal(t, 5, got.UserID)

	_, err = src.Resolve(cookieHeader(DefaultCookieName, `{"userId":6,"token":"`+token+`"}`))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidToken))

	_, err = src.Resolve(cookieHeader(DefaultCookieName, `{"userId":5,"token":"forged"}`))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidToken))
}

func TestBearerSource(t *testing.T) {
	verifier := jwt.NewVerifier("secret")
	token, err := verifier.GenerateToken(9, "", time.Hour)
	require.NoError(t, err)

	got, err := NewBearerSource(verifier).Resolve(map[string]string{"Authorization": "Bearer " + token})
	require.NoError(t, err)
	assert.Equal(t, &Identity{UserID: 9, Token: token}, got)

	// unverified decoding still yields the user id
	got, err = NewBearerSource(nil).Resolve(map[string]string{"authorization": "Bearer " + token})
	require.NoError(t, err)
	assert.Equal(t, 9, got.UserID)

	_, err = NewBearerSource(verifier).Resolve(map[string]string{"Authorization": "Basic abc"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidToken))

	got, err = NewBearerSource(verifier).Resolve(map[string]string{})
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestChain(t *testing.T) {
	verifier := jwt.NewVerifier("secret")
	token, err := verifier.GenerateToken(9, "", time.Hour)
	require.NoError(t, err)

	chain := Chain{NewCookieSource(DefaultCookieName, nil), NewBearerSource(verifier)}

	got, err := chain.Resolve(map[string]string{"Authorization": "Bearer " + token})
	require.NoError(t, err)
	assert.Equal(t, 9, got.UserID)

	headers := cookieHeader(DefaultCookieName, `{"userId":5,"token":"abc"}`)
	headers["Authorization"] = "Bearer " + token
	got, err = chain.Resolve(headers)
	require.NoError(t, err)
	assert.Equal(t, 5, got.UserID, "cookie wins over bearer")

	got, err = chain.Resolve(nil)
	assert.NoError(t, err)
	assert.Nil(t, got)
}
