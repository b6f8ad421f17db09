package auth

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestPublisherIDFromToken(t *testing.T) {
	valid := signedToken(t, jwt.MapClaims{
		PublisherIDClaim: "pub-123",
		"email":          "dev@example.com",
	})
	missing := signedToken(t, jwt.MapClaims{"email": "dev@example.com"})
	empty := signedToken(t, jwt.MapClaims{PublisherIDClaim: ""})
	nonString := signedToken(t, jwt.MapClaims{PublisherIDClaim: 42})

	tests := []struct {
		name    string
		token   string
		want    string
		wantErr error
	}{
		{name: "valid token", token: valid, want: "pub-123"},
		{name: "claim missing", token: missing, wantErr: ErrPublisherIDNotFound},
		{name: "claim empty", token: empty, wantErr: ErrPublisherIDNotFound},
		{name: "claim not a string", token: nonString, wantErr: ErrPublisherIDNotFound},
		{name: "two segments", token: "abc.def", wantErr: ErrInvalidTokenFormat},
		{name: "four segments", token: "a.b.c.d", wantErr: ErrInvalidTokenFormat},
		{name: "empty", token: "", wantErr: ErrInvalidTokenFormat},
		{name: "payload not base64", token: "a.!!!.c", wantErr: ErrInvalidTokenFormat},
		{
			name:    "payload not json",
			token:   "a." + base64.RawURLEncoding.EncodeToString([]byte("plain text")) + ".c",
			wantErr: ErrInvalidTokenFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PublisherIDFromToken(tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPublisherIDFromToken_IgnoresSignature(t *testing.T) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"custom:publisherId":"pub-9"}`))

	got, err := PublisherIDFromToken("not-a-header." + payload + ".not-a-signature")
	require.NoError(t, err)
	assert.Equal(t, "pub-9", got)
}

func TestPublisherIDFromToken_PaddedPayload(t *testing.T) {
	payload := base64.URLEncoding.EncodeToString([]byte(`{"custom:publisherId":"pub-77"}`))

	got, err := PublisherIDFromToken("h." + payload + ".s")
	require.NoError(t, err)
	assert.Equal(t, "pub-77", got)
}

func TestExpiresAt(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	got, err := ExpiresAt(signedToken(t, jwt.MapClaims{"exp": exp.Unix()}))
	require.NoError(t, err)
	assert.True(t, exp.Equal(got), "got %v", got)

	got, err = ExpiresAt(signedToken(t, jwt.MapClaims{"sub": "x"}))
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ExpiresAt("garbage")
	assert.ErrorIs(t, err, ErrInvalidTokenFormat)
}
