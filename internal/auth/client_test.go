package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blues/efs/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyAdminToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer good-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user_id":11,"role":"admin"}`))
	}))
	defer server.Close()

	client := NewClient(config.AuthConfig{VerifyUrl: server.URL, Timeout: 2})
	identity, err := client.VerifyAdminToken(context.Background(), "good-token")
	require.NoError(t, err)

	assert.Equal(t, int64(11), identity.UserId)
	assert.True(t, identity.IsAdmin())
}

func TestVerifyAdminTokenRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(config.AuthConfig{VerifyUrl: server.URL, Timeout: 2})
	_, err := client.VerifyAdminToken(context.Background(), "bad-token")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyAdminTokenEmptyToken(t *testing.T) {
	client := NewClient(config.AuthConfig{VerifyUrl: "http://unused", Timeout: 2})
	_, err := client.VerifyAdminToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, Identity{Role: "admin"}.IsAdmin())
	assert.True(t, Identity{Role: "super_admin"}.IsAdmin())
	assert.False(t, Identity{Role: "member"}.IsAdmin())
	assert.False(t, Identity{}.IsAdmin())
}
