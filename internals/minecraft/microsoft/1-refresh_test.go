package microsoft

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funcraft/mcauth/internals/merrors"
)

func TestRefresh(t *testing.T) {
	up := newFakeUpstream(t)
	up.handle("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "old-refresh", r.PostForm.Get("refresh_token"))
		assert.Equal(t, "test-client", r.PostForm.Get("client_id"))
		// public client, no basic auth
		assert.Empty(t, r.Header.Get("Authorization"))

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"access_token":  "new-access",
			"refresh_token": "new-refresh",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	})

	tokens, err := up.client().Refresh(context.Background(), "old-refresh")
	require.NoError(t, err)

	assert.Equal(t, "new-access", tokens.AccessToken)
	assert.Equal(t, "new-refresh", tokens.RefreshToken)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.InDelta(t, 3600, tokens.ExpiresIn, 2)
	assert.Equal(t, 1, up.count("/token"))

	converted := tokens.OAuth2()
	assert.Equal(t, "new-refresh", converted.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), converted.Expiry, 5*time.Second)
}

func TestRefreshRejected(t *testing.T) {
	up := newFakeUpstream(t)
	up.handle("/token", respond(http.StatusBadRequest, map[string]string{
		"error":             "invalid_grant",
		"error_description": "AADSTS70000: refresh token expired",
	}))

	tokens, err := up.client().Refresh(context.Background(), "old-refresh")
	assert.Nil(t, tokens)
	require.ErrorIs(t, err, merrors.ErrRefreshFailed)

	authErr := err.(*merrors.AuthError)
	assert.Equal(t, http.StatusBadRequest, authErr.Status)
	assert.Equal(t, "invalid_grant", authErr.Code)
	assert.Contains(t, authErr.Body, "invalid_grant")
	// no retry
	assert.Equal(t, 1, up.count("/token"))
}

func TestRefreshMissingAccessToken(t *testing.T) {
	up := newFakeUpstream(t)
	up.handle("/token", respond(http.StatusOK, map[string]string{"token_type": "Bearer"}))

	_, err := up.client().Refresh(context.Background(), "old-refresh")
	assert.ErrorIs(t, err, merrors.ErrRefreshFailed)
}

func TestRefreshWithoutToken(t *testing.T) {
	up := newFakeUpstream(t)

	_, err := up.client().Refresh(context.Background(), "")
	assert.ErrorIs(t, err, merrors.ErrRefreshFailed)
	assert.Zero(t, up.count("/token"))
}

func TestRefreshTransport(t *testing.T) {
	up := newFakeUpstream(t)
	client := up.client()
	up.Close()

	_, err := client.Refresh(context.Background(), "old-refresh")
	assert.ErrorIs(t, err, merrors.ErrTransport)
}
