package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "****", MaskToken(""))
	assert.Equal(t, "****", MaskToken("0"))
	assert.Equal(t, "eyJh…9sig", MaskToken("eyJhbGciOiJIUzI1NiJ9.payload.9sig"))
}

func TestPrettyKindKeepsText(t *testing.T) {
	for _, kind := range []string{"microsoft", "offline", "other"} {
		assert.Contains(t, PrettyKind(kind), kind)
	}
}

func TestBrowserCommand(t *testing.T) {
	ctx := context.Background()

	cmd, err := browserCommand(ctx, "linux", "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"xdg-open", "https://example.com"}, cmd.Args)

	cmd, err = browserCommand(ctx, "darwin", "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "open", cmd.Args[0])

	_, err = browserCommand(ctx, "plan9", "https://example.com")
	assert.Error(t, err)
}
