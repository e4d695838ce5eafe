package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/funcraft/mcauth/internals/minecraft"
)

func TestKeyringRoundTrip(t *testing.T) {
	keyring.MockInit()
	dir := t.TempDir()

	store, err := New(dir, false)
	require.NoError(t, err)
	assert.Nil(t, store.MicrosoftAuth)
	assert.False(t, store.NoKeyRingMode)

	require.NoError(t, store.SetMicrosoftAuth(&StoredAuth{RefreshToken: "rt", Username: "Notch"}))

	again, err := New(dir, false)
	require.NoError(t, err)
	require.NotNil(t, again.MicrosoftAuth)
	assert.Equal(t, "rt", again.MicrosoftAuth.RefreshToken)
	assert.NoFileExists(t, filepath.Join(dir, microsoftFile))

	require.NoError(t, again.Clear())
	require.NoError(t, again.Clear())
	cleared, err := New(dir, false)
	require.NoError(t, err)
	assert.Nil(t, cleared.MicrosoftAuth)
}

func TestFallsBackToFiles(t *testing.T) {
	keyring.MockInitWithError(errors.New("no dbus"))
	dir := t.TempDir()

	store, err := New(dir, false)
	require.NoError(t, err)
	assert.True(t, store.NoKeyRingMode)

	require.NoError(t, store.SetMicrosoftAuth(&StoredAuth{RefreshToken: "rt"}))
	file := filepath.Join(dir, microsoftFile)
	info, err := os.Stat(file)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	again, err := New(dir, true)
	require.NoError(t, err)
	assert.Equal(t, "rt", again.MicrosoftAuth.RefreshToken)

	require.NoError(t, again.Clear())
	assert.NoFileExists(t, file)
}

func TestCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, microsoftFile), []byte("{nope"), 0o600))

	_, err := New(dir, true)
	assert.Error(t, err)
}

func TestSetNothing(t *testing.T) {
	store := &Store{globalDir: t.TempDir(), NoKeyRingMode: true}
	assert.Error(t, store.SetMicrosoftAuth(nil))
}

func TestFromResult(t *testing.T) {
	assert.Nil(t, FromResult(nil))
	assert.Nil(t, FromResult(&minecraft.AuthResult{Kind: minecraft.LoginOffline, Username: "Steve"}))
	assert.Nil(t, FromResult(&minecraft.AuthResult{Kind: minecraft.LoginMicrosoft}))

	stored := FromResult(&minecraft.AuthResult{
		Kind:         minecraft.LoginMicrosoft,
		Username:     "Notch",
		UUID:         "069a79f444e94726a5befca90e38aaf5",
		RefreshToken: "rt",
	})
	require.NotNil(t, stored)
	assert.Equal(t, "rt", stored.RefreshToken)
	assert.Equal(t, "Notch", stored.Username)
	assert.False(t, stored.SavedAt.IsZero())
}
