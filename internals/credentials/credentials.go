// Package credentials keeps the Microsoft refresh token between runs. The
// system keyring is used when available, plain files in the config dir otherwise.
package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/zalando/go-keyring"

	"github.com/funcraft/mcauth/internals/minecraft"
)

var (
	authService   = "mcauth"
	microsoftUser = "microsoft_auth_data"

	microsoftFile = "microsoft-credentials.json"
)

// StoredAuth is the part of a Microsoft sign-in worth keeping
type StoredAuth struct {
	RefreshToken string    `json:"refreshToken"`
	Username     string    `json:"username,omitempty"`
	UUID         string    `json:"uuid,omitempty"`
	SavedAt      time.Time `json:"savedAt"`
}

// FromResult extracts what to store from a sign-in. Offline results and
// results without a refresh token give nil.
func FromResult(r *minecraft.AuthResult) *StoredAuth {
	if r == nil || !r.IsPremium() || r.RefreshToken == "" {
		return nil
	}
	return &StoredAuth{
		RefreshToken: r.RefreshToken,
		Username:     r.Username,
		UUID:         r.UUID,
		SavedAt:      time.Now().UTC(),
	}
}

// Store stores the microsoft refresh token
type Store struct {
	globalDir     string
	NoKeyRingMode bool
	MicrosoftAuth *StoredAuth
}

// New creates a store and loads existing credentials.
// noKeyRing forces the file store.
func New(globalDir string, noKeyRing bool) (*Store, error) {
	store := &Store{globalDir: globalDir, NoKeyRingMode: noKeyRing}
	if err := store.Find(); err != nil {
		return nil, err
	}
	return store, nil
}

// Find tries to find existing credentials
func (s *Store) Find() error {
	if s.NoKeyRingMode {
		return s.readCredentialFile(microsoftFile, &s.MicrosoftAuth)
	}

	raw, err := keyring.Get(authService, microsoftUser)
	switch err {
	case nil:
		return errors.Wrap(json.Unmarshal([]byte(raw), &s.MicrosoftAuth), "stored credentials are corrupt")
	case keyring.ErrNotFound:
		// no credentials (yet) is fine
		return nil
	default:
		// no usable keyring (headless linux and such)
		s.NoKeyRingMode = true
		return s.readCredentialFile(microsoftFile, &s.MicrosoftAuth)
	}
}

// SetMicrosoftAuth sets `MicrosoftAuth` and persists it
func (s *Store) SetMicrosoftAuth(auth *StoredAuth) error {
	if auth == nil {
		return errors.New("nothing to store")
	}
	s.MicrosoftAuth = auth

	blob, err := json.Marshal(s.MicrosoftAuth)
	if err != nil {
		return err
	}
	if s.NoKeyRingMode {
		return s.writeCredentialFile(microsoftFile, blob)
	}
	return errors.Wrap(keyring.Set(authService, microsoftUser, string(blob)), "keyring")
}

// Clear forgets the stored credentials. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	s.MicrosoftAuth = nil
	if s.NoKeyRingMode {
		err := os.Remove(filepath.Join(s.globalDir, microsoftFile))
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	err := keyring.Delete(authService, microsoftUser)
	if err != nil && err != keyring.ErrNotFound {
		return errors.Wrap(err, "keyring")
	}
	return nil
}

// readCredentialFile is a helper that reads a file from the config dir
func (s *Store) readCredentialFile(location string, v interface{}) error {
	file := filepath.Join(s.globalDir, location)
	rawCreds, err := os.ReadFile(file)
	switch {
	case err == nil:
		// parse json as expected
		return errors.Wrapf(json.Unmarshal(rawCreds, v), "parsing %s", file)
	case os.IsNotExist(err):
		// no file is fine
		return nil
	default:
		// everything else is not
		return err
	}
}

// writeCredentialFile is a helper that writes a file to the config dir.
// Only the current user may read it.
func (s *Store) writeCredentialFile(location string, content []byte) error {
	if err := os.MkdirAll(s.globalDir, 0o700); err != nil {
		return err
	}
	credFile := filepath.Join(s.globalDir, location)
	return os.WriteFile(credFile, content, 0o600)
}
