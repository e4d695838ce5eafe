package minecraft

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// LoginKind tells how an AuthResult was obtained
type LoginKind string

const (
	// LoginMicrosoft is a verified account that owns the game
	LoginMicrosoft LoginKind = "microsoft"
	// LoginOffline is a name-only identity without any verification
	LoginOffline LoginKind = "offline"
)

// OfflineAccessToken is handed to the game for offline identities.
// It is a fixed placeholder, never a bearer token.
const OfflineAccessToken = "0"

// LaunchAuthData is an interface defining the data required to authenticate
type LaunchAuthData interface {
	// GetAccessToken returns the access token (strictly required)
	GetAccessToken() string
	// GetUUID returns the users UUID (strictly required)
	GetUUID() string
	// GetPlayerName returns the users player name (the one that also appears in game)
	GetPlayerName() string
	// GetUserType returns "msa" for Microsoft accounts and "legacy" for offline ones
	GetUserType() string
}

// AuthResult is the final outcome of a sign-in. Treat it as immutable.
type AuthResult struct {
	Kind     LoginKind `json:"kind"`
	Username string    `json:"username"`
	// UUID is lowercase hex without dashes
	UUID        string `json:"uuid"`
	AccessToken string `json:"accessToken"`
	Success     bool   `json:"success"`

	// ExpiresAt is when AccessToken stops working (zero for offline identities)
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	// RefreshToken is the Microsoft refresh token of this sign-in, if one was issued.
	// The caller decides whether to keep it; it is never serialized.
	RefreshToken string `json:"-"`
	// Profile is only set for Microsoft sign-ins
	Profile *Profile `json:"profile,omitempty"`
}

func (a *AuthResult) GetAccessToken() string { return a.AccessToken }
func (a *AuthResult) GetUUID() string        { return a.UUID }
func (a *AuthResult) GetPlayerName() string  { return a.Username }

func (a *AuthResult) GetUserType() string {
	if a.Kind == LoginMicrosoft {
		return "msa"
	}
	return "legacy"
}

// IsPremium is true for Microsoft accounts
func (a *AuthResult) IsPremium() bool { return a.Kind == LoginMicrosoft }

// IsExpired reports whether the access token is (about to be) expired.
// Offline identities never expire.
func (a *AuthResult) IsExpired() bool {
	if a.Kind == LoginOffline || a.ExpiresAt.IsZero() {
		return false
	}
	// add a minute current time for clock skew and stuff
	return a.ExpiresAt.Before(time.Now().Add(time.Minute))
}

// DashedUUID returns UUID in the 8-4-4-4-12 form. Falls back to UUID as is
// if it can not be parsed.
func (a *AuthResult) DashedUUID() string {
	id, err := uuid.Parse(a.UUID)
	if err != nil {
		return a.UUID
	}
	return id.String()
}

// Valid checks the invariants of a successful result
func (a *AuthResult) Valid() bool {
	if !a.Success {
		return false
	}
	return a.Username != "" && a.UUID != ""
}

// UndashedUUID normalizes both UUID text forms to lowercase hex without dashes
func UndashedUUID(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return FormatUUID(id), nil
}

// FormatUUID renders id as 32 lowercase hex characters
func FormatUUID(id uuid.UUID) string {
	return hex.EncodeToString(id[:])
}
