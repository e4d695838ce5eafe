// Package offline derives name-only identities that work without any network.
package offline

import (
	"crypto/md5"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/funcraft/mcauth/internals/logging"
	"github.com/funcraft/mcauth/internals/merrors"
	"github.com/funcraft/mcauth/internals/minecraft"
)

const (
	MinNameLength = 3
	MaxNameLength = 16

	namePrefix = "OfflinePlayer:"
)

// Generator creates offline identities. The zero value is ready to use.
type Generator struct {
	Logger *slog.Logger
}

// New returns a Generator logging to logger (may be nil)
func New(logger *slog.Logger) *Generator {
	return &Generator{Logger: logging.Category(logger, "offline")}
}

// Generate validates username and returns the offline identity for it
func (g *Generator) Generate(username string) (*minecraft.AuthResult, error) {
	if err := ValidateName(username); err != nil {
		if g.Logger != nil {
			logging.Error(g.Logger, "rejected offline username", err)
		}
		return nil, err
	}

	id := UUID(username)
	if g.Logger != nil {
		g.Logger.Info("offline identity generated", "username", username, "uuid", id.String())
	}

	return &minecraft.AuthResult{
		Kind:        minecraft.LoginOffline,
		Username:    username,
		UUID:        minecraft.FormatUUID(id),
		AccessToken: minecraft.OfflineAccessToken,
		Success:     true,
	}, nil
}

// ValidateName checks the length rules for offline names.
// Length is counted in characters, not bytes.
func ValidateName(username string) error {
	if strings.TrimSpace(username) == "" {
		return &merrors.AuthError{Kind: merrors.InvalidUsername, Description: "username is empty"}
	}
	if strings.TrimSpace(username) != username {
		return &merrors.AuthError{
			Kind:        merrors.InvalidUsername,
			Description: "username must not start or end with whitespace",
		}
	}
	n := utf8.RuneCountInString(username)
	if n < MinNameLength || n > MaxNameLength {
		return &merrors.AuthError{
			Kind:        merrors.InvalidUsername,
			Description: "username must be between 3 and 16 characters long",
		}
	}
	return nil
}

// UUID returns the name based (version 3) UUID the game itself uses for
// offline players: MD5 of "OfflinePlayer:<name>" with version and variant bits set.
func UUID(username string) uuid.UUID {
	var id uuid.UUID
	sum := md5.Sum([]byte(namePrefix + username))
	copy(id[:], sum[:])
	id[6] = (id[6] & 0x0f) | 0x30
	id[8] = (id[8] & 0x3f) | 0x80
	return id
}
