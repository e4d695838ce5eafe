package utils

import (
	"github.com/jwalton/gchalk"
)

// PrettyKind colors the login kind for terminal printing
func PrettyKind(kind string) string {
	switch kind {
	case "microsoft":
		return gchalk.Green(kind)
	case "offline":
		return gchalk.Yellow(kind)
	default:
		return gchalk.Gray(kind)
	}
}

// MaskToken keeps only the first and last 4 characters of a token
func MaskToken(token string) string {
	if len(token) <= 12 {
		return "****"
	}
	return token[:4] + "…" + token[len(token)-4:]
}
