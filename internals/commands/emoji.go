package commands

import (
	"os"
	"runtime"
)

var emojiSupport = detectEmoji(runtime.GOOS, os.Getenv)

// EmojiEnabled can be used to turn emojis off regardless of terminal support
var EmojiEnabled = true

// detectEmoji guesses if the terminal can draw emojis
func detectEmoji(goos string, getenv func(string) string) bool {
	if getenv("TERM") == "dumb" {
		return false
	}
	// everything that is not windows usually has emoji support
	if goos != "windows" {
		return true
	}
	// raw cmd and powershell set SESSIONNAME, windows terminal does not
	return getenv("SESSIONNAME") == ""
}

func EmojiSupported() bool {
	return emojiSupport
}

// Emoji returns the given string (usually a emoji) if the current terminal
// (probably) supports it
func Emoji(e string) string {
	if emojiSupport && EmojiEnabled {
		return e
	}
	return ""
}
