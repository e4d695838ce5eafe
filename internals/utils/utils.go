package utils

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/atotto/clipboard"
)

// OpenBrowser opens the given url in a browser. It gives up after 15 seconds.
func OpenBrowser(url string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cmd, err := browserCommand(ctx, runtime.GOOS, url)
	if err != nil {
		return err
	}
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("browser did not open in time")
		}
		return fmt.Errorf("could not open browser: %w", err)
	}
	return nil
}

func browserCommand(ctx context.Context, goos string, url string) (*exec.Cmd, error) {
	switch goos {
	case "linux", "freebsd", "openbsd":
		return exec.CommandContext(ctx, "xdg-open", url), nil
	case "windows":
		return exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url), nil
	case "darwin":
		return exec.CommandContext(ctx, "open", url), nil
	default:
		return nil, fmt.Errorf("unsupported platform %s", goos)
	}
}

// CopyToClipboard puts text into the system clipboard. It reports false if
// there is no clipboard (e.g. over ssh).
func CopyToClipboard(text string) bool {
	if clipboard.Unsupported {
		return false
	}
	return clipboard.WriteAll(text) == nil
}
