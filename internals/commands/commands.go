package commands

import (
	"errors"

	"github.com/spf13/cobra"
)

// Command is a cobra command whose errors are rendered for humans
type Command struct {
	*cobra.Command
	runner Runner
}

// Runner executes a command
type Runner interface {
	RunE(cmd *cobra.Command, args []string) error
}

// New wires run into cmd. Errors are handed back to cobra so the root
// command can clean up, render them with Render and exit.
func New(cmd *cobra.Command, run Runner) *Command {
	build := &Command{
		cmd,
		run,
	}
	build.Command.RunE = run.RunE

	return build
}

// quietError was already shown to the user
type quietError struct {
	err error
}

func (q *quietError) Error() string { return q.err.Error() }
func (q *quietError) Unwrap() error { return q.err }

// Quiet marks err as already displayed. Render returns an empty string for it.
func Quiet(err error) error {
	if err == nil {
		return nil
	}
	return &quietError{err: err}
}

// Render returns the rich form of err. Sign-in failures are translated first.
func Render(err error) string {
	var quiet *quietError
	if errors.As(err, &quiet) {
		return ""
	}
	var asCliErr *CliError
	if errors.As(err, &asCliErr) {
		return asCliErr.RichError() + "\n"
	}
	if cliErr := FromAuthError(err); cliErr != nil {
		return cliErr.RichError() + "\n"
	}
	return ErrorBox(err.Error(), "")
}
