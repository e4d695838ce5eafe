package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// MaybeSpinner is a spinner that can also just log text
type MaybeSpinner struct {
	Spin    bool
	Spinner *spinner.Spinner
	Msg     string
	out     io.Writer
}

// Start might start the spinner
func (m *MaybeSpinner) Start() {
	if m.Spin {
		m.Spinner.Start()
	} else if m.Msg != "" {
		fmt.Fprintln(m.out, m.Msg)
	}
}

// Stop will stop the spinner
func (m *MaybeSpinner) Stop() {
	m.Spinner.Stop()
}

// Update will update the spinner text
func (m *MaybeSpinner) Update(t string) {
	m.Spinner.Suffix = " " + t

	if !m.Spin {
		fmt.Fprintln(m.out, t)
	}
}

// NewMaybeSpinner returns a spinner writing to out. It only spins if spin is true.
func NewMaybeSpinner(spin bool, out io.Writer) *MaybeSpinner {
	s := &MaybeSpinner{
		Spin:    spin,
		Spinner: spinner.New(spinner.CharSets[9], 300*time.Millisecond, spinner.WithWriter(out)),
		out:     out,
	}
	s.Spinner.Prefix = " "
	return s
}

// IsTerminal is true if stdout is an interactive terminal
func IsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
