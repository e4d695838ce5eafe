package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var styleErrBox = lipgloss.NewStyle().
	Width(80).
	MarginTop(1).
	Bold(true).
	Background(lipgloss.AdaptiveColor{Light: "#ffcdd2", Dark: "#512222"}).
	Foreground(lipgloss.AdaptiveColor{Light: "#b71c1c", Dark: "#fa8a8a"}).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderLeftForeground(lipgloss.Color("#f86262")).
	Padding(1, 2)

var styleHelpBox = lipgloss.NewStyle().
	Width(80).
	Background(lipgloss.AdaptiveColor{Light: "#e9e9e9", Dark: "#2f2f2f"}).
	Padding(0, 2).
	Margin(0, 1).
	PaddingTop(1)

var styleErrText = lipgloss.NewStyle().Width(62)

var styleCodeBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#62b0f8")).
	Padding(1, 4).
	MarginTop(1)

var styleCode = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.AdaptiveColor{Light: "#0d47a1", Dark: "#8ac6fa"})

var styleKey = lipgloss.NewStyle().Width(12).Faint(true)

// ErrorBox renders errorString (and helpText below it, if any)
func ErrorBox(errorString string, helpText string) string {
	rendered := styleErrBox.Render(
		lipgloss.JoinHorizontal(
			lipgloss.Top, Emoji("❗ "),
			styleErrText.Render(fmt.Sprintf("Error: %s", errorString)),
		),
	)
	if helpText != "" {
		rendered = lipgloss.JoinVertical(
			lipgloss.Left,
			rendered,
			styleHelpBox.Render(Emoji("❔ ")+helpText),
		)
	}

	return rendered
}

// DeviceCodeBox tells the user where to enter userCode
func DeviceCodeBox(userCode, verificationURI string, copied bool) string {
	lines := []string{
		fmt.Sprintf("%sOpen %s", Emoji("🌐 "), verificationURI),
		fmt.Sprintf("%sand enter the code %s", Emoji("🔑 "), styleCode.Render(userCode)),
	}
	if copied {
		lines = append(lines, "", "(the code is in your clipboard)")
	}
	return styleCodeBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// KeyValues renders pairs as an aligned two column list
func KeyValues(pairs ...[2]string) string {
	rows := make([]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, styleKey.Render(p[0]), p[1]))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
