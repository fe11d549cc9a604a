package tui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// Question styles a pending clarification so it stands out from the
// synthesized answers in the chat transcript.
func Question(text string) string {
	p := termenv.ColorProfile()
	return termenv.String("? " + text).Foreground(p.Color("#f59e0b")).Bold().String()
}

// Prompt returns the styled input prompt for the chat loop.
func Prompt() string {
	p := termenv.ColorProfile()
	return termenv.String("you> ").Foreground(p.Color("#818cf8")).String()
}

// StepTrace formats a drive pass trace for verbose output.
func StepTrace(steps []string) string {
	p := termenv.ColorProfile()
	out := ""
	for i, step := range steps {
		if i > 0 {
			out += " > "
		}
		out += step
	}
	return termenv.String(fmt.Sprintf("[%s]", out)).Foreground(p.Color("#6b7280")).String()
}
