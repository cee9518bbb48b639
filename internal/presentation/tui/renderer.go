package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// NewRenderer returns a function that renders markdown for out using glamour.
// Styles follow the terminal background; when out is not a terminal no escape
// sequences are emitted.
func NewRenderer(out *os.File) func(string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if !IsTerminal(out) {
		opts = []glamour.TermRendererOption{glamour.WithStandardStyle("notty"), glamour.WithWordWrap(0)}
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
