// Package tui styles command output for terminals.
package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// Status prints styled one-line reports. Colours are dropped when the writer
// is not a terminal.
type Status struct {
	out *termenv.Output
}

// NewStatus creates a Status writing to w.
func NewStatus(w io.Writer) *Status {
	return &Status{out: termenv.NewOutput(w)}
}

func (s *Status) line(color, mark, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	styled := s.out.String(mark).Foreground(s.out.Color(color)).Bold()
	fmt.Fprintf(s.out, "%s %s\n", styled, msg)
}

// OK reports a success.
func (s *Status) OK(format string, args ...any) {
	s.line("#34d399", "ok", format, args...)
}

// Warn reports something worth a look.
func (s *Status) Warn(format string, args ...any) {
	s.line("#fbbf24", "warn", format, args...)
}

// Fail reports an error.
func (s *Status) Fail(format string, args ...any) {
	s.line("#f87171", "fail", format, args...)
}

// Info prints an unstyled line.
func (s *Status) Info(format string, args ...any) {
	fmt.Fprintf(s.out, format+"\n", args...)
}
