// Package terminal typesets math for terminal output.
//
// It checks that the TeX source is structurally sound and renders it through
// glamour as a code span (inline) or a latex code block (display).
package terminal

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/aretw0/mathspan/pkg/ports"
	"github.com/charmbracelet/glamour"
)

// Typesetter implements ports.Typesetter with glamour.
type Typesetter struct {
	mu       sync.Mutex
	renderer *glamour.TermRenderer
}

// Option configures the glamour renderer.
type Option = glamour.TermRendererOption

// New creates a terminal typesetter. Without options the style follows the
// terminal background.
func New(opts ...Option) (*Typesetter, error) {
	if len(opts) == 0 {
		opts = []Option{glamour.WithAutoStyle()}
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create terminal renderer: %w", err)
	}
	return &Typesetter{renderer: r}, nil
}

// NewPlain creates a typesetter that emits no escape sequences.
func NewPlain() (*Typesetter, error) {
	return New(glamour.WithStandardStyle("notty"), glamour.WithWordWrap(0))
}

// Typeset renders source into target.
func (t *Typesetter) Typeset(ctx context.Context, target ports.Surface, source string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out, err := t.Render(source)
	if err != nil {
		return err
	}
	target.SetContent(out)
	return nil
}

// Render returns the terminal rendering of the delimited source.
func (t *Typesetter) Render(source string) (string, error) {
	kind, expr, ok := domain.Classify(source)
	if !ok {
		return "", fmt.Errorf("%q: %w", source, domain.ErrNoMath)
	}
	if err := CheckTeX(expr); err != nil {
		return "", err
	}

	var md string
	switch kind {
	case domain.MathDisplay:
		md = "```latex\n" + strings.TrimSpace(expr) + "\n```\n"
	default:
		md = codeSpan(strings.TrimSpace(expr)) + "\n"
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	out, err := t.renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render math: %w", err)
	}
	return out, nil
}

// codeSpan wraps s in a backtick run longer than any it contains.
func codeSpan(s string) string {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	fence := strings.Repeat("`", longest+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		return fence + " " + s + " " + fence
	}
	return fence + s + fence
}
