package ports

import "context"

// Surface is a region of the display tree.
type Surface interface {
	// IsAttached reports whether the surface is part of the live display tree.
	IsAttached() bool

	// SetContent replaces the rendered content of the surface.
	SetContent(content string)
}

// Typesetter renders math source into a surface.
//
// The source is the node text including its delimiters. A nil error means the
// surface now shows the rendered math. Implementations must tolerate repeated
// calls on the same surface and must not retain it between calls. Callers
// never invoke a Typesetter concurrently, except after a watchdog timeout:
// the queue then moves on while the abandoned call, whose context is
// cancelled, may still be returning.
type Typesetter interface {
	Typeset(ctx context.Context, target Surface, source string) error
}

// TypesetterFunc adapts a function to Typesetter.
type TypesetterFunc func(ctx context.Context, target Surface, source string) error

// Typeset implements Typesetter.
func (f TypesetterFunc) Typeset(ctx context.Context, target Surface, source string) error {
	return f(ctx, target, source)
}
