package pandoc

import "strings"

// Output is a generic token writer.
//
// Content written inside a WriteToken callback becomes the token's "c" value:
// nothing yields a bare token, a single item is stored as-is, several items
// are stored as a list.
type Output struct {
	frames [][]any
}

// NewOutput returns an empty writer.
func NewOutput() *Output {
	return &Output{frames: [][]any{nil}}
}

// WriteToken writes a token of type t whose content is produced by fn.
func (o *Output) WriteToken(t string, fn ...func()) {
	o.frames = append(o.frames, nil)
	for _, f := range fn {
		f()
	}
	items := o.frames[len(o.frames)-1]
	o.frames = o.frames[:len(o.frames)-1]

	tok := Token{T: t}
	switch len(items) {
	case 0:
	case 1:
		tok.C = items[0]
	default:
		tok.C = items
	}
	o.Write(tok)
}

// WriteAttr writes an attribute triple with the given id and classes.
func (o *Output) WriteAttr(id string, classes ...string) {
	cls := make([]any, 0, len(classes))
	for _, c := range classes {
		cls = append(cls, c)
	}
	o.Write([]any{id, cls, []any{}})
}

// Write appends a raw value to the current frame.
func (o *Output) Write(v any) {
	top := len(o.frames) - 1
	o.frames[top] = append(o.frames[top], v)
}

// WriteText writes literal text as Str, Space and SoftBreak tokens.
// Every space becomes its own Space token so the text survives unchanged.
func (o *Output) WriteText(text string) {
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			s := run.String()
			o.WriteToken(TokenStr, func() { o.Write(s) })
			run.Reset()
		}
	}
	for _, r := range text {
		switch r {
		case ' ':
			flush()
			o.WriteToken(TokenSpace)
		case '\n':
			flush()
			o.WriteToken(TokenSoftBreak)
		default:
			run.WriteRune(r)
		}
	}
	flush()
}

// WriteRawMarkdown writes text as a raw markdown inline, undecorated.
func (o *Output) WriteRawMarkdown(text string) {
	o.WriteToken(TokenRawInline, func() {
		o.Write(FormatMarkdown)
		o.Write(text)
	})
}

// Tokens returns what has been written at the top level.
func (o *Output) Tokens() []any {
	return o.frames[0]
}

// Literal reconstructs the text carried by a sequence of inline tokens.
// Math tokens are rendered with their delimiters.
func Literal(items []any) string {
	var b strings.Builder
	for _, item := range items {
		tok, ok := AsToken(item)
		if !ok {
			continue
		}
		switch tok.T {
		case TokenStr:
			if s, ok := tok.C.(string); ok {
				b.WriteString(s)
			}
		case TokenSpace:
			b.WriteByte(' ')
		case TokenSoftBreak, TokenLineBreak:
			b.WriteByte('\n')
		case TokenRawInline, TokenCode:
			if c, ok := tok.Items(); ok && len(c) == 2 {
				if s, ok := c[1].(string); ok {
					b.WriteString(s)
				}
			}
		case TokenMath:
			if kind, expr, err := MathPayload(tok); err == nil {
				delim := "$"
				if kind == TokenDisplayMath {
					delim = "$$"
				}
				b.WriteString(delim + expr + delim)
			}
		default:
			if c, ok := tok.Items(); ok {
				b.WriteString(Literal(c))
			}
		}
	}
	return b.String()
}
