package domain

import (
	"encoding/json"
	"fmt"
)

// MathKind discriminates inline from display math.
// The values match the discriminators used by the interchange format.
type MathKind string

const (
	// MathInline is math delimited by single dollars.
	MathInline MathKind = "InlineMath"
	// MathDisplay is math delimited by double dollars.
	MathDisplay MathKind = "DisplayMath"
)

const (
	// DelimiterInline wraps inline math.
	DelimiterInline = "$"
	// DelimiterDisplay wraps display math.
	DelimiterDisplay = "$$"
)

// ParseKind validates a discriminator read from a document.
// Anything outside the known set is reported as ErrUnrecognizedMathKind and is
// never coerced, since guessing would rewrite the user's content on every save.
func ParseKind(s string) (MathKind, error) {
	switch MathKind(s) {
	case MathInline, MathDisplay:
		return MathKind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnrecognizedMathKind, s)
	}
}

// Valid reports whether k is one of the known kinds.
func (k MathKind) Valid() bool {
	return k == MathInline || k == MathDisplay
}

// Delimiter returns the literal delimiter for k.
func (k MathKind) Delimiter() string {
	return DelimiterFor(k)
}

// DelimiterFor maps a kind to its textual delimiter: "$" for inline math and
// "$$" for display math.
func DelimiterFor(kind MathKind) string {
	if kind == MathInline {
		return DelimiterInline
	}
	return DelimiterDisplay
}

// UnmarshalJSON rejects unknown kinds.
func (k *MathKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
