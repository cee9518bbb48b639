package domain

import "strings"

// NodeType identifies the kind of a document node.
// Views are bound to one NodeType; a node of another type is never patched
// into an existing view, the host recreates the view instead.
type NodeType string

const (
	// NodeTypeMath is the type of MathNode.
	NodeTypeMath NodeType = "math"
	// NodeTypeText is the type of TextNode.
	NodeTypeText NodeType = "text"
)

// Node is the part of a document node the views care about.
type Node interface {
	Type() NodeType
	TextContent() string
}

// MathNode is one inline or display equation.
// Content holds the source text including its delimiters, e.g. "$x+1$".
type MathNode struct {
	Kind    MathKind `json:"kind" mapstructure:"kind"`
	Content string   `json:"content" mapstructure:"content"`
}

// NewMathNode wraps expr in the delimiters of kind.
func NewMathNode(kind MathKind, expr string) *MathNode {
	delim := DelimiterFor(kind)
	return &MathNode{Kind: kind, Content: delim + expr + delim}
}

// Type implements Node.
func (n MathNode) Type() NodeType { return NodeTypeMath }

// TextContent implements Node.
func (n MathNode) TextContent() string { return n.Content }

// Expression strips the delimiters of the node's kind from Content.
// ok is false when Content does not start and end with the delimiter, or when
// the two delimiters would overlap (e.g. "$" for inline math).
func (n MathNode) Expression() (expr string, ok bool) {
	return StripDelimiters(n.Kind, n.Content)
}

// WellFormed reports whether the node still round-trips as math.
func (n MathNode) WellFormed() bool {
	_, ok := n.Expression()
	return ok
}

// Empty reports whether the node is well formed but holds only whitespace,
// the natural starting state of a new equation.
func (n MathNode) Empty() bool {
	expr, ok := n.Expression()
	return ok && strings.TrimSpace(expr) == ""
}

// StripDelimiters removes the delimiters of kind from text.
func StripDelimiters(kind MathKind, text string) (string, bool) {
	delim := DelimiterFor(kind)
	if len(text) < 2*len(delim) {
		return "", false
	}
	if !strings.HasPrefix(text, delim) || !strings.HasSuffix(text, delim) {
		return "", false
	}
	return text[len(delim) : len(text)-len(delim)], true
}

// Classify infers kind and expression from delimited source text, preferring
// display math. It is used by renderers that receive the raw node text.
func Classify(text string) (MathKind, string, bool) {
	if expr, ok := StripDelimiters(MathDisplay, text); ok {
		return MathDisplay, expr, true
	}
	if expr, ok := StripDelimiters(MathInline, text); ok {
		return MathInline, expr, true
	}
	return "", "", false
}

// TextNode is a plain run of text. It exists so that views can be handed a
// node of a different type.
type TextNode struct {
	Text string
}

// Type implements Node.
func (n TextNode) Type() NodeType { return NodeTypeText }

// TextContent implements Node.
func (n TextNode) TextContent() string { return n.Text }
