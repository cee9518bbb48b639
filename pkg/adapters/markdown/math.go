package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindMath is the node kind of dollar-delimited math.
var KindMath = ast.NewNodeKind("Math")

// KindMathBlock is the node kind of a "$$" fenced display block.
var KindMathBlock = ast.NewNodeKind("MathBlock")

// Math is an inline math span.
type Math struct {
	ast.BaseInline
	Display bool
	Value   []byte
}

// Kind implements ast.Node.
func (n *Math) Kind() ast.NodeKind { return KindMath }

// Dump implements ast.Node.
func (n *Math) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Value": string(n.Value)}, nil)
}

// MathBlock is display math written on its own lines between "$$" fences.
type MathBlock struct {
	ast.BaseBlock
}

// Kind implements ast.Node.
func (n *MathBlock) Kind() ast.NodeKind { return KindMathBlock }

// Dump implements ast.Node.
func (n *MathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// IsRaw implements ast.Node.
func (n *MathBlock) IsRaw() bool { return true }

type inlineDollarParser struct{}

func (inlineDollarParser) Trigger() []byte {
	return []byte{'$'}
}

// Parse follows the tex_math_dollars rules: the opening "$" must be followed
// by a non-space, the closing "$" preceded by a non-space and not followed by
// a digit. "$$...$$" on one line is display math.
func (inlineDollarParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if len(line) < 3 || line[0] != '$' {
		return nil
	}

	if line[1] == '$' {
		rest := line[2:]
		end := bytes.Index(rest, []byte("$$"))
		if end < 1 {
			return nil
		}
		block.Advance(2 + end + 2)
		return &Math{Display: true, Value: bytes.Clone(rest[:end])}
	}

	rest := line[1:]
	if isSpace(rest[0]) {
		return nil
	}
	for i := 1; i < len(rest); i++ {
		switch rest[i] {
		case '\n':
			return nil
		case '$':
			if isSpace(rest[i-1]) || rest[i-1] == '\\' {
				continue
			}
			if i+1 < len(rest) && isDigit(rest[i+1]) {
				continue
			}
			block.Advance(1 + i + 1)
			return &Math{Value: bytes.Clone(rest[:i])}
		}
	}
	return nil
}

type mathBlockParser struct{}

func (mathBlockParser) Trigger() []byte {
	return []byte{'$'}
}

func (mathBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	if string(util.TrimRightSpace(util.TrimLeftSpace(line))) != "$$" {
		return nil, parser.NoChildren
	}
	reader.Advance(segment.Len() - 1)
	return &MathBlock{}, parser.NoChildren
}

func (mathBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, segment := reader.PeekLine()
	if line == nil {
		return parser.Close
	}
	if string(util.TrimRightSpace(util.TrimLeftSpace(line))) == "$$" {
		reader.Advance(segment.Len() - 1)
		return parser.Close
	}
	node.Lines().Append(segment)
	reader.Advance(segment.Len() - 1)
	return parser.Continue | parser.NoChildren
}

func (mathBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (mathBlockParser) CanInterruptParagraph() bool { return true }

func (mathBlockParser) CanAcceptIndentedLine() bool { return false }

// MathExtension adds dollar math parsing to goldmark.
type MathExtension struct{}

// Extend implements goldmark.Extender.
func (MathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(util.Prioritized(mathBlockParser{}, 701)),
		parser.WithInlineParsers(util.Prioritized(inlineDollarParser{}, 501)),
	)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
