// Package markdown imports markdown into interchange documents.
//
// Dollar math ($...$ and $$...$$) becomes Math tokens so imported documents
// go through the same load path as documents produced by a converter.
package markdown

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/mathspan/pkg/pandoc"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Importer converts markdown to interchange documents.
type Importer struct {
	md goldmark.Markdown
}

// New creates an Importer with dollar math enabled.
func New() *Importer {
	return &Importer{
		md: goldmark.New(goldmark.WithExtensions(MathExtension{})),
	}
}

// Import parses src.
func (i *Importer) Import(src []byte) *pandoc.Document {
	root := i.md.Parser().Parse(text.NewReader(src))
	c := &converter{source: src}
	return pandoc.NewDocument(c.blocks(root)...)
}

// ImportReader parses markdown read from r.
func (i *Importer) ImportReader(r io.Reader) (*pandoc.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown: %w", err)
	}
	return i.Import(src), nil
}

type converter struct {
	source []byte
}

func (c *converter) blocks(parent ast.Node) []any {
	out := pandoc.NewOutput()
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		c.block(out, n)
	}
	return nonNil(out.Tokens())
}

func (c *converter) inlines(parent ast.Node) []any {
	out := pandoc.NewOutput()
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		c.inline(out, n)
	}
	return nonNil(out.Tokens())
}

func (c *converter) block(out *pandoc.Output, n ast.Node) {
	switch node := n.(type) {
	case *ast.Paragraph:
		out.WriteToken(pandoc.TokenPara, func() { out.Write(c.inlines(node)) })
	case *ast.TextBlock:
		out.WriteToken(pandoc.TokenPlain, func() { out.Write(c.inlines(node)) })
	case *ast.Heading:
		out.WriteToken(pandoc.TokenHeader, func() {
			out.Write(node.Level)
			out.WriteAttr("")
			out.Write(c.inlines(node))
		})
	case *ast.FencedCodeBlock:
		var classes []string
		if lang := node.Language(c.source); len(lang) > 0 {
			classes = append(classes, string(lang))
		}
		out.WriteToken(pandoc.TokenCodeBlock, func() {
			out.WriteAttr("", classes...)
			out.Write(strings.TrimSuffix(c.lines(node), "\n"))
		})
	case *ast.CodeBlock:
		out.WriteToken(pandoc.TokenCodeBlock, func() {
			out.WriteAttr("")
			out.Write(strings.TrimSuffix(c.lines(node), "\n"))
		})
	case *MathBlock:
		expr := strings.TrimSuffix(c.lines(node), "\n")
		out.WriteToken(pandoc.TokenPara, func() {
			out.Write([]any{mathToken(true, expr)})
		})
	case *ast.Blockquote:
		out.WriteToken(pandoc.TokenBlockQuote, func() { out.Write(c.blocks(node)) })
	case *ast.List:
		items := make([]any, 0, node.ChildCount())
		for li := node.FirstChild(); li != nil; li = li.NextSibling() {
			items = append(items, c.blocks(li))
		}
		if node.IsOrdered() {
			out.WriteToken(pandoc.TokenOrderedList, func() {
				out.Write([]any{node.Start, pandoc.Token{T: pandoc.TokenDecimal}, pandoc.Token{T: pandoc.TokenPeriod}})
				out.Write(items)
			})
			return
		}
		out.WriteToken(pandoc.TokenBulletList, func() { out.Write(items) })
	case *ast.ThematicBreak:
		out.WriteToken(pandoc.TokenRule)
	case *ast.HTMLBlock:
		var b strings.Builder
		b.WriteString(c.lines(node))
		if node.HasClosure() {
			b.Write(node.ClosureLine.Value(c.source))
		}
		out.WriteToken(pandoc.TokenRawBlock, func() {
			out.Write(pandoc.FormatHTML)
			out.Write(b.String())
		})
	default:
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			c.block(out, child)
		}
	}
}

func (c *converter) inline(out *pandoc.Output, n ast.Node) {
	switch node := n.(type) {
	case *ast.Text:
		out.WriteText(string(node.Segment.Value(c.source)))
		switch {
		case node.HardLineBreak():
			out.WriteToken(pandoc.TokenLineBreak)
		case node.SoftLineBreak():
			out.WriteToken(pandoc.TokenSoftBreak)
		}
	case *ast.String:
		out.WriteText(string(node.Value))
	case *Math:
		out.Write(mathToken(node.Display, string(node.Value)))
	case *ast.CodeSpan:
		out.WriteToken(pandoc.TokenCode, func() {
			out.WriteAttr("")
			out.Write(c.plain(node))
		})
	case *ast.Emphasis:
		typ := pandoc.TokenEmph
		if node.Level >= 2 {
			typ = pandoc.TokenStrong
		}
		out.WriteToken(typ, func() { out.Write(c.inlines(node)) })
	case *ast.Link:
		out.WriteToken(pandoc.TokenLink, func() {
			out.WriteAttr("")
			out.Write(c.inlines(node))
			out.Write([]any{string(node.Destination), string(node.Title)})
		})
	case *ast.Image:
		out.WriteToken(pandoc.TokenImage, func() {
			out.WriteAttr("")
			out.Write(c.inlines(node))
			out.Write([]any{string(node.Destination), string(node.Title)})
		})
	case *ast.AutoLink:
		url := string(node.URL(c.source))
		out.WriteToken(pandoc.TokenLink, func() {
			out.WriteAttr("")
			out.Write([]any{pandoc.Token{T: pandoc.TokenStr, C: string(node.Label(c.source))}})
			out.Write([]any{url, ""})
		})
	case *ast.RawHTML:
		var b strings.Builder
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			b.Write(seg.Value(c.source))
		}
		out.WriteToken(pandoc.TokenRawInline, func() {
			out.Write(pandoc.FormatHTML)
			out.Write(b.String())
		})
	default:
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			c.inline(out, child)
		}
	}
}

// lines joins the raw lines of a block.
func (c *converter) lines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(c.source))
	}
	return b.String()
}

// plain concatenates the text below n.
func (c *converter) plain(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(c.source))
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func mathToken(display bool, expr string) pandoc.Token {
	kind := pandoc.TokenInlineMath
	if display {
		kind = pandoc.TokenDisplayMath
	}
	return pandoc.Token{T: pandoc.TokenMath, C: []any{pandoc.Token{T: kind}, expr}}
}

func nonNil(items []any) []any {
	if items == nil {
		return []any{}
	}
	return items
}
