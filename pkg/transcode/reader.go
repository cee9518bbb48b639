package transcode

import (
	"fmt"
	"regexp"

	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/aretw0/mathspan/pkg/pandoc"
)

var (
	inlineMathRegex            = regexp.MustCompile(`\$[^ ].*?[^ ]\$`)
	singleLineDisplayMathRegex = regexp.MustCompile(`\$\$[^\n]*?\$\$`)
)

// ReadMath turns a Math token into a node whose content carries the
// delimiters of its kind.
func (t *Transcoder) ReadMath(tok pandoc.Token) (*domain.MathNode, error) {
	rawKind, expr, err := pandoc.MathPayload(tok)
	if err != nil {
		return nil, err
	}
	kind, err := domain.ParseKind(rawKind)
	if err != nil {
		return nil, fmt.Errorf("failed to read math token: %w", err)
	}
	return domain.NewMathNode(kind, expr), nil
}

// ReadCode recognizes math disguised as inline code. It only matches when the
// profile has disguise mode on. The node keeps the code text as-is.
func (t *Transcoder) ReadCode(tok pandoc.Token) (*domain.MathNode, bool) {
	if !t.profile.BlogdownMathInCode || tok.T != pandoc.TokenCode {
		return nil, false
	}
	text, err := pandoc.CodeText(tok)
	if err != nil {
		return nil, false
	}
	switch {
	case singleLineDisplayMathRegex.MatchString(text):
		return &domain.MathNode{Kind: domain.MathDisplay, Content: text}, true
	case inlineMathRegex.MatchString(text):
		return &domain.MathNode{Kind: domain.MathInline, Content: text}, true
	}
	return nil, false
}
