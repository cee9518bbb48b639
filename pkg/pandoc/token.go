package pandoc

import (
	"fmt"

	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Token types used by mathspan.
const (
	TokenMath        = "Math"
	TokenInlineMath  = "InlineMath"
	TokenDisplayMath = "DisplayMath"
	TokenCode        = "Code"
	TokenStr         = "Str"
	TokenSpace       = "Space"
	TokenSoftBreak   = "SoftBreak"
	TokenLineBreak   = "LineBreak"
	TokenRawInline   = "RawInline"
	TokenPara        = "Para"
	TokenPlain       = "Plain"
	TokenHeader      = "Header"
	TokenCodeBlock   = "CodeBlock"
	TokenRawBlock    = "RawBlock"
	TokenEmph        = "Emph"
	TokenStrong      = "Strong"
	TokenLink        = "Link"
	TokenImage       = "Image"
	TokenBlockQuote  = "BlockQuote"
	TokenBulletList  = "BulletList"
	TokenOrderedList = "OrderedList"
	TokenRule        = "HorizontalRule"
	TokenDecimal     = "Decimal"
	TokenPeriod      = "Period"
)

// Positions inside the c array of Math and Code tokens.
const (
	mathTypeIdx    = 0
	mathContentIdx = 1
	codeTextIdx    = 1
)

// FormatMarkdown is the raw format used for literal markdown.
const FormatMarkdown = "markdown"

// FormatHTML is the raw format of embedded HTML.
const FormatHTML = "html"

// Token is a single element of the interchange tree.
type Token struct {
	T string `json:"t" mapstructure:"t"`
	C any    `json:"c,omitempty" mapstructure:"c"`
}

// AsToken interprets v as a token. Decoded documents hold tokens as
// map[string]any; tokens produced by Output are Token values.
func AsToken(v any) (Token, bool) {
	switch val := v.(type) {
	case Token:
		return val, true
	case *Token:
		if val == nil {
			return Token{}, false
		}
		return *val, true
	case map[string]any:
		if _, ok := val["t"].(string); !ok {
			return Token{}, false
		}
		var tok Token
		if err := mapstructure.Decode(val, &tok); err != nil {
			return Token{}, false
		}
		return tok, true
	}
	return Token{}, false
}

// Items returns the content of t as a list.
func (t Token) Items() ([]any, bool) {
	items, ok := t.C.([]any)
	return items, ok
}

// MathPayload extracts the kind discriminator and expression of a Math token.
func MathPayload(tok Token) (kind string, expr string, err error) {
	items, ok := tok.Items()
	if tok.T != TokenMath || !ok || len(items) != 2 {
		return "", "", fmt.Errorf("%w: expected Math [type, text], got %s", domain.ErrMalformedToken, tok.T)
	}
	typeTok, ok := AsToken(items[mathTypeIdx])
	if !ok {
		return "", "", fmt.Errorf("%w: math type is not a token", domain.ErrMalformedToken)
	}
	expr, ok = items[mathContentIdx].(string)
	if !ok {
		return "", "", fmt.Errorf("%w: math content is not text", domain.ErrMalformedToken)
	}
	return typeTok.T, expr, nil
}

// CodeText extracts the literal text of an inline Code token.
func CodeText(tok Token) (string, error) {
	items, ok := tok.Items()
	if tok.T != TokenCode || !ok || len(items) != 2 {
		return "", fmt.Errorf("%w: expected Code [attr, text], got %s", domain.ErrMalformedToken, tok.T)
	}
	text, ok := items[codeTextIdx].(string)
	if !ok {
		return "", fmt.Errorf("%w: code content is not text", domain.ErrMalformedToken)
	}
	return text, nil
}

// EmptyAttr is the attribute triple [id, classes, key-values] with nothing set.
func EmptyAttr() []any {
	return []any{"", []any{}, []any{}}
}
