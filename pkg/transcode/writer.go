package transcode

import (
	"fmt"
	"strings"

	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/aretw0/mathspan/pkg/pandoc"
)

// WriteMath writes node to out.
func (t *Transcoder) WriteMath(out *pandoc.Output, node *domain.MathNode) error {
	if !node.Kind.Valid() {
		return fmt.Errorf("failed to write math node: %w: %q", domain.ErrUnrecognizedMathKind, node.Kind)
	}

	equation := node.Content

	if t.profile.BlogdownMathInCode {
		out.WriteToken(pandoc.TokenCode, func() {
			out.WriteAttr("")
			out.Write(equation)
		})
		return nil
	}

	expr, ok := domain.StripDelimiters(node.Kind, equation)
	if !ok {
		// Delimiters were edited away: write the content literally. On the
		// next load it is no longer math.
		out.WriteRawMarkdown(equation)
		return nil
	}

	// An empty equation is a valid editing state but not meaningful math.
	if strings.TrimSpace(expr) == "" {
		out.WriteText(equation)
		return nil
	}

	out.WriteToken(pandoc.TokenMath, func() {
		out.WriteToken(string(node.Kind))
		out.Write(expr)
	})
	return nil
}
