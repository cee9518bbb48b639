package transcode

import (
	"github.com/aretw0/mathspan/pkg/document"
	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/aretw0/mathspan/pkg/pandoc"
)

// Transcoder is stateless apart from its profile and safe for concurrent use.
type Transcoder struct {
	profile domain.Profile
}

// New creates a transcoder for the given target profile.
func New(profile domain.Profile) *Transcoder {
	return &Transcoder{profile: profile}
}

// Profile returns the target profile.
func (t *Transcoder) Profile() domain.Profile {
	return t.profile
}

// Load lifts the math of an interchange document into the editor model.
// With the math extension disabled, math tokens stay opaque.
func (t *Transcoder) Load(doc *pandoc.Document) (*document.Document, error) {
	lift := func(item any) ([]any, bool, error) {
		if !t.profile.TexMathDollars {
			return nil, false, nil
		}
		tok, ok := pandoc.AsToken(item)
		if !ok {
			return nil, false, nil
		}
		switch tok.T {
		case pandoc.TokenMath:
			node, err := t.ReadMath(tok)
			if err != nil {
				return nil, false, err
			}
			return []any{node}, true, nil
		case pandoc.TokenCode:
			if node, ok := t.ReadCode(tok); ok {
				return []any{node}, true, nil
			}
		}
		return nil, false, nil
	}

	meta, err := pandoc.RewriteMap(doc.Meta, lift)
	if err != nil {
		return nil, err
	}
	blocks, err := pandoc.RewriteList(doc.Blocks, lift)
	if err != nil {
		return nil, err
	}
	return &document.Document{
		APIVersion: append([]int(nil), doc.APIVersion...),
		Meta:       meta,
		Blocks:     blocks,
	}, nil
}

// Save writes the editor model back to the interchange format.
func (t *Transcoder) Save(doc *document.Document) (*pandoc.Document, error) {
	lower := func(item any) ([]any, bool, error) {
		node, ok := item.(*domain.MathNode)
		if !ok {
			return nil, false, nil
		}
		out := pandoc.NewOutput()
		if err := t.WriteMath(out, node); err != nil {
			return nil, false, err
		}
		return out.Tokens(), true, nil
	}

	meta, err := pandoc.RewriteMap(doc.Meta, lower)
	if err != nil {
		return nil, err
	}
	blocks, err := pandoc.RewriteList(doc.Blocks, lower)
	if err != nil {
		return nil, err
	}
	version := doc.APIVersion
	if len(version) == 0 {
		version = pandoc.DefaultAPIVersion
	}
	return &pandoc.Document{
		APIVersion: append([]int(nil), version...),
		Meta:       meta,
		Blocks:     blocks,
	}, nil
}
