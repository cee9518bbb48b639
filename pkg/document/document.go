// Package document holds the editor's document model: an interchange tree in
// which every math token has been lifted into a *domain.MathNode.
package document

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/aretw0/mathspan/pkg/pandoc"
	"github.com/mitchellh/mapstructure"
)

// TokenMathNode tags math nodes when the model itself is serialized.
const TokenMathNode = "MathNode"

// Document is the editor model.
type Document struct {
	APIVersion []int
	Meta       map[string]any
	Blocks     []any
}

// New returns an empty document.
func New() *Document {
	return &Document{
		APIVersion: slices.Clone(pandoc.DefaultAPIVersion),
		Meta:       map[string]any{},
		Blocks:     []any{},
	}
}

// Ref locates a math node. Pos is its ordinal in document order, metadata
// (by key) first.
type Ref struct {
	Pos  int
	Node *domain.MathNode
}

// MathNodes lists the math nodes of the document in order.
func (d *Document) MathNodes() []Ref {
	var refs []Ref
	visit := func(n *domain.MathNode) {
		refs = append(refs, Ref{Pos: len(refs), Node: n})
	}
	walk(d.Meta, visit)
	walk(d.Blocks, visit)
	return refs
}

// Node returns the math node at ordinal pos.
func (d *Document) Node(pos int) (*domain.MathNode, bool) {
	refs := d.MathNodes()
	if pos < 0 || pos >= len(refs) {
		return nil, false
	}
	return refs[pos].Node, true
}

func walk(v any, fn func(*domain.MathNode)) {
	switch val := v.(type) {
	case *domain.MathNode:
		fn(val)
	case []any:
		for _, item := range val {
			walk(item, fn)
		}
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(val)) {
			walk(val[k], fn)
		}
	case pandoc.Token:
		walk(val.C, fn)
	}
}

// Clone returns a deep copy; math nodes are copied too.
func (d *Document) Clone() *Document {
	copyNodes := func(item any) ([]any, bool, error) {
		if n, ok := item.(*domain.MathNode); ok {
			cp := *n
			return []any{&cp}, true, nil
		}
		return nil, false, nil
	}
	meta, _ := pandoc.RewriteMap(d.Meta, copyNodes)
	blocks, _ := pandoc.RewriteList(d.Blocks, copyNodes)
	return &Document{
		APIVersion: append([]int(nil), d.APIVersion...),
		Meta:       meta,
		Blocks:     blocks,
	}
}

type wireDocument struct {
	APIVersion []int          `json:"pandoc-api-version"`
	Meta       map[string]any `json:"meta"`
	Blocks     []any          `json:"blocks"`
}

// MarshalJSON encodes math nodes as {"t":"MathNode","c":{...}} tokens.
func (d *Document) MarshalJSON() ([]byte, error) {
	tag := func(item any) ([]any, bool, error) {
		if n, ok := item.(*domain.MathNode); ok {
			return []any{pandoc.Token{T: TokenMathNode, C: n}}, true, nil
		}
		return nil, false, nil
	}
	meta, err := pandoc.RewriteMap(d.Meta, tag)
	if err != nil {
		return nil, err
	}
	blocks, err := pandoc.RewriteList(d.Blocks, tag)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireDocument{APIVersion: d.APIVersion, Meta: meta, Blocks: blocks})
}

// UnmarshalJSON decodes a serialized model. Unknown math kinds are rejected.
func (d *Document) UnmarshalJSON(data []byte) error {
	var wire wireDocument
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	doc, err := fromWire(wire)
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}

func fromWire(wire wireDocument) (*Document, error) {
	meta, err := pandoc.RewriteMap(wire.Meta, liftTagged)
	if err != nil {
		return nil, err
	}
	if wire.Blocks == nil {
		wire.Blocks = []any{}
	}
	blocks, err := pandoc.RewriteList(wire.Blocks, liftTagged)
	if err != nil {
		return nil, err
	}
	version := wire.APIVersion
	if len(version) == 0 {
		version = pandoc.DefaultAPIVersion
	}
	return &Document{APIVersion: version, Meta: meta, Blocks: blocks}, nil
}

func liftTagged(item any) ([]any, bool, error) {
	tok, ok := pandoc.AsToken(item)
	if !ok || tok.T != TokenMathNode {
		return nil, false, nil
	}
	var raw struct {
		Kind    string `mapstructure:"kind"`
		Content string `mapstructure:"content"`
	}
	if err := mapstructure.Decode(tok.C, &raw); err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	}
	kind, err := domain.ParseKind(raw.Kind)
	if err != nil {
		return nil, false, err
	}
	return []any{&domain.MathNode{Kind: kind, Content: raw.Content}}, true, nil
}

// Decode reads a serialized model.
func Decode(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var wire wireDocument
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return fromWire(wire)
}

// Encode writes a serialized model.
func Encode(w io.Writer, d *Document) error {
	data, err := d.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
