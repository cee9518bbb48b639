package pandoc

import (
	"encoding/json"
	"fmt"
	"io"
)

// DefaultAPIVersion is written when a document carries no version.
var DefaultAPIVersion = []int{1, 23, 1}

// Document is a decoded interchange document. Blocks and Meta are kept as
// generic JSON values so that anything mathspan does not understand
// round-trips untouched.
type Document struct {
	APIVersion []int          `json:"pandoc-api-version"`
	Meta       map[string]any `json:"meta"`
	Blocks     []any          `json:"blocks"`
}

// NewDocument returns an empty document with the default API version.
func NewDocument(blocks ...any) *Document {
	if blocks == nil {
		blocks = []any{}
	}
	return &Document{
		APIVersion: DefaultAPIVersion,
		Meta:       map[string]any{},
		Blocks:     blocks,
	}
}

// Decode reads a document. Numbers are preserved verbatim.
func Decode(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode pandoc document: %w", err)
	}
	if doc.Meta == nil {
		doc.Meta = map[string]any{}
	}
	if doc.Blocks == nil {
		doc.Blocks = []any{}
	}
	if len(doc.APIVersion) == 0 {
		doc.APIVersion = DefaultAPIVersion
	}
	return &doc, nil
}

// Encode writes a document as a single JSON line.
func Encode(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode pandoc document: %w", err)
	}
	return nil
}
