// Package mathjax typesets math through an HTTP MathJax rendering service.
//
// The service accepts POST requests with a JSON body {"math","format","svg"}
// and answers {"svg"} on success or {"errors":[...]} with a non-2xx status.
package mathjax

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/aretw0/mathspan/pkg/ports"
)

// ErrRender wraps failures reported by the service.
var ErrRender = errors.New("mathjax render failed")

// Formats understood by the service.
const (
	FormatInline  = "inline-TeX"
	FormatDisplay = "TeX"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

type request struct {
	Math   string `json:"math"`
	Format string `json:"format"`
	SVG    bool   `json:"svg"`
}

type response struct {
	SVG    string   `json:"svg"`
	Errors []string `json:"errors,omitempty"`
}

// Typesetter implements ports.Typesetter against a MathJax service.
type Typesetter struct {
	url    string
	client *http.Client
}

// Option configures the Typesetter.
type Option func(*Typesetter)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Typesetter) {
		if c != nil {
			t.client = c
		}
	}
}

// New creates a Typesetter posting to url.
func New(url string, opts ...Option) *Typesetter {
	t := &Typesetter{
		url:    url,
		client: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Typeset renders source and writes the returned SVG into target.
func (t *Typesetter) Typeset(ctx context.Context, target ports.Surface, source string) error {
	kind, expr, ok := domain.Classify(source)
	if !ok {
		return fmt.Errorf("%q: %w", source, domain.ErrNoMath)
	}

	format := FormatInline
	if kind == domain.MathDisplay {
		format = FormatDisplay
	}
	body, err := json.Marshal(request{Math: expr, Format: format, SVG: true})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build mathjax request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("mathjax request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("failed to read mathjax response: %w", err)
	}

	var out response
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("%w: status %d: undecodable body", ErrRender, resp.StatusCode)
	}
	if resp.StatusCode/100 != 2 || len(out.Errors) > 0 {
		return fmt.Errorf("%w: status %d: %s", ErrRender, resp.StatusCode, strings.Join(out.Errors, "; "))
	}
	if out.SVG == "" {
		return fmt.Errorf("%w: empty svg", ErrRender)
	}

	target.SetContent(out.SVG)
	return nil
}
