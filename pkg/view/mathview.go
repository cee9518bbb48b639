package view

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/mathspan/internal/logging"
	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/aretw0/mathspan/pkg/ports"
	"github.com/aretw0/mathspan/pkg/surface"
)

// DefaultDebounce is the quiet period between edits before the trailing re-typeset.
const DefaultDebounce = 250 * time.Millisecond

// CSS classes of the view elements.
const (
	ClassView      = "mathspan-view"
	ClassRendered  = "mathspan-view-rendered"
	ClassCode      = "mathspan-view-code"
	ClassPreview   = "mathspan-view-preview"
	ClassFixedFont = "mathspan-fixedwidth-font"
	ClassLightText = "mathspan-light-text-color"
)

// TypesetFunc queues a render of text into target and returns a channel
// delivering the outcome. typeset.Service.Typeset satisfies it.
type TypesetFunc func(ctx context.Context, target ports.Surface, text string) <-chan error

// PosFunc reports the document position of the node a view is bound to.
type PosFunc func() int

// Option configures a MathView.
type Option func(*MathView)

// WithDebounce overrides the edit debounce period.
func WithDebounce(d time.Duration) Option {
	return func(v *MathView) {
		if d > 0 {
			v.debounceWait = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *MathView) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// MathView controls the display of one math node: an editable region holding
// the delimited source and a read-only preview the typesetter renders into.
type MathView struct {
	typeset      TypesetFunc
	pos          PosFunc
	debounceWait time.Duration
	logger       *slog.Logger

	dom     *surface.Element
	content *surface.Element
	preview *surface.Element

	debounce *Debouncer
	ctx      context.Context
	cancel   context.CancelFunc

	mu        sync.Mutex
	node      domain.MathNode
	rendered  bool
	seq       uint64
	applied   uint64
	cancelReq context.CancelFunc // withdraws the latest request
}

// New creates the view for node and requests its first typeset right away.
func New(node *domain.MathNode, typeset TypesetFunc, pos PosFunc, opts ...Option) *MathView {
	v := &MathView{
		typeset:      typeset,
		pos:          pos,
		debounceWait: DefaultDebounce,
		logger:       logging.NewNop(),
		node:         *node,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.ctx, v.cancel = context.WithCancel(context.Background())

	v.dom = surface.NewElement("div", ClassView)

	v.content = surface.NewElement("div", ClassCode, ClassFixedFont, ClassLightText)
	v.content.SetAttr("spellcheck", "false")
	v.content.SetAttr("data-type", string(node.Kind))
	v.content.SetEditable(true)
	v.content.SetText(node.Content)
	v.dom.Append(v.content)

	v.preview = surface.NewElement("div", ClassPreview)
	v.preview.SetEditable(false)
	v.preview.SetHidden(true)
	v.dom.Append(v.preview)

	v.debounce = NewDebouncer(v.debounceWait, v.requestTypeset)
	v.requestTypeset()
	return v
}

// Update replaces the bound node. It returns false when n is not a math node,
// in which case the host must recreate the view.
func (v *MathView) Update(n domain.Node) bool {
	if n == nil || n.Type() != domain.NodeTypeMath {
		return false
	}

	var next domain.MathNode
	switch m := n.(type) {
	case *domain.MathNode:
		next = *m
	case domain.MathNode:
		next = m
	default:
		return false
	}

	v.mu.Lock()
	kindChanged := next.Kind != v.node.Kind
	v.node = next
	v.mu.Unlock()

	if kindChanged {
		v.content.SetAttr("data-type", string(next.Kind))
	}
	if v.content.Text() != next.Content {
		v.content.SetText(next.Content)
	}
	v.debounce.Call()
	return true
}

// IgnoreMutation reports whether a display mutation should not be treated as
// a user edit. Only changes inside the editable region are edits.
func (v *MathView) IgnoreMutation(m surface.Mutation) bool {
	return v.content == nil || !v.content.Contains(m.Target)
}

// Destroy stops pending typesets. Requests still queued for this view end
// without touching its elements.
func (v *MathView) Destroy() {
	v.debounce.Stop()
	v.cancel()
}

// DOM returns the root element of the view.
func (v *MathView) DOM() *surface.Element { return v.dom }

// ContentDOM returns the editable region.
func (v *MathView) ContentDOM() *surface.Element { return v.content }

// PreviewDOM returns the region the typesetter renders into.
func (v *MathView) PreviewDOM() *surface.Element { return v.preview }

// Rendered reports whether the last completed typeset succeeded.
func (v *MathView) Rendered() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rendered
}

// Node returns a copy of the bound node.
func (v *MathView) Node() domain.MathNode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.node
}

// Pos returns the document position of the bound node.
func (v *MathView) Pos() int {
	if v.pos == nil {
		return -1
	}
	return v.pos()
}

func (v *MathView) requestTypeset() {
	if v.ctx.Err() != nil {
		return
	}
	// Each request withdraws the previous one, queued or waiting to retry,
	// so older text never reaches the preview after newer text.
	ctx, cancel := context.WithCancel(v.ctx)
	v.mu.Lock()
	if v.cancelReq != nil {
		v.cancelReq()
	}
	v.cancelReq = cancel
	text := v.node.TextContent()
	v.seq++
	seq := v.seq
	v.mu.Unlock()

	outcome := v.typeset(ctx, v.preview, text)
	go func() {
		defer cancel()
		err, ok := <-outcome
		if !ok {
			return
		}
		v.handleResult(seq, err)
	}()
}

// handleResult applies the outcome of request seq unless a later one already landed.
func (v *MathView) handleResult(seq uint64, err error) {
	if v.ctx.Err() != nil {
		return
	}

	v.mu.Lock()
	if seq < v.applied || (seq < v.seq && errors.Is(err, context.Canceled)) {
		v.mu.Unlock()
		return
	}
	v.applied = seq
	v.rendered = err == nil
	v.mu.Unlock()

	if err != nil {
		v.logger.Debug("math not rendered, keeping previous preview", "pos", v.Pos(), "error", err)
		v.dom.RemoveClass(ClassRendered)
		return
	}
	v.dom.AddClass(ClassRendered)
	v.preview.SetHidden(false)
}
