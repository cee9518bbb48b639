package mathspan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/mathspan/internal/logging"
	"github.com/aretw0/mathspan/pkg/adapters/terminal"
	"github.com/aretw0/mathspan/pkg/document"
	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/aretw0/mathspan/pkg/pandoc"
	"github.com/aretw0/mathspan/pkg/ports"
	"github.com/aretw0/mathspan/pkg/surface"
	"github.com/aretw0/mathspan/pkg/transcode"
	"github.com/aretw0/mathspan/pkg/typeset"
	"github.com/aretw0/mathspan/pkg/view"
	"github.com/prometheus/client_golang/prometheus"
)

// Editor is the high-level entry point of the library. It owns the typeset
// queue of one editor instance and the transcoder of its target profile.
type Editor struct {
	profile    domain.Profile
	typesetter ports.Typesetter
	logger     *slog.Logger
	hooks      domain.TypesetHooks
	registerer prometheus.Registerer

	retryDelay  time.Duration
	maxAttempts int
	taskTimeout time.Duration
	debounce    time.Duration

	transcoder *transcode.Transcoder
	metrics    *typeset.Metrics
	queue      *typeset.Queue
	service    *typeset.Service

	mu     sync.Mutex
	views  map[*view.MathView]struct{}
	closed bool
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithTypesetter sets the rendering service. Defaults to a plain terminal typesetter.
func WithTypesetter(t ports.Typesetter) Option {
	return func(e *Editor) {
		e.typesetter = t
	}
}

// WithProfile selects the target-renderer profile used on load and save.
func WithProfile(p domain.Profile) Option {
	return func(e *Editor) {
		e.profile = p
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithTypesetHooks registers observability hooks.
func WithTypesetHooks(hooks domain.TypesetHooks) Option {
	return func(e *Editor) {
		e.hooks = hooks
	}
}

// WithRetryDelay sets the delay before a detached surface is retried.
func WithRetryDelay(d time.Duration) Option {
	return func(e *Editor) {
		e.retryDelay = d
	}
}

// WithMaxAttempts caps the retries of a never-attached surface. Zero retries
// until the owning view is destroyed.
func WithMaxAttempts(n int) Option {
	return func(e *Editor) {
		e.maxAttempts = n
	}
}

// WithTaskTimeout enables the queue watchdog.
func WithTaskTimeout(d time.Duration) Option {
	return func(e *Editor) {
		e.taskTimeout = d
	}
}

// WithDebounce sets the edit debounce period of views.
func WithDebounce(d time.Duration) Option {
	return func(e *Editor) {
		e.debounce = d
	}
}

// WithRegisterer records typeset metrics in reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(e *Editor) {
		e.registerer = reg
	}
}

// New creates an Editor.
func New(opts ...Option) (*Editor, error) {
	e := &Editor{
		profile:    domain.DefaultProfile(),
		logger:     logging.NewNop(),
		retryDelay: typeset.DefaultRetryDelay,
		debounce:   view.DefaultDebounce,
		views:      make(map[*view.MathView]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.typesetter == nil {
		t, err := terminal.NewPlain()
		if err != nil {
			return nil, fmt.Errorf("failed to create default typesetter: %w", err)
		}
		e.typesetter = t
	}
	if e.registerer != nil {
		e.metrics = typeset.NewMetrics(e.registerer)
	}

	e.transcoder = transcode.New(e.profile)
	e.queue = typeset.NewQueue(
		typeset.WithLogger(e.logger),
		typeset.WithTaskTimeout(e.taskTimeout),
		typeset.WithMetrics(e.metrics),
	)
	e.service = typeset.NewService(e.queue, e.typesetter,
		typeset.WithLogger(e.logger),
		typeset.WithRetryDelay(e.retryDelay),
		typeset.WithMaxAttempts(e.maxAttempts),
		typeset.WithHooks(e.hooks),
	)
	return e, nil
}

// Profile returns the active profile.
func (e *Editor) Profile() domain.Profile {
	return e.profile
}

// Metrics returns the typeset metrics, or nil without WithRegisterer.
func (e *Editor) Metrics() *typeset.Metrics {
	return e.metrics
}

// Load lifts the math of an interchange document into the editor model.
func (e *Editor) Load(doc *pandoc.Document) (*document.Document, error) {
	return e.transcoder.Load(doc)
}

// Save lowers the editor model into an interchange document.
func (e *Editor) Save(doc *document.Document) (*pandoc.Document, error) {
	return e.transcoder.Save(doc)
}

// Read decodes a Pandoc JSON document and loads it.
func (e *Editor) Read(r io.Reader) (*document.Document, error) {
	doc, err := pandoc.Decode(r)
	if err != nil {
		return nil, err
	}
	return e.Load(doc)
}

// Write saves doc and encodes it as Pandoc JSON.
func (e *Editor) Write(w io.Writer, doc *document.Document) error {
	out, err := e.Save(doc)
	if err != nil {
		return err
	}
	return pandoc.Encode(w, out)
}

// Typeset queues a render of text into target.
func (e *Editor) Typeset(ctx context.Context, target ports.Surface, text string) <-chan error {
	return e.service.Typeset(ctx, target, text)
}

// Preview typesets source into a scratch surface and returns the result.
func (e *Editor) Preview(ctx context.Context, source string) (string, error) {
	root := surface.NewRoot()
	target := surface.NewElement("div", view.ClassPreview)
	root.Append(target)

	if err := e.service.Render(ctx, target, source); err != nil {
		return "", err
	}
	return target.Text(), nil
}

// NewView creates a view for node. The view is destroyed by Close unless the
// caller destroys it first through ReleaseView.
func (e *Editor) NewView(node *domain.MathNode, pos view.PosFunc) *view.MathView {
	v := view.New(node, e.service.Typeset, pos,
		view.WithDebounce(e.debounce),
		view.WithLogger(e.logger),
	)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		v.Destroy()
		return v
	}
	e.views[v] = struct{}{}
	return v
}

// ReleaseView destroys v.
func (e *Editor) ReleaseView(v *view.MathView) {
	e.mu.Lock()
	delete(e.views, v)
	e.mu.Unlock()
	v.Destroy()
}

// Wait blocks until the typeset queue is idle.
func (e *Editor) Wait(ctx context.Context) error {
	return e.queue.Wait(ctx)
}

// Close destroys all views and stops the typeset queue.
func (e *Editor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	views := e.views
	e.views = nil
	e.mu.Unlock()

	for v := range views {
		v.Destroy()
	}
	e.queue.Close()
}
