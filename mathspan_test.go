package mathspan_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/mathspan"
	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/aretw0/mathspan/pkg/pandoc"
	"github.com/aretw0/mathspan/pkg/ports"
	"github.com/aretw0/mathspan/pkg/surface"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{"pandoc-api-version":[1,23,1],"meta":{},"blocks":[{"t":"Para","c":[` +
	`{"t":"Str","c":"Let"},{"t":"Space"},{"t":"Math","c":[{"t":"InlineMath"},"x+1"]},{"t":"Space"},` +
	`{"t":"Math","c":[{"t":"DisplayMath"},"\\sum_i y_i"]}]}]}`

type recordingTypesetter struct {
	mu      sync.Mutex
	sources []string
}

func (r *recordingTypesetter) Typeset(ctx context.Context, target ports.Surface, source string) error {
	r.mu.Lock()
	r.sources = append(r.sources, source)
	r.mu.Unlock()
	target.SetContent("rendered:" + source)
	return nil
}

func (r *recordingTypesetter) Sources() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sources...)
}

func newEditor(t *testing.T, opts ...mathspan.Option) (*mathspan.Editor, *recordingTypesetter) {
	t.Helper()
	ts := &recordingTypesetter{}
	opts = append([]mathspan.Option{
		mathspan.WithTypesetter(ts),
		mathspan.WithRetryDelay(5 * time.Millisecond),
		mathspan.WithDebounce(20 * time.Millisecond),
	}, opts...)
	e, err := mathspan.New(opts...)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e, ts
}

func TestEditor_ReadWriteRoundTrip(t *testing.T) {
	e, _ := newEditor(t)

	doc, err := e.Read(strings.NewReader(sample))
	require.NoError(t, err)

	refs := doc.MathNodes()
	require.Len(t, refs, 2)
	assert.Equal(t, "$x+1$", refs[0].Node.Content)
	assert.Equal(t, "$$\\sum_i y_i$$", refs[1].Node.Content)

	var buf bytes.Buffer
	require.NoError(t, e.Write(&buf, doc))

	again, err := e.Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, doc.MathNodes(), again.MathNodes())
}

func TestEditor_ReadRejectsUnknownKind(t *testing.T) {
	e, _ := newEditor(t)
	bad := strings.Replace(sample, "InlineMath", "SideMath", 1)

	_, err := e.Read(strings.NewReader(bad))
	assert.ErrorIs(t, err, domain.ErrUnrecognizedMathKind)
}

func TestEditor_MountRendersAndRoutesEdits(t *testing.T) {
	e, ts := newEditor(t)
	doc, err := e.Read(strings.NewReader(sample))
	require.NoError(t, err)

	root := surface.NewRoot()
	mounted := e.Mount(doc, root)
	defer mounted.Unmount()

	views := mounted.Views()
	require.Len(t, views, 2)
	require.Eventually(t, func() bool { return views[0].Rendered() && views[1].Rendered() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "rendered:$x+1$", views[0].PreviewDOM().Text())

	// The user deletes the leading delimiter of the first equation.
	require.True(t, mounted.Edit(0, "x+1$"))
	assert.Equal(t, "x+1$", views[0].Node().Content)
	require.Eventually(t, func() bool {
		s := ts.Sources()
		return s[len(s)-1] == "x+1$"
	}, time.Second, 5*time.Millisecond)

	snap := mounted.Snapshot()
	node, ok := snap.Node(0)
	require.True(t, ok)
	assert.Equal(t, "x+1$", node.Content)

	out, err := e.Save(snap)
	require.NoError(t, err)
	para, ok := pandoc.AsToken(out.Blocks[0])
	require.True(t, ok)
	inlines, _ := para.Items()
	assert.Equal(t, "Let x+1$ $$\\sum_i y_i$$", pandoc.Literal(inlines))
}

func TestEditor_PreviewAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	e, _ := newEditor(t, mathspan.WithRegisterer(reg))

	out, err := e.Preview(context.Background(), "$a^2$")
	require.NoError(t, err)
	assert.Equal(t, "rendered:$a^2$", out)

	require.NotNil(t, e.Metrics())
	assert.Equal(t, 1.0, testutil.ToFloat64(e.Metrics().Typesets.WithLabelValues("success")))
}

func TestEditor_DefaultTypesetter(t *testing.T) {
	e, err := mathspan.New()
	require.NoError(t, err)
	defer e.Close()

	out, err := e.Preview(context.Background(), `$\beta$`)
	require.NoError(t, err)
	assert.Contains(t, out, `\beta`)
}

func TestEditor_Close(t *testing.T) {
	e, ts := newEditor(t)
	doc, err := e.Read(strings.NewReader(sample))
	require.NoError(t, err)

	// Never attached: the views keep retrying until the editor closes.
	mounted := e.Mount(doc, surface.NewElement("div"))
	time.Sleep(20 * time.Millisecond)
	e.Close()

	err = <-e.Typeset(context.Background(), surface.NewRoot(), "$x$")
	assert.ErrorIs(t, err, domain.ErrQueueClosed)
	assert.Empty(t, ts.Sources())
	assert.False(t, mounted.Views()[0].Rendered())
}
