package view_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/aretw0/mathspan/pkg/ports"
	"github.com/aretw0/mathspan/pkg/surface"
	"github.com/aretw0/mathspan/pkg/typeset"
	"github.com/aretw0/mathspan/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// texTypesetter fails on sources containing "bad" and records every call.
type texTypesetter struct {
	mu      sync.Mutex
	sources []string
}

func (s *texTypesetter) Typeset(ctx context.Context, target ports.Surface, source string) error {
	s.mu.Lock()
	s.sources = append(s.sources, source)
	s.mu.Unlock()
	if strings.Contains(source, "bad") {
		return errors.New("parse error")
	}
	target.SetContent("<svg>" + source + "</svg>")
	return nil
}

func (s *texTypesetter) Sources() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sources...)
}

func newService(t *testing.T, ts ports.Typesetter) *typeset.Service {
	t.Helper()
	q := typeset.NewQueue()
	t.Cleanup(q.Close)
	return typeset.NewService(q, ts, typeset.WithRetryDelay(5*time.Millisecond))
}

func mount(v *view.MathView) *surface.Element {
	root := surface.NewRoot()
	root.Append(v.DOM())
	return root
}

func TestMathView_Layout(t *testing.T) {
	svc := newService(t, &texTypesetter{})
	node := domain.NewMathNode(domain.MathDisplay, "x")
	v := view.New(node, svc.Typeset, func() int { return 7 })
	defer v.Destroy()

	assert.True(t, v.DOM().HasClass(view.ClassView))
	assert.Equal(t, "$$x$$", v.ContentDOM().Text())
	assert.Equal(t, "DisplayMath", v.ContentDOM().Attr("data-type"))
	assert.Equal(t, "false", v.ContentDOM().Attr("spellcheck"))
	assert.True(t, v.ContentDOM().Editable())
	assert.False(t, v.PreviewDOM().Editable())
	assert.True(t, v.PreviewDOM().Hidden())
	assert.Equal(t, 7, v.Pos())
}

func TestMathView_EagerTypesetOnceAttached(t *testing.T) {
	ts := &texTypesetter{}
	svc := newService(t, ts)
	v := view.New(domain.NewMathNode(domain.MathInline, "x+1"), svc.Typeset, nil)
	defer v.Destroy()

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, ts.Sources(), "a detached view is never typeset")

	mount(v)
	require.Eventually(t, v.Rendered, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"$x+1$"}, ts.Sources())
	assert.True(t, v.DOM().HasClass(view.ClassRendered))
	assert.False(t, v.PreviewDOM().Hidden())
	assert.Equal(t, "<svg>$x+1$</svg>", v.PreviewDOM().Text())
}

func TestMathView_FailureKeepsPreview(t *testing.T) {
	ts := &texTypesetter{}
	svc := newService(t, ts)
	v := view.New(domain.NewMathNode(domain.MathInline, "y"), svc.Typeset, nil, view.WithDebounce(20*time.Millisecond))
	defer v.Destroy()
	mount(v)
	require.Eventually(t, v.Rendered, time.Second, 5*time.Millisecond)

	require.True(t, v.Update(&domain.MathNode{Kind: domain.MathInline, Content: "$bad$"}))
	require.Eventually(t, func() bool { return !v.Rendered() }, time.Second, 5*time.Millisecond)

	assert.False(t, v.DOM().HasClass(view.ClassRendered))
	assert.Equal(t, "<svg>$y$</svg>", v.PreviewDOM().Text(), "last good preview stays visible")
	assert.Equal(t, "$bad$", v.ContentDOM().Text())
}

func TestMathView_UpdateRejectsOtherNodeTypes(t *testing.T) {
	svc := newService(t, &texTypesetter{})
	v := view.New(domain.NewMathNode(domain.MathInline, "x"), svc.Typeset, nil)
	defer v.Destroy()

	assert.False(t, v.Update(domain.TextNode{Text: "$x$"}))
	assert.False(t, v.Update(nil))
	assert.Equal(t, "$x$", v.Node().Content)
}

func TestMathView_UpdateDebouncesToLatest(t *testing.T) {
	ts := &texTypesetter{}
	svc := newService(t, ts)
	v := view.New(domain.NewMathNode(domain.MathInline, "a"), svc.Typeset, nil, view.WithDebounce(40*time.Millisecond))
	defer v.Destroy()
	mount(v)
	require.Eventually(t, v.Rendered, time.Second, 5*time.Millisecond)

	for _, c := range []string{"$ab$", "$abc$", "$abcd$"} {
		require.True(t, v.Update(&domain.MathNode{Kind: domain.MathInline, Content: c}))
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		s := ts.Sources()
		return len(s) > 0 && s[len(s)-1] == "$abcd$"
	}, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, []string{"$a$", "$ab$", "$abcd$"}, ts.Sources())
}

func TestMathView_EditWhileDetachedWithdrawsOlderRequest(t *testing.T) {
	ts := &texTypesetter{}
	q := typeset.NewQueue()
	t.Cleanup(q.Close)
	svc := typeset.NewService(q, ts, typeset.WithRetryDelay(60*time.Millisecond))

	v := view.New(domain.NewMathNode(domain.MathInline, "a"), svc.Typeset, nil, view.WithDebounce(20*time.Millisecond))
	defer v.Destroy()

	time.Sleep(5 * time.Millisecond)
	mount(v)
	require.True(t, v.Update(&domain.MathNode{Kind: domain.MathInline, Content: "$ab$"}))

	require.Eventually(t, v.Rendered, time.Second, 5*time.Millisecond)
	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, []string{"$ab$"}, ts.Sources())
	assert.Equal(t, "<svg>$ab$</svg>", v.PreviewDOM().Text())
	assert.True(t, v.Rendered())
}

func TestMathView_IgnoreMutation(t *testing.T) {
	svc := newService(t, &texTypesetter{})
	v := view.New(domain.NewMathNode(domain.MathInline, "x"), svc.Typeset, nil)
	defer v.Destroy()

	inner := surface.NewElement("span")
	v.ContentDOM().Append(inner)

	assert.False(t, v.IgnoreMutation(surface.Mutation{Type: surface.MutationCharacterData, Target: v.ContentDOM()}))
	assert.False(t, v.IgnoreMutation(surface.Mutation{Type: surface.MutationChildList, Target: inner}))
	assert.True(t, v.IgnoreMutation(surface.Mutation{Type: surface.MutationChildList, Target: v.PreviewDOM()}))
	assert.True(t, v.IgnoreMutation(surface.Mutation{Type: surface.MutationAttributes, Target: v.DOM()}))
}

func TestMathView_DestroyStopsRetries(t *testing.T) {
	ts := &texTypesetter{}
	svc := newService(t, ts)
	v := view.New(domain.NewMathNode(domain.MathInline, "x"), svc.Typeset, nil)

	time.Sleep(15 * time.Millisecond)
	v.Destroy()
	mount(v)

	time.Sleep(40 * time.Millisecond)
	assert.Empty(t, ts.Sources())
	assert.False(t, v.Rendered())
}

func TestDelimiterRanges(t *testing.T) {
	assert.Equal(t, []view.Range{{From: 3, To: 4}, {From: 8, To: 9}}, view.DelimiterRanges(domain.MathInline, 3, 9))
	assert.Equal(t, []view.Range{{From: 0, To: 2}, {From: 5, To: 7}}, view.DelimiterRanges(domain.MathDisplay, 0, 7))
	assert.Equal(t, []view.Range{{From: 0, To: 4}}, view.DelimiterRanges(domain.MathDisplay, 0, 4))
	assert.Equal(t, []view.Range{{From: 1, To: 3}}, view.DelimiterRanges(domain.MathInline, 1, 3))
}
