package surface_test

import (
	"sync"
	"testing"

	"github.com/aretw0/mathspan/pkg/surface"
	"github.com/stretchr/testify/assert"
)

func TestElement_Attachment(t *testing.T) {
	root := surface.NewRoot()
	parent := surface.NewElement("div")
	child := surface.NewElement("span")
	parent.Append(child)

	assert.False(t, child.IsAttached())

	root.Append(parent)
	assert.True(t, child.IsAttached())
	assert.True(t, root.Contains(child))
	assert.True(t, parent.Contains(parent))
	assert.False(t, child.Contains(parent))

	parent.Remove()
	assert.False(t, child.IsAttached())
	assert.Empty(t, root.Children())
}

func TestElement_ObserversSeeMutationsBelowRoot(t *testing.T) {
	root := surface.NewRoot()
	el := surface.NewElement("div")
	root.Append(el)

	var mu sync.Mutex
	var seen []surface.Mutation
	root.Observe(func(m surface.Mutation) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, m)
	})

	el.SetText("a")
	el.SetContent("<svg/>")
	el.AddClass("x")

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, 3)
	assert.Equal(t, surface.MutationCharacterData, seen[0].Type)
	assert.Same(t, el, seen[0].Target)
	assert.Equal(t, surface.MutationChildList, seen[1].Type)
}

func TestElement_Classes(t *testing.T) {
	el := surface.NewElement("div", "a")
	el.AddClass("b", "a")
	assert.True(t, el.HasClass("a"))
	assert.True(t, el.HasClass("b"))
	el.RemoveClass("a")
	assert.False(t, el.HasClass("a"))
}
