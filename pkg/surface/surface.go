// Package surface is a small retained element tree standing in for the
// editor's display tree. Typesetters write into elements, node views own them
// and the host attaches them under a root.
package surface

import (
	"slices"
	"sync"
)

// mu guards the structure and contents of every tree. Elements can move
// between trees, so a single lock keeps Append/Remove consistent.
var mu sync.RWMutex

// MutationType mirrors the kinds of DOM mutation records.
type MutationType string

const (
	MutationChildList     MutationType = "childList"
	MutationCharacterData MutationType = "characterData"
	MutationAttributes    MutationType = "attributes"
	MutationSelection     MutationType = "selection"
)

// Mutation is delivered to the observers of a root for every change made
// below it.
type Mutation struct {
	Type   MutationType
	Target *Element
}

// Observer receives mutations.
type Observer func(Mutation)

// Element is a node of the display tree.
type Element struct {
	tag       string
	classes   []string
	attrs     map[string]string
	text      string
	hidden    bool
	editable  bool
	children  []*Element
	parent    *Element
	root      bool
	observers []Observer
}

// NewRoot creates the root of a live display tree. Elements below a root are
// attached.
func NewRoot() *Element {
	return &Element{tag: "root", root: true, attrs: map[string]string{}}
}

// NewElement creates a detached element.
func NewElement(tag string, classes ...string) *Element {
	return &Element{tag: tag, classes: classes, attrs: map[string]string{}}
}

// Tag returns the element's tag name.
func (e *Element) Tag() string { return e.tag }

// Append adds child as the last child of e, detaching it from its previous parent.
func (e *Element) Append(child *Element) {
	mu.Lock()
	if child.parent != nil {
		child.parent.children = slices.DeleteFunc(child.parent.children, func(c *Element) bool { return c == child })
	}
	child.parent = e
	e.children = append(e.children, child)
	obs := e.observersLocked()
	mu.Unlock()
	notify(obs, Mutation{Type: MutationChildList, Target: e})
}

// Remove detaches e from its parent.
func (e *Element) Remove() {
	mu.Lock()
	parent := e.parent
	if parent == nil {
		mu.Unlock()
		return
	}
	obs := parent.observersLocked()
	parent.children = slices.DeleteFunc(parent.children, func(c *Element) bool { return c == e })
	e.parent = nil
	mu.Unlock()
	notify(obs, Mutation{Type: MutationChildList, Target: parent})
}

// Children returns a snapshot of e's children.
func (e *Element) Children() []*Element {
	mu.RLock()
	defer mu.RUnlock()
	return slices.Clone(e.children)
}

// Parent returns e's parent, or nil.
func (e *Element) Parent() *Element {
	mu.RLock()
	defer mu.RUnlock()
	return e.parent
}

// IsAttached reports whether e is part of a live tree.
func (e *Element) IsAttached() bool {
	mu.RLock()
	defer mu.RUnlock()
	for n := e; n != nil; n = n.parent {
		if n.root {
			return true
		}
	}
	return false
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	if other == nil {
		return false
	}
	mu.RLock()
	defer mu.RUnlock()
	for n := other; n != nil; n = n.parent {
		if n == e {
			return true
		}
	}
	return false
}

// Observe registers fn on the root of e's tree; it is called after every
// mutation below that root.
func (e *Element) Observe(fn Observer) {
	mu.Lock()
	defer mu.Unlock()
	r := e
	for r.parent != nil {
		r = r.parent
	}
	r.observers = append(r.observers, fn)
}

func (e *Element) observersLocked() []Observer {
	r := e
	for r.parent != nil {
		r = r.parent
	}
	return slices.Clone(r.observers)
}

func notify(obs []Observer, m Mutation) {
	for _, fn := range obs {
		fn(m)
	}
}

func (e *Element) mutate(typ MutationType, fn func()) {
	mu.Lock()
	fn()
	obs := e.observersLocked()
	mu.Unlock()
	notify(obs, Mutation{Type: typ, Target: e})
}

// SetText replaces the text content of e.
func (e *Element) SetText(text string) {
	e.mutate(MutationCharacterData, func() { e.text = text })
}

// Text returns the text content of e.
func (e *Element) Text() string {
	mu.RLock()
	defer mu.RUnlock()
	return e.text
}

// SetContent replaces the rendered content of e. Typesetters write through it.
func (e *Element) SetContent(content string) {
	e.mutate(MutationChildList, func() { e.text = content })
}

// AddClass adds a class if not already present.
func (e *Element) AddClass(classes ...string) {
	e.mutate(MutationAttributes, func() {
		for _, c := range classes {
			if !slices.Contains(e.classes, c) {
				e.classes = append(e.classes, c)
			}
		}
	})
}

// RemoveClass removes a class.
func (e *Element) RemoveClass(class string) {
	e.mutate(MutationAttributes, func() {
		e.classes = slices.DeleteFunc(e.classes, func(c string) bool { return c == class })
	})
}

// HasClass reports whether e carries class.
func (e *Element) HasClass(class string) bool {
	mu.RLock()
	defer mu.RUnlock()
	return slices.Contains(e.classes, class)
}

// SetAttr sets an attribute.
func (e *Element) SetAttr(key, value string) {
	e.mutate(MutationAttributes, func() { e.attrs[key] = value })
}

// Attr returns an attribute value.
func (e *Element) Attr(key string) string {
	mu.RLock()
	defer mu.RUnlock()
	return e.attrs[key]
}

// SetHidden toggles display of e.
func (e *Element) SetHidden(hidden bool) {
	e.mutate(MutationAttributes, func() { e.hidden = hidden })
}

// Hidden reports whether e is hidden.
func (e *Element) Hidden() bool {
	mu.RLock()
	defer mu.RUnlock()
	return e.hidden
}

// SetEditable marks e as user-editable content.
func (e *Element) SetEditable(editable bool) {
	e.mutate(MutationAttributes, func() { e.editable = editable })
}

// Editable reports whether e is user-editable.
func (e *Element) Editable() bool {
	mu.RLock()
	defer mu.RUnlock()
	return e.editable
}
