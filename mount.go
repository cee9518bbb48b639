package mathspan

import (
	"sync"

	"github.com/aretw0/mathspan/pkg/document"
	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/aretw0/mathspan/pkg/surface"
	"github.com/aretw0/mathspan/pkg/view"
)

// Mounted binds the math nodes of a document to views under a display root.
// Edits made in a view's content element are written back into the document.
type Mounted struct {
	editor *Editor
	root   *surface.Element

	mu        sync.Mutex
	doc       *document.Document
	views     []*view.MathView
	nodes     []*domain.MathNode
	unmounted bool
}

// Mount creates one view per math node of doc and attaches them under root.
// doc must not be modified directly while mounted; use Snapshot to read it.
func (e *Editor) Mount(doc *document.Document, root *surface.Element) *Mounted {
	m := &Mounted{editor: e, root: root, doc: doc}

	refs := doc.MathNodes()
	for _, ref := range refs {
		pos := ref.Pos
		m.nodes = append(m.nodes, ref.Node)
		m.views = append(m.views, e.NewView(ref.Node, func() int { return pos }))
	}

	// Observe before attaching so no edit is missed.
	root.Observe(m.observe)
	for _, v := range m.views {
		root.Append(v.DOM())
	}
	return m
}

// Views returns the views in document order.
func (m *Mounted) Views() []*view.MathView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*view.MathView(nil), m.views...)
}

// Edit replaces the text of the math node at pos as if the user typed it.
func (m *Mounted) Edit(pos int, text string) bool {
	m.mu.Lock()
	if m.unmounted || pos < 0 || pos >= len(m.views) {
		m.mu.Unlock()
		return false
	}
	v := m.views[pos]
	m.mu.Unlock()

	v.ContentDOM().SetText(text)
	return true
}

// Snapshot returns a copy of the document including all edits so far.
func (m *Mounted) Snapshot() *document.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc.Clone()
}

// Unmount destroys the views and detaches them from the root.
func (m *Mounted) Unmount() {
	m.mu.Lock()
	if m.unmounted {
		m.mu.Unlock()
		return
	}
	m.unmounted = true
	views := m.views
	m.mu.Unlock()

	for _, v := range views {
		m.editor.ReleaseView(v)
		v.DOM().Remove()
	}
}

// observe routes mutations of a view's content element back into the document.
func (m *Mounted) observe(mut surface.Mutation) {
	m.mu.Lock()
	if m.unmounted {
		m.mu.Unlock()
		return
	}

	var (
		target *view.MathView
		next   domain.MathNode
	)
	for i, v := range m.views {
		if v.IgnoreMutation(mut) {
			continue
		}
		text := v.ContentDOM().Text()
		node := m.nodes[i]
		if node.Content == text {
			break
		}
		node.Content = text
		target, next = v, *node
		break
	}
	m.mu.Unlock()

	if target != nil {
		target.Update(&next)
	}
}
