package docsync

import (
	"sync"

	"github.com/fwojciec/stackdoc"
)

var _ Editor = (*BufferEditor)(nil)

// BufferEditor is an in-memory Editor for clients that edit documents
// through requests rather than a live editor, such as the HTTP API and
// the CLI.
type BufferEditor struct {
	mu   sync.Mutex
	tree *stackdoc.Tree
}

// NewBufferEditor returns an empty editor.
func NewBufferEditor() *BufferEditor {
	return &BufferEditor{}
}

// IsEmpty reports whether the buffer has no content or a blank document.
func (e *BufferEditor) IsEmpty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree == nil || e.tree.IsBlank() || len(e.tree.Content) == 0
}

// SetContent replaces the buffer content with a copy of tree.
func (e *BufferEditor) SetContent(tree *stackdoc.Tree) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tree = tree.Clone()
}

// Content returns a copy of the buffer content, or nil if empty.
func (e *BufferEditor) Content() *stackdoc.Tree {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Clone()
}
