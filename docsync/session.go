package docsync

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fwojciec/stackdoc"
)

// Session synchronizes one document with one editor.
//
// A session starts uninitialized. Initialize seeds the editor; after that,
// Change persists every tree that differs from the last persisted one.
// Close returns the session to uninitialized.
type Session struct {
	id         string
	documentID string
	documents  stackdoc.DocumentService
	logger     *slog.Logger

	mu          sync.Mutex
	initialized bool
	editor      Editor
	persisted   *stackdoc.Tree // last tree known to be in the store
	pending     *stackdoc.Tree // newest change waiting for the in-flight write
	dirty       *stackdoc.Tree // newest change whose write failed
	writing     bool
	stats       Stats
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// DocumentID returns the ID of the synchronized document.
func (s *Session) DocumentID() string { return s.documentID }

// Initialized reports whether the session accepts changes.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Stats returns the session counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Initialize seeds editor with the persisted tree, or DefaultTree when the
// document has none. With a provider that has not synced yet, it waits for
// the synced signal first. The editor is only seeded when it is empty, so
// content already received from collaborators is never overwritten.
func (s *Session) Initialize(ctx context.Context, editor Editor, provider SyncProvider) error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return stackdoc.Errorf(stackdoc.ECONFLICT, "session %s is already initialized", s.id)
	}
	s.mu.Unlock()

	doc, err := s.documents.FindDocumentByID(ctx, s.documentID)
	if err != nil {
		return err
	}

	var persisted *stackdoc.Tree
	if doc.Content != nil {
		persisted = doc.Content.Tiptap
	}
	initial := persisted
	if initial == nil {
		initial = stackdoc.DefaultTree()
	}

	if provider != nil {
		if err := waitSynced(ctx, provider); err != nil {
			return err
		}
	}

	if editor.IsEmpty() {
		editor.SetContent(initial.Clone())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return stackdoc.Errorf(stackdoc.ECONFLICT, "session %s is already initialized", s.id)
	}
	s.editor = editor
	s.persisted = persisted.Clone()
	s.initialized = true
	return nil
}

// waitSynced blocks until provider reports synced or ctx is done.
func waitSynced(ctx context.Context, provider SyncProvider) error {
	if provider.Synced() {
		return nil
	}

	synced := make(chan struct{})
	var once sync.Once
	unsubscribe := provider.OnSynced(func() {
		once.Do(func() { close(synced) })
	})
	defer unsubscribe()

	// The signal may have fired between the check and the subscription.
	if provider.Synced() {
		return nil
	}

	select {
	case <-synced:
		return nil
	case <-ctx.Done():
		return stackdoc.Errorf(stackdoc.EINTERNAL, "waiting for sync: %v", ctx.Err())
	}
}

// Change handles an editor change event carrying the editor's full tree.
//
// Changes before initialization are discarded. Every other valid change is
// mirrored into the session's editor so it always holds the newest tree,
// whether or not that tree is written. Blank trees and trees equal
// to the last persisted one are skipped. A change arriving while a write is
// in flight replaces any change already queued behind it; the in-flight
// writer persists the newest queued tree when it completes.
//
// Returns EPERSIST when the write fails. The persisted tree is not advanced
// so the next change, or Flush, writes the latest state again.
func (s *Session) Change(ctx context.Context, tree *stackdoc.Tree) (Outcome, error) {
	if err := tree.Validate(); err != nil {
		return Skipped, err
	}

	s.mu.Lock()
	if !s.initialized {
		s.stats.Discards++
		s.mu.Unlock()
		return Discarded, nil
	}
	s.editor.SetContent(tree)
	if tree.IsBlank() {
		s.stats.Skips++
		s.mu.Unlock()
		return Skipped, nil
	}
	if s.writing {
		if s.pending != nil {
			s.stats.Superseded++
		}
		s.pending = tree.Clone()
		s.mu.Unlock()
		return Queued, nil
	}
	if s.persisted != nil && stackdoc.Equal(tree, s.persisted) {
		s.dirty = nil
		s.stats.Skips++
		s.mu.Unlock()
		return Skipped, nil
	}
	s.writing = true
	s.mu.Unlock()

	return s.write(ctx, tree.Clone())
}

// Flush writes the newest change whose earlier write failed, if any.
func (s *Session) Flush(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	if s.dirty == nil || s.writing {
		s.mu.Unlock()
		return Skipped, nil
	}
	tree := s.dirty
	s.writing = true
	s.mu.Unlock()

	return s.write(ctx, tree)
}

// write persists tree and then drains the queue. The caller must have set
// s.writing.
func (s *Session) write(ctx context.Context, tree *stackdoc.Tree) (Outcome, error) {
	for {
		err := s.persist(ctx, tree)

		s.mu.Lock()
		if err != nil {
			s.stats.Failures++
			s.dirty = tree
			if s.pending != nil {
				s.dirty, s.pending = s.pending, nil
			}
			s.writing = false
			s.mu.Unlock()
			s.logger.Warn("persist failed", "session", s.id, "document", s.documentID, "err", err)
			return Failed, stackdoc.Errorf(stackdoc.EPERSIST, "Failed to save document: %s", stackdoc.ErrorMessage(err))
		}

		s.stats.Writes++
		s.persisted = tree
		s.dirty = nil

		next := s.pending
		s.pending = nil
		if next != nil && stackdoc.Equal(next, s.persisted) {
			s.stats.Skips++
			next = nil
		}
		if next == nil {
			s.writing = false
			s.mu.Unlock()
			return Persisted, nil
		}
		s.mu.Unlock()
		tree = next
	}
}

// persist writes the full tree and its markdown rendering, last writer wins.
func (s *Session) persist(ctx context.Context, tree *stackdoc.Tree) error {
	md := stackdoc.RenderMarkdown(tree)
	_, err := s.documents.UpdateDocument(ctx, s.documentID, stackdoc.DocumentUpdate{
		Tiptap:   tree,
		Markdown: &md,
	})
	return err
}

// Close releases the editor and returns the session to uninitialized.
// A write already in flight still completes against the same document.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = false
	s.editor = nil
}
