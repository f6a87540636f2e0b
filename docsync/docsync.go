// Package docsync keeps a document's persisted tree in step with a live
// editor. A Session seeds the editor from the store once, then persists
// each distinct change with at most one write in flight.
package docsync

import (
	"github.com/fwojciec/stackdoc"
)

// Editor is the live editor a session feeds and listens to.
type Editor interface {
	// IsEmpty reports whether the editor holds no content yet. A
	// collaborative peer may have filled it before the session started.
	IsEmpty() bool

	// SetContent replaces the editor content. A session calls it once to
	// seed the editor and again with each change it accepts, so setting
	// content the editor already holds must be harmless.
	SetContent(tree *stackdoc.Tree)
}

// SyncProvider is the collaborative transport's synced signal.
type SyncProvider interface {
	// Synced reports whether the provider finished its initial sync.
	Synced() bool

	// OnSynced registers fn to run once the provider is synced and returns
	// a function that unregisters it.
	OnSynced(fn func()) (unsubscribe func())
}

// Outcome is what happened to a single change event.
type Outcome int

const (
	// Discarded changes arrived before the session was initialized.
	Discarded Outcome = iota

	// Skipped changes matched the last persisted tree or were blank.
	Skipped

	// Persisted changes were written to the store.
	Persisted

	// Queued changes arrived during a write and will be written by it
	// unless a newer change supersedes them first.
	Queued

	// Failed changes could not be written.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Discarded:
		return "discarded"
	case Skipped:
		return "skipped"
	case Persisted:
		return "persisted"
	case Queued:
		return "queued"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Stats counts what a session did with the changes it received.
type Stats struct {
	Writes     int `json:"writes"`
	Skips      int `json:"skips"`
	Discards   int `json:"discards"`
	Superseded int `json:"superseded"`
	Failures   int `json:"failures"`
}
