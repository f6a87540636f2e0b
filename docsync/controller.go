package docsync

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fwojciec/stackdoc"
	"github.com/google/uuid"
)

// Controller opens sync sessions and keeps track of the open ones so that
// request-driven clients can address them by ID.
type Controller struct {
	documents stackdoc.DocumentService
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewController creates a new Controller. A nil logger discards output.
func NewController(documents stackdoc.DocumentService, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		documents: documents,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// Open loads the document and returns a new uninitialized session for it.
// Returns ENOTFOUND if the document does not exist and ECONFLICT while it
// is still pending, since its content belongs to ingestion until then.
func (c *Controller) Open(ctx context.Context, documentID string) (*Session, error) {
	doc, err := c.documents.FindDocumentByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status == stackdoc.StatusPending {
		return nil, stackdoc.Errorf(stackdoc.ECONFLICT, "document %s is still being ingested", documentID)
	}

	s := &Session{
		id:         uuid.NewString(),
		documentID: doc.ID,
		documents:  c.documents,
		logger:     c.logger,
	}

	c.mu.Lock()
	c.sessions[s.id] = s
	c.mu.Unlock()

	return s, nil
}

// Session returns the open session with the given ID.
// Returns ENOTFOUND if there is none.
func (c *Controller) Session(id string) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	if !ok {
		return nil, stackdoc.Errorf(stackdoc.ENOTFOUND, "session not found")
	}
	return s, nil
}

// Close closes the session with the given ID and forgets it.
// Returns ENOTFOUND if there is none.
func (c *Controller) Close(id string) error {
	c.mu.Lock()
	s, ok := c.sessions[id]
	delete(c.sessions, id)
	c.mu.Unlock()

	if !ok {
		return stackdoc.Errorf(stackdoc.ENOTFOUND, "session not found")
	}
	s.Close()
	return nil
}

// CloseAll closes every open session.
func (c *Controller) CloseAll() {
	c.mu.Lock()
	sessions := c.sessions
	c.sessions = make(map[string]*Session)
	c.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
