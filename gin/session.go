package gin

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fwojciec/stackdoc"
	"github.com/fwojciec/stackdoc/collab"
	"github.com/fwojciec/stackdoc/docsync"
	"github.com/gin-gonic/gin"
)

type collaboration struct {
	Status collab.Status `json:"status"`
	Users  []collab.User `json:"users"`
}

func snapshot(provider collab.Provider) collaboration {
	m := collab.NewMonitor(provider)
	defer m.Close()
	return collaboration{Status: m.Status(), Users: m.Users()}
}

// handleOpenSession opens a sync session on a settled document and joins
// its room. The response carries the tree the editor starts from.
func (a *API) handleOpenSession(c *gin.Context) {
	var payload struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	documentID := c.Param("id")

	session, err := a.Sessions.Open(ctx, documentID)
	if err != nil {
		a.Error(c, err)
		return
	}

	room := a.Hub.Join(documentID, collab.User{
		ClientID: session.ID(),
		Name:     strings.TrimSpace(payload.Name),
		Color:    collab.Color(session.ID()),
	})
	editor := docsync.NewBufferEditor()
	if err := session.Initialize(ctx, editor, room); err != nil {
		_ = a.Sessions.Close(session.ID())
		a.Hub.Leave(documentID, session.ID())
		a.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"sessionId":     session.ID(),
		"documentId":    documentID,
		"tiptap":        editor.Content(),
		"collaboration": snapshot(room),
	})
}

// handleChange feeds one editor change to the session.
func (a *API) handleChange(c *gin.Context) {
	var payload struct {
		Tiptap json.RawMessage `json:"tiptap"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if len(payload.Tiptap) == 0 {
		respondMessage(c, http.StatusBadRequest, "tiptap is required")
		return
	}

	tree, err := stackdoc.ParseTree(payload.Tiptap)
	if err != nil {
		a.Error(c, err)
		return
	}

	session, err := a.Sessions.Session(c.Param("id"))
	if err != nil {
		a.Error(c, err)
		return
	}

	outcome, err := session.Change(c.Request.Context(), tree)
	if err != nil {
		a.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"outcome":   outcome.String(),
		"persisted": outcome == docsync.Persisted,
		"skipped":   outcome == docsync.Skipped,
		"stats":     session.Stats(),
	})
}

// handleCloseSession closes the session and leaves its room.
func (a *API) handleCloseSession(c *gin.Context) {
	id := c.Param("id")
	session, err := a.Sessions.Session(id)
	if err != nil {
		a.Error(c, err)
		return
	}

	if _, err := session.Flush(c.Request.Context()); err != nil {
		a.logger().Warn("flush on close failed", "session", id, "error", err)
	}
	if err := a.Sessions.Close(id); err != nil {
		a.Error(c, err)
		return
	}
	a.Hub.Leave(session.DocumentID(), id)
	c.Status(http.StatusNoContent)
}

// handlePresence reports who is editing a document.
func (a *API) handlePresence(c *gin.Context) {
	documentID := c.Param("id")
	if _, err := a.Documents.FindDocumentByID(c.Request.Context(), documentID); err != nil {
		a.Error(c, err)
		return
	}

	room, ok := a.Hub.Lookup(documentID)
	if !ok {
		// Nobody is editing; report an empty room without creating one.
		room = &collab.Room{}
	}
	c.JSON(http.StatusOK, snapshot(room))
}
