package gin

import (
	"net/http"

	"github.com/fwojciec/stackdoc"
	"github.com/fwojciec/stackdoc/ingest"
	"github.com/gin-gonic/gin"
)

func (a *API) handleListProjects(c *gin.Context) {
	projects, err := a.Pipeline.ListProjects(c.Request.Context())
	if err != nil {
		a.Error(c, err)
		return
	}
	if projects == nil {
		projects = []*stackdoc.Project{}
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (a *API) handleCreateProject(c *gin.Context) {
	var payload struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	project := &stackdoc.Project{Name: payload.Name}
	if err := a.Projects.CreateProject(c.Request.Context(), project); err != nil {
		a.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (a *API) handleRenameProject(c *gin.Context) {
	var upd stackdoc.ProjectUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	project, err := a.Projects.UpdateProject(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		a.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (a *API) handleDeleteProject(c *gin.Context) {
	if err := a.Projects.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		a.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) handleListDocuments(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if _, err := a.Projects.FindProjectByID(ctx, id); err != nil {
		a.Error(c, err)
		return
	}
	docs, err := a.Documents.FindDocuments(ctx, stackdoc.DocumentFilter{ProjectID: &id})
	if err != nil {
		a.Error(c, err)
		return
	}
	if docs == nil {
		docs = []*stackdoc.Document{}
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// handleAddDocument runs ingestion to completion and returns the settled
// document. Extraction failures still answer 201 with an errored record.
func (a *API) handleAddDocument(c *gin.Context) {
	var payload scrapePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	projectID := c.Param("id")
	if _, err := a.Projects.FindProjectByID(ctx, projectID); err != nil {
		a.Error(c, err)
		return
	}

	doc, err := a.Pipeline.AddDocument(ctx, ingest.AddRequest{
		ProjectID: projectID,
		Name:      payload.Name,
		Category:  stackdoc.Category(payload.Category),
		URL:       payload.URL,
	})
	if err != nil {
		a.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (a *API) handleGetDocument(c *gin.Context) {
	doc, err := a.Documents.FindDocumentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (a *API) handleDeleteDocument(c *gin.Context) {
	if err := a.Documents.DeleteDocument(c.Request.Context(), c.Param("id")); err != nil {
		a.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
