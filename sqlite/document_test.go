package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/stackdoc"
	"github.com/fwojciec/stackdoc/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestProject(t *testing.T, db *sqlite.DB) *stackdoc.Project {
	t.Helper()
	svc := sqlite.NewProjectService(db)
	project := &stackdoc.Project{Name: "test-project"}
	require.NoError(t, svc.CreateProject(context.Background(), project))
	return project
}

func activeDocument(projectID string) *stackdoc.Document {
	tree := stackdoc.EmptyDocument("Prisma")
	return &stackdoc.Document{
		ProjectID: projectID,
		Title:     "Prisma",
		Preview:   "Next-generation ORM",
		Status:    stackdoc.StatusActive,
		Category:  stackdoc.CategoryORMDatabase,
		Content: &stackdoc.Content{
			Markdown:    stackdoc.RenderMarkdown(tree),
			Title:       "Prisma",
			Description: "Next-generation ORM",
			URL:         "https://www.prisma.io",
			Tiptap:      tree,
		},
		Metadata: &stackdoc.IngestMetadata{Total: 1, Completed: 1, CreditsUsed: 1},
	}
}

func TestDocumentService_CreateDocument(t *testing.T) {
	t.Parallel()

	t.Run("creates document with generated ID and timestamps", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		project := createTestProject(t, db)
		svc := sqlite.NewDocumentService(db)
		ctx := context.Background()

		doc := activeDocument(project.ID)

		err := svc.CreateDocument(ctx, doc)
		require.NoError(t, err)

		assert.NotEmpty(t, doc.ID, "ID should be generated")
		assert.Equal(t, doc.Content.Tiptap.Hash(), doc.ContentHash)
		assert.False(t, doc.CreatedAt.IsZero(), "CreatedAt should be set")
	})

	t.Run("keeps caller supplied ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		project := createTestProject(t, db)
		svc := sqlite.NewDocumentService(db)
		ctx := context.Background()

		doc := stackdoc.NewPendingDocument("doc-1", project.ID, "Prisma", stackdoc.CategoryNone, "https://www.prisma.io")
		require.NoError(t, svc.CreateDocument(ctx, &doc))

		found, err := svc.FindDocumentByID(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, stackdoc.StatusPending, found.Status)
		assert.Nil(t, found.Content)
		assert.Nil(t, found.Metadata)
	})

	t.Run("returns ECONFLICT for a duplicate ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		project := createTestProject(t, db)
		svc := sqlite.NewDocumentService(db)
		ctx := context.Background()

		first := stackdoc.NewPendingDocument("doc-1", project.ID, "a", stackdoc.CategoryNone, "")
		require.NoError(t, svc.CreateDocument(ctx, &first))

		second := stackdoc.NewPendingDocument("doc-1", project.ID, "b", stackdoc.CategoryNone, "")
		err := svc.CreateDocument(ctx, &second)
		assert.Equal(t, stackdoc.ECONFLICT, stackdoc.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND for a missing project", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewDocumentService(db)
		ctx := context.Background()

		doc := stackdoc.NewPendingDocument("doc-1", "missing", "a", stackdoc.CategoryNone, "")
		err := svc.CreateDocument(ctx, &doc)
		assert.Equal(t, stackdoc.ENOTFOUND, stackdoc.ErrorCode(err))
	})

	t.Run("returns error for invalid document", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewDocumentService(db)
		ctx := context.Background()

		doc := &stackdoc.Document{} // missing required fields

		err := svc.CreateDocument(ctx, doc)
		require.Error(t, err)
		assert.Equal(t, stackdoc.EINVALID, stackdoc.ErrorCode(err))
	})
}

func TestDocumentService_FindDocumentByID(t *testing.T) {
	t.Parallel()

	t.Run("returns document with its tree when found", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		project := createTestProject(t, db)
		svc := sqlite.NewDocumentService(db)
		ctx := context.Background()

		doc := activeDocument(project.ID)
		require.NoError(t, svc.CreateDocument(ctx, doc))

		found, err := svc.FindDocumentByID(ctx, doc.ID)
		require.NoError(t, err)

		assert.Equal(t, doc.Title, found.Title)
		assert.Equal(t, doc.Preview, found.Preview)
		assert.Equal(t, stackdoc.StatusActive, found.Status)
		assert.Equal(t, stackdoc.CategoryORMDatabase, found.Category)
		require.NotNil(t, found.Content)
		assert.Equal(t, doc.Content.URL, found.Content.URL)
		assert.True(t, stackdoc.Equal(doc.Content.Tiptap, found.Content.Tiptap))
		assert.Equal(t, *doc.Metadata, *found.Metadata)
		assert.Equal(t, doc.ContentHash, found.ContentHash)
	})

	t.Run("returns ENOTFOUND when not found", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewDocumentService(db)
		ctx := context.Background()

		_, err := svc.FindDocumentByID(ctx, "nonexistent")
		require.Error(t, err)
		assert.Equal(t, stackdoc.ENOTFOUND, stackdoc.ErrorCode(err))
	})
}

func TestDocumentService_FindDocuments(t *testing.T) {
	t.Parallel()

	t.Run("returns documents newest first", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		project := createTestProject(t, db)
		svc := sqlite.NewDocumentService(db)
		ctx := context.Background()

		for _, title := range []string{"older", "newer"} {
			doc := activeDocument(project.ID)
			doc.Title = title
			require.NoError(t, svc.CreateDocument(ctx, doc))
		}

		docs, err := svc.FindDocuments(ctx, stackdoc.DocumentFilter{})
		require.NoError(t, err)
		require.Len(t, docs, 2)

		assert.Equal(t, "newer", docs[0].Title)
		assert.Equal(t, "older", docs[1].Title)
	})

	t.Run("filters by project ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		project1 := createTestProject(t, db)
		project2 := createTestProject(t, db)
		svc := sqlite.NewDocumentService(db)
		ctx := context.Background()

		require.NoError(t, svc.CreateDocument(ctx, activeDocument(project1.ID)))
		require.NoError(t, svc.CreateDocument(ctx, activeDocument(project1.ID)))
		require.NoError(t, svc.CreateDocument(ctx, activeDocument(project2.ID)))

		docs, err := svc.FindDocuments(ctx, stackdoc.DocumentFilter{ProjectID: &project1.ID})
		require.NoError(t, err)

		assert.Len(t, docs, 2)
		for _, doc := range docs {
			assert.Equal(t, project1.ID, doc.ProjectID)
		}
	})

	t.Run("filters by status", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		project := createTestProject(t, db)
		svc := sqlite.NewDocumentService(db)
		ctx := context.Background()

		require.NoError(t, svc.CreateDocument(ctx, activeDocument(project.ID)))
		pending := stackdoc.NewPendingDocument("", project.ID, "p", stackdoc.CategoryNone, "https://x.dev")
		require.NoError(t, svc.CreateDocument(ctx, &pending))

		status := stackdoc.StatusPending
		docs, err := svc.FindDocuments(ctx, stackdoc.DocumentFilter{Status: &status})
		require.NoError(t, err)

		require.Len(t, docs, 1)
		assert.Equal(t, pending.ID, docs[0].ID)
	})

	t.Run("respects limit and offset", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		project := createTestProject(t, db)
		svc := sqlite.NewDocumentService(db)
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			require.NoError(t, svc.CreateDocument(ctx, activeDocument(project.ID)))
		}

		docs, err := svc.FindDocuments(ctx, stackdoc.DocumentFilter{Limit: 2, Offset: 1})
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})
}

func TestDocumentService_UpdateDocument(t *testing.T) {
	t.Parallel()

	t.Run("persists an ingestion transition", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		project := createTestProject(t, db)
		svc := sqlite.NewDocumentService(db)
		ctx := context.Background()

		doc := stackdoc.NewPendingDocument("doc-1", project.ID, "Prisma", stackdoc.CategoryNone, "https://www.prisma.io")
		require.NoError(t, svc.CreateDocument(ctx, &doc))

		next, err := stackdoc.Reduce(doc, stackdoc.IngestFailed{
			URL: "https://www.prisma.io",
			Err: stackdoc.Errorf(stackdoc.ETIMEOUT, "Scrape operation timed out"),
			At:  time.Now(),
		})
		require.NoError(t, err)

		_, err = svc.UpdateDocument(ctx, doc.ID, stackdoc.TransitionUpdate(next))
		require.NoError(t, err)

		found, err := svc.FindDocumentByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, stackdoc.StatusError, found.Status)
		assert.Equal(t, "Scrape operation timed out", found.Content.Description)
	})

	t.Run("replaces only the tree and markdown", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		project := createTestProject(t, db)
		svc := sqlite.NewDocumentService(db)
		ctx := context.Background()

		doc := activeDocument(project.ID)
		require.NoError(t, svc.CreateDocument(ctx, doc))

		tree := stackdoc.DefaultTree()
		md := stackdoc.RenderMarkdown(tree)
		updated, err := svc.UpdateDocument(ctx, doc.ID, stackdoc.DocumentUpdate{Tiptap: tree, Markdown: &md})
		require.NoError(t, err)
		assert.NotEqual(t, doc.ContentHash, updated.ContentHash)

		found, err := svc.FindDocumentByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.True(t, stackdoc.Equal(tree, found.Content.Tiptap))
		assert.Equal(t, md, found.Content.Markdown)
		assert.Equal(t, "https://www.prisma.io", found.Content.URL)
		assert.Equal(t, tree.Hash(), found.ContentHash)
	})

	t.Run("rejects invalid trees", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		project := createTestProject(t, db)
		svc := sqlite.NewDocumentService(db)
		ctx := context.Background()

		doc := activeDocument(project.ID)
		require.NoError(t, svc.CreateDocument(ctx, doc))

		bad := &stackdoc.Tree{Content: []stackdoc.Node{stackdoc.NewText("loose")}}
		_, err := svc.UpdateDocument(ctx, doc.ID, stackdoc.DocumentUpdate{Tiptap: bad})
		assert.Equal(t, stackdoc.EINVALID, stackdoc.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND when not found", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewDocumentService(db)
		ctx := context.Background()

		title := "x"
		_, err := svc.UpdateDocument(ctx, "nonexistent", stackdoc.DocumentUpdate{Title: &title})
		assert.Equal(t, stackdoc.ENOTFOUND, stackdoc.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND when the write matches no row", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		project := createTestProject(t, db)
		svc := sqlite.NewDocumentService(db)
		ctx := context.Background()

		doc := activeDocument(project.ID)
		require.NoError(t, svc.CreateDocument(ctx, doc))

		// Skip every update so the row reads fine but is never written, as
		// when it is deleted between the read and the write.
		_, err := db.ExecContext(ctx, `
			CREATE TRIGGER vanish BEFORE UPDATE ON documents
			BEGIN SELECT RAISE(IGNORE); END
		`)
		require.NoError(t, err)

		md := "late edit"
		_, err = svc.UpdateDocument(ctx, doc.ID, stackdoc.DocumentUpdate{Markdown: &md})

		assert.Equal(t, stackdoc.ENOTFOUND, stackdoc.ErrorCode(err))
	})
}

func TestDocumentService_DeleteDocument(t *testing.T) {
	t.Parallel()

	t.Run("deletes existing document", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		project := createTestProject(t, db)
		svc := sqlite.NewDocumentService(db)
		ctx := context.Background()

		doc := activeDocument(project.ID)
		require.NoError(t, svc.CreateDocument(ctx, doc))

		require.NoError(t, svc.DeleteDocument(ctx, doc.ID))

		_, err := svc.FindDocumentByID(ctx, doc.ID)
		assert.Equal(t, stackdoc.ENOTFOUND, stackdoc.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND when not found", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewDocumentService(db)
		ctx := context.Background()

		err := svc.DeleteDocument(ctx, "nonexistent")
		require.Error(t, err)
		assert.Equal(t, stackdoc.ENOTFOUND, stackdoc.ErrorCode(err))
	})
}

func TestDocumentService_DeleteDocumentsByProject(t *testing.T) {
	t.Parallel()

	t.Run("deletes all documents for a project", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		project1 := createTestProject(t, db)
		project2 := createTestProject(t, db)
		svc := sqlite.NewDocumentService(db)
		ctx := context.Background()

		require.NoError(t, svc.CreateDocument(ctx, activeDocument(project1.ID)))
		require.NoError(t, svc.CreateDocument(ctx, activeDocument(project1.ID)))
		require.NoError(t, svc.CreateDocument(ctx, activeDocument(project2.ID)))

		require.NoError(t, svc.DeleteDocumentsByProject(ctx, project1.ID))

		docs, err := svc.FindDocuments(ctx, stackdoc.DocumentFilter{})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, project2.ID, docs[0].ProjectID)
	})
}
