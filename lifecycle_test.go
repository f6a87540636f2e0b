package stackdoc_test

import (
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/stackdoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPendingDocument(t *testing.T) {
	t.Parallel()

	t.Run("with url", func(t *testing.T) {
		t.Parallel()

		doc := stackdoc.NewPendingDocument("d1", "p1", "Prisma", stackdoc.CategoryORMDatabase, "https://prisma.io")

		assert.Equal(t, "d1", doc.ID)
		assert.Equal(t, "p1", doc.ProjectID)
		assert.Equal(t, "Prisma", doc.Title)
		assert.Equal(t, stackdoc.PreviewProcessing, doc.Preview)
		assert.Equal(t, stackdoc.StatusPending, doc.Status)
		assert.Nil(t, doc.Content)
	})

	t.Run("without url or name", func(t *testing.T) {
		t.Parallel()

		doc := stackdoc.NewPendingDocument("d1", "p1", "", stackdoc.CategoryNone, "")

		assert.Equal(t, stackdoc.DefaultDocumentName, doc.Title)
		assert.Equal(t, stackdoc.PreviewEmpty, doc.Preview)
	})
}

func TestReduce(t *testing.T) {
	t.Parallel()

	pending := func() stackdoc.Document {
		return stackdoc.NewPendingDocument("d1", "p1", "Prisma", stackdoc.CategoryORMDatabase, "https://prisma.io")
	}

	t.Run("success activates the document", func(t *testing.T) {
		t.Parallel()

		tree := stackdoc.FallbackTree("Prisma ORM", "Next-generation ORM")
		result := &stackdoc.ExtractResult{
			Content: stackdoc.Content{
				Markdown:    stackdoc.RenderMarkdown(tree),
				Title:       "Prisma ORM",
				Description: "Next-generation ORM",
				URL:         "https://prisma.io",
				Tiptap:      tree,
			},
			Metadata: stackdoc.IngestMetadata{Total: 1, Completed: 1, CreditsUsed: 1},
		}

		doc, err := stackdoc.Reduce(pending(), stackdoc.IngestSucceeded{Name: "Prisma", Result: result})
		require.NoError(t, err)

		assert.Equal(t, stackdoc.StatusActive, doc.Status)
		assert.Equal(t, "Prisma ORM", doc.Title)
		assert.Equal(t, "Next-generation ORM", doc.Preview)
		require.NotNil(t, doc.Content)
		assert.True(t, stackdoc.Equal(tree, doc.Content.Tiptap))
		assert.Equal(t, tree.Hash(), doc.ContentHash)
		assert.Equal(t, 1, doc.Metadata.CreditsUsed)
	})

	t.Run("success keeps the requested name without a page title", func(t *testing.T) {
		t.Parallel()

		result := &stackdoc.ExtractResult{Content: stackdoc.Content{URL: "https://prisma.io", Tiptap: stackdoc.FallbackTree("", "")}}

		doc, err := stackdoc.Reduce(pending(), stackdoc.IngestSucceeded{Name: "Prisma", Result: result})
		require.NoError(t, err)

		assert.Equal(t, "Prisma", doc.Title)
		assert.Equal(t, stackdoc.PreviewExtracted, doc.Preview)
	})

	t.Run("success without url previews as empty", func(t *testing.T) {
		t.Parallel()

		result := &stackdoc.ExtractResult{Content: stackdoc.Content{Tiptap: stackdoc.EmptyDocument("x")}}

		doc, err := stackdoc.Reduce(pending(), stackdoc.IngestSucceeded{Result: result})
		require.NoError(t, err)

		assert.Equal(t, stackdoc.PreviewEmpty, doc.Preview)
	})

	t.Run("success does not share the result tree", func(t *testing.T) {
		t.Parallel()

		tree := stackdoc.DefaultTree()
		result := &stackdoc.ExtractResult{Content: stackdoc.Content{Tiptap: tree}}

		doc, err := stackdoc.Reduce(pending(), stackdoc.IngestSucceeded{Result: result})
		require.NoError(t, err)

		tree.Content[0] = stackdoc.Paragraph{}
		assert.True(t, stackdoc.Equal(stackdoc.DefaultTree(), doc.Content.Tiptap))
	})

	t.Run("failure marks the document as errored", func(t *testing.T) {
		t.Parallel()

		at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		ev := stackdoc.IngestFailed{
			URL: "https://prisma.io",
			Err: stackdoc.Errorf(stackdoc.ETIMEOUT, "Scrape operation timed out"),
			At:  at,
		}

		doc, err := stackdoc.Reduce(pending(), ev)
		require.NoError(t, err)

		assert.Equal(t, stackdoc.StatusError, doc.Status)
		assert.Equal(t, "Scrape operation timed out", doc.Preview)
		require.NotNil(t, doc.Content)
		assert.Equal(t, "Error", doc.Content.Title)
		assert.Equal(t, "Scrape operation timed out", doc.Content.Description)
		assert.Nil(t, doc.Content.Tiptap)
		assert.Equal(t, stackdoc.IngestMetadata{ExpiresAt: at}, *doc.Metadata)
	})

	t.Run("failure hides internal error detail", func(t *testing.T) {
		t.Parallel()

		doc, err := stackdoc.Reduce(pending(), stackdoc.IngestFailed{Err: errors.New("boom")})
		require.NoError(t, err)

		assert.Equal(t, "Failed to extract content", doc.Preview)
	})

	t.Run("rejects events on settled documents", func(t *testing.T) {
		t.Parallel()

		for _, status := range []stackdoc.DocumentStatus{stackdoc.StatusActive, stackdoc.StatusError} {
			doc := pending()
			doc.Status = status

			_, err := stackdoc.Reduce(doc, stackdoc.IngestFailed{Err: errors.New("late")})
			require.Error(t, err)
			assert.Equal(t, stackdoc.ECONFLICT, stackdoc.ErrorCode(err))
		}
	})

	t.Run("rejects a success without a result", func(t *testing.T) {
		t.Parallel()

		_, err := stackdoc.Reduce(pending(), stackdoc.IngestSucceeded{})
		assert.Equal(t, stackdoc.EINVALID, stackdoc.ErrorCode(err))
	})
}

func TestTransitionUpdate(t *testing.T) {
	t.Parallel()

	doc, err := stackdoc.Reduce(
		stackdoc.NewPendingDocument("d1", "p1", "x", stackdoc.CategoryNone, "https://x.dev"),
		stackdoc.IngestFailed{Err: stackdoc.Errorf(stackdoc.EUPSTREAM, "Failed to scrape: 404")},
	)
	require.NoError(t, err)

	stored := stackdoc.NewPendingDocument("d1", "p1", "x", stackdoc.CategoryNone, "https://x.dev")
	stackdoc.TransitionUpdate(doc).Apply(&stored)

	assert.Equal(t, doc.Status, stored.Status)
	assert.Equal(t, doc.Preview, stored.Preview)
	assert.Equal(t, doc.Content.Description, stored.Content.Description)
}
