package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/stackdoc"
	"github.com/fwojciec/stackdoc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentWriter_WriteDocument(t *testing.T) {
	t.Parallel()

	t.Run("delegates to WriteDocumentFn", func(t *testing.T) {
		t.Parallel()

		var calledWith *stackdoc.Document
		w := &mock.DocumentWriter{
			WriteDocumentFn: func(_ context.Context, doc *stackdoc.Document) error {
				calledWith = doc
				return nil
			},
		}

		doc := &stackdoc.Document{ProjectID: "test-project", Title: "Test Doc"}

		err := w.WriteDocument(context.Background(), doc)

		require.NoError(t, err)
		assert.Same(t, doc, calledWith)
	})
}
