package mock

import (
	"context"

	"github.com/fwojciec/stackdoc"
)

var _ stackdoc.DocumentWriter = (*DocumentWriter)(nil)

// DocumentWriter is a mock implementation of stackdoc.DocumentWriter.
type DocumentWriter struct {
	WriteDocumentFn func(ctx context.Context, doc *stackdoc.Document) error
}

func (w *DocumentWriter) WriteDocument(ctx context.Context, doc *stackdoc.Document) error {
	return w.WriteDocumentFn(ctx, doc)
}
