package stackdoc

import "context"

// DocumentWriter writes a document outside the store, e.g. as a markdown file.
type DocumentWriter interface {
	WriteDocument(ctx context.Context, doc *Document) error
}
