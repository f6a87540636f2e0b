package stackdoc

import "time"

// Preview texts shown on document cards.
const (
	PreviewProcessing = "Processing..."
	PreviewEmpty      = "Empty document"
	PreviewExtracted  = "Content extracted successfully"
)

// DocumentEvent is an ingestion outcome applied to a document by Reduce.
type DocumentEvent interface {
	documentEvent()
}

// IngestSucceeded reports that extraction produced content.
type IngestSucceeded struct {
	Name   string
	Result *ExtractResult
}

// IngestFailed reports that extraction failed.
type IngestFailed struct {
	URL string
	Err error
	At  time.Time
}

func (IngestSucceeded) documentEvent() {}
func (IngestFailed) documentEvent()    {}

// NewPendingDocument returns a document in the pending state, before any
// ingestion result is known.
func NewPendingDocument(id, projectID, name string, category Category, url string) Document {
	preview := PreviewEmpty
	if url != "" {
		preview = PreviewProcessing
	}
	if name == "" {
		name = DefaultDocumentName
	}
	return Document{
		ID:        id,
		ProjectID: projectID,
		Title:     name,
		Preview:   preview,
		Status:    StatusPending,
		Category:  category,
	}
}

// Reduce applies an ingestion event to a pending document and returns the
// resulting document. The input is not modified.
//
// Returns ECONFLICT if the document is no longer pending, since content of
// active and errored documents belongs to the editor.
func Reduce(doc Document, ev DocumentEvent) (Document, error) {
	if doc.Status != StatusPending {
		return doc, Errorf(ECONFLICT, "document %s is %s, not pending", doc.ID, doc.Status)
	}

	switch ev := ev.(type) {
	case IngestSucceeded:
		if ev.Result == nil {
			return doc, Errorf(EINVALID, "ingestion result required")
		}
		content := ev.Result.Content
		content.Tiptap = content.Tiptap.Clone()
		meta := ev.Result.Metadata

		doc.Status = StatusActive
		doc.Title = firstNonEmpty(content.Title, ev.Name, doc.Title)
		switch {
		case content.Description != "":
			doc.Preview = content.Description
		case content.URL != "":
			doc.Preview = PreviewExtracted
		default:
			doc.Preview = PreviewEmpty
		}
		doc.Content = &content
		doc.Metadata = &meta
		doc.ContentHash = content.Tiptap.Hash()
		return doc, nil

	case IngestFailed:
		msg := FailureMessage(ev.Err)
		doc.Status = StatusError
		doc.Preview = msg
		doc.Content = &Content{
			Title:       "Error",
			Description: msg,
			URL:         ev.URL,
		}
		doc.Metadata = &IngestMetadata{ExpiresAt: ev.At}
		doc.ContentHash = ""
		return doc, nil

	default:
		return doc, Errorf(EINVALID, "unknown document event %T", ev)
	}
}

// TransitionUpdate returns the update that persists the fields Reduce changes.
func TransitionUpdate(doc Document) DocumentUpdate {
	upd := DocumentUpdate{
		Title:    &doc.Title,
		Preview:  &doc.Preview,
		Status:   &doc.Status,
		Content:  doc.Content,
		Metadata: doc.Metadata,
	}
	return upd
}

// FailureMessage returns the human-readable message for an ingestion error.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	if ErrorCode(err) == EINTERNAL {
		return "Failed to extract content"
	}
	return ErrorMessage(err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
