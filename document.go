package stackdoc

import (
	"context"
	"time"
)

// DocumentStatus is the ingestion state of a document.
type DocumentStatus string

// Document statuses.
const (
	StatusPending DocumentStatus = "pending"
	StatusActive  DocumentStatus = "active"
	StatusError   DocumentStatus = "error"
)

// Document represents a persisted document card and its editable content.
type Document struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"projectId"`
	Title       string          `json:"title"`
	Preview     string          `json:"preview"`
	Status      DocumentStatus  `json:"status"`
	Category    Category        `json:"category"`
	Content     *Content        `json:"content"`
	Metadata    *IngestMetadata `json:"metadata"`
	ContentHash string          `json:"contentHash"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Content is the body of a document. Tiptap is nil until a tree exists.
type Content struct {
	Markdown    string `json:"markdown"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Tiptap      *Tree  `json:"tiptap"`
}

// IngestMetadata describes the ingestion attempt that produced a document.
type IngestMetadata struct {
	Total       int       `json:"total"`
	Completed   int       `json:"completed"`
	CreditsUsed int       `json:"creditsUsed"`
	ExpiresAt   time.Time `json:"expiresAt"`
	HasMore     bool      `json:"hasMore"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.ProjectID == "" {
		return Errorf(EINVALID, "document project ID required")
	}
	switch d.Status {
	case StatusPending, StatusActive, StatusError:
	default:
		return Errorf(EINVALID, "invalid document status %q", d.Status)
	}
	if d.Category != CategoryNone && ParseCategory(string(d.Category)) == CategoryNone {
		return Errorf(EINVALID, "invalid document category %q", d.Category)
	}
	if d.Content != nil && d.Content.Tiptap != nil {
		if err := d.Content.Tiptap.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DocumentService represents a service for managing documents.
type DocumentService interface {
	// CreateDocument creates a new document. A caller-supplied ID is kept;
	// an empty ID is generated.
	CreateDocument(ctx context.Context, doc *Document) error

	// FindDocumentByID retrieves a document by ID.
	// Returns ENOTFOUND if document does not exist.
	FindDocumentByID(ctx context.Context, id string) (*Document, error)

	// FindDocuments retrieves documents matching the filter.
	FindDocuments(ctx context.Context, filter DocumentFilter) ([]*Document, error)

	// UpdateDocument applies a partial update to an existing document.
	// Returns ENOTFOUND if document does not exist.
	UpdateDocument(ctx context.Context, id string, upd DocumentUpdate) (*Document, error)

	// DeleteDocument permanently removes a document.
	// Returns ENOTFOUND if document does not exist.
	DeleteDocument(ctx context.Context, id string) error

	// DeleteDocumentsByProject removes all documents for a project.
	DeleteDocumentsByProject(ctx context.Context, projectID string) error
}

// DocumentFilter represents a filter for FindDocuments.
// Results are ordered newest first.
type DocumentFilter struct {
	ID        *string         `json:"id"`
	ProjectID *string         `json:"projectId"`
	Status    *DocumentStatus `json:"status"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// DocumentUpdate represents fields that can be updated on a document.
// Nil fields are left unchanged.
//
// Tiptap and Markdown update only those fields of the document's content,
// leaving the rest of the content intact. They are applied after Content.
type DocumentUpdate struct {
	Title    *string         `json:"title"`
	Preview  *string         `json:"preview"`
	Status   *DocumentStatus `json:"status"`
	Category *Category       `json:"category"`
	Content  *Content        `json:"content"`
	Metadata *IngestMetadata `json:"metadata"`

	Tiptap   *Tree   `json:"tiptap"`
	Markdown *string `json:"markdown"`
}

// Apply applies the update to doc in place.
func (u DocumentUpdate) Apply(doc *Document) {
	if u.Title != nil {
		doc.Title = *u.Title
	}
	if u.Preview != nil {
		doc.Preview = *u.Preview
	}
	if u.Status != nil {
		doc.Status = *u.Status
	}
	if u.Category != nil {
		doc.Category = *u.Category
	}
	if u.Content != nil {
		c := *u.Content
		doc.Content = &c
	}
	if u.Metadata != nil {
		m := *u.Metadata
		doc.Metadata = &m
	}
	if u.Tiptap != nil || u.Markdown != nil {
		var c Content
		if doc.Content != nil {
			c = *doc.Content
		}
		if u.Tiptap != nil {
			c.Tiptap = u.Tiptap.Clone()
		}
		if u.Markdown != nil {
			c.Markdown = *u.Markdown
		}
		doc.Content = &c
	}
	if doc.Content != nil {
		doc.ContentHash = doc.Content.Tiptap.Hash()
	}
}
