package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/stackdoc"
	"github.com/google/uuid"
	"github.com/ncruces/go-sqlite3"
)

// Compile-time interface verification.
var _ stackdoc.DocumentService = (*DocumentService)(nil)

// DocumentService implements stackdoc.DocumentService using SQLite.
//
// Content and metadata are stored as JSON text columns; the tree inside
// content is TipTap JSON and is validated again when read back.
type DocumentService struct {
	db *DB
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(db *DB) *DocumentService {
	return &DocumentService{db: db}
}

const documentColumns = "id, project_id, title, preview, status, category, content, metadata, content_hash, created_at, updated_at"

// CreateDocument creates a new document. A caller-supplied ID is kept so that
// ingestion can address the record before the insert completes.
func (s *DocumentService) CreateDocument(ctx context.Context, doc *stackdoc.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Content != nil {
		doc.ContentHash = doc.Content.Tiptap.Hash()
	}

	content, err := marshalColumn(doc.Content, "content")
	if err != nil {
		return err
	}
	metadata, err := marshalColumn(doc.Metadata, "metadata")
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.ProjectID, doc.Title, doc.Preview, string(doc.Status), string(doc.Category),
		content, metadata, doc.ContentHash, formatTime(doc.CreatedAt), formatTime(doc.UpdatedAt))
	switch {
	case errors.Is(err, sqlite3.CONSTRAINT_PRIMARYKEY):
		return stackdoc.Errorf(stackdoc.ECONFLICT, "document %s already exists", doc.ID)
	case errors.Is(err, sqlite3.CONSTRAINT_FOREIGNKEY):
		return stackdoc.Errorf(stackdoc.ENOTFOUND, "project not found")
	}

	return err
}

// FindDocumentByID retrieves a document by ID.
func (s *DocumentService) FindDocumentByID(ctx context.Context, id string) (*stackdoc.Document, error) {
	doc, err := scanDocument(s.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE id = ?
	`, id))

	if err == sql.ErrNoRows {
		return nil, stackdoc.Errorf(stackdoc.ENOTFOUND, "document not found")
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// FindDocuments retrieves documents matching the filter, newest first.
func (s *DocumentService) FindDocuments(ctx context.Context, filter stackdoc.DocumentFilter) ([]*stackdoc.Document, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + documentColumns + " FROM documents WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.ProjectID != nil {
		query.WriteString(" AND project_id = ?")
		args = append(args, *filter.ProjectID)
	}
	if filter.Status != nil {
		query.WriteString(" AND status = ?")
		args = append(args, string(*filter.Status))
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*stackdoc.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// UpdateDocument applies a partial update to an existing document.
func (s *DocumentService) UpdateDocument(ctx context.Context, id string, upd stackdoc.DocumentUpdate) (*stackdoc.Document, error) {
	// First check if document exists
	doc, err := s.FindDocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	upd.Apply(doc)

	// Validate before persisting
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	doc.UpdatedAt = time.Now().UTC()

	content, err := marshalColumn(doc.Content, "content")
	if err != nil {
		return nil, err
	}
	metadata, err := marshalColumn(doc.Metadata, "metadata")
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET title = ?, preview = ?, status = ?, category = ?, content = ?, metadata = ?, content_hash = ?, updated_at = ?
		WHERE id = ?
	`, doc.Title, doc.Preview, string(doc.Status), string(doc.Category), content, metadata, doc.ContentHash,
		formatTime(doc.UpdatedAt), id)
	if err != nil {
		return nil, err
	}

	// The row may have been deleted since it was read.
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, stackdoc.Errorf(stackdoc.ENOTFOUND, "document not found")
	}

	return doc, nil
}

// DeleteDocument permanently removes a document.
func (s *DocumentService) DeleteDocument(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return stackdoc.Errorf(stackdoc.ENOTFOUND, "document not found")
	}

	return nil
}

// DeleteDocumentsByProject removes all documents for a project.
func (s *DocumentService) DeleteDocumentsByProject(ctx context.Context, projectID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE project_id = ?", projectID)
	return err
}

func scanDocument(row scanner) (*stackdoc.Document, error) {
	var doc stackdoc.Document
	var content, metadata sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(&doc.ID, &doc.ProjectID, &doc.Title, &doc.Preview, &doc.Status, &doc.Category,
		&content, &metadata, &doc.ContentHash, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if doc.Content, err = unmarshalColumn[stackdoc.Content](content, "content"); err != nil {
		return nil, err
	}
	if doc.Metadata, err = unmarshalColumn[stackdoc.IngestMetadata](metadata, "metadata"); err != nil {
		return nil, err
	}
	if doc.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if doc.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &doc, nil
}
