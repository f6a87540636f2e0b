package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/stackdoc"
)

// Ensure LoggingDocumentService implements stackdoc.DocumentService.
var _ stackdoc.DocumentService = (*LoggingDocumentService)(nil)

// LoggingDocumentService wraps a DocumentService with debug logging of
// writes. Reads are delegated without logging.
type LoggingDocumentService struct {
	next   stackdoc.DocumentService
	logger *slog.Logger
}

// NewLoggingDocumentService creates a new LoggingDocumentService.
func NewLoggingDocumentService(next stackdoc.DocumentService, logger *slog.Logger) *LoggingDocumentService {
	return &LoggingDocumentService{next: next, logger: logger}
}

// CreateDocument delegates to the wrapped service and logs the operation.
func (s *LoggingDocumentService) CreateDocument(ctx context.Context, doc *stackdoc.Document) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("create document",
			"id", doc.ID,
			"project_id", doc.ProjectID,
			"status", string(doc.Status),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateDocument(ctx, doc)
}

// FindDocumentByID delegates to the wrapped service.
func (s *LoggingDocumentService) FindDocumentByID(ctx context.Context, id string) (*stackdoc.Document, error) {
	return s.next.FindDocumentByID(ctx, id)
}

// FindDocuments delegates to the wrapped service.
func (s *LoggingDocumentService) FindDocuments(ctx context.Context, filter stackdoc.DocumentFilter) ([]*stackdoc.Document, error) {
	return s.next.FindDocuments(ctx, filter)
}

// UpdateDocument delegates to the wrapped service and logs the operation.
func (s *LoggingDocumentService) UpdateDocument(ctx context.Context, id string, upd stackdoc.DocumentUpdate) (doc *stackdoc.Document, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"id", id,
			"tree", upd.Tiptap != nil,
			"duration", time.Since(begin),
			"err", err,
		}
		if upd.Status != nil {
			attrs = append(attrs, "status", string(*upd.Status))
		}
		if doc != nil {
			attrs = append(attrs, "content_hash", doc.ContentHash)
		}
		s.logger.Debug("update document", attrs...)
	}(time.Now())
	return s.next.UpdateDocument(ctx, id, upd)
}

// DeleteDocument delegates to the wrapped service and logs the operation.
func (s *LoggingDocumentService) DeleteDocument(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("delete document",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteDocument(ctx, id)
}

// DeleteDocumentsByProject delegates to the wrapped service and logs the operation.
func (s *LoggingDocumentService) DeleteDocumentsByProject(ctx context.Context, projectID string) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("delete project documents",
			"project_id", projectID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteDocumentsByProject(ctx, projectID)
}
