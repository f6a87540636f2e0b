package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/stackdoc"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the per-project document loads in ListProjects.
const DefaultConcurrency = 4

// AddRequest describes a document to add to a project.
type AddRequest struct {
	ProjectID string            `json:"projectId"`
	Name      string            `json:"name"`
	Category  stackdoc.Category `json:"category"`
	URL       string            `json:"url"`
}

// Pipeline records ingestion in the store. A document is inserted as
// pending while its content is extracted, then settled as active or error.
type Pipeline struct {
	Projects  stackdoc.ProjectService
	Documents stackdoc.DocumentService
	Extractor stackdoc.Extractor

	Concurrency int

	// NewID generates document IDs. Defaults to uuid.NewString.
	NewID func() string

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// AddDocument inserts a pending document and extracts its content
// concurrently, then settles the record by the ID generated up front.
//
// If the insert fails the extraction result is discarded and the insert
// error is returned, so no settled update can target a missing record.
// Extraction failures are not returned; they settle the record as error.
func (p *Pipeline) AddDocument(ctx context.Context, req AddRequest) (*stackdoc.Document, error) {
	if req.ProjectID == "" {
		return nil, stackdoc.Errorf(stackdoc.EINVALID, "project ID required")
	}
	req.URL = strings.TrimSpace(req.URL)
	req.Category = stackdoc.ParseCategory(string(req.Category))

	pending := stackdoc.NewPendingDocument(p.newID(), req.ProjectID, req.Name, req.Category, req.URL)

	var (
		result     *stackdoc.ExtractResult
		extractErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.Documents.CreateDocument(gctx, &pending)
	})
	g.Go(func() error {
		result, extractErr = p.Extractor.Extract(gctx, stackdoc.ExtractRequest{
			URL:      req.URL,
			Name:     req.Name,
			Category: req.Category,
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var ev stackdoc.DocumentEvent = stackdoc.IngestSucceeded{Name: req.Name, Result: result}
	if extractErr != nil {
		ev = stackdoc.IngestFailed{URL: req.URL, Err: extractErr, At: p.now()}
	}

	settled, err := stackdoc.Reduce(pending, ev)
	if err != nil {
		return nil, err
	}

	// The record must not stay pending because the caller went away.
	return p.Documents.UpdateDocument(context.WithoutCancel(ctx), pending.ID, stackdoc.TransitionUpdate(settled))
}

// ListProjects returns all projects, oldest first, with their documents
// loaded newest first.
func (p *Pipeline) ListProjects(ctx context.Context) ([]*stackdoc.Project, error) {
	projects, err := p.Projects.FindProjects(ctx, stackdoc.ProjectFilter{})
	if err != nil {
		return nil, err
	}

	limit := p.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, project := range projects {
		g.Go(func() error {
			docs, err := p.Documents.FindDocuments(gctx, stackdoc.DocumentFilter{ProjectID: &project.ID})
			if err != nil {
				return err
			}
			project.Documents = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return projects, nil
}

func (p *Pipeline) newID() string {
	if p.NewID != nil {
		return p.NewID()
	}
	return uuid.NewString()
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now().UTC()
}
