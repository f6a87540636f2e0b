// Package ingest turns URLs into structured documents and records the
// outcome in the document store.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/stackdoc"
)

// Extraction defaults.
const (
	DefaultTimeout      = 12 * time.Second
	DefaultExcerptRunes = 1000
)

var _ stackdoc.Extractor = (*Extractor)(nil)

// Extractor builds a structured document from a URL. It scrapes the page
// under a hard timeout and structures a bounded excerpt of the prose. When
// structuring fails the deterministic fallback tree is used instead, so a
// successful scrape always yields a document.
type Extractor struct {
	Scraper    stackdoc.Scraper
	Structurer stackdoc.Structurer

	// TokenCounter and TokenBudget, when both set, trim the excerpt further
	// so it fits the structuring model's budget.
	TokenCounter stackdoc.TokenCounter
	TokenBudget  int

	Timeout      time.Duration
	ExcerptRunes int
	Logger       *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// scrapeResult carries the outcome of a scrape across the race.
type scrapeResult struct {
	page *stackdoc.Page
	err  error
}

// Extract implements stackdoc.Extractor.
func (e *Extractor) Extract(ctx context.Context, req stackdoc.ExtractRequest) (*stackdoc.ExtractResult, error) {
	if strings.TrimSpace(req.URL) == "" {
		return e.empty(req), nil
	}

	page, err := e.scrape(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	excerpt := e.excerpt(ctx, page.Markdown)
	title := firstNonEmpty(page.Title, req.Name)

	tree, err := e.structure(ctx, title, excerpt)
	if err != nil {
		return nil, err
	}

	return &stackdoc.ExtractResult{
		Content: stackdoc.Content{
			Markdown:    stackdoc.RenderMarkdown(tree),
			Title:       title,
			Description: page.Description,
			URL:         req.URL,
			Tiptap:      tree,
		},
		Metadata: e.metadata(1),
	}, nil
}

// empty returns the canonical empty document without touching the network.
func (e *Extractor) empty(req stackdoc.ExtractRequest) *stackdoc.ExtractResult {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = stackdoc.DefaultDocumentName
	}
	description := stackdoc.PreviewEmpty
	if req.Category != stackdoc.CategoryNone {
		description = "Empty document in " + string(req.Category)
	}
	tree := stackdoc.EmptyDocument(name)
	return &stackdoc.ExtractResult{
		Content: stackdoc.Content{
			Markdown:    stackdoc.RenderMarkdown(tree),
			Title:       name,
			Description: description,
			Tiptap:      tree,
		},
		Metadata: e.metadata(0),
	}
}

// scrape races the scraper against the timeout. The scrape runs in its own
// goroutine and reports on a buffered channel, so a result that arrives
// after the timer fired is dropped without blocking the goroutine.
func (e *Extractor) scrape(ctx context.Context, url string) (*stackdoc.Page, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	scrapeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan scrapeResult, 1)
	go func() {
		page, err := e.Scraper.Scrape(scrapeCtx, url)
		ch <- scrapeResult{page: page, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, e.scrapeError(ctx, r.err)
		}
		if r.page == nil {
			return nil, stackdoc.Errorf(stackdoc.EUPSTREAM, "Failed to scrape: no content found")
		}
		return r.page, nil
	case <-timer.C:
		return nil, stackdoc.Errorf(stackdoc.ETIMEOUT, "Scrape operation timed out")
	case <-ctx.Done():
		return nil, stackdoc.Errorf(stackdoc.EINTERNAL, "extraction canceled: %v", ctx.Err())
	}
}

func (e *Extractor) scrapeError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return stackdoc.Errorf(stackdoc.EINTERNAL, "extraction canceled: %v", ctx.Err())
	}
	if stackdoc.ErrorCode(err) == stackdoc.ETIMEOUT || errors.Is(err, context.DeadlineExceeded) {
		return stackdoc.Errorf(stackdoc.ETIMEOUT, "Scrape operation timed out")
	}
	reason := err.Error()
	var appErr *stackdoc.Error
	if errors.As(err, &appErr) {
		reason = appErr.Message
	}
	return stackdoc.Errorf(stackdoc.EUPSTREAM, "Failed to scrape: %s", reason)
}

// excerpt bounds the prose handed to the structurer, first by runes and then
// by tokens when a counter is configured.
func (e *Extractor) excerpt(ctx context.Context, markdown string) string {
	limit := e.ExcerptRunes
	if limit <= 0 {
		limit = DefaultExcerptRunes
	}
	excerpt := truncateRunes(markdown, limit)

	if e.TokenCounter == nil || e.TokenBudget <= 0 {
		return excerpt
	}
	// Shrink proportionally; a few rounds always converge since the
	// excerpt is already short.
	for range 4 {
		tokens, err := e.TokenCounter.CountTokens(ctx, excerpt)
		if err != nil {
			e.logger().Warn("token count failed, keeping excerpt", "err", err)
			return excerpt
		}
		if tokens <= e.TokenBudget {
			return excerpt
		}
		n := len([]rune(excerpt)) * e.TokenBudget * 9 / (tokens * 10)
		excerpt = truncateRunes(excerpt, n)
	}
	return excerpt
}

// structure runs the structurer and absorbs its failures into the fallback
// tree. Only cancellation of the caller's context is returned.
func (e *Extractor) structure(ctx context.Context, title, excerpt string) (*stackdoc.Tree, error) {
	if e.Structurer == nil {
		return stackdoc.FallbackTree(title, excerpt), nil
	}

	tree, err := e.Structurer.Structure(ctx, stackdoc.StructureRequest{
		Title:   title,
		Excerpt: excerpt,
		Example: stackdoc.DefaultTree(),
	})
	if err == nil {
		if tree == nil {
			err = stackdoc.Errorf(stackdoc.ESTRUCTURE, "structurer returned no tree")
		} else if verr := tree.Validate(); verr != nil {
			err = stackdoc.Errorf(stackdoc.ESTRUCTURE, "invalid tree: %s", stackdoc.ErrorMessage(verr))
		} else {
			return tree, nil
		}
	}

	if ctx.Err() != nil {
		return nil, stackdoc.Errorf(stackdoc.EINTERNAL, "extraction canceled: %v", ctx.Err())
	}
	e.logger().Warn("structuring failed, using fallback tree", "title", title, "err", err)
	return stackdoc.FallbackTree(title, excerpt), nil
}

func (e *Extractor) metadata(credits int) stackdoc.IngestMetadata {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return stackdoc.IngestMetadata{
		Total:       1,
		Completed:   1,
		CreditsUsed: credits,
		ExpiresAt:   now().UTC(),
	}
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// truncateRunes returns at most n runes of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
