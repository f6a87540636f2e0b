// Package slog provides logging decorators for stackdoc services built on
// log/slog. Each decorator logs one line per call with the operation name,
// its duration, and the error, if any.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/stackdoc"
)

// Ensure LoggingScraper implements stackdoc.Scraper.
var _ stackdoc.Scraper = (*LoggingScraper)(nil)

// LoggingScraper wraps a Scraper with logging.
type LoggingScraper struct {
	next   stackdoc.Scraper
	logger *slog.Logger
}

// NewLoggingScraper creates a new LoggingScraper.
func NewLoggingScraper(next stackdoc.Scraper, logger *slog.Logger) *LoggingScraper {
	return &LoggingScraper{next: next, logger: logger}
}

// Scrape delegates to the wrapped scraper and logs the outcome.
func (s *LoggingScraper) Scrape(ctx context.Context, url string) (page *stackdoc.Page, err error) {
	defer func(begin time.Time) {
		var title string
		var size int
		if page != nil {
			title = page.Title
			size = len(page.Markdown)
		}
		s.logger.Info("scrape",
			"url", url,
			"title", title,
			"markdown_bytes", size,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Scrape(ctx, url)
}

// Ensure LoggingExtractor implements stackdoc.Extractor.
var _ stackdoc.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with logging.
type LoggingExtractor struct {
	next   stackdoc.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next stackdoc.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the outcome.
func (e *LoggingExtractor) Extract(ctx context.Context, req stackdoc.ExtractRequest) (result *stackdoc.ExtractResult, err error) {
	defer func(begin time.Time) {
		var credits int
		if result != nil {
			credits = result.Metadata.CreditsUsed
		}
		e.logger.Info("extract",
			"url", req.URL,
			"name", req.Name,
			"credits", credits,
			"duration", time.Since(begin),
			"code", stackdoc.ErrorCode(err),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(ctx, req)
}
