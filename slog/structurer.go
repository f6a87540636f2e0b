package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/stackdoc"
)

// Ensure LoggingStructurer implements stackdoc.Structurer.
var _ stackdoc.Structurer = (*LoggingStructurer)(nil)

// LoggingStructurer wraps a Structurer with logging.
type LoggingStructurer struct {
	next   stackdoc.Structurer
	logger *slog.Logger
}

// NewLoggingStructurer creates a new LoggingStructurer.
func NewLoggingStructurer(next stackdoc.Structurer, logger *slog.Logger) *LoggingStructurer {
	return &LoggingStructurer{next: next, logger: logger}
}

// Structure delegates to the wrapped structurer and logs the outcome.
func (s *LoggingStructurer) Structure(ctx context.Context, req stackdoc.StructureRequest) (tree *stackdoc.Tree, err error) {
	defer func(begin time.Time) {
		var nodes int
		if tree != nil {
			nodes = len(tree.Content)
		}
		s.logger.Info("structure",
			"title", req.Title,
			"excerpt_bytes", len(req.Excerpt),
			"blocks", nodes,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Structure(ctx, req)
}

// Ensure LoggingInputParser implements stackdoc.InputParser.
var _ stackdoc.InputParser = (*LoggingInputParser)(nil)

// LoggingInputParser wraps an InputParser with logging.
type LoggingInputParser struct {
	next   stackdoc.InputParser
	logger *slog.Logger
}

// NewLoggingInputParser creates a new LoggingInputParser.
func NewLoggingInputParser(next stackdoc.InputParser, logger *slog.Logger) *LoggingInputParser {
	return &LoggingInputParser{next: next, logger: logger}
}

// Parse delegates to the wrapped parser and logs the outcome.
func (p *LoggingInputParser) Parse(ctx context.Context, text string) (meta *stackdoc.ExtractedMetadata, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"input_bytes", len(text),
			"duration", time.Since(begin),
			"err", err,
		}
		if meta != nil {
			attrs = append(attrs, "name", meta.Name, "category", string(meta.Category), "complete", meta.Complete())
		}
		p.logger.Info("parse", attrs...)
	}(time.Now())
	return p.next.Parse(ctx, text)
}
