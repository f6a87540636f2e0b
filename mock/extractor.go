package mock

import (
	"context"

	"github.com/fwojciec/stackdoc"
)

var _ stackdoc.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of stackdoc.Extractor.
type Extractor struct {
	ExtractFn func(ctx context.Context, req stackdoc.ExtractRequest) (*stackdoc.ExtractResult, error)
}

func (e *Extractor) Extract(ctx context.Context, req stackdoc.ExtractRequest) (*stackdoc.ExtractResult, error) {
	return e.ExtractFn(ctx, req)
}

var _ stackdoc.Scraper = (*Scraper)(nil)

// Scraper is a mock implementation of stackdoc.Scraper.
type Scraper struct {
	ScrapeFn func(ctx context.Context, url string) (*stackdoc.Page, error)
}

func (s *Scraper) Scrape(ctx context.Context, url string) (*stackdoc.Page, error) {
	return s.ScrapeFn(ctx, url)
}

var _ stackdoc.Structurer = (*Structurer)(nil)

// Structurer is a mock implementation of stackdoc.Structurer.
type Structurer struct {
	StructureFn func(ctx context.Context, req stackdoc.StructureRequest) (*stackdoc.Tree, error)
}

func (s *Structurer) Structure(ctx context.Context, req stackdoc.StructureRequest) (*stackdoc.Tree, error) {
	return s.StructureFn(ctx, req)
}

var _ stackdoc.InputParser = (*InputParser)(nil)

// InputParser is a mock implementation of stackdoc.InputParser.
type InputParser struct {
	ParseFn func(ctx context.Context, text string) (*stackdoc.ExtractedMetadata, error)
}

func (p *InputParser) Parse(ctx context.Context, text string) (*stackdoc.ExtractedMetadata, error) {
	return p.ParseFn(ctx, text)
}
