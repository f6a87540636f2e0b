package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/stackdoc"
)

var _ stackdoc.Scraper = (*Scraper)(nil)

// Scraper fetches a page and reduces it to markdown plus its title and
// description. MetaReader, RateLimiter and Retryable are optional.
type Scraper struct {
	Fetcher     stackdoc.Fetcher
	Distiller   stackdoc.Distiller
	Converter   stackdoc.Converter
	MetaReader  stackdoc.MetaReader
	RateLimiter stackdoc.DomainLimiter

	// Retryable selects the fetch errors worth retrying. Nil disables retries.
	Retryable   RetryableFunc
	RetryDelays []time.Duration
}

// Scrape implements stackdoc.Scraper.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*stackdoc.Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, stackdoc.Errorf(stackdoc.EUPSTREAM, "invalid URL %q", rawURL)
	}

	if s.RateLimiter != nil {
		if err := s.RateLimiter.Wait(ctx, u.Hostname()); err != nil {
			return nil, err
		}
	}

	html, err := s.fetch(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}

	distilled, err := s.Distiller.Distill(html)
	if err != nil {
		return nil, fmt.Errorf("distill %s: %w", u, err)
	}
	if strings.TrimSpace(distilled.ContentHTML) == "" {
		return nil, stackdoc.Errorf(stackdoc.EUPSTREAM, "no content found")
	}

	markdown, err := s.Converter.Convert(distilled.ContentHTML)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", u, err)
	}
	if markdown == "" {
		return nil, stackdoc.Errorf(stackdoc.EUPSTREAM, "no content found")
	}

	page := &stackdoc.Page{
		URL:         rawURL,
		Title:       distilled.Title,
		Description: distilled.Description,
		Markdown:    markdown,
	}

	// Declared metadata wins over what the distiller inferred. A page whose
	// head cannot be read still has usable content.
	if s.MetaReader != nil {
		if meta, err := s.MetaReader.ReadMeta(html); err == nil {
			if meta.Title != "" {
				page.Title = meta.Title
			}
			if meta.Description != "" {
				page.Description = meta.Description
			}
		}
	}

	return page, nil
}

func (s *Scraper) fetch(ctx context.Context, url string) (string, error) {
	if s.Retryable == nil {
		return s.Fetcher.Fetch(ctx, url)
	}
	delays := s.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return FetchWithRetry(ctx, url, s.Fetcher.Fetch, s.Retryable, delays)
}
