package ingest

import (
	"context"
	"errors"

	"github.com/fwojciec/stackdoc"
)

// ThinContentBytes is the distilled size below which a plainly fetched page
// is assumed to need JavaScript rendering.
const ThinContentBytes = 512

var _ stackdoc.Fetcher = (*FallbackFetcher)(nil)

// FallbackFetcher fetches with Primary, usually plain HTTP, and retries with
// Fallback, usually a headless browser, when Primary fails or the page it
// got has too little content to be the real page.
type FallbackFetcher struct {
	Primary   stackdoc.Fetcher
	Fallback  stackdoc.Fetcher
	Distiller stackdoc.Distiller
}

// Fetch implements stackdoc.Fetcher.
func (f *FallbackFetcher) Fetch(ctx context.Context, url string) (string, error) {
	html, err := f.Primary.Fetch(ctx, url)
	if err == nil && !f.thin(html) {
		return html, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	rendered, rerr := f.Fallback.Fetch(ctx, url)
	switch {
	case rerr != nil && err != nil:
		return "", errors.Join(err, rerr)
	case rerr != nil:
		return html, nil
	case err != nil:
		return rendered, nil
	}

	if f.richer(html, rendered) {
		return rendered, nil
	}
	return html, nil
}

// Close closes both fetchers.
func (f *FallbackFetcher) Close() error {
	return errors.Join(f.Primary.Close(), f.Fallback.Close())
}

func (f *FallbackFetcher) thin(html string) bool {
	return f.contentLen(html) < ThinContentBytes
}

// richer reports whether rendering produced substantially more content,
// more than half again as much.
func (f *FallbackFetcher) richer(plain, rendered string) bool {
	plainLen, renderedLen := f.contentLen(plain), f.contentLen(rendered)
	if plainLen == 0 {
		return renderedLen > 0
	}
	return float64(renderedLen) > float64(plainLen)*1.5
}

func (f *FallbackFetcher) contentLen(html string) int {
	result, err := f.Distiller.Distill(html)
	if err != nil {
		return 0
	}
	return len(result.ContentHTML)
}
