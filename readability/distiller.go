// Package readability implements stackdoc.Distiller with go-readability.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/stackdoc"
	"github.com/go-shiori/go-readability"
)

// Ensure Distiller implements stackdoc.Distiller at compile time.
var _ stackdoc.Distiller = (*Distiller)(nil)

// Distiller wraps go-readability to extract main content from HTML.
type Distiller struct {
	pageURL *url.URL
}

// NewDistiller creates a new Distiller.
func NewDistiller() *Distiller {
	return &Distiller{}
}

// Distill processes raw HTML and returns the main content with page metadata.
func (d *Distiller) Distill(rawHTML string) (*stackdoc.DistillResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, stackdoc.Errorf(stackdoc.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), d.pageURL)
	if err != nil {
		return nil, err
	}

	return &stackdoc.DistillResult{
		Title:       article.Title,
		Description: article.Excerpt,
		ContentHTML: article.Content,
	}, nil
}
