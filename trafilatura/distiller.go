// Package trafilatura implements stackdoc.Distiller with go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/stackdoc"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Distiller implements stackdoc.Distiller at compile time.
var _ stackdoc.Distiller = (*Distiller)(nil)

// Distiller wraps go-trafilatura to extract main content from HTML.
type Distiller struct {
	opts trafilatura.Options
}

// NewDistiller creates a new Distiller. Fallback extractors are enabled so
// landing pages with little prose still yield content.
func NewDistiller() *Distiller {
	return &Distiller{opts: trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		IncludeLinks:    true,
	}}
}

// Distill processes raw HTML and returns the main content with page metadata.
func (d *Distiller) Distill(rawHTML string) (*stackdoc.DistillResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, stackdoc.Errorf(stackdoc.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), d.opts)
	if err != nil {
		return nil, err
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &stackdoc.DistillResult{
		Title:       result.Metadata.Title,
		Description: result.Metadata.Description,
		ContentHTML: contentHTML,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
