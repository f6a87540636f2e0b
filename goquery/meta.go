// Package goquery reads page metadata using CSS selectors.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/stackdoc"
)

// Ensure MetaReader implements stackdoc.MetaReader at compile time.
var _ stackdoc.MetaReader = (*MetaReader)(nil)

// Selectors checked in order; Open Graph values win over plain tags since
// sites keep them free of site-name suffixes.
var (
	titleSelectors = []string{
		`meta[property="og:title"]`,
		`meta[name="twitter:title"]`,
	}
	descriptionSelectors = []string{
		`meta[property="og:description"]`,
		`meta[name="description"]`,
		`meta[name="twitter:description"]`,
	}
)

// MetaReader reads the title and description a page declares in its head.
type MetaReader struct{}

// NewMetaReader creates a new MetaReader.
func NewMetaReader() *MetaReader {
	return &MetaReader{}
}

// ReadMeta parses html and returns the declared title and description.
// Missing values are left empty.
func (r *MetaReader) ReadMeta(html string) (*stackdoc.PageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, stackdoc.Errorf(stackdoc.EINVALID, "failed to parse HTML: %v", err)
	}

	title := metaContent(doc, titleSelectors)
	if title == "" {
		title = collapse(doc.Find("title").First().Text())
	}

	return &stackdoc.PageMeta{
		Title:       title,
		Description: metaContent(doc, descriptionSelectors),
	}, nil
}

// metaContent returns the first non-blank content attribute matched by
// selectors, in selector order.
func metaContent(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			found = collapse(s.AttrOr("content", ""))
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// collapse trims s and folds internal whitespace runs into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
