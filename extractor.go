package stackdoc

import "context"

// ExtractRequest asks for a document to be built from a URL. Name and
// Category are used when the page itself cannot provide them.
type ExtractRequest struct {
	URL      string   `json:"url"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

// ExtractResult is a structured document produced from a URL.
type ExtractResult struct {
	Content  Content        `json:"content"`
	Metadata IngestMetadata `json:"metadata"`
}

// Extractor turns a URL into a structured document tree.
type Extractor interface {
	// Extract fetches the page and structures it. An empty URL yields the
	// canonical empty document without any network call.
	// Returns ETIMEOUT when the page cannot be fetched in time, EUPSTREAM
	// when the page cannot be scraped, and EINTERNAL for anything else.
	// Structuring failures are never returned; a fallback tree is used.
	Extract(ctx context.Context, req ExtractRequest) (*ExtractResult, error)
}

// Page is a scraped web page reduced to markdown.
type Page struct {
	URL         string
	Title       string
	Description string
	Markdown    string
}

// Scraper fetches a URL and reduces it to a Page.
type Scraper interface {
	// Scrape returns the page's main content as markdown along with its
	// title and description.
	// Returns EUPSTREAM when the page cannot be fetched or has no content.
	Scrape(ctx context.Context, url string) (*Page, error)
}

// StructureRequest is the input to a structuring step.
type StructureRequest struct {
	// Title of the source page, used for the top-level heading.
	Title string

	// Excerpt is the bounded slice of page prose to structure.
	Excerpt string

	// Example is a worked example of the expected tree shape.
	Example *Tree
}

// Structurer converts prose into a document tree using a language model.
type Structurer interface {
	// Structure returns a validated tree.
	// Returns ESTRUCTURE when the model output is not a valid tree.
	Structure(ctx context.Context, req StructureRequest) (*Tree, error)
}
