package stackdoc

// DistillResult holds the main content distilled from an HTML page.
type DistillResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// Description is the page summary extracted from metadata, if any.
	Description string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string
}

// Distiller extracts main content from HTML pages, removing boilerplate.
type Distiller interface {
	// Distill processes raw HTML and returns the main content.
	// The title comes from page metadata (meta tags, JSON+LD, etc.).
	// The content HTML has boilerplate removed but preserves structure.
	Distill(html string) (*DistillResult, error)
}

// PageMeta holds descriptive metadata declared in a page's head.
type PageMeta struct {
	Title       string
	Description string
}

// MetaReader reads descriptive metadata from raw HTML.
type MetaReader interface {
	ReadMeta(html string) (*PageMeta, error)
}
