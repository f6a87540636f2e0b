// Package fs exports documents as markdown files.
package fs

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/fwojciec/stackdoc"
)

// Slug converts a document title into a file name stem.
// Example: "Prisma ORM: Getting Started" → prisma-orm-getting-started.
// Titles without any letters or digits fall back to the document ID.
func Slug(title, id string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
		default:
			dash = true
		}
	}
	if b.Len() == 0 {
		return id
	}
	return b.String()
}

// FormatDocument formats a document as markdown with YAML frontmatter.
// The stored markdown is used when present; otherwise the tree is rendered.
func FormatDocument(doc *stackdoc.Document) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: ")
	b.WriteString(strconv.Quote(doc.Title))
	if doc.Content != nil && doc.Content.URL != "" {
		b.WriteString("\nsource: ")
		b.WriteString(doc.Content.URL)
	}
	if doc.Category != stackdoc.CategoryNone {
		b.WriteString("\ncategory: ")
		b.WriteString(strconv.Quote(string(doc.Category)))
	}
	b.WriteString("\nstatus: ")
	b.WriteString(string(doc.Status))
	if !doc.UpdatedAt.IsZero() {
		b.WriteString("\nupdated: ")
		b.WriteString(doc.UpdatedAt.Format("2006-01-02"))
	}
	b.WriteString("\n---\n\n")
	b.WriteString(body(doc))
	return b.String()
}

func body(doc *stackdoc.Document) string {
	if doc.Content == nil {
		return ""
	}
	if doc.Content.Markdown != "" {
		return doc.Content.Markdown
	}
	return stackdoc.RenderMarkdown(doc.Content.Tiptap)
}

// Ensure Writer implements stackdoc.DocumentWriter at compile time.
var _ stackdoc.DocumentWriter = (*Writer)(nil)

// Writer writes documents as markdown files to a directory.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// Path returns the file path a document is written to.
func (w *Writer) Path(doc *stackdoc.Document) string {
	return filepath.Join(w.baseDir, Slug(doc.Title, doc.ID)+".md")
}

// WriteDocument writes a document to disk as a markdown file, replacing any
// previous export of it.
func (w *Writer) WriteDocument(ctx context.Context, doc *stackdoc.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc.ID == "" && strings.TrimSpace(doc.Title) == "" {
		return stackdoc.Errorf(stackdoc.EINVALID, "document ID or title required")
	}

	if err := os.MkdirAll(w.baseDir, 0755); err != nil {
		return err
	}

	return os.WriteFile(w.Path(doc), []byte(FormatDocument(doc)), 0644)
}
