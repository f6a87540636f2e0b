package stackdoc

import "strings"

const (
	// DefaultDocumentName is used when a document is created without a name.
	DefaultDocumentName = "New Document"

	// EmptyDocumentPlaceholder is the paragraph text of a new empty document.
	EmptyDocumentPlaceholder = "Start typing to get started with your notes..."

	// UntitledDocument is the fallback heading when a page has no title.
	UntitledDocument = "Untitled Document"
)

// EmptyDocument returns the canonical tree of a document created without a
// source URL: a level 1 heading with a memo emoji and the name, followed by
// a placeholder paragraph.
func EmptyDocument(name string) *Tree {
	if strings.TrimSpace(name) == "" {
		name = DefaultDocumentName
	}
	return &Tree{Content: []Node{
		Heading{
			Level:     1,
			TextAlign: "left",
			Content: []Node{
				Emoji{Name: "memo"},
				NewText(" " + name),
			},
		},
		Paragraph{
			TextAlign: "left",
			Content:   []Node{NewText(EmptyDocumentPlaceholder)},
		},
	}}
}

// FallbackTree returns the deterministic two-node tree used when structured
// content could not be produced: a level 1 heading with the title and one
// paragraph with the raw prose.
func FallbackTree(title, prose string) *Tree {
	title = strings.TrimSpace(title)
	if title == "" {
		title = UntitledDocument
	}
	paragraph := Paragraph{}
	if prose != "" {
		paragraph.Content = []Node{NewText(prose)}
	}
	return &Tree{Content: []Node{
		Heading{Level: 1, Content: []Node{NewText(title)}},
		paragraph,
	}}
}

// DefaultTree returns the content loaded into an editor when a document has
// no persisted tree. It also serves as the worked example given to the
// structuring model.
func DefaultTree() *Tree {
	return &Tree{Content: []Node{
		Heading{
			Level:     1,
			TextAlign: "left",
			Content:   []Node{Emoji{Name: "rocket"}, NewText(" Getting Started")},
		},
		Paragraph{
			TextAlign: "left",
			Content: []Node{
				NewText("A short overview of what this tool is and why it matters. "),
				NewText("Docs", Mark{Type: MarkLink, Href: "https://example.com/docs"}),
			},
		},
		Heading{Level: 2, TextAlign: "left", Content: []Node{NewText("Key Features")}},
		BulletList{Content: []Node{
			ListItem{Content: []Node{Paragraph{Content: []Node{
				NewText("Fast", Mark{Type: MarkBold}),
				NewText(": what makes it quick"),
			}}}},
			ListItem{Content: []Node{Paragraph{Content: []Node{
				NewText("Typed", Mark{Type: MarkBold}),
				NewText(": how it catches mistakes early"),
			}}}},
		}},
		Heading{Level: 2, TextAlign: "left", Content: []Node{NewText("Common Use Cases")}},
		BulletList{Content: []Node{
			ListItem{Content: []Node{Paragraph{Content: []Node{NewText("Building an API backend")}}}},
		}},
		CodeBlock{Language: "bash", Content: []Node{NewText("npm install example")}},
	}}
}
