package stackdoc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// NodeType is the tag that identifies a node variant in a document tree.
type NodeType string

// Node types understood by the editor.
const (
	NodeDoc            NodeType = "doc"
	NodeHeading        NodeType = "heading"
	NodeParagraph      NodeType = "paragraph"
	NodeBulletList     NodeType = "bulletList"
	NodeOrderedList    NodeType = "orderedList"
	NodeListItem       NodeType = "listItem"
	NodeCodeBlock      NodeType = "codeBlock"
	NodeBlockquote     NodeType = "blockquote"
	NodeHorizontalRule NodeType = "horizontalRule"
	NodeHardBreak      NodeType = "hardBreak"
	NodeTable          NodeType = "table"
	NodeTableRow       NodeType = "tableRow"
	NodeTableHeader    NodeType = "tableHeader"
	NodeTableCell      NodeType = "tableCell"
	NodeEmoji          NodeType = "emoji"
	NodeText           NodeType = "text"
)

// MarkType identifies an inline mark applied to a text node.
type MarkType string

// Inline marks understood by the editor.
const (
	MarkBold   MarkType = "bold"
	MarkItalic MarkType = "italic"
	MarkStrike MarkType = "strike"
	MarkCode   MarkType = "code"
	MarkLink   MarkType = "link"
)

// Node is a single variant of a document tree. The set of variants is closed.
type Node interface {
	Type() NodeType
	node()
}

// Tree is the root "doc" node of a rich-text document.
//
// Trees are values: edits produce a new Tree rather than mutating one that
// has already been handed to another component. Use Clone before changing
// a tree received from elsewhere.
type Tree struct {
	Content []Node
}

// Heading is a section heading with a level between 1 and 6.
type Heading struct {
	Level     int
	TextAlign string
	Content   []Node
}

// Paragraph is a block of inline content.
type Paragraph struct {
	TextAlign string
	Content   []Node
}

// BulletList is an unordered list of list items.
type BulletList struct {
	Content []Node
}

// OrderedList is a numbered list of list items.
type OrderedList struct {
	Start   int
	Content []Node
}

// ListItem holds the block content of a single list entry.
type ListItem struct {
	Content []Node
}

// CodeBlock holds preformatted text.
type CodeBlock struct {
	Language string
	Content  []Node
}

// Blockquote wraps quoted block content.
type Blockquote struct {
	Content []Node
}

// HorizontalRule is a thematic break.
type HorizontalRule struct{}

// HardBreak is a line break inside inline content.
type HardBreak struct{}

// Table holds table rows.
type Table struct {
	Content []Node
}

// TableRow holds header and data cells.
type TableRow struct {
	Content []Node
}

// TableHeader is a header cell holding block content.
type TableHeader struct {
	Content []Node
}

// TableCell is a data cell holding block content.
type TableCell struct {
	Content []Node
}

// Emoji is an inline emoji referenced by its short name (e.g. "memo").
type Emoji struct {
	Name string
}

// Text is a literal run of text with optional inline marks.
type Text struct {
	Text  string
	Marks []Mark
}

// Mark is an inline mark on a text node. Href is only set for links.
type Mark struct {
	Type MarkType
	Href string
}

func (Heading) Type() NodeType        { return NodeHeading }
func (Paragraph) Type() NodeType      { return NodeParagraph }
func (BulletList) Type() NodeType     { return NodeBulletList }
func (OrderedList) Type() NodeType    { return NodeOrderedList }
func (ListItem) Type() NodeType       { return NodeListItem }
func (CodeBlock) Type() NodeType      { return NodeCodeBlock }
func (Blockquote) Type() NodeType     { return NodeBlockquote }
func (HorizontalRule) Type() NodeType { return NodeHorizontalRule }
func (HardBreak) Type() NodeType      { return NodeHardBreak }
func (Table) Type() NodeType          { return NodeTable }
func (TableRow) Type() NodeType       { return NodeTableRow }
func (TableHeader) Type() NodeType    { return NodeTableHeader }
func (TableCell) Type() NodeType      { return NodeTableCell }
func (Emoji) Type() NodeType          { return NodeEmoji }
func (Text) Type() NodeType           { return NodeText }

func (Heading) node()        {}
func (Paragraph) node()      {}
func (BulletList) node()     {}
func (OrderedList) node()    {}
func (ListItem) node()       {}
func (CodeBlock) node()      {}
func (Blockquote) node()     {}
func (HorizontalRule) node() {}
func (HardBreak) node()      {}
func (Table) node()          {}
func (TableRow) node()       {}
func (TableHeader) node()    {}
func (TableCell) node()      {}
func (Emoji) node()          {}
func (Text) node()           {}

// NewText returns a text node with the given marks.
func NewText(s string, marks ...Mark) Text {
	return Text{Text: s, Marks: marks}
}

// Content rules: which child types each container accepts.
var (
	blockTypes = typeSet(NodeHeading, NodeParagraph, NodeBulletList, NodeOrderedList,
		NodeCodeBlock, NodeBlockquote, NodeHorizontalRule, NodeTable)
	inlineTypes = typeSet(NodeText, NodeEmoji, NodeHardBreak)
	listTypes   = typeSet(NodeListItem)
	rowTypes    = typeSet(NodeTableRow)
	cellTypes   = typeSet(NodeTableHeader, NodeTableCell)
	codeTypes   = typeSet(NodeText)
)

func typeSet(types ...NodeType) map[NodeType]bool {
	m := make(map[NodeType]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}

var validAligns = map[string]bool{"": true, "left": true, "center": true, "right": true, "justify": true}

var validMarks = typeSetMarks(MarkBold, MarkItalic, MarkStrike, MarkCode, MarkLink)

func typeSetMarks(types ...MarkType) map[MarkType]bool {
	m := make(map[MarkType]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}

// Validate returns an EINVALID error if the tree breaks a content rule.
func (t *Tree) Validate() error {
	if t == nil {
		return Errorf(EINVALID, "document tree required")
	}
	return validateChildren(t.Content, blockTypes, "content")
}

func validateChildren(nodes []Node, allowed map[NodeType]bool, path string) error {
	for i, n := range nodes {
		p := fmt.Sprintf("%s[%d]", path, i)
		if n == nil {
			return Errorf(EINVALID, "%s: nil node", p)
		}
		if !allowed[n.Type()] {
			return Errorf(EINVALID, "%s: %s not allowed here", p, n.Type())
		}
		if err := validateNode(n, p); err != nil {
			return err
		}
	}
	return nil
}

func validateNode(n Node, path string) error {
	child := path + ".content"
	switch n := n.(type) {
	case Heading:
		if n.Level < 1 || n.Level > 6 {
			return Errorf(EINVALID, "%s: heading level %d out of range", path, n.Level)
		}
		if !validAligns[n.TextAlign] {
			return Errorf(EINVALID, "%s: invalid text alignment %q", path, n.TextAlign)
		}
		return validateChildren(n.Content, inlineTypes, child)
	case Paragraph:
		if !validAligns[n.TextAlign] {
			return Errorf(EINVALID, "%s: invalid text alignment %q", path, n.TextAlign)
		}
		return validateChildren(n.Content, inlineTypes, child)
	case BulletList:
		return validateChildren(n.Content, listTypes, child)
	case OrderedList:
		if n.Start < 0 {
			return Errorf(EINVALID, "%s: negative list start", path)
		}
		return validateChildren(n.Content, listTypes, child)
	case ListItem:
		return validateChildren(n.Content, blockTypes, child)
	case CodeBlock:
		for i, c := range n.Content {
			if t, ok := c.(Text); ok && len(t.Marks) > 0 {
				return Errorf(EINVALID, "%s[%d]: marks not allowed in code block", child, i)
			}
		}
		return validateChildren(n.Content, codeTypes, child)
	case Blockquote:
		return validateChildren(n.Content, blockTypes, child)
	case Table:
		return validateChildren(n.Content, rowTypes, child)
	case TableRow:
		return validateChildren(n.Content, cellTypes, child)
	case TableHeader:
		return validateChildren(n.Content, blockTypes, child)
	case TableCell:
		return validateChildren(n.Content, blockTypes, child)
	case Emoji:
		if n.Name == "" {
			return Errorf(EINVALID, "%s: emoji name required", path)
		}
	case Text:
		if n.Text == "" {
			return Errorf(EINVALID, "%s: empty text node", path)
		}
		for _, m := range n.Marks {
			if !validMarks[m.Type] {
				return Errorf(EINVALID, "%s: unknown mark %q", path, m.Type)
			}
			if m.Type == MarkLink && m.Href == "" {
				return Errorf(EINVALID, "%s: link mark requires href", path)
			}
		}
	case HorizontalRule, HardBreak:
	}
	return nil
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	return &Tree{Content: cloneNodes(t.Content)}
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = cloneNode(n)
	}
	return out
}

func cloneNode(n Node) Node {
	switch n := n.(type) {
	case Heading:
		n.Content = cloneNodes(n.Content)
		return n
	case Paragraph:
		n.Content = cloneNodes(n.Content)
		return n
	case BulletList:
		n.Content = cloneNodes(n.Content)
		return n
	case OrderedList:
		n.Content = cloneNodes(n.Content)
		return n
	case ListItem:
		n.Content = cloneNodes(n.Content)
		return n
	case CodeBlock:
		n.Content = cloneNodes(n.Content)
		return n
	case Blockquote:
		n.Content = cloneNodes(n.Content)
		return n
	case Table:
		n.Content = cloneNodes(n.Content)
		return n
	case TableRow:
		n.Content = cloneNodes(n.Content)
		return n
	case TableHeader:
		n.Content = cloneNodes(n.Content)
		return n
	case TableCell:
		n.Content = cloneNodes(n.Content)
		return n
	case Text:
		if n.Marks != nil {
			n.Marks = append([]Mark(nil), n.Marks...)
		}
		return n
	default:
		return n
	}
}

// Equal reports whether two trees are structurally equal. Object identity
// is ignored and nil slices compare equal to empty ones.
func Equal(a, b *Tree) bool {
	if a == nil || b == nil {
		return a == b
	}
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}

// Hash returns a stable hex digest of the tree's canonical JSON encoding.
func (t *Tree) Hash() string {
	if t == nil {
		return ""
	}
	buf, err := json.Marshal(t)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(buf))
}

// IsBlank reports whether the tree is the editor's empty state: a single
// paragraph without content.
func (t *Tree) IsBlank() bool {
	if t == nil || len(t.Content) != 1 {
		return false
	}
	p, ok := t.Content[0].(Paragraph)
	return ok && len(p.Content) == 0
}

// PlainText returns the tree's text with blocks separated by newlines.
func (t *Tree) PlainText() string {
	if t == nil {
		return ""
	}
	var lines []string
	for _, n := range t.Content {
		collectLines(n, &lines)
	}
	return strings.Join(lines, "\n")
}

func collectLines(n Node, lines *[]string) {
	switch n := n.(type) {
	case Heading:
		*lines = append(*lines, inlineText(n.Content))
	case Paragraph:
		*lines = append(*lines, inlineText(n.Content))
	case CodeBlock:
		*lines = append(*lines, inlineText(n.Content))
	default:
		for _, c := range children(n) {
			collectLines(c, lines)
		}
	}
}

func inlineText(nodes []Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		switch n := n.(type) {
		case Text:
			sb.WriteString(n.Text)
		case HardBreak:
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// children returns the child nodes of container variants and nil otherwise.
func children(n Node) []Node {
	switch n := n.(type) {
	case Heading:
		return n.Content
	case Paragraph:
		return n.Content
	case BulletList:
		return n.Content
	case OrderedList:
		return n.Content
	case ListItem:
		return n.Content
	case CodeBlock:
		return n.Content
	case Blockquote:
		return n.Content
	case Table:
		return n.Content
	case TableRow:
		return n.Content
	case TableHeader:
		return n.Content
	case TableCell:
		return n.Content
	}
	return nil
}
