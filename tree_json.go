package stackdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// wireNode is the TipTap/ProseMirror JSON shape of a node.
type wireNode struct {
	Type    NodeType       `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []wireNode     `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []wireMark     `json:"marks,omitempty"`
}

type wireMark struct {
	Type  MarkType       `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// ParseTree decodes TipTap JSON into a validated Tree. The root must be a
// "doc" node. Unknown node types, misplaced nodes, and malformed attributes
// are reported as EINVALID errors.
func ParseTree(data []byte) (*Tree, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, Errorf(EINVALID, "document tree required")
	}

	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, Errorf(EINVALID, "malformed document JSON: %v", err)
	}
	return treeFromWire(w)
}

// MarshalJSON encodes the tree as TipTap JSON.
func (t Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{Type: NodeDoc, Content: nodesToWire(t.Content)})
}

// UnmarshalJSON decodes and validates TipTap JSON.
func (t *Tree) UnmarshalJSON(data []byte) error {
	parsed, err := ParseTree(data)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}

func treeFromWire(w wireNode) (*Tree, error) {
	if w.Type != NodeDoc {
		return nil, Errorf(EINVALID, "root node must be %q, got %q", NodeDoc, w.Type)
	}
	content, err := nodesFromWire(w.Content, "content")
	if err != nil {
		return nil, err
	}
	tree := &Tree{Content: content}
	if err := tree.Validate(); err != nil {
		return nil, err
	}
	return tree, nil
}

func nodesFromWire(ws []wireNode, path string) ([]Node, error) {
	if len(ws) == 0 {
		return nil, nil
	}
	nodes := make([]Node, 0, len(ws))
	for i, w := range ws {
		n, err := nodeFromWire(w, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func nodeFromWire(w wireNode, path string) (Node, error) {
	if w.Type != NodeText && (w.Text != "" || len(w.Marks) > 0) {
		return nil, Errorf(EINVALID, "%s: %s cannot carry text or marks", path, w.Type)
	}

	content, err := nodesFromWire(w.Content, path+".content")
	if err != nil {
		return nil, err
	}

	switch w.Type {
	case NodeHeading:
		level, err := intAttr(w.Attrs, "level", 1)
		if err != nil {
			return nil, Errorf(EINVALID, "%s: %v", path, err)
		}
		return Heading{Level: level, TextAlign: stringAttr(w.Attrs, "textAlign"), Content: content}, nil
	case NodeParagraph:
		return Paragraph{TextAlign: stringAttr(w.Attrs, "textAlign"), Content: content}, nil
	case NodeBulletList:
		return BulletList{Content: content}, nil
	case NodeOrderedList:
		start, err := intAttr(w.Attrs, "start", 0)
		if err != nil {
			return nil, Errorf(EINVALID, "%s: %v", path, err)
		}
		return OrderedList{Start: start, Content: content}, nil
	case NodeListItem:
		return ListItem{Content: content}, nil
	case NodeCodeBlock:
		return CodeBlock{Language: stringAttr(w.Attrs, "language"), Content: content}, nil
	case NodeBlockquote:
		return Blockquote{Content: content}, nil
	case NodeTable:
		return Table{Content: content}, nil
	case NodeTableRow:
		return TableRow{Content: content}, nil
	case NodeTableHeader:
		return TableHeader{Content: content}, nil
	case NodeTableCell:
		return TableCell{Content: content}, nil
	}

	// Leaf nodes never have children.
	if len(w.Content) > 0 {
		return nil, Errorf(EINVALID, "%s: %s cannot have children", path, w.Type)
	}

	switch w.Type {
	case NodeHorizontalRule:
		return HorizontalRule{}, nil
	case NodeHardBreak:
		return HardBreak{}, nil
	case NodeEmoji:
		return Emoji{Name: stringAttr(w.Attrs, "name")}, nil
	case NodeText:
		marks := make([]Mark, 0, len(w.Marks))
		for _, m := range w.Marks {
			marks = append(marks, Mark{Type: m.Type, Href: stringAttr(m.Attrs, "href")})
		}
		if len(marks) == 0 {
			marks = nil
		}
		return Text{Text: w.Text, Marks: marks}, nil
	case NodeDoc:
		return nil, Errorf(EINVALID, "%s: %q is only allowed at the root", path, NodeDoc)
	case "":
		return nil, Errorf(EINVALID, "%s: node type required", path)
	default:
		return nil, Errorf(EINVALID, "%s: unknown node type %q", path, w.Type)
	}
}

func stringAttr(attrs map[string]any, key string) string {
	s, _ := attrs[key].(string)
	return s
}

// intAttr reads a numeric attribute. JSON numbers decode as float64; models
// sometimes emit numbers as strings, which are accepted too.
func intAttr(attrs map[string]any, key string, def int) (int, error) {
	v, ok := attrs[key]
	if !ok || v == nil {
		return def, nil
	}
	switch v := v.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("attribute %q must be an integer", key)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("attribute %q must be an integer", key)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("attribute %q must be an integer", key)
	}
}

func nodesToWire(nodes []Node) []wireNode {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]wireNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, nodeToWire(n))
	}
	return out
}

func nodeToWire(n Node) wireNode {
	w := wireNode{Type: n.Type()}
	switch n := n.(type) {
	case Heading:
		w.Attrs = map[string]any{"level": n.Level}
		if n.TextAlign != "" {
			w.Attrs["textAlign"] = n.TextAlign
		}
	case Paragraph:
		if n.TextAlign != "" {
			w.Attrs = map[string]any{"textAlign": n.TextAlign}
		}
	case OrderedList:
		if n.Start != 0 {
			w.Attrs = map[string]any{"start": n.Start}
		}
	case CodeBlock:
		if n.Language != "" {
			w.Attrs = map[string]any{"language": n.Language}
		}
	case Emoji:
		w.Attrs = map[string]any{"name": n.Name}
	case Text:
		w.Text = n.Text
		for _, m := range n.Marks {
			wm := wireMark{Type: m.Type}
			if m.Href != "" {
				wm.Attrs = map[string]any{"href": m.Href}
			}
			w.Marks = append(w.Marks, wm)
		}
	}
	w.Content = nodesToWire(children(n))
	return w
}
