package stackdoc

import (
	"strconv"
	"strings"
)

// RenderMarkdown renders a tree as CommonMark. Emoji are written as
// :shortcodes:. Tables are rendered as GFM pipe tables.
func RenderMarkdown(t *Tree) string {
	if t == nil {
		return ""
	}
	blocks := renderBlocks(t.Content, "")
	return strings.Join(blocks, "\n\n")
}

func renderBlocks(nodes []Node, indent string) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if s := renderBlock(n, indent); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func renderBlock(n Node, indent string) string {
	switch n := n.(type) {
	case Heading:
		return indent + strings.Repeat("#", n.Level) + " " + strings.TrimSpace(renderInline(n.Content))
	case Paragraph:
		return indent + renderInline(n.Content)
	case BulletList:
		return renderList(n.Content, indent, func(int) string { return "- " })
	case OrderedList:
		start := n.Start
		if start == 0 {
			start = 1
		}
		return renderList(n.Content, indent, func(i int) string { return strconv.Itoa(start+i) + ". " })
	case CodeBlock:
		var sb strings.Builder
		sb.WriteString(indent + "```" + n.Language + "\n")
		for _, line := range strings.Split(inlineText(n.Content), "\n") {
			sb.WriteString(indent + line + "\n")
		}
		sb.WriteString(indent + "```")
		return sb.String()
	case Blockquote:
		inner := strings.Join(renderBlocks(n.Content, ""), "\n\n")
		lines := strings.Split(inner, "\n")
		for i, line := range lines {
			lines[i] = indent + strings.TrimRight("> "+line, " ")
		}
		return strings.Join(lines, "\n")
	case HorizontalRule:
		return indent + "---"
	case Table:
		return renderTable(n, indent)
	}
	return ""
}

func renderList(items []Node, indent string, marker func(int) string) string {
	lines := make([]string, 0, len(items))
	for i, item := range items {
		li, ok := item.(ListItem)
		if !ok {
			continue
		}
		m := marker(i)
		pad := indent + strings.Repeat(" ", len(m))
		blocks := renderBlocks(li.Content, pad)
		if len(blocks) == 0 {
			lines = append(lines, indent+strings.TrimRight(m, " "))
			continue
		}
		first := strings.TrimPrefix(blocks[0], pad)
		entry := indent + m + first
		for _, b := range blocks[1:] {
			entry += "\n" + b
		}
		lines = append(lines, entry)
	}
	return strings.Join(lines, "\n")
}

func renderTable(t Table, indent string) string {
	var rows [][]string
	for _, r := range t.Content {
		row, ok := r.(TableRow)
		if !ok {
			continue
		}
		var cells []string
		for _, c := range row.Content {
			text := strings.Join(renderBlocks(children(c), ""), " ")
			cells = append(cells, strings.ReplaceAll(text, "|", `\|`))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, cells := range rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(indent + "| " + strings.Join(cells, " | ") + " |")
		if i == 0 {
			seps := make([]string, len(cells))
			for j := range seps {
				seps[j] = "---"
			}
			sb.WriteString("\n" + indent + "| " + strings.Join(seps, " | ") + " |")
		}
	}
	return sb.String()
}

func renderInline(nodes []Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		switch n := n.(type) {
		case Text:
			sb.WriteString(applyMarks(n))
		case Emoji:
			sb.WriteString(":" + n.Name + ":")
		case HardBreak:
			sb.WriteString("  \n")
		}
	}
	return sb.String()
}

func applyMarks(t Text) string {
	s := t.Text
	var href string
	for _, m := range t.Marks {
		switch m.Type {
		case MarkCode:
			s = "`" + s + "`"
		case MarkBold:
			s = "**" + s + "**"
		case MarkItalic:
			s = "_" + s + "_"
		case MarkStrike:
			s = "~~" + s + "~~"
		case MarkLink:
			href = m.Href
		}
	}
	if href != "" {
		s = "[" + s + "](" + href + ")"
	}
	return s
}
