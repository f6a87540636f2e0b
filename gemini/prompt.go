package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/stackdoc"
)

// exampleRunes bounds how much of the worked example goes into a prompt.
const exampleRunes = 400

const structureSystem = "You are a document processor that creates structured content. " +
	"Generate a concise overview in TipTap JSON format."

const overviewSystem = "You are a technical writer. Summarize developer tools for a team's stack notes."

const convertSystem = "You convert prose into TipTap JSON documents. Preserve the wording; only add structure."

const parseSystem = "You are a helpful assistant that extracts structured information from natural language " +
	"input about development tools and libraries. Extract the name, category, documentation URL, and a brief description."

// BuildStructurePrompt builds the single-pass prompt asking for a tree.
func BuildStructurePrompt(req stackdoc.StructureRequest) string {
	var sb strings.Builder
	sb.WriteString("Create a brief overview document with these sections:\n")
	sb.WriteString("1. What it is\n2. Key features\n3. Common use cases\n\n")
	sb.WriteString("Return a TipTap JSON structure:\n")
	sb.WriteString("1. Level 1 heading with title and emoji\n")
	sb.WriteString("2. Level 2 headings for sections\n")
	sb.WriteString("3. Bullet points for features/uses\n")
	sb.WriteString("4. Keep it concise\n\n")
	if req.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n\n", req.Title)
	}
	if ex := exampleJSON(req.Example); ex != "" {
		fmt.Fprintf(&sb, "Use this structure: %s...\n\n", ex)
	}
	fmt.Fprintf(&sb, "Content to analyze:\n%s", req.Excerpt)
	return sb.String()
}

// BuildOverviewPrompt builds the first two-pass prompt, asking for prose.
func BuildOverviewPrompt(req stackdoc.StructureRequest) string {
	var sb strings.Builder
	sb.WriteString("Write a brief overview with the sections What it is, Key features and Common use cases. ")
	sb.WriteString("Use short paragraphs and bullet points.\n\n")
	if req.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n\n", req.Title)
	}
	fmt.Fprintf(&sb, "Content to analyze:\n%s", req.Excerpt)
	return sb.String()
}

// BuildConvertPrompt builds the second two-pass prompt, turning prose into
// a tree shaped like example.
func BuildConvertPrompt(prose string, example *stackdoc.Tree) string {
	var sb strings.Builder
	sb.WriteString("Convert this overview into a TipTap JSON document. ")
	sb.WriteString("Start with a level 1 heading that has an emoji.\n\n")
	if ex := exampleJSON(example); ex != "" {
		fmt.Fprintf(&sb, "Use this structure: %s...\n\n", ex)
	}
	fmt.Fprintf(&sb, "Overview:\n%s", prose)
	return sb.String()
}

// exampleJSON returns the start of the example's wire form.
func exampleJSON(t *stackdoc.Tree) string {
	if t == nil {
		return ""
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return ""
	}
	r := []rune(string(data))
	if len(r) > exampleRunes {
		r = r[:exampleRunes]
	}
	return string(r)
}
