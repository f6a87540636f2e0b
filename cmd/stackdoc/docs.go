package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/stackdoc"
)

// Run executes the docs command.
func (c *DocsCmd) Run(deps *Dependencies) error {
	project, err := findProject(deps, c.Project)
	if err != nil {
		return err
	}

	docs, err := deps.Documents.FindDocuments(deps.Ctx, stackdoc.DocumentFilter{ProjectID: &project.ID})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", stackdoc.ErrorMessage(err))
		return err
	}

	if len(docs) == 0 {
		fmt.Fprintf(deps.Stdout, "Project %q has no documents. Use 'stackdoc add %s <url>' to add one.\n", c.Project, c.Project)
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Documents for %s (%d total):\n\n", project.Name, len(docs))
	for i, doc := range docs {
		fmt.Fprintf(deps.Stdout, "  %d. %s [%s]", i+1, doc.Title, doc.Status)
		if doc.Category != stackdoc.CategoryNone {
			fmt.Fprintf(deps.Stdout, " %s", doc.Category)
		}
		fmt.Fprintf(deps.Stdout, "\n     %s\n", doc.ID)
		if doc.Content != nil && doc.Content.URL != "" {
			fmt.Fprintf(deps.Stdout, "     %s\n", doc.Content.URL)
		}
	}
	return nil
}

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	doc, err := deps.Documents.FindDocumentByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", stackdoc.ErrorMessage(err))
		return err
	}

	if doc.Content == nil {
		fmt.Fprintf(deps.Stdout, "%s\n\n%s\n", doc.Title, doc.Preview)
		return nil
	}

	if c.JSON {
		tree := doc.Content.Tiptap
		if tree == nil {
			tree = stackdoc.DefaultTree()
		}
		data, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(deps.Stdout, string(data))
		return nil
	}

	markdown := doc.Content.Markdown
	if markdown == "" && doc.Content.Tiptap != nil {
		markdown = stackdoc.RenderMarkdown(doc.Content.Tiptap)
	}
	if markdown == "" {
		markdown = doc.Preview
	}
	fmt.Fprintln(deps.Stdout, markdown)
	return nil
}

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return stackdoc.Errorf(stackdoc.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Documents.DeleteDocument(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", stackdoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted document %s\n", c.ID)
	return nil
}
