package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/stackdoc"
	"github.com/fwojciec/stackdoc/ingest"
)

// Run executes the add command.
func (c *AddCmd) Run(deps *Dependencies) error {
	project, err := findProject(deps, c.Project)
	if err != nil {
		return err
	}

	req := ingest.AddRequest{
		ProjectID: project.ID,
		Name:      c.Name,
		Category:  stackdoc.Category(c.Category),
		URL:       c.URL,
	}

	if c.Describe != "" {
		if deps.Parser == nil {
			fmt.Fprintln(deps.Stderr, "error: --describe needs GEMINI_API_KEY")
			return stackdoc.Errorf(stackdoc.EUNAVAILABLE, "input parser not configured")
		}
		meta, err := deps.Parser.Parse(deps.Ctx, c.Describe)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", stackdoc.ErrorMessage(err))
			return err
		}
		req.Name = firstNonEmpty(req.Name, meta.Name)
		req.URL = firstNonEmpty(req.URL, meta.URL)
		if req.Category == stackdoc.CategoryNone {
			req.Category = meta.Category
		}
	}

	if req.Category != stackdoc.CategoryNone && stackdoc.ParseCategory(string(req.Category)) == stackdoc.CategoryNone {
		fmt.Fprintf(deps.Stderr, "warning: unknown category %q ignored\n", req.Category)
	}

	doc, err := deps.Pipeline.AddDocument(deps.Ctx, req)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", stackdoc.ErrorMessage(err))
		return err
	}

	if doc.Status == stackdoc.StatusError {
		fmt.Fprintf(deps.Stderr, "  failed %s: %s\n", req.URL, doc.Preview)
		return stackdoc.Errorf(stackdoc.EUPSTREAM, "%s", doc.Preview)
	}

	fmt.Fprintf(deps.Stdout, "Added document %q (%s)\n", doc.Title, doc.ID)
	if doc.Preview != "" {
		fmt.Fprintf(deps.Stdout, "  %s\n", doc.Preview)
	}
	return nil
}

// Run executes the parse command.
func (c *ParseCmd) Run(deps *Dependencies) error {
	meta, err := deps.Parser.Parse(deps.Ctx, strings.Join(c.Input, " "))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", stackdoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Name:        %s\n", meta.Name)
	fmt.Fprintf(deps.Stdout, "Category:    %s\n", meta.Category)
	fmt.Fprintf(deps.Stdout, "URL:         %s\n", meta.URL)
	fmt.Fprintf(deps.Stdout, "Description: %s\n", meta.Description)
	if !meta.Complete() {
		fmt.Fprintln(deps.Stderr, "warning: some fields could not be determined")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
