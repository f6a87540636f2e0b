package main

import (
	"fmt"

	"github.com/fwojciec/stackdoc"
)

// Run executes the export command. Only documents with content are
// written; pending and failed documents are skipped.
func (c *ExportCmd) Run(deps *Dependencies) error {
	project, err := findProject(deps, c.Project)
	if err != nil {
		return err
	}

	active := stackdoc.StatusActive
	docs, err := deps.Documents.FindDocuments(deps.Ctx, stackdoc.DocumentFilter{
		ProjectID: &project.ID,
		Status:    &active,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", stackdoc.ErrorMessage(err))
		return err
	}

	written := 0
	for _, doc := range docs {
		if doc.Content == nil {
			continue
		}
		if err := deps.Writer.WriteDocument(deps.Ctx, doc); err != nil {
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", doc.ID, err)
			continue
		}
		written++
	}

	fmt.Fprintf(deps.Stdout, "Exported %d of %d documents to %s\n", written, len(docs), c.Dir)
	return nil
}
