package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/stackdoc"
	"github.com/fwojciec/stackdoc/collab"
	"github.com/fwojciec/stackdoc/docsync"
)

// Run executes the edit command. The file goes through a sync session like
// any editor change, so unchanged and blank content is not written.
func (c *EditCmd) Run(deps *Dependencies) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	tree, err := stackdoc.ParseTree(data)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", stackdoc.ErrorMessage(err))
		return err
	}

	session, err := deps.Sessions.Open(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", stackdoc.ErrorMessage(err))
		return err
	}
	defer func() { _ = deps.Sessions.Close(session.ID()) }()

	room := deps.Hub.Join(c.ID, collab.User{ClientID: session.ID(), Name: c.As, Color: collab.Color(session.ID())})
	defer deps.Hub.Leave(c.ID, session.ID())

	if err := session.Initialize(deps.Ctx, docsync.NewBufferEditor(), room); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", stackdoc.ErrorMessage(err))
		return err
	}

	outcome, err := session.Change(deps.Ctx, tree)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", stackdoc.ErrorMessage(err))
		return err
	}

	switch outcome {
	case docsync.Persisted:
		fmt.Fprintf(deps.Stdout, "Saved document %s\n", c.ID)
	case docsync.Skipped:
		fmt.Fprintf(deps.Stdout, "No changes to document %s\n", c.ID)
	default:
		fmt.Fprintf(deps.Stdout, "Document %s: %s\n", c.ID, outcome)
	}
	return nil
}
