package main

import (
	"fmt"

	"github.com/fwojciec/stackdoc"
)

// Run executes the project create command.
func (c *ProjectCreateCmd) Run(deps *Dependencies) error {
	project := &stackdoc.Project{Name: c.Name}
	if err := deps.Projects.CreateProject(deps.Ctx, project); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", stackdoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Created project %q (%s)\n", project.Name, project.ID)
	return nil
}

// Run executes the project list command.
func (c *ProjectListCmd) Run(deps *Dependencies) error {
	projects, err := deps.Projects.FindProjects(deps.Ctx, stackdoc.ProjectFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", stackdoc.ErrorMessage(err))
		return err
	}

	if len(projects) == 0 {
		fmt.Fprintln(deps.Stdout, "No projects found. Use 'stackdoc project create' to create one.")
		return nil
	}

	for _, p := range projects {
		fmt.Fprintf(deps.Stdout, "%s  %s\n", p.ID, p.Name)
	}
	return nil
}

// Run executes the project rename command.
func (c *ProjectRenameCmd) Run(deps *Dependencies) error {
	project, err := findProject(deps, c.Name)
	if err != nil {
		return err
	}

	if _, err := deps.Projects.UpdateProject(deps.Ctx, project.ID, stackdoc.ProjectUpdate{Name: &c.NewName}); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", stackdoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Renamed project %q to %q\n", c.Name, c.NewName)
	return nil
}

// Run executes the project delete command.
func (c *ProjectDeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return stackdoc.Errorf(stackdoc.EINVALID, "use --force to confirm deletion")
	}

	project, err := findProject(deps, c.Name)
	if err != nil {
		return err
	}

	if err := deps.Projects.DeleteProject(deps.Ctx, project.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", stackdoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted project %q\n", project.Name)
	return nil
}

// findProject looks a project up by name and reports a missing one on
// stderr.
func findProject(deps *Dependencies, name string) (*stackdoc.Project, error) {
	projects, err := deps.Projects.FindProjects(deps.Ctx, stackdoc.ProjectFilter{Name: &name})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", stackdoc.ErrorMessage(err))
		return nil, err
	}

	if len(projects) == 0 {
		fmt.Fprintf(deps.Stderr, "error: project %q not found. Use 'stackdoc project list' to see available projects.\n", name)
		return nil, stackdoc.Errorf(stackdoc.ENOTFOUND, "project %q not found", name)
	}
	return projects[0], nil
}
