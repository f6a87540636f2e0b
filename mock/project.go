package mock

import (
	"context"

	"github.com/fwojciec/stackdoc"
)

var _ stackdoc.ProjectService = (*ProjectService)(nil)

// ProjectService is a mock implementation of stackdoc.ProjectService.
type ProjectService struct {
	CreateProjectFn   func(ctx context.Context, project *stackdoc.Project) error
	FindProjectByIDFn func(ctx context.Context, id string) (*stackdoc.Project, error)
	FindProjectsFn    func(ctx context.Context, filter stackdoc.ProjectFilter) ([]*stackdoc.Project, error)
	UpdateProjectFn   func(ctx context.Context, id string, upd stackdoc.ProjectUpdate) (*stackdoc.Project, error)
	DeleteProjectFn   func(ctx context.Context, id string) error
}

func (s *ProjectService) CreateProject(ctx context.Context, project *stackdoc.Project) error {
	return s.CreateProjectFn(ctx, project)
}

func (s *ProjectService) FindProjectByID(ctx context.Context, id string) (*stackdoc.Project, error) {
	return s.FindProjectByIDFn(ctx, id)
}

func (s *ProjectService) FindProjects(ctx context.Context, filter stackdoc.ProjectFilter) ([]*stackdoc.Project, error) {
	return s.FindProjectsFn(ctx, filter)
}

func (s *ProjectService) UpdateProject(ctx context.Context, id string, upd stackdoc.ProjectUpdate) (*stackdoc.Project, error) {
	return s.UpdateProjectFn(ctx, id, upd)
}

func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	return s.DeleteProjectFn(ctx, id)
}
