package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/stackdoc"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ stackdoc.ProjectService = (*ProjectService)(nil)

// ProjectService implements stackdoc.ProjectService using SQLite.
type ProjectService struct {
	db *DB
}

// NewProjectService creates a new ProjectService.
func NewProjectService(db *DB) *ProjectService {
	return &ProjectService{db: db}
}

// CreateProject creates a new project. A caller-supplied ID is kept.
func (s *ProjectService) CreateProject(ctx context.Context, project *stackdoc.Project) error {
	if err := project.Validate(); err != nil {
		return err
	}

	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, project.ID, project.Name, formatTime(project.CreatedAt), formatTime(project.UpdatedAt))

	return err
}

// FindProjectByID retrieves a project by ID.
func (s *ProjectService) FindProjectByID(ctx context.Context, id string) (*stackdoc.Project, error) {
	project, err := scanProject(s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM projects
		WHERE id = ?
	`, id))

	if err == sql.ErrNoRows {
		return nil, stackdoc.Errorf(stackdoc.ENOTFOUND, "project not found")
	}
	if err != nil {
		return nil, err
	}
	return project, nil
}

// FindProjects retrieves projects matching the filter, oldest first.
func (s *ProjectService) FindProjects(ctx context.Context, filter stackdoc.ProjectFilter) ([]*stackdoc.Project, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, name, created_at, updated_at FROM projects WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Name != nil {
		query.WriteString(" AND name = ?")
		args = append(args, *filter.Name)
	}

	query.WriteString(" ORDER BY created_at ASC, rowid ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*stackdoc.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	return projects, rows.Err()
}

// UpdateProject updates an existing project.
func (s *ProjectService) UpdateProject(ctx context.Context, id string, upd stackdoc.ProjectUpdate) (*stackdoc.Project, error) {
	// First check if project exists
	project, err := s.FindProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		project.Name = *upd.Name
	}

	// Validate before persisting
	if err := project.Validate(); err != nil {
		return nil, err
	}

	project.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE projects
		SET name = ?, updated_at = ?
		WHERE id = ?
	`, project.Name, formatTime(project.UpdatedAt), id)

	if err != nil {
		return nil, err
	}

	return project, nil
}

// DeleteProject permanently removes a project. Its documents are removed by
// the foreign key cascade.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return stackdoc.Errorf(stackdoc.ENOTFOUND, "project not found")
	}

	return nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*stackdoc.Project, error) {
	var project stackdoc.Project
	var createdAt, updatedAt string

	if err := row.Scan(&project.ID, &project.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if project.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if project.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &project, nil
}
