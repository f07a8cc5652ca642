package store

import (
	"fmt"

	"github.com/iLusha80/kbase/internal/apperr"
	"github.com/iLusha80/kbase/internal/models"
	"github.com/iLusha80/kbase/internal/search"
)

const projectSelect = `
SELECT p.id, p.title, p.description, p.status, p.link, p.created_at,
       COUNT(t.id),
       COALESCE(SUM(CASE WHEN s.name = 'Done' THEN 1 ELSE 0 END), 0)
  FROM projects p
  LEFT JOIN tasks t ON t.project_id = p.id
  LEFT JOIN task_statuses s ON s.id = t.status_id`

func (s *Store) queryProjects(query string, args ...any) ([]models.Project, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query projects: %w", err)
	}
	defer rows.Close()

	out := []models.Project{}
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Status, &p.Link,
			&p.CreatedAt, &p.TasksCount, &p.DoneCount); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Projects returns all projects with task counts, newest first.
func (s *Store) Projects() ([]models.Project, error) {
	return s.queryProjects(projectSelect + ` GROUP BY p.id ORDER BY p.created_at DESC`)
}

// ProjectByID returns one project or apperr.ErrNotFound.
func (s *Store) ProjectByID(id int64) (*models.Project, error) {
	projects, err := s.queryProjects(projectSelect+` WHERE p.id = ? GROUP BY p.id`, id)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, apperr.ErrNotFound
	}
	return &projects[0], nil
}

// ProjectsByIDs returns the projects with the given ids.
func (s *Store) ProjectsByIDs(ids []int64) ([]models.Project, error) {
	if len(ids) == 0 {
		return []models.Project{}, nil
	}
	return s.queryProjects(projectSelect+` WHERE p.id IN (`+placeholders(len(ids))+`) GROUP BY p.id`,
		int64Args(ids)...)
}

// TopActiveProjects returns active projects ordered by their number of
// active (to-do or in-progress) tasks. Falls back to the most recent
// active projects when none have active tasks.
func (s *Store) TopActiveProjects(limit int) ([]models.Project, error) {
	projects, err := s.queryProjects(projectSelect+`
		 WHERE p.status = ?
		 GROUP BY p.id
		HAVING SUM(CASE WHEN s.name IN (?, ?) THEN 1 ELSE 0 END) > 0
		 ORDER BY SUM(CASE WHEN s.name IN (?, ?) THEN 1 ELSE 0 END) DESC
		 LIMIT ?`,
		models.ProjectActive,
		models.StatusTodo, models.StatusInProgress,
		models.StatusTodo, models.StatusInProgress, limit)
	if err != nil {
		return nil, err
	}
	if len(projects) > 0 {
		return projects, nil
	}
	return s.queryProjects(projectSelect+` WHERE p.status = ? GROUP BY p.id ORDER BY p.created_at DESC LIMIT ?`,
		models.ProjectActive, limit)
}

// CreateProject inserts a project and its full-text document in one transaction.
func (s *Store) CreateProject(in models.ProjectInput) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	status := in.Status
	if status == "" {
		status = models.ProjectActive
	}
	res, err := tx.Exec(`INSERT INTO projects (title, description, status, link) VALUES (?, ?, ?, ?)`,
		in.Title, in.Description, status, in.Link)
	if err != nil {
		return 0, fmt.Errorf("store: insert project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := s.fts.Upsert(tx, search.ProjectDocument(id, in.Title, in.Description)); err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// UpdateProject replaces a project's fields and full-text document.
func (s *Store) UpdateProject(id int64, in models.ProjectInput) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	status := in.Status
	if status == "" {
		status = models.ProjectActive
	}
	res, err := tx.Exec(`UPDATE projects SET title = ?, description = ?, status = ?, link = ? WHERE id = ?`,
		in.Title, in.Description, status, in.Link, id)
	if err != nil {
		return fmt.Errorf("store: update project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	if err := s.fts.Upsert(tx, search.ProjectDocument(id, in.Title, in.Description)); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteProject removes a project and its full-text document. Tasks and
// meetings keep their rows with project references nulled.
func (s *Store) DeleteProject(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	s.fts.Delete(tx, search.EntityProject, id)
	res, err := tx.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return tx.Commit()
}

// ProjectTaskBreakdown summarizes task status counts per active project
// that has at least one task, sorted by in-progress count descending.
type ProjectTaskBreakdown struct {
	ProjectID  int64  `json:"project_id"`
	Title      string `json:"title"`
	Completed  int    `json:"completed"`
	InProgress int    `json:"in_progress"`
	Todo       int    `json:"todo"`
	Total      int    `json:"total"`
}

// ProjectBreakdowns computes the per-project completion rollup.
func (s *Store) ProjectBreakdowns() ([]ProjectTaskBreakdown, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.title,
		       SUM(CASE WHEN s.name = ? THEN 1 ELSE 0 END),
		       SUM(CASE WHEN s.name = ? THEN 1 ELSE 0 END),
		       SUM(CASE WHEN s.name = ? THEN 1 ELSE 0 END),
		       COUNT(t.id)
		  FROM projects p
		  JOIN tasks t ON t.project_id = p.id
		  JOIN task_statuses s ON s.id = t.status_id
		 WHERE p.status = ?
		 GROUP BY p.id
		HAVING COUNT(t.id) > 0
		 ORDER BY SUM(CASE WHEN s.name = ? THEN 1 ELSE 0 END) DESC, p.title`,
		models.StatusDone, models.StatusInProgress, models.StatusTodo,
		models.ProjectActive, models.StatusInProgress)
	if err != nil {
		return nil, fmt.Errorf("store: project breakdowns: %w", err)
	}
	defer rows.Close()

	out := []ProjectTaskBreakdown{}
	for rows.Next() {
		var b ProjectTaskBreakdown
		if err := rows.Scan(&b.ProjectID, &b.Title, &b.Completed, &b.InProgress, &b.Todo, &b.Total); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
