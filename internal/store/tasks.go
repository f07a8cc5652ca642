package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/iLusha80/kbase/internal/apperr"
	"github.com/iLusha80/kbase/internal/models"
	"github.com/iLusha80/kbase/internal/search"
)

const taskSelect = `
SELECT t.id, t.title, t.description, COALESCE(t.due_date, ''), t.created_at,
       t.status_id, s.name, s.color,
       t.assignee_id, COALESCE(TRIM(ca.last_name || ' ' || ca.first_name), ''),
       t.author_id,   COALESCE(TRIM(au.last_name || ' ' || au.first_name), ''),
       t.project_id,  COALESCE(p.title, '')
  FROM tasks t
  JOIN task_statuses s ON s.id = t.status_id
  LEFT JOIN contacts ca ON ca.id = t.assignee_id
  LEFT JOIN contacts au ON au.id = t.author_id
  LEFT JOIN projects p  ON p.id = t.project_id`

// TaskStatuses returns all workflow statuses in id order.
func (s *Store) TaskStatuses() ([]models.TaskStatus, error) {
	rows, err := s.db.Query(`SELECT id, name, color FROM task_statuses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: task statuses: %w", err)
	}
	defer rows.Close()

	out := []models.TaskStatus{}
	for rows.Next() {
		var st models.TaskStatus
		if err := rows.Scan(&st.ID, &st.Name, &st.Color); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// TaskStatusByName looks up a status by its display name.
func (s *Store) TaskStatusByName(name string) (*models.TaskStatus, error) {
	var st models.TaskStatus
	err := s.db.QueryRow(`SELECT id, name, color FROM task_statuses WHERE name = ?`, name).
		Scan(&st.ID, &st.Name, &st.Color)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: status by name: %w", err)
	}
	return &st, nil
}

// TaskStatusByID looks up a status by id.
func (s *Store) TaskStatusByID(id int64) (*models.TaskStatus, error) {
	var st models.TaskStatus
	err := s.db.QueryRow(`SELECT id, name, color FROM task_statuses WHERE id = ?`, id).
		Scan(&st.ID, &st.Name, &st.Color)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: status by id: %w", err)
	}
	return &st, nil
}

func (s *Store) queryTasks(query string, args ...any) ([]models.Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query tasks: %w", err)
	}
	defer rows.Close()

	out := []models.Task{}
	for rows.Next() {
		var (
			t          models.Task
			status     models.TaskStatus
			due        string
			assigneeID sql.NullInt64
			authorID   sql.NullInt64
			projectID  sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &due, &t.CreatedAt,
			&status.ID, &status.Name, &status.Color,
			&assigneeID, &t.AssigneeName,
			&authorID, &t.AuthorName,
			&projectID, &t.ProjectTitle); err != nil {
			return nil, err
		}
		t.StatusID = status.ID
		t.Status = &status
		if due != "" {
			if d, err := models.ParseDate(due); err == nil {
				t.DueDate = &d
			}
		}
		if assigneeID.Valid {
			t.AssigneeID = &assigneeID.Int64
		}
		if authorID.Valid {
			t.AuthorID = &authorID.Int64
		}
		if projectID.Valid {
			t.ProjectID = &projectID.Int64
		}
		t.Tags = []models.Tag{}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachTaskTags(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) attachTaskTags(tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	ids := make([]int64, len(tasks))
	byID := make(map[int64]*models.Task, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
		byID[tasks[i].ID] = &tasks[i]
	}
	rows, err := s.db.Query(
		`SELECT tt.task_id, g.id, g.name FROM task_tags tt
		  JOIN tags g ON g.id = tt.tag_id
		 WHERE tt.task_id IN (`+placeholders(len(ids))+`) ORDER BY g.name`,
		int64Args(ids)...)
	if err != nil {
		return fmt.Errorf("store: task tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var taskID int64
		var tag models.Tag
		if err := rows.Scan(&taskID, &tag.ID, &tag.Name); err != nil {
			return err
		}
		if t, ok := byID[taskID]; ok {
			t.Tags = append(t.Tags, tag)
		}
	}
	return rows.Err()
}

// Tasks returns all tasks grouped by status then due date.
func (s *Store) Tasks() ([]models.Task, error) {
	return s.queryTasks(taskSelect + ` ORDER BY t.status_id, t.due_date IS NULL, t.due_date, t.id`)
}

// TaskByID returns one task or apperr.ErrNotFound.
func (s *Store) TaskByID(id int64) (*models.Task, error) {
	tasks, err := s.queryTasks(taskSelect+` WHERE t.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, apperr.ErrNotFound
	}
	return &tasks[0], nil
}

// TasksByIDs returns the tasks with the given ids, in no particular order.
func (s *Store) TasksByIDs(ids []int64) ([]models.Task, error) {
	if len(ids) == 0 {
		return []models.Task{}, nil
	}
	return s.queryTasks(taskSelect+` WHERE t.id IN (`+placeholders(len(ids))+`)`, int64Args(ids)...)
}

// TasksByIDsInStatus filters the given ids to tasks currently in the named
// status. This is the current-state half of the two-step protocol: the
// activity log supplies candidates, this query keeps only those for which
// the transition still holds.
func (s *Store) TasksByIDsInStatus(ids []int64, statusName string) ([]models.Task, error) {
	if len(ids) == 0 {
		return []models.Task{}, nil
	}
	args := int64Args(ids)
	args = append(args, statusName)
	return s.queryTasks(taskSelect+` WHERE t.id IN (`+placeholders(len(ids))+`) AND s.name = ?`, args...)
}

// TasksInStatus returns all tasks currently in the named status.
func (s *Store) TasksInStatus(statusName string) ([]models.Task, error) {
	return s.queryTasks(taskSelect+` WHERE s.name = ? ORDER BY t.due_date IS NULL, t.due_date, t.id`, statusName)
}

// TasksInStatusLimit returns at most limit tasks in the named status.
func (s *Store) TasksInStatusLimit(statusName string, limit int) ([]models.Task, error) {
	return s.queryTasks(taskSelect+` WHERE s.name = ? ORDER BY t.due_date IS NULL, t.due_date, t.id LIMIT ?`,
		statusName, limit)
}

// TasksDueOn returns non-done tasks due exactly on the given day (YYYY-MM-DD).
func (s *Store) TasksDueOn(day string) ([]models.Task, error) {
	return s.queryTasks(taskSelect+` WHERE t.due_date = ? AND s.name != ? ORDER BY t.id`,
		day, models.StatusDone)
}

// TasksOverdue returns non-done tasks whose due date is before the given day.
func (s *Store) TasksOverdue(day string) ([]models.Task, error) {
	return s.queryTasks(taskSelect+` WHERE t.due_date IS NOT NULL AND t.due_date < ? AND s.name != ? ORDER BY t.due_date, t.id`,
		day, models.StatusDone)
}

// TasksCreatedBetween returns tasks created in [since, until], newest first.
func (s *Store) TasksCreatedBetween(since, until time.Time) ([]models.Task, error) {
	return s.queryTasks(taskSelect+` WHERE t.created_at >= ? AND t.created_at <= ? ORDER BY t.created_at DESC`,
		since, until)
}

/// PriorityTasks returns non-done tasks ordered by urgency: earliest due date
// first (no due date last), then most recently created.
func (s *Store) PriorityTasks(limit int) ([]models.Task, error) {
	return s.queryTasks(taskSelect+` WHERE s.name != ? ORDER BY t.due_date IS NULL, t.due_date, t.created_at DESC LIMIT ?`,
		models.StatusDone, limit)
}

// UnassignedActiveTasks returns non-done tasks with no assignee.
func (s *Store) UnassignedActiveTasks() ([]models.Task, error) {
	return s.queryTasks(taskSelect+` WHERE t.assignee_id IS NULL AND s.name != ? ORDER BY t.id`,
		models.StatusDone)
}

// ActiveAssignedCounts returns, per assignee contact id, the number of
// currently active (non-done) tasks assigned to them.
func (s *Store) ActiveAssignedCounts() (map[int64]int, error) {
	rows, err := s.db.Query(`
		SELECT t.assignee_id, COUNT(*)
		  FROM tasks t
		  JOIN task_statuses s ON s.id = t.status_id
		 WHERE t.assignee_id IS NOT NULL AND s.name != ?
		 GROUP BY t.assignee_id`, models.StatusDone)
	if err != nil {
		return nil, fmt.Errorf("store: active assigned counts: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]int)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

func dueDateArg(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

// CreateTask inserts a task and its full-text document in one transaction.
func (s *Store) CreateTask(in models.TaskInput) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	statusID := in.StatusID
	if statusID == 0 {
		if err := tx.QueryRow(`SELECT id FROM task_statuses WHERE name = ?`, models.StatusTodo).Scan(&statusID); err != nil {
			return 0, fmt.Errorf("store: default status: %w", err)
		}
	}

	res, err := tx.Exec(`
		INSERT INTO tasks (title, description, due_date, created_at, status_id, assignee_id, author_id, project_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Title, in.Description, dueDateArg(in.DueDate), time.Now().UTC(), statusID,
		nullableID(in.AssigneeID), nullableID(in.AuthorID), nullableID(in.ProjectID))
	if err != nil {
		return 0, fmt.Errorf("store: insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := replaceTaskTagsTx(tx, id, in.Tags); err != nil {
		return 0, err
	}
	if err := s.fts.Upsert(tx, search.TaskDocument(id, in.Title, in.Description)); err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// UpdateTask replaces a task's mutable fields, its tag set, and its
// full-text document in one transaction.
func (s *Store) UpdateTask(id int64, in models.TaskInput) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	statusID := in.StatusID
	if statusID == 0 {
		if err := tx.QueryRow(`SELECT status_id FROM tasks WHERE id = ?`, id).Scan(&statusID); err != nil {
			if err == sql.ErrNoRows {
				return apperr.ErrNotFound
			}
			return fmt.Errorf("store: current status: %w", err)
		}
	}

	res, err := tx.Exec(`
		UPDATE tasks SET title = ?, description = ?, due_date = ?, status_id = ?,
		       assignee_id = ?, author_id = ?, project_id = ?
		 WHERE id = ?`,
		in.Title, in.Description, dueDateArg(in.DueDate), statusID,
		nullableID(in.AssigneeID), nullableID(in.AuthorID), nullableID(in.ProjectID), id)
	if err != nil {
		return fmt.Errorf("store: update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	if err := replaceTaskTagsTx(tx, id, in.Tags); err != nil {
		return err
	}
	if err := s.fts.Upsert(tx, search.TaskDocument(id, in.Title, in.Description)); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateTaskStatus changes only the workflow status. The indexed text fields
// are untouched, so no full-text sync is needed.
func (s *Store) UpdateTaskStatus(id, statusID int64) error {
	res, err := s.db.Exec(`UPDATE tasks SET status_id = ? WHERE id = ?`, statusID, id)
	if err != nil {
		return fmt.Errorf("store: update task status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteTask removes a task and its full-text document in one transaction.
// Comments and tag links are removed by foreign-key cascade.
func (s *Store) DeleteTask(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	s.fts.Delete(tx, search.EntityTask, id)
	res, err := tx.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return tx.Commit()
}

func replaceTaskTagsTx(tx *sql.Tx, taskID int64, names []string) error {
	if _, err := tx.Exec(`DELETE FROM task_tags WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("store: clear task tags: %w", err)
	}
	tagIDs, err := ensureTagsTx(tx, names)
	if err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO task_tags (task_id, tag_id) VALUES (?, ?)`, taskID, tagID); err != nil {
			return fmt.Errorf("store: link task tag: %w", err)
		}
	}
	return nil
}

// TaskComments returns a task's comments, oldest first.
func (s *Store) TaskComments(taskID int64) ([]models.TaskComment, error) {
	rows, err := s.db.Query(
		`SELECT id, task_id, text, created_at FROM task_comments WHERE task_id = ? ORDER BY created_at, id`,
		taskID)
	if err != nil {
		return nil, fmt.Errorf("store: task comments: %w", err)
	}
	defer rows.Close()

	out := []models.TaskComment{}
	for rows.Next() {
		var c models.TaskComment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AddTaskComment appends a comment to a task.
func (s *Store) AddTaskComment(taskID int64, text string) (*models.TaskComment, error) {
	var exists int
	if err := s.db.QueryRow(`SELECT count(*) FROM tasks WHERE id = ?`, taskID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("store: check task: %w", err)
	}
	if exists == 0 {
		return nil, apperr.ErrNotFound
	}
	now := time.Now().UTC()
	res, err := s.db.Exec(`INSERT INTO task_comments (task_id, text, created_at) VALUES (?, ?, ?)`,
		taskID, text, now)
	if err != nil {
		return nil, fmt.Errorf("store: insert comment: %w", err)
	}
	id, _ := res.LastInsertId()
	return &models.TaskComment{ID: id, TaskID: taskID, Text: text, CreatedAt: now}, nil
}
