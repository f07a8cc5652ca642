// Package activity records field-level changes to tracked entities in an
// append-only log and answers time-windowed queries against it. Entries are
// never mutated or deleted; they deliberately outlive the entities they
// describe to preserve the audit trail.
package activity

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/iLusha80/kbase/internal/models"
)

// Entity types tracked in the log.
const (
	EntityTask    = "task"
	EntityMeeting = "meeting"
)

// Event types.
const (
	EventCreate = "create"
	EventUpdate = "update"
)

// Entry is one immutable field-level change record.
type Entry struct {
	ID         int64     `json:"id"`
	EntityType string    `json:"entity_type"`
	EntityID   int64     `json:"entity_id"`
	EventType  string    `json:"event_type"`
	FieldName  string    `json:"field_name"`
	OldValue   string    `json:"old_value"`
	NewValue   string    `json:"new_value"`
	CreatedAt  time.Time `json:"created_at"`
}

// Item is an entry annotated with a resolved entity title for display.
type Item struct {
	Entry
	EntityTitle string `json:"entity_title"`
}

// Log is the append-only change log, stored in the application database.
type Log struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a Log over an open database handle.
func New(db *sql.DB) *Log {
	return &Log{db: db, now: time.Now}
}

// Record appends one change entry. Old and new values are compared as
// strings with "no value" normalized to the empty string; equal values are
// a no-op so the log never records changes that did not happen.
func (l *Log) Record(entityType string, entityID int64, eventType, fieldLabel, oldValue, newValue string) error {
	if oldValue == newValue {
		return nil
	}
	_, err := l.db.Exec(`
		INSERT INTO activity_logs (entity_type, entity_id, event_type, field_name, old_value, new_value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entityType, entityID, eventType, fieldLabel, oldValue, newValue, l.now().UTC())
	if err != nil {
		return fmt.Errorf("activity: record: %w", err)
	}
	return nil
}

const entrySelect = `
SELECT id, entity_type, entity_id, event_type, field_name, old_value, new_value, created_at
  FROM activity_logs`

func (l *Log) queryEntries(query string, args ...any) ([]Entry, error) {
	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("activity: query: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.EventType,
			&e.FieldName, &e.OldValue, &e.NewValue, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Entries returns all entries for one entity, newest first.
func (l *Log) Entries(entityType string, entityID int64) ([]Entry, error) {
	return l.queryEntries(entrySelect+` WHERE entity_type = ? AND entity_id = ? ORDER BY created_at DESC, id DESC`,
		entityType, entityID)
}

// Recent returns the most recent entries across all entity types.
func (l *Log) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 15
	}
	return l.queryEntries(entrySelect+` ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
}

// TransitionsInWindow returns the distinct entity ids that transitioned to
// newValue on the given field within [since, until]. Callers must
// cross-check the result against current entity state: the log records
// that a transition happened, not that it still holds.
func (l *Log) TransitionsInWindow(entityType, fieldLabel, newValue string, since, until time.Time) ([]int64, error) {
	rows, err := l.db.Query(`
		SELECT DISTINCT entity_id FROM activity_logs
		 WHERE entity_type = ? AND field_name = ? AND new_value = ?
		   AND created_at >= ? AND created_at <= ?`,
		entityType, fieldLabel, newValue, since.UTC(), until.UTC())
	if err != nil {
		return nil, fmt.Errorf("activity: transitions in window: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// LatestTransitionBefore returns entity ids whose most recent transition to
// newValue on the given field happened before the cutoff. Used for stuck
// detection; callers apply the same current-state cross-check.
func (l *Log) LatestTransitionBefore(entityType, fieldLabel, newValue string, cutoff time.Time) ([]int64, error) {
	rows, err := l.db.Query(`
		SELECT entity_id FROM activity_logs
		 WHERE entity_type = ? AND field_name = ? AND new_value = ?
		 GROUP BY entity_id
		HAVING MAX(created_at) < ?`,
		entityType, fieldLabel, newValue, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("activity: latest transition before: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

func scanIDs(rows *sql.Rows) ([]int64, error) {
	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Diff records one update entry per changed field label. Values use their
// human-readable display form; the caller is expected to have re-read the
// entity after commit so resolved associations are compared, not stale ids.
func Diff(l *Log, entityType string, entityID int64, changes []FieldChange) []error {
	var errs []error
	for _, ch := range changes {
		if err := l.Record(entityType, entityID, EventUpdate, ch.Label, ch.Old, ch.New); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// FieldChange pairs a human-readable field label with its old and new
// display values.
type FieldChange struct {
	Label string
	Old   string
	New   string
}

// TaskChanges computes the field-level changes between two hydrated tasks.
func TaskChanges(oldT, newT models.Task) []FieldChange {
	return []FieldChange{
		{Label: "Title", Old: oldT.Title, New: newT.Title},
		{Label: "Description", Old: oldT.Description, New: newT.Description},
		{Label: "Status", Old: statusName(oldT), New: statusName(newT)},
		{Label: "Assignee", Old: oldT.AssigneeName, New: newT.AssigneeName},
		{Label: "Due date", Old: dueDate(oldT), New: dueDate(newT)},
		{Label: "Project", Old: oldT.ProjectTitle, New: newT.ProjectTitle},
	}
}

// MeetingChanges computes the field-level changes between two meetings.
func MeetingChanges(oldM, newM models.Meeting) []FieldChange {
	return []FieldChange{
		{Label: "Title", Old: oldM.Title, New: newM.Title},
		{Label: "Status", Old: oldM.Status, New: newM.Status},
		{Label: "Date", Old: oldM.Date.String(), New: newM.Date.String()},
	}
}

func statusName(t models.Task) string {
	if t.Status == nil {
		return ""
	}
	return t.Status.Name
}

func dueDate(t models.Task) string {
	if t.DueDate == nil {
		return ""
	}
	return t.DueDate.String()
}
