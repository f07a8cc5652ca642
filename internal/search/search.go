// Package search maintains full-text projections of the searchable
// entities (tasks, contacts, projects) and answers ranked prefix queries
// against them. With the sqlite_fts5 build tag the projections are
// standalone FTS5 tables kept in sync by explicit Upsert/Delete calls
// issued inside the same transaction as the primary-table write; without
// it search degrades to LIKE scans over the primary tables.
package search

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// EntityType identifies a searchable entity table.
type EntityType string

const (
	EntityTask    EntityType = "task"
	EntityContact EntityType = "contact"
	EntityProject EntityType = "project"
)

// AllTypes lists every searchable entity type.
var AllTypes = []EntityType{EntityTask, EntityContact, EntityProject}

type tableSpec struct {
	table      string
	columns    []string
	rebuildSQL string
	likeSQL    string
}

var specs = map[EntityType]tableSpec{
	EntityTask: {
		table:   "tasks_fts",
		columns: []string{"title", "description"},
		rebuildSQL: `INSERT INTO tasks_fts (id, title, description)
			SELECT id, title, description FROM tasks`,
		likeSQL: `SELECT id FROM tasks WHERE title LIKE ? OR description LIKE ? ORDER BY id LIMIT ?`,
	},
	EntityContact: {
		table:   "contacts_fts",
		columns: []string{"last_name", "first_name", "middle_name", "department", "role", "notes"},
		rebuildSQL: `INSERT INTO contacts_fts (id, last_name, first_name, middle_name, department, role, notes)
			SELECT id, last_name, first_name, middle_name, department, role, notes FROM contacts`,
		likeSQL: `SELECT id FROM contacts
			WHERE last_name LIKE ?1 OR first_name LIKE ?1 OR middle_name LIKE ?1
			   OR department LIKE ?1 OR role LIKE ?1 OR notes LIKE ?1
			ORDER BY id LIMIT ?2`,
	},
	EntityProject: {
		table:   "projects_fts",
		columns: []string{"title", "description"},
		rebuildSQL: `INSERT INTO projects_fts (id, title, description)
			SELECT id, title, description FROM projects`,
		likeSQL: `SELECT id FROM projects WHERE title LIKE ? OR description LIKE ? ORDER BY id LIMIT ?`,
	},
}

// Index maintains the full-text projections inside the application database.
type Index struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates an Index over an open database handle.
func New(db *sql.DB, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{db: db, logger: logger}
}

// Execer abstracts *sql.Tx and *sql.DB so index maintenance can join the
// caller's transaction.
type Execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// Document is the denormalized text projection of one entity instance.
// Values are aligned with the entity type's indexed columns.
type Document struct {
	Type   EntityType
	ID     int64
	Values []string
}

// TaskDocument builds the indexed document for a task.
func TaskDocument(id int64, title, description string) Document {
	return Document{Type: EntityTask, ID: id, Values: []string{title, description}}
}

// ContactDocument builds the indexed document for a contact.
func ContactDocument(id int64, lastName, firstName, middleName, department, role, notes string) Document {
	return Document{Type: EntityContact, ID: id,
		Values: []string{lastName, firstName, middleName, department, role, notes}}
}

// ProjectDocument builds the indexed document for a project.
func ProjectDocument(id int64, title, description string) Document {
	return Document{Type: EntityProject, ID: id, Values: []string{title, description}}
}

// Search runs the query against each requested entity type and returns
// matching entity ids in relevance order (best match first), capped at
// limit per type (default 10). An empty or whitespace-only query yields
// empty result sets. A failing read for one type degrades to an empty
// result for that type rather than failing the whole query.
func (ix *Index) Search(query string, types []EntityType, limit int) map[EntityType][]int64 {
	if limit <= 0 {
		limit = 10
	}
	out := make(map[EntityType][]int64, len(types))
	for _, et := range types {
		out[et] = []int64{}
	}
	if strings.TrimSpace(query) == "" {
		return out
	}
	for _, et := range types {
		ids, err := ix.searchType(et, query, limit)
		if err != nil {
			ix.logger.Warn("search: query failed",
				slog.String("entity_type", string(et)),
				slog.String("query", query),
				slog.String("error", err.Error()))
			continue
		}
		out[et] = ids
	}
	return out
}

// MatchQuery turns free text into an FTS5 match expression: every
// whitespace-separated token becomes a required prefix term, e.g.
// "fix log" -> `"fix"* "log"*`. Empty input yields "".
func MatchQuery(q string) string {
	fields := strings.Fields(q)
	terms := make([]string, 0, len(fields))
	for _, tok := range fields {
		tok = strings.ReplaceAll(tok, `"`, "")
		if tok == "" {
			continue
		}
		terms = append(terms, `"`+tok+`"*`)
	}
	return strings.Join(terms, " ")
}

func scanInt64s(rows *sql.Rows) ([]int64, error) {
	defer rows.Close()
	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func createSQL(sp tableSpec) string {
	return fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS %s USING fts5(id UNINDEXED, %s, tokenize='unicode61')`,
		sp.table, strings.Join(sp.columns, ", "))
}
