// Package store provides SQLite-backed persistence for all kbase entities.
// Mutations that touch searchable entities write the primary row and its
// full-text document inside one transaction.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/iLusha80/kbase/internal/search"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS contact_types (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	name  TEXT NOT NULL UNIQUE,
	color TEXT NOT NULL DEFAULT '#cbd5e1'
);

CREATE TABLE IF NOT EXISTS contacts (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	last_name   TEXT NOT NULL,
	first_name  TEXT NOT NULL DEFAULT '',
	middle_name TEXT NOT NULL DEFAULT '',
	department  TEXT NOT NULL DEFAULT '',
	role        TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL DEFAULT '',
	phone       TEXT NOT NULL DEFAULT '',
	link        TEXT NOT NULL DEFAULT '',
	notes       TEXT NOT NULL DEFAULT '',
	type_id     INTEGER REFERENCES contact_types(id) ON DELETE SET NULL,
	is_self     INTEGER NOT NULL DEFAULT 0,
	is_team     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS task_statuses (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	name  TEXT NOT NULL UNIQUE,
	color TEXT NOT NULL DEFAULT '#94a3b8'
);

CREATE TABLE IF NOT EXISTS projects (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'Active',
	link        TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	due_date    TEXT,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	status_id   INTEGER NOT NULL REFERENCES task_statuses(id),
	assignee_id INTEGER REFERENCES contacts(id) ON DELETE SET NULL,
	author_id   INTEGER REFERENCES contacts(id) ON DELETE SET NULL,
	project_id  INTEGER REFERENCES projects(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS task_comments (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id    INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	text       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS meetings (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	title            TEXT NOT NULL DEFAULT '',
	date             TEXT NOT NULL,
	time             TEXT NOT NULL DEFAULT '',
	duration_minutes INTEGER,
	agenda           TEXT NOT NULL DEFAULT '',
	notes            TEXT NOT NULL DEFAULT '',
	project_id       INTEGER REFERENCES projects(id) ON DELETE SET NULL,
	status           TEXT NOT NULL DEFAULT 'planned',
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tags (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS task_tags (
	task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	tag_id  INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	UNIQUE(task_id, tag_id)
);

CREATE TABLE IF NOT EXISTS contact_tags (
	contact_id INTEGER NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
	tag_id     INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	UNIQUE(contact_id, tag_id)
);

CREATE TABLE IF NOT EXISTS quick_links (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	title      TEXT NOT NULL,
	url        TEXT NOT NULL,
	icon       TEXT NOT NULL DEFAULT 'link',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS activity_logs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	entity_type TEXT NOT NULL,
	entity_id   INTEGER NOT NULL,
	event_type  TEXT NOT NULL,
	field_name  TEXT NOT NULL,
	old_value   TEXT NOT NULL DEFAULT '',
	new_value   TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status_id);
CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id);
CREATE INDEX IF NOT EXISTS idx_activity_entity ON activity_logs(entity_type, entity_id);
CREATE INDEX IF NOT EXISTS idx_activity_created ON activity_logs(created_at);
`

// Store wraps a sql.DB with entity persistence and keeps the full-text
// index synchronized through the embedded search.Index.
type Store struct {
	db  *sql.DB
	fts *search.Index
}

// Open opens (or creates) the SQLite database, applies the schema, seeds
// the default lookup rows, and initializes the full-text index.
func Open(dsn string, logger *slog.Logger) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	if err := seedDefaults(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: seed defaults: %w", err)
	}
	fts := search.New(conn, logger)
	if err := fts.EnsureInitialized(); err != nil {
		conn.Close()
		return nil, err
	}
	return &Store{db: conn, fts: fts}, nil
}

func seedDefaults(conn *sql.DB) error {
	seeds := []struct {
		query string
		rows  [][2]string
	}{
		{
			query: `INSERT OR IGNORE INTO task_statuses (name, color) VALUES (?, ?)`,
			rows: [][2]string{
				{"To Do", "#64748b"},
				{"In Progress", "#f59e0b"},
				{"Waiting", "#8b5cf6"},
				{"Done", "#22c55e"},
			},
		},
		{
			query: `INSERT OR IGNORE INTO contact_types (name, color) VALUES (?, ?)`,
			rows: [][2]string{
				{"Management", "#ef4444"},
				{"Team", "#10b981"},
				{"Vendors", "#3b82f6"},
				{"Other", "#94a3b8"},
			},
		},
	}
	for _, s := range seeds {
		for _, r := range s.rows {
			if _, err := conn.Exec(s.query, r[0], r[1]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Index returns the full-text index bound to this store's database.
func (s *Store) Index() *search.Index {
	return s.fts
}

// DB exposes the underlying handle for components sharing the database
// (activity log, tests).
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// placeholders returns "?, ?, ..." for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
