// Package testutil provides shared test helpers for setting up temporary
// databases and manipulating record timestamps.
package testutil

import (
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/iLusha80/kbase/internal/activity"
	"github.com/iLusha80/kbase/internal/store"
)

// Logger returns a logger that discards all output.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Env bundles the layers most tests need over one temporary database.
type Env struct {
	Store *store.Store
	Log   *activity.Log
	DB    *sql.DB
}

// NewEnv creates a temporary SQLite database with the full schema applied;
// cleanup is automatic.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "kbase-test.db"), Logger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return &Env{Store: st, Log: activity.New(st.DB()), DB: st.DB()}
}

// BackdateLatestActivity rewrites the created_at of the newest activity
// entry, for tests exercising time-windowed log queries.
func BackdateLatestActivity(t *testing.T, db *sql.DB, to time.Time) {
	t.Helper()
	_, err := db.Exec(`UPDATE activity_logs SET created_at = ?
		WHERE id = (SELECT MAX(id) FROM activity_logs)`, to.UTC())
	if err != nil {
		t.Fatalf("backdate activity: %v", err)
	}
}

// BackdateTask rewrites a task's created_at.
func BackdateTask(t *testing.T, db *sql.DB, taskID int64, to time.Time) {
	t.Helper()
	if _, err := db.Exec(`UPDATE tasks SET created_at = ? WHERE id = ?`, to.UTC(), taskID); err != nil {
		t.Fatalf("backdate task: %v", err)
	}
}
