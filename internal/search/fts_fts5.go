//go:build sqlite_fts5

package search

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// EnsureInitialized idempotently creates the FTS table for each entity type.
// Corruption is detected by probing each table with a trivial read; any
// failure drops the table so it can be recreated from scratch.
func (ix *Index) EnsureInitialized() error {
	for _, et := range AllTypes {
		sp := specs[et]
		var n int
		if err := ix.db.QueryRow(`SELECT count(*) FROM ` + sp.table + ` LIMIT 1`).Scan(&n); err != nil {
			ix.logger.Warn("search: probe failed, recreating table",
				slog.String("table", sp.table), slog.String("error", err.Error()))
			if _, dropErr := ix.db.Exec(`DROP TABLE IF EXISTS ` + sp.table); dropErr != nil {
				return fmt.Errorf("search: drop %s: %w", sp.table, dropErr)
			}
		}
		if _, err := ix.db.Exec(createSQL(sp)); err != nil {
			return fmt.Errorf("search: create %s: %w", sp.table, err)
		}
	}
	return nil
}

// Rebuild discards and regenerates every FTS table from the current
// primary-table contents. Safe to call repeatedly. A table that fails to
// rebuild has its schema recreated and is retried exactly once before the
// error propagates.
func (ix *Index) Rebuild() error {
	for _, et := range AllTypes {
		if err := ix.rebuildType(et); err != nil {
			sp := specs[et]
			ix.logger.Warn("search: rebuild failed, recreating schema and retrying",
				slog.String("table", sp.table), slog.String("error", err.Error()))
			if _, dropErr := ix.db.Exec(`DROP TABLE IF EXISTS ` + sp.table); dropErr != nil {
				return fmt.Errorf("search: drop %s: %w", sp.table, dropErr)
			}
			if _, createErr := ix.db.Exec(createSQL(sp)); createErr != nil {
				return fmt.Errorf("search: recreate %s: %w", sp.table, createErr)
			}
			if retryErr := ix.rebuildType(et); retryErr != nil {
				return fmt.Errorf("search: rebuild %s: %w", sp.table, retryErr)
			}
		}
	}
	return nil
}

func (ix *Index) rebuildType(et EntityType) error {
	sp := specs[et]
	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("search: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM ` + sp.table); err != nil {
		return err
	}
	if _, err := tx.Exec(sp.rebuildSQL); err != nil {
		return err
	}
	return tx.Commit()
}

// Upsert replaces the indexed document within the caller's transaction.
// Implemented as delete-then-insert: FTS5 has no update primitive.
func (ix *Index) Upsert(tx Execer, doc Document) error {
	sp, ok := specs[doc.Type]
	if !ok {
		return fmt.Errorf("search: unknown entity type %q", doc.Type)
	}
	if len(doc.Values) != len(sp.columns) {
		return fmt.Errorf("search: %s document has %d values, want %d", doc.Type, len(doc.Values), len(sp.columns))
	}
	_, _ = tx.Exec(`DELETE FROM `+sp.table+` WHERE id = ?`, doc.ID)

	args := make([]any, 0, len(doc.Values)+1)
	args = append(args, doc.ID)
	for _, v := range doc.Values {
		args = append(args, v)
	}
	q := `INSERT INTO ` + sp.table + ` (id, ` + strings.Join(sp.columns, ", ") + `) VALUES (?` +
		strings.Repeat(", ?", len(sp.columns)) + `)`
	if _, err := tx.Exec(q, args...); err != nil {
		return fmt.Errorf("search: upsert %s %d: %w", doc.Type, doc.ID, err)
	}
	return nil
}

// Delete removes an entity's document within the caller's transaction.
func (ix *Index) Delete(tx Execer, et EntityType, id int64) {
	sp, ok := specs[et]
	if !ok {
		return
	}
	_, _ = tx.Exec(`DELETE FROM `+sp.table+` WHERE id = ?`, id)
}

func (ix *Index) searchType(et EntityType, query string, limit int) ([]int64, error) {
	match := MatchQuery(query)
	if match == "" {
		return []int64{}, nil
	}
	sp := specs[et]
	rows, err := ix.db.Query(
		`SELECT id FROM `+sp.table+` WHERE `+sp.table+` MATCH ? ORDER BY rank LIMIT ?`,
		match, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
