//go:build !sqlite_fts5

package search

import "strings"

// EnsureInitialized is a no-op without FTS5; search uses LIKE scans over
// the primary tables.
func (ix *Index) EnsureInitialized() error { return nil }

// Rebuild is a no-op without FTS5: there is no projection to regenerate.
func (ix *Index) Rebuild() error { return nil }

// Upsert is a no-op without FTS5; the primary row is already the source
// the LIKE fallback scans.
func (ix *Index) Upsert(_ Execer, _ Document) error { return nil }

// Delete is a no-op without FTS5.
func (ix *Index) Delete(_ Execer, _ EntityType, _ int64) {}

func (ix *Index) searchType(et EntityType, query string, limit int) ([]int64, error) {
	sp := specs[et]
	like := "%" + strings.TrimSpace(query) + "%"

	var args []any
	switch et {
	case EntityContact:
		// likeSQL uses numbered parameters for the wide column list.
		args = []any{like, limit}
	default:
		args = []any{like, like, limit}
	}
	rows, err := ix.db.Query(sp.likeSQL, args...)
	if err != nil {
		return nil, err
	}
	return scanInt64s(rows)
}
