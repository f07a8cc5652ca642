package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/iLusha80/kbase/internal/apperr"
	"github.com/iLusha80/kbase/internal/models"
)

// NormalizeTag lowercases and trims a tag name.
func NormalizeTag(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Tags returns all tags sorted by name.
func (s *Store) Tags() ([]models.Tag, error) {
	return s.queryTags(`SELECT id, name FROM tags ORDER BY name`)
}

// TagsMatching returns tags whose name contains the fragment.
func (s *Store) TagsMatching(fragment string, limit int) ([]models.Tag, error) {
	return s.queryTags(`SELECT id, name FROM tags WHERE name LIKE ? ORDER BY name LIMIT ?`,
		"%"+NormalizeTag(fragment)+"%", limit)
}

// TagSuggestions returns the first tags alphabetically, for autocomplete.
func (s *Store) TagSuggestions(limit int) ([]models.Tag, error) {
	return s.queryTags(`SELECT id, name FROM tags ORDER BY name LIMIT ?`, limit)
}

func (s *Store) queryTags(query string, args ...any) ([]models.Tag, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query tags: %w", err)
	}
	defer rows.Close()

	out := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateTag inserts a tag with a normalized unique name.
func (s *Store) CreateTag(name string) (*models.Tag, error) {
	clean := NormalizeTag(name)
	var existing int64
	err := s.db.QueryRow(`SELECT id FROM tags WHERE name = ?`, clean).Scan(&existing)
	if err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("store: check tag: %w", err)
	}
	res, err := s.db.Exec(`INSERT INTO tags (name) VALUES (?)`, clean)
	if err != nil {
		return nil, fmt.Errorf("store: insert tag: %w", err)
	}
	id, _ := res.LastInsertId()
	return &models.Tag{ID: id, Name: clean}, nil
}

// UpdateTag renames a tag.
func (s *Store) UpdateTag(id int64, name string) (*models.Tag, error) {
	clean := NormalizeTag(name)
	res, err := s.db.Exec(`UPDATE tags SET name = ? WHERE id = ?`, clean, id)
	if err != nil {
		return nil, fmt.Errorf("store: update tag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.ErrNotFound
	}
	return &models.Tag{ID: id, Name: clean}, nil
}

// DeleteTag removes a tag; links are removed by cascade.
func (s *Store) DeleteTag(id int64) error {
	res, err := s.db.Exec(`DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete tag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// FrequentTags returns tags ordered by how often they are attached to
// tasks and contacts combined.
func (s *Store) FrequentTags(limit int) ([]models.TagUsage, error) {
	rows, err := s.db.Query(`
		SELECT g.id, g.name, COUNT(*) AS usage
		  FROM (SELECT tag_id FROM task_tags UNION ALL SELECT tag_id FROM contact_tags) u
		  JOIN tags g ON g.id = u.tag_id
		 GROUP BY g.id
		 ORDER BY usage DESC, g.name
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: frequent tags: %w", err)
	}
	defer rows.Close()

	out := []models.TagUsage{}
	for rows.Next() {
		var t models.TagUsage
		if err := rows.Scan(&t.ID, &t.Name, &t.UsageCount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TasksWithTags returns tasks carrying any of the given tags.
func (s *Store) TasksWithTags(tagIDs []int64, limit int) ([]models.Task, error) {
	if len(tagIDs) == 0 {
		return []models.Task{}, nil
	}
	args := int64Args(tagIDs)
	args = append(args, limit)
	return s.queryTasks(taskSelect+`
		 WHERE t.id IN (SELECT task_id FROM task_tags WHERE tag_id IN (`+placeholders(len(tagIDs))+`))
		 ORDER BY t.id LIMIT ?`, args...)
}

// ContactsWithTags returns contacts carrying any of the given tags.
func (s *Store) ContactsWithTags(tagIDs []int64, limit int) ([]models.Contact, error) {
	if len(tagIDs) == 0 {
		return []models.Contact{}, nil
	}
	args := int64Args(tagIDs)
	args = append(args, limit)
	return s.queryContacts(contactSelect+`
		 WHERE c.id IN (SELECT contact_id FROM contact_tags WHERE tag_id IN (`+placeholders(len(tagIDs))+`))
		 ORDER BY c.last_name, c.first_name LIMIT ?`, args...)
}

// ProjectsWithTaggedTasks returns projects reached through tasks carrying
// any of the given tags.
func (s *Store) ProjectsWithTaggedTasks(tagIDs []int64, limit int) ([]models.Project, error) {
	if len(tagIDs) == 0 {
		return []models.Project{}, nil
	}
	args := int64Args(tagIDs)
	args = append(args, limit)
	rows, err := s.db.Query(`
		SELECT DISTINCT t.project_id FROM tasks t
		  JOIN task_tags tt ON tt.task_id = t.id
		 WHERE tt.tag_id IN (`+placeholders(len(tagIDs))+`) AND t.project_id IS NOT NULL
		 LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: tagged projects: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return s.ProjectsByIDs(ids)
}

// ensureTagsTx resolves tag names to ids inside a transaction, creating
// missing tags. Empty names are skipped; names are normalized.
func ensureTagsTx(tx *sql.Tx, names []string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		clean := NormalizeTag(name)
		if clean == "" {
			continue
		}
		var id int64
		err := tx.QueryRow(`SELECT id FROM tags WHERE name = ?`, clean).Scan(&id)
		if err == sql.ErrNoRows {
			res, insErr := tx.Exec(`INSERT INTO tags (name) VALUES (?)`, clean)
			if insErr != nil {
				return nil, fmt.Errorf("store: insert tag %q: %w", clean, insErr)
			}
			id, _ = res.LastInsertId()
		} else if err != nil {
			return nil, fmt.Errorf("store: lookup tag %q: %w", clean, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
