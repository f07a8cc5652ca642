package store

// EntityTitle resolves a human-readable title for an entity referenced by
// type and id. Returns false when the entity no longer exists (activity
// log entries outlive the entities they describe).
func (s *Store) EntityTitle(entityType string, id int64) (string, bool) {
	var (
		title string
		err   error
	)
	switch entityType {
	case "task":
		err = s.db.QueryRow(`SELECT title FROM tasks WHERE id = ?`, id).Scan(&title)
	case "project":
		err = s.db.QueryRow(`SELECT title FROM projects WHERE id = ?`, id).Scan(&title)
	case "meeting":
		err = s.db.QueryRow(`SELECT title FROM meetings WHERE id = ?`, id).Scan(&title)
	case "contact":
		err = s.db.QueryRow(`SELECT TRIM(last_name || ' ' || first_name) FROM contacts WHERE id = ?`, id).Scan(&title)
	default:
		return "", false
	}
	if err != nil {
		return "", false
	}
	return title, true
}
