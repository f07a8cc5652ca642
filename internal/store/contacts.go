package store

import (
	"database/sql"
	"fmt"

	"github.com/iLusha80/kbase/internal/apperr"
	"github.com/iLusha80/kbase/internal/models"
	"github.com/iLusha80/kbase/internal/search"
)

const contactSelect = `
SELECT c.id, c.last_name, c.first_name, c.middle_name, c.department, c.role,
       c.email, c.phone, c.link, c.notes, c.type_id,
       COALESCE(ct.name, ''), COALESCE(ct.color, ''),
       c.is_self, c.is_team
  FROM contacts c
  LEFT JOIN contact_types ct ON ct.id = c.type_id`

// ContactTypes returns all contact types in id order.
func (s *Store) ContactTypes() ([]models.ContactType, error) {
	rows, err := s.db.Query(`SELECT id, name, color FROM contact_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: contact types: %w", err)
	}
	defer rows.Close()

	out := []models.ContactType{}
	for rows.Next() {
		var ct models.ContactType
		if err := rows.Scan(&ct.ID, &ct.Name, &ct.Color); err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

func (s *Store) queryContacts(query string, args ...any) ([]models.Contact, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query contacts: %w", err)
	}
	defer rows.Close()

	out := []models.Contact{}
	for rows.Next() {
		var (
			c         models.Contact
			typeID    sql.NullInt64
			typeName  string
			typeColor string
		)
		if err := rows.Scan(&c.ID, &c.LastName, &c.FirstName, &c.MiddleName, &c.Department,
			&c.Role, &c.Email, &c.Phone, &c.Link, &c.Notes,
			&typeID, &typeName, &typeColor, &c.IsSelf, &c.IsTeam); err != nil {
			return nil, err
		}
		if typeID.Valid {
			c.TypeID = &typeID.Int64
			c.Type = &models.ContactType{ID: typeID.Int64, Name: typeName, Color: typeColor}
		}
		c.Tags = []models.Tag{}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachContactTags(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) attachContactTags(contacts []models.Contact) error {
	if len(contacts) == 0 {
		return nil
	}
	ids := make([]int64, len(contacts))
	byID := make(map[int64]*models.Contact, len(contacts))
	for i := range contacts {
		ids[i] = contacts[i].ID
		byID[contacts[i].ID] = &contacts[i]
	}
	rows, err := s.db.Query(
		`SELECT ct.contact_id, g.id, g.name FROM contact_tags ct
		  JOIN tags g ON g.id = ct.tag_id
		 WHERE ct.contact_id IN (`+placeholders(len(ids))+`) ORDER BY g.name`,
		int64Args(ids)...)
	if err != nil {
		return fmt.Errorf("store: contact tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var contactID int64
		var tag models.Tag
		if err := rows.Scan(&contactID, &tag.ID, &tag.Name); err != nil {
			return err
		}
		if c, ok := byID[contactID]; ok {
			c.Tags = append(c.Tags, tag)
		}
	}
	return rows.Err()
}

// Contacts returns all contacts ordered by name.
func (s *Store) Contacts() ([]models.Contact, error) {
	return s.queryContacts(contactSelect + ` ORDER BY c.last_name, c.first_name`)
}

// ContactByID returns one contact or apperr.ErrNotFound.
func (s *Store) ContactByID(id int64) (*models.Contact, error) {
	contacts, err := s.queryContacts(contactSelect+` WHERE c.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, apperr.ErrNotFound
	}
	return &contacts[0], nil
}

// ContactsByIDs returns the contacts with the given ids.
func (s *Store) ContactsByIDs(ids []int64) ([]models.Contact, error) {
	if len(ids) == 0 {
		return []models.Contact{}, nil
	}
	return s.queryContacts(contactSelect+` WHERE c.id IN (`+placeholders(len(ids))+`)`, int64Args(ids)...)
}

// SelfContact returns the contact flagged as the current user, or nil.
func (s *Store) SelfContact() (*models.Contact, error) {
	contacts, err := s.queryContacts(contactSelect + ` WHERE c.is_self = 1 LIMIT 1`)
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, nil
	}
	return &contacts[0], nil
}

// TeamContacts returns contacts flagged as team members.
func (s *Store) TeamContacts() ([]models.Contact, error) {
	return s.queryContacts(contactSelect + ` WHERE c.is_team = 1 ORDER BY c.last_name, c.first_name`)
}

func contactDocument(id int64, in models.ContactInput) search.Document {
	return search.ContactDocument(id, in.LastName, in.FirstName, in.MiddleName,
		in.Department, in.Role, in.Notes)
}

// CreateContact inserts a contact and its full-text document in one transaction.
func (s *Store) CreateContact(in models.ContactInput) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`
		INSERT INTO contacts (last_name, first_name, middle_name, department, role,
		                      email, phone, link, notes, type_id, is_self, is_team)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.LastName, in.FirstName, in.MiddleName, in.Department, in.Role,
		in.Email, in.Phone, in.Link, in.Notes, nullableID(in.TypeID), in.IsSelf, in.IsTeam)
	if err != nil {
		return 0, fmt.Errorf("store: insert contact: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := replaceContactTagsTx(tx, id, in.Tags); err != nil {
		return 0, err
	}
	if err := s.fts.Upsert(tx, contactDocument(id, in)); err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// UpdateContact replaces a contact's fields, tags, and full-text document.
func (s *Store) UpdateContact(id int64, in models.ContactInput) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`
		UPDATE contacts SET last_name = ?, first_name = ?, middle_name = ?, department = ?,
		       role = ?, email = ?, phone = ?, link = ?, notes = ?, type_id = ?,
		       is_self = ?, is_team = ?
		 WHERE id = ?`,
		in.LastName, in.FirstName, in.MiddleName, in.Department, in.Role,
		in.Email, in.Phone, in.Link, in.Notes, nullableID(in.TypeID), in.IsSelf, in.IsTeam, id)
	if err != nil {
		return fmt.Errorf("store: update contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	if err := replaceContactTagsTx(tx, id, in.Tags); err != nil {
		return err
	}
	if err := s.fts.Upsert(tx, contactDocument(id, in)); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteContact removes a contact and its full-text document. Tasks keep
// their rows: assignee/author references are nulled by foreign-key action.
func (s *Store) DeleteContact(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	s.fts.Delete(tx, search.EntityContact, id)
	res, err := tx.Exec(`DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return tx.Commit()
}

func replaceContactTagsTx(tx *sql.Tx, contactID int64, names []string) error {
	if _, err := tx.Exec(`DELETE FROM contact_tags WHERE contact_id = ?`, contactID); err != nil {
		return fmt.Errorf("store: clear contact tags: %w", err)
	}
	tagIDs, err := ensureTagsTx(tx, names)
	if err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO contact_tags (contact_id, tag_id) VALUES (?, ?)`, contactID, tagID); err != nil {
			return fmt.Errorf("store: link contact tag: %w", err)
		}
	}
	return nil
}
