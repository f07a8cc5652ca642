package store

import (
	"fmt"
	"time"

	"github.com/iLusha80/kbase/internal/apperr"
	"github.com/iLusha80/kbase/internal/models"
)

// QuickLinks returns all quick links, oldest first.
func (s *Store) QuickLinks() ([]models.QuickLink, error) {
	rows, err := s.db.Query(`SELECT id, title, url, icon, created_at FROM quick_links ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("store: quick links: %w", err)
	}
	defer rows.Close()

	out := []models.QuickLink{}
	for rows.Next() {
		var l models.QuickLink
		if err := rows.Scan(&l.ID, &l.Title, &l.URL, &l.Icon, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// CreateQuickLink inserts a quick link.
func (s *Store) CreateQuickLink(title, url, icon string) (*models.QuickLink, error) {
	if icon == "" {
		icon = "link"
	}
	now := time.Now().UTC()
	res, err := s.db.Exec(`INSERT INTO quick_links (title, url, icon, created_at) VALUES (?, ?, ?, ?)`,
		title, url, icon, now)
	if err != nil {
		return nil, fmt.Errorf("store: insert quick link: %w", err)
	}
	id, _ := res.LastInsertId()
	return &models.QuickLink{ID: id, Title: title, URL: url, Icon: icon, CreatedAt: now}, nil
}

// UpdateQuickLink replaces a quick link's fields.
func (s *Store) UpdateQuickLink(id int64, title, url, icon string) (*models.QuickLink, error) {
	if icon == "" {
		icon = "link"
	}
	res, err := s.db.Exec(`UPDATE quick_links SET title = ?, url = ?, icon = ? WHERE id = ?`,
		title, url, icon, id)
	if err != nil {
		return nil, fmt.Errorf("store: update quick link: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.ErrNotFound
	}
	out := &models.QuickLink{ID: id, Title: title, URL: url, Icon: icon}
	err = s.db.QueryRow(`SELECT created_at FROM quick_links WHERE id = ?`, id).Scan(&out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: update quick link: %w", err)
	}
	return out, nil
}

// DeleteQuickLink removes a quick link.
func (s *Store) DeleteQuickLink(id int64) error {
	res, err := s.db.Exec(`DELETE FROM quick_links WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete quick link: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
