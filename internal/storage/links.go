package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kalambet/meishi/internal/profile"
)

const linkColumns = "id, profile_id, label, url, position, created_at, updated_at"

func scanLink(row interface{ Scan(...any) error }) (profile.Link, error) {
	var (
		l                    profile.Link
		createdAt, updatedAt string
	)
	if err := row.Scan(&l.ID, &l.ProfileID, &l.Label, &l.URL, &l.Position, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return profile.Link{}, ErrNotFound
		}
		return profile.Link{}, err
	}
	var err error
	if l.CreatedAt, err = parseTime(createdAt); err != nil {
		return profile.Link{}, err
	}
	if l.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return profile.Link{}, err
	}
	return l, nil
}

// LinksByProfile returns a profile's links ordered by position.
func (s *Store) LinksByProfile(ctx context.Context, profileID string) ([]profile.Link, error) {
	return s.linksByProfile(ctx, s.db, profileID)
}

func (s *Store) linksByProfile(ctx context.Context, e execer, profileID string) ([]profile.Link, error) {
	rows, err := e.QueryContext(ctx, s.q("SELECT "+linkColumns+" FROM links WHERE profile_id = ? ORDER BY position ASC"), profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []profile.Link{}
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (s *Store) LinkByID(ctx context.Context, id string) (profile.Link, error) {
	return scanLink(s.db.QueryRowContext(ctx, s.q("SELECT "+linkColumns+" FROM links WHERE id = ?"), id))
}

func (s *Store) CountLinks(ctx context.Context, profileID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.q("SELECT COUNT(*) FROM links WHERE profile_id = ?"), profileID).Scan(&n)
	return n, err
}

func (s *Store) CreateLink(ctx context.Context, l profile.Link) error {
	return s.insertLink(ctx, s.db, l)
}

func (s *Store) insertLink(ctx context.Context, e execer, l profile.Link) error {
	_, err := e.ExecContext(ctx, s.q("INSERT INTO links ("+linkColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)"),
		l.ID, l.ProfileID, l.Label, l.URL, l.Position, formatTime(l.CreatedAt), formatTime(l.UpdatedAt))
	return err
}

// UpdateLink writes label and url. Position is managed by the store.
func (s *Store) UpdateLink(ctx context.Context, l profile.Link) error {
	return s.execOne(ctx, s.db, "UPDATE links SET label = ?, url = ?, updated_at = ? WHERE id = ?",
		l.Label, l.URL, formatTime(l.UpdatedAt), l.ID)
}

// DeleteLink removes a link and re-sequences the profile's remaining links
// densely from 0 in the same transaction.
func (s *Store) DeleteLink(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var profileID string
		err := tx.QueryRowContext(ctx, s.q("SELECT profile_id FROM links WHERE id = ?"), id).Scan(&profileID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, s.q("DELETE FROM links WHERE id = ?"), id); err != nil {
			return fmt.Errorf("deleting link: %w", err)
		}

		rest, err := s.linksByProfile(ctx, tx, profileID)
		if err != nil {
			return err
		}
		for i, l := range rest {
			if l.Position == i {
				continue
			}
			if _, err := tx.ExecContext(ctx, s.q("UPDATE links SET position = ? WHERE id = ?"), i, l.ID); err != nil {
				return fmt.Errorf("re-sequencing link %s: %w", l.ID, err)
			}
		}
		return nil
	})
}

// DeleteLinksByProfile removes every link of a profile.
func (s *Store) DeleteLinksByProfile(ctx context.Context, profileID string) error {
	return s.deleteLinksByProfile(ctx, s.db, profileID)
}

func (s *Store) deleteLinksByProfile(ctx context.Context, e execer, profileID string) error {
	_, err := e.ExecContext(ctx, s.q("DELETE FROM links WHERE profile_id = ?"), profileID)
	return err
}

func (s *Store) replaceLinks(ctx context.Context, e execer, profileID string, links []profile.Link) error {
	if err := s.deleteLinksByProfile(ctx, e, profileID); err != nil {
		return fmt.Errorf("clearing links: %w", err)
	}
	for _, l := range links {
		l.ProfileID = profileID
		if err := s.insertLink(ctx, e, l); err != nil {
			return fmt.Errorf("inserting link: %w", err)
		}
	}
	return nil
}
