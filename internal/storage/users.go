package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kalambet/meishi/internal/profile"
)

func (s *Store) UserByExternalID(ctx context.Context, externalID string) (profile.User, error) {
	var (
		u                    profile.User
		email, lastLogin     sql.NullString
		createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, external_id, email, role, created_at, updated_at, last_login_at
		FROM users WHERE external_id = ?`), externalID,
	).Scan(&u.ID, &u.ExternalID, &email, &u.Role, &createdAt, &updatedAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return profile.User{}, ErrNotFound
	}
	if err != nil {
		return profile.User{}, err
	}

	u.Email = email.String
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return profile.User{}, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return profile.User{}, err
	}
	if lastLogin.Valid {
		t, err := parseTime(lastLogin.String)
		if err != nil {
			return profile.User{}, err
		}
		u.LastLoginAt = &t
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u profile.User) error {
	var lastLogin any
	if u.LastLoginAt != nil {
		lastLogin = formatTime(*u.LastLoginAt)
	}
	role := u.Role
	if role == "" {
		role = "user"
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO users (id, external_id, email, role, created_at, updated_at, last_login_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		u.ID, u.ExternalID, nullable(u.Email), role, formatTime(u.CreatedAt), formatTime(u.UpdatedAt), lastLogin,
	)
	return err
}

func (s *Store) TouchUserLogin(ctx context.Context, userID string, at time.Time) error {
	ts := formatTime(at)
	return s.execOne(ctx, s.db, "UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?", ts, ts, userID)
}

func (s *Store) UpdateUserEmail(ctx context.Context, userID, email string) error {
	return s.execOne(ctx, s.db, "UPDATE users SET email = ?, updated_at = ? WHERE id = ?", nullable(email), formatTime(time.Now()), userID)
}

// DeleteUserByExternalID removes the user together with its profile and links.
func (s *Store) DeleteUserByExternalID(ctx context.Context, externalID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var userID string
		err := tx.QueryRowContext(ctx, s.q("SELECT id FROM users WHERE external_id = ?"), externalID).Scan(&userID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM links WHERE profile_id IN (SELECT id FROM profiles WHERE user_id = ?)`), userID); err != nil {
			return fmt.Errorf("deleting links: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.q("DELETE FROM profiles WHERE user_id = ?"), userID); err != nil {
			return fmt.Errorf("deleting profile: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.q("DELETE FROM users WHERE id = ?"), userID); err != nil {
			return fmt.Errorf("deleting user: %w", err)
		}
		return nil
	})
}

// execOne runs a single-row write and reports ErrNotFound when nothing matched.
func (s *Store) execOne(ctx context.Context, e execer, query string, args ...any) error {
	res, err := e.ExecContext(ctx, s.q(query), args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// nullable maps "" to SQL NULL.
func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
