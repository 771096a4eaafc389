package storage

import (
	"context"
	"time"

	"github.com/yourname/sleepwell/internal"
)

const userColumns = `id, email, password_hash, name, created_at, updated_at, last_login_at`

// --- UserRepository ---
func (s *SQLStore) CreateUser(ctx context.Context, user *internal.User) error {
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	err := s.db.QueryRowxContext(ctx,
		s.rebind(`INSERT INTO users (email, password_hash, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?) RETURNING id`),
		user.Email, user.PasswordHash, user.Name, now, now,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return translate(err)
		}
		s.logger.Errorf("storage: failed to insert user: %v", err)
		return err
	}
	return nil
}

func (s *SQLStore) GetUser(ctx context.Context, id int64) (*internal.User, error) {
	var u internal.User
	err := s.db.GetContext(ctx, &u, s.rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*internal.User, error) {
	var u internal.User
	err := s.db.GetContext(ctx, &u, s.rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), email)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// UpdateUser writes name, email and password hash, and bumps updated_at.
func (s *SQLStore) UpdateUser(ctx context.Context, user *internal.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE users SET email = ?, password_hash = ?, name = ?, updated_at = ? WHERE id = ?`),
		user.Email, user.PasswordHash, user.Name, user.UpdatedAt, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return translate(err)
		}
		s.logger.Errorf("storage: failed to update user %d: %v", user.ID, err)
		return err
	}
	return expectAffected(res)
}

func (s *SQLStore) TouchLogin(ctx context.Context, id int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE users SET last_login_at = ? WHERE id = ?`), at.UTC(), id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// DeleteUser removes the user; logs, entries and insights go with it via ON DELETE CASCADE.
func (s *SQLStore) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		s.logger.Errorf("storage: failed to delete user %d: %v", id, err)
		return err
	}
	return expectAffected(res)
}

// ListActiveUserIDs returns users updated or logged in at or after since.
func (s *SQLStore) ListActiveUserIDs(ctx context.Context, since time.Time) ([]int64, error) {
	var ids []int64
	since = since.UTC()
	err := s.db.SelectContext(ctx, &ids,
		s.rebind(`SELECT id FROM users WHERE updated_at >= ? OR last_login_at >= ? ORDER BY id`), since, since)
	if err != nil {
		s.logger.Errorf("storage: failed to list active users: %v", err)
		return nil, err
	}
	return ids, nil
}
