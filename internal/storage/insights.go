package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yourname/sleepwell/internal"
)

const insightColumns = `id, user_id, type, title, content, data_snapshot, generated_at, expires_at, created_at`

type insightRow struct {
	ID           int64          `db:"id"`
	UserID       int64          `db:"user_id"`
	Type         string         `db:"type"`
	Title        string         `db:"title"`
	Content      string         `db:"content"`
	DataSnapshot sql.NullString `db:"data_snapshot"`
	GeneratedAt  time.Time      `db:"generated_at"`
	ExpiresAt    time.Time      `db:"expires_at"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (r insightRow) toModel() (internal.Insight, error) {
	in := internal.Insight{
		ID:          r.ID,
		UserID:      r.UserID,
		Type:        internal.InsightType(r.Type),
		Title:       r.Title,
		Content:     r.Content,
		GeneratedAt: r.GeneratedAt,
		ExpiresAt:   r.ExpiresAt,
		CreatedAt:   r.CreatedAt,
	}
	if r.DataSnapshot.Valid && r.DataSnapshot.String != "" {
		var snap internal.DataSnapshot
		if err := json.Unmarshal([]byte(r.DataSnapshot.String), &snap); err != nil {
			return internal.Insight{}, fmt.Errorf("storage: insight %d snapshot: %w", r.ID, err)
		}
		in.DataSnapshot = &snap
	}
	return in, nil
}

// --- InsightRepository ---
func (s *SQLStore) ListInsights(ctx context.Context, userID int64, typ internal.InsightType, now time.Time) ([]internal.Insight, error) {
	query := `SELECT ` + insightColumns + ` FROM insights WHERE user_id = ? AND expires_at > ?`
	args := []any{userID, now.UTC()}
	if typ != "" {
		query += ` AND type = ?`
		args = append(args, string(typ))
	}
	query += ` ORDER BY generated_at DESC, id ASC`

	var rows []insightRow
	if err := s.db.SelectContext(ctx, &rows, s.rebind(query), args...); err != nil {
		s.logger.Errorf("storage: failed to query insights: %v", err)
		return nil, err
	}
	insights := make([]internal.Insight, 0, len(rows))
	for _, r := range rows {
		in, err := r.toModel()
		if err != nil {
			return nil, err
		}
		insights = append(insights, in)
	}
	return insights, nil
}

// LastGeneratedAt returns nil when the user has no insights at all.
func (s *SQLStore) LastGeneratedAt(ctx context.Context, userID int64) (*time.Time, error) {
	var at time.Time
	err := s.db.GetContext(ctx, &at,
		s.rebind(`SELECT generated_at FROM insights WHERE user_id = ? ORDER BY generated_at DESC LIMIT 1`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &at, nil
}

func (s *SQLStore) ReplaceInsights(ctx context.Context, userID int64, insights []internal.Insight) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Errorf("storage: rollback insights for user %d: %v", userID, rbErr)
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM insights WHERE user_id = ?`), userID); err != nil {
		return err
	}

	insert := tx.Rebind(`INSERT INTO insights (user_id, type, title, content, data_snapshot, generated_at, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	now := time.Now().UTC()
	for i := range insights {
		in := &insights[i]
		in.UserID = userID
		in.CreatedAt = now
		var snapshot sql.NullString
		if in.DataSnapshot != nil {
			b, mErr := json.Marshal(in.DataSnapshot)
			if mErr != nil {
				err = mErr
				return err
			}
			snapshot = sql.NullString{String: string(b), Valid: true}
		}
		err = tx.QueryRowxContext(ctx, insert,
			userID, string(in.Type), in.Title, in.Content, snapshot,
			in.GeneratedAt.UTC(), in.ExpiresAt.UTC(), now,
		).Scan(&in.ID)
		if err != nil {
			s.logger.Errorf("storage: failed to insert insight for user %d: %v", userID, err)
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) DeleteExpiredInsights(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM insights WHERE expires_at <= ?`), now.UTC())
	if err != nil {
		s.logger.Errorf("storage: failed to purge expired insights: %v", err)
		return 0, err
	}
	return res.RowsAffected()
}
