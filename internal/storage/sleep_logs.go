package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/yourname/sleepwell/internal"
)

const sleepLogColumns = `id, user_id, date, bedtime, wake_time, duration_minutes, quality, interruptions, notes, created_at, updated_at`

// sleepLogRow keeps bedtime and wake time as RFC 3339 text so the
// caller's UTC offset survives the round trip on every backend.
type sleepLogRow struct {
	ID              int64          `db:"id"`
	UserID          int64          `db:"user_id"`
	Date            string         `db:"date"`
	Bedtime         string         `db:"bedtime"`
	WakeTime        string         `db:"wake_time"`
	DurationMinutes int            `db:"duration_minutes"`
	Quality         int            `db:"quality"`
	Interruptions   int            `db:"interruptions"`
	Notes           sql.NullString `db:"notes"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (r sleepLogRow) toModel() (internal.SleepLog, error) {
	bed, err := time.Parse(time.RFC3339Nano, r.Bedtime)
	if err != nil {
		return internal.SleepLog{}, fmt.Errorf("storage: sleep log %d bedtime: %w", r.ID, err)
	}
	wake, err := time.Parse(time.RFC3339Nano, r.WakeTime)
	if err != nil {
		return internal.SleepLog{}, fmt.Errorf("storage: sleep log %d wake_time: %w", r.ID, err)
	}
	return internal.SleepLog{
		ID:              r.ID,
		UserID:          r.UserID,
		Date:            r.Date,
		Bedtime:         bed,
		WakeTime:        wake,
		DurationMinutes: r.DurationMinutes,
		Quality:         r.Quality,
		Interruptions:   r.Interruptions,
		Notes:           stringPtr(r.Notes),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}, nil
}

// --- SleepLogRepository ---
func (s *SQLStore) CreateSleepLog(ctx context.Context, log *internal.SleepLog) error {
	now := time.Now().UTC()
	log.CreatedAt, log.UpdatedAt = now, now
	err := s.db.QueryRowxContext(ctx,
		s.rebind(`INSERT INTO sleep_logs (user_id, date, bedtime, wake_time, duration_minutes, quality, interruptions, notes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		log.UserID, log.Date,
		log.Bedtime.Format(time.RFC3339Nano), log.WakeTime.Format(time.RFC3339Nano),
		log.DurationMinutes, log.Quality, log.Interruptions, nullString(log.Notes), now, now,
	).Scan(&log.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return translate(err)
		}
		s.logger.Errorf("storage: failed to insert sleep log: %v", err)
		return err
	}
	return nil
}

func (s *SQLStore) GetSleepLog(ctx context.Context, userID, id int64) (*internal.SleepLog, error) {
	return s.getSleepLog(ctx, `SELECT `+sleepLogColumns+` FROM sleep_logs WHERE user_id = ? AND id = ?`, userID, id)
}

func (s *SQLStore) GetSleepLogByDate(ctx context.Context, userID int64, date string) (*internal.SleepLog, error) {
	return s.getSleepLog(ctx, `SELECT `+sleepLogColumns+` FROM sleep_logs WHERE user_id = ? AND date = ?`, userID, date)
}

func (s *SQLStore) getSleepLog(ctx context.Context, query string, args ...any) (*internal.SleepLog, error) {
	var row sleepLogRow
	if err := s.db.GetContext(ctx, &row, s.rebind(query), args...); err != nil {
		return nil, translate(err)
	}
	l, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListSleepLogs returns the user's logs, newest date first.
func (s *SQLStore) ListSleepLogs(ctx context.Context, userID int64, q ListQuery) ([]internal.SleepLog, error) {
	query, args := listQuery(`SELECT `+sleepLogColumns+` FROM sleep_logs`, userID, q)
	var rows []sleepLogRow
	if err := s.db.SelectContext(ctx, &rows, s.rebind(query), args...); err != nil {
		s.logger.Errorf("storage: failed to query sleep logs: %v", err)
		return nil, err
	}

	logs := make([]internal.SleepLog, 0, len(rows))
	for _, r := range rows {
		l, err := r.toModel()
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, nil
}

func (s *SQLStore) UpdateSleepLog(ctx context.Context, log *internal.SleepLog) error {
	log.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE sleep_logs SET date = ?, bedtime = ?, wake_time = ?, duration_minutes = ?, quality = ?, interruptions = ?, notes = ?, updated_at = ?
			WHERE user_id = ? AND id = ?`),
		log.Date, log.Bedtime.Format(time.RFC3339Nano), log.WakeTime.Format(time.RFC3339Nano),
		log.DurationMinutes, log.Quality, log.Interruptions, nullString(log.Notes), log.UpdatedAt,
		log.UserID, log.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return translate(err)
		}
		s.logger.Errorf("storage: failed to update sleep log %d: %v", log.ID, err)
		return err
	}
	return expectAffected(res)
}

func (s *SQLStore) DeleteSleepLog(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM sleep_logs WHERE user_id = ? AND id = ?`), userID, id)
	if err != nil {
		s.logger.Errorf("storage: failed to delete sleep log %d: %v", id, err)
		return err
	}
	return expectAffected(res)
}

// listQuery appends the per-user filter, the optional inclusive date bounds,
// newest-first ordering and paging to base.
func listQuery(base string, userID int64, q ListQuery) (string, []any) {
	query := base + ` WHERE user_id = ?`
	args := []any{userID}
	if q.StartDate != "" {
		query += ` AND date >= ?`
		args = append(args, q.StartDate)
	}
	if q.EndDate != "" {
		query += ` AND date <= ?`
		args = append(args, q.EndDate)
	}
	query += ` ORDER BY date DESC`
	if q.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, q.Limit, q.Offset)
	}
	return query, args
}
