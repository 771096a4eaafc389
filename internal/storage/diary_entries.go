package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yourname/sleepwell/internal"
)

const diaryColumns = `id, user_id, date, mood, energy, activities, diet_notes, journal_text, created_at, updated_at`

type diaryRow struct {
	ID          int64          `db:"id"`
	UserID      int64          `db:"user_id"`
	Date        string         `db:"date"`
	Mood        int            `db:"mood"`
	Energy      int            `db:"energy"`
	Activities  string         `db:"activities"`
	DietNotes   sql.NullString `db:"diet_notes"`
	JournalText sql.NullString `db:"journal_text"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r diaryRow) toModel() (internal.DiaryEntry, error) {
	activities := []string{}
	if r.Activities != "" {
		if err := json.Unmarshal([]byte(r.Activities), &activities); err != nil {
			return internal.DiaryEntry{}, fmt.Errorf("storage: diary entry %d activities: %w", r.ID, err)
		}
	}
	return internal.DiaryEntry{
		ID:          r.ID,
		UserID:      r.UserID,
		Date:        r.Date,
		Mood:        r.Mood,
		Energy:      r.Energy,
		Activities:  activities,
		DietNotes:   stringPtr(r.DietNotes),
		JournalText: stringPtr(r.JournalText),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

func encodeActivities(a []string) (string, error) {
	if a == nil {
		a = []string{}
	}
	b, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// --- DiaryRepository ---
func (s *SQLStore) CreateDiaryEntry(ctx context.Context, entry *internal.DiaryEntry) error {
	activities, err := encodeActivities(entry.Activities)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	entry.CreatedAt, entry.UpdatedAt = now, now
	err = s.db.QueryRowxContext(ctx,
		s.rebind(`INSERT INTO diary_entries (user_id, date, mood, energy, activities, diet_notes, journal_text, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		entry.UserID, entry.Date, entry.Mood, entry.Energy, activities,
		nullString(entry.DietNotes), nullString(entry.JournalText), now, now,
	).Scan(&entry.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return translate(err)
		}
		s.logger.Errorf("storage: failed to insert diary entry: %v", err)
		return err
	}
	return nil
}

func (s *SQLStore) GetDiaryEntry(ctx context.Context, userID, id int64) (*internal.DiaryEntry, error) {
	return s.getDiaryEntry(ctx, `SELECT `+diaryColumns+` FROM diary_entries WHERE user_id = ? AND id = ?`, userID, id)
}

func (s *SQLStore) GetDiaryEntryByDate(ctx context.Context, userID int64, date string) (*internal.DiaryEntry, error) {
	return s.getDiaryEntry(ctx, `SELECT `+diaryColumns+` FROM diary_entries WHERE user_id = ? AND date = ?`, userID, date)
}

func (s *SQLStore) getDiaryEntry(ctx context.Context, query string, args ...any) (*internal.DiaryEntry, error) {
	var row diaryRow
	if err := s.db.GetContext(ctx, &row, s.rebind(query), args...); err != nil {
		return nil, translate(err)
	}
	e, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLStore) ListDiaryEntries(ctx context.Context, userID int64, q ListQuery) ([]internal.DiaryEntry, error) {
	query, args := listQuery(`SELECT `+diaryColumns+` FROM diary_entries`, userID, q)
	var rows []diaryRow
	if err := s.db.SelectContext(ctx, &rows, s.rebind(query), args...); err != nil {
		s.logger.Errorf("storage: failed to query diary entries: %v", err)
		return nil, err
	}

	entries := make([]internal.DiaryEntry, 0, len(rows))
	for _, r := range rows {
		e, err := r.toModel()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *SQLStore) UpdateDiaryEntry(ctx context.Context, entry *internal.DiaryEntry) error {
	activities, err := encodeActivities(entry.Activities)
	if err != nil {
		return err
	}
	entry.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE diary_entries SET date = ?, mood = ?, energy = ?, activities = ?, diet_notes = ?, journal_text = ?, updated_at = ?
			WHERE user_id = ? AND id = ?`),
		entry.Date, entry.Mood, entry.Energy, activities,
		nullString(entry.DietNotes), nullString(entry.JournalText), entry.UpdatedAt,
		entry.UserID, entry.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return translate(err)
		}
		s.logger.Errorf("storage: failed to update diary entry %d: %v", entry.ID, err)
		return err
	}
	return expectAffected(res)
}

func (s *SQLStore) DeleteDiaryEntry(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM diary_entries WHERE user_id = ? AND id = ?`), userID, id)
	if err != nil {
		s.logger.Errorf("storage: failed to delete diary entry %d: %v", id, err)
		return err
	}
	return expectAffected(res)
}
