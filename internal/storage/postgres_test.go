package storage

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/sleepwell/internal"
)

// newMockPostgres binds the store as "pgx" so placeholders are rebound to $n.
func newMockPostgres(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLStore(sqlx.NewDb(db, "pgx"), DialectPostgres, internal.NewNopLogger()), mock
}

func TestPostgres_CreateUser(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (email, password_hash, name, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`)).
		WithArgs("a@example.com", "hash", "Ann", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	u := &internal.User{Email: "a@example.com", PasswordHash: "hash", Name: "Ann"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	assert.Equal(t, int64(42), u.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UniqueViolationMapsToConflict(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO sleep_logs`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	l := &internal.SleepLog{UserID: 1, Date: "2024-03-10", Bedtime: time.Now(), WakeTime: time.Now(), Quality: 3}
	err := s.CreateSleepLog(context.Background(), l)
	assert.ErrorIs(t, err, ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DeleteScopedToOwner(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM diary_entries WHERE user_id = $1 AND id = $2`)).
		WithArgs(int64(7), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeleteDiaryEntry(context.Background(), 7, 3)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListSleepLogsPaging(t *testing.T) {
	s, mock := newMockPostgres(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM sleep_logs WHERE user_id = $1 AND date >= $2 ORDER BY date DESC LIMIT $3 OFFSET $4`)).
		WithArgs(int64(1), "2024-03-01", 10, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "date", "bedtime", "wake_time", "duration_minutes", "quality", "interruptions", "notes", "created_at", "updated_at"}).
			AddRow(int64(5), int64(1), "2024-03-02", "2024-03-01T23:00:00-05:00", "2024-03-02T07:00:00-05:00", 480, 4, 1, nil, now, now))

	logs, err := s.ListSleepLogs(context.Background(), 1, ListQuery{StartDate: "2024-03-01", Limit: 10, Offset: 20})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 480, logs[0].DurationMinutes)
	assert.Equal(t, 23, logs[0].Bedtime.Hour())
	assert.Nil(t, logs[0].Notes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ReplaceInsightsRollsBack(t *testing.T) {
	s, mock := newMockPostgres(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM insights WHERE user_id = $1`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO insights`)).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := s.ReplaceInsights(context.Background(), 1, []internal.Insight{
		{Type: internal.InsightSleepDebt, Title: "t", Content: "c", GeneratedAt: now, ExpiresAt: now.Add(time.Hour)},
	})
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_LastGeneratedAtNone(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT generated_at FROM insights WHERE user_id = $1`)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"generated_at"}))

	at, err := s.LastGeneratedAt(context.Background(), 9)
	require.NoError(t, err)
	assert.Nil(t, at)
	require.NoError(t, mock.ExpectationsWereMet())
}
