package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/sleepwell/internal"
)

func setupStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := NewMemoryStore(context.Background(), internal.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createUser(t *testing.T, s *SQLStore, email string) *internal.User {
	t.Helper()
	u := &internal.User{Email: email, PasswordHash: "hash", Name: "Test User"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func sleepLogFor(userID int64, date string) *internal.SleepLog {
	loc := time.FixedZone("UTC-5", -5*3600)
	d, _ := time.ParseInLocation(internal.DateLayout, date, loc)
	bed := d.Add(-90 * time.Minute)
	wake := d.Add(6*time.Hour + 30*time.Minute)
	return &internal.SleepLog{
		UserID:          userID,
		Date:            date,
		Bedtime:         bed,
		WakeTime:        wake,
		DurationMinutes: 480,
		Quality:         4,
	}
}

func TestUsers_CreateGetAndConflict(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	u := createUser(t, s, "a@example.com")
	assert.NotZero(t, u.ID)

	got, err := s.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Nil(t, got.LastLoginAt)

	err = s.CreateUser(ctx, &internal.User{Email: "a@example.com", PasswordHash: "x", Name: "Dup"})
	assert.True(t, errors.Is(err, ErrConflict))

	_, err = s.GetUser(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsers_TouchLoginAndActive(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	u := createUser(t, s, "b@example.com")

	at := time.Now().Add(-time.Minute)
	require.NoError(t, s.TouchLogin(ctx, u.ID, at))
	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.WithinDuration(t, at, *got.LastLoginAt, time.Second)

	ids, err := s.ListActiveUserIDs(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []int64{u.ID}, ids)

	ids, err = s.ListActiveUserIDs(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSleepLogs_CRUD(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	u := createUser(t, s, "c@example.com")

	note := "slept well"
	l := sleepLogFor(u.ID, "2024-03-10")
	l.Notes = &note
	require.NoError(t, s.CreateSleepLog(ctx, l))
	assert.NotZero(t, l.ID)

	got, err := s.GetSleepLog(ctx, u.ID, l.ID)
	require.NoError(t, err)
	assert.True(t, l.Bedtime.Equal(got.Bedtime))
	_, offset := got.Bedtime.Zone()
	assert.Equal(t, -5*3600, offset)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "slept well", *got.Notes)

	byDate, err := s.GetSleepLogByDate(ctx, u.ID, "2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, l.ID, byDate.ID)

	got.Quality = 2
	got.Notes = nil
	require.NoError(t, s.UpdateSleepLog(ctx, got))
	again, err := s.GetSleepLog(ctx, u.ID, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Quality)
	assert.Nil(t, again.Notes)

	require.NoError(t, s.DeleteSleepLog(ctx, u.ID, l.ID))
	assert.ErrorIs(t, s.DeleteSleepLog(ctx, u.ID, l.ID), ErrNotFound)
}

func TestSleepLogs_OneLogPerDate(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	u := createUser(t, s, "d@example.com")
	other := createUser(t, s, "e@example.com")

	require.NoError(t, s.CreateSleepLog(ctx, sleepLogFor(u.ID, "2024-03-10")))
	assert.ErrorIs(t, s.CreateSleepLog(ctx, sleepLogFor(u.ID, "2024-03-10")), ErrConflict)
	require.NoError(t, s.CreateSleepLog(ctx, sleepLogFor(other.ID, "2024-03-10")))

	second := sleepLogFor(u.ID, "2024-03-11")
	require.NoError(t, s.CreateSleepLog(ctx, second))
	second.Date = "2024-03-10"
	assert.ErrorIs(t, s.UpdateSleepLog(ctx, second), ErrConflict)
}

func TestSleepLogs_OwnershipAndListing(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	u := createUser(t, s, "f@example.com")
	intruder := createUser(t, s, "g@example.com")

	for _, d := range []string{"2024-03-01", "2024-03-03", "2024-03-02", "2024-03-05"} {
		require.NoError(t, s.CreateSleepLog(ctx, sleepLogFor(u.ID, d)))
	}

	logs, err := s.ListSleepLogs(ctx, u.ID, ListQuery{})
	require.NoError(t, err)
	require.Len(t, logs, 4)
	assert.Equal(t, "2024-03-05", logs[0].Date)
	assert.Equal(t, "2024-03-01", logs[3].Date)

	logs, err = s.ListSleepLogs(ctx, u.ID, ListQuery{StartDate: "2024-03-02", EndDate: "2024-03-03"})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "2024-03-03", logs[0].Date)

	logs, err = s.ListSleepLogs(ctx, u.ID, ListQuery{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "2024-03-03", logs[0].Date)

	_, err = s.GetSleepLog(ctx, intruder.ID, logs[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteSleepLog(ctx, intruder.ID, logs[0].ID), ErrNotFound)

	empty, err := s.ListSleepLogs(ctx, intruder.ID, ListQuery{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestDiaryEntries_ActivitiesRoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	u := createUser(t, s, "h@example.com")

	e := &internal.DiaryEntry{UserID: u.ID, Date: "2024-03-10", Mood: 4, Energy: 3, Activities: []string{"exercise", "reading"}}
	require.NoError(t, s.CreateDiaryEntry(ctx, e))

	got, err := s.GetDiaryEntryByDate(ctx, u.ID, "2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"exercise", "reading"}, got.Activities)
	assert.Nil(t, got.DietNotes)

	bare := &internal.DiaryEntry{UserID: u.ID, Date: "2024-03-11", Mood: 2, Energy: 2}
	require.NoError(t, s.CreateDiaryEntry(ctx, bare))
	got, err = s.GetDiaryEntry(ctx, u.ID, bare.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Activities)
	assert.Empty(t, got.Activities)

	assert.ErrorIs(t, s.CreateDiaryEntry(ctx, &internal.DiaryEntry{UserID: u.ID, Date: "2024-03-10", Mood: 1, Energy: 1}), ErrConflict)

	entries, err := s.ListDiaryEntries(ctx, u.ID, ListQuery{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2024-03-11", entries[0].Date)
}

func TestInsights_ReplaceListAndExpire(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	u := createUser(t, s, "i@example.com")
	now := time.Now().UTC().Truncate(time.Second)

	last, err := s.LastGeneratedAt(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, last)

	snap := &internal.DataSnapshot{SleepLogCount: 3, DateRange: internal.DateRange{Start: "2024-03-01", End: "2024-03-03"}}
	first := []internal.Insight{
		{Type: internal.InsightSleepDebt, Title: "Mild Sleep Debt", Content: "a", DataSnapshot: snap, GeneratedAt: now, ExpiresAt: now.Add(24 * time.Hour)},
		{Type: internal.InsightConsistency, Title: "Good Sleep Routine", Content: "b", GeneratedAt: now, ExpiresAt: now.Add(24 * time.Hour)},
	}
	require.NoError(t, s.ReplaceInsights(ctx, u.ID, first))
	assert.NotZero(t, first[0].ID)

	list, err := s.ListInsights(ctx, u.ID, "", now)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].DataSnapshot)
	assert.Equal(t, 3, list[0].DataSnapshot.SleepLogCount)

	list, err = s.ListInsights(ctx, u.ID, internal.InsightConsistency, now)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Good Sleep Routine", list[0].Title)

	later := now.Add(time.Hour)
	second := []internal.Insight{
		{Type: internal.InsightSleepDebt, Title: "Great Sleep Balance!", Content: "c", GeneratedAt: later, ExpiresAt: later.Add(24 * time.Hour)},
	}
	require.NoError(t, s.ReplaceInsights(ctx, u.ID, second))
	list, err = s.ListInsights(ctx, u.ID, "", now)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Great Sleep Balance!", list[0].Title)

	last, err = s.LastGeneratedAt(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, later.Equal(*last))

	list, err = s.ListInsights(ctx, u.ID, "", later.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, list)

	n, err := s.DeleteExpiredInsights(ctx, later.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDeleteUser_Cascades(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	u := createUser(t, s, "j@example.com")
	now := time.Now().UTC()

	require.NoError(t, s.CreateSleepLog(ctx, sleepLogFor(u.ID, "2024-03-10")))
	require.NoError(t, s.CreateDiaryEntry(ctx, &internal.DiaryEntry{UserID: u.ID, Date: "2024-03-10", Mood: 3, Energy: 3}))
	require.NoError(t, s.ReplaceInsights(ctx, u.ID, []internal.Insight{
		{Type: internal.InsightSleepDebt, Title: "t", Content: "c", GeneratedAt: now, ExpiresAt: now.Add(time.Hour)},
	}))

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	assert.ErrorIs(t, s.DeleteUser(ctx, u.ID), ErrNotFound)

	logs, err := s.ListSleepLogs(ctx, u.ID, ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, logs)
	entries, err := s.ListDiaryEntries(ctx, u.ID, ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, entries)
	insights, err := s.ListInsights(ctx, u.ID, "", now)
	require.NoError(t, err)
	assert.Empty(t, insights)
}
