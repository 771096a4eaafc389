package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/sleepwell/internal"
	"github.com/yourname/sleepwell/internal/storage"
)

func newStore(t *testing.T) *storage.SQLStore {
	t.Helper()
	s, err := storage.NewMemoryStore(context.Background(), internal.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s storage.UserRepository, email string) int64 {
	t.Helper()
	u := &internal.User{Email: email, PasswordHash: "x", Name: "Sleeper"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u.ID
}

func requireAppError(t *testing.T, err error, status int) *internal.AppError {
	t.Helper()
	var appErr *internal.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, status, appErr.Status)
	return appErr
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// sleepReq is an eight hour night starting at 23:00 UTC on date.
func sleepReq(date string, quality int) *CreateSleepLogRequest {
	day, _ := time.Parse(internal.DateLayout, date)
	return &CreateSleepLogRequest{
		Date:     date,
		Bedtime:  date + "T23:00:00Z",
		WakeTime: day.AddDate(0, 0, 1).Format(internal.DateLayout) + "T07:00:00Z",
		Quality:  quality,
	}
}
