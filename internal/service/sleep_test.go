package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/sleepwell/internal"
)

func newSleepService(t *testing.T) (*SleepService, int64, int64) {
	t.Helper()
	store := newStore(t)
	alice := seedUser(t, store, "alice@example.com")
	bob := seedUser(t, store, "bob@example.com")
	return NewSleepService(store, internal.NewNopLogger()), alice, bob
}

func TestSleepService_CreateComputesDuration(t *testing.T) {
	svc, alice, _ := newSleepService(t)
	ctx := context.Background()

	log, err := svc.Create(ctx, alice, &CreateSleepLogRequest{
		Date:          "2024-03-01",
		Bedtime:       "2024-03-01T23:15:00-05:00",
		WakeTime:      "2024-03-02T07:00:00-05:00",
		Quality:       4,
		Interruptions: 2,
		Notes:         strPtr("woke up once"),
	})
	require.NoError(t, err)
	assert.NotZero(t, log.ID)
	assert.Equal(t, 465, log.DurationMinutes)

	got, err := svc.Get(ctx, alice, log.ID)
	require.NoError(t, err)
	assert.Equal(t, 465, got.DurationMinutes)
	assert.True(t, got.Bedtime.Equal(log.Bedtime))
	require.NotNil(t, got.Notes)
	assert.Equal(t, "woke up once", *got.Notes)
}

func TestSleepService_CreateRejectsWakeBeforeBed(t *testing.T) {
	svc, alice, _ := newSleepService(t)

	_, err := svc.Create(context.Background(), alice, &CreateSleepLogRequest{
		Date:     "2024-03-01",
		Bedtime:  "2024-03-02T07:00:00Z",
		WakeTime: "2024-03-02T07:00:00Z",
		Quality:  3,
	})
	appErr := requireAppError(t, err, http.StatusBadRequest)
	require.Len(t, appErr.Details, 1)
	assert.Equal(t, "wake_time", appErr.Details[0].Field)
	assert.Equal(t, "Wake time must be after bedtime", appErr.Details[0].Message)
}

func TestSleepService_CreateValidation(t *testing.T) {
	svc, alice, _ := newSleepService(t)

	_, err := svc.Create(context.Background(), alice, &CreateSleepLogRequest{
		Date:     "03/01/2024",
		Bedtime:  "last night",
		WakeTime: "2024-03-02T07:00:00Z",
		Quality:  6,
	})
	fields := map[string]string{}
	for _, fe := range FieldErrors(err) {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "Date must be in YYYY-MM-DD format", fields["date"])
	assert.Equal(t, "bedtime must be an ISO 8601 timestamp", fields["bedtime"])
	assert.Equal(t, "quality must be at most 5", fields["quality"])
}

func TestSleepService_OnePerDate(t *testing.T) {
	svc, alice, bob := newSleepService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, alice, sleepReq("2024-03-01", 3))
	require.NoError(t, err)
	_, err = svc.Create(ctx, alice, sleepReq("2024-03-01", 4))
	appErr := requireAppError(t, err, http.StatusConflict)
	assert.Equal(t, "A sleep log already exists for this date", appErr.Message)

	// Another user may log the same date.
	_, err = svc.Create(ctx, bob, sleepReq("2024-03-01", 4))
	require.NoError(t, err)
}

func TestSleepService_Ownership(t *testing.T) {
	svc, alice, bob := newSleepService(t)
	ctx := context.Background()

	log, err := svc.Create(ctx, alice, sleepReq("2024-03-01", 3))
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob, log.ID)
	appErr := requireAppError(t, err, http.StatusNotFound)
	assert.Equal(t, "Sleep log not found", appErr.Message)

	_, err = svc.Update(ctx, bob, log.ID, &UpdateSleepLogRequest{Quality: intPtr(1)})
	requireAppError(t, err, http.StatusNotFound)
	requireAppError(t, svc.Delete(ctx, bob, log.ID), http.StatusNotFound)

	require.NoError(t, svc.Delete(ctx, alice, log.ID))
	requireAppError(t, svc.Delete(ctx, alice, log.ID), http.StatusNotFound)
}

func TestSleepService_UpdatePartial(t *testing.T) {
	svc, alice, _ := newSleepService(t)
	ctx := context.Background()

	req := sleepReq("2024-03-01", 3)
	req.Notes = strPtr("restless")
	log, err := svc.Create(ctx, alice, req)
	require.NoError(t, err)
	require.Equal(t, 480, log.DurationMinutes)

	var upd UpdateSleepLogRequest
	require.NoError(t, json.Unmarshal([]byte(`{"wake_time":"2024-03-02T06:30:00Z","notes":null}`), &upd))
	got, err := svc.Update(ctx, alice, log.ID, &upd)
	require.NoError(t, err)
	assert.Equal(t, 450, got.DurationMinutes)
	assert.Equal(t, 3, got.Quality)
	assert.Nil(t, got.Notes)

	// Omitted notes stay as they are.
	_, err = svc.Update(ctx, alice, log.ID, &UpdateSleepLogRequest{Notes: Nullable[string]{Set: true, Value: strPtr("better")}})
	require.NoError(t, err)
	got, err = svc.Update(ctx, alice, log.ID, &UpdateSleepLogRequest{Quality: intPtr(5)})
	require.NoError(t, err)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "better", *got.Notes)
	assert.Equal(t, 5, got.Quality)

	_, err = svc.Update(ctx, alice, log.ID, &UpdateSleepLogRequest{Bedtime: strPtr("2024-03-02T08:00:00Z")})
	requireAppError(t, err, http.StatusBadRequest)
}

func TestSleepService_UpdateDateConflict(t *testing.T) {
	svc, alice, _ := newSleepService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, alice, sleepReq("2024-03-01", 3))
	require.NoError(t, err)
	second, err := svc.Create(ctx, alice, sleepReq("2024-03-02", 3))
	require.NoError(t, err)

	_, err = svc.Update(ctx, alice, second.ID, &UpdateSleepLogRequest{Date: strPtr("2024-03-01")})
	requireAppError(t, err, http.StatusConflict)
}

func TestSleepService_List(t *testing.T) {
	svc, alice, _ := newSleepService(t)
	ctx := context.Background()
	for _, d := range []string{"2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04"} {
		_, err := svc.Create(ctx, alice, sleepReq(d, 3))
		require.NoError(t, err)
	}

	logs, err := svc.List(ctx, alice, ListParams{})
	require.NoError(t, err)
	require.Len(t, logs, 4)
	assert.Equal(t, "2024-03-04", logs[0].Date)

	logs, err = svc.List(ctx, alice, ListParams{StartDate: "2024-03-02", EndDate: "2024-03-03"})
	require.NoError(t, err)
	require.Len(t, logs, 2)

	logs, err = svc.List(ctx, alice, ListParams{Limit: intPtr(2), Offset: 1})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "2024-03-03", logs[0].Date)

	_, err = svc.List(ctx, alice, ListParams{Limit: intPtr(0)})
	assert.NotEmpty(t, FieldErrors(err))
	_, err = svc.List(ctx, alice, ListParams{Limit: intPtr(101)})
	assert.NotEmpty(t, FieldErrors(err))
}

func TestSleepService_Stats(t *testing.T) {
	svc, alice, _ := newSleepService(t)
	ctx := context.Background()

	req := sleepReq("2024-03-01", 4)
	req.Bedtime = "2024-03-01T23:15:00Z"
	req.Interruptions = 1
	_, err := svc.Create(ctx, alice, req)
	require.NoError(t, err)
	req = sleepReq("2024-03-02", 3)
	req.Interruptions = 2
	_, err = svc.Create(ctx, alice, req)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, alice, StatsParams{StartDate: "2024-03-01", EndDate: "2024-03-31"})
	require.NoError(t, err)
	assert.Equal(t, &SleepStats{
		Count:              2,
		AvgDurationMinutes: 473,
		AvgDurationHours:   7.9,
		AvgQuality:         3.5,
		TotalInterruptions: 3,
		AvgInterruptions:   1.5,
	}, stats)

	stats, err = svc.Stats(ctx, alice, StatsParams{StartDate: "2024-04-01", EndDate: "2024-04-30"})
	require.NoError(t, err)
	assert.Nil(t, stats)

	_, err = svc.Stats(ctx, alice, StatsParams{StartDate: "2024-04-01"})
	assert.NotEmpty(t, FieldErrors(err))
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("2024-03-01T23:00:00+02:00")
	require.NoError(t, err)
	_, offset := ts.Zone()
	assert.Equal(t, 7200, offset)

	ts, err = ParseTimestamp("2024-03-01T23:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T23:00:00Z", ts.Format("2006-01-02T15:04:05Z07:00"))

	_, err = ParseTimestamp("2024-03-01")
	assert.Error(t, err)
}
