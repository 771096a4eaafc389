package storage

import (
	"context"
	"errors"
	"time"

	"github.com/yourname/sleepwell/internal"
)

var (
	ErrNotFound = errors.New("storage: not found")
	ErrConflict = errors.New("storage: unique constraint violated")
)

// ListQuery narrows a per-user listing by inclusive date range and page.
type ListQuery struct {
	StartDate string
	EndDate   string
	Limit     int
	Offset    int
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *internal.User) error
	GetUser(ctx context.Context, id int64) (*internal.User, error)
	GetUserByEmail(ctx context.Context, email string) (*internal.User, error)
	UpdateUser(ctx context.Context, user *internal.User) error
	TouchLogin(ctx context.Context, id int64, at time.Time) error
	DeleteUser(ctx context.Context, id int64) error
	ListActiveUserIDs(ctx context.Context, since time.Time) ([]int64, error)
}

type SleepLogRepository interface {
	CreateSleepLog(ctx context.Context, log *internal.SleepLog) error
	GetSleepLog(ctx context.Context, userID, id int64) (*internal.SleepLog, error)
	GetSleepLogByDate(ctx context.Context, userID int64, date string) (*internal.SleepLog, error)
	ListSleepLogs(ctx context.Context, userID int64, q ListQuery) ([]internal.SleepLog, error)
	UpdateSleepLog(ctx context.Context, log *internal.SleepLog) error
	DeleteSleepLog(ctx context.Context, userID, id int64) error
}

type DiaryRepository interface {
	CreateDiaryEntry(ctx context.Context, entry *internal.DiaryEntry) error
	GetDiaryEntry(ctx context.Context, userID, id int64) (*internal.DiaryEntry, error)
	GetDiaryEntryByDate(ctx context.Context, userID int64, date string) (*internal.DiaryEntry, error)
	ListDiaryEntries(ctx context.Context, userID int64, q ListQuery) ([]internal.DiaryEntry, error)
	UpdateDiaryEntry(ctx context.Context, entry *internal.DiaryEntry) error
	DeleteDiaryEntry(ctx context.Context, userID, id int64) error
}

type InsightRepository interface {
	// ListInsights returns insights that have not expired at now, newest first.
	ListInsights(ctx context.Context, userID int64, typ internal.InsightType, now time.Time) ([]internal.Insight, error)
	LastGeneratedAt(ctx context.Context, userID int64) (*time.Time, error)
	// ReplaceInsights deletes all of the user's insights and inserts the given ones atomically.
	ReplaceInsights(ctx context.Context, userID int64, insights []internal.Insight) error
	DeleteExpiredInsights(ctx context.Context, now time.Time) (int64, error)
}

// Store is the full persistence surface used by the server.
type Store interface {
	UserRepository
	SleepLogRepository
	DiaryRepository
	InsightRepository
	Migrate(ctx context.Context) error
	Close() error
}
