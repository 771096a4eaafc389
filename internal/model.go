package internal

import "time"

// DateLayout is the calendar-day format used for log and entry dates.
const DateLayout = "2006-01-02"

type User struct {
	ID           int64      `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Name         string     `json:"name" db:"name"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

type SleepLog struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Date            string    `json:"date"`
	Bedtime         time.Time `json:"bedtime"`
	WakeTime        time.Time `json:"wake_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Quality         int       `json:"quality"` // 1–5 scale
	Interruptions   int       `json:"interruptions"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type DiaryEntry struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Date        string    `json:"date"`
	Mood        int       `json:"mood"`   // 1–5 scale
	Energy      int       `json:"energy"` // 1–5 scale
	Activities  []string  `json:"activities"`
	DietNotes   *string   `json:"diet_notes"`
	JournalText *string   `json:"journal_text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type InsightType string

const (
	InsightSleepDebt   InsightType = "sleep_debt"
	InsightConsistency InsightType = "consistency"
	InsightCorrelation InsightType = "correlation"
)

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DataSnapshot records which data an insight was generated from.
type DataSnapshot struct {
	SleepLogCount   int       `json:"sleep_log_count"`
	DiaryEntryCount int       `json:"diary_entry_count"`
	DateRange       DateRange `json:"date_range"`
}

type Insight struct {
	ID           int64         `json:"id"`
	UserID       int64         `json:"user_id"`
	Type         InsightType   `json:"type"`
	Title        string        `json:"title"`
	Content      string        `json:"content"`
	DataSnapshot *DataSnapshot `json:"data_snapshot"`
	GeneratedAt  time.Time     `json:"generated_at"`
	ExpiresAt    time.Time     `json:"expires_at"`
	CreatedAt    time.Time     `json:"created_at"`
}
