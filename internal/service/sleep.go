package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/yourname/sleepwell/internal"
	"github.com/yourname/sleepwell/internal/storage"
)

const (
	DefaultListLimit = 30
	MaxListLimit     = 100
)

type CreateSleepLogRequest struct {
	Date          string  `json:"date" validate:"required,datetime=2006-01-02"`
	Bedtime       string  `json:"bedtime" validate:"required,timestamp"`
	WakeTime      string  `json:"wake_time" validate:"required,timestamp"`
	Quality       int     `json:"quality" validate:"required,gte=1,lte=5"`
	Interruptions int     `json:"interruptions" validate:"gte=0,lte=20"`
	Notes         *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// UpdateSleepLogRequest is a partial update; nil fields are left unchanged.
type UpdateSleepLogRequest struct {
	Date          *string          `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Bedtime       *string          `json:"bedtime,omitempty" validate:"omitempty,timestamp"`
	WakeTime      *string          `json:"wake_time,omitempty" validate:"omitempty,timestamp"`
	Quality       *int             `json:"quality,omitempty" validate:"omitempty,gte=1,lte=5"`
	Interruptions *int             `json:"interruptions,omitempty" validate:"omitempty,gte=0,lte=20"`
	Notes         Nullable[string] `json:"notes" validate:"omitempty,max=1000"`
}

// ListParams is the shared query contract of the list endpoints.
type ListParams struct {
	StartDate string `form:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Limit     *int   `form:"limit" validate:"omitempty,gte=1,lte=100"`
	Offset    int    `form:"offset" validate:"gte=0"`
}

func (p ListParams) query() storage.ListQuery {
	limit := DefaultListLimit
	if p.Limit != nil {
		limit = *p.Limit
	}
	return storage.ListQuery{StartDate: p.StartDate, EndDate: p.EndDate, Limit: limit, Offset: p.Offset}
}

type StatsParams struct {
	StartDate string `form:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `form:"end_date" validate:"required,datetime=2006-01-02"`
}

type SleepStats struct {
	Count              int     `json:"count"`
	AvgDurationMinutes int     `json:"avg_duration_minutes"`
	AvgDurationHours   float64 `json:"avg_duration_hours"`
	AvgQuality         float64 `json:"avg_quality"`
	TotalInterruptions int     `json:"total_interruptions"`
	AvgInterruptions   float64 `json:"avg_interruptions"`
}

type SleepService struct {
	repo   storage.SleepLogRepository
	logger internal.Logger
}

func NewSleepService(repo storage.SleepLogRepository, logger internal.Logger) *SleepService {
	return &SleepService{repo: repo, logger: logger}
}

// DurationMinutes is wake minus bed, rounded to the nearest minute.
func DurationMinutes(bedtime, wakeTime time.Time) int {
	return int(math.Round(wakeTime.Sub(bedtime).Minutes()))
}

func (s *SleepService) Create(ctx context.Context, userID int64, req *CreateSleepLogRequest) (*internal.SleepLog, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	bed, _ := ParseTimestamp(req.Bedtime)
	wake, _ := ParseTimestamp(req.WakeTime)
	if !wake.After(bed) {
		return nil, invalidField("wake_time", "Wake time must be after bedtime")
	}

	log := &internal.SleepLog{
		UserID:          userID,
		Date:            req.Date,
		Bedtime:         bed,
		WakeTime:        wake,
		DurationMinutes: DurationMinutes(bed, wake),
		Quality:         req.Quality,
		Interruptions:   req.Interruptions,
		Notes:           req.Notes,
	}
	if err := s.repo.CreateSleepLog(ctx, log); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, internal.Conflict("A sleep log already exists for this date")
		}
		return nil, err
	}
	s.logger.Infof("sleep log %d created for user %d on %s", log.ID, userID, log.Date)
	return log, nil
}

func (s *SleepService) Get(ctx context.Context, userID, id int64) (*internal.SleepLog, error) {
	log, err := s.repo.GetSleepLog(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, internal.NotFound("Sleep log")
	}
	return log, err
}

func (s *SleepService) List(ctx context.Context, userID int64, p ListParams) ([]internal.SleepLog, error) {
	if err := Validate(&p); err != nil {
		return nil, err
	}
	return s.repo.ListSleepLogs(ctx, userID, p.query())
}

// Update applies the set fields and recomputes the duration when either
// timestamp changed.
func (s *SleepService) Update(ctx context.Context, userID, id int64, req *UpdateSleepLogRequest) (*internal.SleepLog, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	log, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		log.Date = *req.Date
	}
	if req.Bedtime != nil || req.WakeTime != nil {
		if req.Bedtime != nil {
			log.Bedtime, _ = ParseTimestamp(*req.Bedtime)
		}
		if req.WakeTime != nil {
			log.WakeTime, _ = ParseTimestamp(*req.WakeTime)
		}
		if !log.WakeTime.After(log.Bedtime) {
			return nil, invalidField("wake_time", "Wake time must be after bedtime")
		}
		log.DurationMinutes = DurationMinutes(log.Bedtime, log.WakeTime)
	}
	if req.Quality != nil {
		log.Quality = *req.Quality
	}
	if req.Interruptions != nil {
		log.Interruptions = *req.Interruptions
	}
	if req.Notes.Set {
		log.Notes = req.Notes.Value
	}

	if err := s.repo.UpdateSleepLog(ctx, log); err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			return nil, internal.Conflict("A sleep log already exists for this date")
		case errors.Is(err, storage.ErrNotFound):
			return nil, internal.NotFound("Sleep log")
		}
		return nil, err
	}
	return log, nil
}

func (s *SleepService) Delete(ctx context.Context, userID, id int64) error {
	err := s.repo.DeleteSleepLog(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return internal.NotFound("Sleep log")
	}
	return err
}

// Stats summarises the logs dated within [start, end]. It returns nil
// when there are none.
func (s *SleepService) Stats(ctx context.Context, userID int64, p StatsParams) (*SleepStats, error) {
	if err := Validate(&p); err != nil {
		return nil, err
	}
	logs, err := s.repo.ListSleepLogs(ctx, userID, storage.ListQuery{StartDate: p.StartDate, EndDate: p.EndDate})
	if err != nil {
		return nil, err
	}
	return ComputeSleepStats(logs), nil
}

func ComputeSleepStats(logs []internal.SleepLog) *SleepStats {
	if len(logs) == 0 {
		return nil
	}
	var duration, quality, interruptions int
	for _, l := range logs {
		duration += l.DurationMinutes
		quality += l.Quality
		interruptions += l.Interruptions
	}
	n := float64(len(logs))
	avgDuration := int(roundHalfUp(float64(duration)/n, 0))
	return &SleepStats{
		Count:              len(logs),
		AvgDurationMinutes: avgDuration,
		AvgDurationHours:   roundHalfUp(float64(avgDuration)/60, 1),
		AvgQuality:         roundHalfUp(float64(quality)/n, 1),
		TotalInterruptions: interruptions,
		AvgInterruptions:   roundHalfUp(float64(interruptions)/n, 1),
	}
}
