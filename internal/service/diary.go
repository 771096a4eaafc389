package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/yourname/sleepwell/internal"
	"github.com/yourname/sleepwell/internal/storage"
)

type CreateDiaryEntryRequest struct {
	Date        string   `json:"date" validate:"required,datetime=2006-01-02"`
	Mood        int      `json:"mood" validate:"required,gte=1,lte=5"`
	Energy      int      `json:"energy" validate:"required,gte=1,lte=5"`
	Activities  []string `json:"activities" validate:"max=20,dive,max=50"`
	DietNotes   *string  `json:"diet_notes,omitempty" validate:"omitempty,max=500"`
	JournalText *string  `json:"journal_text,omitempty" validate:"omitempty,max=5000"`
}

type UpdateDiaryEntryRequest struct {
	Date        *string          `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Mood        *int             `json:"mood,omitempty" validate:"omitempty,gte=1,lte=5"`
	Energy      *int             `json:"energy,omitempty" validate:"omitempty,gte=1,lte=5"`
	Activities  *[]string        `json:"activities,omitempty" validate:"omitempty,max=20,dive,max=50"`
	DietNotes   Nullable[string] `json:"diet_notes" validate:"omitempty,max=500"`
	JournalText Nullable[string] `json:"journal_text" validate:"omitempty,max=5000"`
}

type ActivityCount struct {
	Activity string `json:"activity"`
	Count    int    `json:"count"`
}

type DiaryStats struct {
	Count         int             `json:"count"`
	AvgMood       float64         `json:"avg_mood"`
	AvgEnergy     float64         `json:"avg_energy"`
	TopActivities []ActivityCount `json:"top_activities"`
}

type DiaryService struct {
	repo   storage.DiaryRepository
	logger internal.Logger
}

func NewDiaryService(repo storage.DiaryRepository, logger internal.Logger) *DiaryService {
	return &DiaryService{repo: repo, logger: logger}
}

// NormalizeActivities trims tags, drops empty ones and removes repeats,
// keeping first-seen order.
func NormalizeActivities(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

func (s *DiaryService) Create(ctx context.Context, userID int64, req *CreateDiaryEntryRequest) (*internal.DiaryEntry, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	entry := &internal.DiaryEntry{
		UserID:      userID,
		Date:        req.Date,
		Mood:        req.Mood,
		Energy:      req.Energy,
		Activities:  NormalizeActivities(req.Activities),
		DietNotes:   req.DietNotes,
		JournalText: req.JournalText,
	}
	if err := s.repo.CreateDiaryEntry(ctx, entry); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, internal.Conflict("A diary entry already exists for this date")
		}
		return nil, err
	}
	s.logger.Infof("diary entry %d created for user %d on %s", entry.ID, userID, entry.Date)
	return entry, nil
}

func (s *DiaryService) Get(ctx context.Context, userID, id int64) (*internal.DiaryEntry, error) {
	entry, err := s.repo.GetDiaryEntry(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, internal.NotFound("Diary entry")
	}
	return entry, err
}

func (s *DiaryService) List(ctx context.Context, userID int64, p ListParams) ([]internal.DiaryEntry, error) {
	if err := Validate(&p); err != nil {
		return nil, err
	}
	return s.repo.ListDiaryEntries(ctx, userID, p.query())
}

func (s *DiaryService) Update(ctx context.Context, userID, id int64, req *UpdateDiaryEntryRequest) (*internal.DiaryEntry, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	entry, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		entry.Date = *req.Date
	}
	if req.Mood != nil {
		entry.Mood = *req.Mood
	}
	if req.Energy != nil {
		entry.Energy = *req.Energy
	}
	if req.Activities != nil {
		entry.Activities = NormalizeActivities(*req.Activities)
	}
	if req.DietNotes.Set {
		entry.DietNotes = req.DietNotes.Value
	}
	if req.JournalText.Set {
		entry.JournalText = req.JournalText.Value
	}

	if err := s.repo.UpdateDiaryEntry(ctx, entry); err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			return nil, internal.Conflict("A diary entry already exists for this date")
		case errors.Is(err, storage.ErrNotFound):
			return nil, internal.NotFound("Diary entry")
		}
		return nil, err
	}
	return entry, nil
}

func (s *DiaryService) Delete(ctx context.Context, userID, id int64) error {
	err := s.repo.DeleteDiaryEntry(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return internal.NotFound("Diary entry")
	}
	return err
}

func (s *DiaryService) Stats(ctx context.Context, userID int64, p StatsParams) (*DiaryStats, error) {
	if err := Validate(&p); err != nil {
		return nil, err
	}
	entries, err := s.repo.ListDiaryEntries(ctx, userID, storage.ListQuery{StartDate: p.StartDate, EndDate: p.EndDate})
	if err != nil {
		return nil, err
	}
	return ComputeDiaryStats(entries), nil
}

// ComputeDiaryStats returns nil for no entries. Top activities are the
// five most frequent, ties broken by name.
func ComputeDiaryStats(entries []internal.DiaryEntry) *DiaryStats {
	if len(entries) == 0 {
		return nil
	}
	var mood, energy int
	counts := map[string]int{}
	for _, e := range entries {
		mood += e.Mood
		energy += e.Energy
		for _, a := range e.Activities {
			counts[a]++
		}
	}

	top := make([]ActivityCount, 0, len(counts))
	for a, c := range counts {
		top = append(top, ActivityCount{Activity: a, Count: c})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Activity < top[j].Activity
	})
	if len(top) > 5 {
		top = top[:5]
	}

	n := float64(len(entries))
	return &DiaryStats{
		Count:         len(entries),
		AvgMood:       roundHalfUp(float64(mood)/n, 1),
		AvgEnergy:     roundHalfUp(float64(energy)/n, 1),
		TopActivities: top,
	}
}
