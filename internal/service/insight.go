package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yourname/sleepwell/internal"
	"github.com/yourname/sleepwell/internal/llm"
	"github.com/yourname/sleepwell/internal/metrics"
	"github.com/yourname/sleepwell/internal/storage"
)

const (
	minLogsForInsights       = 3
	minLogsForCorrelation    = 5
	minEntriesForCorrelation = 5

	// nextUpdateInterval is how far after a generation the daily job refreshes insights.
	nextUpdateInterval = 24 * time.Hour
)

var ErrGenerationFailed = errors.New("insights: every generator failed")

type InsightConfig struct {
	Cooldown   time.Duration
	TTL        time.Duration
	WindowDays int
}

type InsightListParams struct {
	Type string `form:"type" validate:"omitempty,oneof=sleep_debt consistency correlation"`
}

type InsightList struct {
	Insights    []internal.Insight
	GeneratedAt *time.Time
	NextUpdate  *time.Time
}

type InsightStatus struct {
	CanGenerate   bool       `json:"can_generate"`
	LastGenerated *time.Time `json:"last_generated"`
	NextAvailable *time.Time `json:"next_available"`
}

type GenerateResult struct {
	InsightCount int    `json:"insight_count"`
	Message      string `json:"message"`
}

// InsightService computes sleep and diary features, asks the LLM for a
// short narrative per insight type and caches the result per user.
type InsightService struct {
	logs     storage.SleepLogRepository
	diary    storage.DiaryRepository
	insights storage.InsightRepository
	llm      llm.Completer
	cfg      InsightConfig
	logger   internal.Logger
	now      func() time.Time
}

func NewInsightService(
	logs storage.SleepLogRepository,
	diary storage.DiaryRepository,
	insights storage.InsightRepository,
	completer llm.Completer,
	cfg InsightConfig,
	logger internal.Logger,
) *InsightService {
	return &InsightService{
		logs:     logs,
		diary:    diary,
		insights: insights,
		llm:      completer,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (s *InsightService) WithClock(now func() time.Time) *InsightService {
	s.now = now
	return s
}

func (s *InsightService) List(ctx context.Context, userID int64, p InsightListParams) (*InsightList, error) {
	if err := Validate(&p); err != nil {
		return nil, err
	}
	insights, err := s.insights.ListInsights(ctx, userID, internal.InsightType(p.Type), s.now())
	if err != nil {
		return nil, err
	}
	last, err := s.insights.LastGeneratedAt(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &InsightList{Insights: insights, GeneratedAt: last}
	if last != nil {
		next := last.Add(nextUpdateInterval)
		out.NextUpdate = &next
	}
	return out, nil
}

// Status reports whether the cooldown since the last generation has passed.
func (s *InsightService) Status(ctx context.Context, userID int64) (*InsightStatus, error) {
	last, err := s.insights.LastGeneratedAt(ctx, userID)
	if err != nil {
		return nil, err
	}
	st := &InsightStatus{CanGenerate: true, LastGenerated: last}
	if last == nil {
		return st, nil
	}
	next := last.Add(s.cfg.Cooldown)
	if s.now().Before(next) {
		st.CanGenerate = false
		st.NextAvailable = &next
	}
	return st, nil
}

// Generate is the on-demand path: it enforces the cooldown, then regenerates.
func (s *InsightService) Generate(ctx context.Context, userID int64) (*GenerateResult, error) {
	st, err := s.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !st.CanGenerate {
		return nil, internal.BadRequest(cooldownMessage(s.cfg.Cooldown))
	}

	n, err := s.GenerateForUser(ctx, userID)
	if errors.Is(err, ErrGenerationFailed) {
		return nil, internal.Internal("Failed to generate insights")
	}
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return &GenerateResult{Message: "Not enough data to generate insights. Please log at least 3 days of sleep data."}, nil
	}
	plural := "s"
	if n == 1 {
		plural = ""
	}
	return &GenerateResult{InsightCount: n, Message: fmt.Sprintf("Successfully generated %d insight%s", n, plural)}, nil
}

func cooldownMessage(d time.Duration) string {
	period := "once every " + d.String()
	if d == time.Hour {
		period = "once per hour"
	}
	return "Please wait before generating new insights. You can generate new insights " + period + "."
}

type generator struct {
	typ internal.InsightType
	run func(ctx context.Context) (title, content string, err error)
}

// GenerateForUser rebuilds the user's insights from the rolling window and
// returns how many were written. With too little data it writes nothing
// and leaves existing insights alone.
func (s *InsightService) GenerateForUser(ctx context.Context, userID int64) (int, error) {
	now := s.now().UTC()
	start := now.AddDate(0, 0, -s.cfg.WindowDays).Format(internal.DateLayout)
	window := storage.ListQuery{StartDate: start}

	logs, err := s.logs.ListSleepLogs(ctx, userID, window)
	if err != nil {
		return 0, fmt.Errorf("insights: load sleep logs: %w", err)
	}
	if len(logs) < minLogsForInsights {
		s.logger.Debugf("insights: user %d has %d sleep logs, skipping", userID, len(logs))
		return 0, nil
	}
	entries, err := s.diary.ListDiaryEntries(ctx, userID, window)
	if err != nil {
		return 0, fmt.Errorf("insights: load diary entries: %w", err)
	}

	snapshot := &internal.DataSnapshot{
		SleepLogCount:   len(logs),
		DiaryEntryCount: len(entries),
		DateRange:       internal.DateRange{Start: start, End: now.Format(internal.DateLayout)},
	}

	var out []internal.Insight
	var lastErr error
	for _, g := range s.generators(logs, entries) {
		title, content, err := g.run(ctx)
		if err != nil {
			s.logger.Errorw("insight generator failed", "user_id", userID, "type", g.typ, "error", err)
			lastErr = err
			continue
		}
		out = append(out, internal.Insight{
			Type:         g.typ,
			Title:        title,
			Content:      content,
			DataSnapshot: snapshot,
			GeneratedAt:  now,
			ExpiresAt:    now.Add(s.cfg.TTL),
		})
	}
	if len(out) == 0 {
		return 0, fmt.Errorf("%w: %v", ErrGenerationFailed, lastErr)
	}

	if err := s.insights.ReplaceInsights(ctx, userID, out); err != nil {
		return 0, fmt.Errorf("insights: store: %w", err)
	}
	for _, in := range out {
		metrics.InsightsGenerated.WithLabelValues(string(in.Type)).Inc()
	}
	s.logger.Infow("insights generated", "user_id", userID, "count", len(out))
	return len(out), nil
}

func (s *InsightService) generators(logs []internal.SleepLog, entries []internal.DiaryEntry) []generator {
	gens := []generator{
		{typ: internal.InsightSleepDebt, run: func(ctx context.Context) (string, string, error) {
			content, err := s.complete(ctx, sleepDebtPrompt(logs))
			return SleepDebtTitle(SleepDebtHours(logs)), content, err
		}},
		{typ: internal.InsightConsistency, run: func(ctx context.Context) (string, string, error) {
			content, err := s.complete(ctx, consistencyPrompt(logs))
			return ConsistencyTitle(BedtimeConsistency(logs)), content, err
		}},
	}
	if len(logs) >= minLogsForCorrelation && len(entries) >= minEntriesForCorrelation {
		gens = append(gens, generator{typ: internal.InsightCorrelation, run: func(ctx context.Context) (string, string, error) {
			correlations := ActivityCorrelations(logs, entries)
			if len(correlations) == 0 {
				return moreDataTitle, moreDataContent, nil
			}
			content, err := s.complete(ctx, correlationPrompt(logs, entries, correlations))
			return correlationTitle, content, err
		}})
	}
	return gens
}

func (s *InsightService) complete(ctx context.Context, messages []llm.Message) (string, error) {
	return s.llm.Complete(ctx, messages, llm.Options{
		MaxTokens:   insightMaxTokens,
		Temperature: insightTemperature,
	})
}
