package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/yourname/sleepwell/internal"
	"github.com/yourname/sleepwell/internal/metrics"
)

// activeWindow bounds which users the batch considers.
const activeWindow = 30 * 24 * time.Hour

// BatchStore is the storage the batch needs beyond per-user generation.
type BatchStore interface {
	ListActiveUserIDs(ctx context.Context, since time.Time) ([]int64, error)
	DeleteExpiredInsights(ctx context.Context, now time.Time) (int64, error)
}

type UserInsightGenerator interface {
	GenerateForUser(ctx context.Context, userID int64) (int, error)
}

type BatchResult struct {
	Users     int
	Succeeded int
	Skipped   int
	Failed    int
	Insights  int
	Purged    int64
}

// InsightGenerator refreshes insights for recently active users on a cron
// schedule. Batches never overlap.
type InsightGenerator struct {
	store  BatchStore
	gen    UserInsightGenerator
	logger internal.Logger
	cron   *cron.Cron

	ctx     context.Context
	cancel  context.CancelFunc
	running sync.Mutex
	now     func() time.Time
}

func NewInsightGenerator(store BatchStore, gen UserInsightGenerator, schedule string, logger internal.Logger) (*InsightGenerator, error) {
	ctx, cancel := context.WithCancel(context.Background())
	g := &InsightGenerator{
		store:  store,
		gen:    gen,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		now:    time.Now,
	}
	cl := cronLogger{logger}
	g.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := g.cron.AddFunc(schedule, g.scheduled); err != nil {
		cancel()
		return nil, fmt.Errorf("jobs: invalid schedule %q: %w", schedule, err)
	}
	return g, nil
}

func (g *InsightGenerator) scheduled() {
	if _, err := g.RunBatch(g.ctx); err != nil {
		g.logger.Errorw("scheduled insight batch failed", "error", err)
	}
}

func (g *InsightGenerator) Start() {
	g.cron.Start()
	for _, e := range g.cron.Entries() {
		g.logger.Infof("insight scheduler started, next run at %s", e.Next.Format(time.RFC3339))
	}
}

// Stop halts the schedule and waits for a running batch. When ctx ends
// first the batch is cancelled and Stop still waits for it to return.
func (g *InsightGenerator) Stop(ctx context.Context) error {
	done := g.cron.Stop()
	select {
	case <-done.Done():
		g.cancel()
		return nil
	case <-ctx.Done():
		g.cancel()
		<-done.Done()
		return ctx.Err()
	}
}

// RunBatch purges expired insights, then regenerates insights for every
// user active in the last 30 days. A failing user is logged and counted,
// never fatal to the batch.
func (g *InsightGenerator) RunBatch(ctx context.Context) (*BatchResult, error) {
	g.running.Lock()
	defer g.running.Unlock()

	metrics.InsightBatchRuns.Inc()
	start := g.now()
	res := &BatchResult{}

	purged, err := g.store.DeleteExpiredInsights(ctx, start)
	if err != nil {
		g.logger.Errorw("failed to purge expired insights", "error", err)
	}
	res.Purged = purged

	ids, err := g.store.ListActiveUserIDs(ctx, start.Add(-activeWindow))
	if err != nil {
		return nil, fmt.Errorf("jobs: list active users: %w", err)
	}
	res.Users = len(ids)
	g.logger.Infow("insight batch started", "users", len(ids), "purged", purged)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		n, err := g.gen.GenerateForUser(ctx, id)
		switch {
		case err != nil:
			res.Failed++
			metrics.InsightBatchUsers.WithLabelValues("error").Inc()
			g.logger.Errorw("insight generation failed", "user_id", id, "error", err)
		case n == 0:
			res.Skipped++
			metrics.InsightBatchUsers.WithLabelValues("skipped").Inc()
		default:
			res.Succeeded++
			res.Insights += n
			metrics.InsightBatchUsers.WithLabelValues("success").Inc()
		}
	}

	g.logger.Infow("insight batch finished",
		"users", res.Users,
		"succeeded", res.Succeeded,
		"skipped", res.Skipped,
		"failed", res.Failed,
		"insights", res.Insights,
		"duration", time.Since(start),
	)
	return res, nil
}

// cronLogger routes cron's own logging through the application logger.
type cronLogger struct {
	l internal.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugf("cron: %s %v", msg, keysAndValues)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
