package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/yourname/sleepwell/internal"
	"github.com/yourname/sleepwell/internal/api"
	"github.com/yourname/sleepwell/internal/config"
	"github.com/yourname/sleepwell/internal/jobs"
	"github.com/yourname/sleepwell/internal/llm"
	"github.com/yourname/sleepwell/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:           "sleepwell",
		Short:         "Sleep and wellness tracking API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(serveCmd(), migrateCmd(), generateInsightsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// deps is what every subcommand needs: config, a logger and a migrated store.
type deps struct {
	cfg    *config.Config
	logger *internal.ZapLogger
	store  storage.Store
}

func setup(ctx context.Context) (*deps, error) {
	cfg := config.Load()
	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return &deps{cfg: cfg, logger: logger, store: store}, nil
}

func (d *deps) close() {
	if err := d.store.Close(); err != nil {
		d.logger.Errorf("failed to close store: %v", err)
	}
	_ = d.logger.Sync()
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the daily insight scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	d, err := setup(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	completer, err := llm.New(ctx, d.cfg, d.logger)
	if err != nil {
		return err
	}
	app := api.NewApp(d.cfg, d.logger, d.store, completer)

	var scheduler *jobs.InsightGenerator
	if d.cfg.SchedulerEnabled {
		scheduler, err = jobs.NewInsightGenerator(d.store, app.InsightService(), d.cfg.InsightCron, d.logger)
		if err != nil {
			return err
		}
		scheduler.Start()
	}

	srv := &http.Server{
		Addr:              d.cfg.HTTPAddr,
		Handler:           api.NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		d.logger.Infof("server listening on %s (%s)", d.cfg.HTTPAddr, d.cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		d.logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if scheduler != nil {
		if err := scheduler.Stop(shutdownCtx); err != nil {
			d.logger.Warnf("scheduler did not stop cleanly: %v", err)
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	d.logger.Info("server stopped")
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer d.close()
			d.logger.Info("migrations applied")
			return nil
		},
	}
}

func generateInsightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-insights",
		Short: "Run one insight batch for all recently active users",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			d, err := setup(ctx)
			if err != nil {
				return err
			}
			defer d.close()

			completer, err := llm.New(ctx, d.cfg, d.logger)
			if err != nil {
				return err
			}
			app := api.NewApp(d.cfg, d.logger, d.store, completer)
			gen, err := jobs.NewInsightGenerator(d.store, app.InsightService(), d.cfg.InsightCron, d.logger)
			if err != nil {
				return err
			}
			res, err := gen.RunBatch(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "users=%d succeeded=%d skipped=%d failed=%d insights=%d purged=%d\n",
				res.Users, res.Succeeded, res.Skipped, res.Failed, res.Insights, res.Purged)
			return nil
		},
	}
}
