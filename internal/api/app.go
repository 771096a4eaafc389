package api

import (
	"github.com/yourname/sleepwell/internal"
	"github.com/yourname/sleepwell/internal/auth"
	"github.com/yourname/sleepwell/internal/config"
	"github.com/yourname/sleepwell/internal/llm"
	"github.com/yourname/sleepwell/internal/service"
	"github.com/yourname/sleepwell/internal/storage"
)

// App is everything a handler can reach.
type App interface {
	Logger() internal.Logger
	Config() *config.Config
	AuthProvider() auth.Provider
	AuthService() *service.AuthService
	SleepService() *service.SleepService
	DiaryService() *service.DiaryService
	InsightService() *service.InsightService
}

type Application struct {
	cfg      *config.Config
	logger   internal.Logger
	provider auth.Provider
	auth     *service.AuthService
	sleep    *service.SleepService
	diary    *service.DiaryService
	insights *service.InsightService
}

// NewApp wires the services on top of one store and one LLM completer.
func NewApp(cfg *config.Config, logger internal.Logger, store storage.Store, completer llm.Completer) *Application {
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiresIn, cfg.JWTRefreshExpiry)
	return &Application{
		cfg:      cfg,
		logger:   logger,
		provider: auth.NewJWTProvider(tokens, store, logger),
		auth:     service.NewAuthService(store, tokens, cfg.BcryptCost, logger),
		sleep:    service.NewSleepService(store, logger),
		diary:    service.NewDiaryService(store, logger),
		insights: service.NewInsightService(store, store, store, completer, service.InsightConfig{
			Cooldown:   cfg.InsightCooldown,
			TTL:        cfg.InsightTTL,
			WindowDays: cfg.InsightWindowDays,
		}, logger),
	}
}

func (a *Application) Logger() internal.Logger                 { return a.logger }
func (a *Application) Config() *config.Config                  { return a.cfg }
func (a *Application) AuthProvider() auth.Provider             { return a.provider }
func (a *Application) AuthService() *service.AuthService       { return a.auth }
func (a *Application) SleepService() *service.SleepService     { return a.sleep }
func (a *Application) DiaryService() *service.DiaryService     { return a.diary }
func (a *Application) InsightService() *service.InsightService { return a.insights }

var _ App = (*Application)(nil)
