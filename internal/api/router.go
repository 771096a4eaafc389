package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yourname/sleepwell/internal/auth"
)

// NewRouter builds the HTTP surface. Panics are recovered into the same
// error envelope as handler errors.
func NewRouter(app App) *gin.Engine {
	cfg := app.Config()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		RequestIDMiddleware(),
		AccessLogMiddleware(app.Logger()),
		MetricsMiddleware(),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			HandleError(c, app, fmt.Errorf("panic: %v", recovered))
		}),
		SecurityHeadersMiddleware(),
		cors.New(cors.Config{
			AllowOrigins:     []string{cfg.ClientURL},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	r.GET("/health", Health(app))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limit := RateLimitMiddleware(cfg.RateLimitMax, cfg.RateLimitWindow)
	requireAuth := auth.AuthMiddleware(app.AuthProvider())

	authGroup := r.Group("/auth", limit)
	authGroup.POST("/register", Register(app))
	authGroup.POST("/login", Login(app))
	authGroup.POST("/refresh", Refresh(app))
	authGroup.GET("/me", requireAuth, Me(app))
	authGroup.PUT("/profile", requireAuth, UpdateProfile(app))
	authGroup.DELETE("/account", requireAuth, DeleteAccount(app))

	api := r.Group("/api", limit, requireAuth)

	sleep := api.Group("/sleep-logs")
	sleep.GET("", ListSleepLogs(app))
	sleep.POST("", PostSleepLog(app))
	sleep.GET("/stats", GetSleepStats(app))
	sleep.GET("/:id", GetSleepLog(app))
	sleep.PUT("/:id", PutSleepLog(app))
	sleep.DELETE("/:id", DeleteSleepLog(app))

	diary := api.Group("/diary-entries")
	diary.GET("", ListDiaryEntries(app))
	diary.POST("", PostDiaryEntry(app))
	diary.GET("/stats", GetDiaryStats(app))
	diary.GET("/:id", GetDiaryEntry(app))
	diary.PUT("/:id", PutDiaryEntry(app))
	diary.DELETE("/:id", DeleteDiaryEntry(app))

	insights := api.Group("/insights")
	insights.GET("", ListInsights(app))
	insights.POST("/generate", GenerateInsights(app))
	insights.GET("/status", GetInsightStatus(app))

	r.NoRoute(NoRoute(app))
	return r
}
