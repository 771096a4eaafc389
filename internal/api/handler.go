package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourname/sleepwell/internal"
	"github.com/yourname/sleepwell/internal/service"
)

func Health(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleSuccess(c, app, http.StatusOK, gin.H{
			"status":      "ok",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"environment": app.Config().Env,
		}, nil)
	}
}

func NoRoute(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleError(c, app, internal.NewAppError(http.StatusNotFound,
			fmt.Sprintf("Route not found: %s %s", c.Request.Method, c.Request.URL.Path)))
	}
}

// listMeta describes the page a list endpoint returned.
func listMeta(count int, limit *int, offset int) map[string]any {
	l := service.DefaultListLimit
	if limit != nil {
		l = *limit
	}
	return map[string]any{"count": count, "limit": l, "offset": offset}
}

var deleted = gin.H{"success": true}
