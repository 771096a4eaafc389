package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/sleepwell/internal/auth"
	"github.com/yourname/sleepwell/internal/service"
)

func ListInsights(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var params service.InsightListParams
		if !bindQuery(c, app, &params) {
			return
		}
		list, err := app.InsightService().List(c.Request.Context(), user.ID, params)
		if err != nil {
			HandleError(c, app, err)
			return
		}
		HandleSuccess(c, app, http.StatusOK, list.Insights, map[string]any{
			"generated_at": list.GeneratedAt,
			"next_update":  list.NextUpdate,
		})
	}
}

func GenerateInsights(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		res, err := app.InsightService().Generate(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app, err)
			return
		}
		HandleSuccess(c, app, http.StatusOK, res, nil)
	}
}

func GetInsightStatus(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		st, err := app.InsightService().Status(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app, err)
			return
		}
		HandleSuccess(c, app, http.StatusOK, st, nil)
	}
}
