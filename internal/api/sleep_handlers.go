package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/sleepwell/internal/auth"
	"github.com/yourname/sleepwell/internal/service"
)

const sleepLogResource = "Sleep log"

func PostSleepLog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var body service.CreateSleepLogRequest
		if !bindJSON(c, app, &body) {
			return
		}
		log, err := app.SleepService().Create(c.Request.Context(), user.ID, &body)
		if err != nil {
			HandleError(c, app, err)
			return
		}
		HandleSuccess(c, app, http.StatusCreated, log, nil)
	}
}

func ListSleepLogs(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var params service.ListParams
		if !bindQuery(c, app, &params) {
			return
		}
		logs, err := app.SleepService().List(c.Request.Context(), user.ID, params)
		if err != nil {
			HandleError(c, app, err)
			return
		}
		HandleSuccess(c, app, http.StatusOK, logs, listMeta(len(logs), params.Limit, params.Offset))
	}
}

func GetSleepStats(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var params service.StatsParams
		if !bindQuery(c, app, &params) {
			return
		}
		stats, err := app.SleepService().Stats(c.Request.Context(), user.ID, params)
		if err != nil {
			HandleError(c, app, err)
			return
		}
		if stats == nil {
			HandleSuccess(c, app, http.StatusOK, nil, map[string]any{"message": "No sleep data found for the specified date range"})
			return
		}
		HandleSuccess(c, app, http.StatusOK, stats, nil)
	}
}

func GetSleepLog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		id, ok := pathID(c, app, sleepLogResource)
		if !ok {
			return
		}
		log, err := app.SleepService().Get(c.Request.Context(), user.ID, id)
		if err != nil {
			HandleError(c, app, err)
			return
		}
		HandleSuccess(c, app, http.StatusOK, log, nil)
	}
}

func PutSleepLog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		id, ok := pathID(c, app, sleepLogResource)
		if !ok {
			return
		}
		var body service.UpdateSleepLogRequest
		if !bindJSON(c, app, &body) {
			return
		}
		log, err := app.SleepService().Update(c.Request.Context(), user.ID, id, &body)
		if err != nil {
			HandleError(c, app, err)
			return
		}
		HandleSuccess(c, app, http.StatusOK, log, nil)
	}
}

func DeleteSleepLog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		id, ok := pathID(c, app, sleepLogResource)
		if !ok {
			return
		}
		if err := app.SleepService().Delete(c.Request.Context(), user.ID, id); err != nil {
			HandleError(c, app, err)
			return
		}
		HandleSuccess(c, app, http.StatusOK, deleted, nil)
	}
}
