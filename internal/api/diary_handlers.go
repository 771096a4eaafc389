package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/sleepwell/internal/auth"
	"github.com/yourname/sleepwell/internal/service"
)

const diaryEntryResource = "Diary entry"

func PostDiaryEntry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var body service.CreateDiaryEntryRequest
		if !bindJSON(c, app, &body) {
			return
		}
		entry, err := app.DiaryService().Create(c.Request.Context(), user.ID, &body)
		if err != nil {
			HandleError(c, app, err)
			return
		}
		HandleSuccess(c, app, http.StatusCreated, entry, nil)
	}
}

func ListDiaryEntries(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var params service.ListParams
		if !bindQuery(c, app, &params) {
			return
		}
		entries, err := app.DiaryService().List(c.Request.Context(), user.ID, params)
		if err != nil {
			HandleError(c, app, err)
			return
		}
		HandleSuccess(c, app, http.StatusOK, entries, listMeta(len(entries), params.Limit, params.Offset))
	}
}

func GetDiaryStats(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var params service.StatsParams
		if !bindQuery(c, app, &params) {
			return
		}
		stats, err := app.DiaryService().Stats(c.Request.Context(), user.ID, params)
		if err != nil {
			HandleError(c, app, err)
			return
		}
		if stats == nil {
			HandleSuccess(c, app, http.StatusOK, nil, map[string]any{"message": "No diary entries found for the specified date range"})
			return
		}
		HandleSuccess(c, app, http.StatusOK, stats, nil)
	}
}

func GetDiaryEntry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		id, ok := pathID(c, app, diaryEntryResource)
		if !ok {
			return
		}
		entry, err := app.DiaryService().Get(c.Request.Context(), user.ID, id)
		if err != nil {
			HandleError(c, app, err)
			return
		}
		HandleSuccess(c, app, http.StatusOK, entry, nil)
	}
}

func PutDiaryEntry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		id, ok := pathID(c, app, diaryEntryResource)
		if !ok {
			return
		}
		var body service.UpdateDiaryEntryRequest
		if !bindJSON(c, app, &body) {
			return
		}
		entry, err := app.DiaryService().Update(c.Request.Context(), user.ID, id, &body)
		if err != nil {
			HandleError(c, app, err)
			return
		}
		HandleSuccess(c, app, http.StatusOK, entry, nil)
	}
}

func DeleteDiaryEntry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		id, ok := pathID(c, app, diaryEntryResource)
		if !ok {
			return
		}
		if err := app.DiaryService().Delete(c.Request.Context(), user.ID, id); err != nil {
			HandleError(c, app, err)
			return
		}
		HandleSuccess(c, app, http.StatusOK, deleted, nil)
	}
}
