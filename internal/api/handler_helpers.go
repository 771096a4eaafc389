package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yourname/sleepwell/internal"
	"github.com/yourname/sleepwell/internal/response"
	"github.com/yourname/sleepwell/internal/service"
	"github.com/yourname/sleepwell/internal/storage"
)

// HandleError writes err as the error envelope and aborts the chain.
func HandleError(c *gin.Context, app App, err error) {
	requestID := c.GetString("request_id")
	appErr := toAppError(err, app.Config().IsProduction())
	if appErr.Status >= http.StatusInternalServerError {
		app.Logger().Errorf("[request_id=%s] %s %s: %v", requestID, c.Request.Method, c.Request.URL.Path, err)
	} else {
		app.Logger().Infof("[request_id=%s] %d %s", requestID, appErr.Status, appErr.Message)
	}
	c.AbortWithStatusJSON(appErr.Status, response.Error(appErr))
}

func toAppError(err error, production bool) *internal.AppError {
	var appErr *internal.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if details := service.FieldErrors(err); details != nil {
		e := internal.BadRequest("Validation failed")
		e.Details = details
		return e
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return internal.NotFound("Resource")
	case errors.Is(err, storage.ErrConflict):
		return internal.Conflict("Resource already exists")
	}
	if production {
		return internal.Internal("Internal server error")
	}
	return internal.Internal("Internal server error: " + err.Error())
}

func HandleSuccess(c *gin.Context, app App, status int, data interface{}, meta map[string]any) {
	requestID := c.GetString("request_id")
	app.Logger().Debugf("[request_id=%s] %d", requestID, status)
	c.JSON(status, response.Success(data, meta))
}

// bindJSON decodes the body into dst. An empty body leaves dst zero so
// that validation reports the missing fields.
func bindJSON(c *gin.Context, app App, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		HandleError(c, app, internal.BadRequest("Invalid request body"))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, app App, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		HandleError(c, app, internal.BadRequest("Invalid query parameters"))
		return false
	}
	return true
}

// pathID reads the numeric :id parameter. Anything else is reported as
// the resource not existing.
func pathID(c *gin.Context, app App, resource string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		HandleError(c, app, internal.NotFound(resource))
		return 0, false
	}
	return id, true
}
