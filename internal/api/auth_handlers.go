package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/sleepwell/internal/auth"
	"github.com/yourname/sleepwell/internal/service"
)

func Register(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.RegisterRequest
		if !bindJSON(c, app, &body) {
			return
		}
		res, err := app.AuthService().Register(c.Request.Context(), &body)
		if err != nil {
			HandleError(c, app, err)
			return
		}
		HandleSuccess(c, app, http.StatusCreated, res, nil)
	}
}

func Login(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.LoginRequest
		if !bindJSON(c, app, &body) {
			return
		}
		res, err := app.AuthService().Login(c.Request.Context(), &body)
		if err != nil {
			HandleError(c, app, err)
			return
		}
		HandleSuccess(c, app, http.StatusOK, res, nil)
	}
}

func Refresh(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.RefreshRequest
		if !bindJSON(c, app, &body) {
			return
		}
		res, err := app.AuthService().Refresh(c.Request.Context(), &body)
		if err != nil {
			HandleError(c, app, err)
			return
		}
		HandleSuccess(c, app, http.StatusOK, res, nil)
	}
}

func Me(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleSuccess(c, app, http.StatusOK, auth.CurrentUser(c), nil)
	}
}

func UpdateProfile(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.UpdateProfileRequest
		if !bindJSON(c, app, &body) {
			return
		}
		user, err := app.AuthService().UpdateProfile(c.Request.Context(), auth.CurrentUser(c), &body)
		if err != nil {
			HandleError(c, app, err)
			return
		}
		HandleSuccess(c, app, http.StatusOK, user, nil)
	}
}

func DeleteAccount(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := app.AuthService().DeleteAccount(c.Request.Context(), auth.CurrentUser(c).ID); err != nil {
			HandleError(c, app, err)
			return
		}
		HandleSuccess(c, app, http.StatusOK, deleted, nil)
	}
}
