package api

import (
	"github.com/gin-gonic/gin"
	"github.com/yourname/smartcoach/internal/auth"
	"github.com/yourname/smartcoach/internal/service"
)

func GetProfile(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleSuccess(c, app.Logger(), service.Profile(auth.CurrentUser(c)), nil)
	}
}

func PutProfile(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.ProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid request body")
			return
		}
		if err := service.ValidateProfileRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Profile validation failed")
			return
		}

		p, err := service.UpdateProfile(c.Request.Context(), app.Repos(), auth.CurrentUser(c), &req)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to update profile")
			return
		}
		HandleSuccess(c, app.Logger(), p, nil)
	}
}
