package api

import (
	"github.com/gin-gonic/gin"
	"github.com/yourname/smartcoach/internal/auth"
	"github.com/yourname/smartcoach/internal/service"
)

func PostLog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var req service.LogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid request: title and goal required")
			return
		}
		if err := service.ValidateLogRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Log validation failed")
			return
		}

		log, err := service.CreateLog(c.Request.Context(), app.Repos(), user, &req)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to create log")
			return
		}
		HandleCreated(c, app.Logger(), log)
	}
}

func GetLogs(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		logs, err := service.ListLogs(c.Request.Context(), app.Repos(), user)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to list logs")
			return
		}
		HandleSuccess(c, app.Logger(), logs, map[string]any{
			"count":       len(logs),
			"main_log_id": user.MainLogID,
		})
	}
}

func GetLog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		log, err := service.GetLog(c.Request.Context(), app.Repos(), auth.CurrentUser(c), c.Param("logID"))
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch log")
			return
		}
		HandleSuccess(c, app.Logger(), log, nil)
	}
}

func PutLog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.LogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid request body")
			return
		}
		if err := service.ValidateLogRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Log validation failed")
			return
		}

		log, err := service.UpdateLog(c.Request.Context(), app.Repos(), auth.CurrentUser(c), c.Param("logID"), &req)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to update log")
			return
		}
		HandleSuccess(c, app.Logger(), log, nil)
	}
}

func DeleteLog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		logID := c.Param("logID")
		if err := service.DeleteLog(c.Request.Context(), app.Repos(), auth.CurrentUser(c), logID); err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to delete log")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"deleted": logID}, nil)
	}
}

func PutMainLog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.MainLogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid request: log_id required")
			return
		}
		if err := service.ValidateMainLogRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Main log validation failed")
			return
		}

		log, err := service.SetMainLog(c.Request.Context(), app.Repos(), auth.CurrentUser(c), req.LogID)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to set main log")
			return
		}
		HandleSuccess(c, app.Logger(), log, nil)
	}
}
