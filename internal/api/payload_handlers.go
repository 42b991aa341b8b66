package api

import (
	"github.com/gin-gonic/gin"
	"github.com/yourname/smartcoach/internal/auth"
	"github.com/yourname/smartcoach/internal/service"
)

func GetPayload(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := service.ComputePayload(c.Request.Context(), app.Repos(), auth.CurrentUser(c), c.Param("logID"))
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to compute payload")
			return
		}
		HandleSuccess(c, app.Logger(), p, nil)
	}
}

func GetMainPayload(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := service.MainPayload(c.Request.Context(), app.Repos(), auth.CurrentUser(c))
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to compute main log payload")
			return
		}
		HandleSuccess(c, app.Logger(), p, nil)
	}
}

func GetPeriods(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		by := c.DefaultQuery("by", "week")
		periods, err := service.LogPeriods(c.Request.Context(), app.Repos(), auth.CurrentUser(c), c.Param("logID"), by)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to group entries")
			return
		}
		HandleSuccess(c, app.Logger(), periods, map[string]any{"by": by, "count": len(periods)})
	}
}
