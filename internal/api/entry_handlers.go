package api

import (
	"github.com/gin-gonic/gin"
	"github.com/yourname/smartcoach/internal/auth"
	"github.com/yourname/smartcoach/internal/service"
)

func GetEntries(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := service.ListDayEntries(c.Request.Context(), app.Repos(), auth.CurrentUser(c),
			c.Param("logID"), c.Query("from"), c.Query("to"))
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to list entries")
			return
		}
		HandleSuccess(c, app.Logger(), entries, map[string]any{"count": len(entries)})
	}
}

// PutEntry creates or replaces the entry for the :date path segment.
func PutEntry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.DayEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid request: weight or calories required")
			return
		}
		if err := service.ValidateDayEntryRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Entry validation failed")
			return
		}

		entry, created, err := service.UpsertDayEntry(c.Request.Context(), app.Repos(), auth.CurrentUser(c),
			c.Param("logID"), c.Param("date"), &req)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to save entry")
			return
		}
		if created {
			HandleCreated(c, app.Logger(), entry)
			return
		}
		HandleSuccess(c, app.Logger(), entry, nil)
	}
}

func DeleteEntry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := c.Param("date")
		if err := service.DeleteDayEntry(c.Request.Context(), app.Repos(), auth.CurrentUser(c), c.Param("logID"), date); err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to delete entry")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"deleted": date}, nil)
	}
}
