package api

import (
	"github.com/gin-gonic/gin"
	"github.com/yourname/smartcoach/internal/auth"
	"github.com/yourname/smartcoach/internal/metrics"
)

// NewRouter wires every route. limiter may be nil to disable rate limiting.
func NewRouter(app App, provider auth.Provider, limiter *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), AccessLogMiddleware(app.Logger()), metrics.Middleware())

	r.GET("/healthz", func(c *gin.Context) {
		HandleSuccess(c, app.Logger(), gin.H{"status": "ok"}, nil)
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.Use(auth.AuthMiddleware(provider, app.Logger()))
	if limiter != nil {
		api.Use(limiter.Middleware())
	}

	api.GET("/profile", GetProfile(app))
	api.PUT("/profile", PutProfile(app))

	api.POST("/logs", PostLog(app))
	api.GET("/logs", GetLogs(app))
	api.GET("/logs/:logID", GetLog(app))
	api.PUT("/logs/:logID", PutLog(app))
	api.DELETE("/logs/:logID", DeleteLog(app))

	api.PUT("/main-log", PutMainLog(app))
	api.GET("/main-log/payload", GetMainPayload(app))

	api.GET("/logs/:logID/entries", GetEntries(app))
	api.PUT("/logs/:logID/entries/:date", PutEntry(app))
	api.DELETE("/logs/:logID/entries/:date", DeleteEntry(app))

	api.GET("/logs/:logID/payload", GetPayload(app))
	api.GET("/logs/:logID/periods", GetPeriods(app))

	return r
}
