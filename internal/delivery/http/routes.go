package http

import (
	"github.com/gin-gonic/gin"

	"github.com/khaihong/primates-shoppers-sub001/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())

	router.GET("/healthz", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/search", handler.Search)
		v1.POST("/diagnose", handler.Diagnose)
		v1.DELETE("/cache", handler.InvalidateCache)
	}

	return router
}
