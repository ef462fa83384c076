package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, h *Handlers, allowedOrigins []string) {
	corsConfig := cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	// cors.New panics without any allowed origin.
	if len(allowedOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}

	router.Use(
		gin.Recovery(),
		RequestID(),
		RequestLogger(h.metrics),
		cors.New(corsConfig),
	)

	api := router.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/metrics", h.Metrics)
		api.POST("/analyze", h.Analyze)

		api.GET("/stats", h.Stats)
		api.GET("/timeline", h.Timeline)
		api.GET("/locations", h.Locations)
		api.GET("/hotspots", h.Hotspots)
		api.GET("/symptoms", h.Symptoms)
		api.GET("/sentiment", h.Sentiment)
		api.GET("/tweets", h.Tweets)
		api.GET("/forecast", h.Forecast)
		api.GET("/hourly-pattern", h.HourlyPattern)

		api.GET("/clusters", h.Clusters)
		api.GET("/topics", h.Topics)
	}
}
