package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/cryptopulse/backend/internal/config"
	"github.com/cryptopulse/backend/internal/middleware"
	"github.com/cryptopulse/backend/internal/service"
	"github.com/cryptopulse/backend/internal/ws"
)

// SetupRoutes wires every HTTP and websocket endpoint onto the router.
func SetupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	alerts service.AlertService,
	triggers service.TriggerLogService,
	markets service.MarketService,
	auth service.AuthService,
	watchlist service.WatchlistService,
	hub *ws.Hub,
) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	alertHandler := NewAlertHandler(alerts, triggers)
	marketHandler := NewMarketHandler(markets)
	authHandler := NewAuthHandler(auth, cfg)
	watchlistHandler := NewWatchlistHandler(watchlist)
	wsHandler := ws.NewWebSocketHandler(hub)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": hub.GetClientCount()})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/send-code", authHandler.SendCode)
		v1.POST("/auth/verify-code", authHandler.VerifyCode)

		v1.GET("/markets", marketHandler.GetMarkets)
		v1.GET("/chart/:id", marketHandler.GetChart)
		v1.GET("/spot/:id", marketHandler.GetSpot)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/alerts", alertHandler.GetAlerts)
			protected.POST("/alerts", alertHandler.CreateAlert)
			protected.POST("/alerts/:id/toggle", alertHandler.ToggleAlert)
			protected.DELETE("/alerts/:id", alertHandler.DeleteAlert)
			protected.GET("/alerts/history", alertHandler.GetTriggerHistory)

			protected.GET("/watchlist", watchlistHandler.GetWatchlist)
			protected.POST("/watchlist/:id/toggle", watchlistHandler.ToggleWatchlist)
			protected.DELETE("/watchlist/:id", watchlistHandler.RemoveFromWatchlist)
		}
	}

	router.GET("/ws", wsHandler.HandleConnection)

	router.GET("/docs/swagger.json", func(c *gin.Context) {
		c.File("./docs/swagger.json")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/docs/swagger.json")))
}
