package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cryptopulse/backend/internal/api"
	"github.com/cryptopulse/backend/internal/config"
	"github.com/cryptopulse/backend/internal/middleware"
	"github.com/cryptopulse/backend/internal/repository"
	"github.com/cryptopulse/backend/internal/service"
	"github.com/cryptopulse/backend/internal/ws"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}

	hub := ws.NewHub()
	go hub.Run()

	ruleStore := repository.NewMongoRuleStore(client, cfg.MongoDB, "alerts")
	watchlistStore := repository.NewMongoWatchlistStore(client, cfg.MongoDB, "watchlists")
	triggerStore := repository.NewMongoTriggerLogStore(client, cfg.MongoDB, "triggers")
	otpStore := repository.NewMemoryOTPStore()

	marketService := service.NewCoinGeckoService(cfg.CoinGeckoBaseURL)
	triggerService := service.NewTriggerLogService(triggerStore)
	alertService := service.NewAlertService(ruleStore, marketService, triggerService, hub, cfg.PollInterval)
	watchlistService := service.NewWatchlistService(watchlistStore)

	var sender service.SMSSender
	if cfg.VonageAPIKey != "" && cfg.VonageAPISecret != "" {
		sender = service.NewVonageService(cfg.VonageAPIKey, cfg.VonageAPISecret, cfg.VonageFrom)
	} else {
		log.Warn("Vonage credentials missing, OTP codes will be logged instead of sent")
		sender = service.NewLogSMSSender()
	}
	authService := service.NewAuthService(otpStore, sender, cfg.OTPTTL)

	alertService.Start()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())

	api.SetupRoutes(r, cfg, alertService, triggerService, marketService, authService, watchlistService, hub)

	addr := fmt.Sprintf("%s:%d", cfg.Address, cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Infof("Starting server on %s", addr)
		log.Infof("WebSocket endpoint available at ws://%s/ws", addr)
		log.Infof("Swagger UI available at http://%s/swagger/index.html", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	alertService.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown: %v", err)
	}
}
