package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"booktrack/database"
	"booktrack/internal/achievements"
	"booktrack/internal/cache"
	"booktrack/internal/clock"
	"booktrack/internal/config"
	"booktrack/internal/http-api/handler"
	"booktrack/internal/http-api/middleware"
	"booktrack/internal/http-api/repository"
	"booktrack/internal/http-api/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("could not resolve timezone: %v", err)
	}
	clk := clock.NewSystemClock(loc)

	// The heatmap cache is optional: without Redis every read recomputes
	heatmaps, err := cache.NewHeatmapCache(cfg.RedisAddr, cfg.RedisPassword, time.Duration(cfg.CacheTTL)*time.Second)
	if err != nil {
		logger.Warn("Redis unavailable, heatmap caching disabled", "error", err)
		heatmaps = nil
	} else {
		defer heatmaps.Close()
	}

	catalog := achievements.Load(cfg.AchievementsPath, logger)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	bookRepo := repository.NewBookRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	unlockedRepo := repository.NewAchievementRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, cfg)
	notificationService := service.NewNotificationService(notificationRepo, logger)
	progressService := service.NewProgressService(bookRepo, sessionRepo, clk, heatmaps, logger)
	statsService := service.NewStatsService(bookRepo, sessionRepo, clk, heatmaps, logger)
	achievementService := service.NewAchievementService(
		catalog, bookRepo, sessionRepo, unlockedRepo, statsService, notificationService, clk, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	bookHandler := handler.NewBookHandler(progressService, statsService, notificationService)
	statsHandler := handler.NewStatsHandler(statsService)
	achievementHandler := handler.NewAchievementHandler(achievementService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.RateLimitMiddleware(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst))

	r.GET("/check-conn", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API is alive and database connected"})
	})

	api := r.Group("/api")
	authHandler.RegisterRoutes(api.Group("/auth"))

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(authService))
	bookHandler.RegisterRoutes(authed.Group("/books"))
	statsHandler.RegisterRoutes(authed.Group("/stats"))
	achievementHandler.RegisterRoutes(authed.Group("/achievements"))
	notificationHandler.RegisterRoutes(authed.Group("/notifications"))

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("starting api-server", "addr", addr, "env", cfg.GoEnv)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h)
}
