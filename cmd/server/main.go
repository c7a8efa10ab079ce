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

	"github.com/leowang3268/puzzle-chat-ai/internal/ai"
	"github.com/leowang3268/puzzle-chat-ai/internal/cache"
	"github.com/leowang3268/puzzle-chat-ai/internal/config"
	"github.com/leowang3268/puzzle-chat-ai/internal/domain"
	"github.com/leowang3268/puzzle-chat-ai/internal/handler"
	"github.com/leowang3268/puzzle-chat-ai/internal/hub"
	"github.com/leowang3268/puzzle-chat-ai/internal/repository"
	"github.com/leowang3268/puzzle-chat-ai/internal/service"
	"github.com/leowang3268/puzzle-chat-ai/pkg/database"
	pkglog "github.com/leowang3268/puzzle-chat-ai/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		pkglog.L().Fatal().Err(err).Msg("failed to load config")
	}

	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Level == "debug",
		ServiceName: "puzzle-chat",
	})
	logger := pkglog.L()

	// Database
	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	store := repository.NewGormHistoryStore(db)
	if err := store.Migrate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database ready")

	// AI response cache
	var respCache cache.ResponseCache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisResponseCache(cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisCache.Close()
		respCache = redisCache
		logger.Info().Str("address", cfg.Redis.Address).Msg("redis cache connected")
	} else {
		respCache = cache.NewNoopCache()
	}

	// The puzzle is loaded once and shared read-only by every component.
	puzzle := domain.Puzzle{
		Question:   cfg.Puzzle.Question,
		FullAnswer: cfg.Puzzle.Answer,
	}

	// AI gateway, judge, composer
	gateway, err := ai.NewGateway(cfg.AI, respCache, cfg.Redis.CacheTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create ai gateway")
	}
	judge := ai.NewJudge(gateway, puzzle)
	composer := ai.NewComposer(gateway, puzzle)

	// Hub
	wsHub := hub.NewHub(cfg.WebSocket)
	go wsHub.Run()

	// Session service and handlers
	sessionSvc := service.NewSessionService(wsHub, store, judge, composer, puzzle, cfg.AI.HistoryLimit)
	wsHandler := handler.NewWSHandler(wsHub, sessionSvc)
	httpHandler := handler.NewHTTPHandler(store)

	// Router
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))
	httpHandler.RegisterRoutes(r, wsHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("puzzle chat listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}

	logger.Info().Msg("stopped")
}
