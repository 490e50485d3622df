package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bagdasarian/review-submit/internal/config"
	"github.com/bagdasarian/review-submit/internal/db"
	"github.com/bagdasarian/review-submit/internal/handler"
	"github.com/bagdasarian/review-submit/internal/handler/server"
	"github.com/bagdasarian/review-submit/internal/logger"
	"github.com/bagdasarian/review-submit/internal/repository"
	"github.com/bagdasarian/review-submit/internal/repository/memory"
	"github.com/bagdasarian/review-submit/internal/repository/postgres"
	"github.com/bagdasarian/review-submit/internal/repository/redisindex"
	"github.com/bagdasarian/review-submit/internal/service"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Env)

	ctx := context.Background()

	changeRepo, visibilityRepo, closeStorage := openStorage(cfg)
	defer closeStorage()

	var topicIndex repository.TopicIndex
	rdb, err := db.NewRedis(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to redis", "error", err)
	}
	if rdb != nil {
		defer rdb.Close()
		index := redisindex.NewTopicIndex(rdb, cfg.Redis.KeyPrefix)
		if _, err := service.SyncTopicIndex(ctx, changeRepo, index); err != nil {
			logger.Fatal("failed to sync topic index", "error", err)
		}
		topicIndex = index
	}

	graph := service.NewChangeGraph(changeRepo, topicIndex)
	submitService := service.NewSubmitService(changeRepo, visibilityRepo, graph, service.SubmitOptions{
		WholeTopic:  cfg.Submit.WholeTopic,
		MaxParallel: cfg.Submit.MaxParallel,
	})
	changeService := service.NewChangeService(changeRepo, visibilityRepo, topicIndex)

	h := handler.NewHandler(submitService, changeService)
	srv := server.NewServer(h, cfg.HTTP.Addr, cfg.HTTP.ReadHeaderTimeout)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
}

func openStorage(cfg *config.Config) (repository.ChangeRepository, repository.VisibilityRepository, func()) {
	switch cfg.Storage {
	case config.StorageMemory:
		store := memory.NewStore()
		if cfg.MemorySnapshot != "" {
			f, err := os.Open(cfg.MemorySnapshot)
			if err != nil {
				logger.Fatal("failed to open snapshot", "path", cfg.MemorySnapshot, "error", err)
			}
			defer f.Close()
			if err := store.LoadSnapshot(f); err != nil {
				logger.Fatal("failed to load snapshot", "path", cfg.MemorySnapshot, "error", err)
			}
		}
		logger.Info("using in-memory storage")
		return store, store, func() {}
	case config.StoragePostgres:
		database := db.MustLoad(cfg)
		logger.Info("successfully connected to database")
		return postgres.NewChangeRepository(database), postgres.NewVisibilityRepository(database), closer(database)
	default:
		logger.Fatal("unknown storage backend", "storage", cfg.Storage)
		return nil, nil, nil
	}
}

func closer(database *sql.DB) func() {
	return func() {
		if err := database.Close(); err != nil {
			logger.Warn("failed to close database", "error", err)
		}
	}
}
