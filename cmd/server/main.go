package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/qs-lzh/movie-favorites/config"
	"github.com/qs-lzh/movie-favorites/internal/app"
	"github.com/qs-lzh/movie-favorites/internal/cache"
	"github.com/qs-lzh/movie-favorites/internal/database"
	"github.com/qs-lzh/movie-favorites/internal/handler"
	"github.com/qs-lzh/movie-favorites/internal/logger"
	"github.com/qs-lzh/movie-favorites/internal/mq"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}

	err = run(cfg, lg)
	if err != nil {
		lg.Error("server stopped", zap.Error(err))
	}
	_ = lg.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DatabaseDSN, cfg.Debug, lg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, cfg.DatabaseDSN); err != nil {
		return err
	}

	var redisCache *cache.RedisCache
	if cfg.CacheURL != "" {
		redisCache, err = cache.NewRedisCache(cfg.CacheURL)
		if err != nil {
			return err
		}
		if err := redisCache.Ping(ctx); err != nil {
			lg.Warn("redis unavailable, rate limiting stays in process", zap.Error(err))
			redisCache.Close()
			redisCache = nil
		}
	}

	var mqConn *amqp.Connection
	if cfg.MQURL != "" {
		mqConn, err = mq.NewMQConn(cfg.MQURL)
		if err != nil {
			lg.Warn("rabbitmq unavailable, activity events disabled", zap.Error(err))
			mqConn = nil
		}
	}

	application, err := app.New(cfg, db, redisCache, mqConn, lg)
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.Init(ctx); err != nil {
		return err
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.NewRouter(application),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("server listening",
			zap.String("addr", cfg.Addr),
			zap.String("env", cfg.Env),
			zap.String("version", cfg.AppVersion),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
