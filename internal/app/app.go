package app

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/movie-favorites/config"
	"github.com/qs-lzh/movie-favorites/internal/cache"
	"github.com/qs-lzh/movie-favorites/internal/database"
	"github.com/qs-lzh/movie-favorites/internal/metrics"
	"github.com/qs-lzh/movie-favorites/internal/middleware"
	"github.com/qs-lzh/movie-favorites/internal/mq"
	"github.com/qs-lzh/movie-favorites/internal/repository"
	"github.com/qs-lzh/movie-favorites/internal/service/domain"
	"github.com/qs-lzh/movie-favorites/internal/service/workflow"
)

type App struct {
	Config *config.Config

	DB       *gorm.DB
	Cache    *cache.RedisCache
	Logger   *zap.Logger
	MQConn   *amqp.Connection
	Registry *prometheus.Registry
	Metrics  *metrics.Collector

	// nil when rate limiting is disabled
	Limiter middleware.Limiter

	UserRepo     repository.UserRepo
	MovieRepo    repository.MovieRepo
	FavoriteRepo repository.FavoriteRepo

	UserService     domain.UserService
	MovieService    domain.MovieService
	FavoriteService domain.FavoriteService
	StatsService    domain.StatsService

	FavoriteWorkflow *workflow.FavoriteWorkflow
	ActivityWorkflow *workflow.ActivityWorkflow

	publisher    *mq.Publisher
	localLimiter *middleware.LocalLimiter
}

// New wires the application. redisCache and mqConn may be nil; redis then falls
// back to an in-process limiter and activity events are only counted.
func New(config *config.Config, db *gorm.DB, redisCache *cache.RedisCache, mqConn *amqp.Connection, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	userRepo := repository.NewUserRepoGorm(db)
	movieRepo := repository.NewMovieRepoGorm(db)
	favoriteRepo := repository.NewFavoriteRepoGorm(db)

	userService := domain.NewUserService(db, userRepo, favoriteRepo)
	movieService := domain.NewMovieService(db, movieRepo, favoriteRepo)
	favoriteService := domain.NewFavoriteService(db, favoriteRepo, userRepo, movieRepo)
	statsService := domain.NewStatsService(favoriteService)

	app := &App{
		Config:          config,
		DB:              db,
		Cache:           redisCache,
		Logger:          logger,
		MQConn:          mqConn,
		Registry:        registry,
		Metrics:         collector,
		UserRepo:        userRepo,
		MovieRepo:       movieRepo,
		FavoriteRepo:    favoriteRepo,
		UserService:     userService,
		MovieService:    movieService,
		FavoriteService: favoriteService,
		StatsService:    statsService,
	}

	var publisher workflow.ActivityPublisher
	if mqConn != nil {
		app.publisher = mq.NewPublisher(mqConn)
		publisher = app.publisher
		app.ActivityWorkflow = workflow.NewActivityWorkflow(mqConn, logger.Named("activity"))
	}
	app.FavoriteWorkflow = workflow.NewFavoriteWorkflow(favoriteService, userService, publisher, collector, logger.Named("favorites"))

	if config.RateLimitEnabled {
		if redisCache != nil {
			limiter, err := cache.NewRedisLimiter(redisCache, config.RateLimitCapacity, config.RateLimitInterval)
			if err != nil {
				return nil, err
			}
			app.Limiter = limiter
		} else {
			app.localLimiter = middleware.NewLocalLimiter(config.RateLimitCapacity, config.RateLimitInterval)
			app.Limiter = app.localLimiter
		}
	}

	return app, nil
}

// Init declares the queues and starts the activity consumer when RabbitMQ is configured.
func (app *App) Init(ctx context.Context) error {
	if app.MQConn == nil {
		return nil
	}
	if err := mq.InitQueues(app.MQConn); err != nil {
		return err
	}
	return app.ActivityWorkflow.Start(ctx)
}

func (app *App) Close() error {
	var errs []error
	if app.localLimiter != nil {
		app.localLimiter.Stop()
	}
	if err := app.publisher.Close(); err != nil {
		errs = append(errs, err)
	}
	if app.MQConn != nil {
		if err := app.MQConn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if app.Cache != nil {
		if err := app.Cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := database.Close(app.DB); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
