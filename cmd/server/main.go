package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/user-management/adapters/cache"
	"github.com/khoahotran/user-management/adapters/event"
	httpAdapter "github.com/khoahotran/user-management/adapters/http"
	"github.com/khoahotran/user-management/adapters/persistence"
	"github.com/khoahotran/user-management/adapters/persistence/memory"
	"github.com/khoahotran/user-management/internal/application/service"
	settingUC "github.com/khoahotran/user-management/internal/application/usecase/setting"
	userUC "github.com/khoahotran/user-management/internal/application/usecase/user"
	"github.com/khoahotran/user-management/internal/config"
	"github.com/khoahotran/user-management/internal/domain/user"
	"github.com/khoahotran/user-management/pkg/logger"
	"github.com/khoahotran/user-management/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Start User Management API Server...", zap.String("env", cfg.App.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	tp, err := tracing.NewTracerProvider(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init tracing", err)
	}
	if tp != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(shutdownCtx)
		}()
	}

	// Store
	var uow user.UnitOfWork
	switch cfg.DB.Driver {
	case config.DriverMemory:
		appLogger.Warn("Using in-memory store, data is lost on restart")
		uow = memory.NewStore()
	default:
		dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot connect Postgres", err)
		}
		defer dbPool.Close()

		if cfg.DB.RunMigrations {
			if err := persistence.RunMigrations(ctx, dbPool, appLogger); err != nil {
				appLogger.Fatal("Cannot run migrations", err)
			}
		}
		uow = persistence.NewPostgresUnitOfWork(dbPool)
	}

	// Snapshot cache
	userCache := service.NewNoopUserCache()
	if cfg.Redis.Addr != "" {
		redisClient, err := persistence.NewRedisClient(ctx, cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot connect Redis", err)
		}
		defer redisClient.Close()
		userCache = cache.NewRedisUserCache(redisClient, cfg.Redis.CacheTTL)
	}

	// Events
	publisher := service.NewNoopEventPublisher()
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		publisher = kafkaClient
	}

	// Use Cases
	reconciler := settingUC.NewReconciler(appLogger)
	userUseCase := userUC.NewUserUseCase(uow, reconciler, userCache, publisher, appLogger, userUC.Options{
		MaxAgeYears:     cfg.Users.MaxAgeYears,
		DefaultPageSize: cfg.Users.DefaultPageSize,
		MaxPageSize:     cfg.Users.MaxPageSize,
	})

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	userHandler := httpAdapter.NewUserHandler(userUseCase, appLogger)
	router := httpAdapter.NewRouter(cfg.App.ServiceName, userHandler, appLogger)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
	appLogger.Info("Server exited")
}
