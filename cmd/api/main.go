package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"shotapi/internal/auth"
	"shotapi/internal/config"
	"shotapi/internal/database"
	"shotapi/internal/database/migration"
	handlers "shotapi/internal/http/handler"
	"shotapi/internal/logging"
	"shotapi/internal/metadata"
	"shotapi/internal/otel"
	"shotapi/internal/repository"
	"shotapi/internal/repository/postgres"
	"shotapi/internal/service"
	"shotapi/internal/storage"
)

// @title Screenshot API
// @version 1.0
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	log := logging.New(cfg.Location())
	defer log.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	store, err := newStore(cfg)
	if err != nil {
		log.Fatal("failed to initialize object storage", zap.Error(err), zap.String("driver", cfg.Storage.Driver))
	}
	log.Info("object storage ready", zap.String("driver", cfg.Storage.Driver))

	db, activityRepo, err := newActivityRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize activity log", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}

	pipeline := metadata.New(metadata.Limits(cfg.Metadata))
	tokens := auth.NewTokenService([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	creds := auth.Credentials{Username: cfg.Auth.Username, Password: cfg.Auth.Password}

	activitySvc := service.NewActivityService(activityRepo, log)
	authSvc := service.NewAuthService(creds, tokens, activitySvc)
	shotSvc := service.NewScreenshotService(store, pipeline, activitySvc, service.ScreenshotOptions{
		PublicBaseURL: cfg.Storage.PublicBaseURL,
		PresignTTL:    cfg.Storage.PresignTTL,
		ListMaxKeys:   cfg.Storage.ListMaxKeys,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, err := handlers.NewApp(handlers.AppOptions{
		Prefix:   cfg.APIPrefix,
		Registry: reg,
		Tracing:  true,
		Extra:    swaggerMount(cfg.APIPrefix),
	}, handlers.Deps{
		Auth:        authSvc,
		Screenshots: shotSvc,
		Activity:    activitySvc,
		Store:       store,
		DB:          db,
		Log:         log,
	})
	if err != nil {
		log.Fatal("failed to build http app", zap.Error(err))
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(sctx); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr), zap.String("api_prefix", cfg.APIPrefix))
	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

func newStore(cfg *config.AppConfig) (storage.Storage, error) {
	if cfg.Storage.Driver == "memory" {
		mem := storage.NewMemory()
		if err := mem.Seed(); err != nil {
			return nil, err
		}
		return mem, nil
	}
	return storage.NewMinIO(cfg.MinIO)
}

// newActivityRepository connects to Postgres when DB_HOST is set. Without it
// the activity log is discarded and db is nil.
func newActivityRepository(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*sql.DB, repository.ActivityRepository, error) {
	if !cfg.Database.Enabled() {
		log.Info("activity log disabled", zap.String("reason", "DB_HOST not set"))
		return nil, repository.NopActivityRepository{}, nil
	}
	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}
	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, postgres.NewActivityPostgres(db), nil
}
