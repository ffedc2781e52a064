package main

import (
	"context"
	"errors"
	stdlog "log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"github.com/Pavangowda-dev/StockIQ/auth"
	"github.com/Pavangowda-dev/StockIQ/config"
	"github.com/Pavangowda-dev/StockIQ/database"
	"github.com/Pavangowda-dev/StockIQ/forecast"
	"github.com/Pavangowda-dev/StockIQ/handlers"
	"github.com/Pavangowda-dev/StockIQ/logger"
	"github.com/Pavangowda-dev/StockIQ/metrics"
	"github.com/Pavangowda-dev/StockIQ/routes"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg)
	if err != nil {
		stdlog.Fatalf("Error creating logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	var pool *pgxpool.Pool
	if cfg.NeedsDatabase() {
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is not set")
		}
		p, err := database.Connect(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer database.Close(p, log)
		pool = p
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.AWSRegion))
	if err != nil {
		return err
	}

	store, err := buildStore(ctx, cfg, awsCfg, pool, log)
	if err != nil {
		return err
	}

	var authSvc *auth.Service
	if cfg.Auth.Enabled {
		users, err := buildUserSource(ctx, cfg, awsCfg, pool, log)
		if err != nil {
			return err
		}
		authSvc, err = auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, users, log)
		if err != nil {
			return err
		}
	} else {
		log.Warn("authentication is disabled; data routes are open")
	}

	analyst, closeAnalyst := buildAnalyst(ctx, cfg, log)
	defer closeAnalyst()

	engineCfg := forecast.DefaultConfig()
	engineCfg.AnchorLeadTimeToProduct = cfg.Forecast.AnchorLeadTimeToProduct

	m := metrics.New(strings.ReplaceAll(cfg.AppName, "-", "_"))
	h := handlers.New(handlers.Deps{
		Store:   store,
		Engine:  forecast.NewEngine(engineCfg, log),
		Auth:    authSvc,
		Analyst: analyst,
		Metrics: m,
		Log:     log,
	})

	app := newApp(cfg, log, m)
	routes.SetupRoutes(app, h, authSvc, m)

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("storage", cfg.Storage.Backend))
		errCh <- app.Listen(cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}
