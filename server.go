package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"github.com/Pavangowda-dev/StockIQ/auth"
	"github.com/Pavangowda-dev/StockIQ/config"
	"github.com/Pavangowda-dev/StockIQ/handlers"
	"github.com/Pavangowda-dev/StockIQ/insights"
	"github.com/Pavangowda-dev/StockIQ/metrics"
	"github.com/Pavangowda-dev/StockIQ/middleware"
	"github.com/Pavangowda-dev/StockIQ/storage"
)

func newApp(cfg config.Config, log *zap.Logger, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		BodyLimit:             cfg.MaxUploadBytes,
		ErrorHandler:          handlers.ErrorHandler(log),
		DisableStartupMessage: true,
	})

	app.Use(cors.New())
	app.Use(middleware.RequestLogger(log, m))
	app.Use(recover.New())
	return app
}

func buildStore(ctx context.Context, cfg config.Config, awsCfg aws.Config, pool *pgxpool.Pool, log *zap.Logger) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		log.Warn("using in-memory storage; uploads are lost on restart")
		return storage.NewMemoryStore(), nil
	case config.StorageS3:
		return storage.NewS3StoreFromConfig(awsCfg, cfg.Storage.S3Bucket), nil
	case config.StoragePostgres:
		s := storage.NewPostgresStore(pool)
		if err := s.Migrate(ctx); err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.Storage.Backend)
}

func buildUserSource(ctx context.Context, cfg config.Config, awsCfg aws.Config, pool *pgxpool.Pool, log *zap.Logger) (auth.UserSource, error) {
	var seed *auth.User
	if cfg.Auth.SeedUsername != "" && cfg.Auth.SeedPassword != "" {
		hashed, err := auth.HashPassword(cfg.Auth.SeedPassword)
		if err != nil {
			return nil, fmt.Errorf("hash seed password: %w", err)
		}
		seed = &auth.User{Username: cfg.Auth.SeedUsername, HashedPassword: hashed}
	}

	switch cfg.Auth.UserSource {
	case config.UserSourceSecretsManager:
		if seed != nil {
			log.Warn("AUTH_SEED_USERNAME is ignored for the secretsmanager user source")
		}
		return auth.NewSecretsManagerSourceFromConfig(awsCfg, cfg.Auth.UsersSecretID), nil
	case config.UserSourcePostgres:
		src := auth.NewPostgresSource(pool)
		if err := src.Migrate(ctx); err != nil {
			return nil, err
		}
		if seed != nil {
			if err := src.Upsert(ctx, *seed); err != nil {
				return nil, err
			}
		}
		return src, nil
	case config.UserSourceMemory:
		src := auth.NewMemorySource()
		if seed != nil {
			src.Add(*seed)
		} else {
			log.Warn("memory user source has no users; set AUTH_SEED_USERNAME and AUTH_SEED_PASSWORD")
		}
		return src, nil
	}
	return nil, fmt.Errorf("unknown AUTH_USER_SOURCE %q", cfg.Auth.UserSource)
}

// buildAnalyst returns a Gemini-backed analyst, or a disabled one when no API
// key is configured. The returned func releases the client.
func buildAnalyst(ctx context.Context, cfg config.Config, log *zap.Logger) (*insights.Analyst, func()) {
	if cfg.Gemini.APIKey == "" {
		log.Info("GEMINI_API_KEY not set; insights are disabled")
		return insights.NewAnalyst(nil, log), func() {}
	}

	gem, err := insights.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.Error("insights are disabled", zap.Error(err))
		return insights.NewAnalyst(nil, log), func() {}
	}
	return insights.NewAnalyst(gem, log), func() { _ = gem.Close() }
}
