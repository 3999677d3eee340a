// Command seed fills the database with a demo account and its receipts.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/leonberkemeier/Receiptly/internal/ocr/tesseract"
	"github.com/leonberkemeier/Receiptly/internal/repository"
	"github.com/leonberkemeier/Receiptly/internal/service"
	"github.com/leonberkemeier/Receiptly/pkg/auth"
	"github.com/leonberkemeier/Receiptly/pkg/config"
	"github.com/leonberkemeier/Receiptly/pkg/logger"
	"github.com/leonberkemeier/Receiptly/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Options{Level: cfg.Logger.Level, Console: true}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	if cfg.Database.RunMigrations {
		if err := postgres.RunMigrations(cfg.Database.URL, appLogger); err != nil {
			appLogger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db, appLogger)
	receiptRepo := repository.NewReceiptRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)

	txService := service.NewTransactionService(txRepo, receiptRepo, logger.Component("transactions"))
	s := &seeder{
		auth:     service.NewAuthService(userRepo, auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration), appLogger),
		receipts: service.NewReceiptService(receiptRepo, txService, logger.Component("receipts")),
		analyzer: service.NewAnalyzeService(nil, nil, appLogger),
		logger:   appLogger,
		now:      time.Now,
	}

	// Images and PDFs need OCR and GigaChat; JSON fixtures never do.
	if cfg.GigaChat.Enabled() {
		if engine, err := tesseract.New(cfg.OCR.Languages...); err != nil {
			appLogger.Warn("OCR engine unavailable, image fixtures will be skipped", zap.Error(err))
		} else {
			defer engine.Close()
			llmService, err := service.NewLLMService(&cfg.GigaChat, logger.Component("llm"))
			if err != nil {
				appLogger.Warn("GigaChat unavailable, image fixtures will be skipped", zap.Error(err))
			} else {
				defer llmService.Close()
				s.analyzer = service.NewAnalyzeService(service.NewOCRService(engine, logger.Component("ocr")), llmService, appLogger)
			}
		}
	}

	appLogger.Info("Starting database seeding...")

	user, err := s.demoUser(ctx,
		getEnv("SEED_USER_NAME", "Demo User"),
		getEnv("SEED_USER_EMAIL", "demo@receiptly.local"),
		getEnv("SEED_USER_PASSWORD", "receiptly-demo"),
	)
	if err != nil {
		appLogger.Fatal("Failed to prepare demo user", zap.Error(err))
	}

	seedDir := getEnv("SEED_DIR", filepath.Join("cmd", "seed", "receipts"))
	cacheFile := filepath.Join(seedDir, ".seed_cache.json")

	cache, err := loadCache(cacheFile)
	if err != nil {
		appLogger.Warn("Failed to load cache, will process all files", zap.Error(err))
		cache = &CacheData{}
	}

	stats, err := s.seedReceipts(ctx, user, seedDir, cache)
	if err != nil {
		appLogger.Fatal("Failed to seed receipts", zap.Error(err))
	}

	if err := saveCache(cacheFile, cache); err != nil {
		appLogger.Warn("Failed to save cache", zap.Error(err))
	}

	appLogger.Info("Database seeding completed",
		zap.String("user", user.Email),
		zap.Int("created", stats.Created),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
