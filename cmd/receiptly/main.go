package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leonberkemeier/Receiptly/internal/api"
	"github.com/leonberkemeier/Receiptly/internal/api/handlers"
	"github.com/leonberkemeier/Receiptly/internal/ocr/tesseract"
	"github.com/leonberkemeier/Receiptly/internal/repository"
	"github.com/leonberkemeier/Receiptly/internal/service"
	"github.com/leonberkemeier/Receiptly/pkg/auth"
	"github.com/leonberkemeier/Receiptly/pkg/config"
	"github.com/leonberkemeier/Receiptly/pkg/logger"
	"github.com/leonberkemeier/Receiptly/pkg/postgres"

	"go.uber.org/zap"
)

// @title Receiptly API
// @version 1.0
// @description Receipt and personal finance tracking backend

// @host localhost:8000
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(logger.Options{Level: cfg.Logger.Level, Console: cfg.Server.Debug}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting Receiptly API")

	if cfg.Database.RunMigrations {
		if err := postgres.RunMigrations(cfg.Database.URL, appLogger); err != nil {
			appLogger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	receiptRepo := repository.NewReceiptRepository(db, appLogger)
	itemRepo := repository.NewItemRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, logger.Component("auth"))
	txService := service.NewTransactionService(txRepo, receiptRepo, logger.Component("transactions"))
	receiptService := service.NewReceiptService(receiptRepo, txService, logger.Component("receipts"))
	itemService := service.NewItemService(itemRepo, receiptRepo, logger.Component("items"))
	analyzeService := newAnalyzeService(cfg, appLogger)

	// Setup router
	app := api.SetupRouter(&cfg.Server, api.Handlers{
		Auth:         handlers.NewAuthHandler(authService, appLogger),
		Receipts:     handlers.NewReceiptHandler(receiptService, analyzeService.AnalyzeService, appLogger),
		Items:        handlers.NewItemHandler(itemService, appLogger),
		Transactions: handlers.NewTransactionHandler(txService, appLogger),
		Health:       handlers.NewHealthHandler(db, appLogger),
	}, authService, appLogger)

	// Start server
	go func() {
		addr := cfg.Server.Addr()
		appLogger.Info("Server starting", zap.String("address", addr), zap.Bool("debug", cfg.Server.Debug))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
	analyzeService.Close()
}

// newAnalyzeService wires OCR and GigaChat when both are available. A missing
// piece leaves the analyze endpoint disabled instead of failing startup.
func newAnalyzeService(cfg *config.Config, appLogger *zap.Logger) *analyzer {
	a := &analyzer{}
	if !cfg.GigaChat.Enabled() {
		appLogger.Info("GIGACHAT_API_KEY not set, receipt analysis disabled")
		a.AnalyzeService = service.NewAnalyzeService(nil, nil, appLogger)
		return a
	}

	engine, err := tesseract.New(cfg.OCR.Languages...)
	if err != nil {
		appLogger.Warn("OCR engine unavailable, receipt analysis disabled", zap.Error(err))
		a.AnalyzeService = service.NewAnalyzeService(nil, nil, appLogger)
		return a
	}
	a.engine = engine

	llmService, err := service.NewLLMService(&cfg.GigaChat, logger.Component("llm"))
	if err != nil {
		appLogger.Warn("GigaChat unavailable, receipt analysis disabled", zap.Error(err))
		a.AnalyzeService = service.NewAnalyzeService(nil, nil, appLogger)
		return a
	}
	a.llm = llmService

	ocrService := service.NewOCRService(engine, logger.Component("ocr"))
	a.AnalyzeService = service.NewAnalyzeService(ocrService, llmService, logger.Component("analyze"))
	appLogger.Info("Receipt analysis enabled", zap.Strings("languages", cfg.OCR.Languages))
	return a
}

type analyzer struct {
	*service.AnalyzeService
	engine tesseract.Engine
	llm    *service.LLMService
}

func (a *analyzer) Close() {
	if a.llm != nil {
		_ = a.llm.Close()
	}
	if a.engine != nil {
		_ = a.engine.Close()
	}
}
