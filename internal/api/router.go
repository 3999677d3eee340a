package api

import (
	"strings"

	"github.com/leonberkemeier/Receiptly/docs"
	"github.com/leonberkemeier/Receiptly/internal/api/handlers"
	"github.com/leonberkemeier/Receiptly/pkg/config"
	"github.com/leonberkemeier/Receiptly/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Receipts     *handlers.ReceiptHandler
	Items        *handlers.ItemHandler
	Transactions *handlers.TransactionHandler
	Health       *handlers.HealthHandler
}

func SetupRouter(
	cfg *config.ServerConfig,
	h Handlers,
	authenticator middleware.Authenticator,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Receiptly API",
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    16 << 20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			} else {
				appLogger.Error("Unhandled error", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	origins := cfg.AllowedOrigins()
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: !containsWildcard(origins),
	}))
	if cfg.Debug {
		app.Use(logger.New())

		_ = docs.SwaggerInfo
		app.Get("/swagger/*", swagger.HandlerDefault)
		appLogger.Info("Swagger UI enabled", zap.String("path", "/swagger/index.html"))
	}

	app.Get("/", h.Health.Root)
	app.Get("/health", h.Health.Health)

	api := app.Group("/api")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)

	requireUser := middleware.AuthMiddleware(authenticator, appLogger)
	authGroup.Get("/me", requireUser, h.Auth.Me)
	authGroup.Post("/logout", requireUser, h.Auth.Logout)

	receipts := api.Group("/receipts", requireUser)
	receipts.Get("/", h.Receipts.ListReceipts)
	receipts.Post("/", h.Receipts.CreateReceipt)
	receipts.Post("/analyze", h.Receipts.AnalyzeReceipt)
	receipts.Get("/:id", h.Receipts.GetReceipt)
	receipts.Put("/:id", h.Receipts.UpdateReceipt)
	receipts.Delete("/:id", h.Receipts.DeleteReceipt)

	items := api.Group("/items", requireUser)
	items.Get("/", h.Items.ListItems)
	items.Post("/", h.Items.CreateItem)
	items.Get("/:id", h.Items.GetItem)
	items.Put("/:id", h.Items.UpdateItem)
	items.Delete("/:id", h.Items.DeleteItem)

	transactions := api.Group("/transactions", requireUser)
	transactions.Get("/", h.Transactions.ListTransactions)
	transactions.Post("/", h.Transactions.CreateTransaction)
	transactions.Get("/stats", h.Transactions.GetStats)
	transactions.Get("/monthly", h.Transactions.GetMonthly)
	transactions.Get("/:id", h.Transactions.GetTransaction)
	transactions.Put("/:id", h.Transactions.UpdateTransaction)
	transactions.Delete("/:id", h.Transactions.DeleteTransaction)

	return app
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
