package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/sefazor/reelmint-backend/internal/config"
	"github.com/sefazor/reelmint-backend/internal/handler"
	"github.com/sefazor/reelmint-backend/internal/middleware"
	"github.com/sefazor/reelmint-backend/internal/repository"
	"github.com/sefazor/reelmint-backend/internal/service"
	"github.com/sefazor/reelmint-backend/pkg/cache"
	"github.com/sefazor/reelmint-backend/pkg/database"
	"github.com/sefazor/reelmint-backend/pkg/fal"
	"github.com/sefazor/reelmint-backend/pkg/llm"
	"github.com/sefazor/reelmint-backend/pkg/lock"
	"github.com/sefazor/reelmint-backend/pkg/logger"
	"github.com/sefazor/reelmint-backend/pkg/payment"
	"github.com/sefazor/reelmint-backend/pkg/scraper"
	"github.com/sefazor/reelmint-backend/pkg/storage"
	"github.com/sefazor/reelmint-backend/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := config.LoadConfig()

	zapLogger := logger.New(os.Getenv("APP_ENV") == "development")
	defer zapLogger.Sync()

	// Initialize database
	db := database.NewDatabase(cfg.DatabaseURL)
	if err := database.RunMigrations(db); err != nil {
		zapLogger.Fatal("failed to migrate database", zap.Error(err))
	}

	// Redis: generation lock + scrape cache
	redisCache := cache.New(cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}, zapLogger)
	if err := redisCache.Ping(context.Background()); err != nil {
		zapLogger.Fatal("failed to connect to redis", zap.Error(err))
	}
	locker := lock.NewRedisLocker(redisCache.Client(), cfg.Pipeline.LockTTL)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	creditRepo := repository.NewCreditRepository(db)

	// Capability adapters
	scraperClient := scraper.NewClient(cfg.ScraperAPIKey, cfg.Pipeline.ScrapeTimeout, zapLogger)

	gemini, err := llm.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize Gemini client", zap.Error(err))
	}

	falClient := fal.NewClient(fal.Config{
		APIKey:    cfg.FALAPIKey,
		FluxModel: cfg.FALFluxModel,
		VeoModel:  cfg.FALVeoModel,
		Timeout:   cfg.Pipeline.GenerationTimeout,
	}, zapLogger)

	r2Storage, err := storage.NewCloudflareStorage(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize R2 storage", zap.Error(err))
	}

	stripeService := payment.NewStripeService(cfg.Stripe.SecretKey, cfg.Stripe.SuccessURL, cfg.Stripe.CancelURL)

	// Services
	pipelineService := service.NewPipelineService(
		scraperClient,
		gemini,
		gemini,
		falClient,
		falClient,
		r2Storage,
		userRepo,
		projectRepo,
		paymentRepo,
		videoRepo,
		creditRepo,
		locker,
		redisCache,
		cfg.Pipeline,
		zapLogger,
	)
	billingService := service.NewBillingService(stripeService, userRepo, paymentRepo, creditRepo, zapLogger)
	paymentService := service.NewPaymentService(paymentRepo, creditRepo, zapLogger)

	validator := utils.NewValidator()

	// Handlers
	ugcHandler := handler.NewUGCHandler(pipelineService, validator)
	billingHandler := handler.NewBillingHandler(billingService, validator)
	paymentHandler := handler.NewPaymentHandler(paymentService, cfg.Stripe.WebhookSecret, zapLogger)

	// Router
	app := fiber.New(fiber.Config{
		BodyLimit: 2 * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, X-API-Key",
		AllowMethods: "GET, POST",
	}))
	app.Use(fiberlogger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        30,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Stripe webhook (public, signature-verified)
	api.Post("/payments/webhook", paymentHandler.HandleStripeWebhook)

	// Protected routes
	api.Use(middleware.APIKeyMiddleware(cfg.APIKey))
	{
		ugc := api.Group("/ugc")
		ugc.Post("/scrape-product", ugcHandler.ScrapeProduct)
		ugc.Post("/prepare-assets", ugcHandler.PrepareAssets)
		ugc.Post("/generate-video", ugcHandler.GenerateVideo)

		billing := api.Group("/billing")
		billing.Post("/create-checkout", billingHandler.CreateCheckout)
		billing.Post("/check-status", billingHandler.CheckStatus)
	}

	zapLogger.Info("starting server", zap.String("port", cfg.Port))
	log.Fatal(app.Listen(":" + cfg.Port))
}
