package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/handlers"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

func main() {
	cfg := config.Load()

	zlog, err := buildLogger(cfg.Server.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer zlog.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}
	zlog.Info("database connected and migrated")

	screeningRepo := repositories.NewScreeningRepository(db)
	docRepo := repositories.NewDocumentRepository(db)

	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		zlog.Fatal("failed to create upload directory", zap.Error(err))
	}

	pdfParser := services.NewPDFParserService()

	geminiService, err := services.NewGeminiService(cfg.Gemini, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize Gemini client", zap.Error(err))
	}
	zlog.Info("gemini client initialized", zap.String("model", cfg.Gemini.Model))

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		zlog.Fatal("failed to initialize Qdrant", zap.Error(err))
	}

	if err := qdrantService.InitCollection(); err != nil {
		zlog.Fatal("failed to initialize Qdrant collection", zap.Error(err))
	}
	zlog.Info("qdrant collection ready", zap.String("collection", cfg.Qdrant.Collection))

	extractor := services.NewStructuredExtractor(geminiService, cfg.Worker.RetryMaxAttempts, zlog)
	matcher := services.NewMatcher(geminiService, cfg.Worker.RetryMaxAttempts, zlog)
	screener := services.NewScreener(pdfParser, extractor, matcher, zlog)
	candidateIndex := services.NewCandidateIndex(geminiService, qdrantService, zlog)

	worker := services.NewWorker(
		screeningRepo,
		docRepo,
		screener,
		pdfParser,
		candidateIndex,
		cfg.Worker.Concurrency,
		zlog,
	)

	ctx := context.Background()
	worker.Start(ctx)

	screeningHandler := handlers.NewScreeningHandler(
		screeningRepo,
		docRepo,
		storageService,
		pdfParser,
		worker,
		cfg.Storage.MaxFileSize,
	)
	searchHandler := handlers.NewSearchHandler(candidateIndex)

	app := fiber.New(fiber.Config{
		AppName:      "AI Resume Screener API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		// Ten resumes plus a JD can arrive in one request
		BodyLimit:    int(cfg.Storage.MaxFileSize) * (services.MaxResumes + 1),
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/screenings", screeningHandler.HandleSubmit)
	api.Get("/screenings/:id", screeningHandler.HandleGetResult)
	api.Get("/candidates/search", searchHandler.HandleSearch)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "AI Resume Screener API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/screenings",
				"GET /api/v1/screenings/:id",
				"GET /api/v1/candidates/search",
			},
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("shutting down server")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			zlog.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

func buildLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
