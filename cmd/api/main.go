package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/resume-analyzer/internal/app"
	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/handlers"
	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.Log)
	logger.Info().Str("env", cfg.Server.Env).Msg("✅ Config loaded successfully")

	ctx := context.Background()

	// Initialize pipeline
	pipeline, err := app.Build(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("❌ Failed to initialize analysis pipeline")
	}
	defer pipeline.Close()

	// Initialize worker
	worker := services.NewWorker(
		pipeline.Analyzer,
		cfg.Worker.Concurrency,
		cfg.Worker.QueueSize,
	)
	worker.Start(ctx)
	logger.Info().Msg("✅ Worker started successfully")

	// Initialize Handlers
	analyzeHandler := handlers.NewAnalyzeHandler(pipeline.Loader, worker)
	logger.Info().Msg("✅ Handlers initialized")

	// Create Fiber app
	server := fiber.New(fiber.Config{
		AppName:      "Resume Analyzer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		// leave headroom for the multipart envelope around the resume
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	server.Use(recover.New())
	server.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	server.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))

	// Routes
	api := server.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"model_id": pipeline.Gemini.ModelID(),
			"cache":    pipeline.Cache != nil,
			"time":     time.Now(),
		})
	})

	// API endpoints
	api.Post("/analyze", analyzeHandler.HandleAnalyze)

	// Root route
	server.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Analyzer API",
			"version": "1.0.0",
			"endpoints": []string{
				"GET /api/v1/health",
				"POST /api/v1/analyze",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info().Msg("🛑 Shutting down server...")
		if err := server.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("❌ Server forced to shutdown")
		}
		worker.Stop()
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info().Str("addr", addr).Msg("🚀 Server starting")

	if err := server.Listen(addr); err != nil {
		logger.Fatal().Err(err).Msg("❌ Failed to start server")
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(models.ErrorResponse{
		Error: err.Error(),
		Code:  code,
	})
}
