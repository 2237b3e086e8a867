package server

import (
	"context"

	"ai-notecanvas/internal/bootstrap"
	"ai-notecanvas/internal/config"
	"ai-notecanvas/internal/pkg/logger"
	"ai-notecanvas/internal/pkg/serverutils"
	"ai-notecanvas/internal/websocket"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	app    *fiber.App
	cfg    *config.Config
	logger logger.ILogger
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:             10 * 1024 * 1024, // 10MB
		ErrorHandler:          serverutils.NewErrorHandler(container.Logger),
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Content-Disposition",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(serverutils.SuccessResponse("OK", fiber.Map{"persistent": container.Persistent}))
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	registerRoutes(app, cfg, container)

	return &Server{
		app:    app,
		cfg:    cfg,
		logger: container.Logger,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server", "Server is running", map[string]interface{}{
			"address": "http://localhost:" + s.cfg.App.Port,
		})
		errCh <- s.app.Listen(":" + s.cfg.App.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("Server", "Shutting down", nil)
		return s.app.Shutdown()
	}
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	auth := serverutils.NewJwtMiddleware(cfg.Keys.AuthSecret)

	websocket.RegisterRoutes(app, c.WebSocketHub, auth)

	api := app.Group("/api", auth)

	c.CanvasController.RegisterRoutes(api)
	c.ConnectController.RegisterRoutes(api)
	c.ChatController.RegisterRoutes(api)
	c.WorkspaceController.RegisterRoutes(api)
	c.AnalysisController.RegisterRoutes(api)
	c.ExportController.RegisterRoutes(api)
}
