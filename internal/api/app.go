package api

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/georgeshao/results-proxy/internal/relay"
)

type AppConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// AccessLog receives one line per request; nil disables access logging.
	AccessLog io.Writer
}

func NewApp(r *relay.Relay, cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           cfg.IdleTimeout,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	if cfg.AccessLog != nil {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
			Output: cfg.AccessLog,
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,HEAD,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	// cors only answers requests carrying an Origin header; the wildcard is
	// sent unconditionally.
	app.Use(func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		return c.Next()
	})

	SetupRoutes(app, r)

	return app
}
