package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/georgeshao/results-proxy/internal/relay"
)

func SetupRoutes(app *fiber.App, r *relay.Relay) {
	h := NewHandler(r)

	app.Get("/", h.GetResults)
	app.Get("/results", h.GetResults)
	app.Get("/.netlify/functions/proxy", h.GetResults)

	app.Get("/health", h.Health)
}
