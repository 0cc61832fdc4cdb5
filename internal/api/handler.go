package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/georgeshao/results-proxy/internal/relay"
	"github.com/georgeshao/results-proxy/pkg/types"
)

type Handler struct {
	relay *relay.Relay
}

func NewHandler(r *relay.Relay) *Handler {
	return &Handler{
		relay: r,
	}
}

// GetResults handles GET / and GET /results
func (h *Handler) GetResults(c *fiber.Ctx) error {
	invocationID := "inv_" + uuid.New().String()
	statusFilter := strings.TrimSpace(c.Query("status"))

	env := h.relay.Handle(c.UserContext(), invocationID, statusFilter)

	c.Set(HeaderInvocationID, invocationID)
	return writeEnvelope(c, env)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(types.HealthResponse{Status: "ok"})
}
