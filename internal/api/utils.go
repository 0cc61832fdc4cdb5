package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/georgeshao/results-proxy/internal/envelope"
	"github.com/georgeshao/results-proxy/pkg/types"
)

const HeaderInvocationID = "X-Invocation-Id"

func writeEnvelope(c *fiber.Ctx, env types.Envelope) error {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	return c.Status(env.StatusCode).JSON(env)
}

// ErrorHandler turns framework errors (unknown routes, recovered panics)
// into the same error envelope the results route produces.
func ErrorHandler(c *fiber.Ctx, err error) error {
	env := envelope.Failure(err)

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		env.StatusCode = fiberErr.Code
	}

	return writeEnvelope(c, env)
}
