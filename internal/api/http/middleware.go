package http

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

const userIDKey = "userID"

type Middleware struct {
	appName string
	fiber   *fiber.App
}

func NewMiddleware(fiber *fiber.App) *Middleware {
	return &Middleware{
		fiber: fiber,
	}
}

func (m *Middleware) useMetrics() {
	prometheus := fiberprometheus.New("tradesim")
	prometheus.RegisterAt(m.fiber, "/metrics")
	m.fiber.Use(prometheus.Middleware)
}

// useAuth trusts the upstream authenticator: the X-User-ID header carries the
// authenticated identity. Requests without it get 401 before any handler runs.
func (m *Middleware) useAuth() {
	m.fiber.Use("/api/v1", func(c *fiber.Ctx) error {
		id := c.Get("X-User-ID")
		if id == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{
				Error: "missing X-User-ID header",
			})
		}

		c.Locals(userIDKey, id)

		return c.Next()
	})
}
