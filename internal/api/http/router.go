package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"tradesim/internal/usecasees"
)

func RegisterHTTPEndpoints(
	f *fiber.App,
	accountUseCase *usecasees.AccountUseCase,
	orderUseCase *usecasees.OrderUseCase,
	positionUseCase *usecasees.PositionUseCase,
	quoteUseCase *usecasees.QuoteUseCase,
	logger *logrus.Logger,
) {
	m := NewMiddleware(f)
	m.useMetrics()
	m.useAuth()

	h := NewHandler(f, accountUseCase, orderUseCase, positionUseCase, quoteUseCase, logger)

	api := f.Group("api")
	api.Get("/healthcheck", h.HealthCheck)

	v1 := api.Group("v1")

	v1.Post("/orders", h.PlaceOrder)
	v1.Get("/orders", h.ListOrders)
	v1.Get("/orders/:id", h.GetOrder)
	v1.Patch("/orders/:id", h.OrderAction)
	v1.Delete("/orders/:id", h.DeleteOrder)

	v1.Get("/positions", h.ListPositions)
	v1.Patch("/positions/:id", h.PositionAction)

	v1.Get("/portfolio", h.Portfolio)

	v1.Get("/quotes", h.Quotes)
}
