package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"tradesim/internal/usecasees"
	"tradesim/internal/usecasees/structs"
	"tradesim/models"
)

type Handler struct {
	fiber *fiber.App

	accountUseCase  *usecasees.AccountUseCase
	orderUseCase    *usecasees.OrderUseCase
	positionUseCase *usecasees.PositionUseCase
	quoteUseCase    *usecasees.QuoteUseCase

	logger *logrus.Logger
}

func NewHandler(
	f *fiber.App,
	accountUseCase *usecasees.AccountUseCase,
	orderUseCase *usecasees.OrderUseCase,
	positionUseCase *usecasees.PositionUseCase,
	quoteUseCase *usecasees.QuoteUseCase,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		fiber:           f,
		accountUseCase:  accountUseCase,
		orderUseCase:    orderUseCase,
		positionUseCase: positionUseCase,
		quoteUseCase:    quoteUseCase,
		logger:          logger,
	}
}

func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	body := struct {
		Status bool `json:"status"`
	}{
		Status: true,
	}

	return c.JSON(body)
}

func (h *Handler) PlaceOrder(c *fiber.Ctx) error {
	var req structs.PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: %s", models.ErrValidation, err.Error()))
	}

	resp, err := h.orderUseCase.Place(userID(c), &req)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *Handler) ListOrders(c *fiber.Ctx) error {
	resp, err := h.orderUseCase.List(
		userID(c),
		c.Query("status"),
		c.QueryInt("page", 1),
		c.QueryInt("limit", 50),
	)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(resp)
}

func (h *Handler) GetOrder(c *fiber.Ctx) error {
	order, err := h.orderUseCase.Get(c.Params("id"), userID(c))
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(order)
}

func (h *Handler) OrderAction(c *fiber.Ctx) error {
	var req structs.OrderActionRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: %s", models.ErrValidation, err.Error()))
	}

	orderID := c.Params("id")

	switch req.Action {
	case structs.OrderActionCancel:
		if err := h.orderUseCase.Cancel(orderID, userID(c)); err != nil {
			return h.respondError(c, err)
		}
		return c.JSON(structs.ActionResponse{Success: true, Message: "Order cancelled", OrderID: orderID})

	case structs.OrderActionModify:
		if err := h.orderUseCase.Modify(orderID, userID(c), &req); err != nil {
			return h.respondError(c, err)
		}
		return c.JSON(structs.ActionResponse{Success: true, Message: "Order modified", OrderID: orderID})

	default:
		return h.respondError(c, fmt.Errorf("%w: unknown action %q", models.ErrValidation, req.Action))
	}
}

func (h *Handler) DeleteOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")

	if err := h.orderUseCase.Delete(orderID, userID(c)); err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(structs.ActionResponse{Success: true, Message: "Order deleted", OrderID: orderID})
}

func (h *Handler) ListPositions(c *fiber.Ctx) error {
	resp, err := h.positionUseCase.List(userID(c))
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(resp)
}

func (h *Handler) PositionAction(c *fiber.Ctx) error {
	var req structs.PositionActionRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: %s", models.ErrValidation, err.Error()))
	}

	positionID := c.Params("id")

	switch req.Action {
	case structs.PositionActionClose:
		resp, err := h.positionUseCase.Close(positionID, userID(c))
		if err != nil {
			return h.respondError(c, err)
		}
		return c.JSON(resp)

	case structs.PositionActionUpdateStopLoss:
		if err := h.positionUseCase.UpdateStopLoss(positionID, userID(c), req.StopLoss); err != nil {
			return h.respondError(c, err)
		}
		return c.JSON(structs.ActionResponse{Success: true, Message: "Stop loss updated"})

	case structs.PositionActionUpdateTarget:
		if err := h.positionUseCase.UpdateTarget(positionID, userID(c), req.Target); err != nil {
			return h.respondError(c, err)
		}
		return c.JSON(structs.ActionResponse{Success: true, Message: "Target updated"})

	default:
		return h.respondError(c, fmt.Errorf("%w: unknown action %q", models.ErrValidation, req.Action))
	}
}

func (h *Handler) Portfolio(c *fiber.Ctx) error {
	resp, err := h.accountUseCase.Portfolio(userID(c))
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(resp)
}

func (h *Handler) Quotes(c *fiber.Ctx) error {
	raw := c.Query("symbols")
	if raw == "" {
		return h.respondError(c, fmt.Errorf("%w: symbols query parameter required", models.ErrValidation))
	}

	symbols := strings.Split(raw, ",")
	for i := range symbols {
		symbols[i] = strings.ToUpper(strings.TrimSpace(symbols[i]))
	}

	body := struct {
		Quotes []structs.Quote `json:"quotes"`
	}{
		Quotes: h.quoteUseCase.Quotes(symbols),
	}

	return c.JSON(body)
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrInsufficientMargin),
		errors.Is(err, models.ErrInsufficientPosition),
		errors.Is(err, models.ErrQuoteUnavailable):
		status = fiber.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, models.ErrOrderNotPending):
		status = fiber.StatusConflict
	default:
		h.logger.WithError(err).WithField("path", c.Path()).Error("request failed")
	}

	return c.Status(status).JSON(errorResponse{Error: err.Error()})
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}
