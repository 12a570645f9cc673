package usecasees

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tradesim/internal/controllers"
	"tradesim/internal/repository"
	"tradesim/internal/usecasees/structs"
	"tradesim/models"
)

type OrderUseCase struct {
	accountUseCase *AccountUseCase

	accountRepo  repository.AccountRepo
	orderRepo    repository.OrderRepo
	positionRepo repository.PositionRepo
	ledgerRepo   repository.LedgerRepo

	margin *MarginCalculator
	quoter Quoter

	scheduler *ExecutionScheduler

	tgmController controllers.TgmCtrl

	metrics structs.Metrics

	logger *logrus.Logger
}

func NewOrderUseCase(
	accountUseCase *AccountUseCase,
	accountRepo repository.AccountRepo,
	orderRepo repository.OrderRepo,
	positionRepo repository.PositionRepo,
	ledgerRepo repository.LedgerRepo,
	margin *MarginCalculator,
	quoter Quoter,
	scheduler *ExecutionScheduler,
	tgmController controllers.TgmCtrl,
	metrics structs.Metrics,
	logger *logrus.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		accountUseCase: accountUseCase,
		accountRepo:    accountRepo,
		orderRepo:      orderRepo,
		positionRepo:   positionRepo,
		ledgerRepo:     ledgerRepo,
		margin:         margin,
		quoter:         quoter,
		scheduler:      scheduler,
		tgmController:  tgmController,
		metrics:        metrics,
		logger:         logger,
	}
}

// Place admits an order: structural validation, sizing checks, atomic
// persist-with-reservation, then a scheduled asynchronous fill. The response
// reports PENDING; callers poll order status for the outcome.
func (u *OrderUseCase) Place(userID string, req *structs.PlaceOrderRequest) (*structs.PlaceOrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account, err := u.accountUseCase.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	// reference price: the limit price when given, otherwise a live quote.
	// A MARKET order that cannot price itself fails here, before any ledger
	// mutation.
	refPrice := float64(0)
	if req.Price != nil {
		refPrice = *req.Price
	} else {
		quote, err := u.quoter.LastPrice(req.Symbol)
		if err != nil {
			return nil, err
		}
		refPrice = quote.LTP
	}

	order := &models.Order{
		ID:          uuid.NewString(),
		AccountID:   account.ID,
		Symbol:      req.Symbol,
		Quantity:    req.Quantity,
		Price:       req.Price,
		OrderType:   req.OrderType,
		Side:        req.OrderSide,
		ProductType: req.ProductType,
		Status:      models.OrderStatusPending,
		CreatedAt:   time.Now().UTC(),
	}

	switch req.OrderSide {
	case models.SideBuy:
		required := u.margin.Required(req.Symbol, req.Quantity, refPrice, req.ProductType)
		if account.AvailableMargin < required {
			return nil, fmt.Errorf("%w: required %.2f, available %.2f",
				models.ErrInsufficientMargin, required, account.AvailableMargin)
		}
		order.Margin = required

	case models.SideSell:
		position, err := u.positionRepo.GetBySymbol(account.ID, req.Symbol)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, fmt.Errorf("%w: no open position in %s", models.ErrInsufficientPosition, req.Symbol)
			}
			return nil, err
		}
		if position.Quantity < req.Quantity {
			return nil, fmt.Errorf("%w: held %d, requested %d",
				models.ErrInsufficientPosition, position.Quantity, req.Quantity)
		}
	}

	if err := u.ledgerRepo.PlaceOrder(order); err != nil {
		return nil, err
	}

	u.metrics.Inc(structs.MetricOrderPlaced)

	u.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"symbol":   order.Symbol,
		"side":     order.Side,
		"quantity": order.Quantity,
	}).Info("order placed")

	u.scheduler.Schedule(order, refPrice)

	return &structs.PlaceOrderResponse{
		Success:        true,
		OrderID:        order.ID,
		Message:        "Order placed successfully",
		EstimatedPrice: refPrice,
	}, nil
}

func (u *OrderUseCase) Cancel(orderID, userID string) error {
	if _, err := u.getOwned(orderID, userID); err != nil {
		return err
	}

	order, err := u.ledgerRepo.CancelOrder(orderID)
	if err != nil {
		return err
	}

	u.scheduler.Forget(orderID)
	u.metrics.Inc(structs.MetricOrderCancelled)

	u.logger.WithField("order_id", orderID).Info("order cancelled")

	u.notify(fmt.Sprintf("[ Cancelled ]\n%s %s x%d", order.Symbol, order.Side, order.Quantity))

	return nil
}

// Modify updates price/quantity in place while the order is PENDING. The
// margin reservation is deliberately left untouched.
func (u *OrderUseCase) Modify(orderID, userID string, req *structs.OrderActionRequest) error {
	order, err := u.getOwned(orderID, userID)
	if err != nil {
		return err
	}

	if req.Price != nil && *req.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", models.ErrValidation)
	}

	quantity := order.Quantity
	if req.Quantity != 0 {
		if req.Quantity < structs.MinQuantity || req.Quantity > structs.MaxQuantity {
			return fmt.Errorf("%w: quantity must be between %d and %d",
				models.ErrValidation, structs.MinQuantity, structs.MaxQuantity)
		}
		quantity = req.Quantity
	}

	return u.orderRepo.UpdatePriceQuantity(orderID, req.Price, quantity)
}

// Delete removes an order in any state; a still-pending BUY releases its
// reservation first.
func (u *OrderUseCase) Delete(orderID, userID string) error {
	if _, err := u.getOwned(orderID, userID); err != nil {
		return err
	}

	if err := u.ledgerRepo.DeleteOrder(orderID); err != nil {
		return err
	}

	u.scheduler.Forget(orderID)

	u.logger.WithField("order_id", orderID).Info("order deleted")

	return nil
}

func (u *OrderUseCase) Get(orderID, userID string) (*models.Order, error) {
	return u.getOwned(orderID, userID)
}

func (u *OrderUseCase) List(userID, status string, page, limit int) (*structs.OrdersResponse, error) {
	account, err := u.accountUseCase.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	orders, err := u.orderRepo.ListByAccount(account.ID, status, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	total, err := u.orderRepo.CountByAccount(account.ID, status)
	if err != nil {
		return nil, err
	}

	return &structs.OrdersResponse{
		Orders: orders,
		Pagination: structs.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
		},
	}, nil
}

func (u *OrderUseCase) getOwned(orderID, userID string) (*models.Order, error) {
	if userID == "" {
		return nil, models.ErrUnauthorized
	}

	order, err := u.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	account, err := u.accountRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrForbidden
		}
		return nil, err
	}

	if order.AccountID != account.ID {
		return nil, models.ErrForbidden
	}

	return order, nil
}

func (u *OrderUseCase) notify(text string) {
	if u.tgmController == nil {
		return
	}
	if err := u.tgmController.Send(text); err != nil {
		u.logger.WithError(err).Debug("telegram notification failed")
	}
}
