package usecasees

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"tradesim/internal/repository"
	"tradesim/internal/usecasees/structs"
	"tradesim/models"
)

type PositionUseCase struct {
	accountUseCase *AccountUseCase
	orderUseCase   *OrderUseCase

	accountRepo  repository.AccountRepo
	positionRepo repository.PositionRepo

	quoter Quoter

	logger *logrus.Logger
}

func NewPositionUseCase(
	accountUseCase *AccountUseCase,
	orderUseCase *OrderUseCase,
	accountRepo repository.AccountRepo,
	positionRepo repository.PositionRepo,
	quoter Quoter,
	logger *logrus.Logger,
) *PositionUseCase {
	return &PositionUseCase{
		accountUseCase: accountUseCase,
		orderUseCase:   orderUseCase,
		accountRepo:    accountRepo,
		positionRepo:   positionRepo,
		quoter:         quoter,
		logger:         logger,
	}
}

// List returns all open positions marked to the latest quote, with portfolio
// aggregates. The refreshed PnL is persisted as a side effect so the stored
// rows stay close to the truth between requests.
func (u *PositionUseCase) List(userID string) (*structs.PositionsResponse, error) {
	account, err := u.accountUseCase.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	positions, err := u.positionRepo.ListByAccount(account.ID)
	if err != nil {
		return nil, err
	}

	views, summary := buildPositionViews(positions, u.quoter, u.logger)

	for i := range views {
		if err := u.positionRepo.UpdatePnL(views[i].ID, views[i].UnrealizedPnL, views[i].DayPnL); err != nil {
			u.logger.WithError(err).WithField("position_id", views[i].ID).Warn("pnl refresh not persisted")
		}
	}

	return &structs.PositionsResponse{
		Positions:   views,
		Summary:     summary,
		IsNewUser:   len(positions) == 0,
		LastUpdated: time.Now().UTC(),
	}, nil
}

// Close flattens a position by placing the opposite-side MARKET order through
// the normal pipeline: the exit is a real order with its own delayed fill.
func (u *PositionUseCase) Close(positionID, userID string) (*structs.ActionResponse, error) {
	position, err := u.getOwned(positionID, userID)
	if err != nil {
		return nil, err
	}

	side := models.SideSell
	if position.Quantity < 0 {
		side = models.SideBuy
	}

	placed, err := u.orderUseCase.Place(userID, &structs.PlaceOrderRequest{
		Symbol:      position.Symbol,
		Quantity:    int64(math.Abs(float64(position.Quantity))),
		OrderType:   models.OrderTypeMarket,
		OrderSide:   side,
		ProductType: models.ProductIntraday,
	})
	if err != nil {
		return nil, err
	}

	u.logger.WithFields(logrus.Fields{
		"position_id": positionID,
		"order_id":    placed.OrderID,
	}).Info("position close order placed")

	return &structs.ActionResponse{
		Success: true,
		Message: fmt.Sprintf("Close order placed for %s", position.Symbol),
		OrderID: placed.OrderID,
	}, nil
}

func (u *PositionUseCase) UpdateStopLoss(positionID, userID string, stopLoss *float64) error {
	if _, err := u.getOwned(positionID, userID); err != nil {
		return err
	}

	if stopLoss != nil && *stopLoss <= 0 {
		return fmt.Errorf("%w: stopLoss must be positive", models.ErrValidation)
	}

	return u.positionRepo.UpdateStopLoss(positionID, stopLoss)
}

func (u *PositionUseCase) UpdateTarget(positionID, userID string, target *float64) error {
	if _, err := u.getOwned(positionID, userID); err != nil {
		return err
	}

	if target != nil && *target <= 0 {
		return fmt.Errorf("%w: target must be positive", models.ErrValidation)
	}

	return u.positionRepo.UpdateTarget(positionID, target)
}

// RefreshAll marks every open position to market. Run from the cron job.
func (u *PositionUseCase) RefreshAll() {
	positions, err := u.positionRepo.ListOpen()
	if err != nil {
		u.logger.WithError(err).Error("position refresh: list failed")
		return
	}

	for i := range positions {
		position := &positions[i]

		quote, err := u.quoter.LastPrice(position.Symbol)
		if err != nil {
			u.logger.WithField("symbol", position.Symbol).Debug("position refresh: quote unavailable")
			continue
		}

		position.MarkToMarket(quote.LTP, quote.Change)

		if err := u.positionRepo.UpdatePnL(position.ID, position.UnrealizedPnL, position.DayPnL); err != nil {
			u.logger.WithError(err).WithField("position_id", position.ID).Warn("position refresh: update failed")
		}
	}
}

func (u *PositionUseCase) getOwned(positionID, userID string) (*models.Position, error) {
	if userID == "" {
		return nil, models.ErrUnauthorized
	}

	position, err := u.positionRepo.GetByID(positionID)
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

	if position.AccountID != account.ID {
		return nil, models.ErrForbidden
	}

	return position, nil
}

// buildPositionViews marks positions to the latest quote and aggregates the
// portfolio summary. A position whose quote is unavailable is valued at its
// average price so totals stay defined.
func buildPositionViews(positions []models.Position, quoter Quoter, logger *logrus.Logger) ([]structs.PositionView, structs.PositionsSummary) {
	views := make([]structs.PositionView, 0, len(positions))

	summary := structs.PositionsSummary{
		TotalPositions: len(positions),
	}

	for i := range positions {
		position := positions[i]

		currentPrice := position.AveragePrice
		changePercent := float64(0)
		dayChange := float64(0)

		quote, err := quoter.LastPrice(position.Symbol)
		if err != nil {
			logger.WithField("symbol", position.Symbol).Debug("quote unavailable, valuing at average price")
		} else {
			currentPrice = quote.LTP
			changePercent = quote.ChangePercent
			dayChange = quote.Change
		}

		position.MarkToMarket(currentPrice, dayChange)

		invested := position.InvestedValue()
		market := position.MarketValue(currentPrice)

		view := structs.PositionView{
			Position:      position,
			CurrentPrice:  currentPrice,
			ChangePercent: changePercent,
			InvestedValue: invested,
			MarketValue:   market,
			PositionType:  "LONG",
		}
		if position.Quantity < 0 {
			view.PositionType = "SHORT"
		}
		if invested > 0 {
			view.UnrealizedPnLPercent = position.UnrealizedPnL / invested * 100
			view.DayPnLPercent = position.DayPnL / invested * 100
		}

		summary.TotalInvested += invested
		summary.TotalMarketValue += market
		summary.TotalUnrealizedPnL += position.UnrealizedPnL
		summary.TotalDayPnL += position.DayPnL

		if summary.BestPerformer == nil || view.UnrealizedPnLPercent > summary.BestPerformer.UnrealizedPnLPercent {
			summary.BestPerformer = &structs.PerformerRef{
				Symbol:               position.Symbol,
				UnrealizedPnLPercent: view.UnrealizedPnLPercent,
			}
		}
		if summary.WorstPerformer == nil || view.UnrealizedPnLPercent < summary.WorstPerformer.UnrealizedPnLPercent {
			summary.WorstPerformer = &structs.PerformerRef{
				Symbol:               position.Symbol,
				UnrealizedPnLPercent: view.UnrealizedPnLPercent,
			}
		}

		views = append(views, view)
	}

	if summary.TotalInvested > 0 {
		summary.TotalReturnPercent = summary.TotalUnrealizedPnL / summary.TotalInvested * 100
		summary.DayReturnPercent = summary.TotalDayPnL / summary.TotalInvested * 100
	}

	return views, summary
}
