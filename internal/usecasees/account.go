package usecasees

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tradesim/internal/repository"
	"tradesim/internal/usecasees/structs"
	"tradesim/models"
)

type AccountUseCase struct {
	accountRepo  repository.AccountRepo
	orderRepo    repository.OrderRepo
	positionRepo repository.PositionRepo

	quoter Quoter

	defaultFunding float64

	logger *logrus.Logger
}

func NewAccountUseCase(
	accountRepo repository.AccountRepo,
	orderRepo repository.OrderRepo,
	positionRepo repository.PositionRepo,
	quoter Quoter,
	defaultFunding float64,
	logger *logrus.Logger,
) *AccountUseCase {
	return &AccountUseCase{
		accountRepo:    accountRepo,
		orderRepo:      orderRepo,
		positionRepo:   positionRepo,
		quoter:         quoter,
		defaultFunding: defaultFunding,
		logger:         logger,
	}
}

// GetOrCreate lazily bootstraps the trading account on the first request for
// a user, funded with the configured default amount.
func (u *AccountUseCase) GetOrCreate(userID string) (*models.Account, error) {
	if userID == "" {
		return nil, models.ErrUnauthorized
	}

	account, err := u.accountRepo.GetByUserID(userID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	account = &models.Account{
		ID:              uuid.NewString(),
		UserID:          userID,
		Balance:         u.defaultFunding,
		AvailableMargin: u.defaultFunding,
		CreatedAt:       time.Now().UTC(),
	}

	if err := u.accountRepo.Store(account); err != nil {
		// two first requests may race the bootstrap; the unique user_id
		// constraint picks the winner
		if existing, getErr := u.accountRepo.GetByUserID(userID); getErr == nil {
			return existing, nil
		}
		return nil, err
	}

	u.logger.WithField("user_id", userID).Info("trading account created")

	return account, nil
}

func (u *AccountUseCase) Portfolio(userID string) (*structs.PortfolioResponse, error) {
	account, err := u.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	positions, err := u.positionRepo.ListByAccount(account.ID)
	if err != nil {
		return nil, err
	}

	views, summary := buildPositionViews(positions, u.quoter, u.logger)

	orders, err := u.orderRepo.ListByAccount(account.ID, "", 20, 0)
	if err != nil {
		return nil, err
	}
	total, err := u.orderRepo.CountByAccount(account.ID, "")
	if err != nil {
		return nil, err
	}

	pending := make([]models.Order, 0)
	for _, order := range orders {
		if order.Status == models.OrderStatusPending {
			pending = append(pending, order)
		}
	}

	recent := orders
	if len(recent) > 5 {
		recent = recent[:5]
	}

	return &structs.PortfolioResponse{
		Account: structs.AccountView{
			Balance:             account.Balance,
			AvailableMargin:     account.AvailableMargin,
			UsedMargin:          account.UsedMargin,
			TotalPortfolioValue: account.Balance + summary.TotalMarketValue,
			MarginUtilization:   account.MarginUtilization(),
		},
		Summary:   summary,
		Positions: views,
		Orders: structs.OrdersBlock{
			Pending: pending,
			Recent:  recent,
			Total:   total,
		},
		IsNewUser:   total == 0 && len(positions) == 0,
		LastUpdated: time.Now().UTC(),
	}, nil
}
