package repository

import (
	"time"

	"tradesim/models"
)

//go:generate mockery --case=snake --name=AccountRepo
//go:generate mockery --case=snake --name=OrderRepo
//go:generate mockery --case=snake --name=PositionRepo
//go:generate mockery --case=snake --name=PriceRepo
//go:generate mockery --case=snake --name=LedgerRepo
//go:generate mockery --case=snake --name=InstrumentsRepo

type AccountRepo interface {
	Store(a *models.Account) error
	GetByID(id string) (*models.Account, error)
	GetByUserID(userID string) (*models.Account, error)
}

type OrderRepo interface {
	GetByID(id string) (*models.Order, error)
	ListByAccount(accountID, status string, limit, offset int) ([]models.Order, error)
	CountByAccount(accountID, status string) (int, error)
	// UpdatePriceQuantity modifies the order in place, guarded on PENDING
	// status. Returns models.ErrOrderNotPending when the guard fails.
	UpdatePriceQuantity(id string, price *float64, quantity int64) error
}

type PositionRepo interface {
	GetByID(id string) (*models.Position, error)
	GetBySymbol(accountID, symbol string) (*models.Position, error)
	ListByAccount(accountID string) ([]models.Position, error)
	ListOpen() ([]models.Position, error)
	UpdatePnL(id string, unrealized, day float64) error
	// UpdateStopLoss and UpdateTarget accept nil to clear the level.
	UpdateStopLoss(id string, stopLoss *float64) error
	UpdateTarget(id string, target *float64) error
}

type PriceRepo interface {
	Store(p *models.Price) error
	GetLast(symbol string) (*models.Price, error)
	GetDayOpen(symbol string, day time.Time) (*models.Price, error)
}

// LedgerRepo is the atomic read-modify-write path for everything that touches
// account margin fields or position rows together with an order transition.
// Each method runs as a single all-or-nothing transaction; order status
// transitions inside are compare-and-swap on PENDING.
type LedgerRepo interface {
	// PlaceOrder persists a PENDING order and, when o.Margin > 0, moves that
	// amount from available to used margin. Fails with
	// models.ErrInsufficientMargin without inserting when the account lacks
	// capacity.
	PlaceOrder(o *models.Order) error

	// CancelOrder transitions PENDING -> CANCELLED and releases the stored
	// reservation for BUY orders. Returns models.ErrOrderNotPending when the
	// order already reached a terminal state.
	CancelOrder(id string) (*models.Order, error)

	// DeleteOrder removes the order in any state, releasing the reservation
	// first when one is still held.
	DeleteOrder(id string) error

	// CompleteOrder transitions PENDING -> COMPLETED with the fill details
	// and applies the fill to the (account, symbol) position, crediting
	// realized PnL to the account balance on a flatten. Returns
	// models.ErrOrderNotPending when the scheduler lost the race.
	CompleteOrder(id string, execPrice float64, executedAt time.Time) (*models.Order, error)
}

type InstrumentsRepo interface {
	SetDefault() error
	Load(symbol string) (*models.Instrument, error)
	List() ([]models.Instrument, error)
}
