package usecasees_test

import (
	"io"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"tradesim/internal/controllers"
	"tradesim/internal/repository/sqlite"
	"tradesim/internal/usecasees"
	"tradesim/internal/usecasees/structs"
	"tradesim/models"
)

const testFunding = 1000000.0

type testEnv struct {
	conn *sqlx.DB

	accountRepo  *sqlite.AccountRepository
	orderRepo    *sqlite.OrderRepository
	positionRepo *sqlite.PositionRepository
	priceRepo    *sqlite.PriceRepository
	ledgerRepo   *sqlite.LedgerRepository

	quote     *usecasees.QuoteUseCase
	scheduler *usecasees.ExecutionScheduler
	accounts  *usecasees.AccountUseCase
	orders    *usecasees.OrderUseCase
	positions *usecasees.PositionUseCase
}

// newTestEnv wires the full stack onto an in-memory store. The scheduler delay
// is an hour so fills only happen when a test calls Execute itself.
func newTestEnv(t *testing.T, tgm controllers.TgmCtrl) *testEnv {
	t.Helper()

	conn, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, sqlite.Migrate(conn))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	env := &testEnv{
		conn:         conn,
		accountRepo:  sqlite.NewAccountRepository(conn),
		orderRepo:    sqlite.NewOrderRepository(conn),
		positionRepo: sqlite.NewPositionRepository(conn),
		priceRepo:    sqlite.NewPriceRepository(conn),
		ledgerRepo:   sqlite.NewLedgerRepository(conn),
	}

	instruments := usecasees.DefaultInstruments()

	env.quote = usecasees.NewQuoteUseCase(instruments, env.priceRepo, 1, logger)

	env.scheduler = usecasees.NewExecutionScheduler(
		env.orderRepo,
		env.ledgerRepo,
		tgm,
		nil,
		time.Hour,
		time.Hour,
		0.001,
		1,
		logger,
	)
	t.Cleanup(env.scheduler.Stop)

	env.accounts = usecasees.NewAccountUseCase(
		env.accountRepo,
		env.orderRepo,
		env.positionRepo,
		env.quote,
		testFunding,
		logger,
	)

	env.orders = usecasees.NewOrderUseCase(
		env.accounts,
		env.accountRepo,
		env.orderRepo,
		env.positionRepo,
		env.ledgerRepo,
		usecasees.NewMarginCalculator(instruments),
		env.quote,
		env.scheduler,
		tgm,
		nil,
		logger,
	)

	env.positions = usecasees.NewPositionUseCase(
		env.accounts,
		env.orders,
		env.accountRepo,
		env.positionRepo,
		env.quote,
		logger,
	)

	return env
}

func (e *testEnv) account(t *testing.T, userID string) *models.Account {
	t.Helper()

	account, err := e.accountRepo.GetByUserID(userID)
	require.NoError(t, err)

	return account
}

func limitBuy(symbol string, quantity int64, price float64) *structs.PlaceOrderRequest {
	return &structs.PlaceOrderRequest{
		Symbol:    symbol,
		Quantity:  quantity,
		Price:     &price,
		OrderType: models.OrderTypeLimit,
		OrderSide: models.SideBuy,
	}
}

func limitSell(symbol string, quantity int64, price float64) *structs.PlaceOrderRequest {
	return &structs.PlaceOrderRequest{
		Symbol:    symbol,
		Quantity:  quantity,
		Price:     &price,
		OrderType: models.OrderTypeLimit,
		OrderSide: models.SideSell,
	}
}
