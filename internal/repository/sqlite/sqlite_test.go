package sqlite_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradesim/internal/repository/sqlite"
	"tradesim/models"
)

func newConn(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, sqlite.Migrate(conn))

	return conn
}

func storeAccount(t *testing.T, conn *sqlx.DB, userID string) *models.Account {
	t.Helper()

	account := &models.Account{
		ID:              uuid.NewString(),
		UserID:          userID,
		Balance:         100000,
		AvailableMargin: 100000,
		CreatedAt:       time.Now().UTC(),
	}
	require.NoError(t, sqlite.NewAccountRepository(conn).Store(account))

	return account
}

func TestAccountRepository(t *testing.T) {
	conn := newConn(t)
	repo := sqlite.NewAccountRepository(conn)

	account := storeAccount(t, conn, "alice")

	t.Run("lookup by user", func(t *testing.T) {
		got, err := repo.GetByUserID("alice")
		require.NoError(t, err)
		assert.Equal(t, account.ID, got.ID)
	})

	t.Run("one account per user", func(t *testing.T) {
		err := repo.Store(&models.Account{
			ID:        uuid.NewString(),
			UserID:    "alice",
			CreatedAt: time.Now().UTC(),
		})
		assert.Error(t, err)
	})

	t.Run("unknown user not found", func(t *testing.T) {
		_, err := repo.GetByUserID("nobody")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestOrderRepositoryUpdatePriceQuantity(t *testing.T) {
	conn := newConn(t)
	account := storeAccount(t, conn, "alice")

	orders := sqlite.NewOrderRepository(conn)
	ledger := sqlite.NewLedgerRepository(conn)

	price := 100.0
	order := &models.Order{
		ID:          uuid.NewString(),
		AccountID:   account.ID,
		Symbol:      "NIFTY",
		Quantity:    10,
		Price:       &price,
		OrderType:   models.OrderTypeLimit,
		Side:        models.SideBuy,
		ProductType: models.ProductIntraday,
		Status:      models.OrderStatusPending,
		Margin:      150,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, ledger.PlaceOrder(order))

	t.Run("nil price keeps the old one", func(t *testing.T) {
		require.NoError(t, orders.UpdatePriceQuantity(order.ID, nil, 7))

		got, err := orders.GetByID(order.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Price)
		assert.Equal(t, 100.0, *got.Price)
		assert.Equal(t, int64(7), got.Quantity)
	})

	t.Run("terminal order rejected", func(t *testing.T) {
		_, err := ledger.CancelOrder(order.ID)
		require.NoError(t, err)

		newPrice := 90.0
		assert.ErrorIs(t, orders.UpdatePriceQuantity(order.ID, &newPrice, 5), models.ErrOrderNotPending)
	})
}

func TestPriceRepository(t *testing.T) {
	conn := newConn(t)
	repo := sqlite.NewPriceRepository(conn)

	day := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	ticks := []models.Price{
		{Symbol: "NIFTY", Price: 22000, CreatedAt: day.Add(-24 * time.Hour)},
		{Symbol: "NIFTY", Price: 22400, CreatedAt: day.Add(-2 * time.Hour)},
		{Symbol: "NIFTY", Price: 22600, CreatedAt: day.Add(-1 * time.Hour)},
	}
	for i := range ticks {
		require.NoError(t, repo.Store(&ticks[i]))
	}

	t.Run("last tick", func(t *testing.T) {
		last, err := repo.GetLast("NIFTY")
		require.NoError(t, err)
		assert.Equal(t, 22600.0, last.Price)
	})

	t.Run("day open skips earlier days", func(t *testing.T) {
		open, err := repo.GetDayOpen("NIFTY", day)
		require.NoError(t, err)
		assert.Equal(t, 22400.0, open.Price)
	})

	t.Run("no ticks not found", func(t *testing.T) {
		_, err := repo.GetLast("TCS")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
