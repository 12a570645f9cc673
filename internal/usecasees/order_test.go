package usecasees_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradesim/internal/usecasees/structs"
	"tradesim/models"
)

func TestPlaceOrder(t *testing.T) {
	t.Run("buy reserves margin", func(t *testing.T) {
		env := newTestEnv(t, nil)

		resp, err := env.orders.Place("alice", limitBuy("NIFTY", 10, 22500))
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, 22500.0, resp.EstimatedPrice)

		// 10 * 22500 * 0.15
		wantMargin := 33750.0

		account := env.account(t, "alice")
		assert.InDelta(t, testFunding-wantMargin, account.AvailableMargin, 1e-6)
		assert.InDelta(t, wantMargin, account.UsedMargin, 1e-6)
		assert.InDelta(t, testFunding, account.Balance, 1e-6)

		order, err := env.orders.Get(resp.OrderID, "alice")
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.InDelta(t, wantMargin, order.Margin, 1e-6)
	})

	t.Run("insufficient margin rejects without a row", func(t *testing.T) {
		env := newTestEnv(t, nil)

		_, err := env.orders.Place("alice", limitBuy("NIFTY", 10000, 22500))
		assert.ErrorIs(t, err, models.ErrInsufficientMargin)

		account := env.account(t, "alice")
		assert.InDelta(t, testFunding, account.AvailableMargin, 1e-6)
		assert.Zero(t, account.UsedMargin)

		listed, err := env.orders.List("alice", "", 1, 50)
		require.NoError(t, err)
		assert.Empty(t, listed.Orders)
	})

	t.Run("sell without position rejected", func(t *testing.T) {
		env := newTestEnv(t, nil)

		_, err := env.orders.Place("alice", limitSell("NIFTY", 10, 22500))
		assert.ErrorIs(t, err, models.ErrInsufficientPosition)

		listed, err := env.orders.List("alice", "", 1, 50)
		require.NoError(t, err)
		assert.Empty(t, listed.Orders)
	})

	t.Run("sell larger than held position rejected", func(t *testing.T) {
		env := newTestEnv(t, nil)

		resp, err := env.orders.Place("alice", limitBuy("RELIANCE", 10, 2900))
		require.NoError(t, err)
		env.scheduler.Execute(resp.OrderID, 2900)

		_, err = env.orders.Place("alice", limitSell("RELIANCE", 11, 2900))
		assert.ErrorIs(t, err, models.ErrInsufficientPosition)
	})

	t.Run("invalid request rejected before account lookup", func(t *testing.T) {
		env := newTestEnv(t, nil)

		_, err := env.orders.Place("alice", &structs.PlaceOrderRequest{Symbol: "bad"})
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("empty user rejected", func(t *testing.T) {
		env := newTestEnv(t, nil)

		_, err := env.orders.Place("", limitBuy("NIFTY", 1, 100))
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})
}

func TestCancelOrder(t *testing.T) {
	t.Run("cancel restores margin", func(t *testing.T) {
		env := newTestEnv(t, nil)

		resp, err := env.orders.Place("alice", limitBuy("NIFTY", 10, 22500))
		require.NoError(t, err)

		require.NoError(t, env.orders.Cancel(resp.OrderID, "alice"))

		account := env.account(t, "alice")
		assert.InDelta(t, testFunding, account.AvailableMargin, 1e-6)
		assert.Zero(t, account.UsedMargin)

		order, err := env.orders.Get(resp.OrderID, "alice")
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, order.Status)
	})

	t.Run("double cancel conflicts", func(t *testing.T) {
		env := newTestEnv(t, nil)

		resp, err := env.orders.Place("alice", limitBuy("NIFTY", 10, 22500))
		require.NoError(t, err)

		require.NoError(t, env.orders.Cancel(resp.OrderID, "alice"))
		assert.ErrorIs(t, env.orders.Cancel(resp.OrderID, "alice"), models.ErrOrderNotPending)

		// margin released exactly once
		account := env.account(t, "alice")
		assert.InDelta(t, testFunding, account.AvailableMargin, 1e-6)
		assert.Zero(t, account.UsedMargin)
	})

	t.Run("foreign order forbidden", func(t *testing.T) {
		env := newTestEnv(t, nil)

		resp, err := env.orders.Place("alice", limitBuy("NIFTY", 10, 22500))
		require.NoError(t, err)

		assert.ErrorIs(t, env.orders.Cancel(resp.OrderID, "mallory"), models.ErrForbidden)
	})
}

func TestModifyOrder(t *testing.T) {
	t.Run("pending order updates in place", func(t *testing.T) {
		env := newTestEnv(t, nil)

		resp, err := env.orders.Place("alice", limitBuy("NIFTY", 10, 22500))
		require.NoError(t, err)

		newPrice := 22000.0
		require.NoError(t, env.orders.Modify(resp.OrderID, "alice", &structs.OrderActionRequest{
			Action:   structs.OrderActionModify,
			Price:    &newPrice,
			Quantity: 5,
		}))

		order, err := env.orders.Get(resp.OrderID, "alice")
		require.NoError(t, err)
		require.NotNil(t, order.Price)
		assert.Equal(t, 22000.0, *order.Price)
		assert.Equal(t, int64(5), order.Quantity)

		// reservation is not recomputed on modify
		account := env.account(t, "alice")
		assert.InDelta(t, 33750.0, account.UsedMargin, 1e-6)
	})

	t.Run("completed order conflicts", func(t *testing.T) {
		env := newTestEnv(t, nil)

		resp, err := env.orders.Place("alice", limitBuy("NIFTY", 10, 22500))
		require.NoError(t, err)
		env.scheduler.Execute(resp.OrderID, 22500)

		newPrice := 22000.0
		err = env.orders.Modify(resp.OrderID, "alice", &structs.OrderActionRequest{
			Action: structs.OrderActionModify,
			Price:  &newPrice,
		})
		assert.ErrorIs(t, err, models.ErrOrderNotPending)
	})
}

func TestDeleteOrder(t *testing.T) {
	t.Run("pending delete releases margin and removes the row", func(t *testing.T) {
		env := newTestEnv(t, nil)

		resp, err := env.orders.Place("alice", limitBuy("NIFTY", 10, 22500))
		require.NoError(t, err)

		require.NoError(t, env.orders.Delete(resp.OrderID, "alice"))

		account := env.account(t, "alice")
		assert.InDelta(t, testFunding, account.AvailableMargin, 1e-6)
		assert.Zero(t, account.UsedMargin)

		_, err = env.orders.Get(resp.OrderID, "alice")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestListOrders(t *testing.T) {
	env := newTestEnv(t, nil)

	first, err := env.orders.Place("alice", limitBuy("NIFTY", 10, 22500))
	require.NoError(t, err)
	_, err = env.orders.Place("alice", limitBuy("RELIANCE", 5, 2900))
	require.NoError(t, err)

	require.NoError(t, env.orders.Cancel(first.OrderID, "alice"))

	t.Run("all orders with pagination", func(t *testing.T) {
		listed, err := env.orders.List("alice", "", 1, 1)
		require.NoError(t, err)
		assert.Len(t, listed.Orders, 1)
		assert.Equal(t, 2, listed.Pagination.Total)
	})

	t.Run("status filter", func(t *testing.T) {
		listed, err := env.orders.List("alice", models.OrderStatusPending, 1, 50)
		require.NoError(t, err)
		require.Len(t, listed.Orders, 1)
		assert.Equal(t, "RELIANCE", listed.Orders[0].Symbol)
	})

	t.Run("other user sees nothing", func(t *testing.T) {
		listed, err := env.orders.List("bob", "", 1, 50)
		require.NoError(t, err)
		assert.Empty(t, listed.Orders)
	})
}
