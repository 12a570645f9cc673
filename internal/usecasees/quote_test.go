package usecasees_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradesim/models"
)

func TestLastPrice(t *testing.T) {
	t.Run("quote stays inside the volatility band", func(t *testing.T) {
		env := newTestEnv(t, nil)

		quote, err := env.quote.LastPrice("NIFTY")
		require.NoError(t, err)

		assert.Equal(t, "NIFTY", quote.Symbol)
		assert.InDelta(t, 22500.0, quote.LTP, 22500*0.01)
	})

	t.Run("tick is persisted", func(t *testing.T) {
		env := newTestEnv(t, nil)

		quote, err := env.quote.LastPrice("RELIANCE")
		require.NoError(t, err)

		last, err := env.priceRepo.GetLast("RELIANCE")
		require.NoError(t, err)
		assert.InDelta(t, quote.LTP, last.Price, 1e-9)
	})

	t.Run("unknown symbol unavailable", func(t *testing.T) {
		env := newTestEnv(t, nil)

		_, err := env.quote.LastPrice("DOGE")
		assert.ErrorIs(t, err, models.ErrQuoteUnavailable)
	})
}

func TestQuotes(t *testing.T) {
	env := newTestEnv(t, nil)

	quotes := env.quote.Quotes([]string{"NIFTY", "DOGE", "TCS"})

	require.Len(t, quotes, 2)
	assert.Equal(t, "NIFTY", quotes[0].Symbol)
	assert.Equal(t, "TCS", quotes[1].Symbol)
}
