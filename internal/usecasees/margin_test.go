package usecasees_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tradesim/internal/usecasees"
	"tradesim/models"
)

func TestMarginCalculator(t *testing.T) {
	calc := usecasees.NewMarginCalculator(usecasees.DefaultInstruments())

	t.Run("multiplier per instrument class", func(t *testing.T) {
		assert.Equal(t, 0.15, calc.Multiplier("NIFTY"))
		assert.Equal(t, 0.20, calc.Multiplier("BANKNIFTY"))
		assert.Equal(t, 0.20, calc.Multiplier("RELIANCE"))
	})

	t.Run("unknown symbol uses conservative default", func(t *testing.T) {
		assert.Equal(t, 0.20, calc.Multiplier("WIPRO"))
	})

	t.Run("intraday reserves leveraged value", func(t *testing.T) {
		assert.InDelta(t, 10*22500*0.15, calc.Required("NIFTY", 10, 22500, models.ProductIntraday), 1e-9)
		assert.InDelta(t, 5*2900*0.20, calc.Required("RELIANCE", 5, 2900, models.ProductIntraday), 1e-9)
	})

	t.Run("delivery reserves full value", func(t *testing.T) {
		assert.InDelta(t, 10*2900.0, calc.Required("RELIANCE", 10, 2900, models.ProductDelivery), 1e-9)
	})
}
