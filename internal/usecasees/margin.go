package usecasees

import (
	"tradesim/models"
)

// Multiplier table keyed by instrument class. The default is the most
// conservative entry so an unclassified symbol can never under-reserve.
const defaultMultiplier = 0.20

var classMultipliers = map[models.InstrumentClass]float64{
	models.ClassIndex:     0.15,
	models.ClassBankIndex: 0.20,
	models.ClassEquity:    0.20,
}

// MarginCalculator maps (symbol, quantity, price, product) to the margin a
// BUY must reserve. Pure and side-independent: SELL sizing is checked against
// held position quantity, not margin.
type MarginCalculator struct {
	classes map[string]models.InstrumentClass
}

func NewMarginCalculator(instruments []models.Instrument) *MarginCalculator {
	classes := make(map[string]models.InstrumentClass, len(instruments))
	for _, instrument := range instruments {
		classes[instrument.Symbol] = instrument.Class
	}

	return &MarginCalculator{
		classes: classes,
	}
}

// Required returns quantity * price * multiplier. Delivery orders reserve
// full value; intraday orders are leveraged by instrument class.
func (c *MarginCalculator) Required(symbol string, quantity int64, price float64, productType string) float64 {
	orderValue := float64(quantity) * price
	if productType == models.ProductDelivery {
		return orderValue
	}

	return orderValue * c.Multiplier(symbol)
}

func (c *MarginCalculator) Multiplier(symbol string) float64 {
	class, ok := c.classes[symbol]
	if !ok {
		return defaultMultiplier
	}

	multiplier, ok := classMultipliers[class]
	if !ok {
		return defaultMultiplier
	}

	return multiplier
}

// DefaultInstruments is the built-in catalog used when no instruments store
// is configured.
func DefaultInstruments() []models.Instrument {
	return []models.Instrument{
		{Symbol: "NIFTY", Class: models.ClassIndex, BasePrice: 22500, Status: models.InstrumentEnabled},
		{Symbol: "BANKNIFTY", Class: models.ClassBankIndex, BasePrice: 48000, Status: models.InstrumentEnabled},
		{Symbol: "RELIANCE", Class: models.ClassEquity, BasePrice: 2900, Status: models.InstrumentEnabled},
		{Symbol: "TCS", Class: models.ClassEquity, BasePrice: 4100, Status: models.InstrumentEnabled},
		{Symbol: "INFY", Class: models.ClassEquity, BasePrice: 1550, Status: models.InstrumentEnabled},
	}
}
