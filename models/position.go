package models

import (
	"math"
	"time"
)

// Position is an open (account, symbol) exposure. Quantity is signed:
// positive long, negative short. A stored quantity of zero is never valid —
// a fill that flattens the position deletes the row instead.
type Position struct {
	ID            string    `db:"id" json:"id"`
	AccountID     string    `db:"account_id" json:"accountId"`
	Symbol        string    `db:"symbol" json:"symbol"`
	Quantity      int64     `db:"quantity" json:"quantity"`
	AveragePrice  float64   `db:"average_price" json:"averagePrice"`
	UnrealizedPnL float64   `db:"unrealized_pnl" json:"unrealizedPnL"`
	DayPnL        float64   `db:"day_pnl" json:"dayPnL"`
	StopLoss      *float64  `db:"stop_loss" json:"stopLoss,omitempty"`
	Target        *float64  `db:"target" json:"target,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// FillOutcome is the result of applying one fill to a position.
type FillOutcome struct {
	// Quantity and AveragePrice are the new position state. Meaningless when
	// Flattened is set.
	Quantity     int64
	AveragePrice float64

	// Flattened is set when the fill brought the quantity to exactly zero;
	// the position row must be deleted and RealizedPnL credited to balance.
	Flattened   bool
	RealizedPnL float64
}

// ApplyFill computes the weighted-average position update for a fill of qty
// at price. prior may be nil (no open position yet). The delta is +qty for a
// BUY and -qty for a SELL.
//
// A sign-flipping fill (delta crosses the quantity through zero without
// landing on it) goes through the same formula; the blended price is taken
// as an absolute value so the stored average stays positive.
func ApplyFill(prior *Position, side string, qty int64, price float64) FillOutcome {
	delta := qty
	if side == SideSell {
		delta = -qty
	}

	if prior == nil {
		return FillOutcome{Quantity: delta, AveragePrice: price}
	}

	newQty := prior.Quantity + delta
	if newQty == 0 {
		return FillOutcome{
			Flattened:   true,
			RealizedPnL: (price - prior.AveragePrice) * float64(prior.Quantity),
		}
	}

	blended := (prior.AveragePrice*float64(prior.Quantity) + price*float64(delta)) / float64(newQty)

	return FillOutcome{
		Quantity:     newQty,
		AveragePrice: math.Abs(blended),
	}
}

func (p *Position) InvestedValue() float64 {
	return p.AveragePrice * math.Abs(float64(p.Quantity))
}

func (p *Position) MarketValue(ltp float64) float64 {
	return ltp * math.Abs(float64(p.Quantity))
}

// MarkToMarket recomputes unrealized and day PnL against the last traded
// price and day change.
func (p *Position) MarkToMarket(ltp, dayChange float64) {
	p.UnrealizedPnL = (ltp - p.AveragePrice) * float64(p.Quantity)
	sign := float64(1)
	if p.Quantity < 0 {
		sign = -1
	}
	p.DayPnL = dayChange * math.Abs(float64(p.Quantity)) * sign
}
