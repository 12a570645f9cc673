package models

import "time"

const (
	OrderStatusPending   = "PENDING"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"

	SideBuy  = "BUY"
	SideSell = "SELL"

	OrderTypeMarket = "MARKET"
	OrderTypeLimit  = "LIMIT"

	ProductIntraday = "MIS"
	ProductDelivery = "CNC"
)

type Order struct {
	ID             string     `db:"id" json:"id"`
	AccountID      string     `db:"account_id" json:"accountId"`
	Symbol         string     `db:"symbol" json:"symbol"`
	Quantity       int64      `db:"quantity" json:"quantity"`
	Price          *float64   `db:"price" json:"price,omitempty"`
	OrderType      string     `db:"order_type" json:"orderType"`
	Side           string     `db:"side" json:"orderSide"`
	ProductType    string     `db:"product_type" json:"productType"`
	Status         string     `db:"status" json:"status"`
	Margin         float64    `db:"margin" json:"margin"`
	FilledQuantity int64      `db:"filled_quantity" json:"filledQuantity"`
	AveragePrice   float64    `db:"average_price" json:"averagePrice"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	ExecutedAt     *time.Time `db:"executed_at" json:"executedAt,omitempty"`
}

// Terminal reports whether no further status transitions are legal.
func (o *Order) Terminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}

// HoldsReservation reports whether the order currently holds a margin
// reservation. Only pending BUY orders do; the reserved amount is stored in
// Margin at placement so a release is an exact reversal.
func (o *Order) HoldsReservation() bool {
	return o.Side == SideBuy && o.Status == OrderStatusPending && o.Margin > 0
}
