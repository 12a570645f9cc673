package models

import "time"

// Account is the trading account ledger row. AvailableMargin + UsedMargin is
// conserved across reserve/release; only deposits and realized PnL change the
// sum via Balance.
type Account struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"userId"`
	Balance         float64   `db:"balance" json:"balance"`
	AvailableMargin float64   `db:"available_margin" json:"availableMargin"`
	UsedMargin      float64   `db:"used_margin" json:"usedMargin"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

func (a *Account) MarginUtilization() float64 {
	total := a.AvailableMargin + a.UsedMargin
	if total <= 0 {
		return 0
	}
	return a.UsedMargin / total * 100
}
