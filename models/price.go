package models

import "time"

// Price is one recorded quote tick. The first tick of a day is the day-open
// reference for day-change computations.
type Price struct {
	ID        int       `db:"id" json:"id"`
	Symbol    string    `db:"symbol" json:"symbol"`
	Price     float64   `db:"price" json:"price"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
