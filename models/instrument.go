package models

// InstrumentClass drives the margin multiplier lookup. The table is typed and
// carries an explicit default so an absent symbol never falls back silently.
type InstrumentClass string

const (
	ClassIndex     InstrumentClass = "INDEX"
	ClassBankIndex InstrumentClass = "BANK_INDEX"
	ClassEquity    InstrumentClass = "EQUITY"
)

const (
	InstrumentEnabled  = "ENABLED"
	InstrumentDisabled = "DISABLED"
)

type Instrument struct {
	Symbol    string          `json:"symbol"`
	Class     InstrumentClass `json:"class"`
	BasePrice float64         `json:"basePrice"`
	Status    string          `json:"status"`
}
