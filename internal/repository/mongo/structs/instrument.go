package structs

import "go.mongodb.org/mongo-driver/bson/primitive"

type InstrumentStatus string

const (
	Enabled  InstrumentStatus = "ENABLED"
	Disabled InstrumentStatus = "DISABLED"
)

func (s InstrumentStatus) ToString() string {
	return string(s)
}

type Instrument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Symbol    string             `bson:"symbol"`
	Class     string             `bson:"class"`
	BasePrice float64            `bson:"base_price"`
	Status    string             `bson:"status"`
}
