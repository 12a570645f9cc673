package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"tradesim/internal/repository"
	"tradesim/internal/repository/mongo/structs"
	"tradesim/models"
)

var _ repository.InstrumentsRepo = (*InstrumentsRepository)(nil)

type InstrumentsRepository struct {
	conn       *mongo.Client
	collection *mongo.Collection
}

func NewInstrumentsRepository(conn *mongo.Client) *InstrumentsRepository {
	collection := conn.Database("settings").Collection("instruments")

	return &InstrumentsRepository{conn: conn, collection: collection}
}

// SetDefault seeds the instrument catalog with the recognized index
// instruments. Symbols absent from the catalog fall back to the equity class
// at lookup time.
func (r *InstrumentsRepository) SetDefault() error {
	instruments := []structs.Instrument{
		{
			Symbol:    "NIFTY",
			Class:     string(models.ClassIndex),
			BasePrice: 22500,
			Status:    structs.Enabled.ToString(),
		},
		{
			Symbol:    "BANKNIFTY",
			Class:     string(models.ClassBankIndex),
			BasePrice: 48000,
			Status:    structs.Enabled.ToString(),
		},
		{
			Symbol:    "RELIANCE",
			Class:     string(models.ClassEquity),
			BasePrice: 2900,
			Status:    structs.Enabled.ToString(),
		},
		{
			Symbol:    "TCS",
			Class:     string(models.ClassEquity),
			BasePrice: 4100,
			Status:    structs.Enabled.ToString(),
		},
		{
			Symbol:    "INFY",
			Class:     string(models.ClassEquity),
			BasePrice: 1550,
			Status:    structs.Enabled.ToString(),
		},
	}

	for _, instrument := range instruments {
		check, err := r.load(instrument.Symbol)
		if err != nil && err != mongo.ErrNoDocuments {
			return err
		}

		if primitive.ObjectID.IsZero(check.ID) {
			_, err := r.collection.InsertOne(context.TODO(), instrument)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *InstrumentsRepository) Load(symbol string) (*models.Instrument, error) {
	result, err := r.load(symbol)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	return toModel(result), nil
}

func (r *InstrumentsRepository) List() ([]models.Instrument, error) {
	cursor, err := r.collection.Find(context.TODO(), bson.D{})
	if err != nil {
		return nil, err
	}

	var raw []structs.Instrument
	if err := cursor.All(context.TODO(), &raw); err != nil {
		return nil, err
	}

	out := make([]models.Instrument, 0, len(raw))
	for i := range raw {
		out = append(out, *toModel(&raw[i]))
	}

	return out, nil
}

func (r *InstrumentsRepository) load(symbol string) (*structs.Instrument, error) {
	var result structs.Instrument

	if err := r.collection.FindOne(context.TODO(), bson.D{{Key: "symbol", Value: symbol}}).Decode(&result); err != nil {
		return &result, err
	}

	return &result, nil
}

func toModel(in *structs.Instrument) *models.Instrument {
	return &models.Instrument{
		Symbol:    in.Symbol,
		Class:     models.InstrumentClass(in.Class),
		BasePrice: in.BasePrice,
		Status:    in.Status,
	}
}
