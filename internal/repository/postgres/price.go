package postgres

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"tradesim/internal/repository"
	"tradesim/models"
)

var _ repository.PriceRepo = (*PriceRepository)(nil)

type PriceRepository struct {
	conn *sqlx.DB
}

func NewPriceRepository(conn *sqlx.DB) *PriceRepository {
	return &PriceRepository{
		conn: conn,
	}
}

func (r *PriceRepository) Store(m *models.Price) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	if _, err := r.conn.NamedExec(
		`INSERT INTO prices (symbol,price,created_at) VALUES (:symbol,:price,:created_at)`, m); err != nil {
		return err
	}

	return nil
}

func (r *PriceRepository) GetLast(symbol string) (*models.Price, error) {
	var price models.Price
	if err := r.conn.Get(&price,
		`SELECT * FROM prices WHERE symbol = $1 ORDER BY created_at DESC LIMIT 1`, symbol); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	return &price, nil
}

func (r *PriceRepository) GetDayOpen(symbol string, day time.Time) (*models.Price, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var price models.Price
	if err := r.conn.Get(&price,
		`SELECT * FROM prices WHERE symbol = $1 AND created_at >= $2 AND created_at < $3 ORDER BY created_at LIMIT 1`,
		symbol, start, end); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	return &price, nil
}
