package postgres

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"tradesim/internal/repository"
	"tradesim/models"
)

var _ repository.PositionRepo = (*PositionRepository)(nil)

type PositionRepository struct {
	conn *sqlx.DB
}

func NewPositionRepository(conn *sqlx.DB) *PositionRepository {
	return &PositionRepository{
		conn: conn,
	}
}

func (r *PositionRepository) GetByID(id string) (*models.Position, error) {
	var position models.Position
	if err := r.conn.Get(&position, `SELECT * FROM positions WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	return &position, nil
}

func (r *PositionRepository) GetBySymbol(accountID, symbol string) (*models.Position, error) {
	var position models.Position
	if err := r.conn.Get(&position,
		`SELECT * FROM positions WHERE account_id = $1 AND symbol = $2`, accountID, symbol); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	return &position, nil
}

func (r *PositionRepository) ListByAccount(accountID string) ([]models.Position, error) {
	var positions []models.Position
	if err := r.conn.Select(&positions,
		`SELECT * FROM positions WHERE account_id = $1 ORDER BY created_at`, accountID); err != nil {
		return nil, err
	}

	return positions, nil
}

func (r *PositionRepository) ListOpen() ([]models.Position, error) {
	var positions []models.Position
	if err := r.conn.Select(&positions, `SELECT * FROM positions ORDER BY created_at`); err != nil {
		return nil, err
	}

	return positions, nil
}

func (r *PositionRepository) UpdatePnL(id string, unrealized, day float64) error {
	_, err := r.conn.Exec(
		`UPDATE positions SET unrealized_pnl = $1, day_pnl = $2, updated_at = $3 WHERE id = $4`,
		unrealized, day, time.Now().UTC(), id)
	return err
}

func (r *PositionRepository) UpdateStopLoss(id string, stopLoss *float64) error {
	res, err := r.conn.Exec(
		`UPDATE positions SET stop_loss = $1, updated_at = $2 WHERE id = $3`,
		stopLoss, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	return checkFound(res)
}

func (r *PositionRepository) UpdateTarget(id string, target *float64) error {
	res, err := r.conn.Exec(
		`UPDATE positions SET target = $1, updated_at = $2 WHERE id = $3`,
		target, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	return checkFound(res)
}

func checkFound(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrNotFound
	}

	return nil
}
