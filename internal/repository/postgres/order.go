package postgres

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"tradesim/internal/repository"
	"tradesim/models"
)

var _ repository.OrderRepo = (*OrderRepository)(nil)

type OrderRepository struct {
	conn *sqlx.DB
}

func NewOrderRepository(conn *sqlx.DB) *OrderRepository {
	return &OrderRepository{
		conn: conn,
	}
}

func (r *OrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.conn.Get(&order, `SELECT * FROM orders WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	return &order, nil
}

func (r *OrderRepository) ListByAccount(accountID, status string, limit, offset int) ([]models.Order, error) {
	var orders []models.Order

	query := `SELECT * FROM orders WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	args := []interface{}{accountID, limit, offset}
	if status != "" {
		query = `SELECT * FROM orders WHERE account_id = $1 AND status = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4`
		args = []interface{}{accountID, status, limit, offset}
	}

	if err := r.conn.Select(&orders, query, args...); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *OrderRepository) CountByAccount(accountID, status string) (int, error) {
	var count int

	query := `SELECT COUNT(*) FROM orders WHERE account_id = $1`
	args := []interface{}{accountID}
	if status != "" {
		query = `SELECT COUNT(*) FROM orders WHERE account_id = $1 AND status = $2`
		args = []interface{}{accountID, status}
	}

	if err := r.conn.Get(&count, query, args...); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *OrderRepository) UpdatePriceQuantity(id string, price *float64, quantity int64) error {
	res, err := r.conn.Exec(
		`UPDATE orders SET price = COALESCE($1, price), quantity = $2 WHERE id = $3 AND status = $4`,
		price, quantity, id, models.OrderStatusPending)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrOrderNotPending
	}

	return nil
}
