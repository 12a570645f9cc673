package postgres

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tradesim/internal/repository"
	"tradesim/models"
)

var _ repository.LedgerRepo = (*LedgerRepository)(nil)

// LedgerRepository mirrors the sqlite ledger with postgres placeholders and
// row locks on the order/position reads so concurrent fills for the same
// account serialize on the rows they touch.
type LedgerRepository struct {
	conn *sqlx.DB
}

func NewLedgerRepository(conn *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{
		conn: conn,
	}
}

func (r *LedgerRepository) PlaceOrder(o *models.Order) error {
	tx, err := r.conn.Beginx()
	if err != nil {
		return err
	}

	if o.Margin > 0 {
		res, err := tx.Exec(
			`UPDATE trading_accounts
			 SET available_margin = available_margin - $1, used_margin = used_margin + $1
			 WHERE id = $2 AND available_margin >= $1`,
			o.Margin, o.AccountID)
		if err != nil {
			tx.Rollback()
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			tx.Rollback()
			return err
		}
		if rows == 0 {
			tx.Rollback()
			return models.ErrInsufficientMargin
		}
	}

	if _, err := tx.NamedExec(
		`INSERT INTO orders (id,account_id,symbol,quantity,price,order_type,side,product_type,status,margin,filled_quantity,average_price,created_at)
		 VALUES (:id,:account_id,:symbol,:quantity,:price,:order_type,:side,:product_type,:status,:margin,:filled_quantity,:average_price,:created_at)`,
		o); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *LedgerRepository) CancelOrder(id string) (*models.Order, error) {
	tx, err := r.conn.Beginx()
	if err != nil {
		return nil, err
	}

	order, err := getOrderTx(tx, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := transitionTx(tx, id, models.OrderStatusCancelled); err != nil {
		tx.Rollback()
		return nil, err
	}

	if order.HoldsReservation() {
		if err := releaseMarginTx(tx, order.AccountID, order.Margin); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusCancelled

	return order, nil
}

func (r *LedgerRepository) DeleteOrder(id string) error {
	tx, err := r.conn.Beginx()
	if err != nil {
		return err
	}

	order, err := getOrderTx(tx, id)
	if err != nil {
		tx.Rollback()
		return err
	}

	if order.HoldsReservation() {
		if err := releaseMarginTx(tx, order.AccountID, order.Margin); err != nil {
			tx.Rollback()
			return err
		}
	}

	if _, err := tx.Exec(`DELETE FROM orders WHERE id = $1`, id); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *LedgerRepository) CompleteOrder(id string, execPrice float64, executedAt time.Time) (*models.Order, error) {
	tx, err := r.conn.Beginx()
	if err != nil {
		return nil, err
	}

	order, err := getOrderTx(tx, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	res, err := tx.Exec(
		`UPDATE orders
		 SET status = $1, filled_quantity = quantity, average_price = $2, executed_at = $3
		 WHERE id = $4 AND status = $5`,
		models.OrderStatusCompleted, execPrice, executedAt, id, models.OrderStatusPending)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if rows == 0 {
		tx.Rollback()
		return nil, models.ErrOrderNotPending
	}

	if err := applyFillTx(tx, order, execPrice, executedAt); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusCompleted
	order.FilledQuantity = order.Quantity
	order.AveragePrice = execPrice
	order.ExecutedAt = &executedAt

	return order, nil
}

func applyFillTx(tx *sqlx.Tx, order *models.Order, execPrice float64, now time.Time) error {
	var prior *models.Position

	var position models.Position
	err := tx.Get(&position,
		`SELECT * FROM positions WHERE account_id = $1 AND symbol = $2 FOR UPDATE`,
		order.AccountID, order.Symbol)
	switch {
	case err == nil:
		prior = &position
	case errors.Is(err, sql.ErrNoRows):
	default:
		return err
	}

	if prior == nil && order.Side == models.SideSell {
		return models.ErrInsufficientPosition
	}

	outcome := models.ApplyFill(prior, order.Side, order.Quantity, execPrice)

	switch {
	case outcome.Flattened:
		if _, err := tx.Exec(`DELETE FROM positions WHERE id = $1`, prior.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(
			`UPDATE trading_accounts SET balance = balance + $1 WHERE id = $2`,
			outcome.RealizedPnL, order.AccountID); err != nil {
			return err
		}

	case prior == nil:
		if _, err := tx.Exec(
			`INSERT INTO positions (id,account_id,symbol,quantity,average_price,unrealized_pnl,day_pnl,created_at,updated_at)
			 VALUES ($1,$2,$3,$4,$5,0,0,$6,$7)`,
			uuid.NewString(), order.AccountID, order.Symbol, outcome.Quantity, outcome.AveragePrice, now, now); err != nil {
			return err
		}

	default:
		if _, err := tx.Exec(
			`UPDATE positions SET quantity = $1, average_price = $2, updated_at = $3 WHERE id = $4`,
			outcome.Quantity, outcome.AveragePrice, now, prior.ID); err != nil {
			return err
		}
	}

	return nil
}

func getOrderTx(tx *sqlx.Tx, id string) (*models.Order, error) {
	var order models.Order
	if err := tx.Get(&order, `SELECT * FROM orders WHERE id = $1 FOR UPDATE`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	return &order, nil
}

func transitionTx(tx *sqlx.Tx, id, to string) error {
	res, err := tx.Exec(
		`UPDATE orders SET status = $1 WHERE id = $2 AND status = $3`,
		to, id, models.OrderStatusPending)
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

func releaseMarginTx(tx *sqlx.Tx, accountID string, amount float64) error {
	_, err := tx.Exec(
		`UPDATE trading_accounts
		 SET available_margin = available_margin + $1, used_margin = used_margin - $1
		 WHERE id = $2`,
		amount, accountID)
	return err
}
