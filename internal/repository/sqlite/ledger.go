package sqlite

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

// LedgerRepository is the only write path that touches account margin fields
// or position rows. Every method is one transaction; order transitions are
// compare-and-swap on PENDING so a cancel racing a fill resolves to exactly
// one winner.
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
		// Reserve and capacity-check in one statement so a concurrent
		// placement cannot overdraw available margin.
		res, err := tx.Exec(
			`UPDATE trading_accounts
			 SET available_margin = available_margin - ?, used_margin = used_margin + ?
			 WHERE id = ? AND available_margin >= ?`,
			o.Margin, o.Margin, o.AccountID, o.Margin)
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

	if _, err := tx.Exec(`DELETE FROM orders WHERE id = ?`, id); err != nil {
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
		 SET status = ?, filled_quantity = quantity, average_price = ?, executed_at = ?
		 WHERE id = ? AND status = ?`,
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
		`SELECT * FROM positions WHERE account_id = ? AND symbol = ?`, order.AccountID, order.Symbol)
	switch {
	case err == nil:
		prior = &position
	case errors.Is(err, sql.ErrNoRows):
		// first fill for this symbol
	default:
		return err
	}

	if prior == nil && order.Side == models.SideSell {
		// validation rejects naked sells; reaching here means the ledger and
		// the admission check disagree
		return models.ErrInsufficientPosition
	}

	outcome := models.ApplyFill(prior, order.Side, order.Quantity, execPrice)

	switch {
	case outcome.Flattened:
		if _, err := tx.Exec(`DELETE FROM positions WHERE id = ?`, prior.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(
			`UPDATE trading_accounts SET balance = balance + ? WHERE id = ?`,
			outcome.RealizedPnL, order.AccountID); err != nil {
			return err
		}

	case prior == nil:
		if _, err := tx.Exec(
			`INSERT INTO positions (id,account_id,symbol,quantity,average_price,unrealized_pnl,day_pnl,created_at,updated_at)
			 VALUES (?,?,?,?,?,0,0,?,?)`,
			uuid.NewString(), order.AccountID, order.Symbol, outcome.Quantity, outcome.AveragePrice, now, now); err != nil {
			return err
		}

	default:
		if _, err := tx.Exec(
			`UPDATE positions SET quantity = ?, average_price = ?, updated_at = ? WHERE id = ?`,
			outcome.Quantity, outcome.AveragePrice, now, prior.ID); err != nil {
			return err
		}
	}

	return nil
}

func getOrderTx(tx *sqlx.Tx, id string) (*models.Order, error) {
	var order models.Order
	if err := tx.Get(&order, `SELECT * FROM orders WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	return &order, nil
}

func releaseMarginTx(tx *sqlx.Tx, accountID string, amount float64) error {
	_, err := tx.Exec(
		`UPDATE trading_accounts
		 SET available_margin = available_margin + ?, used_margin = used_margin - ?
		 WHERE id = ?`,
		amount, amount, accountID)
	return err
}

func transitionTx(tx *sqlx.Tx, id, to string) error {
	res, err := tx.Exec(
		`UPDATE orders SET status = ? WHERE id = ? AND status = ?`,
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
