package postgres

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"tradesim/internal/repository"
	"tradesim/models"
)

var _ repository.AccountRepo = (*AccountRepository)(nil)

type AccountRepository struct {
	conn *sqlx.DB
}

func NewAccountRepository(conn *sqlx.DB) *AccountRepository {
	return &AccountRepository{
		conn: conn,
	}
}

func (r *AccountRepository) Store(m *models.Account) error {
	if _, err := r.conn.NamedExec(
		`INSERT INTO trading_accounts (id,user_id,balance,available_margin,used_margin,created_at)
		 VALUES (:id,:user_id,:balance,:available_margin,:used_margin,:created_at)`, m); err != nil {
		return err
	}

	return nil
}

func (r *AccountRepository) GetByID(id string) (*models.Account, error) {
	var account models.Account
	if err := r.conn.Get(&account, `SELECT * FROM trading_accounts WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	return &account, nil
}

func (r *AccountRepository) GetByUserID(userID string) (*models.Account, error) {
	var account models.Account
	if err := r.conn.Get(&account, `SELECT * FROM trading_accounts WHERE user_id = $1`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	return &account, nil
}
