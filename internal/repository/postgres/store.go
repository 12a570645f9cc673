package postgres

import (
	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS trading_accounts (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL UNIQUE,
	balance          DOUBLE PRECISION NOT NULL DEFAULT 0,
	available_margin DOUBLE PRECISION NOT NULL DEFAULT 0,
	used_margin      DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	id              TEXT PRIMARY KEY,
	account_id      TEXT NOT NULL REFERENCES trading_accounts(id),
	symbol          TEXT NOT NULL,
	quantity        BIGINT NOT NULL,
	price           DOUBLE PRECISION,
	order_type      TEXT NOT NULL,
	side            TEXT NOT NULL,
	product_type    TEXT NOT NULL,
	status          TEXT NOT NULL,
	margin          DOUBLE PRECISION NOT NULL DEFAULT 0,
	filled_quantity BIGINT NOT NULL DEFAULT 0,
	average_price   DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL,
	executed_at     TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_orders_account_created ON orders(account_id, created_at);

CREATE TABLE IF NOT EXISTS positions (
	id             TEXT PRIMARY KEY,
	account_id     TEXT NOT NULL REFERENCES trading_accounts(id),
	symbol         TEXT NOT NULL,
	quantity       BIGINT NOT NULL,
	average_price  DOUBLE PRECISION NOT NULL,
	unrealized_pnl DOUBLE PRECISION NOT NULL DEFAULT 0,
	day_pnl        DOUBLE PRECISION NOT NULL DEFAULT 0,
	stop_loss      DOUBLE PRECISION,
	target         DOUBLE PRECISION,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL,
	UNIQUE(account_id, symbol)
);

CREATE TABLE IF NOT EXISTS prices (
	id         BIGSERIAL PRIMARY KEY,
	symbol     TEXT NOT NULL,
	price      DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_prices_symbol_created ON prices(symbol, created_at);
`

// Migrate creates the ledger tables when they do not exist yet.
func Migrate(conn *sqlx.DB) error {
	_, err := conn.Exec(schema)
	return err
}
