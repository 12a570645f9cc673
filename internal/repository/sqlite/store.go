package sqlite

import (
	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS trading_accounts (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL UNIQUE,
	balance          REAL NOT NULL DEFAULT 0,
	available_margin REAL NOT NULL DEFAULT 0,
	used_margin      REAL NOT NULL DEFAULT 0,
	created_at       TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	id              TEXT PRIMARY KEY,
	account_id      TEXT NOT NULL REFERENCES trading_accounts(id),
	symbol          TEXT NOT NULL,
	quantity        INTEGER NOT NULL,
	price           REAL,
	order_type      TEXT NOT NULL,
	side            TEXT NOT NULL,
	product_type    TEXT NOT NULL,
	status          TEXT NOT NULL,
	margin          REAL NOT NULL DEFAULT 0,
	filled_quantity INTEGER NOT NULL DEFAULT 0,
	average_price   REAL NOT NULL DEFAULT 0,
	created_at      TIMESTAMP NOT NULL,
	executed_at     TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_orders_account_created ON orders(account_id, created_at);

CREATE TABLE IF NOT EXISTS positions (
	id             TEXT PRIMARY KEY,
	account_id     TEXT NOT NULL REFERENCES trading_accounts(id),
	symbol         TEXT NOT NULL,
	quantity       INTEGER NOT NULL,
	average_price  REAL NOT NULL,
	unrealized_pnl REAL NOT NULL DEFAULT 0,
	day_pnl        REAL NOT NULL DEFAULT 0,
	stop_loss      REAL,
	target         REAL,
	created_at     TIMESTAMP NOT NULL,
	updated_at     TIMESTAMP NOT NULL,
	UNIQUE(account_id, symbol)
);

CREATE TABLE IF NOT EXISTS prices (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol     TEXT NOT NULL,
	price      REAL NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_prices_symbol_created ON prices(symbol, created_at);
`

// Migrate creates the ledger tables when they do not exist yet.
func Migrate(conn *sqlx.DB) error {
	_, err := conn.Exec(schema)
	return err
}
