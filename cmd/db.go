package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

func (a *App) InitDB() error {
	switch a.Config.DBDriver {
	case "sqlite3":
		// immediate transactions and a busy timeout keep concurrent fills and
		// cancels from surfacing SQLITE_BUSY to callers
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate", a.Config.SQLitePath)
		db, err := sqlx.Connect("sqlite3", dsn)
		if err != nil {
			return err
		}
		a.DB = db

	case "postgres":
		db, err := sqlx.Connect("postgres", a.Config.DB.DSN())
		if err != nil {
			return err
		}
		a.DB = db

	default:
		return fmt.Errorf("unknown db driver %q", a.Config.DBDriver)
	}

	return nil
}
