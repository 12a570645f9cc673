package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string
	LogLevel   string

	DBDriver   string
	SQLitePath string
	DB         *DB

	DefaultFunding float64
	FillDelayMinMS int64
	FillDelayMaxMS int64
	SlippageFactor float64

	TelegramApiToken string
	TelegramChatID   string

	Mongo *Mongo

	LokiHost string
}

type DB struct {
	Host     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type Mongo struct {
	Host     string
	User     string
	Password string
	DBName   string
}

var ErrEnvNotFound = errors.New("err env not found")

func (a *App) loadConfig(confFileName string) error {
	var cfg Config
	var err error

	// missing file is fine, the environment may carry everything
	_ = godotenv.Load(confFileName)

	cfg.ListenAddr = setDefault("LISTEN_ADDR", ":8080")
	cfg.LogLevel = setDefault("LOG_LEVEL", "INFO")

	cfg.DBDriver = setDefault("DB_DRIVER", "sqlite3")
	cfg.SQLitePath = setDefault("SQLITE_PATH", "./store.db")

	if cfg.DBDriver == "postgres" {
		var db DB
		if db.Host, err = set("PG_HOST"); err != nil {
			return err
		}
		if db.User, err = set("PG_USER"); err != nil {
			return err
		}
		if db.Password, err = set("PG_PASSWORD"); err != nil {
			return err
		}
		if db.DBName, err = set("PG_DBNAME"); err != nil {
			return err
		}
		if db.SSLMode, err = set("PG_SSL_MODE"); err != nil {
			return err
		}
		cfg.DB = &db
	}

	if cfg.DefaultFunding, err = setFloat("DEFAULT_FUNDING", 1000000); err != nil {
		return err
	}
	if cfg.FillDelayMinMS, err = setInt("FILL_DELAY_MIN_MS", 1000); err != nil {
		return err
	}
	if cfg.FillDelayMaxMS, err = setInt("FILL_DELAY_MAX_MS", 4000); err != nil {
		return err
	}
	if cfg.SlippageFactor, err = setFloat("SLIPPAGE_FACTOR", 0.001); err != nil {
		return err
	}

	cfg.TelegramApiToken = os.Getenv("TELEGRAM_API_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")

	if host := os.Getenv("MONGO_HOST"); host != "" {
		cfg.Mongo = &Mongo{
			Host:     host,
			User:     os.Getenv("MONGO_USER"),
			Password: os.Getenv("MONGO_PASSWORD"),
			DBName:   setDefault("MONGO_DBNAME", "settings"),
		}
	}

	cfg.LokiHost = os.Getenv("LOKI_HOST")

	a.Config = &cfg

	return nil
}

func (d *DB) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.User,
		d.Password,
		d.DBName,
		d.SSLMode)
}

func (m *Mongo) DSN() string {
	return fmt.Sprintf("mongodb://%s", m.Host)
}

func set(key string) (string, error) {
	if os.Getenv(key) == "" {
		return "", fmt.Errorf("%w: %s", ErrEnvNotFound, key)
	}

	return os.Getenv(key), nil
}

func setDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func setFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	return strconv.ParseFloat(v, 64)
}

func setInt(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	return strconv.ParseInt(v, 10, 64)
}
