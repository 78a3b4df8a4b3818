package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nestflow/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

const (
	driverSQLite   = "sqlite3"
	driverPostgres = "postgres"
)

type DB struct {
	*sqlx.DB
	driver string
	logger *zerolog.Logger
}

// NewDB opens the configured store and bootstraps its schema.
func NewDB(cfg config.DatabaseConfig, logger *zerolog.Logger) (*DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := Open(driverPostgres, cfg.Postgres.DSN(), logger)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(cfg.Postgres.MaxConnections)
		db.SetMaxIdleConns(cfg.Postgres.MaxConnections)
		db.SetConnMaxLifetime(5 * time.Minute)
		return db, nil
	case config.DriverSQLite, "":
		return NewSQLite(cfg.Path, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewSQLite opens a SQLite file, creating its directory when needed.
func NewSQLite(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		// Создаем директорию для БД, если её нет
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := Open(driverSQLite, sqliteDSN(path), logger)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// каждое соединение получает свою in-memory базу
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

func sqliteDSN(path string) string {
	const params = "_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"
	if path == ":memory:" {
		return "file::memory:?" + params
	}
	return fmt.Sprintf("file:%s?%s&_journal_mode=WAL", path, params)
}

// Open connects with an explicit driver name and DSN.
func Open(driverName, dsn string, logger *zerolog.Logger) (*DB, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	conn, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Проверяем соединение
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: conn, driver: driverName, logger: logger}

	// Создаем таблицы
	if err := db.createTables(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("driver", driverName).Msg("Database initialized")
	return db, nil
}

func (db *DB) Driver() string {
	return db.driver
}

func (db *DB) createTables(ctx context.Context) error {
	statements := sqliteSchema
	if db.driver == driverPostgres {
		statements = postgresSchema
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// txOptions makes the overlap check and insert serializable on Postgres.
// SQLite connections already begin IMMEDIATE transactions.
func (db *DB) txOptions() *sql.TxOptions {
	if db.driver == driverPostgres {
		return &sql.TxOptions{Isolation: sql.LevelSerializable}
	}
	return nil
}

// insertReturningID runs an INSERT ... RETURNING id statement.
func insertReturningID(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (int64, error) {
	var id int64
	if err := sqlx.GetContext(ctx, q, &id, query, args...); err != nil {
		return 0, err
	}
	return id, nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
