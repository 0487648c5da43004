// internal/database/db.go
package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/btb36/escpos-emulator/internal/config"
)

// DB wraps *sql.DB so repositories can call ExecContext/QueryRowContext
// directly through the embedded connection.
type DB struct {
	*sql.DB
}

// New opens a Postgres connection pool from cfg and verifies it with Ping.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{DB: sqlDB}, nil
}

// HealthCheck pings the underlying connection pool.
func (db *DB) HealthCheck() error {
	return db.Ping()
}

// GetStats exposes the connection pool stats the health endpoint reports.
func (db *DB) GetStats() sql.DBStats {
	return db.Stats()
}
