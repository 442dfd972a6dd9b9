// Package db opens and migrates the sqlite archive behind the broadcast
// transcript.
package db

import (
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open resolves the DSN, opens the sqlite database, applies the pool
// limits, and migrates the schema when cfg asks for it.
func Open(cfg Config, logger *slog.Logger) (*gorm.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Driver != "" && cfg.Driver != "sqlite" {
		return nil, fmt.Errorf("db: unsupported driver %q", cfg.Driver)
	}

	dsn, err := ResolveSQLiteDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("db: resolve dsn: %w", err)
	}
	dsn = withSQLiteParams(dsn, cfg.SQLite)

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("db: open %q: %w", dsn, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("db: underlying handle: %w", err)
	}
	if cfg.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	}
	if cfg.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	}
	if cfg.Pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.Pool.ConnMaxLifetime)
	}

	if cfg.AutoMigrate {
		if err := AutoMigrate(gdb); err != nil {
			return nil, fmt.Errorf("db: migrate: %w", err)
		}
	}

	logger.Info("archive_db_opened", "dsn", dsn)
	return gdb, nil
}

// withSQLiteParams appends the driver pragmas to a file DSN. In-memory
// databases are left untouched.
func withSQLiteParams(dsn string, cfg SQLiteConfig) string {
	if dsn == ":memory:" {
		return dsn
	}
	params := make([]string, 0, 3)
	if cfg.BusyTimeoutMs > 0 {
		params = append(params, fmt.Sprintf("_busy_timeout=%d", cfg.BusyTimeoutMs))
	}
	if cfg.WAL {
		params = append(params, "_journal_mode=WAL")
	}
	if cfg.ForeignKeys {
		params = append(params, "_foreign_keys=on")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}
