// Package sqlstore implements the repositories on database/sql for MySQL and
// SQLite. Both drivers use "?" placeholders; the dialect only differs in row
// locking and lock-timeout handling.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

const (
	mysqlDuplicateEntry   = 1062
	mysqlLockWaitTimeout  = 1205
	mysqlDeadlockDetected = 1213
)

// DB wraps a database/sql handle with its dialect
type DB struct {
	SQL    *sql.DB
	driver string
}

// Open connects to MySQL or SQLite and verifies the connection
func Open(ctx context.Context, driver, dsn string, maxConns int) (*DB, error) {
	if driver != DriverMySQL && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported sql driver: %s", driver)
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if maxConns > 0 {
		sqlDB.SetMaxOpenConns(maxConns)
	}
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{SQL: sqlDB, driver: driver}, nil
}

// Close closes the database handle
func (db *DB) Close() error {
	return db.SQL.Close()
}

// Ping verifies database connectivity
func (db *DB) Ping(ctx context.Context) error {
	return db.SQL.PingContext(ctx)
}

// forUpdate returns the row-locking suffix. SQLite has no row locks; its
// immediate transactions already serialize writers.
func (db *DB) forUpdate() string {
	if db.driver == DriverMySQL {
		return " FOR UPDATE"
	}
	return ""
}

// mapTxError turns lock and uniqueness failures into domain conflicts
func mapTxError(err error) error {
	if domain.ErrorCode(err) != "" {
		return err
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlLockWaitTimeout, mysqlDeadlockDetected:
			return domain.Conflict("chat is being modified by another request", err)
		case mysqlDuplicateEntry:
			return domain.Conflict("concurrent update of the same chat", err)
		}
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		switch primary := code & 0xff; {
		case primary == sqlite3.SQLITE_BUSY, primary == sqlite3.SQLITE_LOCKED:
			return domain.Conflict("chat is being modified by another request", err)
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return domain.Conflict("concurrent update of the same chat", err)
		case primary == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE"):
			// extended result codes disabled
			return domain.Conflict("concurrent update of the same chat", err)
		}
	}
	return err
}
