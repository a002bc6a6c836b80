package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/taskflow/internal/domain"
	"github.com/msomdec/taskflow/internal/repository/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const defaultStoreTimeout = 5 * time.Second

// DB wraps the SQLite connection pool and hands out repositories bound to it.
type DB struct {
	SqlDB   *sql.DB
	timeout time.Duration
}

// Option configures a DB.
type Option func(*DB)

// WithStoreTimeout bounds every repository call. Calls that hit the deadline
// fail with domain.ErrTransient.
func WithStoreTimeout(d time.Duration) Option {
	return func(db *DB) {
		if d > 0 {
			db.timeout = d
		}
	}
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys.
func New(dbPath string, opts ...Option) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL lets readers proceed while a writer holds the lock.
	if _, err := sqlDB.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := sqlDB.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := sqlDB.ExecContext(context.Background(), "PRAGMA busy_timeout=2000"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	// A single connection serialises writers; pragmas are per-connection.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(context.Background()); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return Wrap(sqlDB, opts...), nil
}

// Wrap builds a DB around an already opened pool.
func Wrap(sqlDB *sql.DB, opts ...Option) *DB {
	db := &DB{SqlDB: sqlDB, timeout: defaultStoreTimeout}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Migrate applies all pending schema migrations.
func (db *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, db.SqlDB)
}

// Ping checks the database is reachable within the store timeout.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	if err := db.SqlDB.PingContext(ctx); err != nil {
		return storeError(ctx, "ping", err)
	}
	return nil
}

func (db *DB) Close() error {
	return db.SqlDB.Close()
}

func (db *DB) Users() *UserRepository {
	return NewUserRepository(db)
}

func (db *DB) Tasks() *TaskRepository {
	return NewTaskRepository(db)
}

func (db *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.timeout)
}

// storeError wraps err with op, tagging deadline expiry and lock contention
// as domain.ErrTransient.
func storeError(ctx context.Context, op string, err error) error {
	if isTransient(ctx, err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTransient, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isTransient(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var se *msqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
	}
	return false
}

func isUniqueConstraintError(err error) bool {
	var se *msqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
