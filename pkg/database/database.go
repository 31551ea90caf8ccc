package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Dialect string

const (
	Postgres Dialect = "pgx"
	SQLite   Dialect = "sqlite"
)

// Postgres SQLSTATE codes treated as contention on the store.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

var ErrUnsupportedDialect = errors.New("unsupported database dialect")

type Store struct {
	Database   *sql.DB
	SqlBuilder squirrel.StatementBuilderType
	Dialect    Dialect

	// TxTimeout bounds every transaction opened by WithinTx. Zero disables it.
	TxTimeout time.Duration
}

type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	TxTimeout       time.Duration
}

func Open(ctx context.Context, dialect Dialect, dsn string, opts Options) (*Store, error) {
	if dialect != Postgres && dialect != SQLite {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDialect, dialect)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("error while opening database with driver `%s`. %w", dialect, err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	store := New(db, dialect)
	store.TxTimeout = opts.TxTimeout

	return store, nil
}

// New wraps an already opened *sql.DB.
func New(db *sql.DB, dialect Dialect) *Store {
	var placeholder squirrel.PlaceholderFormat = squirrel.Question
	if dialect == Postgres {
		placeholder = squirrel.Dollar
	}

	return &Store{
		Database:   db,
		SqlBuilder: squirrel.StatementBuilder.PlaceholderFormat(placeholder),
		Dialect:    dialect,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Database.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.Database != nil {
		err := s.Database.Close()
		if err != nil {
			return err
		}

		return nil
	}

	return nil
}

// Querier is the subset of *sql.DB and *sql.Tx the repositories need.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// Querier returns the transaction bound to ctx by WithinTx, or the pool.
func (s *Store) Querier(ctx context.Context) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}

	return s.Database
}

func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*sql.Tx)
	return ok
}

// WithinTx runs fn inside a single transaction. Nested calls join the
// outer transaction. Any error or panic from fn rolls everything back.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if InTx(ctx) {
		return fn(ctx)
	}

	if s.TxTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.TxTimeout)
		defer cancel()
	}

	tx, err := s.Database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if e := tx.Rollback(); e != nil && !errors.Is(e, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", e))
		}
		if p := recover(); p != nil {
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true

	return nil
}

// IsUniqueViolation reports whether err came from a unique index or
// primary key refusing a duplicate row.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	return false
}

// IsConflict reports whether err is store-level contention: a concurrent
// writer won a unique index, or the engine aborted the transaction to
// resolve a serialization conflict or deadlock. Such operations are safe
// to retry.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}

	if IsUniqueViolation(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
	}

	return false
}
