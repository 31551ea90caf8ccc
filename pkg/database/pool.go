package database

import (
	"context"
	"log/slog"
	"sync"
)

// Pool owns the process-wide Store. The store is opened on the first
// Acquire and handed out unchanged afterwards; a failed open is retried on
// the next Acquire. Close releases it, after which Acquire opens a new one.
type Pool struct {
	dialect Dialect
	dsn     string
	opts    Options
	logger  *slog.Logger

	mu    sync.Mutex
	store *Store
	opens int
}

func NewPool(dialect Dialect, dsn string, opts Options, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Pool{dialect: dialect, dsn: dsn, opts: opts, logger: logger}
}

func (p *Pool) Acquire(ctx context.Context) (*Store, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.store != nil {
		return p.store, nil
	}

	store, err := Open(ctx, p.dialect, p.dsn, p.opts)
	if err != nil {
		p.logger.Error("database open failed", "dialect", p.dialect, "error", err)
		return nil, err
	}

	p.store = store
	p.opens++
	p.logger.Info("database connected", "dialect", p.dialect, "opens", p.opens)

	return store, nil
}

// Opens reports how many times the pool opened a store.
func (p *Pool) Opens() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opens
}

func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.store == nil {
		return nil
	}

	err := p.store.Close()
	p.store = nil
	p.logger.Info("database closed", "dialect", p.dialect)

	return err
}
