// Package dbstore is the single point of access to clipkeep's SQLite database.
// A Gateway owns the connection and exposes run/get/all/transaction primitives
// over parameterized SQL. Every operation fails with ErrNotInitialized until
// Initialize succeeds.
package dbstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Result describes the effect of a mutating statement.
type Result struct {
	InsertedID   int64
	RowsAffected int64
}

// Executor runs statements against the database or an open transaction.
type Executor interface {
	Run(ctx context.Context, query string, args ...any) (Result, error)
	Get(ctx context.Context, query string, args ...any) (Row, bool, error)
	All(ctx context.Context, query string, args ...any) ([]Row, error)
}

// Opener opens the named database.
type Opener func(ctx context.Context, name string) (*gorm.DB, error)

// Option configures a Gateway.
type Option func(*Gateway)

// WithOpener replaces the open primitive (OpenSQLite by default).
func WithOpener(open Opener) Option {
	return func(g *Gateway) {
		g.open = open
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// Gateway holds the single database connection.
type Gateway struct {
	open   Opener
	logger *slog.Logger
	group  singleflight.Group

	mu   sync.RWMutex
	db   *gorm.DB
	name string
}

var _ Executor = (*Gateway)(nil)

// NewGateway creates a closed gateway.
func NewGateway(opts ...Option) *Gateway {
	g := &Gateway{
		open:   OpenSQLite,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Initialize opens the named database. Concurrent calls share one
// underlying open and all observe its result. Initializing an already
// open gateway with the same name is a no-op; with another name it
// returns ErrAlreadyOpen. The shared open ignores the first caller's
// cancellation so callers that joined it are not failed by it.
func (g *Gateway) Initialize(ctx context.Context, name string) error {
	if err := g.checkOpen(name); err != nil || g.isOpen() {
		return err
	}

	openCtx := context.WithoutCancel(ctx)
	_, err, shared := g.group.Do(name, func() (any, error) {
		if err := g.checkOpen(name); err != nil || g.isOpen() {
			return nil, err
		}

		db, err := g.open(openCtx, name)
		if err != nil {
			return nil, &InitError{Name: name, Err: err}
		}

		g.mu.Lock()
		defer g.mu.Unlock()
		if g.db != nil {
			closeDB(db)
			return nil, fmt.Errorf("%w: %s", ErrAlreadyOpen, g.name)
		}
		g.db = db
		g.name = name
		g.logger.Info("database opened", "path", name, "driver", driverName)
		return nil, nil
	})
	if shared {
		g.logger.Debug("joined in-flight database open", "path", name)
	}
	return err
}

func (g *Gateway) isOpen() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.db != nil
}

// checkOpen returns ErrAlreadyOpen if a database other than name is open.
func (g *Gateway) checkOpen(name string) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.db != nil && g.name != name {
		return fmt.Errorf("%w: %s", ErrAlreadyOpen, g.name)
	}
	return nil
}

// Name returns the path of the open database, or "" when closed.
func (g *Gateway) Name() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.name
}

func (g *Gateway) handle() (*gorm.DB, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.db == nil {
		return nil, ErrNotInitialized
	}
	return g.db, nil
}

// Run executes a mutating statement.
func (g *Gateway) Run(ctx context.Context, query string, args ...any) (Result, error) {
	db, err := g.handle()
	if err != nil {
		return Result{}, err
	}
	return run(ctx, db.ConnPool, query, args)
}

// Get returns the first row of a query. The bool is false when the
// query produced no rows.
func (g *Gateway) Get(ctx context.Context, query string, args ...any) (Row, bool, error) {
	db, err := g.handle()
	if err != nil {
		return nil, false, err
	}
	return get(ctx, db.ConnPool, query, args)
}

// All returns every row of a query in result order. The slice is
// never nil on success.
func (g *Gateway) All(ctx context.Context, query string, args ...any) ([]Row, error) {
	db, err := g.handle()
	if err != nil {
		return nil, err
	}
	return all(ctx, db.ConnPool, query, args)
}

// Transaction runs fn inside a transaction. It commits if fn returns nil
// and rolls back otherwise, returning fn's error unchanged. A panic in fn
// rolls back and is re-raised.
func (g *Gateway) Transaction(ctx context.Context, fn func(ctx context.Context, tx Executor) error) error {
	db, err := g.handle()
	if err != nil {
		return err
	}

	fnFailed := false
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(ctx, &txExecutor{pool: tx.Statement.ConnPool}); err != nil {
			fnFailed = true
			return err
		}
		return nil
	})
	if err != nil && !fnFailed {
		return classify("transaction", err)
	}
	return err
}

// Close releases the connection. The gateway may be initialized again.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.db == nil {
		return ErrNotInitialized
	}
	err := closeDB(g.db)
	g.logger.Info("database closed", "path", g.name)
	g.db = nil
	g.name = ""
	return err
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// txExecutor runs statements on an open transaction.
type txExecutor struct {
	pool gorm.ConnPool
}

func (t *txExecutor) Run(ctx context.Context, query string, args ...any) (Result, error) {
	return run(ctx, t.pool, query, args)
}

func (t *txExecutor) Get(ctx context.Context, query string, args ...any) (Row, bool, error) {
	return get(ctx, t.pool, query, args)
}

func (t *txExecutor) All(ctx context.Context, query string, args ...any) ([]Row, error) {
	return all(ctx, t.pool, query, args)
}

func run(ctx context.Context, pool gorm.ConnPool, query string, args []any) (Result, error) {
	res, err := pool.ExecContext(ctx, query, args...)
	if err != nil {
		return Result{}, classify("run", err)
	}

	// SQLite supports both, so errors here are not expected.
	id, _ := res.LastInsertId()
	affected, _ := res.RowsAffected()
	return Result{InsertedID: id, RowsAffected: affected}, nil
}

func get(ctx context.Context, pool gorm.ConnPool, query string, args []any) (Row, bool, error) {
	rows, err := pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, classify("get", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, false, classify("get", err)
		}
		return nil, false, nil
	}

	cols, err := rows.Columns()
	if err != nil {
		return nil, false, classify("get", err)
	}
	row, err := scanRow(rows, cols)
	if err != nil {
		return nil, false, classify("get", err)
	}
	return row, true, nil
}

func all(ctx context.Context, pool gorm.ConnPool, query string, args []any) ([]Row, error) {
	rows, err := pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("all", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, classify("all", err)
	}

	result := make([]Row, 0)
	for rows.Next() {
		row, err := scanRow(rows, cols)
		if err != nil {
			return nil, classify("all", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("all", err)
	}
	return result, nil
}

func scanRow(rows *sql.Rows, cols []string) (Row, error) {
	values := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	row := make(Row, len(cols))
	for i, col := range cols {
		if b, ok := values[i].([]byte); ok {
			row[col] = string(b)
			continue
		}
		row[col] = values[i]
	}
	return row, nil
}
