package dbstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	g := NewGateway()
	require.NoError(t, g.Initialize(context.Background(), filepath.Join(t.TempDir(), "test.db")))
	t.Cleanup(func() { g.Close() })

	_, err := g.Run(context.Background(), `CREATE TABLE items (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT UNIQUE NOT NULL)`)
	require.NoError(t, err)
	return g
}

func TestGateway_NotInitialized(t *testing.T) {
	ctx := context.Background()
	g := NewGateway()

	_, err := g.Run(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, _, err = g.Get(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = g.All(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrNotInitialized)

	err = g.Transaction(ctx, func(ctx context.Context, tx Executor) error { return nil })
	assert.ErrorIs(t, err, ErrNotInitialized)

	assert.ErrorIs(t, g.Close(), ErrNotInitialized)
}

func TestGateway_RunGetAll(t *testing.T) {
	ctx := context.Background()
	g := newTestGateway(t)

	rows, err := g.All(ctx, "SELECT * FROM items")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	res, err := g.Run(ctx, "INSERT INTO items (name) VALUES (?)", "first")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.InsertedID)
	assert.Equal(t, int64(1), res.RowsAffected)

	_, err = g.Run(ctx, "INSERT INTO items (name) VALUES (?)", "second")
	require.NoError(t, err)

	row, ok, err := g.Get(ctx, "SELECT * FROM items WHERE name = ?", "second")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), row.Int64("id"))
	name, _ := row.String("name")
	assert.Equal(t, "second", name)

	_, ok, err = g.Get(ctx, "SELECT * FROM items WHERE name = ?", "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	rows, err = g.All(ctx, "SELECT * FROM items ORDER BY id DESC")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[0].Int64("id"))
}

func TestGateway_ConstraintError(t *testing.T) {
	ctx := context.Background()
	g := newTestGateway(t)

	_, err := g.Run(ctx, "INSERT INTO items (name) VALUES (?)", "dup")
	require.NoError(t, err)

	_, err = g.Run(ctx, "INSERT INTO items (name) VALUES (?)", "dup")
	var ce *ConstraintError
	require.ErrorAs(t, err, &ce)
	assert.True(t, IsConstraint(err))
}

func TestGateway_PersistenceError(t *testing.T) {
	g := newTestGateway(t)

	_, err := g.Run(context.Background(), "INSERT INTO nowhere (name) VALUES (?)", "x")
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "run", pe.Op)
	assert.False(t, IsConstraint(err))
}

func TestGateway_ConcurrentInitializeOpensOnce(t *testing.T) {
	var opens atomic.Int32
	release := make(chan struct{})
	g := NewGateway(WithOpener(func(ctx context.Context, name string) (*gorm.DB, error) {
		opens.Add(1)
		<-release
		return OpenSQLite(ctx, name)
	}))
	path := filepath.Join(t.TempDir(), "once.db")

	const callers = 8
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- g.Initialize(context.Background(), path)
		}()
	}

	require.Eventually(t, func() bool { return opens.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), opens.Load())
	require.NoError(t, g.Close())
}

func TestGateway_CancelledLeaderDoesNotFailJoiners(t *testing.T) {
	var opens atomic.Int32
	release := make(chan struct{})
	g := NewGateway(WithOpener(func(ctx context.Context, name string) (*gorm.DB, error) {
		opens.Add(1)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return OpenSQLite(ctx, name)
	}))
	t.Cleanup(func() { g.Close() })
	path := filepath.Join(t.TempDir(), "shared.db")

	leaderCtx, cancel := context.WithCancel(context.Background())
	leader := make(chan error, 1)
	go func() { leader <- g.Initialize(leaderCtx, path) }()
	require.Eventually(t, func() bool { return opens.Load() == 1 }, time.Second, time.Millisecond)

	joiner := make(chan error, 1)
	go func() { joiner <- g.Initialize(context.Background(), path) }()
	time.Sleep(20 * time.Millisecond)

	cancel()
	close(release)

	assert.NoError(t, <-joiner)
	assert.NoError(t, <-leader)
	assert.Equal(t, int32(1), opens.Load())
	assert.Equal(t, path, g.Name())
}

func TestGateway_InitializeIdempotent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	g := NewGateway()
	t.Cleanup(func() { g.Close() })

	path := filepath.Join(dir, "a.db")
	require.NoError(t, g.Initialize(ctx, path))
	require.NoError(t, g.Initialize(ctx, path))
	assert.Equal(t, path, g.Name())

	err := g.Initialize(ctx, filepath.Join(dir, "b.db"))
	assert.ErrorIs(t, err, ErrAlreadyOpen)
}

func TestGateway_InitializeFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	g := NewGateway(WithOpener(func(ctx context.Context, name string) (*gorm.DB, error) {
		return nil, boom
	}))

	err := g.Initialize(context.Background(), "broken.db")
	var ie *InitError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "broken.db", ie.Name)
	assert.ErrorIs(t, err, boom)

	_, err = g.Run(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestGateway_CloseThenReinitialize(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")
	g := NewGateway()

	require.NoError(t, g.Initialize(ctx, path))
	require.NoError(t, g.Close())

	_, err := g.Run(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Equal(t, "", g.Name())

	require.NoError(t, g.Initialize(ctx, path))
	_, err = g.All(ctx, "SELECT 1")
	assert.NoError(t, err)
	require.NoError(t, g.Close())
}

func TestGateway_TransactionCommit(t *testing.T) {
	ctx := context.Background()
	g := newTestGateway(t)

	err := g.Transaction(ctx, func(ctx context.Context, tx Executor) error {
		if _, err := tx.Run(ctx, "INSERT INTO items (name) VALUES (?)", "a"); err != nil {
			return err
		}
		_, err := tx.Run(ctx, "INSERT INTO items (name) VALUES (?)", "b")
		return err
	})
	require.NoError(t, err)

	rows, err := g.All(ctx, "SELECT * FROM items")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestGateway_TransactionRollback(t *testing.T) {
	ctx := context.Background()
	g := newTestGateway(t)
	sentinel := errors.New("abort")

	err := g.Transaction(ctx, func(ctx context.Context, tx Executor) error {
		if _, err := tx.Run(ctx, "INSERT INTO items (name) VALUES (?)", "a"); err != nil {
			return err
		}
		return sentinel
	})
	assert.Same(t, sentinel, err)

	err = g.Transaction(ctx, func(ctx context.Context, tx Executor) error {
		if _, err := tx.Run(ctx, "INSERT INTO items (name) VALUES (?)", "b"); err != nil {
			return err
		}
		_, err := tx.Run(ctx, "INSERT INTO items (name) VALUES (?)", "b")
		return err
	})
	assert.True(t, IsConstraint(err))

	rows, err := g.All(ctx, "SELECT * FROM items")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRowAccessors(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	row := Row{
		"id":      int64(7),
		"name":    "x",
		"nothing": nil,
		"at":      "2024-03-01 12:30:00",
		"when":    ts,
	}

	assert.Equal(t, int64(7), row.Int64("id"))
	assert.Equal(t, int64(0), row.Int64("nothing"))

	s, ok := row.String("name")
	assert.True(t, ok)
	assert.Equal(t, "x", s)
	_, ok = row.String("nothing")
	assert.False(t, ok)

	at, ok := row.Time("at")
	require.True(t, ok)
	assert.True(t, at.Equal(ts))

	when, ok := row.Time("when")
	require.True(t, ok)
	assert.True(t, when.Equal(ts))

	_, ok = row.Time("nothing")
	assert.False(t, ok)
}
