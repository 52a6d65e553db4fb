package record

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yiblet/clipkeep/internal/store/dbstore"
)

func setupTable(t *testing.T) (*Table, *dbstore.Gateway) {
	t.Helper()
	gw := dbstore.NewGateway()
	require.NoError(t, gw.Initialize(context.Background(), filepath.Join(t.TempDir(), "record.db")))
	t.Cleanup(func() { gw.Close() })

	table := New(gw, "notes",
		Column{Name: "title", Decl: "TEXT UNIQUE NOT NULL"},
		Column{Name: "body", Decl: "TEXT"},
	)
	require.NoError(t, table.CreateTable(context.Background()))
	return table, gw
}

func TestTable_CreateTableIsIdempotent(t *testing.T) {
	table, _ := setupTable(t)
	assert.NoError(t, table.CreateTable(context.Background()))
	assert.Equal(t, "notes", table.Name())
}

func TestTable_Create(t *testing.T) {
	ctx := context.Background()
	table, _ := setupTable(t)

	row, err := table.Create(ctx, Values{"title": "a", "body": "first"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), row.Int64("id"))
	assert.Equal(t, "a", row["title"])
	_, ok := row.Time("created_at")
	assert.True(t, ok)

	found, ok, err := table.FindByID(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	body, _ := found.String("body")
	assert.Equal(t, "first", body)
	_, deleted := found.String("deleted_at")
	assert.False(t, deleted)
}

func TestTable_CreateRejectsUnknownColumn(t *testing.T) {
	table, _ := setupTable(t)

	_, err := table.Create(context.Background(), Values{"title": "a", "color": "red"})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestTable_CreateDuplicateIsConstraintError(t *testing.T) {
	ctx := context.Background()
	table, _ := setupTable(t)

	_, err := table.Create(ctx, Values{"title": "same"})
	require.NoError(t, err)

	_, err = table.Create(ctx, Values{"title": "same"})
	var ce *dbstore.ConstraintError
	assert.ErrorAs(t, err, &ce)
}

func TestTable_FindByIDMissing(t *testing.T) {
	table, _ := setupTable(t)

	_, ok, err := table.FindByID(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTable_FindAllNewestFirst(t *testing.T) {
	ctx := context.Background()
	table, gw := setupTable(t)

	for _, title := range []string{"t1", "t2", "t3"} {
		_, err := table.Create(ctx, Values{"title": title})
		require.NoError(t, err)
	}

	rows, err := table.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []any{"t3", "t2", "t1"}, []any{rows[0]["title"], rows[1]["title"], rows[2]["title"]})

	// created_at wins over id when they disagree.
	_, err = gw.Run(ctx, "UPDATE notes SET created_at = ? WHERE title = ?", "2030-01-01 00:00:00", "t1")
	require.NoError(t, err)

	rows, err = table.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t1", rows[0]["title"])
}

func TestTable_FindLatest(t *testing.T) {
	ctx := context.Background()
	table, _ := setupTable(t)

	_, ok, err := table.FindLatest(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	for _, title := range []string{"a", "b", "c"} {
		_, err := table.Create(ctx, Values{"title": title})
		require.NoError(t, err)
	}

	latest, ok, err := table.FindLatest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "c", latest["title"])

	_, err = table.SoftDelete(ctx, latest.Int64("id"))
	require.NoError(t, err)

	latest, ok, err = table.FindLatest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", latest["title"])
}

func TestTable_FindWhere(t *testing.T) {
	ctx := context.Background()
	table, _ := setupTable(t)

	_, err := table.Create(ctx, Values{"title": "a", "body": "keep"})
	require.NoError(t, err)
	_, err = table.Create(ctx, Values{"title": "b", "body": "drop"})
	require.NoError(t, err)

	rows, err := table.FindWhere(ctx, "body = ?", "keep")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0]["title"])

	row, ok, err := table.FindOne(ctx, "title = ?", "b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "drop", row["body"])
}

func TestTable_Update(t *testing.T) {
	ctx := context.Background()
	table, _ := setupTable(t)

	row, err := table.Create(ctx, Values{"title": "a", "body": "old"})
	require.NoError(t, err)
	id := row.Int64("id")

	n, err := table.Update(ctx, id, Values{"body": "new"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	found, _, err := table.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "new", found["body"])

	n, err = table.Update(ctx, 999, Values{"body": "none"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = table.Update(ctx, id, Values{"nope": 1})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestTable_UpdateSkipsDeletedRows(t *testing.T) {
	ctx := context.Background()
	table, _ := setupTable(t)

	row, err := table.Create(ctx, Values{"title": "a"})
	require.NoError(t, err)
	id := row.Int64("id")

	_, err = table.SoftDelete(ctx, id)
	require.NoError(t, err)

	n, err := table.Update(ctx, id, Values{"body": "ghost"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestTable_SoftDeleteKeepsRow(t *testing.T) {
	ctx := context.Background()
	table, _ := setupTable(t)

	row, err := table.Create(ctx, Values{"title": "x"})
	require.NoError(t, err)
	id := row.Int64("id")

	_, err = table.SoftDelete(ctx, id)
	require.NoError(t, err)
	_, err = table.SoftDelete(ctx, id)
	require.NoError(t, err)

	_, ok, err := table.FindByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	active, err := table.Count(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), active)

	total, err := table.Count(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestTable_Restore(t *testing.T) {
	ctx := context.Background()
	table, _ := setupTable(t)

	row, err := table.Create(ctx, Values{"title": "x"})
	require.NoError(t, err)
	id := row.Int64("id")

	n, err := table.Restore(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "active rows are not restored")

	_, err = table.SoftDelete(ctx, id)
	require.NoError(t, err)

	n, err = table.Restore(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, err := table.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTable_WithTransaction(t *testing.T) {
	ctx := context.Background()
	table, gw := setupTable(t)
	abort := errors.New("abort")

	err := gw.Transaction(ctx, func(ctx context.Context, tx dbstore.Executor) error {
		if _, err := table.With(tx).Create(ctx, Values{"title": "in-tx"}); err != nil {
			return err
		}
		return abort
	})
	require.ErrorIs(t, err, abort)

	total, err := table.Count(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
