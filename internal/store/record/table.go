// Package record provides generic CRUD over a single SQLite table with
// automatic timestamps and soft delete. Entity stores wrap a Table and add
// their own typed accessors.
package record

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yiblet/clipkeep/internal/store/dbstore"
)

// ErrUnknownColumn is returned when a write names a column the table
// does not declare.
var ErrUnknownColumn = errors.New("unknown column")

const activeFilter = "deleted_at IS NULL"

// Column declares a table column, e.g. {Name: "key", Decl: "TEXT UNIQUE NOT NULL"}.
type Column struct {
	Name string
	Decl string
}

// Values maps column names to values for create and update.
type Values map[string]any

// Table is CRUD access to one table. Every table gets an integer primary
// key plus deleted_at, created_at and updated_at columns.
type Table struct {
	exec    dbstore.Executor
	name    string
	columns []Column
	now     func() time.Time
}

// New returns a Table named name with the given declared columns.
func New(exec dbstore.Executor, name string, columns ...Column) *Table {
	return &Table{
		exec:    exec,
		name:    name,
		columns: columns,
		now:     time.Now,
	}
}

// With returns a copy of t that runs on exec, typically a transaction.
func (t *Table) With(exec dbstore.Executor) *Table {
	c := *t
	c.exec = exec
	return &c
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// CreateTable defines the table if it does not exist.
func (t *Table) CreateTable(ctx context.Context) error {
	defs := make([]string, 0, len(t.columns)+4)
	defs = append(defs, "id INTEGER PRIMARY KEY AUTOINCREMENT")
	for _, c := range t.columns {
		defs = append(defs, c.Name+" "+c.Decl)
	}
	defs = append(defs,
		"deleted_at DATETIME DEFAULT NULL",
		"created_at DATETIME DEFAULT CURRENT_TIMESTAMP",
		"updated_at DATETIME DEFAULT CURRENT_TIMESTAMP",
	)

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", t.name, strings.Join(defs, ", "))
	if _, err := t.exec.Run(ctx, query); err != nil {
		return err
	}
	return nil
}

// Create inserts a row and returns data merged with the assigned id and
// created_at. A uniqueness violation returns a *dbstore.ConstraintError.
func (t *Table) Create(ctx context.Context, data Values) (dbstore.Row, error) {
	cols, err := t.sortedColumns(data)
	if err != nil {
		return nil, err
	}

	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = data[c]
	}

	var query string
	if len(cols) == 0 {
		query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", t.name)
	} else {
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			t.name, strings.Join(cols, ", "), placeholders(len(cols)))
	}

	res, err := t.exec.Run(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	row := make(dbstore.Row, len(data)+2)
	for k, v := range data {
		row[k] = v
	}
	row["id"] = res.InsertedID
	row["created_at"] = t.now().UTC()
	return row, nil
}

// FindByID returns the active row with the given id.
func (t *Table) FindByID(ctx context.Context, id int64) (dbstore.Row, bool, error) {
	return t.FindOne(ctx, "id = ?", id)
}

// FindAll returns active rows, newest first. Rows created in the same
// second keep insertion order through the id tie-break.
func (t *Table) FindAll(ctx context.Context) ([]dbstore.Row, error) {
	return t.FindWhere(ctx, "")
}

// FindLatest returns the active row with the highest id.
func (t *Table) FindLatest(ctx context.Context) (dbstore.Row, bool, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s ORDER BY id DESC LIMIT 1", t.name, activeFilter)
	return t.exec.Get(ctx, query)
}

// FindOne returns the first active row matching where.
func (t *Table) FindOne(ctx context.Context, where string, args ...any) (dbstore.Row, bool, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s AND (%s) LIMIT 1", t.name, activeFilter, where)
	return t.exec.Get(ctx, query, args...)
}

// FindWhere returns active rows matching where, newest first.
// An empty where matches every active row.
func (t *Table) FindWhere(ctx context.Context, where string, args ...any) ([]dbstore.Row, error) {
	cond := activeFilter
	if where != "" {
		cond += " AND (" + where + ")"
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s ORDER BY created_at DESC, id DESC", t.name, cond)
	return t.exec.All(ctx, query, args...)
}

// Update sets the given columns and refreshes updated_at on the active row
// with the given id. It returns the number of rows changed; 0 means no
// active row matched and is not an error.
func (t *Table) Update(ctx context.Context, id int64, data Values) (int64, error) {
	cols, err := t.sortedColumns(data)
	if err != nil {
		return 0, err
	}

	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	for _, c := range cols {
		sets = append(sets, c+" = ?")
		args = append(args, data[c])
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND %s", t.name, strings.Join(sets, ", "), activeFilter)
	res, err := t.exec.Run(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

// SoftDelete stamps deleted_at on the row. It does not check the current
// state, so deleting twice is harmless.
func (t *Table) SoftDelete(ctx context.Context, id int64) (int64, error) {
	query := fmt.Sprintf("UPDATE %s SET deleted_at = CURRENT_TIMESTAMP WHERE id = ?", t.name)
	res, err := t.exec.Run(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

// Restore clears deleted_at on a soft-deleted row. It returns 0 if the row
// does not exist or is already active.
func (t *Table) Restore(ctx context.Context, id int64) (int64, error) {
	query := fmt.Sprintf("UPDATE %s SET deleted_at = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NOT NULL", t.name)
	res, err := t.exec.Run(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

// Count returns the number of rows, optionally including soft-deleted ones.
func (t *Table) Count(ctx context.Context, includeDeleted bool) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) AS n FROM %s", t.name)
	if !includeDeleted {
		query += " WHERE " + activeFilter
	}
	row, _, err := t.exec.Get(ctx, query)
	if err != nil {
		return 0, err
	}
	return row.Int64("n"), nil
}

// sortedColumns validates the keys of data and returns them in a stable order.
func (t *Table) sortedColumns(data Values) ([]string, error) {
	cols := make([]string, 0, len(data))
	for k := range data {
		if !t.hasColumn(k) {
			return nil, fmt.Errorf("%w %q for table %s", ErrUnknownColumn, k, t.name)
		}
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols, nil
}

func (t *Table) hasColumn(name string) bool {
	for _, c := range t.columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
