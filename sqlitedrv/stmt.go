package sqlitedrv

import (
	"context"
	"database/sql/driver"
	"io"
	"strings"

	"github.com/nsqlite/sqlitekit/sqlite"
)

var (
	_ driver.Stmt             = (*Stmt)(nil)
	_ driver.StmtExecContext  = (*Stmt)(nil)
	_ driver.StmtQueryContext = (*Stmt)(nil)

	_ driver.Rows                           = (*Rows)(nil)
	_ driver.RowsColumnTypeDatabaseTypeName = (*Rows)(nil)
)

// Stmt implements the database/sql/driver.Stmt interface. It only keeps the
// SQL text; sqlite.Conn prepares and finalizes on every run.
type Stmt struct {
	conn  *Conn
	query string
}

// Close is no-op, nothing is held between runs
func (stmt *Stmt) Close() error {
	return nil
}

// NumInput returns -1, the parameter count is checked by SQLite at bind time
func (stmt *Stmt) NumInput() int {
	return -1
}

// Exec runs the statement with positional arguments
func (stmt *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	return stmt.ExecContext(context.Background(), toNamed(args))
}

// Query runs the statement with positional arguments
func (stmt *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	return stmt.QueryContext(context.Background(), toNamed(args))
}

// ExecContext runs the statement with positional arguments
func (stmt *Stmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	return stmt.conn.ExecContext(ctx, stmt.query, args)
}

// QueryContext runs the statement with positional arguments
func (stmt *Stmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	return stmt.conn.QueryContext(ctx, stmt.query, args)
}

func toNamed(args []driver.Value) []driver.NamedValue {
	named := make([]driver.NamedValue, len(args))
	for i, arg := range args {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: arg}
	}
	return named
}

// Rows implements the database/sql/driver.Rows interface over a fully
// buffered result.
type Rows struct {
	columns   []string
	declTypes []string
	rows      []sqlite.Row
	next      int
}

func newRows(res sqlite.Result) *Rows {
	return &Rows{
		columns:   res.Columns,
		declTypes: res.DeclTypes,
		rows:      res.Rows,
	}
}

// Columns returns the result column names
func (r *Rows) Columns() []string {
	return r.columns
}

// ColumnTypeDatabaseTypeName returns the declared type of column i in upper
// case, empty for expressions
func (r *Rows) ColumnTypeDatabaseTypeName(i int) string {
	return strings.ToUpper(r.declTypes[i])
}

// Close releases the buffered rows
func (r *Rows) Close() error {
	r.rows = nil
	return nil
}

// Next copies the next row into dest
func (r *Rows) Next(dest []driver.Value) error {
	if r.next >= len(r.rows) {
		return io.EOF
	}

	row := r.rows[r.next]
	r.next++
	for i, value := range row {
		dest[i] = value.Any()
	}
	return nil
}
