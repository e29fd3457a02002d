package sqlitedrv

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/nsqlite/sqlitekit/sqlite"
)

var (
	_ driver.Conn               = (*Conn)(nil)
	_ driver.ConnBeginTx        = (*Conn)(nil)
	_ driver.ConnPrepareContext = (*Conn)(nil)
	_ driver.ExecerContext      = (*Conn)(nil)
	_ driver.QueryerContext     = (*Conn)(nil)
	_ driver.Pinger             = (*Conn)(nil)
	_ driver.SessionResetter    = (*Conn)(nil)
	_ driver.Validator          = (*Conn)(nil)
	_ driver.NamedValueChecker  = (*Conn)(nil)
)

// ErrNamedParameters is returned when a statement receives named arguments.
var ErrNamedParameters = errors.New("sqlitedrv: named parameters are not supported")

// Conn implements the database/sql/driver.Conn interface
type Conn struct {
	conn   *sqlite.Conn
	closed atomic.Bool
}

// RawConn returns the underlying sqlite connection
func (conn *Conn) RawConn() *sqlite.Conn {
	return conn.conn
}

// Close closes the connection to the SQLite database
func (conn *Conn) Close() error {
	conn.closed.Store(true)
	return conn.conn.Close()
}

// Prepare returns a statement bound to this connection. The SQL is compiled
// each time the statement runs.
func (conn *Conn) Prepare(query string) (driver.Stmt, error) {
	return conn.PrepareContext(context.Background(), query)
}

// PrepareContext is Prepare with a context
func (conn *Conn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if conn.closed.Load() {
		return nil, driver.ErrBadConn
	}
	return &Stmt{conn: conn, query: query}, nil
}

// Begin starts a write transaction
func (conn *Conn) Begin() (driver.Tx, error) {
	return conn.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx starts a transaction, immediate unless opts asks for a read-only
// one. Only the default isolation level is accepted, SQLite transactions are
// always serializable.
func (conn *Conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	level := sql.IsolationLevel(opts.Isolation)
	if level != sql.LevelDefault && level != sql.LevelSerializable {
		return nil, fmt.Errorf("sqlitedrv: unsupported isolation level %s", level)
	}

	begin := "BEGIN"
	if !opts.ReadOnly {
		begin = "BEGIN IMMEDIATE"
	}
	if err := conn.exec(begin); err != nil {
		return nil, err
	}
	return &Tx{conn: conn}, nil
}

// ExecContext runs every statement of query and reports the last insert row
// ID and affected rows of the last one
func (conn *Conn) ExecContext(
	ctx context.Context, query string, args []driver.NamedValue,
) (driver.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bindings, err := toBindings(args)
	if err != nil {
		return nil, err
	}

	res, err := conn.conn.RunScript(query, bindings...)
	if err != nil {
		return nil, conn.checkErr(err)
	}
	return &Result{
		lastInsertID: res.LastInsertRowID,
		rowsAffected: res.RowsAffected,
	}, nil
}

// QueryContext runs every statement of query and buffers the rows of the
// last one
func (conn *Conn) QueryContext(
	ctx context.Context, query string, args []driver.NamedValue,
) (driver.Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bindings, err := toBindings(args)
	if err != nil {
		return nil, err
	}

	res, err := conn.conn.RunScript(query, bindings...)
	if err != nil {
		return nil, conn.checkErr(err)
	}
	return newRows(res), nil
}

// Ping checks that the connection can still run statements
func (conn *Conn) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return conn.exec("SELECT 1")
}

// ResetSession reports closed connections as bad so the pool discards them
func (conn *Conn) ResetSession(_ context.Context) error {
	if conn.closed.Load() {
		return driver.ErrBadConn
	}
	return nil
}

// IsValid reports whether the connection can be reused
func (conn *Conn) IsValid() bool {
	return !conn.closed.Load()
}

// CheckNamedValue accepts every Go type sqlite.FromAny understands and
// leaves the rest to the default converter.
func (conn *Conn) CheckNamedValue(nv *driver.NamedValue) error {
	if _, err := sqlite.FromAny(nv.Value); err != nil {
		return driver.ErrSkip
	}
	return nil
}

func (conn *Conn) exec(query string) error {
	if err := conn.conn.Exec(query); err != nil {
		return conn.checkErr(err)
	}
	return nil
}

// checkErr maps a closed sqlite connection to driver.ErrBadConn.
func (conn *Conn) checkErr(err error) error {
	if errors.Is(err, sqlite.ErrClosed) {
		conn.closed.Store(true)
		return driver.ErrBadConn
	}
	return err
}

// toBindings converts positional driver arguments into sqlite values.
func toBindings(args []driver.NamedValue) ([]sqlite.Value, error) {
	bindings := make([]sqlite.Value, len(args))
	for i, arg := range args {
		if arg.Name != "" {
			return nil, fmt.Errorf("%w: %q", ErrNamedParameters, arg.Name)
		}

		value, err := sqlite.FromAny(arg.Value)
		if err != nil {
			return nil, fmt.Errorf("sqlitedrv: argument %d: %w", arg.Ordinal, err)
		}
		bindings[i] = value
	}
	return bindings, nil
}

// Result implements the database/sql/driver.Result interface
type Result struct {
	lastInsertID int64
	rowsAffected int64
}

// LastInsertId returns the connection's last insert row ID
func (r *Result) LastInsertId() (int64, error) {
	return r.lastInsertID, nil
}

// RowsAffected returns the rows changed by the statement
func (r *Result) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}

// Tx implements the database/sql/driver.Tx interface
type Tx struct {
	conn *Conn
}

// Commit commits the transaction. SQLite keeps the transaction open when
// COMMIT fails, so it is rolled back before the connection returns to the
// pool; a connection that cannot be rolled back is reported as bad.
func (tx *Tx) Commit() error {
	err := tx.conn.exec("COMMIT")
	if err == nil || errors.Is(err, driver.ErrBadConn) {
		return err
	}

	if tx.conn.conn.InTransaction() {
		if rbErr := tx.conn.exec("ROLLBACK"); rbErr != nil {
			tx.conn.closed.Store(true)
		}
	}
	return err
}

// Rollback rolls the transaction back
func (tx *Tx) Rollback() error {
	return tx.conn.exec("ROLLBACK")
}
