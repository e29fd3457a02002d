package sqlite

import (
	"runtime"
	"sync"
	"time"

	"github.com/nsqlite/sqlitekit/internal/log"
	"github.com/nsqlite/sqlitekit/internal/sqlitec"
)

// memoryPath is what an empty path is opened as.
const memoryPath = ":memory:"

// Conn is a connection to a SQLite database.
//
// All methods are safe for concurrent use. Calls are executed one at a time
// on a goroutine owned by the connection, in the order they arrive.
type Conn struct {
	path   string
	logger log.Logger
	w      *worker
	stats  connStats

	// mu guards closed; holders of the read lock may submit tasks.
	mu     sync.RWMutex
	closed bool
}

// worker owns the native handle. It is kept apart from Conn so that the
// running goroutine does not keep an abandoned Conn reachable.
type worker struct {
	raw   *sqlitec.Conn
	tasks chan func(*sqlitec.Conn)
	done  chan struct{}
	// closeErr is written before done is closed.
	closeErr error
}

// run executes tasks until the channel is closed, then releases the handle.
func (w *worker) run() {
	defer close(w.done)
	for task := range w.tasks {
		task(w.raw)
	}
	w.closeErr = w.raw.Close()
}

// Result is everything Run reports about a statement.
type Result struct {
	// Columns are the result column names.
	Columns []string
	// DeclTypes are the declared column types, empty for expressions.
	DeclTypes []string
	// Rows are the produced rows, in order.
	Rows []Row
	// LastInsertRowID is the connection's last insert row ID after the
	// statement ran.
	LastInsertRowID int64
	// RowsAffected is the number of rows changed by a write statement, zero
	// for read-only statements.
	RowsAffected int64
	// Time is how long the statement took once it reached the database.
	Time time.Duration
}

// Open opens the database at path for reading and writing, creating it if it
// does not exist. An empty path opens a private in-memory database.
//
// https://www.sqlite.org/c3ref/open.html
func Open(path string, opts ...Option) (*Conn, error) {
	o := options{logger: log.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	dbPath := path
	if dbPath == "" {
		dbPath = memoryPath
	}

	raw, err := sqlitec.Open(dbPath, sqlitec.OpenFlagsDefault)
	if err != nil {
		o.logger.WarnNs(log.NsDatabase, "failed to open database", log.KV{
			"path":  dbPath,
			"error": err.Error(),
		})
		return nil, translate(err)
	}

	for _, query := range o.postOpenQueries {
		if err := raw.Exec(query); err != nil {
			o.logger.WarnNs(log.NsDatabase, "post-open query failed", log.KV{
				"path":  dbPath,
				"query": query,
				"error": err.Error(),
			})
			_ = raw.Close()
			return nil, translate(err)
		}
	}

	w := &worker{
		raw:   raw,
		tasks: make(chan func(*sqlitec.Conn)),
		done:  make(chan struct{}),
	}
	go w.run()

	conn := &Conn{
		path:   dbPath,
		logger: o.logger,
		w:      w,
	}
	conn.stats.openedAt = time.Now()
	runtime.SetFinalizer(conn, (*Conn).Close)

	conn.logger.InfoNs(log.NsDatabase, "database opened", log.KV{"path": dbPath})
	return conn, nil
}

// Path returns the path the connection was opened with, ":memory:" for an
// in-memory database.
func (conn *Conn) Path() string {
	return conn.path
}

// do runs task on the connection goroutine and waits for it to finish.
func (conn *Conn) do(task func(raw *sqlitec.Conn)) error {
	conn.mu.RLock()
	defer conn.mu.RUnlock()
	if conn.closed {
		return ErrClosed
	}

	conn.stats.waiting.Add(1)
	defer conn.stats.waiting.Add(-1)

	finished := make(chan struct{})
	conn.w.tasks <- func(raw *sqlitec.Conn) {
		defer close(finished)
		task(raw)
	}
	<-finished

	return nil
}

// Exec runs zero or more semicolon-separated statements without parameters,
// discarding any result rows. It is meant for DDL and scripts.
//
// https://www.sqlite.org/c3ref/exec.html
func (conn *Conn) Exec(query string) error {
	var execErr error
	if err := conn.do(func(raw *sqlitec.Conn) {
		execErr = translate(raw.Exec(query))
	}); err != nil {
		return err
	}

	conn.stats.execs.Add(1)
	conn.stats.touch()
	if execErr != nil {
		conn.failed(query, execErr)
		return execErr
	}
	return nil
}

// Query runs the first statement of query with the given positional
// parameters and returns every row it produces. Statements that produce no
// rows, like INSERT or UPDATE, return an empty slice.
func (conn *Conn) Query(query string, bindings ...Value) ([]Row, error) {
	res, err := conn.run(query, func(raw *sqlitec.Conn) (Result, error) {
		return execute(raw, query, bindings, false)
	})
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// Run is Query plus the column metadata, the last insert row ID, the number
// of affected rows and timing, all captured in the same serialized call.
func (conn *Conn) Run(query string, bindings ...Value) (Result, error) {
	return conn.run(query, func(raw *sqlitec.Conn) (Result, error) {
		return execute(raw, query, bindings, true)
	})
}

// RunScript runs every statement of query in order, within one serialized
// call, and returns what Run reports for the last one. Rows produced by
// earlier statements are discarded. Each statement takes as many bindings
// as it has parameters; bindings left over once the script ends are an
// error.
func (conn *Conn) RunScript(query string, bindings ...Value) (Result, error) {
	return conn.run(query, func(raw *sqlitec.Conn) (Result, error) {
		return executeScript(raw, query, bindings)
	})
}

func (conn *Conn) run(query string, fn func(raw *sqlitec.Conn) (Result, error)) (Result, error) {
	var (
		res    Result
		runErr error
	)
	if err := conn.do(func(raw *sqlitec.Conn) {
		res, runErr = fn(raw)
	}); err != nil {
		return Result{}, err
	}

	conn.stats.queries.Add(1)
	conn.stats.touch()
	if runErr != nil {
		conn.failed(query, runErr)
		return Result{}, runErr
	}
	return res, nil
}

// execute prepares, binds and steps one statement to completion. The
// statement is finalized on every return path.
func execute(raw *sqlitec.Conn, query string, bindings []Value, withMeta bool) (Result, error) {
	start := time.Now()

	stmt, err := raw.Prepare(query)
	if err != nil {
		return Result{}, translate(err)
	}
	defer func() {
		_ = stmt.Finalize()
	}()

	if stmt.IsEmpty() {
		if len(bindings) > 0 {
			return Result{}, newError(sqlitec.SQLITE_RANGE, "statement has no parameters")
		}
		return Result{Rows: []Row{}, Time: time.Since(start)}, nil
	}

	res, err := step(raw, stmt, bindings, withMeta)
	if err != nil {
		return Result{}, err
	}
	res.Time = time.Since(start)
	return res, nil
}

// executeScript runs the statements of query one after the other until only
// whitespace and comments remain.
func executeScript(raw *sqlitec.Conn, query string, bindings []Value) (Result, error) {
	start := time.Now()
	res := Result{Rows: []Row{}}

	for rest := query; rest != ""; {
		stmt, tail, err := raw.PrepareTail(rest)
		if err != nil {
			return Result{}, translate(err)
		}
		if len(tail) == len(rest) {
			_ = stmt.Finalize()
			break
		}
		rest = tail
		if stmt.IsEmpty() {
			continue
		}

		n := min(stmt.BindParameterCount(), len(bindings))
		res, err = step(raw, stmt, bindings[:n], true)
		_ = stmt.Finalize()
		if err != nil {
			return Result{}, err
		}
		bindings = bindings[n:]
	}

	if len(bindings) > 0 {
		return Result{}, newError(sqlitec.SQLITE_RANGE, "more bindings than statement parameters")
	}
	res.Time = time.Since(start)
	return res, nil
}

// step binds and runs a prepared statement until it is done. The caller
// owns the statement.
func step(raw *sqlitec.Conn, stmt *sqlitec.Stmt, bindings []Value, withMeta bool) (Result, error) {
	if err := bindValues(stmt, bindings); err != nil {
		return Result{}, err
	}

	res := Result{Rows: []Row{}}
	if withMeta {
		columnCount := stmt.ColumnCount()
		res.Columns = make([]string, columnCount)
		res.DeclTypes = make([]string, columnCount)
		for i := range columnCount {
			res.Columns[i] = stmt.ColumnName(i)
			res.DeclTypes[i] = stmt.ColumnDeclType(i)
		}
	}

	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return Result{}, translate(err)
		}
		if !hasRow {
			break
		}
		res.Rows = append(res.Rows, readRow(stmt))
	}

	res.LastInsertRowID = raw.LastInsertRowID()
	if !stmt.ReadOnly() {
		res.RowsAffected = raw.RowsAffected()
	}
	return res, nil
}

// failed records and logs a failed call.
func (conn *Conn) failed(query string, err error) {
	conn.stats.failures.Add(1)
	conn.logger.DebugNs(log.NsDatabase, "statement failed", log.KV{
		"query": query,
		"error": err.Error(),
	})
}

// LastInsertRowID returns the row ID of the most recent successful INSERT on
// this connection, or zero if there was none or the connection is closed.
//
// https://www.sqlite.org/c3ref/last_insert_rowid.html
func (conn *Conn) LastInsertRowID() int64 {
	var id int64
	_ = conn.do(func(raw *sqlitec.Conn) {
		id = raw.LastInsertRowID()
	})
	return id
}

// RowsAffected returns the number of rows changed by the most recent
// INSERT, UPDATE or DELETE on this connection, or zero if the connection is
// closed.
//
// https://www.sqlite.org/c3ref/changes.html
func (conn *Conn) RowsAffected() int64 {
	var n int64
	_ = conn.do(func(raw *sqlitec.Conn) {
		n = raw.RowsAffected()
	})
	return n
}

// InTransaction reports whether an explicit transaction is open on the
// connection. A closed connection is never in a transaction.
//
// https://www.sqlite.org/c3ref/get_autocommit.html
func (conn *Conn) InTransaction() bool {
	var inTx bool
	_ = conn.do(func(raw *sqlitec.Conn) {
		inTx = !raw.AutoCommit()
	})
	return inTx
}

// Stats returns the connection counters.
func (conn *Conn) Stats() Stats {
	return conn.stats.snapshot()
}

// Close waits for calls already queued, then releases the native handle.
// Calling Close more than once is a no-op, and a Conn that is garbage
// collected without being closed is closed automatically.
//
// https://www.sqlite.org/c3ref/close.html
func (conn *Conn) Close() error {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	if conn.closed {
		return nil
	}
	conn.closed = true
	runtime.SetFinalizer(conn, nil)

	close(conn.w.tasks)
	<-conn.w.done

	if err := conn.w.closeErr; err != nil {
		conn.logger.ErrorNs(log.NsDatabase, "failed to close database", log.KV{
			"path":  conn.path,
			"error": err.Error(),
		})
		return translate(err)
	}

	conn.logger.InfoNs(log.NsDatabase, "database closed", log.KV{"path": conn.path})
	return nil
}
