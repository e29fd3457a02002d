package sqlitec

/*
#cgo LDFLAGS: -lsqlite3
#include <sqlite3.h>
#include <stdlib.h>

// SQLITE_TRANSIENT is a function pointer cast that cgo can't express, so the
// transient binds are wrapped here.
static int cust_sqlite3_bind_text(sqlite3_stmt *stmt, int idx, const char *val, int n) {
	return sqlite3_bind_text(stmt, idx, val, n, SQLITE_TRANSIENT);
}

static int cust_sqlite3_bind_blob(sqlite3_stmt *stmt, int idx, const void *val, int n) {
	return sqlite3_bind_blob(stmt, idx, val, n, SQLITE_TRANSIENT);
}
*/
import "C"
import (
	"errors"
	"math"
	"strings"
	"unsafe"
)

// Conn represents a low-level connection to a SQLite database.
//
// https://www.sqlite.org/c3ref/sqlite3.html
type Conn struct {
	cDB *C.sqlite3
}

// Stmt represents a prepared statement in SQLite.
//
// https://www.sqlite.org/c3ref/stmt.html
type Stmt struct {
	conn  *Conn
	cStmt *C.sqlite3_stmt
}

var errNilStmt = errors.New("cannot use a nil statement")

// checkSQL rejects SQL text SQLite would silently cut at an embedded NUL.
func checkSQL(query string) error {
	if strings.IndexByte(query, 0) >= 0 {
		return &Error{Code: SQLITE_MISUSE, Msg: "SQL text contains a NUL character"}
	}
	return nil
}

// checkBindLen rejects text and blob parameters whose length does not fit
// the C int SQLite takes.
func checkBindLen(n int) error {
	if n > math.MaxInt32 {
		return &Error{Code: SQLITE_TOOBIG, Msg: "string or blob too big"}
	}
	return nil
}

// ErrMsg returns the English-language text of the most recent failed call on
// the connection.
//
// https://www.sqlite.org/c3ref/errcode.html
func (conn *Conn) ErrMsg() string {
	if conn == nil || conn.cDB == nil {
		return ""
	}
	return C.GoString(C.sqlite3_errmsg(conn.cDB))
}

// newError builds an *Error from resCode, attaching the connection message.
func (conn *Conn) newError(resCode C.int) error {
	return &Error{Code: ResultCode(resCode), Msg: conn.ErrMsg()}
}

// Open opens a SQLite database connection using the given path and flags.
// On failure the handle SQLite may have allocated is released before
// returning.
//
// https://www.sqlite.org/c3ref/open.html
func Open(filePath string, flags OpenFlags) (*Conn, error) {
	cFilePath := C.CString(filePath)
	defer C.free(unsafe.Pointer(cFilePath))

	var db *C.sqlite3
	resCode := C.sqlite3_open_v2(cFilePath, &db, C.int(flags), nil)
	if resCode != C.SQLITE_OK {
		err := (&Conn{cDB: db}).newError(resCode)
		if db != nil {
			_ = C.sqlite3_close_v2(db)
		}
		return nil, err
	}

	return &Conn{cDB: db}, nil
}

// Close releases the connection. Calling Close on an already closed
// connection is a no-op.
//
// https://www.sqlite.org/c3ref/close.html
func (conn *Conn) Close() error {
	if conn.cDB == nil {
		return nil
	}

	// The sqlite3_close_v2() interface is intended for use with host
	// languages that are garbage collected, and where the order in which
	// destructors are called is arbitrary.
	resCode := C.sqlite3_close_v2(conn.cDB)
	if resCode != C.SQLITE_OK {
		return conn.newError(resCode)
	}
	conn.cDB = nil

	return nil
}

// IsClosed reports whether Close already released the handle.
func (conn *Conn) IsClosed() bool {
	return conn.cDB == nil
}

// LastInsertRowID returns the row ID of the most recent successful INSERT
// into the database from the current connection.
//
// https://www.sqlite.org/c3ref/last_insert_rowid.html
func (conn *Conn) LastInsertRowID() int64 {
	return int64(C.sqlite3_last_insert_rowid(conn.cDB))
}

// RowsAffected returns the number of rows modified, inserted, or deleted by
// the most recent successful INSERT, UPDATE, or DELETE statement from the
// current connection.
//
// https://www.sqlite.org/c3ref/changes.html
func (conn *Conn) RowsAffected() int64 {
	return int64(C.sqlite3_changes(conn.cDB))
}

// Exec runs zero or more semicolon-separated statements, discarding any
// result rows.
//
// https://www.sqlite.org/c3ref/exec.html
func (conn *Conn) Exec(query string) error {
	if err := checkSQL(query); err != nil {
		return err
	}
	cQuery := C.CString(query)
	defer C.free(unsafe.Pointer(cQuery))

	var cErrMsg *C.char
	resCode := C.sqlite3_exec(conn.cDB, cQuery, nil, nil, &cErrMsg)
	if cErrMsg != nil {
		defer C.sqlite3_free(unsafe.Pointer(cErrMsg))
	}
	if resCode != C.SQLITE_OK {
		msg := C.GoString(cErrMsg)
		if msg == "" {
			msg = conn.ErrMsg()
		}
		return &Error{Code: ResultCode(resCode), Msg: msg}
	}

	return nil
}

// Prepare compiles the first statement of the given SQL text. The returned
// statement must be released with Finalize.
//
// https://www.sqlite.org/c3ref/prepare.html
func (conn *Conn) Prepare(query string) (*Stmt, error) {
	stmt, _, err := conn.PrepareTail(query)
	return stmt, err
}

// PrepareTail is Prepare that also returns the SQL text following the first
// statement, so a script can be run one statement at a time.
func (conn *Conn) PrepareTail(query string) (*Stmt, string, error) {
	if err := checkSQL(query); err != nil {
		return nil, "", err
	}
	cQuery := C.CString(query)
	defer C.free(unsafe.Pointer(cQuery))

	var (
		cStmt *C.sqlite3_stmt
		cTail *C.char
	)
	resCode := C.sqlite3_prepare_v2(conn.cDB, cQuery, C.int(-1), &cStmt, &cTail)
	if resCode != C.SQLITE_OK {
		return nil, "", conn.newError(resCode)
	}

	tail := ""
	if cTail != nil {
		offset := int(uintptr(unsafe.Pointer(cTail)) - uintptr(unsafe.Pointer(cQuery)))
		tail = query[offset:]
	}
	return &Stmt{conn: conn, cStmt: cStmt}, tail, nil
}

// AutoCommit reports whether the connection is outside an explicit
// transaction.
//
// https://www.sqlite.org/c3ref/get_autocommit.html
func (conn *Conn) AutoCommit() bool {
	return C.sqlite3_get_autocommit(conn.cDB) != 0
}

// IsEmpty reports whether the SQL text held no statement at all, such as an
// empty string or a comment. An empty statement produces no rows.
func (stmt *Stmt) IsEmpty() bool {
	return stmt.cStmt == nil
}

// ReadOnly returns true if the statement makes no direct changes to the
// database file.
//
// https://www.sqlite.org/c3ref/stmt_readonly.html
func (stmt *Stmt) ReadOnly() bool {
	return C.sqlite3_stmt_readonly(stmt.cStmt) != 0
}

// BindParameterCount returns the largest parameter index of the statement.
//
// https://www.sqlite.org/c3ref/bind_parameter_count.html
func (stmt *Stmt) BindParameterCount() int {
	return int(C.sqlite3_bind_parameter_count(stmt.cStmt))
}

func (stmt *Stmt) bindResult(resCode C.int) error {
	if resCode != C.SQLITE_OK {
		return stmt.conn.newError(resCode)
	}
	return nil
}

// BindInt64 binds an int64 parameter at the given 1-based index.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindInt64(index int, value int64) error {
	if stmt.cStmt == nil {
		return errNilStmt
	}
	return stmt.bindResult(C.sqlite3_bind_int64(stmt.cStmt, C.int(index), C.sqlite3_int64(value)))
}

// BindFloat64 binds a float64 parameter at the given 1-based index.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindFloat64(index int, value float64) error {
	if stmt.cStmt == nil {
		return errNilStmt
	}
	return stmt.bindResult(C.sqlite3_bind_double(stmt.cStmt, C.int(index), C.double(value)))
}

// BindText binds a string parameter at the given 1-based index. SQLite copies
// the bytes before returning, and the explicit length keeps embedded NUL
// characters.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindText(index int, value string) error {
	if stmt.cStmt == nil {
		return errNilStmt
	}
	if err := checkBindLen(len(value)); err != nil {
		return err
	}
	cStr := C.CString(value)
	defer C.free(unsafe.Pointer(cStr))

	return stmt.bindResult(C.cust_sqlite3_bind_text(stmt.cStmt, C.int(index), cStr, C.int(len(value))))
}

// BindBlob binds a byte slice parameter at the given 1-based index. SQLite
// copies the bytes before returning. An empty slice binds a zero-length
// blob, not NULL.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindBlob(index int, data []byte) error {
	if stmt.cStmt == nil {
		return errNilStmt
	}
	if err := checkBindLen(len(data)); err != nil {
		return err
	}
	if len(data) == 0 {
		return stmt.bindResult(C.sqlite3_bind_zeroblob(stmt.cStmt, C.int(index), 0))
	}

	return stmt.bindResult(C.cust_sqlite3_bind_blob(stmt.cStmt, C.int(index), unsafe.Pointer(&data[0]), C.int(len(data))))
}

// BindNull binds a NULL value at the given 1-based index.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindNull(index int) error {
	if stmt.cStmt == nil {
		return errNilStmt
	}
	return stmt.bindResult(C.sqlite3_bind_null(stmt.cStmt, C.int(index)))
}

// Step advances the statement to the next row of data, returning true if a new row
// is available, or false if there are no more rows. Any result code other than
// SQLITE_ROW and SQLITE_DONE is returned as an *Error.
//
// https://www.sqlite.org/c3ref/step.html
func (stmt *Stmt) Step() (bool, error) {
	if stmt.cStmt == nil {
		return false, errNilStmt
	}
	resCode := C.sqlite3_step(stmt.cStmt)

	if resCode == C.SQLITE_DONE {
		return false, nil
	}

	if resCode == C.SQLITE_ROW {
		return true, nil
	}

	return false, stmt.conn.newError(resCode)
}

// ColumnCount returns the number of columns in the result set.
//
// https://www.sqlite.org/c3ref/column_count.html
func (stmt *Stmt) ColumnCount() int {
	return int(C.sqlite3_column_count(stmt.cStmt))
}

// ColumnName returns the name of the column at the given index.
//
// https://www.sqlite.org/c3ref/column_name.html
func (stmt *Stmt) ColumnName(colIndex int) string {
	return C.GoString(C.sqlite3_column_name(stmt.cStmt, C.int(colIndex)))
}

// ColumnDeclType returns the declared type of the column at the given index,
// or an empty string for expressions.
//
// https://www.sqlite.org/c3ref/column_decltype.html
func (stmt *Stmt) ColumnDeclType(colIndex int) string {
	return C.GoString(C.sqlite3_column_decltype(stmt.cStmt, C.int(colIndex)))
}

// ColumnType returns the storage class of the value at the given index in the
// current row.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (stmt *Stmt) ColumnType(colIndex int) StorageClass {
	return StorageClass(C.sqlite3_column_type(stmt.cStmt, C.int(colIndex)))
}

// ColumnInt64 returns the column value at the given index as int64.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (stmt *Stmt) ColumnInt64(colIndex int) int64 {
	return int64(C.sqlite3_column_int64(stmt.cStmt, C.int(colIndex)))
}

// ColumnFloat64 returns the column value at the given index as float64.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (stmt *Stmt) ColumnFloat64(colIndex int) float64 {
	return float64(C.sqlite3_column_double(stmt.cStmt, C.int(colIndex)))
}

// ColumnText returns the column value at the given index as a string.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (stmt *Stmt) ColumnText(colIndex int) string {
	text := (*C.char)(unsafe.Pointer(C.sqlite3_column_text(stmt.cStmt, C.int(colIndex))))
	if text == nil {
		return ""
	}
	length := C.sqlite3_column_bytes(stmt.cStmt, C.int(colIndex))
	return C.GoStringN(text, length)
}

// ColumnBlob returns a copy of the column value at the given index. A
// zero-length blob is returned as an empty, non-nil slice.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (stmt *Stmt) ColumnBlob(colIndex int) []byte {
	dataPtr := C.sqlite3_column_blob(stmt.cStmt, C.int(colIndex))
	size := C.sqlite3_column_bytes(stmt.cStmt, C.int(colIndex))
	if dataPtr == nil || size <= 0 {
		return []byte{}
	}
	return C.GoBytes(dataPtr, size)
}

// Finalize frees the resources associated with this statement. Calling it
// more than once is a no-op.
//
// https://www.sqlite.org/c3ref/finalize.html
func (stmt *Stmt) Finalize() error {
	if stmt.cStmt == nil {
		return nil
	}

	// The return code repeats the last step error, which the caller has
	// already seen; the statement is released either way.
	resCode := C.sqlite3_finalize(stmt.cStmt)
	stmt.cStmt = nil
	if resCode != C.SQLITE_OK {
		return stmt.conn.newError(resCode)
	}

	return nil
}

// ErrStr returns the English-language description of a result code.
//
// https://www.sqlite.org/c3ref/errcode.html
func ErrStr(code ResultCode) string {
	return C.GoString(C.sqlite3_errstr(C.int(code)))
}

// LibVersion returns the version of the linked SQLite library.
//
// https://www.sqlite.org/c3ref/libversion.html
func LibVersion() string {
	return C.GoString(C.sqlite3_libversion())
}
