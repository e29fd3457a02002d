package sqlite

import (
	"errors"

	"github.com/nsqlite/sqlitekit/internal/sqlitec"
)

// Code is a SQLite result code.
//
// https://www.sqlite.org/rescode.html
type Code = sqlitec.ResultCode

// Result codes most callers branch on.
const (
	CodeError      = sqlitec.SQLITE_ERROR
	CodeAbort      = sqlitec.SQLITE_ABORT
	CodeBusy       = sqlitec.SQLITE_BUSY
	CodeLocked     = sqlitec.SQLITE_LOCKED
	CodeNoMem      = sqlitec.SQLITE_NOMEM
	CodeReadOnly   = sqlitec.SQLITE_READONLY
	CodeIOErr      = sqlitec.SQLITE_IOERR
	CodeCorrupt    = sqlitec.SQLITE_CORRUPT
	CodeCantOpen   = sqlitec.SQLITE_CANTOPEN
	CodeConstraint = sqlitec.SQLITE_CONSTRAINT
	CodeMismatch   = sqlitec.SQLITE_MISMATCH
	CodeMisuse     = sqlitec.SQLITE_MISUSE
	CodeRange      = sqlitec.SQLITE_RANGE
	CodeNotADB     = sqlitec.SQLITE_NOTADB
)

// Error is a failed call.
//
// Errors raised by SQLite carry the native result code, the engine's
// description of that code and the connection's error message at the time
// of the failure. Errors raised by this package itself have no code and a
// fixed description.
type Error struct {
	// Code is the native result code. It is zero (SQLITE_OK, never an
	// error) when the failure did not come from SQLite.
	Code Code
	// Description is sqlite3_errstr(Code), or a fixed text when there is no
	// code.
	Description string
	// Message is sqlite3_errmsg at the time of the failure, when available.
	Message string
}

// HasCode reports whether the error came from SQLite.
func (e *Error) HasCode() bool {
	return e.Code != sqlitec.SQLITE_OK
}

func (e *Error) Error() string {
	msg := "sqlite: " + e.Description
	if e.HasCode() {
		msg += " (" + e.Code.String() + ")"
	}
	if e.Message != "" && e.Message != e.Description {
		msg += ": " + e.Message
	}
	return msg
}

const (
	errClosed          = "connection is closed"
	errUnsupportedType = "unsupported value type"
	errIntegerOverflow = "integer overflows int64"
)

// ErrClosed is returned by every operation on a closed Conn.
var ErrClosed = &Error{Description: errClosed}

func newSyntheticError(description, message string) *Error {
	return &Error{Description: description, Message: message}
}

// newError builds the Error for a native result code.
func newError(code Code, message string) *Error {
	return &Error{
		Code:        code,
		Description: sqlitec.ErrStr(code),
		Message:     message,
	}
}

// translate turns an error from the native layer into an *Error. Anything
// the native layer rejects before reaching SQLite is reported as misuse.
func translate(err error) error {
	if err == nil {
		return nil
	}

	var cErr *sqlitec.Error
	if errors.As(err, &cErr) {
		return newError(cErr.Code, cErr.Msg)
	}
	return newError(sqlitec.SQLITE_MISUSE, err.Error())
}
