package sqlitec

import "fmt"

// ResultCode is a primary SQLite result code.
//
// https://www.sqlite.org/rescode.html
type ResultCode int

const (
	SQLITE_OK         ResultCode = 0
	SQLITE_ERROR      ResultCode = 1
	SQLITE_INTERNAL   ResultCode = 2
	SQLITE_PERM       ResultCode = 3
	SQLITE_ABORT      ResultCode = 4
	SQLITE_BUSY       ResultCode = 5
	SQLITE_LOCKED     ResultCode = 6
	SQLITE_NOMEM      ResultCode = 7
	SQLITE_READONLY   ResultCode = 8
	SQLITE_INTERRUPT  ResultCode = 9
	SQLITE_IOERR      ResultCode = 10
	SQLITE_CORRUPT    ResultCode = 11
	SQLITE_NOTFOUND   ResultCode = 12
	SQLITE_FULL       ResultCode = 13
	SQLITE_CANTOPEN   ResultCode = 14
	SQLITE_PROTOCOL   ResultCode = 15
	SQLITE_EMPTY      ResultCode = 16
	SQLITE_SCHEMA     ResultCode = 17
	SQLITE_TOOBIG     ResultCode = 18
	SQLITE_CONSTRAINT ResultCode = 19
	SQLITE_MISMATCH   ResultCode = 20
	SQLITE_MISUSE     ResultCode = 21
	SQLITE_NOLFS      ResultCode = 22
	SQLITE_AUTH       ResultCode = 23
	SQLITE_FORMAT     ResultCode = 24
	SQLITE_RANGE      ResultCode = 25
	SQLITE_NOTADB     ResultCode = 26
	SQLITE_NOTICE     ResultCode = 27
	SQLITE_WARNING    ResultCode = 28
	SQLITE_ROW        ResultCode = 100
	SQLITE_DONE       ResultCode = 101
)

var resCodeNames = map[ResultCode]string{
	SQLITE_OK:         "SQLITE_OK",
	SQLITE_ERROR:      "SQLITE_ERROR",
	SQLITE_INTERNAL:   "SQLITE_INTERNAL",
	SQLITE_PERM:       "SQLITE_PERM",
	SQLITE_ABORT:      "SQLITE_ABORT",
	SQLITE_BUSY:       "SQLITE_BUSY",
	SQLITE_LOCKED:     "SQLITE_LOCKED",
	SQLITE_NOMEM:      "SQLITE_NOMEM",
	SQLITE_READONLY:   "SQLITE_READONLY",
	SQLITE_INTERRUPT:  "SQLITE_INTERRUPT",
	SQLITE_IOERR:      "SQLITE_IOERR",
	SQLITE_CORRUPT:    "SQLITE_CORRUPT",
	SQLITE_NOTFOUND:   "SQLITE_NOTFOUND",
	SQLITE_FULL:       "SQLITE_FULL",
	SQLITE_CANTOPEN:   "SQLITE_CANTOPEN",
	SQLITE_PROTOCOL:   "SQLITE_PROTOCOL",
	SQLITE_EMPTY:      "SQLITE_EMPTY",
	SQLITE_SCHEMA:     "SQLITE_SCHEMA",
	SQLITE_TOOBIG:     "SQLITE_TOOBIG",
	SQLITE_CONSTRAINT: "SQLITE_CONSTRAINT",
	SQLITE_MISMATCH:   "SQLITE_MISMATCH",
	SQLITE_MISUSE:     "SQLITE_MISUSE",
	SQLITE_NOLFS:      "SQLITE_NOLFS",
	SQLITE_AUTH:       "SQLITE_AUTH",
	SQLITE_FORMAT:     "SQLITE_FORMAT",
	SQLITE_RANGE:      "SQLITE_RANGE",
	SQLITE_NOTADB:     "SQLITE_NOTADB",
	SQLITE_NOTICE:     "SQLITE_NOTICE",
	SQLITE_WARNING:    "SQLITE_WARNING",
	SQLITE_ROW:        "SQLITE_ROW",
	SQLITE_DONE:       "SQLITE_DONE",
}

// String returns the symbolic name of the code. Extended codes are reported
// by their primary code, which lives in the low byte.
func (code ResultCode) String() string {
	if name, ok := resCodeNames[code]; ok {
		return name
	}
	if name, ok := resCodeNames[code&0xff]; ok {
		return fmt.Sprintf("%s(%d)", name, int(code))
	}
	return fmt.Sprintf("SQLITE_UNKNOWN(%d)", int(code))
}

// IsSuccess reports whether code is one of the non-error codes SQLITE_OK,
// SQLITE_ROW or SQLITE_DONE.
func (code ResultCode) IsSuccess() bool {
	return code == SQLITE_OK || code == SQLITE_ROW || code == SQLITE_DONE
}

// StorageClass is the dynamic datatype of a value as reported by
// sqlite3_column_type.
//
// https://www.sqlite.org/c3ref/c_blob.html
type StorageClass int

const (
	SQLITE_INTEGER StorageClass = 1
	SQLITE_FLOAT   StorageClass = 2
	SQLITE_TEXT    StorageClass = 3
	SQLITE_BLOB    StorageClass = 4
	SQLITE_NULL    StorageClass = 5
)

func (class StorageClass) String() string {
	switch class {
	case SQLITE_INTEGER:
		return "SQLITE_INTEGER"
	case SQLITE_FLOAT:
		return "SQLITE_FLOAT"
	case SQLITE_TEXT:
		return "SQLITE_TEXT"
	case SQLITE_BLOB:
		return "SQLITE_BLOB"
	case SQLITE_NULL:
		return "SQLITE_NULL"
	default:
		return fmt.Sprintf("UNKNOWN_STORAGE_CLASS(%d)", int(class))
	}
}

// OpenFlags are the flags accepted by Open.
//
// https://www.sqlite.org/c3ref/c_open_autoproxy.html
type OpenFlags int

const (
	SQLITE_OPEN_READONLY  OpenFlags = 0x00000001
	SQLITE_OPEN_READWRITE OpenFlags = 0x00000002
	SQLITE_OPEN_CREATE    OpenFlags = 0x00000004
	SQLITE_OPEN_URI       OpenFlags = 0x00000040
	SQLITE_OPEN_MEMORY    OpenFlags = 0x00000080
	SQLITE_OPEN_NOMUTEX   OpenFlags = 0x00008000
	SQLITE_OPEN_FULLMUTEX OpenFlags = 0x00010000

	// OpenFlagsDefault opens the database for reading and writing, creating
	// the file if it does not exist.
	OpenFlagsDefault = SQLITE_OPEN_READWRITE | SQLITE_OPEN_CREATE
)

// Error is a failed native call.
type Error struct {
	// Code is the result code returned by the failed call.
	Code ResultCode
	// Msg is the value of sqlite3_errmsg right after the failure.
	Msg string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Msg
}
