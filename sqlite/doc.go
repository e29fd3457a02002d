// Package sqlite is a small typed access layer over the SQLite C library.
//
// A Conn owns one native database handle. SQL text is executed with
// positional parameters given as Values, and every result row comes back as
// a Row: one Value per column, in column order. Values are a closed set of
// five kinds mirroring SQLite's storage classes (null, integer, real, text
// and blob).
//
// Every call made on a Conn runs on a single goroutine dedicated to that
// connection, one call at a time and in arrival order, so a Conn can be
// shared freely between goroutines. That goroutine is the unit of thread
// safety: the native handle is never touched from anywhere else.
//
// Failures reported by SQLite are returned as *Error values carrying the
// native result code and its description.
//
//   - https://www.sqlite.org/datatype3.html
//   - https://www.sqlite.org/c3ref/intro.html
package sqlite
