// Package sqlitec provides a lightweight wrapper for the SQLite C library.
// It allows direct interaction with SQLite's low-level API and is linked
// against the system libsqlite3.
//
// Nothing in this package is safe for concurrent use; callers must serialize
// every call made against a Conn and its statements.
//
//   - https://www.sqlite.org/cintro.html
//   - https://www.sqlite.org/c3ref/intro.html
package sqlitec
