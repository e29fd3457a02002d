package sqlite

import (
	"fmt"

	"github.com/nsqlite/sqlitekit/internal/sqlitec"
)

// binder is the part of a prepared statement that accepts parameters.
type binder interface {
	BindNull(index int) error
	BindInt64(index int, value int64) error
	BindFloat64(index int, value float64) error
	BindText(index int, value string) error
	BindBlob(index int, data []byte) error
}

// columnReader is the part of a prepared statement that exposes the
// current row.
type columnReader interface {
	ColumnCount() int
	ColumnType(colIndex int) sqlitec.StorageClass
	ColumnInt64(colIndex int) int64
	ColumnFloat64(colIndex int) float64
	ColumnText(colIndex int) string
	ColumnBlob(colIndex int) []byte
}

// bindValues binds bindings in order, starting at parameter index 1.
func bindValues(stmt binder, bindings []Value) error {
	for i, value := range bindings {
		index := i + 1

		var err error
		switch value.Kind() {
		case KindNull:
			err = stmt.BindNull(index)
		case KindInteger:
			err = stmt.BindInt64(index, value.i)
		case KindReal:
			err = stmt.BindFloat64(index, value.f)
		case KindText:
			err = stmt.BindText(index, value.s)
		case KindBlob:
			err = stmt.BindBlob(index, []byte(value.s))
		default:
			panic(fmt.Sprintf("sqlite: unknown value kind %q", value.kind.Value))
		}
		if err != nil {
			return translate(err)
		}
	}
	return nil
}

// readRow materializes the statement's current row.
//
// SQLite has exactly five storage classes and Value has exactly five kinds,
// so any other class means the native layer is broken and readRow panics.
func readRow(stmt columnReader) Row {
	columnCount := stmt.ColumnCount()
	row := make(Row, columnCount)

	for i := range columnCount {
		switch class := stmt.ColumnType(i); class {
		case sqlitec.SQLITE_INTEGER:
			row[i] = Integer(stmt.ColumnInt64(i))
		case sqlitec.SQLITE_FLOAT:
			row[i] = Real(stmt.ColumnFloat64(i))
		case sqlitec.SQLITE_TEXT:
			row[i] = Text(stmt.ColumnText(i))
		case sqlitec.SQLITE_BLOB:
			row[i] = Blob(stmt.ColumnBlob(i))
		case sqlitec.SQLITE_NULL:
			row[i] = Null()
		default:
			panic(fmt.Sprintf("sqlite: unsupported storage class %s in column %d", class, i))
		}
	}

	return row
}
