package sqlitec

import (
	"errors"
	"math"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Conn {
	t.Helper()
	conn, err := Open(":memory:", OpenFlagsDefault)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestSQLiteC(t *testing.T) {
	t.Run("OpenClose", func(t *testing.T) {
		conn, err := Open(":memory:", OpenFlagsDefault)
		assert.NoError(t, err)
		assert.NotNil(t, conn)
		assert.False(t, conn.IsClosed())
		assert.NoError(t, conn.Close())
		assert.True(t, conn.IsClosed())
		assert.NoError(t, conn.Close())
	})

	t.Run("OpenMissingDirectory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "db.sqlite")
		conn, err := Open(path, OpenFlagsDefault)
		assert.Nil(t, conn)

		var sqliteErr *Error
		require.True(t, errors.As(err, &sqliteErr))
		assert.Equal(t, SQLITE_CANTOPEN, sqliteErr.Code)
	})

	t.Run("ExecAndPrepareErrors", func(t *testing.T) {
		conn := openMemory(t)

		err := conn.Exec("CREATE TABLE test (id INTEGER PRIMARY KEY, val TEXT); INSERT INTO test (val) VALUES ('a');")
		assert.NoError(t, err)
		assert.Equal(t, int64(1), conn.LastInsertRowID())

		err = conn.Exec("SELEKT 1;")
		var sqliteErr *Error
		require.True(t, errors.As(err, &sqliteErr))
		assert.Equal(t, SQLITE_ERROR, sqliteErr.Code)
		assert.Contains(t, sqliteErr.Msg, "SELEKT")

		stmt, err := conn.Prepare("SELECT * FROM missing_table")
		assert.Nil(t, stmt)
		require.True(t, errors.As(err, &sqliteErr))
		assert.Equal(t, SQLITE_ERROR, sqliteErr.Code)
		assert.Contains(t, sqliteErr.Msg, "missing_table")
	})

	t.Run("BindAndReadStorageClasses", func(t *testing.T) {
		conn := openMemory(t)

		stmt, err := conn.Prepare("SELECT ?, ?, ?, ?, ?, ?")
		require.NoError(t, err)
		defer stmt.Finalize()

		assert.Equal(t, 6, stmt.BindParameterCount())
		assert.NoError(t, stmt.BindInt64(1, 123))
		assert.NoError(t, stmt.BindFloat64(2, 3.14))
		assert.NoError(t, stmt.BindText(3, "hola"))
		assert.NoError(t, stmt.BindBlob(4, []byte("raw")))
		assert.NoError(t, stmt.BindNull(5))
		assert.NoError(t, stmt.BindBlob(6, nil))

		hasRow, err := stmt.Step()
		require.NoError(t, err)
		require.True(t, hasRow)
		assert.Equal(t, 6, stmt.ColumnCount())

		assert.Equal(t, SQLITE_INTEGER, stmt.ColumnType(0))
		assert.Equal(t, int64(123), stmt.ColumnInt64(0))
		assert.Equal(t, SQLITE_FLOAT, stmt.ColumnType(1))
		assert.Equal(t, 3.14, stmt.ColumnFloat64(1))
		assert.Equal(t, SQLITE_TEXT, stmt.ColumnType(2))
		assert.Equal(t, "hola", stmt.ColumnText(2))
		assert.Equal(t, SQLITE_BLOB, stmt.ColumnType(3))
		assert.Equal(t, []byte("raw"), stmt.ColumnBlob(3))
		assert.Equal(t, SQLITE_NULL, stmt.ColumnType(4))
		assert.Equal(t, SQLITE_BLOB, stmt.ColumnType(5))
		assert.Equal(t, []byte{}, stmt.ColumnBlob(5))

		hasRow, err = stmt.Step()
		assert.NoError(t, err)
		assert.False(t, hasRow)
	})

	t.Run("TextWithEmbeddedNul", func(t *testing.T) {
		conn := openMemory(t)

		stmt, err := conn.Prepare("SELECT ?")
		require.NoError(t, err)
		defer stmt.Finalize()

		value := "a\x00b"
		require.NoError(t, stmt.BindText(1, value))
		hasRow, err := stmt.Step()
		require.NoError(t, err)
		require.True(t, hasRow)
		assert.Equal(t, value, stmt.ColumnText(0))
	})

	t.Run("ColumnMetadata", func(t *testing.T) {
		conn := openMemory(t)
		require.NoError(t, conn.Exec("CREATE TABLE meta (id INTEGER PRIMARY KEY, val TEXT)"))

		stmt, err := conn.Prepare("SELECT id, val, 1 + 1 AS two FROM meta")
		require.NoError(t, err)
		defer stmt.Finalize()

		assert.Equal(t, "id", stmt.ColumnName(0))
		assert.Equal(t, "val", stmt.ColumnName(1))
		assert.Equal(t, "two", stmt.ColumnName(2))
		assert.Equal(t, "INTEGER", stmt.ColumnDeclType(0))
		assert.Equal(t, "TEXT", stmt.ColumnDeclType(1))
		assert.Equal(t, "", stmt.ColumnDeclType(2))
	})

	t.Run("StepConstraintError", func(t *testing.T) {
		conn := openMemory(t)
		require.NoError(t, conn.Exec("CREATE TABLE uniq (val TEXT UNIQUE)"))

		for i := range 2 {
			stmt, err := conn.Prepare("INSERT INTO uniq (val) VALUES (?)")
			require.NoError(t, err)
			require.NoError(t, stmt.BindText(1, "same"))

			_, err = stmt.Step()
			if i == 0 {
				assert.NoError(t, err)
				assert.Equal(t, int64(1), conn.RowsAffected())
			} else {
				var sqliteErr *Error
				require.True(t, errors.As(err, &sqliteErr))
				assert.Equal(t, SQLITE_CONSTRAINT, sqliteErr.Code)
			}
			_ = stmt.Finalize()
		}
	})

	t.Run("ReadOnlyCheck", func(t *testing.T) {
		conn := openMemory(t)
		require.NoError(t, conn.Exec("CREATE TABLE test (id INTEGER PRIMARY KEY, val TEXT)"))

		stmt, err := conn.Prepare("INSERT INTO test (val) VALUES (?)")
		assert.NoError(t, err)
		assert.False(t, stmt.ReadOnly())
		assert.NoError(t, stmt.Finalize())

		stmt, err = conn.Prepare("SELECT * FROM test")
		assert.NoError(t, err)
		assert.True(t, stmt.ReadOnly())
		assert.NoError(t, stmt.Finalize())
	})

	t.Run("EmptyStatement", func(t *testing.T) {
		conn := openMemory(t)

		for _, query := range []string{"", "   ", "-- only a comment"} {
			stmt, err := conn.Prepare(query)
			require.NoError(t, err)
			assert.True(t, stmt.IsEmpty(), query)
			assert.NoError(t, stmt.Finalize())
		}
	})

	t.Run("PrepareTail", func(t *testing.T) {
		conn := openMemory(t)

		stmt, tail, err := conn.PrepareTail("SELECT 1; SELECT 2 -- two")
		require.NoError(t, err)
		assert.False(t, stmt.IsEmpty())
		assert.Equal(t, " SELECT 2 -- two", tail)
		assert.NoError(t, stmt.Finalize())

		stmt, tail, err = conn.PrepareTail(tail)
		require.NoError(t, err)
		assert.False(t, stmt.IsEmpty())
		assert.Equal(t, "", tail)
		assert.NoError(t, stmt.Finalize())
	})

	t.Run("NulInSQL", func(t *testing.T) {
		conn := openMemory(t)

		var sqliteErr *Error
		_, err := conn.Prepare("SELECT 1\x00 garbage !!")
		require.True(t, errors.As(err, &sqliteErr))
		assert.Equal(t, SQLITE_MISUSE, sqliteErr.Code)

		err = conn.Exec("CREATE TABLE a (v);\x00DROP TABLE a")
		require.True(t, errors.As(err, &sqliteErr))
		assert.Equal(t, SQLITE_MISUSE, sqliteErr.Code)
	})

	t.Run("BindLengthLimit", func(t *testing.T) {
		assert.NoError(t, checkBindLen(0))
		assert.NoError(t, checkBindLen(math.MaxInt32))

		if strconv.IntSize == 32 {
			t.Skip("int cannot exceed the C int range")
		}
		tooLong := math.MaxInt32
		tooLong++

		var sqliteErr *Error
		require.True(t, errors.As(checkBindLen(tooLong), &sqliteErr))
		assert.Equal(t, SQLITE_TOOBIG, sqliteErr.Code)
	})

	t.Run("AutoCommit", func(t *testing.T) {
		conn := openMemory(t)

		assert.True(t, conn.AutoCommit())
		require.NoError(t, conn.Exec("BEGIN"))
		assert.False(t, conn.AutoCommit())
		require.NoError(t, conn.Exec("ROLLBACK"))
		assert.True(t, conn.AutoCommit())
	})

	t.Run("FinalizeTwice", func(t *testing.T) {
		conn := openMemory(t)

		stmt, err := conn.Prepare("SELECT 1")
		require.NoError(t, err)
		assert.NoError(t, stmt.Finalize())
		assert.NoError(t, stmt.Finalize())

		// A zero Stmt must not reach the C library.
		assert.NoError(t, (&Stmt{}).Finalize())
		assert.Error(t, (&Stmt{}).BindNull(1))
	})

	t.Run("LargeBlob", func(t *testing.T) {
		conn := openMemory(t)
		require.NoError(t, conn.Exec("CREATE TABLE blobtest (id INTEGER PRIMARY KEY, data BLOB)"))

		largeData := make([]byte, 1024*1024) // 1MB
		for i := range largeData {
			largeData[i] = byte(i % 256)
		}

		insert, err := conn.Prepare("INSERT INTO blobtest (data) VALUES (?)")
		require.NoError(t, err)
		require.NoError(t, insert.BindBlob(1, largeData))
		_, err = insert.Step()
		require.NoError(t, err)
		require.NoError(t, insert.Finalize())

		sel, err := conn.Prepare("SELECT data FROM blobtest")
		require.NoError(t, err)
		defer sel.Finalize()
		hasRow, err := sel.Step()
		require.NoError(t, err)
		require.True(t, hasRow)
		assert.Equal(t, largeData, sel.ColumnBlob(0))
	})

	t.Run("Transactions", func(t *testing.T) {
		conn := openMemory(t)

		recreateTable := func() {
			require.NoError(t, conn.Exec("DROP TABLE IF EXISTS test; CREATE TABLE test (id INTEGER PRIMARY KEY, val TEXT)"))
		}
		count := func() int64 {
			stmt, err := conn.Prepare("SELECT COUNT(*) FROM test")
			require.NoError(t, err)
			defer stmt.Finalize()
			_, err = stmt.Step()
			require.NoError(t, err)
			return stmt.ColumnInt64(0)
		}
		insertMany := func() {
			for range 20 {
				stmt, err := conn.Prepare("INSERT INTO test (val) VALUES (?)")
				require.NoError(t, err)
				require.NoError(t, stmt.BindText(1, uuid.NewString()))
				_, err = stmt.Step()
				require.NoError(t, err)
				require.NoError(t, stmt.Finalize())
			}
		}

		t.Run("Successful", func(t *testing.T) {
			recreateTable()
			require.NoError(t, conn.Exec("BEGIN TRANSACTION"))
			insertMany()
			require.NoError(t, conn.Exec("COMMIT"))
			assert.Equal(t, int64(20), count())
		})

		t.Run("Rollback", func(t *testing.T) {
			recreateTable()
			require.NoError(t, conn.Exec("BEGIN TRANSACTION"))
			insertMany()
			require.NoError(t, conn.Exec("ROLLBACK"))
			assert.Equal(t, int64(0), count())
		})
	})
}

func TestResultCode(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		assert.Equal(t, "SQLITE_CONSTRAINT", SQLITE_CONSTRAINT.String())
		assert.Equal(t, "SQLITE_CONSTRAINT(2067)", ResultCode(2067).String())
		assert.Equal(t, "SQLITE_UNKNOWN(77)", ResultCode(77).String())
	})

	t.Run("IsSuccess", func(t *testing.T) {
		assert.True(t, SQLITE_OK.IsSuccess())
		assert.True(t, SQLITE_ROW.IsSuccess())
		assert.True(t, SQLITE_DONE.IsSuccess())
		assert.False(t, SQLITE_ERROR.IsSuccess())
		assert.False(t, SQLITE_BUSY.IsSuccess())
	})

	t.Run("ErrStr", func(t *testing.T) {
		assert.NotEmpty(t, ErrStr(SQLITE_ERROR))
		assert.NotEqual(t, ErrStr(SQLITE_ERROR), ErrStr(SQLITE_CONSTRAINT))
		assert.NotEmpty(t, LibVersion())
	})

	t.Run("StorageClassString", func(t *testing.T) {
		assert.Equal(t, "SQLITE_BLOB", SQLITE_BLOB.String())
		assert.Equal(t, "UNKNOWN_STORAGE_CLASS(9)", StorageClass(9).String())
	})
}
