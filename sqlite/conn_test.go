package sqlite

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T, opts ...Option) *Conn {
	t.Helper()
	conn, err := Open("", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestConn(t *testing.T) {
	t.Run("OpenClose", func(t *testing.T) {
		conn, err := Open("")
		require.NoError(t, err)
		assert.Equal(t, ":memory:", conn.Path())
		assert.NoError(t, conn.Close())
	})

	t.Run("CloseIsIdempotent", func(t *testing.T) {
		conn, err := Open("")
		require.NoError(t, err)

		assert.NoError(t, conn.Close())
		assert.NoError(t, conn.Close())
		assert.NoError(t, conn.Close())
	})

	t.Run("OperationsAfterClose", func(t *testing.T) {
		conn, err := Open("")
		require.NoError(t, err)
		require.NoError(t, conn.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY)"))
		require.NoError(t, conn.Close())

		assert.ErrorIs(t, conn.Exec("SELECT 1"), ErrClosed)

		rows, err := conn.Query("SELECT 1")
		assert.ErrorIs(t, err, ErrClosed)
		assert.Nil(t, rows)

		_, err = conn.Run("SELECT 1")
		assert.ErrorIs(t, err, ErrClosed)

		_, err = conn.RunScript("SELECT 1; SELECT 2")
		assert.ErrorIs(t, err, ErrClosed)

		assert.False(t, conn.InTransaction())
		assert.Zero(t, conn.LastInsertRowID())
		assert.Zero(t, conn.RowsAffected())
	})

	t.Run("OpenFailure", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "db.sqlite")
		conn, err := Open(path)
		assert.Nil(t, conn)

		var sqliteErr *Error
		require.ErrorAs(t, err, &sqliteErr)
		assert.True(t, sqliteErr.HasCode())
		assert.Equal(t, CodeCantOpen, sqliteErr.Code)
		assert.NotEmpty(t, sqliteErr.Description)
	})

	t.Run("PostOpenQueries", func(t *testing.T) {
		conn := openMemory(t, WithPostOpenQueries(
			"PRAGMA foreign_keys = true;",
			"CREATE TABLE seeded (id INTEGER PRIMARY KEY);",
		))

		rows, err := conn.Query("PRAGMA foreign_keys")
		require.NoError(t, err)
		assert.Equal(t, []Row{{Integer(1)}}, rows)

		rows, err = conn.Query("SELECT COUNT(*) FROM seeded")
		require.NoError(t, err)
		assert.Equal(t, []Row{{Integer(0)}}, rows)
	})

	t.Run("PostOpenQueryFailure", func(t *testing.T) {
		conn, err := Open("", WithPostOpenQueries("PRAGMA foreign_keys = true;", "NOT SQL"))
		assert.Nil(t, conn)

		var sqliteErr *Error
		require.ErrorAs(t, err, &sqliteErr)
		assert.Equal(t, CodeError, sqliteErr.Code)
	})

	t.Run("InvalidSQL", func(t *testing.T) {
		conn := openMemory(t)

		rows, err := conn.Query("SELEKT 1;")
		assert.Nil(t, rows)

		var sqliteErr *Error
		require.ErrorAs(t, err, &sqliteErr)
		assert.True(t, sqliteErr.HasCode())
		assert.Equal(t, CodeError, sqliteErr.Code)
		assert.NotEmpty(t, sqliteErr.Description)
		assert.Contains(t, sqliteErr.Message, "SELEKT")

		err = conn.Exec("SELEKT 1;")
		require.ErrorAs(t, err, &sqliteErr)
		assert.Equal(t, CodeError, sqliteErr.Code)
	})

	t.Run("StepFailure", func(t *testing.T) {
		conn := openMemory(t)
		require.NoError(t, conn.Exec("CREATE TABLE uniq (val TEXT UNIQUE)"))

		_, err := conn.Query("INSERT INTO uniq (val) VALUES (?)", Text("a"))
		require.NoError(t, err)

		_, err = conn.Query("INSERT INTO uniq (val) VALUES (?)", Text("a"))
		var sqliteErr *Error
		require.ErrorAs(t, err, &sqliteErr)
		assert.Equal(t, CodeConstraint, sqliteErr.Code)
		assert.Contains(t, sqliteErr.Message, "UNIQUE")

		// The failed statement was finalized: the connection keeps working.
		rows, err := conn.Query("SELECT COUNT(*) FROM uniq")
		require.NoError(t, err)
		assert.Equal(t, []Row{{Integer(1)}}, rows)
	})

	t.Run("TooManyBindings", func(t *testing.T) {
		conn := openMemory(t)

		_, err := conn.Query("SELECT ?", Integer(1), Integer(2))
		var sqliteErr *Error
		require.ErrorAs(t, err, &sqliteErr)
		assert.Equal(t, CodeRange, sqliteErr.Code)
	})

	t.Run("EmptyStatement", func(t *testing.T) {
		conn := openMemory(t)

		rows, err := conn.Query("  -- nothing here")
		assert.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})

	t.Run("WritesReturnNoRows", func(t *testing.T) {
		conn := openMemory(t)
		require.NoError(t, conn.Exec("CREATE TABLE t (v INTEGER)"))

		rows, err := conn.Query("INSERT INTO t (v) VALUES (?)", Integer(1))
		require.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)

		rows, err = conn.Query("UPDATE t SET v = v + 1")
		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.Equal(t, int64(1), conn.RowsAffected())
	})
}

func TestConnRoundTrip(t *testing.T) {
	conn := openMemory(t)

	values := []Value{
		Null(),
		Integer(0),
		Integer(1),
		Integer(-1),
		Integer(math.MaxInt64),
		Integer(math.MinInt64),
		Real(0),
		Real(3.14),
		Real(-1e300),
		Real(math.SmallestNonzeroFloat64),
		Text(""),
		Text("warn"),
		Text("ñandú 🦤"),
		Text("a\x00b"),
		Text(uuid.NewString()),
		Blob(nil),
		Blob([]byte{0}),
		Blob([]byte("raw")),
		Blob(uuid.New().NodeID()),
	}

	for _, value := range values {
		t.Run(fmt.Sprintf("%s/%s", value.Kind(), value), func(t *testing.T) {
			rows, err := conn.Query("SELECT ?", value)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			require.Len(t, rows[0], 1)
			assert.Equal(t, value, rows[0][0])
		})
	}

	t.Run("ThroughTable", func(t *testing.T) {
		require.NoError(t, conn.Exec("CREATE TABLE vals (v)"))
		for _, value := range values {
			_, err := conn.Query("INSERT INTO vals (v) VALUES (?)", value)
			require.NoError(t, err)
		}

		rows, err := conn.Query("SELECT v FROM vals ORDER BY rowid")
		require.NoError(t, err)
		require.Len(t, rows, len(values))
		for i, value := range values {
			assert.Equal(t, value, rows[i][0])
		}
	})

	t.Run("EmptyBlobStaysBlob", func(t *testing.T) {
		rows, err := conn.Query("SELECT ?, typeof(?), length(?)", Blob(nil), Blob(nil), Blob(nil))
		require.NoError(t, err)
		assert.Equal(t, Row{Blob([]byte{}), Text("blob"), Integer(0)}, rows[0])

		b, ok := rows[0][0].BlobValue()
		assert.True(t, ok)
		assert.Equal(t, []byte{}, b)
	})
}

func TestConnLogsScenario(t *testing.T) {
	conn := openMemory(t)

	require.NoError(t, conn.Exec(`
		CREATE TABLE IF NOT EXISTS logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level INTEGER,
			msg TEXT
		);
	`))

	_, err := conn.Query("INSERT INTO logs (level, msg) VALUES (?, ?)", Integer(1), Text("warn"))
	require.NoError(t, err)
	_, err = conn.Query("INSERT INTO logs (level, msg) VALUES (?, ?)", Integer(2), Text("error"))
	require.NoError(t, err)
	lastID := conn.LastInsertRowID()

	rows, err := conn.Query("SELECT id, level, msg FROM logs")
	require.NoError(t, err)
	assert.Equal(t, []Row{
		{Integer(1), Integer(1), Text("warn")},
		{Integer(2), Integer(2), Text("error")},
	}, rows)

	secondID, ok := rows[1][0].IntegerValue()
	require.True(t, ok)
	assert.Equal(t, secondID, lastID)

	_, err = conn.Query("DELETE FROM logs WHERE id = ?", rows[0][0])
	require.NoError(t, err)

	rows, err = conn.Query("SELECT id, level, msg FROM logs")
	require.NoError(t, err)
	assert.Equal(t, []Row{
		{Integer(2), Integer(2), Text("error")},
	}, rows)
}

func TestConnInsertionOrder(t *testing.T) {
	conn := openMemory(t)
	require.NoError(t, conn.Exec("CREATE TABLE ordered (val TEXT)"))

	want := []Row{}
	for range 25 {
		val := Text(uuid.NewString())
		_, err := conn.Query("INSERT INTO ordered (val) VALUES (?)", val)
		require.NoError(t, err)
		want = append(want, Row{val})
	}

	rows, err := conn.Query("SELECT * FROM ordered")
	require.NoError(t, err)
	assert.Equal(t, want, rows)
}

func TestConnRun(t *testing.T) {
	conn := openMemory(t)
	require.NoError(t, conn.Exec("CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT, score REAL)"))

	res, err := conn.Run("INSERT INTO users (email, score) VALUES (?, ?)", Text("a@example.com"), Real(9.5))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.LastInsertRowID)
	assert.Equal(t, int64(1), res.RowsAffected)
	assert.Empty(t, res.Columns)
	assert.Empty(t, res.Rows)

	res, err = conn.Run("SELECT id, email, score, score * 2 AS doubled FROM users")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "email", "score", "doubled"}, res.Columns)
	assert.Equal(t, []string{"INTEGER", "TEXT", "REAL", ""}, res.DeclTypes)
	assert.Equal(t, []Row{{Integer(1), Text("a@example.com"), Real(9.5), Real(19)}}, res.Rows)
	assert.Zero(t, res.RowsAffected)

	res, err = conn.Run("INSERT INTO users (email) VALUES ('b@example.com') RETURNING id")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, res.Columns)
	assert.Equal(t, []Row{{Integer(2)}}, res.Rows)
	assert.Equal(t, int64(2), res.LastInsertRowID)
	assert.Equal(t, int64(1), res.RowsAffected)
}

func TestConnRunScript(t *testing.T) {
	t.Run("RunsEveryStatement", func(t *testing.T) {
		conn := openMemory(t)

		res, err := conn.RunScript("CREATE TABLE a (v); CREATE TABLE b (v);\n-- done\n")
		require.NoError(t, err)
		assert.Empty(t, res.Rows)

		rows, err := conn.Query("SELECT count(*) FROM sqlite_master WHERE type = 'table'")
		require.NoError(t, err)
		assert.Equal(t, []Row{{Integer(2)}}, rows)
	})

	t.Run("ReportsLastStatement", func(t *testing.T) {
		conn := openMemory(t)

		res, err := conn.RunScript(`
			CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT);
			INSERT INTO users (email) VALUES (?);
			INSERT INTO users (email) VALUES (?), (?);
			SELECT email FROM users ORDER BY id;
		`, Text("a@example.com"), Text("b@example.com"), Text("c@example.com"))
		require.NoError(t, err)
		assert.Equal(t, []string{"email"}, res.Columns)
		assert.Equal(t, []Row{
			{Text("a@example.com")}, {Text("b@example.com")}, {Text("c@example.com")},
		}, res.Rows)
		assert.Equal(t, int64(3), res.LastInsertRowID)
	})

	t.Run("StopsAtFirstError", func(t *testing.T) {
		conn := openMemory(t)

		_, err := conn.RunScript("CREATE TABLE a (v); SELEC 1; CREATE TABLE b (v)")
		var sqliteErr *Error
		require.True(t, errors.As(err, &sqliteErr))
		assert.Equal(t, CodeError, sqliteErr.Code)

		rows, err := conn.Query("SELECT name FROM sqlite_master ORDER BY name")
		require.NoError(t, err)
		assert.Equal(t, []Row{{Text("a")}}, rows)
	})

	t.Run("LeftoverBindings", func(t *testing.T) {
		conn := openMemory(t)

		_, err := conn.RunScript("SELECT ?; SELECT 2", Integer(1), Integer(2))
		var sqliteErr *Error
		require.True(t, errors.As(err, &sqliteErr))
		assert.Equal(t, CodeRange, sqliteErr.Code)
	})

	t.Run("Empty", func(t *testing.T) {
		conn := openMemory(t)

		for _, query := range []string{"", " ; ;", "-- nothing"} {
			res, err := conn.RunScript(query)
			require.NoError(t, err, query)
			assert.Empty(t, res.Rows, query)
			assert.NotNil(t, res.Rows, query)
		}
	})

	t.Run("NulInQuery", func(t *testing.T) {
		conn := openMemory(t)

		_, err := conn.Query("SELECT 1\x00 garbage !!")
		var sqliteErr *Error
		require.True(t, errors.As(err, &sqliteErr))
		assert.Equal(t, CodeMisuse, sqliteErr.Code)
	})
}

func TestConnInTransaction(t *testing.T) {
	conn := openMemory(t)

	assert.False(t, conn.InTransaction())
	require.NoError(t, conn.Exec("BEGIN"))
	assert.True(t, conn.InTransaction())
	require.NoError(t, conn.Exec("COMMIT"))
	assert.False(t, conn.InTransaction())
}

func TestConnConcurrency(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stress.sqlite")
	conn, err := Open(path)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Exec("CREATE TABLE stress (id INTEGER PRIMARY KEY, worker INTEGER, val TEXT)"))

	const workers = 16
	const insertsPerWorker = 50

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[int64]bool{}
	)
	errs := make(chan error, workers*insertsPerWorker)

	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range insertsPerWorker {
				res, err := conn.Run(
					"INSERT INTO stress (worker, val) VALUES (?, ?)",
					Integer(int64(w)), Text(uuid.NewString()),
				)
				if err != nil {
					errs <- err
					return
				}
				mu.Lock()
				ids[res.LastInsertRowID] = true
				mu.Unlock()

				if _, err := conn.Query("SELECT COUNT(*) FROM stress WHERE worker = ?", Integer(int64(w))); err != nil {
					errs <- err
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	rows, err := conn.Query("SELECT COUNT(*) FROM stress")
	require.NoError(t, err)
	assert.Equal(t, []Row{{Integer(workers * insertsPerWorker)}}, rows)
	assert.Len(t, ids, workers*insertsPerWorker)

	stats := conn.Stats()
	assert.Equal(t, int64(2*workers*insertsPerWorker+1), stats.TotalQueries)
	assert.Equal(t, int64(1), stats.TotalExecs)
	assert.Zero(t, stats.TotalFailures)
	assert.Zero(t, stats.Waiting)
}

func TestConnConcurrentClose(t *testing.T) {
	conn, err := Open("")
	require.NoError(t, err)
	require.NoError(t, conn.Exec("CREATE TABLE t (v INTEGER)"))

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := conn.Query("INSERT INTO t (v) VALUES (?)", Integer(int64(i)))
			if err != nil {
				assert.ErrorIs(t, err, ErrClosed)
			}
		}()
	}
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, conn.Close())
		}()
	}
	wg.Wait()

	assert.ErrorIs(t, conn.Exec("SELECT 1"), ErrClosed)
}

func TestConnStats(t *testing.T) {
	conn := openMemory(t)
	assert.True(t, conn.Stats().LastActivityAt.IsZero())

	require.NoError(t, conn.Exec("CREATE TABLE t (v)"))
	_, _ = conn.Query("SELECT * FROM missing")
	_ = conn.Exec("BROKEN")
	_, err := conn.Query("SELECT 1")
	require.NoError(t, err)

	stats := conn.Stats()
	assert.Equal(t, int64(2), stats.TotalExecs)
	assert.Equal(t, int64(2), stats.TotalQueries)
	assert.Equal(t, int64(2), stats.TotalFailures)
	assert.Zero(t, stats.Waiting)
	assert.False(t, stats.OpenedAt.IsZero())
	assert.False(t, stats.LastActivityAt.Before(stats.OpenedAt))
}

func TestConnLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	conn, err := Open("", WithLogger(logger))
	require.NoError(t, err)
	_, _ = conn.Query("SELEKT 1")
	require.NoError(t, conn.Close())

	out := buf.String()
	assert.Contains(t, out, `"msg":"database opened"`)
	assert.Contains(t, out, `"msg":"statement failed"`)
	assert.Contains(t, out, `"query":"SELEKT 1"`)
	assert.Contains(t, out, `"msg":"database closed"`)
	assert.Contains(t, out, `"ns":"database"`)
}

func TestConnFileCompatibility(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compat.sqlite")

	conn, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, conn.Exec("CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT, price REAL, data BLOB)"))
	_, err = conn.Query(
		"INSERT INTO items (name, price, data) VALUES (?, ?, ?)",
		Text("widget"), Real(9.99), Blob([]byte{1, 2, 3}),
	)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	t.Run("ReopenWithConn", func(t *testing.T) {
		conn, err := Open(path)
		require.NoError(t, err)
		defer conn.Close()

		rows, err := conn.Query("SELECT id, name, price, data FROM items")
		require.NoError(t, err)
		assert.Equal(t, []Row{{Integer(1), Text("widget"), Real(9.99), Blob([]byte{1, 2, 3})}}, rows)
	})

	t.Run("ReadWithMattn", func(t *testing.T) {
		db, err := sql.Open("sqlite3", path)
		require.NoError(t, err)
		defer db.Close()

		var (
			id    int64
			name  string
			price float64
			data  []byte
		)
		err = db.QueryRow("SELECT id, name, price, data FROM items").Scan(&id, &name, &price, &data)
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)
		assert.Equal(t, "widget", name)
		assert.Equal(t, 9.99, price)
		assert.Equal(t, []byte{1, 2, 3}, data)
	})

	t.Run("NotADatabase", func(t *testing.T) {
		garbage := filepath.Join(t.TempDir(), "garbage.sqlite")
		require.NoError(t, os.WriteFile(garbage, bytes.Repeat([]byte("not a database "), 100), 0o644))

		conn, err := Open(garbage)
		if err == nil {
			// SQLite opens lazily; the header is only read on first use.
			defer conn.Close()
			_, err = conn.Query("SELECT * FROM sqlite_master")
		}

		var sqliteErr *Error
		require.True(t, errors.As(err, &sqliteErr))
		assert.Equal(t, CodeNotADB, sqliteErr.Code)
	})
}
