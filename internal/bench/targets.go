package bench

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/nsqlite/sqlitekit/sqlitedrv"
	_ "modernc.org/sqlite"
)

// busyTimeoutMs is how long every driver waits on a locked database before
// failing, the pools open several connections to the same file.
const busyTimeoutMs = 5000

// target is a driver under benchmark.
type target struct {
	name  string
	label string
	open  func(dbPath string) (*sql.DB, error)
}

func targets() []target {
	return []target{
		{
			name:  "sqlitekit",
			label: "nsqlite/sqlitekit",
			open: func(dbPath string) (*sql.DB, error) {
				return sql.Open(sqlitedrv.DriverName, fmt.Sprintf(
					"%s?_busy_timeout=%d&_foreign_keys=true", dbPath, busyTimeoutMs,
				))
			},
		},
		{
			name:  "mattn",
			label: "mattn/go-sqlite3",
			open: func(dbPath string) (*sql.DB, error) {
				return sql.Open("sqlite3", fmt.Sprintf(
					"%s?_busy_timeout=%d&_foreign_keys=1", dbPath, busyTimeoutMs,
				))
			},
		},
		{
			name:  "modernc",
			label: "modernc.org/sqlite",
			open: func(dbPath string) (*sql.DB, error) {
				return sql.Open("sqlite", fmt.Sprintf(
					"%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", dbPath, busyTimeoutMs,
				))
			},
		},
	}
}

func targetNames() []string {
	all := targets()
	names := make([]string, len(all))
	for i, t := range all {
		names[i] = t.name
	}
	return names
}

// selectTargets returns the targets named in names, in the order given.
func selectTargets(names []string) ([]target, error) {
	byName := map[string]target{}
	for _, t := range targets() {
		byName[t.name] = t
	}

	selected := make([]target, 0, len(names))
	for _, name := range names {
		t, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown driver %q", name)
		}
		selected = append(selected, t)
	}
	return selected, nil
}

// openTarget opens a fresh database for t under dir.
func openTarget(t target, dir string) (*sql.DB, string, error) {
	dbPath := filepath.Join(dir, t.name, "bench.db")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, "", err
	}

	db, err := t.open(dbPath)
	if err != nil {
		return nil, "", fmt.Errorf("error opening %s db: %w", t.label, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("error pinging %s db: %w", t.label, err)
	}

	return db, dbPath, nil
}
