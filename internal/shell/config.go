package shell

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/alexflint/go-arg"
	"github.com/nsqlite/sqlitekit/internal/version"
)

// Config represents the configuration for the sqlitekit shell.
type Config struct {
	Path        string   `arg:"positional" help:"Path of the SQLite database file, empty opens an in-memory database"`
	ReadOnly    bool     `arg:"--read-only,env:SQLITEKIT_READ_ONLY" help:"Reject writes for the whole session (PRAGMA query_only)"`
	Pragmas     []string `arg:"--pragma,separate,env:SQLITEKIT_PRAGMAS" help:"Statement to run right after opening, e.g. \"journal_mode = WAL\", can be repeated"`
	HistoryFile string   `arg:"--history-file,env:SQLITEKIT_HISTORY_FILE" help:"File to keep the prompt history in (default to $TMPDIR/.sqlitekit_history)"`
	Debug       bool     `arg:"--debug,env:SQLITEKIT_DEBUG" help:"Log database activity to stderr"`
}

func (Config) Version() string {
	return fmt.Sprintf("%s\n", version.ShellVersion())
}

func (Config) Description() string {
	return "Interactive shell for SQLite databases"
}

// PostOpenQueries returns the statements to run right after the database is
// opened, in order.
func (c Config) PostOpenQueries() []string {
	queries := make([]string, 0, len(c.Pragmas)+1)
	for _, pragma := range c.Pragmas {
		queries = append(queries, "PRAGMA "+pragma)
	}
	if c.ReadOnly {
		queries = append(queries, "PRAGMA query_only = ON")
	}
	return queries
}

// HistoryPath returns the history file to use.
func (c Config) HistoryPath() string {
	if c.HistoryFile != "" {
		return c.HistoryFile
	}
	return filepath.Join(os.TempDir(), ".sqlitekit_history")
}

// MustParse parses the configuration from the command line arguments. It
// returns a Config struct or exits the program with an error.
func MustParse(args []string) Config {
	cfg := Config{}

	parser, err := arg.NewParser(
		arg.Config{Program: "sqlitekit"},
		&cfg,
	)
	if err != nil {
		log.Fatal(err)
	}
	parser.MustParse(args[1:])

	return cfg
}

// Parse parses args, which exclude the program name, returning the error
// instead of exiting.
func Parse(args []string) (Config, error) {
	cfg := Config{}

	parser, err := arg.NewParser(
		arg.Config{Program: "sqlitekit"},
		&cfg,
	)
	if err != nil {
		return Config{}, err
	}
	if err := parser.Parse(args); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
