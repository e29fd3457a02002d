// Package shell implements the interactive sqlitekit prompt.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nsqlite/sqlitekit/internal/styled"
	"github.com/nsqlite/sqlitekit/internal/util/numutil"
	"github.com/nsqlite/sqlitekit/internal/util/sysutil"
	"github.com/nsqlite/sqlitekit/sqlite"
	"github.com/peterh/liner"
)

// Shell reads statements and dot commands and prints their results.
type Shell struct {
	conn        *sqlite.Conn
	out         io.Writer
	historyPath string

	// mu guards line and shutdown.
	mu       sync.Mutex
	line     *liner.State
	shutdown bool
}

// New returns a Shell running statements on conn and writing to out.
func New(conn *sqlite.Conn, out io.Writer, historyPath string) *Shell {
	return &Shell{
		conn:        conn,
		out:         out,
		historyPath: historyPath,
	}
}

// Start prompts until the user quits, input ends or Shutdown is called.
func (s *Shell) Start() error {
	line, ok := s.openLine()
	if !ok {
		return nil
	}
	defer s.closeLine()

	fmt.Fprintln(s.out)
	fmt.Fprintf(s.out, "Connected to %s\n", s.conn.Path())
	fmt.Fprintln(s.out, `Enter ".help" for usage hints and ".quit" or "CTRL+C" to quit`)
	fmt.Fprintln(s.out)

	for {
		input, err := line.Prompt("sqlitekit> ")
		if s.isShutdown() {
			return nil
		}
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(s.out, "CTRL+C pressed, exiting...")
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read prompt: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if quit := s.Handle(input); quit {
			return nil
		}
	}
}

// openLine puts the terminal in prompt mode, unless the shell was already
// shut down.
func (s *Shell) openLine() (*liner.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdown {
		return nil, false
	}

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completer)
	if file, err := os.Open(s.historyPath); err == nil {
		_, _ = line.ReadHistory(file)
		file.Close()
	}

	s.line = line
	return line, true
}

// closeLine saves the history and restores the terminal. Only the first call
// does anything.
func (s *Shell) closeLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.line == nil {
		return
	}

	if file, err := os.Create(s.historyPath); err == nil {
		_, _ = s.line.WriteHistory(file)
		file.Close()
	}
	_ = s.line.Close()
	s.line = nil
}

func (s *Shell) isShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

// Shutdown restores the terminal and stops Start from prompting again. It
// may be called from another goroutine, more than once, and before Start.
func (s *Shell) Shutdown() {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()

	s.closeLine()
}

// Handle runs one line of input and reports whether the user asked to quit.
func (s *Shell) Handle(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}

	if input == "exit" || input == "quit" {
		return true
	}
	if !strings.HasPrefix(input, ".") {
		s.cmdQuery(input)
		return false
	}

	name, args := parseDotCommand(input)
	switch name {
	case ".quit", ".exit":
		return true
	case ".clear":
		sysutil.ClearTerminal(s.out)
	case ".help":
		s.cmdHelp()
	case ".tables":
		s.cmdQuery(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	case ".indexes":
		s.cmdQuery(`SELECT name, tbl_name AS "table" FROM sqlite_master WHERE type = 'index' ORDER BY name`)
	case ".schema":
		if len(args) == 0 {
			s.cmdQuery(`SELECT sql FROM sqlite_master WHERE sql IS NOT NULL ORDER BY name`)
			break
		}
		s.cmdQuery(
			`SELECT sql FROM sqlite_master WHERE sql IS NOT NULL AND tbl_name = ? ORDER BY name`,
			sqlite.Text(args[0]),
		)
	case ".columns":
		if len(args) == 0 {
			s.usage(".columns <table_name>")
			break
		}
		s.cmdQuery(
			`SELECT name, type, "notnull" AS not_null, dflt_value AS "default", pk FROM pragma_table_info(?)`,
			sqlite.Text(args[0]),
		)
	case ".count":
		if len(args) == 0 {
			s.usage(".count <table_name>")
			break
		}
		s.cmdQuery("SELECT count(*) AS count FROM " + quoteIdent(args[0]))
	case ".stats":
		s.cmdStats()
	case ".lastid":
		fmt.Fprintln(s.out, s.conn.LastInsertRowID())
	default:
		fmt.Fprintln(s.out, "Unknown command, type .help for usage hints")
	}

	return false
}

func (s *Shell) usage(cmd string) {
	fmt.Fprintf(s.out, "Usage: %s\n", cmd)
}

// cmdQuery runs every statement of query and prints the rows of the last
// one, or what it changed when it has no result columns.
func (s *Shell) cmdQuery(query string, bindings ...sqlite.Value) {
	tw := s.newTableWriter()

	res, err := s.conn.RunScript(query, bindings...)
	if err != nil {
		tw.AppendHeader(table.Row{"Error"})
		tw.AppendRow(table.Row{err.Error()})
		fmt.Fprintln(s.out, tw.Render())
		return
	}

	if len(res.Columns) == 0 {
		tw.AppendHeader(table.Row{"-", "Rows Affected", "Last Insert ID"})
		tw.AppendRow(table.Row{"OK", res.RowsAffected, res.LastInsertRowID})
		fmt.Fprintln(s.out, tw.Render())
		s.dimmedf("Done in %s\n", res.Time.Round(time.Microsecond))
		return
	}

	header := make(table.Row, len(res.Columns))
	for i, col := range res.Columns {
		header[i] = col
	}
	tw.AppendHeader(header)

	for _, row := range res.Rows {
		tw.AppendRow(formatRow(row))
	}

	fmt.Fprintln(s.out, tw.Render())
	s.dimmedf(
		"%s rows in %s\n",
		numutil.IntWithCommas(len(res.Rows)), res.Time.Round(time.Microsecond),
	)
}

func (s *Shell) cmdStats() {
	stats := s.conn.Stats()

	lastActivity := "never"
	if !stats.LastActivityAt.IsZero() {
		lastActivity = stats.LastActivityAt.Format(time.DateTime)
	}

	tw := s.newTableWriter()
	tw.AppendHeader(table.Row{"Stat", "Value"})
	tw.AppendRows([]table.Row{
		{"Execs", numutil.IntWithCommas(stats.TotalExecs)},
		{"Queries", numutil.IntWithCommas(stats.TotalQueries)},
		{"Failures", numutil.IntWithCommas(stats.TotalFailures)},
		{"Waiting", numutil.IntWithCommas(stats.Waiting)},
		{"Opened at", stats.OpenedAt.Format(time.DateTime)},
		{"Last activity", lastActivity},
	})

	fmt.Fprintln(s.out, tw.Render())
	s.dimmedf("Uptime: %s\n", time.Since(stats.OpenedAt).Round(time.Second))
}

func (s *Shell) newTableWriter() table.Writer {
	if color.NoColor {
		return styled.NewPlainTableWriter()
	}
	return styled.NewTableWriter()
}

func (s *Shell) dimmedf(format string, args ...any) {
	styled.DimmedColor().Fprintf(s.out, format, args...)
}

// formatRow renders every value of row as a table cell.
func formatRow(row sqlite.Row) table.Row {
	cells := make(table.Row, len(row))
	for i, value := range row {
		cells[i] = value.String()
	}
	return cells
}
