package shell

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nsqlite/sqlitekit/internal/log"
	"github.com/nsqlite/sqlitekit/internal/version"
	"github.com/nsqlite/sqlitekit/sqlite"
)

// Run runs the sqlitekit shell.
func Run(ctx context.Context) error {
	conf := MustParse(os.Args)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println(version.ShellVersion())

	logger := log.Discard()
	if conf.Debug {
		logger = log.NewLogger(os.Stderr, slog.LevelDebug)
	}

	conn, err := sqlite.Open(
		conf.Path,
		sqlite.WithLogger(logger.Slog()),
		sqlite.WithPostOpenQueries(conf.PostOpenQueries()...),
	)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", conf.Path, err)
	}
	defer conn.Close()

	logger.DebugNs(log.NsShell, "shell started", log.KV{
		"path":        conn.Path(),
		"historyFile": conf.HistoryPath(),
		"readOnly":    conf.ReadOnly,
	})

	sh := New(conn, os.Stdout, conf.HistoryPath())
	go func() {
		if err := sh.Start(); err != nil {
			fmt.Println(err)
		}
		stop()
	}()

	<-ctx.Done()
	sh.Shutdown()
	fmt.Printf("\nGoodbye!\n\n")
	return nil
}
