package sqlite

import (
	"log/slog"

	"github.com/nsqlite/sqlitekit/internal/log"
)

type options struct {
	logger          log.Logger
	postOpenQueries []string
}

// Option configures a Conn at Open time.
type Option func(*options)

// WithLogger sets the logger used for connection lifecycle and failed
// statements. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = log.FromSlog(logger)
	}
}

// WithPostOpenQueries sets queries to be executed right after the database
// is opened, typically PRAGMAs. If any of them fails the connection is
// closed and Open returns the error.
func WithPostOpenQueries(queries ...string) Option {
	return func(o *options) {
		o.postOpenQueries = append(o.postOpenQueries, queries...)
	}
}
