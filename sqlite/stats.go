package sqlite

import (
	"sync/atomic"
	"time"

	"github.com/nsqlite/sqlitekit/internal/util/syncutil"
)

// Stats holds counters about the calls made on a Conn.
type Stats struct {
	// TotalExecs counts Exec calls that reached the database.
	TotalExecs int64
	// TotalQueries counts Query and Run calls that reached the database.
	TotalQueries int64
	// TotalFailures counts Exec, Query and Run calls that returned an error.
	TotalFailures int64
	// Waiting is the number of calls currently queued or running. Derived in
	// real time.
	Waiting int64
	// OpenedAt is when the connection was opened.
	OpenedAt time.Time
	// LastActivityAt is when the last call reached the database, zero if none
	// did yet.
	LastActivityAt time.Time
}

type connStats struct {
	execs    atomic.Int64
	queries  atomic.Int64
	failures atomic.Int64
	waiting  atomic.Int64

	openedAt     time.Time
	lastActivity syncutil.AtomicTime
}

func (s *connStats) touch() {
	syncutil.StoreNow(&s.lastActivity)
}

func (s *connStats) snapshot() Stats {
	return Stats{
		TotalExecs:     s.execs.Load(),
		TotalQueries:   s.queries.Load(),
		TotalFailures:  s.failures.Load(),
		Waiting:        s.waiting.Load(),
		OpenedAt:       s.openedAt,
		LastActivityAt: s.lastActivity.Load(),
	}
}
