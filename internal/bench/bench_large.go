package bench

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// benchLarge inserts X users with Y bytes of content each and then queries
// all of them in a single query.
func (s *suite) benchLarge(ctx context.Context, db *sql.DB) (benchmarkResult, error) {
	w := s.work
	start := time.Now()

	email := strings.Repeat("Y", w.largeBytes)
	bar := s.newBar(
		fmt.Sprintf("Inserting %d users of %d bytes", w.largeUsers, w.largeBytes), w.largeUsers,
	)
	writes, err := parallel(ctx, w.largeUsers, w.goroutines, bar, insertUser(db, func(int) string {
		return email
	}))
	if err != nil {
		return benchmarkResult{}, fmt.Errorf("error when inserting: %w", err)
	}
	bar.Finish()

	bar = s.newBar("Reading users", 1)
	reads, err := scanUsers(ctx, db)
	if err != nil {
		return benchmarkResult{}, err
	}
	bar.Inc()
	bar.Finish()

	return benchmarkResult{
		Name:     "Large",
		Duration: time.Since(start),
		Reads:    reads,
		Writes:   writes,
	}, nil
}
