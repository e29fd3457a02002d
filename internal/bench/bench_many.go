package bench

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// benchMany inserts X users in a single transaction and then queries all
// users Y times. This simulates a read-heavy workload.
func (s *suite) benchMany(ctx context.Context, db *sql.DB) (benchmarkResult, error) {
	w := s.work
	start := time.Now()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return benchmarkResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(
		ctx, "INSERT INTO users (created, email, active) VALUES (?, ?, ?)",
	)
	if err != nil {
		return benchmarkResult{}, err
	}
	defer func() { _ = stmt.Close() }()

	bar := s.newBar(fmt.Sprintf("Inserting %d users", w.manyUsers), w.manyUsers)
	writes, err := parallel(ctx, w.manyUsers, w.goroutines, bar, func(ctx context.Context, i int) (int64, error) {
		return affected(stmt.ExecContext(ctx, time.Now().Unix(), userEmail(i), 1))
	})
	if err != nil {
		return benchmarkResult{}, fmt.Errorf("error inserting users: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return benchmarkResult{}, err
	}
	bar.Finish()

	bar = s.newBar(fmt.Sprintf("Querying all users %d times", w.manyQueries), w.manyQueries)
	reads, err := parallel(ctx, w.manyQueries, w.goroutines, bar, func(ctx context.Context, _ int) (int64, error) {
		return scanUsers(ctx, db)
	})
	if err != nil {
		return benchmarkResult{}, fmt.Errorf("error querying users: %w", err)
	}
	bar.Finish()

	return benchmarkResult{
		Name:     "Many",
		Duration: time.Since(start),
		Reads:    reads,
		Writes:   writes,
	}, nil
}
