package bench

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// benchSimple inserts X users one statement at a time and then queries all
// of them in a single query.
func (s *suite) benchSimple(ctx context.Context, db *sql.DB) (benchmarkResult, error) {
	start := time.Now()

	bar := s.newBar(fmt.Sprintf("Inserting %d users", s.work.simpleUsers), s.work.simpleUsers)
	writes, err := parallel(ctx, s.work.simpleUsers, s.work.goroutines, bar, insertUser(db, userEmail))
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
		Name:     "Simple",
		Duration: time.Since(start),
		Reads:    reads,
		Writes:   writes,
	}, nil
}

// scanUsers reads every user and returns how many there were.
func scanUsers(ctx context.Context, db *sql.DB) (int64, error) {
	rows, err := db.QueryContext(ctx, "SELECT id, created, email, active FROM users ORDER BY id")
	if err != nil {
		return 0, fmt.Errorf("error when querying: %w", err)
	}
	defer rows.Close()

	var reads int64
	for rows.Next() {
		var id, created, active int
		var email string
		if err := rows.Scan(&id, &created, &email, &active); err != nil {
			return 0, fmt.Errorf("error when scanning: %w", err)
		}
		reads++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error when reading rows: %w", err)
	}

	return reads, nil
}
