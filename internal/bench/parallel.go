package bench

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nsqlite/sqlitekit/internal/bench/benchbar"
)

// parallel calls fn for every index in [0, n) with at most workers calls in
// flight, adding up what they return. It stops launching calls after the
// first error or when ctx is done, and returns that error.
func parallel(
	ctx context.Context, n, workers int, bar *benchbar.Bar,
	fn func(ctx context.Context, i int) (int64, error),
) (int64, error) {
	var (
		wg       sync.WaitGroup
		total    atomic.Int64
		failed   atomic.Bool
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() { firstErr = err })
		failed.Store(true)
	}

	sem := make(chan struct{}, workers)
	for i := range n {
		sem <- struct{}{}
		if failed.Load() {
			<-sem
			break
		}
		if err := ctx.Err(); err != nil {
			<-sem
			fail(err)
			break
		}

		wg.Add(1)
		go func() {
			defer func() {
				wg.Done()
				<-sem
			}()

			count, err := fn(ctx, i)
			if err != nil {
				fail(err)
				return
			}

			total.Add(count)
			bar.Inc()
		}()
	}
	wg.Wait()

	return total.Load(), firstErr
}

// insertUser returns a parallel step inserting one active user with the
// email built for its index.
func insertUser(db *sql.DB, email func(i int) string) func(context.Context, int) (int64, error) {
	return func(ctx context.Context, i int) (int64, error) {
		return affected(db.ExecContext(
			ctx,
			"INSERT INTO users (created, email, active) VALUES (?, ?, ?)",
			time.Now().Unix(), email(i), 1,
		))
	}
}

func userEmail(i int) string {
	return fmt.Sprintf("user%d@example.com", i)
}

// affected returns the rows affected by a statement that ran without error.
func affected(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
