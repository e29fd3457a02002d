// Package bench compares sqlitekit against other SQLite drivers by running
// the same workloads through database/sql.
package bench

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nsqlite/sqlitekit/internal/bench/benchbar"
	"github.com/nsqlite/sqlitekit/internal/log"
	"github.com/nsqlite/sqlitekit/internal/styled"
	"github.com/nsqlite/sqlitekit/internal/util/numutil"
	"github.com/nsqlite/sqlitekit/internal/version"
)

// benchmarkResult stores the outcome of a benchmark.
type benchmarkResult struct {
	Name     string
	Duration time.Duration
	Reads    int64
	Writes   int64
}

// driverResults are the results of every benchmark for one driver.
type driverResults struct {
	target  target
	results []benchmarkResult
}

// suite runs every benchmark with the same workload.
type suite struct {
	work   workload
	quiet  bool
	logger log.Logger
}

func (s *suite) newBar(description string, maxItems int) *benchbar.Bar {
	return benchbar.NewBar(description, maxItems, s.quiet)
}

// Run runs the benchmarks selected on the command line and prints the
// results.
func Run(ctx context.Context) error {
	conf := MustParse(os.Args)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println(version.BenchVersion())

	logger := log.Discard()
	if conf.Debug {
		logger = log.NewLogger(os.Stderr, slog.LevelDebug)
	}

	dir := conf.Dir
	if dir == "" {
		tmpDir, err := os.MkdirTemp("", "sqlitekitbench_*")
		if err != nil {
			return err
		}
		defer os.RemoveAll(tmpDir)
		dir = tmpDir
	}

	all, err := runAll(ctx, conf, dir, logger, os.Stdout)
	if err != nil {
		return err
	}
	printSummary(os.Stdout, all)

	return nil
}

// runAll benchmarks every configured driver in order, printing each
// driver's results as it finishes.
func runAll(
	ctx context.Context, conf Config, dir string, logger log.Logger, out io.Writer,
) ([]driverResults, error) {
	selected, err := selectTargets(conf.Drivers)
	if err != nil {
		return nil, err
	}
	scale := Scales.Parse(conf.Scale)
	if scale == nil {
		return nil, fmt.Errorf("unknown scale %q", conf.Scale)
	}

	s := &suite{
		work:   workloadFor(*scale, conf.Goroutines),
		quiet:  conf.Quiet,
		logger: logger,
	}

	all := make([]driverResults, 0, len(selected))
	for _, t := range selected {
		db, dbPath, err := openTarget(t, dir)
		if err != nil {
			return nil, err
		}

		fmt.Fprintf(out, "\n--- Benchmarks for %s ---\n", t.label)
		styled.DimmedColor().Fprintf(out, "%s db path: %s\n", t.label, dbPath)

		results, err := s.run(ctx, t, db)
		_ = db.Close()
		if err != nil {
			return nil, fmt.Errorf("error benchmarking %s: %w", t.label, err)
		}

		printResults(out, results)
		all = append(all, driverResults{target: t, results: results})
	}

	return all, nil
}

// run executes all benchmarks on db and returns the results. It recreates
// the schema before each benchmark.
func (s *suite) run(ctx context.Context, t target, db *sql.DB) ([]benchmarkResult, error) {
	benchs := []func(context.Context, *sql.DB) (benchmarkResult, error){
		s.benchSimple,
		s.benchComplex,
		s.benchMany,
		s.benchLarge,
	}

	results := make([]benchmarkResult, 0, len(benchs))
	for _, bench := range benchs {
		if err := recreateSchema(ctx, db); err != nil {
			return nil, err
		}

		res, err := bench(ctx, db)
		if err != nil {
			return nil, err
		}

		s.logger.DebugNs(log.NsBench, "benchmark finished", log.KV{
			"driver":   t.name,
			"name":     res.Name,
			"duration": res.Duration.String(),
			"reads":    res.Reads,
			"writes":   res.Writes,
		})
		results = append(results, res)
	}

	return results, nil
}

func printResults(out io.Writer, results []benchmarkResult) {
	tw := styled.NewTableWriter()
	tw.AppendHeader(table.Row{"Name", "Reads", "Writes", "Duration", "Ops/s"})

	for _, r := range results {
		tw.AppendRow(table.Row{
			r.Name,
			numutil.IntWithCommas(r.Reads),
			numutil.IntWithCommas(r.Writes),
			r.Duration.Round(time.Millisecond),
			numutil.IntWithCommas(numutil.PerSecond(int(r.Reads+r.Writes), r.Duration)),
		})
	}

	fmt.Fprintln(out, tw.Render())
}

// printSummary prints the duration of every benchmark side by side for all
// drivers.
func printSummary(out io.Writer, all []driverResults) {
	if len(all) < 2 {
		return
	}

	header := table.Row{"Benchmark"}
	for _, dr := range all {
		header = append(header, dr.target.label)
	}

	tw := styled.NewTableWriter()
	tw.AppendHeader(header)
	for i, res := range all[0].results {
		row := table.Row{res.Name}
		for _, dr := range all {
			row = append(row, dr.results[i].Duration.Round(time.Millisecond))
		}
		tw.AppendRow(row)
	}

	fmt.Fprintln(out, "\n--- Summary ---")
	fmt.Fprintln(out, tw.Render())
}
