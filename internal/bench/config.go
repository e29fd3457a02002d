package bench

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/nsqlite/sqlitekit/internal/version"
)

// Config represents the configuration for sqlitekitbench.
type Config struct {
	Scale      string   `arg:"--scale,env:SQLITEKIT_BENCH_SCALE" help:"Workload size: small, default or large"`
	Goroutines int      `arg:"--goroutines,env:SQLITEKIT_BENCH_GOROUTINES" help:"Concurrent callers per benchmark phase"`
	Dir        string   `arg:"--dir,env:SQLITEKIT_BENCH_DIR" help:"Directory for the database files (default to a temporary one removed afterwards)"`
	Drivers    []string `arg:"--drivers,env:SQLITEKIT_BENCH_DRIVERS" help:"Drivers to benchmark, any of sqlitekit, mattn and modernc"`
	Quiet      bool     `arg:"--quiet" help:"Hide the progress bars"`
	Debug      bool     `arg:"--debug,env:SQLITEKIT_DEBUG" help:"Log benchmark phases to stderr"`
}

func (Config) Version() string {
	return fmt.Sprintf("%s\n", version.BenchVersion())
}

func (Config) Description() string {
	return "Compares sqlitekit against other SQLite drivers through database/sql"
}

func defaultConfig() Config {
	return Config{
		Scale:      ScaleDefault.Value,
		Goroutines: 10,
		Drivers:    targetNames(),
	}
}

// Validate checks the values that go-arg cannot.
func (c Config) Validate() error {
	var errs []error

	if Scales.Parse(c.Scale) == nil {
		errs = append(errs, fmt.Errorf(
			"unknown scale %q, use one of %s", c.Scale, strings.Join(scaleNames(), ", "),
		))
	}
	if c.Goroutines < 1 {
		errs = append(errs, fmt.Errorf("goroutines must be at least 1, got %d", c.Goroutines))
	}
	if len(c.Drivers) == 0 {
		errs = append(errs, errors.New("at least one driver is required"))
	}
	for _, name := range c.Drivers {
		if !slices.Contains(targetNames(), name) {
			errs = append(errs, fmt.Errorf(
				"unknown driver %q, use any of %s", name, strings.Join(targetNames(), ", "),
			))
		}
	}

	return errors.Join(errs...)
}

// MustParse parses and validates the configuration from the command line
// arguments. It returns a Config struct or exits the program with an error.
func MustParse(args []string) Config {
	cfg := defaultConfig()

	parser, err := arg.NewParser(
		arg.Config{Program: "sqlitekitbench"},
		&cfg,
	)
	if err != nil {
		log.Fatal(err)
	}
	parser.MustParse(args[1:])

	if err := cfg.Validate(); err != nil {
		parser.Fail(err.Error())
	}

	return cfg
}

// Parse parses and validates args, which exclude the program name.
func Parse(args []string) (Config, error) {
	cfg := defaultConfig()

	parser, err := arg.NewParser(
		arg.Config{Program: "sqlitekitbench"},
		&cfg,
	)
	if err != nil {
		return Config{}, err
	}
	if err := parser.Parse(args); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}
