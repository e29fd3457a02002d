package sqlitedrv

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// OptimizedPragmas are the statements applied by the _optimize DSN
// parameter.
var OptimizedPragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA cache_size = 10000",
	"PRAGMA foreign_keys = ON",
	"PRAGMA temp_store = MEMORY",
	"PRAGMA mmap_size = 536870912", // 512MB
}

var (
	journalModes = []string{"DELETE", "TRUNCATE", "PERSIST", "MEMORY", "WAL", "OFF"}
	syncModes    = []string{"OFF", "NORMAL", "FULL", "EXTRA"}
	pragmaRe     = regexp.MustCompile(`^[A-Za-z_]+(\([^;()]*\))?$`)
)

// DSN is a parsed data source name.
//
// The format is a database path optionally followed by query parameters:
//
//	/data/app.db?_busy_timeout=5000&_foreign_keys=true&_pragma=temp_store(MEMORY)
//
// A leading "file:" is ignored. Supported parameters are _busy_timeout,
// _foreign_keys, _query_only, _journal_mode, _synchronous, _cache_size,
// _optimize and the repeatable _pragma. They become post-open queries in the
// order they appear.
type DSN struct {
	Path            string
	PostOpenQueries []string
}

// String returns the path and the number of post-open queries.
func (d DSN) String() string {
	if len(d.PostOpenQueries) == 0 {
		return d.Path
	}
	return fmt.Sprintf("%s (%d post-open queries)", d.Path, len(d.PostOpenQueries))
}

// ParseDSN parses the given data source name and returns a DSN struct.
func ParseDSN(dsn string) (DSN, error) {
	dsn = strings.TrimPrefix(dsn, "file:")

	path, rawQuery, _ := strings.Cut(dsn, "?")
	parsed := DSN{Path: path}
	if rawQuery == "" {
		return parsed, nil
	}

	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}

		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return DSN{}, fmt.Errorf("sqlitedrv: invalid DSN parameter %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return DSN{}, fmt.Errorf("sqlitedrv: invalid value for %s: %w", key, err)
		}

		queries, err := paramQueries(key, value)
		if err != nil {
			return DSN{}, fmt.Errorf("sqlitedrv: invalid DSN parameter %s=%q: %w", key, value, err)
		}
		parsed.PostOpenQueries = append(parsed.PostOpenQueries, queries...)
	}

	return parsed, nil
}

// paramQueries returns the statements one DSN parameter stands for.
func paramQueries(key, value string) ([]string, error) {
	switch key {
	case "_busy_timeout":
		ms, err := strconv.Atoi(value)
		if err != nil || ms < 0 {
			return nil, errors.New("must be a non-negative number of milliseconds")
		}
		return []string{fmt.Sprintf("PRAGMA busy_timeout = %d", ms)}, nil

	case "_cache_size":
		size, err := strconv.Atoi(value)
		if err != nil {
			return nil, errors.New("must be a number")
		}
		return []string{fmt.Sprintf("PRAGMA cache_size = %d", size)}, nil

	case "_foreign_keys", "_query_only":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return nil, errors.New("must be a boolean")
		}
		return []string{fmt.Sprintf("PRAGMA %s = %s", key[1:], onOff(on))}, nil

	case "_journal_mode":
		mode := strings.ToUpper(value)
		if !slices.Contains(journalModes, mode) {
			return nil, fmt.Errorf("must be one of %s", strings.Join(journalModes, ", "))
		}
		return []string{"PRAGMA journal_mode = " + mode}, nil

	case "_synchronous":
		mode := strings.ToUpper(value)
		if !slices.Contains(syncModes, mode) {
			return nil, fmt.Errorf("must be one of %s", strings.Join(syncModes, ", "))
		}
		return []string{"PRAGMA synchronous = " + mode}, nil

	case "_optimize":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return nil, errors.New("must be a boolean")
		}
		if !on {
			return nil, nil
		}
		return slices.Clone(OptimizedPragmas), nil

	case "_pragma":
		if !pragmaRe.MatchString(value) {
			return nil, errors.New("must look like name or name(value)")
		}
		return []string{"PRAGMA " + value}, nil

	default:
		return nil, errors.New("unknown parameter")
	}
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
