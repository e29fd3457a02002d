// Package sqlitedrv exposes sqlite.Conn through database/sql.
//
// Importing the package registers a driver named "sqlitekit". The data source
// name is the database path plus optional parameters, see ParseDSN. An empty
// path opens a private in-memory database.
//
// Every driver connection owns one sqlite.Conn, so the pooling, retries and
// scanning of database/sql sit on top of the same serialized access the
// sqlite package provides. Only positional parameters are supported.
package sqlitedrv

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"slices"

	"github.com/nsqlite/sqlitekit/sqlite"
)

// DriverName is the name the driver is registered with.
const DriverName = "sqlitekit"

func init() {
	sql.Register(DriverName, &Driver{})
}

var (
	_ driver.Driver        = (*Driver)(nil)
	_ driver.DriverContext = (*Driver)(nil)
	_ driver.Connector     = (*Connector)(nil)
)

// Driver implements the database/sql/driver.Driver interface
type Driver struct{}

// Open creates a new connection to the SQLite database
func (d *Driver) Open(dsn string) (driver.Conn, error) {
	return NewConnector(dsn).Connect(context.Background())
}

// OpenConnector returns a connector for dsn, letting database/sql skip the
// name lookup on every new connection
func (d *Driver) OpenConnector(dsn string) (driver.Connector, error) {
	if _, err := ParseDSN(dsn); err != nil {
		return nil, err
	}
	return NewConnector(dsn), nil
}

// Connector implements the database/sql/driver.Connector interface
type Connector struct {
	dsn     string
	options []sqlite.Option
}

// NewConnector creates a new connector to the SQLite database. The options
// are applied to every connection it opens, before the post-open queries of
// the DSN.
func NewConnector(dsn string, options ...sqlite.Option) *Connector {
	return &Connector{
		dsn:     dsn,
		options: options,
	}
}

// Connect creates a new connection to the SQLite database
func (connector *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parsed, err := ParseDSN(connector.dsn)
	if err != nil {
		return nil, err
	}

	options := append(
		slices.Clone(connector.options),
		sqlite.WithPostOpenQueries(parsed.PostOpenQueries...),
	)
	conn, err := sqlite.Open(parsed.Path, options...)
	if err != nil {
		return nil, err
	}
	return &Conn{conn: conn}, nil
}

// Driver returns the driver
func (connector *Connector) Driver() driver.Driver {
	return &Driver{}
}
