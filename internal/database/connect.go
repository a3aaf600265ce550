package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Connection is an open database handle together with the driver that
// produced it.
type Connection struct {
	Driver Driver
	DB     *sql.DB
}

// Connect resolves the driver for a job and opens a connection to url.
func Connect(ctx context.Context, driverName, url string) (*Connection, error) {
	driver, err := ResolveDriver(driverName, url)
	if err != nil {
		return nil, err
	}
	db, err := driver.Open(ctx, StripJDBC(url))
	if err != nil {
		return nil, err
	}
	return &Connection{Driver: driver, DB: db}, nil
}

// Query executes query and returns its result as a cursor.
func (c *Connection) Query(ctx context.Context, query string) (*Rows, error) {
	return Query(ctx, c.DB, c.Driver, query)
}

// Close closes the underlying database handle.
func (c *Connection) Close() error {
	return c.DB.Close()
}

// OpenDB opens a database/sql handle and pings it so connection errors
// surface before a query runs.
func OpenDB(ctx context.Context, sqlDriver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", sqlDriver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", sqlDriver, err)
	}
	return db, nil
}
