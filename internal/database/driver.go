// Package database opens connections for jobs and exposes query results as
// projector cursors.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dagu-org/sqljson/internal/projector"
)

var (
	ErrDriverNotFound = errors.New("driver not found")
	ErrNoDriverForURL = errors.New("no driver matches url")
)

// Driver defines the interface for database drivers.
// Each database (PostgreSQL, MySQL, SQLite, DuckDB) implements this interface.
type Driver interface {
	// Name returns the driver identifier (e.g., "postgres", "sqlite").
	Name() string

	// Aliases returns alternative names accepted in the driver attribute.
	Aliases() []string

	// Match reports whether the driver handles the url. The url never
	// carries a "jdbc:" prefix.
	Match(url string) bool

	// Open connects to the database and verifies the connection.
	Open(ctx context.Context, url string) (*sql.DB, error)

	// ColumnKind maps a result column to a projector kind.
	ColumnKind(ct *sql.ColumnType) projector.Kind

	// ConvertValue normalizes a scanned non-nil value. Array values are
	// returned as projector cursors.
	ConvertValue(col projector.Column, v any) (any, error)
}

// DriverRegistry holds registered database drivers.
type DriverRegistry struct {
	mu      sync.RWMutex
	drivers map[string]Driver
	aliases map[string]string
}

// NewDriverRegistry creates a new driver registry.
func NewDriverRegistry() *DriverRegistry {
	return &DriverRegistry{
		drivers: make(map[string]Driver),
		aliases: make(map[string]string),
	}
}

// Register adds a driver to the registry.
func (r *DriverRegistry) Register(driver Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToLower(driver.Name())
	r.drivers[name] = driver
	for _, alias := range driver.Aliases() {
		r.aliases[strings.ToLower(alias)] = name
	}
}

// Get retrieves a driver by name or alias.
func (r *DriverRegistry) Get(name string) (Driver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name = strings.ToLower(strings.TrimSpace(name))
	if driver, ok := r.drivers[name]; ok {
		return driver, true
	}
	if target, ok := r.aliases[name]; ok {
		driver, ok := r.drivers[target]
		return driver, ok
	}
	return nil, false
}

// Names returns the registered driver names in sorted order.
func (r *DriverRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve picks the driver for a job. An explicit name wins; otherwise the
// first driver in name order that matches the url is used.
func (r *DriverRegistry) Resolve(name, url string) (Driver, error) {
	if strings.TrimSpace(name) != "" {
		driver, ok := r.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s (available: %s)", ErrDriverNotFound, name, strings.Join(r.Names(), ", "))
		}
		return driver, nil
	}

	target := StripJDBC(url)
	for _, n := range r.Names() {
		driver, _ := r.Get(n)
		if driver.Match(target) {
			return driver, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoDriverForURL, url)
}

// globalRegistry is the default driver registry.
var globalRegistry = NewDriverRegistry()

// RegisterDriver registers a driver in the global registry.
func RegisterDriver(driver Driver) {
	globalRegistry.Register(driver)
}

// GetDriver retrieves a driver from the global registry.
func GetDriver(name string) (Driver, bool) {
	return globalRegistry.Get(name)
}

// ResolveDriver resolves a driver from the global registry.
func ResolveDriver(name, url string) (Driver, error) {
	return globalRegistry.Resolve(name, url)
}

// DriverNames returns the names of the globally registered drivers.
func DriverNames() []string {
	return globalRegistry.Names()
}

// StripJDBC removes a leading "jdbc:" prefix.
func StripJDBC(url string) string {
	if len(url) >= 5 && strings.EqualFold(url[:5], "jdbc:") {
		return url[5:]
	}
	return url
}

// HasScheme reports whether url starts with one of the given schemes,
// compared case-insensitively. Schemes include their trailing separator.
func HasScheme(url string, schemes ...string) bool {
	lower := strings.ToLower(url)
	for _, s := range schemes {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}

// DefaultColumnKind maps a column by its database type name.
func DefaultColumnKind(ct *sql.ColumnType) projector.Kind {
	return projector.ParseKind(ct.DatabaseTypeName())
}
